package typesystem

// Resolver lets Unify see a class instance as an instance of one of its
// ancestors, e.g. list[int] as collection[int]. The analyzer implements it
// over the linked class descriptors.
type Resolver interface {
	AsInstanceOf(t Type, class string) (TClass, bool)
}

// Unify infers bindings for the free type parameters of formal so that
// formal.Apply(result) matches actual. It is one-directional: parameters
// occurring in actual are treated as opaque. When a parameter is bound twice
// to different types the binding widens to their union. Shape mismatches bind
// nothing; the caller's assignability check reports them.
func Unify(formal, actual Type, r Resolver) Subst {
	s := make(Subst)
	unifyInto(s, formal, actual, r, 0)
	return s
}

// UnifyInto is Unify accumulating into an existing substitution.
func UnifyInto(s Subst, formal, actual Type, r Resolver) {
	unifyInto(s, formal, actual, r, 0)
}

const maxUnifyDepth = 64

func unifyInto(s Subst, formal, actual Type, r Resolver, depth int) {
	if formal == nil || actual == nil || depth > maxUnifyDepth {
		return
	}
	if IsUnknown(actual) {
		return
	}
	switch f := formal.(type) {
	case TParam:
		key := f.Key()
		if prev, ok := s[key]; ok {
			if !Equal(prev, actual) {
				s[key] = NormalizeUnion([]Type{prev, actual})
			}
			return
		}
		s[key] = actual

	case TClass:
		if len(f.Args) == 0 {
			return
		}
		var inst TClass
		switch a := actual.(type) {
		case TClass:
			if a.Name == f.Name {
				inst = a
			} else if r != nil {
				up, ok := r.AsInstanceOf(a, f.Name)
				if !ok {
					return
				}
				inst = up
			} else {
				return
			}
		default:
			if r == nil {
				return
			}
			up, ok := r.AsInstanceOf(actual, f.Name)
			if !ok {
				return
			}
			inst = up
		}
		if len(inst.Args) != len(f.Args) {
			return
		}
		for i := range f.Args {
			unifyInto(s, f.Args[i], inst.Args[i], r, depth+1)
		}

	case TType:
		if a, ok := actual.(TType); ok {
			unifyInto(s, f.Type, a.Type, r, depth+1)
		}

	case TTuple:
		if a, ok := actual.(TTuple); ok && len(a.Elements) == len(f.Elements) {
			for i := range f.Elements {
				unifyInto(s, f.Elements[i], a.Elements[i], r, depth+1)
			}
		}

	case TOptional:
		switch a := actual.(type) {
		case TOptional:
			unifyInto(s, f.Inner, a.Inner, r, depth+1)
		default:
			if !IsNone(actual) {
				unifyInto(s, f.Inner, actual, r, depth+1)
			}
		}

	case TUnion:
		// Only a union with a single open member can be solved: the actual
		// members that match no closed member flow into it.
		var open Type
		for _, m := range f.Types {
			if len(m.FreeTypeParams()) > 0 {
				if open != nil {
					return
				}
				open = m
			}
		}
		if open == nil {
			return
		}
		var rest []Type
		for _, am := range Members(actual) {
			if !containsType(f.Types, am) {
				rest = append(rest, am)
			}
		}
		if len(rest) > 0 {
			unifyInto(s, open, NormalizeUnion(rest), r, depth+1)
		}

	case TFunc:
		a, ok := actual.(TFunc)
		if !ok {
			return
		}
		for i := range f.Params {
			if i < len(a.Params) {
				unifyInto(s, f.Params[i], a.Params[i], r, depth+1)
			}
		}
		if f.ReturnType != nil && a.ReturnType != nil {
			unifyInto(s, f.ReturnType, a.ReturnType, r, depth+1)
		}
	}
}
