package typesystem

import "sort"

// NormalizeUnion creates a normalized union type.
// It flattens nested unions and optionals, removes duplicates and sorts the
// members. A None member turns the result into an Optional. Unknown absorbs
// the whole union.
func NormalizeUnion(types []Type) Type {
	var flat []Type
	hasNone := false
	var walk func(t Type)
	walk = func(t Type) {
		switch typ := t.(type) {
		case TUnion:
			for _, m := range typ.Types {
				walk(m)
			}
		case TOptional:
			hasNone = true
			walk(typ.Inner)
		default:
			if IsNone(t) {
				hasNone = true
				return
			}
			flat = append(flat, t)
		}
	}
	for _, t := range types {
		if t == nil {
			continue
		}
		if IsUnknown(t) {
			return Unknown
		}
		walk(t)
	}

	var unique []Type
	for _, t := range flat {
		dup := false
		for _, u := range unique {
			if Equal(t, u) {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, t)
		}
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return sortKey(unique[i]) < sortKey(unique[j])
	})

	var inner Type
	switch len(unique) {
	case 0:
		if hasNone {
			return None
		}
		return Unknown
	case 1:
		inner = unique[0]
	default:
		inner = TUnion{Types: unique}
	}
	if hasNone {
		return TOptional{Inner: inner}
	}
	return inner
}

// MakeOptional returns Optional[t], collapsing None and nested optionals.
func MakeOptional(t Type) Type {
	return NormalizeUnion([]Type{t, None})
}

// Members lists the alternatives of a union or optional. Any other type is
// its own single member.
func Members(t Type) []Type {
	switch typ := t.(type) {
	case TUnion:
		return typ.Types
	case TOptional:
		inner := Members(typ.Inner)
		out := make([]Type, 0, len(inner)+1)
		return append(append(out, inner...), None)
	default:
		return []Type{t}
	}
}

// RemoveNone strips None from t. Used by `is not None` narrowing.
func RemoveNone(t Type) Type {
	switch typ := t.(type) {
	case TOptional:
		return typ.Inner
	default:
		return t
	}
}

// IsOptional reports whether t admits None alongside something else.
func IsOptional(t Type) bool {
	_, ok := t.(TOptional)
	return ok
}

func sortKey(t Type) string {
	if p, ok := t.(TParam); ok {
		return p.Name + "@" + p.Owner
	}
	return t.String()
}
