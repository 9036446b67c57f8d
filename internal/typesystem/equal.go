package typesystem

// Equal compares two types structurally: same tag, same payload, recursively.
// Unknown is only equal to Unknown; use the analyzer's assignability check
// for the compatible-with-everything rule.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case TPrim:
		y, ok := b.(TPrim)
		return ok && x.Name == y.Name
	case TClass:
		y, ok := b.(TClass)
		return ok && x.Name == y.Name && equalList(x.Args, y.Args)
	case TType:
		y, ok := b.(TType)
		return ok && Equal(x.Type, y.Type)
	case TFunc:
		y, ok := b.(TFunc)
		if !ok || x.IsVariadic != y.IsVariadic || x.DefaultCount != y.DefaultCount {
			return false
		}
		if !equalList(x.Params, y.Params) {
			return false
		}
		if x.ReturnType == nil || y.ReturnType == nil {
			return x.ReturnType == nil && y.ReturnType == nil
		}
		return Equal(x.ReturnType, y.ReturnType)
	case TTuple:
		y, ok := b.(TTuple)
		return ok && equalList(x.Elements, y.Elements)
	case TUnion:
		y, ok := b.(TUnion)
		if !ok || len(x.Types) != len(y.Types) {
			return false
		}
		// Normalized unions are sorted, but compare as sets so hand-built
		// values still behave.
		for _, m := range x.Types {
			if !containsType(y.Types, m) {
				return false
			}
		}
		return true
	case TOptional:
		y, ok := b.(TOptional)
		return ok && Equal(x.Inner, y.Inner)
	case TParam:
		y, ok := b.(TParam)
		return ok && x.Key() == y.Key()
	case TUnknown:
		_, ok := b.(TUnknown)
		return ok
	}
	return false
}

func equalList(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func containsType(list []Type, t Type) bool {
	for _, m := range list {
		if Equal(m, t) {
			return true
		}
	}
	return false
}

// ContainsUnknown reports whether Unknown occurs anywhere inside t.
func ContainsUnknown(t Type) bool {
	switch typ := t.(type) {
	case nil:
		return true
	case TUnknown:
		return true
	case TClass:
		return anyUnknown(typ.Args)
	case TType:
		return ContainsUnknown(typ.Type)
	case TFunc:
		return anyUnknown(typ.Params) || (typ.ReturnType != nil && ContainsUnknown(typ.ReturnType))
	case TTuple:
		return anyUnknown(typ.Elements)
	case TUnion:
		return anyUnknown(typ.Types)
	case TOptional:
		return ContainsUnknown(typ.Inner)
	}
	return false
}

func anyUnknown(ts []Type) bool {
	for _, t := range ts {
		if ContainsUnknown(t) {
			return true
		}
	}
	return false
}
