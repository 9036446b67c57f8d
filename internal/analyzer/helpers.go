package analyzer

import (
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/token"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// findMember looks a member up on an instance type without reporting.
// Type parameters are treated as object.
func (w *walker) findMember(t typesystem.Type, name string) (*symbols.ClassDescriptor, *symbols.Member, typesystem.Type, bool) {
	if _, ok := t.(typesystem.TParam); ok {
		t = typesystem.TClass{Name: config.ObjectTypeName}
	}
	desc, self, ok := w.classView(t)
	if !ok {
		return nil, nil, nil, false
	}
	m, ok := desc.Lookup(name)
	if !ok {
		return nil, nil, nil, false
	}
	return desc, m, self, true
}

// lookupMethod returns the bound type of a method on an instance type.
func (w *walker) lookupMethod(t typesystem.Type, name string) (typesystem.TFunc, bool) {
	desc, m, self, ok := w.findMember(t, name)
	if !ok || m.Method == nil {
		return typesystem.TFunc{}, false
	}
	fn, ok := w.memberType(desc, m, self, true).(typesystem.TFunc)
	return fn, ok
}

// attributeType resolves `obj.name`. Optional receivers are reported when
// strict_optional is on and then checked as their non-None part; union
// receivers need the attribute on every member.
func (w *walker) attributeType(obj typesystem.Type, name string, tok token.Token) typesystem.Type {
	if typesystem.IsUnknown(obj) {
		return typesystem.Unknown
	}
	if typesystem.IsOptional(obj) {
		if w.an.opts.StrictOptional {
			w.errorf(diagnostics.ErrOptionalAccess, tok,
				"attribute '%s' accessed on a value of type %s that may be None", name, obj)
		}
		obj = typesystem.RemoveNone(obj)
	}

	switch t := obj.(type) {
	case typesystem.TUnion:
		var types []typesystem.Type
		for _, m := range t.Types {
			types = append(types, w.attributeType(m, name, tok))
		}
		return typesystem.NormalizeUnion(types)

	case typesystem.TType:
		return w.classAttribute(t, name, tok)

	case typesystem.TFunc:
		w.errorf(diagnostics.ErrUndefinedSymbol, tok, "function object has no attribute '%s'", name)
		return typesystem.Unknown
	}

	desc, m, self, ok := w.findMember(obj, name)
	if !ok {
		w.errorf(diagnostics.ErrUndefinedSymbol, tok, "'%s' object has no attribute '%s'", obj, name)
		return typesystem.Unknown
	}
	return w.memberType(desc, m, self, true)
}

// classAttribute resolves an attribute of a class object: methods come back
// unbound, taking self explicitly, as in `Base.__init__(self, x)`.
func (w *walker) classAttribute(t typesystem.TType, name string, tok token.Token) typesystem.Type {
	desc, self, ok := w.classView(t.Type)
	if !ok {
		w.errorf(diagnostics.ErrUndefinedSymbol, tok, "'%s' has no attribute '%s'", t, name)
		return typesystem.Unknown
	}
	m, ok := desc.Lookup(name)
	if !ok {
		w.errorf(diagnostics.ErrUndefinedSymbol, tok, "type object '%s' has no attribute '%s'", desc.Name, name)
		return typesystem.Unknown
	}
	return w.memberType(desc, m, self, false)
}
