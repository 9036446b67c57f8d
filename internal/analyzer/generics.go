package analyzer

import (
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/token"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// instantiate applies type arguments to a class. The count must match the
// declared arity exactly; a mismatch is reported and yields Unknown rather
// than a truncated or padded instance.
func (w *walker) instantiate(desc *symbols.ClassDescriptor, args []typesystem.Type, tok token.Token) typesystem.Type {
	if len(args) != desc.Arity() {
		w.errorf(diagnostics.ErrInvalidGenericArity, tok,
			"'%s' expects %d type argument(s), got %d", desc.Name, desc.Arity(), len(args))
		return typesystem.Unknown
	}
	if desc.IsPrimitive {
		return typesystem.TPrim{Name: desc.Name}
	}
	return typesystem.TClass{Name: desc.Name, Args: args}
}

// instantiateSignature applies explicit type arguments to a generic
// function's own type parameters.
func (w *walker) instantiateSignature(fn typesystem.TFunc, args []typesystem.Type, name string, tok token.Token) typesystem.Type {
	if len(args) != len(fn.TypeParams) {
		w.errorf(diagnostics.ErrInvalidGenericArity, tok,
			"'%s' expects %d type argument(s), got %d", name, len(fn.TypeParams), len(args))
		return typesystem.Unknown
	}
	s := typesystem.NewSubst(fn.TypeParams, args)
	out := fn
	out.TypeParams = nil
	return out.Apply(s)
}

// memberType returns the type of a member seen through an instance. The
// declaring class's parameters are mapped by the member's inheritance
// substitution and then by the instance's arguments.
func (w *walker) memberType(desc *symbols.ClassDescriptor, m *symbols.Member, self typesystem.Type, bound bool) typesystem.Type {
	var t typesystem.Type
	if m.Field != nil {
		t = m.Field.Type
	} else {
		t = w.an.callable(m.Method, bound)
	}
	return t.Apply(m.Subst).Apply(instanceSubst(desc, self))
}

// unboundParams lists type parameters that unification left without a
// binding.
func unboundParams(params []typesystem.TParam, s typesystem.Subst) []typesystem.TParam {
	var out []typesystem.TParam
	for _, p := range params {
		if _, ok := s[p.Key()]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// defaultUnbound binds every remaining parameter to Unknown so the result
// carries no free parameters.
func defaultUnbound(params []typesystem.TParam, s typesystem.Subst) {
	for _, p := range unboundParams(params, s) {
		s[p.Key()] = typesystem.Unknown
	}
}
