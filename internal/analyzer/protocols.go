package analyzer

import (
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/token"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// iterationElement is the type produced by iterating over a value of type
// t, reported when t is not iterable.
func (w *walker) iterationElement(t typesystem.Type, tok token.Token) typesystem.Type {
	if typesystem.IsUnknown(t) {
		return typesystem.Unknown
	}
	if typesystem.IsOptional(t) {
		if w.an.opts.StrictOptional {
			w.errorf(diagnostics.ErrOptionalAccess, tok, "value of type %s that may be None is not iterable", t)
		}
		t = typesystem.RemoveNone(t)
	}
	if el, ok := w.elementOf(t); ok {
		return el
	}
	w.errorf(diagnostics.ErrTypeMismatch, tok, "'%s' object is not iterable", t)
	return typesystem.Unknown
}

// elementOf follows the iteration protocol: __iter__ returns an iterator
// whose __next__ yields the elements.
func (w *walker) elementOf(t typesystem.Type) (typesystem.Type, bool) {
	if typesystem.IsUnknown(t) {
		return typesystem.Unknown, true
	}
	switch x := t.(type) {
	case typesystem.TTuple:
		if len(x.Elements) == 0 {
			return typesystem.Unknown, true
		}
		return typesystem.NormalizeUnion(x.Elements), true
	case typesystem.TUnion:
		var out []typesystem.Type
		for _, m := range x.Types {
			el, ok := w.elementOf(m)
			if !ok {
				return nil, false
			}
			out = append(out, el)
		}
		return typesystem.NormalizeUnion(out), true
	case typesystem.TOptional:
		return nil, false
	}
	iter, ok := w.lookupMethod(t, config.IterMethodName)
	if !ok || iter.MinArgs() > 0 {
		return nil, false
	}
	if typesystem.IsUnknown(iter.ReturnType) {
		return typesystem.Unknown, true
	}
	next, ok := w.lookupMethod(iter.ReturnType, config.NextMethodName)
	if !ok || next.MinArgs() > 0 {
		return nil, false
	}
	return next.ReturnType, true
}
