package analyzer

import (
	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/token"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

func (w *walker) inferListLiteral(n *ast.ListLiteral, expected typesystem.Type) typesystem.Type {
	return w.inferCollection(config.ListTypeName, n.Elements, expected)
}

func (w *walker) inferSetLiteral(n *ast.SetLiteral, expected typesystem.Type) typesystem.Type {
	return w.inferCollection(config.SetTypeName, n.Elements, expected)
}

// inferCollection types a list or set display. The element type is the
// expected one when every element fits it, otherwise the widened join of
// the elements. An empty display without context has Unknown elements.
func (w *walker) inferCollection(class string, elems []ast.Expression, expected typesystem.Type) typesystem.Type {
	var hint typesystem.Type
	if args, ok := w.expectedArgs(expected, class, 1); ok {
		hint = args[0]
	}
	elem := w.joinElements(elems, hint)
	return typesystem.TClass{Name: class, Args: []typesystem.Type{elem}}
}

func (w *walker) joinElements(elems []ast.Expression, hint typesystem.Type) typesystem.Type {
	types := make([]typesystem.Type, len(elems))
	fits := hint != nil
	for i, e := range elems {
		types[i] = w.inferExpr(e, hint)
		if fits && !w.isAssignable(hint, types[i]) {
			fits = false
		}
	}
	switch {
	case fits:
		return hint
	case len(types) == 0:
		return typesystem.Unknown
	}
	return w.widenAll(types)
}

// expectedArgs returns the type arguments the context expects for a display
// of class: from an expected instance of the class or of one of its
// ancestors with the same arity, looking through Optional and unions.
func (w *walker) expectedArgs(expected typesystem.Type, class string, arity int) ([]typesystem.Type, bool) {
	if expected == nil {
		return nil, false
	}
	for _, m := range typesystem.Members(expected) {
		c, ok := m.(typesystem.TClass)
		if !ok || len(c.Args) != arity {
			continue
		}
		if c.Name == class || w.an.table.IsSubclass(class, c.Name) {
			return c.Args, true
		}
	}
	return nil, false
}

func (w *walker) inferTupleLiteral(n *ast.TupleLiteral, expected typesystem.Type) typesystem.Type {
	var hints []typesystem.Type
	for _, m := range typesystem.Members(expected) {
		if tt, ok := m.(typesystem.TTuple); ok && len(tt.Elements) == len(n.Elements) {
			hints = tt.Elements
			break
		}
	}
	var elemHint typesystem.Type
	if hints == nil {
		if args, ok := w.expectedArgs(expected, config.TupleTypeName, 1); ok {
			elemHint = args[0]
		}
	}
	out := make([]typesystem.Type, len(n.Elements))
	for i, e := range n.Elements {
		hint := elemHint
		if hints != nil {
			hint = hints[i]
		}
		out[i] = w.inferExpr(e, hint)
	}
	return typesystem.TTuple{Elements: out}
}

func (w *walker) inferDictLiteral(n *ast.DictLiteral, expected typesystem.Type) typesystem.Type {
	var keyHint, valueHint typesystem.Type
	if args, ok := w.expectedArgs(expected, config.DictTypeName, 2); ok {
		keyHint, valueHint = args[0], args[1]
	}
	keys := make([]ast.Expression, len(n.Entries))
	values := make([]ast.Expression, len(n.Entries))
	for i, e := range n.Entries {
		keys[i], values[i] = e.Key, e.Value
	}
	k := w.joinElements(keys, keyHint)
	v := w.joinElements(values, valueHint)
	return typesystem.TClass{Name: config.DictTypeName, Args: []typesystem.Type{k, v}}
}

// inferComprehension checks the clauses in a scope of their own, so loop
// variables do not leak. Conditions narrow the following clauses and the
// element.
func (w *walker) inferComprehension(n *ast.Comprehension, expected typesystem.Type) typesystem.Type {
	var class string
	arity := 1
	switch n.Kind {
	case ast.SetComp:
		class = config.SetTypeName
	case ast.DictComp:
		class, arity = config.DictTypeName, 2
	default:
		class = config.ListTypeName
	}
	hints, _ := w.expectedArgs(expected, class, arity)
	hint := func(i int) typesystem.Type {
		if i < len(hints) {
			return hints[i]
		}
		return nil
	}

	var key, elem typesystem.Type
	w.inScope(symbols.NewEnclosedSymbolTable(w.symbolTable, symbols.ScopeBlock), func() {
		for _, c := range n.Clauses {
			iter := w.inferExpr(c.Iter, nil)
			w.bindLocal(c.Target, w.iterationElement(iter, c.Iter.GetToken()), c.Iter.GetToken())
			for _, cond := range c.Conditions {
				w.inferExpr(cond, nil)
				yes, _ := w.narrowCondition(cond)
				w.symbolTable = yes
			}
		}
		if n.Kind == ast.DictComp {
			key = w.inferExpr(n.Key, hint(0))
			elem = w.inferExpr(n.Element, hint(1))
			return
		}
		elem = w.inferExpr(n.Element, hint(0))
	})
	if n.Kind == ast.DictComp {
		return typesystem.TClass{Name: class, Args: []typesystem.Type{key, elem}}
	}
	return typesystem.TClass{Name: class, Args: []typesystem.Type{elem}}
}

// bindLocal defines the names of a target in the current scope, as for
// comprehension variables and match captures.
func (w *walker) bindLocal(target ast.Expression, t typesystem.Type, tok token.Token) {
	switch x := target.(type) {
	case *ast.Identifier:
		w.symbolTable.Replace(symbols.Symbol{
			Name:         x.Value,
			Type:         t,
			Kind:         symbols.VariableSymbol,
			OriginModule: w.module.Name,
			Token:        x.GetToken(),
		})
		w.record(x, t)
	case *ast.TupleLiteral:
		types := w.unpackTypes(t, len(x.Elements), tok)
		for i, el := range x.Elements {
			w.bindLocal(el, types[i], tok)
		}
	case *ast.ListLiteral:
		types := w.unpackTypes(t, len(x.Elements), tok)
		for i, el := range x.Elements {
			w.bindLocal(el, types[i], tok)
		}
	default:
		w.errorf(diagnostics.ErrTypeMismatch, target.GetToken(), "cannot bind to expression")
	}
}
