package analyzer

import (
	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// inferExpr computes the type of an expression and records it in the type
// map. expected is the type the context wants, if any; collection displays,
// lambdas and generic constructors use it to fill in what the expression
// alone does not say. It never fails: errors are reported and Unknown is
// returned so checking continues.
func (w *walker) inferExpr(e ast.Expression, expected typesystem.Type) typesystem.Type {
	if e == nil {
		return typesystem.Unknown
	}
	var t typesystem.Type
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		t = typesystem.Int
	case *ast.FloatLiteral:
		t = typesystem.Float
	case *ast.StringLiteral:
		t = typesystem.Str
	case *ast.BooleanLiteral:
		t = typesystem.Bool
	case *ast.NoneLiteral:
		t = typesystem.None
	case *ast.Identifier:
		t = w.inferIdentifier(n)
	case *ast.AttributeExpr:
		t = w.inferAttribute(n)
	case *ast.BinaryExpr:
		t = w.inferBinary(n)
	case *ast.UnaryExpr:
		t = w.inferUnary(n)
	case *ast.CallExpr:
		t = w.inferCall(n, expected)
	case *ast.SubscriptExpr:
		t = w.inferSubscript(n)
	case *ast.LambdaExpr:
		t = w.inferLambda(n, expected)
	case *ast.ListLiteral:
		t = w.inferListLiteral(n, expected)
	case *ast.SetLiteral:
		t = w.inferSetLiteral(n, expected)
	case *ast.TupleLiteral:
		t = w.inferTupleLiteral(n, expected)
	case *ast.DictLiteral:
		t = w.inferDictLiteral(n, expected)
	case *ast.Comprehension:
		t = w.inferComprehension(n, expected)
	case *ast.ConditionalExpr:
		t = w.inferConditional(n, expected)
	case *ast.MatchExpr:
		t = w.inferMatchExpr(n, expected)
	default:
		t = typesystem.Unknown
	}
	return w.record(e, t)
}

// checkExpr infers e against an expected type and reports a mismatch.
func (w *walker) checkExpr(e ast.Expression, expected typesystem.Type, what string) typesystem.Type {
	t := w.inferExpr(e, expected)
	if expected != nil && !w.isAssignable(expected, t) {
		w.errorf(diagnostics.ErrTypeMismatch, e.GetToken(),
			"%s: expected %s, got %s", what, expected, t)
	}
	return t
}

func (w *walker) inferIdentifier(id *ast.Identifier) typesystem.Type {
	sym, scope, ok := w.symbolTable.FindWithScope(id.Value)
	if !ok {
		w.errorf(diagnostics.ErrUndefinedSymbol, id.GetToken(), "name '%s' is not defined", id.Value)
		return typesystem.Unknown
	}
	switch sym.Kind {
	case symbols.FunctionSymbol:
		return w.functionValue(sym)
	case symbols.ClassSymbol:
		return sym.Type
	case symbols.AliasSymbol:
		return typesystem.TType{Type: w.an.aliasTarget(sym)}
	case symbols.TypeParamSymbol:
		return typesystem.Unknown
	}
	t, _ := w.symbolTable.TypeOf(id.Value)
	if t == nil {
		if scope.IsGlobalScope() && w.symbolTable.Function == nil && sym.DefinitionFile == w.module.File {
			w.errorf(diagnostics.ErrUndefinedSymbol, id.GetToken(), "name '%s' is used before it is assigned", id.Value)
		}
		return typesystem.Unknown
	}
	return t
}

// functionValue is the callable type of a function symbol.
func (w *walker) functionValue(sym symbols.Symbol) typesystem.Type {
	fd, ok := sym.DefinitionNode.(*ast.FunctionDef)
	if !ok {
		if sym.Type != nil {
			return sym.Type
		}
		return typesystem.Unknown
	}
	sig, ok := w.signature(fd)
	if !ok {
		return typesystem.Unknown
	}
	return w.an.callable(sig, false)
}

func (w *walker) inferAttribute(n *ast.AttributeExpr) typesystem.Type {
	obj := w.inferExpr(n.Object, nil)
	if n.Name == nil {
		return typesystem.Unknown
	}
	if path, ok := exprPath(n); ok {
		if t, ok := w.symbolTable.TypeOf(path); ok && t != nil {
			return t
		}
	}
	return w.attributeType(obj, n.Name.Value, n.Name.GetToken())
}

func (w *walker) inferConditional(n *ast.ConditionalExpr, expected typesystem.Type) typesystem.Type {
	w.inferExpr(n.Condition, nil)
	yes, no := w.narrowCondition(n.Condition)
	var then, otherwise typesystem.Type
	w.inScope(yes, func() { then = w.inferExpr(n.Then, expected) })
	w.inScope(no, func() { otherwise = w.inferExpr(n.Else, expected) })
	return w.widen(then, otherwise)
}

// inferLambda checks a lambda body in a child scope. Untyped parameters
// take their types from the expected callable, when there is one.
func (w *walker) inferLambda(n *ast.LambdaExpr, expected typesystem.Type) typesystem.Type {
	exp, _ := expected.(typesystem.TFunc)
	fn := typesystem.TFunc{Params: make([]typesystem.Type, len(n.Params))}
	scope := symbols.NewEnclosedSymbolTable(w.symbolTable, symbols.ScopeFunction)
	for i, p := range n.Params {
		var t typesystem.Type = typesystem.Unknown
		switch {
		case p.Type != nil:
			t = w.resolveType(p.Type)
		case i < len(exp.Params):
			t = exp.Params[i]
		}
		if len(t.FreeTypeParams()) > 0 && p.Type == nil {
			t = typesystem.Unknown
		}
		if p.Default != nil {
			fn.DefaultCount++
		}
		fn.Params[i] = t
		if p.Name != nil {
			scope.Define(symbols.Symbol{Name: p.Name.Value, Type: t, Kind: symbols.ParameterSymbol, Token: p.Name.GetToken()})
		}
	}
	var want typesystem.Type
	if exp.ReturnType != nil && len(exp.ReturnType.FreeTypeParams()) == 0 && !typesystem.IsNone(exp.ReturnType) {
		want = exp.ReturnType
	}
	w.inScope(scope, func() { fn.ReturnType = w.inferExpr(n.Body, want) })
	return fn
}
