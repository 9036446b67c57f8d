package analyzer

import (
	"go.uber.org/zap"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// classScope is the scope of a class body: it makes the class's type
// parameters visible and carries the descriptor for `self` and `super()`.
func (w *walker) classScope(desc *symbols.ClassDescriptor) *symbols.SymbolTable {
	scope := symbols.NewEnclosedSymbolTable(w.module.Globals, symbols.ScopeClass)
	scope.Class = desc
	for _, tp := range desc.TypeParams {
		scope.Define(symbols.Symbol{
			Name:         tp.Name,
			Type:         tp,
			Kind:         symbols.TypeParamSymbol,
			OriginModule: w.module.Name,
			Token:        desc.Token,
		})
	}
	return scope
}

// signatureKey names the owner of a function's own type parameters.
func signatureKey(fd *ast.FunctionDef, owner *symbols.ClassDescriptor) string {
	if owner != nil {
		return owner.Name + "." + fd.Name.Value
	}
	return fd.Name.Value
}

// buildSignature resolves a function header in the current scope. owner is
// the enclosing class for methods. A missing return annotation leaves
// Return nil when the body returns values; ensureReturn infers it later.
func (w *walker) buildSignature(fd *ast.FunctionDef, owner *symbols.ClassDescriptor) *symbols.FunctionSignature {
	key := signatureKey(fd, owner)
	sig := &symbols.FunctionSignature{
		Name:     fd.Name.Value,
		Abstract: fd.Abstract,
		Module:   w.module.Name,
		Node:     fd,
		Token:    fd.Name.GetToken(),
	}
	if owner != nil {
		sig.Owner = owner.Name
	}

	scope := symbols.NewEnclosedSymbolTable(w.symbolTable, symbols.ScopeFunction)
	for _, tp := range fd.TypeParams {
		p := typesystem.TParam{Name: tp.Value, Owner: key}
		if _, ok := scope.Define(symbols.Symbol{Name: tp.Value, Type: p, Kind: symbols.TypeParamSymbol, Token: tp.GetToken()}); !ok {
			w.errorf(diagnostics.ErrDuplicateDefinition, tp.GetToken(),
				"type parameter '%s' is listed twice in '%s'", tp.Value, fd.Name.Value)
			continue
		}
		sig.TypeParams = append(sig.TypeParams, p)
	}

	prevImplicit := w.implicit
	w.implicit = &implicitParams{owner: key}
	w.inScope(scope, func() {
		seen := make(map[string]bool)
		for i, p := range fd.Params {
			if p.Name == nil {
				continue
			}
			info := symbols.ParamInfo{
				Name:       p.Name.Value,
				HasDefault: p.Default != nil,
				Variadic:   p.Variadic,
				Token:      p.Name.GetToken(),
			}
			switch {
			case owner != nil && i == 0 && p.Type == nil:
				info.IsSelf = true
				info.Type = owner.SelfType()
			case p.Type != nil:
				info.Type = w.resolveType(p.Type)
			case p.Default != nil:
				info.Type = literalType(p.Default)
			default:
				info.Type = typesystem.Unknown
			}
			if seen[info.Name] {
				w.errorf(diagnostics.ErrDuplicateDefinition, info.Token,
					"duplicate parameter '%s' in '%s'", info.Name, fd.Name.Value)
			}
			seen[info.Name] = true
			if p.Variadic && i != len(fd.Params)-1 {
				w.errorf(diagnostics.ErrTypeMismatch, info.Token,
					"variadic parameter '%s' must be last", info.Name)
			}
			sig.Params = append(sig.Params, info)
		}
		if fd.ReturnType != nil {
			sig.Return = w.resolveType(fd.ReturnType)
		}
	})
	sig.TypeParams = append(sig.TypeParams, w.implicit.params...)
	w.implicit = prevImplicit

	if sig.Return == nil && (fd.Name.Value == config.InitMethodName || fd.Abstract || !returnsValue(fd.Body)) {
		sig.Return = typesystem.None
	}
	return sig
}

// literalType types a default value or field initializer without a scope.
// Anything but a literal is Unknown.
func literalType(e ast.Expression) typesystem.Type {
	switch x := e.(type) {
	case *ast.IntegerLiteral:
		return typesystem.Int
	case *ast.FloatLiteral:
		return typesystem.Float
	case *ast.StringLiteral:
		return typesystem.Str
	case *ast.BooleanLiteral:
		return typesystem.Bool
	case *ast.NoneLiteral:
		return typesystem.None
	case *ast.UnaryExpr:
		if x.Op == "-" || x.Op == "+" {
			return literalType(x.Operand)
		}
	}
	return typesystem.Unknown
}

// returnsValue reports whether a body contains `return <value>` outside of
// nested functions, classes and lambdas.
func returnsValue(body []ast.Statement) bool {
	found := false
	for _, stmt := range body {
		ast.Walk(stmt, func(n ast.Node) bool {
			if found {
				return false
			}
			switch x := n.(type) {
			case *ast.FunctionDef, *ast.ClassDef, *ast.LambdaExpr:
				return false
			case *ast.ReturnStmt:
				if x.Value != nil {
					found = true
				}
			}
			return true
		})
	}
	return found
}

// isStubBody reports a body made only of `pass`, a docstring or `...`.
func isStubBody(body []ast.Statement) bool {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.PassStmt:
		case *ast.ExpressionStmt:
			if _, ok := s.Expression.(*ast.StringLiteral); !ok {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// ensureReturn fills in the return type of a function declared without an
// annotation by checking its body once with diagnostics discarded. The
// result is the union of its returned values, plus None when control can
// fall off the end. Recursive use during inference sees Unknown.
func (a *Analyzer) ensureReturn(sig *symbols.FunctionSignature) typesystem.Type {
	if sig.Return != nil {
		return sig.Return
	}
	if a.sealed || sig.Node == nil || a.inferring[sig] {
		return typesystem.Unknown
	}
	if _, declared := a.sigs[sig.Node]; !declared {
		// Local functions are inferred where they are declared.
		return typesystem.Unknown
	}
	m, ok := a.moduleByName(sig.Module)
	if !ok {
		return typesystem.Unknown
	}
	a.inferring[sig] = true
	defer delete(a.inferring, sig)

	w := a.newWalker(m, diagnostics.NewCollector(m.File), nil, ModeInfer)
	var owner *symbols.ClassDescriptor
	if sig.Owner != "" {
		owner, _ = a.table.Class(sig.Owner)
	}
	var returns []typesystem.Type
	w.returns = &returns
	terminates := w.checkFunctionBody(sig, owner)

	ret := joinReturns(returns, terminates)
	if a.harvesting {
		return ret
	}
	sig.Return = ret
	a.logger.Debug("inferred return type",
		zap.String("function", sig.Name),
		zap.String("owner", sig.Owner),
		zap.Stringer("type", ret))
	return ret
}

// callable is the type of a function value. While the return type is
// still being inferred, as in a recursive call, the result is Unknown.
func (a *Analyzer) callable(sig *symbols.FunctionSignature, bound bool) typesystem.TFunc {
	ret := a.ensureReturn(sig)
	fn := sig.Type(bound)
	if sig.Return == nil {
		fn.ReturnType = ret
	}
	return fn
}

// joinReturns is the inferred return type from the collected return values.
// Values that depend on the function's own, still unknown result are left
// out, which is what types recursive functions.
func joinReturns(returns []typesystem.Type, terminates bool) typesystem.Type {
	var kept []typesystem.Type
	for _, t := range returns {
		if !typesystem.ContainsUnknown(t) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 && len(returns) > 0 {
		return typesystem.NormalizeUnion(returns)
	}
	if !terminates || len(kept) == 0 {
		kept = append(kept, typesystem.None)
	}
	return typesystem.NormalizeUnion(kept)
}
