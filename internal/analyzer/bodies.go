package analyzer

import (
	"fmt"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// checkFunctionBody checks a top-level function or a method. It reports
// whether the body always leaves through return or raise.
func (w *walker) checkFunctionBody(sig *symbols.FunctionSignature, owner *symbols.ClassDescriptor) bool {
	parent := w.module.Globals
	if owner != nil {
		parent = w.classScope(owner)
	}
	return w.checkFunctionIn(parent, sig)
}

// checkFunctionIn checks the body of sig in a new function scope below
// parent: parameters are bound, defaults are checked against their
// annotations and a body that can fall off the end of a function declared
// to return a value is reported.
func (w *walker) checkFunctionIn(parent *symbols.SymbolTable, sig *symbols.FunctionSignature) bool {
	fd := sig.Node
	if fd == nil {
		return false
	}
	scope := symbols.NewEnclosedSymbolTable(parent, symbols.ScopeFunction)
	scope.Function = sig
	for _, tp := range sig.TypeParams {
		scope.Define(symbols.Symbol{Name: tp.Name, Type: tp, Kind: symbols.TypeParamSymbol, Token: sig.Token})
	}
	for _, p := range sig.Params {
		t := p.Type
		if p.Variadic {
			t = typesystem.TClass{Name: config.TupleTypeName, Args: []typesystem.Type{p.Type}}
		}
		scope.Define(symbols.Symbol{
			Name:         p.Name,
			Type:         t,
			Kind:         symbols.ParameterSymbol,
			IsMutable:    true,
			OriginModule: w.module.Name,
			Token:        p.Token,
		})
	}

	prevLoop, prevBreaks, prevHandlers, prevAssigned, prevFlow := w.inLoop, w.breaks, w.handlers, w.assigned, w.flow
	w.inLoop, w.breaks, w.handlers, w.assigned = false, false, nil, make(map[string]bool)
	defer func() {
		w.inLoop, w.breaks, w.handlers, w.assigned, w.flow = prevLoop, prevBreaks, prevHandlers, prevAssigned, prevFlow
	}()

	var terminates bool
	w.inScope(scope, func() {
		for i, p := range fd.Params {
			if p.Default == nil || p.Type == nil || i >= len(sig.Params) {
				continue
			}
			w.checkExpr(p.Default, sig.Params[i].Type, fmt.Sprintf("default for parameter '%s'", sig.Params[i].Name))
		}
		terminates = w.checkBlock(fd.Body) == flowExit
	})

	if w.mode == ModeBodies && w.returns == nil && sig.Return != nil && !sig.Abstract &&
		!terminates && !isStubBody(fd.Body) && !w.isAssignable(sig.Return, typesystem.None) {
		w.errorf(diagnostics.ErrTypeMismatch, sig.Token,
			"missing return statement: function '%s' must return %s", sig.Name, sig.Return)
	}
	return terminates
}

func (w *walker) VisitReturnStmt(n *ast.ReturnStmt) {
	w.flow = flowExit
	fn := w.symbolTable.Function
	if fn == nil {
		if n.Value != nil {
			w.inferExpr(n.Value, nil)
		}
		w.errorf(diagnostics.ErrTypeMismatch, n.GetToken(), "'return' outside function")
		return
	}
	if w.returns != nil {
		t := typesystem.Type(typesystem.None)
		if n.Value != nil {
			t = w.inferExpr(n.Value, nil)
		}
		*w.returns = append(*w.returns, t)
		return
	}
	declared := fn.Return
	if declared == nil {
		declared = w.an.ensureReturn(fn)
	}
	if n.Value == nil {
		if !w.isAssignable(declared, typesystem.None) {
			w.errorf(diagnostics.ErrTypeMismatch, n.GetToken(),
				"return value missing: function '%s' must return %s", fn.Name, declared)
		}
		return
	}
	w.checkExpr(n.Value, declared, fmt.Sprintf("return value of '%s'", fn.Name))
}

// VisitFunctionDef checks a function declared inside a body. Top-level
// functions and methods are checked as units of their own.
func (w *walker) VisitFunctionDef(fd *ast.FunctionDef) {
	w.flow = flowNormal
	if w.symbolTable.Function == nil || fd.Name == nil {
		return
	}
	sig := w.buildSignature(fd, nil)
	w.localSigs[fd] = sig
	scope := w.declaringScope()
	if prev, ok := scope.Define(symbols.Symbol{
		Name:           fd.Name.Value,
		Kind:           symbols.FunctionSymbol,
		OriginModule:   w.module.Name,
		DefinitionNode: fd,
		DefinitionFile: w.module.File,
		Token:          fd.Name.GetToken(),
	}); !ok && prev.DefinitionNode != fd {
		w.errorf(diagnostics.ErrDuplicateDefinition, fd.Name.GetToken(),
			"'%s' is already defined at line %d", fd.Name.Value, prev.Token.Line)
	}

	prevReturns, prevMode := w.returns, w.mode
	if sig.Return == nil {
		var returns []typesystem.Type
		w.returns, w.mode = &returns, ModeInfer
		terminates := w.checkFunctionIn(w.symbolTable, sig)
		sig.Return = joinReturns(returns, terminates)
		w.mode = prevMode
	}
	w.returns = nil
	w.checkFunctionIn(w.symbolTable, sig)
	w.returns = prevReturns
}

// VisitClassDef skips classes: top-level ones are checked as units and
// classes nested in bodies are not supported.
func (w *walker) VisitClassDef(n *ast.ClassDef) {
	w.flow = flowNormal
	if w.symbolTable.Function != nil && n.Name != nil {
		w.errorf(diagnostics.ErrUndefinedSymbol, n.Name.GetToken(),
			"class '%s' must be declared at module level", n.Name.Value)
	}
}

// checkClassBody checks the methods of a class and the initializers of its
// class-level attributes.
func (w *walker) checkClassBody(desc *symbols.ClassDescriptor) {
	if desc.Node == nil {
		return
	}
	scope := w.classScope(desc)
	w.inScope(scope, func() {
		for _, stmt := range desc.Node.Body {
			w.flow = flowNormal
			switch s := stmt.(type) {
			case *ast.FunctionDef:
				if sig, ok := w.an.sigs[s]; ok && s.Name != nil && desc.Methods[s.Name.Value] == sig {
					w.checkFunctionIn(scope, sig)
				}
			case *ast.AssignStmt:
				w.checkClassField(desc, s)
			case *ast.ClassDef:
			default:
				stmt.Accept(w)
			}
		}
	})
}

func (w *walker) checkClassField(desc *symbols.ClassDescriptor, s *ast.AssignStmt) {
	id, ok := s.Target.(*ast.Identifier)
	if !ok || s.Value == nil {
		if s.Value != nil {
			w.inferExpr(s.Value, nil)
		}
		return
	}
	f, ok := desc.Fields[id.Value]
	if !ok {
		w.inferExpr(s.Value, nil)
		return
	}
	w.checkExpr(s.Value, f.Type, fmt.Sprintf("attribute '%s'", id.Value))
}

// declaringScope is the scope a plain assignment defines names in: the
// enclosing function, or the module.
func (w *walker) declaringScope() *symbols.SymbolTable {
	for scope := w.symbolTable; scope != nil; scope = scope.Outer() {
		if scope.IsFunctionScope() || scope.IsGlobalScope() {
			return scope
		}
	}
	return w.symbolTable
}
