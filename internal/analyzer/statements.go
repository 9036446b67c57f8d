package analyzer

import (
	"fmt"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/token"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

func (w *walker) VisitExpressionStmt(n *ast.ExpressionStmt) {
	w.flow = flowNormal
	w.inferExpr(n.Expression, nil)
}

func (w *walker) VisitAssignStmt(n *ast.AssignStmt) {
	w.flow = flowNormal
	if w.symbolTable.IsGlobalScope() {
		if _, ok := typeVarDecl(n); ok {
			return
		}
	}
	switch target := n.Target.(type) {
	case *ast.Identifier:
		if n.Annotation != nil {
			w.declareLocal(target, n)
			return
		}
		w.assignName(target, n.Value)

	case *ast.AttributeExpr:
		var declared typesystem.Type
		if n.Annotation != nil {
			declared = w.resolveType(n.Annotation)
		}
		w.assignAttribute(target, n.Value, declared)

	case *ast.SubscriptExpr:
		w.assignSubscript(target, n.Value, nil)

	case *ast.TupleLiteral, *ast.ListLiteral:
		t := w.inferExpr(n.Value, nil)
		w.assignTyped(target, t, n.Value.GetToken())

	default:
		w.inferExpr(n.Value, nil)
		w.errorf(diagnostics.ErrTypeMismatch, n.Target.GetToken(), "cannot assign to expression")
	}
}

// declareLocal handles `name: T = value`. Module variables were declared in
// the header pass; other names are declared in the enclosing function.
func (w *walker) declareLocal(id *ast.Identifier, n *ast.AssignStmt) {
	scope := w.declaringScope()
	sym, ok := scope.FindLocal(id.Value)
	var declared typesystem.Type
	switch {
	case ok && sym.DefinitionNode == n && sym.Type != nil:
		declared = sym.Type
	case ok && sym.Kind != symbols.VariableSymbol && sym.Kind != symbols.ParameterSymbol:
		w.errorf(diagnostics.ErrDuplicateDefinition, id.GetToken(),
			"'%s' is already defined at line %d", id.Value, sym.Token.Line)
		declared = w.resolveType(n.Annotation)
	default:
		declared = w.resolveType(n.Annotation)
		if _, isNone := n.Value.(*ast.NoneLiteral); isNone {
			declared = typesystem.MakeOptional(declared)
		}
		if ok && sym.Type != nil && !sym.IsPending && !typesystem.Equal(sym.Type, declared) {
			w.errorf(diagnostics.ErrDuplicateDefinition, id.GetToken(),
				"'%s' is already declared as %s at line %d", id.Value, sym.Type, sym.Token.Line)
			declared = sym.Type
		} else {
			scope.Replace(symbols.Symbol{
				Name:           id.Value,
				Type:           declared,
				Kind:           symbols.VariableSymbol,
				IsMutable:      true,
				OriginModule:   w.module.Name,
				DefinitionNode: n,
				DefinitionFile: w.module.File,
				Token:          id.GetToken(),
			})
		}
	}
	if n.Value == nil {
		return
	}
	t := w.checkExpr(n.Value, declared, fmt.Sprintf("assignment to '%s'", id.Value))
	w.narrowAssigned(id.Value, declared, t)
}

// findAssignable returns the symbol a plain assignment to name writes:
// the nearest definition up to the enclosing function or module scope.
func (w *walker) findAssignable(name string) (symbols.Symbol, *symbols.SymbolTable, bool) {
	for scope := w.symbolTable; scope != nil; scope = scope.Outer() {
		if sym, ok := scope.FindLocal(name); ok {
			return sym, scope, true
		}
		if scope.IsFunctionScope() || scope.IsGlobalScope() {
			break
		}
	}
	return symbols.Symbol{}, nil, false
}

func (w *walker) assignName(id *ast.Identifier, value ast.Expression) {
	var expected typesystem.Type
	if sym, _, ok := w.findAssignable(id.Value); ok && sym.Type != nil && !sym.IsPending && sym.Kind != symbols.FunctionSymbol {
		expected = sym.Type
	}
	t := w.inferExpr(value, expected)
	w.bindName(id, t, value.GetToken())
}

// bindName stores a value of type t in a plain name. The first assignment
// declares the name; a name first assigned None becomes Optional of the
// first other value it receives.
func (w *walker) bindName(id *ast.Identifier, t typesystem.Type, tok token.Token) {
	name := id.Value
	sym, scope, ok := w.findAssignable(name)
	if !ok {
		w.declaringScope().Define(symbols.Symbol{
			Name:           name,
			Type:           t,
			Kind:           symbols.VariableSymbol,
			IsPending:      typesystem.IsNone(t),
			IsMutable:      true,
			OriginModule:   w.module.Name,
			DefinitionFile: w.module.File,
			Token:          id.GetToken(),
		})
		w.record(id, t)
		w.markAssigned(name)
		return
	}
	switch sym.Kind {
	case symbols.ClassSymbol, symbols.FunctionSymbol, symbols.AliasSymbol, symbols.TypeParamSymbol:
		w.errorf(diagnostics.ErrTypeMismatch, id.GetToken(), "cannot assign to %s '%s'", sym.Kind, name)
		return
	}
	w.record(id, t)
	w.markAssigned(name)

	switch {
	case sym.Type == nil:
		// First assignment of a module variable named in pass 1.
		sym.Type = t
		sym.IsPending = typesystem.IsNone(t)
		scope.Replace(sym)
		w.symbolTable.Narrow(name, nil)
	case sym.IsPending:
		if typesystem.IsNone(t) || typesystem.IsUnknown(t) {
			return
		}
		scope.Finalize(name, typesystem.MakeOptional(t))
		w.symbolTable.Narrow(name, t)
	case !w.isAssignable(sym.Type, t):
		w.errorf(diagnostics.ErrTypeMismatch, tok,
			"cannot assign %s to '%s' of type %s", t, name, sym.Type)
		w.symbolTable.Narrow(name, nil)
	default:
		w.narrowAssigned(name, sym.Type, t)
	}
}

// narrowAssigned narrows a union or Optional name to the type just stored.
func (w *walker) narrowAssigned(path string, declared, t typesystem.Type) {
	w.markAssigned(path)
	switch declared.(type) {
	case typesystem.TUnion, typesystem.TOptional:
	default:
		w.symbolTable.Narrow(path, nil)
		return
	}
	if typesystem.IsUnknown(t) || !w.isAssignable(declared, t) {
		w.symbolTable.Narrow(path, nil)
		return
	}
	w.symbolTable.Narrow(path, t)
}

// assignAttribute handles `obj.name = value`. value may be nil when the
// stored type is already known, as for augmented assignment.
func (w *walker) assignAttribute(target *ast.AttributeExpr, value ast.Expression, declared typesystem.Type) {
	obj := w.inferExpr(target.Object, nil)
	if target.Name == nil {
		w.inferExpr(value, nil)
		return
	}
	name := target.Name.Value
	path, hasPath := exprPath(target)

	if w.harvest != nil {
		if attr, ok := w.selfAttribute(target); ok {
			t := w.inferExpr(value, declared)
			if declared != nil {
				t = declared
				if typesystem.IsNone(w.TypeMap[value]) {
					t = typesystem.MakeOptional(declared)
				}
			}
			w.harvestField(attr, t, target.Name.GetToken())
			if hasPath {
				w.markAssigned(path)
				w.symbolTable.Narrow(path, nil)
			}
			return
		}
	}

	field := w.attributeType(obj, name, target.Name.GetToken())
	if _, isMethod := field.(typesystem.TFunc); isMethod {
		if _, _, m, ok := w.memberOf(obj, name); ok && m.Method != nil {
			w.inferExpr(value, nil)
			w.errorf(diagnostics.ErrTypeMismatch, target.Name.GetToken(), "cannot assign to method '%s'", name)
			return
		}
	}
	if declared != nil && !typesystem.IsUnknown(field) && !typesystem.Equal(declared, field) {
		w.errorf(diagnostics.ErrTypeMismatch, target.Name.GetToken(),
			"attribute '%s' is declared as %s, not %s", name, field, declared)
	}
	t := w.inferExpr(value, field)
	w.storeAttribute(target, field, t)
}

// storeAttribute checks a value of type t stored in an attribute of type
// field and narrows the attribute path.
func (w *walker) storeAttribute(target *ast.AttributeExpr, field, t typesystem.Type) {
	if !w.isAssignable(field, t) {
		w.errorf(diagnostics.ErrTypeMismatch, target.Name.GetToken(),
			"cannot assign %s to attribute '%s' of type %s", t, target.Name.Value, field)
		return
	}
	if path, ok := exprPath(target); ok {
		w.narrowAssigned(path, field, t)
	}
}

// memberOf is findMember on the non-None part of t.
func (w *walker) memberOf(t typesystem.Type, name string) (*symbols.ClassDescriptor, typesystem.Type, *symbols.Member, bool) {
	desc, m, self, ok := w.findMember(typesystem.RemoveNone(t), name)
	return desc, self, m, ok
}

// assignSubscript handles `obj[key] = value` through __setitem__. value is
// nil when the stored type t is already known.
func (w *walker) assignSubscript(target *ast.SubscriptExpr, value ast.Expression, t typesystem.Type) {
	obj := w.inferExpr(target.Object, nil)
	key := indexExpr(target)
	if typesystem.IsUnknown(obj) {
		w.inferExpr(key, nil)
		if value != nil {
			w.inferExpr(value, nil)
		}
		return
	}
	if typesystem.IsOptional(obj) {
		if w.an.opts.StrictOptional {
			w.errorf(diagnostics.ErrOptionalAccess, target.GetToken(),
				"value of type %s that may be None does not support item assignment", obj)
		}
		obj = typesystem.RemoveNone(obj)
	}
	fn, ok := w.lookupMethod(obj, config.SetItemMethodName)
	if !ok || len(fn.Params) < 2 {
		w.inferExpr(key, nil)
		if value != nil {
			w.inferExpr(value, nil)
		}
		w.errorf(diagnostics.ErrTypeMismatch, target.GetToken(), "'%s' object does not support item assignment", obj)
		return
	}
	w.checkExpr(key, fn.Params[0], "index")
	if value != nil {
		w.checkExpr(value, fn.Params[1], "item assignment")
		return
	}
	if !w.isAssignable(fn.Params[1], t) {
		w.errorf(diagnostics.ErrTypeMismatch, target.GetToken(),
			"item assignment: expected %s, got %s", fn.Params[1], t)
	}
}

// indexExpr is the single key of a subscript; `d[a, b]` indexes by a tuple.
func indexExpr(n *ast.SubscriptExpr) ast.Expression {
	if len(n.Index) == 1 {
		return n.Index[0]
	}
	return &ast.TupleLiteral{Token: n.Token, Elements: n.Index}
}

// assignTyped stores a value of known type in any assignment target: for
// loop variables, unpacking and augmented assignment.
func (w *walker) assignTyped(target ast.Expression, t typesystem.Type, tok token.Token) {
	switch x := target.(type) {
	case *ast.Identifier:
		w.bindName(x, t, tok)
	case *ast.AttributeExpr:
		obj := w.inferExpr(x.Object, nil)
		if x.Name == nil {
			return
		}
		if w.harvest != nil {
			if attr, ok := w.selfAttribute(x); ok {
				w.harvestField(attr, t, x.Name.GetToken())
				return
			}
		}
		field := w.attributeType(obj, x.Name.Value, x.Name.GetToken())
		w.storeAttribute(x, field, t)
	case *ast.SubscriptExpr:
		w.assignSubscript(x, nil, t)
	case *ast.TupleLiteral:
		w.unpack(x.Elements, t, tok)
	case *ast.ListLiteral:
		w.unpack(x.Elements, t, tok)
	default:
		w.errorf(diagnostics.ErrTypeMismatch, target.GetToken(), "cannot assign to expression")
	}
}

func (w *walker) unpack(targets []ast.Expression, t typesystem.Type, tok token.Token) {
	types := w.unpackTypes(t, len(targets), tok)
	for i, target := range targets {
		w.assignTyped(target, types[i], tok)
	}
}

// unpackTypes splits a value into n parts: a tuple by position, any other
// iterable into n of its elements.
func (w *walker) unpackTypes(t typesystem.Type, n int, tok token.Token) []typesystem.Type {
	out := make([]typesystem.Type, n)
	fill := func(el typesystem.Type) []typesystem.Type {
		for i := range out {
			out[i] = el
		}
		return out
	}
	if typesystem.IsUnknown(t) {
		return fill(typesystem.Unknown)
	}
	if tt, ok := t.(typesystem.TTuple); ok {
		if len(tt.Elements) != n {
			w.errorf(diagnostics.ErrTypeMismatch, tok,
				"cannot unpack %d values into %d targets", len(tt.Elements), n)
			return fill(typesystem.Unknown)
		}
		copy(out, tt.Elements)
		return out
	}
	return fill(w.iterationElement(t, tok))
}

func (w *walker) VisitAugAssignStmt(n *ast.AugAssignStmt) {
	w.flow = flowNormal
	left := w.inferExpr(n.Target, nil)
	right := w.inferExpr(n.Value, nil)
	result := w.resolveAugmented(n.Op, left, right, n.GetToken())
	switch target := n.Target.(type) {
	case *ast.Identifier, *ast.AttributeExpr, *ast.SubscriptExpr:
		w.assignTyped(target, result, n.GetToken())
	default:
		w.errorf(diagnostics.ErrTypeMismatch, n.Target.GetToken(), "illegal target for augmented assignment")
	}
}
