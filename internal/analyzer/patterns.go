package analyzer

import (
	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// matchCase opens the scope of one case: captures are bound, the subject
// path is narrowed to what the pattern admits and the guard is applied.
func (w *walker) matchCase(subject typesystem.Type, path string, pattern ast.Pattern, guard ast.Expression) *symbols.SymbolTable {
	scope := w.newBlock()
	w.inScope(scope, func() {
		bound := make(map[string]bool)
		narrowed := w.bindPattern(pattern, subject, bound)
		if path != "" && narrowed != nil {
			scope.Narrow(path, narrowed)
		}
	})
	if guard == nil {
		return scope
	}
	var yes *symbols.SymbolTable
	w.inScope(scope, func() {
		w.inferExpr(guard, nil)
		yes, _ = w.narrowCondition(guard)
	})
	return yes
}

func (w *walker) VisitMatchStmt(n *ast.MatchStmt) {
	subject := w.inferExpr(n.Subject, nil)
	path, _ := exprPath(n.Subject)
	var branches []branch
	exhaustive := false
	for _, c := range n.Cases {
		scope := w.matchCase(subject, path, c.Pattern, c.Guard)
		branches = append(branches, w.runBranch(scope, c.Body))
		if c.Guard == nil && isIrrefutable(c.Pattern) {
			exhaustive = true
		}
	}
	if !exhaustive {
		branches = append(branches, w.emptyBranch(w.newBlock()))
	}
	w.join(branches...)
	flows := make([]flow, len(branches))
	for i, b := range branches {
		flows[i] = b.flow
	}
	w.flow = mergeFlow(flows...)
}

// inferMatchExpr types a match expression as the union of its arm values.
func (w *walker) inferMatchExpr(n *ast.MatchExpr, expected typesystem.Type) typesystem.Type {
	subject := w.inferExpr(n.Subject, nil)
	path, _ := exprPath(n.Subject)
	var types []typesystem.Type
	for _, arm := range n.Arms {
		scope := w.matchCase(subject, path, arm.Pattern, arm.Guard)
		w.inScope(scope, func() {
			types = append(types, w.inferExpr(arm.Body, expected))
		})
	}
	if len(types) == 0 {
		return typesystem.Unknown
	}
	return typesystem.NormalizeUnion(types)
}

func isIrrefutable(p ast.Pattern) bool {
	switch p.(type) {
	case *ast.WildcardPattern, *ast.CapturePattern:
		return true
	}
	return false
}

// bindPattern checks a pattern against the subject type and binds its
// captures in the current scope. It returns the subject type narrowed by
// the pattern, or nil when the pattern does not narrow.
func (w *walker) bindPattern(p ast.Pattern, subject typesystem.Type, bound map[string]bool) typesystem.Type {
	switch x := p.(type) {
	case *ast.WildcardPattern:
		return nil

	case *ast.CapturePattern:
		if x.Name == nil || x.Name.Value == config.WildcardName {
			return nil
		}
		if bound[x.Name.Value] {
			w.errorf(diagnostics.ErrDuplicateDefinition, x.Name.GetToken(),
				"name '%s' is bound twice in the same pattern", x.Name.Value)
		}
		bound[x.Name.Value] = true
		w.bindLocal(x.Name, subject, x.Name.GetToken())
		return nil

	case *ast.LiteralPattern:
		lit := w.inferExpr(x.Value, nil)
		if typesystem.IsUnknown(subject) {
			return nil
		}
		if !w.isAssignable(subject, lit) && !w.isAssignable(lit, subject) {
			w.errorf(diagnostics.ErrTypeMismatch, x.GetToken(),
				"pattern of type %s can never match a subject of type %s", lit, subject)
			return nil
		}
		if typesystem.IsNone(lit) {
			return typesystem.None
		}
		if len(typesystem.Members(subject)) > 1 {
			return typesystem.RemoveNone(lit)
		}
		return nil

	case *ast.TuplePattern:
		return w.bindTuplePattern(x, subject, bound)

	case *ast.ClassPattern:
		return w.bindClassPattern(x, subject, bound)
	}
	return nil
}

func (w *walker) bindTuplePattern(p *ast.TuplePattern, subject typesystem.Type, bound map[string]bool) typesystem.Type {
	var elems []typesystem.Type
	switch t := subject.(type) {
	case typesystem.TTuple:
		if len(t.Elements) != len(p.Elements) {
			w.errorf(diagnostics.ErrTypeMismatch, p.GetToken(),
				"tuple pattern of length %d can never match a subject of type %s", len(p.Elements), subject)
			elems = nil
			break
		}
		elems = t.Elements
	default:
		el, ok := w.elementOf(subject)
		if !ok {
			w.errorf(diagnostics.ErrTypeMismatch, p.GetToken(),
				"tuple pattern can never match a subject of type %s", subject)
		}
		if !ok || el == nil {
			el = typesystem.Unknown
		}
		elems = make([]typesystem.Type, len(p.Elements))
		for i := range elems {
			elems[i] = el
		}
	}
	if elems == nil {
		elems = make([]typesystem.Type, len(p.Elements))
		for i := range elems {
			elems[i] = typesystem.Unknown
		}
	}
	for i, el := range p.Elements {
		w.bindPattern(el, elems[i], bound)
	}
	return nil
}

func (w *walker) bindClassPattern(p *ast.ClassPattern, subject typesystem.Type, bound map[string]bool) typesystem.Type {
	if p.Class == nil {
		return nil
	}
	sym, ok := w.symbolTable.Find(p.Class.Value)
	if !ok {
		w.errorf(diagnostics.ErrUndefinedSymbol, p.Class.GetToken(), "name '%s' is not defined", p.Class.Value)
		return nil
	}
	var classT typesystem.Type
	switch sym.Kind {
	case symbols.ClassSymbol:
		classT = w.inferIdentifier(p.Class)
	case symbols.AliasSymbol:
		classT = typesystem.TType{Type: w.an.aliasTarget(sym)}
	default:
		w.errorf(diagnostics.ErrTypeMismatch, p.Class.GetToken(), "'%s' is not a class", p.Class.Value)
		return nil
	}
	w.record(p.Class, classT)
	classes := w.classArgs(p.Class)
	if len(classes) == 0 {
		return nil
	}
	matched, _ := w.splitByClass(subject, classes)
	var narrowed typesystem.Type
	if len(matched) == 0 {
		w.errorf(diagnostics.ErrTypeMismatch, p.GetToken(),
			"class pattern %s can never match a subject of type %s", classes[0], subject)
		narrowed = classes[0]
	} else {
		narrowed = typesystem.NormalizeUnion(matched)
	}
	for _, f := range p.Fields {
		if f.Name == nil {
			continue
		}
		ft := w.attributeType(narrowed, f.Name.Value, f.Name.GetToken())
		w.bindPattern(f.Pattern, ft, bound)
	}
	return narrowed
}
