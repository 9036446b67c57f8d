package analyzer

import (
	"strings"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/token"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

func (w *walker) VisitTryStmt(n *ast.TryStmt) {
	caught := w.checkHandlers(n)
	var covered []typesystem.Type
	for _, types := range caught {
		covered = append(covered, types...)
	}
	w.handlers = append(w.handlers, covered)
	body := w.runBranch(w.newBlock(), n.Body)
	w.handlers = w.handlers[:len(w.handlers)-1]

	main := body
	if len(n.Else) > 0 {
		// else runs after the body completed, so it sees the body's narrowings.
		els := w.runBranch(symbols.NewEnclosedSymbolTable(body.scope, symbols.ScopeBlock), n.Else)
		if body.flow == flowNormal {
			assigned := make(map[string]bool)
			for name := range body.assigned {
				assigned[name] = true
			}
			for name := range els.assigned {
				assigned[name] = true
			}
			main = branch{scope: els.scope, flow: els.flow, assigned: assigned}
		}
	}

	branches := []branch{main}
	values := []typesystem.Type{w.blockValue(n.Body, main.flow)}
	for i, h := range n.Handlers {
		scope := w.newBlock()
		if h.Name != nil {
			t := typesystem.NormalizeUnion(caught[i])
			scope.Define(symbols.Symbol{
				Name:         h.Name.Value,
				Type:         t,
				Kind:         symbols.VariableSymbol,
				OriginModule: w.module.Name,
				Token:        h.Name.GetToken(),
			})
			w.record(h.Name, t)
		}
		hb := w.runBranch(scope, h.Body)
		branches = append(branches, hb)
		values = append(values, w.blockValue(h.Body, hb.flow))
	}
	w.join(branches...)
	flows := make([]flow, len(branches))
	for i, b := range branches {
		flows[i] = b.flow
	}
	f := mergeFlow(flows...)

	if len(n.Finally) > 0 {
		fin := w.runBranch(w.newBlock(), n.Finally)
		if fin.flow != flowNormal {
			f = fin.flow
		}
	}
	w.flow = f

	var kept []typesystem.Type
	for _, v := range values {
		if v != nil {
			kept = append(kept, v)
		}
	}
	if len(kept) > 0 {
		w.record(n, typesystem.NormalizeUnion(kept))
	}
}

// blockValue is the completion value of a block: the type of a final
// expression statement, None otherwise, nil when the block never completes.
func (w *walker) blockValue(body []ast.Statement, f flow) typesystem.Type {
	if f != flowNormal {
		return nil
	}
	if len(body) == 0 {
		return typesystem.None
	}
	if es, ok := body[len(body)-1].(*ast.ExpressionStmt); ok {
		if t, ok := w.TypeMap[es.Expression]; ok {
			return t
		}
	}
	return typesystem.None
}

// checkHandlers resolves the exception types of each except clause. A type
// that does not derive from BaseException is incompatible; a clause whose
// types are all caught by earlier clauses is unreachable.
func (w *walker) checkHandlers(n *ast.TryStmt) [][]typesystem.Type {
	out := make([][]typesystem.Type, len(n.Handlers))
	var earlier []typesystem.Type
	bare := false
	for i, h := range n.Handlers {
		tok := clauseToken(h, n)
		if bare {
			w.errorf(diagnostics.ErrUnreachableExceptCase, tok,
				"except clause is unreachable: a bare except clause above catches every exception")
		}
		if len(h.Types) == 0 {
			bare = true
			out[i] = []typesystem.Type{typesystem.TClass{Name: config.BaseExceptionTypeName}}
			continue
		}
		var types []typesystem.Type
		for _, te := range h.Types {
			t := w.resolveType(te)
			switch {
			case typesystem.IsUnknown(t):
			case !w.isExceptionType(t):
				w.errorf(diagnostics.ErrIncompatibleCatch, typeToken(te, tok),
					"catching '%s' which does not derive from BaseException", t)
				t = typesystem.Unknown
			}
			types = append(types, t)
		}
		out[i] = types
		if !bare {
			if names, by, ok := w.coveredBy(types, earlier); ok {
				w.errorf(diagnostics.ErrUnreachableExceptCase, tok,
					"except clause for %s is unreachable: already caught by the clause for %s", names, by)
			}
		}
		for _, t := range types {
			if !typesystem.IsUnknown(t) {
				earlier = append(earlier, t)
			}
		}
	}
	return out
}

// coveredBy reports whether every type is a subclass of one of earlier and
// names the clause type that covers the first one.
func (w *walker) coveredBy(types, earlier []typesystem.Type) (string, typesystem.Type, bool) {
	if len(types) == 0 || len(earlier) == 0 {
		return "", nil, false
	}
	var by typesystem.Type
	names := make([]string, 0, len(types))
	for _, t := range types {
		if typesystem.IsUnknown(t) {
			return "", nil, false
		}
		found := false
		for _, e := range earlier {
			if w.isAssignable(e, t) {
				if by == nil {
					by = e
				}
				found = true
				break
			}
		}
		if !found {
			return "", nil, false
		}
		names = append(names, t.String())
	}
	return strings.Join(names, ", "), by, true
}

// clauseToken positions a diagnostic about an except clause.
func clauseToken(h *ast.ExceptClause, n *ast.TryStmt) token.Token {
	switch {
	case h.Token.Line != 0:
		return h.Token
	case len(h.Types) > 0:
		return typeToken(h.Types[0], n.Token)
	case h.Name != nil:
		return h.Name.GetToken()
	case len(h.Body) > 0:
		return h.Body[0].GetToken()
	}
	return n.Token
}

func (w *walker) VisitRaiseStmt(n *ast.RaiseStmt) {
	w.flow = flowExit
	if n.Exception == nil {
		return
	}
	t := w.inferExpr(n.Exception, nil)
	if typesystem.IsUnknown(t) {
		return
	}
	if tt, ok := t.(typesystem.TType); ok {
		t = tt.Type
	}
	for _, m := range typesystem.Members(t) {
		if !w.isExceptionType(m) {
			w.errorf(diagnostics.ErrTypeMismatch, n.Exception.GetToken(),
				"exceptions must derive from BaseException, got %s", t)
			return
		}
	}
	if w.an.opts.WarnUncaughtRaises && !w.isCaught(t) {
		w.warnf(diagnostics.ErrUncaughtRaise, n.GetToken(),
			"%s raised here is not caught by an enclosing handler", t)
	}
}

// isCaught reports whether every member of an exception type is handled by
// an enclosing try of the current function.
func (w *walker) isCaught(t typesystem.Type) bool {
	for _, m := range typesystem.Members(t) {
		caught := false
		for _, level := range w.handlers {
			for _, h := range level {
				if w.isAssignable(h, m) {
					caught = true
				}
			}
		}
		if !caught {
			return false
		}
	}
	return true
}
