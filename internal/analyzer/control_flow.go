package analyzer

import (
	"sort"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// flow is how a statement or block completes.
type flow int

const (
	flowNormal flow = iota // Falls through to the next statement
	flowJump               // break or continue
	flowExit               // return or raise
)

// mergeFlow is the completion of alternative paths: they fall through if
// any one of them does.
func mergeFlow(flows ...flow) flow {
	if len(flows) == 0 {
		return flowNormal
	}
	out := flowExit
	for _, f := range flows {
		if f < out {
			out = f
		}
	}
	return out
}

// checkBlock checks statements in order. Statements after a return, raise,
// break or continue are still checked; the block completes as the first
// statement that leaves it.
func (w *walker) checkBlock(stmts []ast.Statement) flow {
	out := flowNormal
	for _, stmt := range stmts {
		w.flow = flowNormal
		stmt.Accept(w)
		if out == flowNormal {
			out = w.flow
		}
	}
	w.flow = out
	return out
}

// branch is one path through a compound statement: the scope holding its
// narrowings, how it completes and what it assigned.
type branch struct {
	scope    *symbols.SymbolTable
	flow     flow
	assigned map[string]bool
}

// runBranch checks body in scope and records the names it assigns, both on
// the branch and on the enclosing branch.
func (w *walker) runBranch(scope *symbols.SymbolTable, body []ast.Statement) branch {
	outer := w.assigned
	w.assigned = make(map[string]bool)
	var f flow
	w.inScope(scope, func() { f = w.checkBlock(body) })
	b := branch{scope: scope, flow: f, assigned: w.assigned}
	for name := range w.assigned {
		outer[name] = true
	}
	w.assigned = outer
	return b
}

// emptyBranch is the path that skips a body, such as a missing else.
func (w *walker) emptyBranch(scope *symbols.SymbolTable) branch {
	return branch{scope: scope, flow: flowNormal, assigned: map[string]bool{}}
}

// join merges the narrowings of the branches that fall through into the
// current scope. A name ends up with the widened union of its types on
// those paths. Assigned names whose type is unknown on some path fall back
// to their declared type.
func (w *walker) join(branches ...branch) {
	seen := make(map[string]bool)
	assigned := make(map[string]bool)
	for _, b := range branches {
		for name := range b.assigned {
			seen[name] = true
			assigned[name] = true
		}
		for _, name := range b.scope.NarrowedNames() {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var types []typesystem.Type
		live, lost := 0, false
		for _, b := range branches {
			if b.flow != flowNormal {
				continue
			}
			live++
			t, ok := b.scope.TypeOf(name)
			if !ok || t == nil {
				lost = true
				break
			}
			types = append(types, t)
		}
		switch {
		case live == 0:
			continue
		case lost:
			if assigned[name] {
				w.symbolTable.Narrow(name, nil)
			}
			continue
		}
		joined := w.widenAll(types)
		if cur, ok := w.symbolTable.TypeOf(name); ok && cur != nil && typesystem.Equal(cur, joined) {
			continue
		}
		w.symbolTable.Narrow(name, joined)
	}
}

// markAssigned records a write to a name or attribute path.
func (w *walker) markAssigned(path string) {
	w.assigned[path] = true
}

func (w *walker) VisitIfStmt(n *ast.IfStmt) {
	w.inferExpr(n.Condition, nil)
	yes, no := w.narrowCondition(n.Condition)
	then := w.runBranch(yes, n.Then)
	otherwise := w.emptyBranch(no)
	if len(n.Else) > 0 {
		otherwise = w.runBranch(no, n.Else)
	}
	w.join(then, otherwise)
	w.flow = mergeFlow(then.flow, otherwise.flow)
}

// loop checks a loop body with break and continue allowed. It reports
// whether the body breaks out of the loop.
func (w *walker) loop(scope *symbols.SymbolTable, body []ast.Statement) (branch, bool) {
	prevLoop, prevBreaks := w.inLoop, w.breaks
	w.inLoop, w.breaks = true, false
	b := w.runBranch(scope, body)
	breaks := w.breaks
	w.inLoop, w.breaks = prevLoop, prevBreaks
	if b.flow == flowJump {
		b.flow = flowNormal
	}
	return b, breaks
}

func (w *walker) VisitWhileStmt(n *ast.WhileStmt) {
	w.inferExpr(n.Condition, nil)
	yes, no := w.narrowCondition(n.Condition)
	body, breaks := w.loop(yes, n.Body)
	if isAlwaysTrue(n.Condition) {
		// Only a break leaves `while True`.
		if !breaks {
			w.flow = flowExit
			return
		}
		w.join(body)
		w.flow = flowNormal
		return
	}
	w.join(body, w.emptyBranch(no))
	w.flow = flowNormal
}

func (w *walker) VisitForStmt(n *ast.ForStmt) {
	iter := w.inferExpr(n.Iter, nil)
	elem := w.iterationElement(iter, n.Iter.GetToken())
	w.assignTyped(n.Target, elem, n.Target.GetToken())
	body, _ := w.loop(w.newBlock(), n.Body)
	w.join(body, w.emptyBranch(w.newBlock()))
	w.flow = flowNormal
}

func (w *walker) VisitBreakStmt(n *ast.BreakStmt) {
	w.breaks = true
	w.flow = flowJump
}

func (w *walker) VisitContinueStmt(n *ast.ContinueStmt) {
	w.flow = flowJump
}

func (w *walker) VisitPassStmt(n *ast.PassStmt) {
	w.flow = flowNormal
}

func isAlwaysTrue(e ast.Expression) bool {
	switch x := e.(type) {
	case *ast.BooleanLiteral:
		return x.Value
	case *ast.IntegerLiteral:
		return x.Value != 0
	}
	return false
}
