package ast

// Walk traverses the tree rooted at n in source order, calling fn for every
// node. If fn returns false the children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case *Program:
		walkStmts(n.Statements, fn)
	case *ClassDef:
		walkIdent(n.Name, fn)
		for _, tp := range n.TypeParams {
			walkIdent(tp, fn)
		}
		for _, b := range n.Bases {
			walkType(b, fn)
		}
		walkStmts(n.Body, fn)
	case *FunctionDef:
		walkIdent(n.Name, fn)
		for _, tp := range n.TypeParams {
			walkIdent(tp, fn)
		}
		walkParams(n.Params, fn)
		walkType(n.ReturnType, fn)
		walkStmts(n.Body, fn)
	case *TypeAliasStmt:
		walkIdent(n.Name, fn)
		walkType(n.Value, fn)
	case *ImportFromStmt:
		for _, in := range n.Names {
			walkIdent(in.Name, fn)
			walkIdent(in.Alias, fn)
		}
	case *AssignStmt:
		walkExpr(n.Target, fn)
		walkType(n.Annotation, fn)
		walkExpr(n.Value, fn)
	case *AugAssignStmt:
		walkExpr(n.Target, fn)
		walkExpr(n.Value, fn)
	case *ExpressionStmt:
		walkExpr(n.Expression, fn)
	case *ReturnStmt:
		walkExpr(n.Value, fn)
	case *IfStmt:
		walkExpr(n.Condition, fn)
		walkStmts(n.Then, fn)
		walkStmts(n.Else, fn)
	case *WhileStmt:
		walkExpr(n.Condition, fn)
		walkStmts(n.Body, fn)
	case *ForStmt:
		walkExpr(n.Target, fn)
		walkExpr(n.Iter, fn)
		walkStmts(n.Body, fn)
	case *TryStmt:
		walkStmts(n.Body, fn)
		for _, h := range n.Handlers {
			for _, t := range h.Types {
				walkType(t, fn)
			}
			walkIdent(h.Name, fn)
			walkStmts(h.Body, fn)
		}
		walkStmts(n.Else, fn)
		walkStmts(n.Finally, fn)
	case *RaiseStmt:
		walkExpr(n.Exception, fn)
	case *MatchStmt:
		walkExpr(n.Subject, fn)
		for _, c := range n.Cases {
			walkPattern(c.Pattern, fn)
			walkExpr(c.Guard, fn)
			walkStmts(c.Body, fn)
		}
	case *BinaryExpr:
		walkExpr(n.Left, fn)
		walkExpr(n.Right, fn)
	case *UnaryExpr:
		walkExpr(n.Operand, fn)
	case *CallExpr:
		walkExpr(n.Callee, fn)
		for _, a := range n.Args {
			walkExpr(a, fn)
		}
	case *AttributeExpr:
		walkExpr(n.Object, fn)
		walkIdent(n.Name, fn)
	case *SubscriptExpr:
		walkExpr(n.Object, fn)
		for _, i := range n.Index {
			walkExpr(i, fn)
		}
	case *LambdaExpr:
		walkParams(n.Params, fn)
		walkExpr(n.Body, fn)
	case *ListLiteral:
		for _, e := range n.Elements {
			walkExpr(e, fn)
		}
	case *SetLiteral:
		for _, e := range n.Elements {
			walkExpr(e, fn)
		}
	case *TupleLiteral:
		for _, e := range n.Elements {
			walkExpr(e, fn)
		}
	case *DictLiteral:
		for _, e := range n.Entries {
			walkExpr(e.Key, fn)
			walkExpr(e.Value, fn)
		}
	case *ConditionalExpr:
		walkExpr(n.Then, fn)
		walkExpr(n.Condition, fn)
		walkExpr(n.Else, fn)
	case *MatchExpr:
		walkExpr(n.Subject, fn)
		for _, a := range n.Arms {
			walkPattern(a.Pattern, fn)
			walkExpr(a.Guard, fn)
			walkExpr(a.Body, fn)
		}
	case *Comprehension:
		walkExpr(n.Key, fn)
		walkExpr(n.Element, fn)
		for _, c := range n.Clauses {
			walkExpr(c.Target, fn)
			walkExpr(c.Iter, fn)
			for _, cond := range c.Conditions {
				walkExpr(cond, fn)
			}
		}
	case *NamedType:
		walkIdent(n.Name, fn)
		for _, a := range n.Args {
			walkType(a, fn)
		}
	case *CallableType:
		for _, p := range n.Params {
			walkType(p, fn)
		}
		walkType(n.Return, fn)
	case *UnionType:
		for _, t := range n.Types {
			walkType(t, fn)
		}
	case *LiteralPattern:
		walkExpr(n.Value, fn)
	case *CapturePattern:
		walkIdent(n.Name, fn)
	case *TuplePattern:
		for _, p := range n.Elements {
			walkPattern(p, fn)
		}
	case *ClassPattern:
		walkIdent(n.Class, fn)
		for _, f := range n.Fields {
			walkIdent(f.Name, fn)
			walkPattern(f.Pattern, fn)
		}
	}
}

func walkStmts(stmts []Statement, fn func(Node) bool) {
	for _, s := range stmts {
		if s != nil {
			Walk(s, fn)
		}
	}
}

func walkParams(params []*Param, fn func(Node) bool) {
	for _, p := range params {
		walkIdent(p.Name, fn)
		walkType(p.Type, fn)
		walkExpr(p.Default, fn)
	}
}

func walkIdent(id *Identifier, fn func(Node) bool) {
	if id != nil {
		Walk(id, fn)
	}
}

func walkExpr(e Expression, fn func(Node) bool) {
	if e != nil {
		Walk(e, fn)
	}
}

func walkType(t TypeExpr, fn func(Node) bool) {
	if t != nil {
		Walk(t, fn)
	}
}

func walkPattern(p Pattern, fn func(Node) bool) {
	if p != nil {
		Walk(p, fn)
	}
}
