package astio

import (
	"fmt"
	"strconv"

	"github.com/segmentio/encoding/json"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/token"
)

func (d *decoder) stmt(data json.RawMessage) (ast.Statement, error) {
	n, err := d.node(data)
	if err != nil {
		return nil, err
	}
	switch n.Kind {
	case "ClassDef":
		return d.classDef(n)
	case "FunctionDef":
		return d.functionDef(n)
	case "TypeAlias":
		if err := n.need("name", n.Name); err != nil {
			return nil, err
		}
		value, err := d.optType(n.Value)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, fmt.Errorf("TypeAlias %s: missing \"value\"", n.Name)
		}
		return &ast.TypeAliasStmt{Token: n.tok(token.IDENT, n.Name), Name: n.ident(token.IDENT), Value: value}, nil
	case "ImportFrom":
		return d.importFrom(n)
	case "Assign":
		target, err := d.expr(n.Target)
		if err != nil {
			return nil, err
		}
		annotation, err := d.optType(n.Annotation)
		if err != nil {
			return nil, err
		}
		value, err := d.optExpr(n.Value)
		if err != nil {
			return nil, err
		}
		if value == nil && annotation == nil {
			return nil, fmt.Errorf("Assign at %v: needs a value or an annotation", n.Pos)
		}
		return &ast.AssignStmt{Token: n.tok(token.OPERATOR, "="), Target: target, Annotation: annotation, Value: value}, nil
	case "AugAssign":
		if err := n.need("op", n.Op); err != nil {
			return nil, err
		}
		target, err := d.expr(n.Target)
		if err != nil {
			return nil, err
		}
		value, err := d.expr(n.Value)
		if err != nil {
			return nil, err
		}
		return &ast.AugAssignStmt{Token: n.tok(token.OPERATOR, n.Op+"="), Target: target, Op: n.Op, Value: value}, nil
	case "Expr":
		e, err := d.expr(n.Value)
		if err != nil {
			return nil, err
		}
		tok := e.GetToken()
		if len(n.Pos) > 0 {
			tok = n.tok(tok.Type, tok.Lexeme)
		}
		return &ast.ExpressionStmt{Token: tok, Expression: e}, nil
	case "Return":
		value, err := d.optExpr(n.Value)
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Token: n.tok(token.KEYWORD, "return"), Value: value}, nil
	case "If":
		cond, err := d.expr(n.Condition)
		if err != nil {
			return nil, err
		}
		then, err := d.stmts(n.Then)
		if err != nil {
			return nil, err
		}
		els, err := d.stmts(n.Else)
		if err != nil {
			return nil, err
		}
		return &ast.IfStmt{Token: n.tok(token.KEYWORD, "if"), Condition: cond, Then: then, Else: els}, nil
	case "While":
		cond, err := d.expr(n.Condition)
		if err != nil {
			return nil, err
		}
		body, err := d.stmts(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.WhileStmt{Token: n.tok(token.KEYWORD, "while"), Condition: cond, Body: body}, nil
	case "For":
		target, err := d.expr(n.Target)
		if err != nil {
			return nil, err
		}
		iter, err := d.expr(n.Iter)
		if err != nil {
			return nil, err
		}
		body, err := d.stmts(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.ForStmt{Token: n.tok(token.KEYWORD, "for"), Target: target, Iter: iter, Body: body}, nil
	case "Try":
		return d.tryStmt(n)
	case "Raise":
		exc, err := d.optExpr(n.Exception)
		if err != nil {
			return nil, err
		}
		return &ast.RaiseStmt{Token: n.tok(token.KEYWORD, "raise"), Exception: exc}, nil
	case "Match":
		return d.matchStmt(n)
	case "Pass":
		return &ast.PassStmt{Token: n.tok(token.KEYWORD, "pass")}, nil
	case "Break":
		return &ast.BreakStmt{Token: n.tok(token.KEYWORD, "break")}, nil
	case "Continue":
		return &ast.ContinueStmt{Token: n.tok(token.KEYWORD, "continue")}, nil
	case "":
		return nil, fmt.Errorf("statement at %v has no kind", n.Pos)
	}
	return nil, fmt.Errorf("unknown statement kind %q", n.Kind)
}

func (d *decoder) classDef(n *rawNode) (*ast.ClassDef, error) {
	if err := n.need("name", n.Name); err != nil {
		return nil, err
	}
	bases, err := d.types(n.Bases)
	if err != nil {
		return nil, err
	}
	body, err := d.stmts(n.Body)
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", n.Name, err)
	}
	return &ast.ClassDef{
		Token:      n.tok(token.KEYWORD, "class"),
		Name:       n.ident(token.IDENT),
		TypeParams: identifiers(n.Generic, n),
		Bases:      bases,
		Body:       body,
	}, nil
}

func (d *decoder) functionDef(n *rawNode) (*ast.FunctionDef, error) {
	if err := n.need("name", n.Name); err != nil {
		return nil, err
	}
	params, err := d.params(n.Params)
	if err != nil {
		return nil, fmt.Errorf("def %s: %w", n.Name, err)
	}
	ret, err := d.optType(n.Returns)
	if err != nil {
		return nil, fmt.Errorf("def %s: %w", n.Name, err)
	}
	body, err := d.stmts(n.Body)
	if err != nil {
		return nil, fmt.Errorf("def %s: %w", n.Name, err)
	}
	return &ast.FunctionDef{
		Token:      n.tok(token.KEYWORD, "def"),
		Name:       n.ident(token.IDENT),
		TypeParams: identifiers(n.Generic, n),
		Params:     params,
		ReturnType: ret,
		Body:       body,
		Abstract:   n.Abstract,
	}, nil
}

func (d *decoder) params(items []json.RawMessage) ([]*ast.Param, error) {
	out := make([]*ast.Param, 0, len(items))
	for _, item := range items {
		n, err := d.node(item)
		if err != nil {
			return nil, err
		}
		if err := n.need("name", n.Name); err != nil {
			return nil, err
		}
		typ, err := d.optType(n.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", n.Name, err)
		}
		def, err := d.optExpr(n.Default)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", n.Name, err)
		}
		out = append(out, &ast.Param{
			Token:    n.tok(token.IDENT, n.Name),
			Name:     n.ident(token.IDENT),
			Type:     typ,
			Default:  def,
			Variadic: n.Variadic,
		})
	}
	return out, nil
}

func (d *decoder) importFrom(n *rawNode) (*ast.ImportFromStmt, error) {
	if err := n.need("module", n.Module); err != nil {
		return nil, err
	}
	is := &ast.ImportFromStmt{Token: n.tok(token.KEYWORD, "from"), Module: n.Module}
	for _, item := range n.Names {
		in, err := d.node(item)
		if err != nil {
			return nil, err
		}
		if err := in.need("name", in.Name); err != nil {
			return nil, err
		}
		name := &ast.ImportName{Name: in.ident(token.IDENT)}
		if in.Alias != "" {
			name.Alias = &ast.Identifier{Token: in.tok(token.IDENT, in.Alias), Value: in.Alias}
		}
		is.Names = append(is.Names, name)
	}
	if len(is.Names) == 0 {
		return nil, fmt.Errorf("from %s import: no names", n.Module)
	}
	return is, nil
}

func (d *decoder) tryStmt(n *rawNode) (*ast.TryStmt, error) {
	body, err := d.stmts(n.Body)
	if err != nil {
		return nil, err
	}
	ts := &ast.TryStmt{Token: n.tok(token.KEYWORD, "try"), Body: body}
	for _, item := range n.Handlers {
		h, err := d.node(item)
		if err != nil {
			return nil, err
		}
		types, err := d.types(h.Types)
		if err != nil {
			return nil, err
		}
		hbody, err := d.stmts(h.Body)
		if err != nil {
			return nil, err
		}
		clause := &ast.ExceptClause{Token: h.tok(token.KEYWORD, "except"), Types: types, Body: hbody}
		if h.Name != "" {
			clause.Name = h.ident(token.IDENT)
		}
		ts.Handlers = append(ts.Handlers, clause)
	}
	if ts.Else, err = d.stmts(n.Else); err != nil {
		return nil, err
	}
	if ts.Finally, err = d.stmtList(n.Finally); err != nil {
		return nil, err
	}
	if len(ts.Handlers) == 0 && len(ts.Finally) == 0 {
		return nil, fmt.Errorf("try at %v: needs an except or finally clause", n.Pos)
	}
	return ts, nil
}

func (d *decoder) matchStmt(n *rawNode) (*ast.MatchStmt, error) {
	subject, err := d.expr(n.Subject)
	if err != nil {
		return nil, err
	}
	ms := &ast.MatchStmt{Token: n.tok(token.KEYWORD, "match"), Subject: subject}
	for _, item := range n.Cases {
		c, err := d.node(item)
		if err != nil {
			return nil, err
		}
		p, err := d.pattern(c.Pattern)
		if err != nil {
			return nil, err
		}
		guard, err := d.optExpr(c.Guard)
		if err != nil {
			return nil, err
		}
		body, err := d.stmts(c.Body)
		if err != nil {
			return nil, err
		}
		ms.Cases = append(ms.Cases, &ast.MatchCase{Token: c.tok(token.KEYWORD, "case"), Pattern: p, Guard: guard, Body: body})
	}
	return ms, nil
}

func (d *decoder) expr(data json.RawMessage) (ast.Expression, error) {
	if !present(data) {
		return nil, fmt.Errorf("missing expression")
	}
	n, err := d.node(data)
	if err != nil {
		return nil, err
	}
	switch n.Kind {
	case "Name":
		if err := n.need("name", n.Name); err != nil {
			return nil, err
		}
		return n.ident(token.IDENT), nil
	case "Int":
		var v json.Number
		if err := json.Unmarshal(n.Value, &v); err != nil {
			return nil, fmt.Errorf("Int at %v: %w", n.Pos, err)
		}
		i, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("Int at %v: %w", n.Pos, err)
		}
		return &ast.IntegerLiteral{Token: n.tok(token.INT, v.String()), Value: i}, nil
	case "Float":
		var v json.Number
		if err := json.Unmarshal(n.Value, &v); err != nil {
			return nil, fmt.Errorf("Float at %v: %w", n.Pos, err)
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("Float at %v: %w", n.Pos, err)
		}
		return &ast.FloatLiteral{Token: n.tok(token.FLOAT, v.String()), Value: f}, nil
	case "Str":
		var v string
		if err := json.Unmarshal(n.Value, &v); err != nil {
			return nil, fmt.Errorf("Str at %v: %w", n.Pos, err)
		}
		return &ast.StringLiteral{Token: n.tok(token.STRING, strconv.Quote(v)), Value: v}, nil
	case "Bool":
		var v bool
		if err := json.Unmarshal(n.Value, &v); err != nil {
			return nil, fmt.Errorf("Bool at %v: %w", n.Pos, err)
		}
		lexeme := "False"
		if v {
			lexeme = "True"
		}
		return &ast.BooleanLiteral{Token: n.tok(token.KEYWORD, lexeme), Value: v}, nil
	case "None":
		return &ast.NoneLiteral{Token: n.tok(token.KEYWORD, "None")}, nil
	case "Binary":
		if err := n.need("op", n.Op); err != nil {
			return nil, err
		}
		left, err := d.expr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := d.expr(n.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Token: n.tok(token.OPERATOR, n.Op), Op: n.Op, Left: left, Right: right}, nil
	case "Unary":
		if err := n.need("op", n.Op); err != nil {
			return nil, err
		}
		operand, err := d.expr(n.Operand)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Token: n.tok(token.OPERATOR, n.Op), Op: n.Op, Operand: operand}, nil
	case "Call":
		callee, err := d.expr(n.Callee)
		if err != nil {
			return nil, err
		}
		args, err := d.exprs(n.Args)
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{Token: n.tok(token.OPERATOR, "("), Callee: callee, Args: args}, nil
	case "Attribute":
		if err := n.need("name", n.Name); err != nil {
			return nil, err
		}
		object, err := d.expr(n.Object)
		if err != nil {
			return nil, err
		}
		return &ast.AttributeExpr{Token: n.tok(token.OPERATOR, "."), Object: object, Name: n.ident(token.IDENT)}, nil
	case "Subscript":
		object, err := d.expr(n.Object)
		if err != nil {
			return nil, err
		}
		index, err := d.exprs(n.Index)
		if err != nil {
			return nil, err
		}
		if len(index) == 0 {
			return nil, fmt.Errorf("Subscript at %v: empty index", n.Pos)
		}
		return &ast.SubscriptExpr{Token: n.tok(token.OPERATOR, "["), Object: object, Index: index}, nil
	case "Lambda":
		params, err := d.params(n.Params)
		if err != nil {
			return nil, err
		}
		body, err := d.expr(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.LambdaExpr{Token: n.tok(token.KEYWORD, "lambda"), Params: params, Body: body}, nil
	case "List":
		elems, err := d.exprs(n.Elements)
		if err != nil {
			return nil, err
		}
		return &ast.ListLiteral{Token: n.tok(token.OPERATOR, "["), Elements: elems}, nil
	case "Set":
		elems, err := d.exprs(n.Elements)
		if err != nil {
			return nil, err
		}
		return &ast.SetLiteral{Token: n.tok(token.OPERATOR, "{"), Elements: elems}, nil
	case "Tuple":
		elems, err := d.exprs(n.Elements)
		if err != nil {
			return nil, err
		}
		return &ast.TupleLiteral{Token: n.tok(token.OPERATOR, "("), Elements: elems}, nil
	case "Dict":
		dl := &ast.DictLiteral{Token: n.tok(token.OPERATOR, "{")}
		for _, item := range n.Entries {
			e, err := d.node(item)
			if err != nil {
				return nil, err
			}
			key, err := d.expr(e.Key)
			if err != nil {
				return nil, err
			}
			value, err := d.expr(e.Value)
			if err != nil {
				return nil, err
			}
			dl.Entries = append(dl.Entries, ast.DictEntry{Key: key, Value: value})
		}
		return dl, nil
	case "Conditional":
		cond, err := d.expr(n.Condition)
		if err != nil {
			return nil, err
		}
		then, err := d.expr(n.Then)
		if err != nil {
			return nil, err
		}
		els, err := d.expr(n.Else)
		if err != nil {
			return nil, err
		}
		return &ast.ConditionalExpr{Token: n.tok(token.KEYWORD, "if"), Condition: cond, Then: then, Else: els}, nil
	case "MatchExpr":
		return d.matchExpr(n)
	case "Comprehension":
		return d.comprehension(n)
	case "":
		return nil, fmt.Errorf("expression at %v has no kind", n.Pos)
	}
	return nil, fmt.Errorf("unknown expression kind %q", n.Kind)
}

func (d *decoder) matchExpr(n *rawNode) (*ast.MatchExpr, error) {
	subject, err := d.expr(n.Subject)
	if err != nil {
		return nil, err
	}
	me := &ast.MatchExpr{Token: n.tok(token.KEYWORD, "match"), Subject: subject}
	for _, item := range n.Arms {
		a, err := d.node(item)
		if err != nil {
			return nil, err
		}
		p, err := d.pattern(a.Pattern)
		if err != nil {
			return nil, err
		}
		guard, err := d.optExpr(a.Guard)
		if err != nil {
			return nil, err
		}
		body, err := d.expr(a.Body)
		if err != nil {
			return nil, err
		}
		me.Arms = append(me.Arms, &ast.MatchArm{Token: a.tok(token.KEYWORD, "case"), Pattern: p, Guard: guard, Body: body})
	}
	if len(me.Arms) == 0 {
		return nil, fmt.Errorf("match expression at %v has no arms", n.Pos)
	}
	return me, nil
}

func (d *decoder) comprehension(n *rawNode) (*ast.Comprehension, error) {
	c := &ast.Comprehension{}
	switch n.Comp {
	case "", "list":
		c.Kind, c.Token = ast.ListComp, n.tok(token.OPERATOR, "[")
	case "set":
		c.Kind, c.Token = ast.SetComp, n.tok(token.OPERATOR, "{")
	case "dict":
		c.Kind, c.Token = ast.DictComp, n.tok(token.OPERATOR, "{")
	default:
		return nil, fmt.Errorf("unknown comprehension %q", n.Comp)
	}
	var err error
	if c.Kind == ast.DictComp {
		if c.Key, err = d.expr(n.Key); err != nil {
			return nil, err
		}
	}
	if c.Element, err = d.expr(n.Element); err != nil {
		return nil, err
	}
	for _, item := range n.Clauses {
		cl, err := d.node(item)
		if err != nil {
			return nil, err
		}
		target, err := d.expr(cl.Target)
		if err != nil {
			return nil, err
		}
		iter, err := d.expr(cl.Iter)
		if err != nil {
			return nil, err
		}
		conds, err := d.exprs(cl.Conditions)
		if err != nil {
			return nil, err
		}
		c.Clauses = append(c.Clauses, &ast.CompClause{Token: cl.tok(token.KEYWORD, "for"), Target: target, Iter: iter, Conditions: conds})
	}
	if len(c.Clauses) == 0 {
		return nil, fmt.Errorf("comprehension at %v has no for clause", n.Pos)
	}
	return c, nil
}

func (d *decoder) pattern(data json.RawMessage) (ast.Pattern, error) {
	if !present(data) {
		return nil, fmt.Errorf("missing pattern")
	}
	n, err := d.node(data)
	if err != nil {
		return nil, err
	}
	switch n.Kind {
	case "PLiteral":
		value, err := d.expr(n.Value)
		if err != nil {
			return nil, err
		}
		return &ast.LiteralPattern{Token: value.GetToken(), Value: value}, nil
	case "PCapture":
		if err := n.need("name", n.Name); err != nil {
			return nil, err
		}
		return &ast.CapturePattern{Token: n.tok(token.IDENT, n.Name), Name: n.ident(token.IDENT)}, nil
	case "PWildcard":
		return &ast.WildcardPattern{Token: n.tok(token.IDENT, "_")}, nil
	case "PTuple":
		tp := &ast.TuplePattern{Token: n.tok(token.OPERATOR, "(")}
		for _, item := range n.Elements {
			p, err := d.pattern(item)
			if err != nil {
				return nil, err
			}
			tp.Elements = append(tp.Elements, p)
		}
		return tp, nil
	case "PClass":
		if err := n.need("class", n.Class); err != nil {
			return nil, err
		}
		cp := &ast.ClassPattern{
			Token: n.tok(token.IDENT, n.Class),
			Class: &ast.Identifier{Token: n.tok(token.IDENT, n.Class), Value: n.Class},
		}
		for _, item := range n.Fields {
			f, err := d.node(item)
			if err != nil {
				return nil, err
			}
			if err := f.need("name", f.Name); err != nil {
				return nil, err
			}
			p, err := d.pattern(f.Pattern)
			if err != nil {
				return nil, err
			}
			cp.Fields = append(cp.Fields, &ast.FieldPattern{Name: f.ident(token.IDENT), Pattern: p})
		}
		return cp, nil
	}
	return nil, fmt.Errorf("unknown pattern kind %q", n.Kind)
}
