package ast

import "github.com/funvibe/mambacheck/internal/token"

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) Accept(v Visitor)     { v.VisitIntegerLiteral(il) }
func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token {
	if il == nil {
		return token.Token{}
	}
	return il.Token
}

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) Accept(v Visitor)     { v.VisitFloatLiteral(fl) }
func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Lexeme }
func (fl *FloatLiteral) GetToken() token.Token {
	if fl == nil {
		return token.Token{}
	}
	return fl.Token
}

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) Accept(v Visitor)     { v.VisitStringLiteral(sl) }
func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token {
	if sl == nil {
		return token.Token{}
	}
	return sl.Token
}

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) Accept(v Visitor)     { v.VisitBooleanLiteral(bl) }
func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Lexeme }
func (bl *BooleanLiteral) GetToken() token.Token {
	if bl == nil {
		return token.Token{}
	}
	return bl.Token
}

type NoneLiteral struct {
	Token token.Token
}

func (nl *NoneLiteral) Accept(v Visitor)     { v.VisitNoneLiteral(nl) }
func (nl *NoneLiteral) expressionNode()      {}
func (nl *NoneLiteral) TokenLiteral() string { return nl.Token.Lexeme }
func (nl *NoneLiteral) GetToken() token.Token {
	if nl == nil {
		return token.Token{}
	}
	return nl.Token
}

// BinaryExpr covers arithmetic, comparison, membership, identity and boolean
// operators. Op is the source spelling: "+", "<=", "in", "not in", "is not",
// "and", ...
type BinaryExpr struct {
	Token token.Token // The operator token
	Op    string
	Left  Expression
	Right Expression
}

func (be *BinaryExpr) Accept(v Visitor)     { v.VisitBinaryExpr(be) }
func (be *BinaryExpr) expressionNode()      {}
func (be *BinaryExpr) TokenLiteral() string { return be.Token.Lexeme }
func (be *BinaryExpr) GetToken() token.Token {
	if be == nil {
		return token.Token{}
	}
	return be.Token
}

// UnaryExpr covers "-", "+", "~" and "not".
type UnaryExpr struct {
	Token   token.Token
	Op      string
	Operand Expression
}

func (ue *UnaryExpr) Accept(v Visitor)     { v.VisitUnaryExpr(ue) }
func (ue *UnaryExpr) expressionNode()      {}
func (ue *UnaryExpr) TokenLiteral() string { return ue.Token.Lexeme }
func (ue *UnaryExpr) GetToken() token.Token {
	if ue == nil {
		return token.Token{}
	}
	return ue.Token
}

type CallExpr struct {
	Token  token.Token // The '(' token
	Callee Expression
	Args   []Expression
}

func (ce *CallExpr) Accept(v Visitor)     { v.VisitCallExpr(ce) }
func (ce *CallExpr) expressionNode()      {}
func (ce *CallExpr) TokenLiteral() string { return ce.Token.Lexeme }
func (ce *CallExpr) GetToken() token.Token {
	if ce == nil {
		return token.Token{}
	}
	return ce.Token
}

// AttributeExpr is `object.name`.
type AttributeExpr struct {
	Token  token.Token // The '.' token
	Object Expression
	Name   *Identifier
}

func (ae *AttributeExpr) Accept(v Visitor)     { v.VisitAttributeExpr(ae) }
func (ae *AttributeExpr) expressionNode()      {}
func (ae *AttributeExpr) TokenLiteral() string { return ae.Token.Lexeme }
func (ae *AttributeExpr) GetToken() token.Token {
	if ae == nil {
		return token.Token{}
	}
	return ae.Token
}

// SubscriptExpr is `object[i]` or `object[a, b]`. When Object names a generic
// class the subscript is an explicit instantiation (`Box[int]`).
type SubscriptExpr struct {
	Token  token.Token // The '[' token
	Object Expression
	Index  []Expression
}

func (se *SubscriptExpr) Accept(v Visitor)     { v.VisitSubscriptExpr(se) }
func (se *SubscriptExpr) expressionNode()      {}
func (se *SubscriptExpr) TokenLiteral() string { return se.Token.Lexeme }
func (se *SubscriptExpr) GetToken() token.Token {
	if se == nil {
		return token.Token{}
	}
	return se.Token
}

type LambdaExpr struct {
	Token  token.Token // The 'lambda' token
	Params []*Param
	Body   Expression
}

func (le *LambdaExpr) Accept(v Visitor)     { v.VisitLambdaExpr(le) }
func (le *LambdaExpr) expressionNode()      {}
func (le *LambdaExpr) TokenLiteral() string { return le.Token.Lexeme }
func (le *LambdaExpr) GetToken() token.Token {
	if le == nil {
		return token.Token{}
	}
	return le.Token
}

type ListLiteral struct {
	Token    token.Token // The '[' token
	Elements []Expression
}

func (ll *ListLiteral) Accept(v Visitor)     { v.VisitListLiteral(ll) }
func (ll *ListLiteral) expressionNode()      {}
func (ll *ListLiteral) TokenLiteral() string { return ll.Token.Lexeme }
func (ll *ListLiteral) GetToken() token.Token {
	if ll == nil {
		return token.Token{}
	}
	return ll.Token
}

type SetLiteral struct {
	Token    token.Token // The '{' token
	Elements []Expression
}

func (sl *SetLiteral) Accept(v Visitor)     { v.VisitSetLiteral(sl) }
func (sl *SetLiteral) expressionNode()      {}
func (sl *SetLiteral) TokenLiteral() string { return sl.Token.Lexeme }
func (sl *SetLiteral) GetToken() token.Token {
	if sl == nil {
		return token.Token{}
	}
	return sl.Token
}

type TupleLiteral struct {
	Token    token.Token // The '(' token
	Elements []Expression
}

func (tl *TupleLiteral) Accept(v Visitor)     { v.VisitTupleLiteral(tl) }
func (tl *TupleLiteral) expressionNode()      {}
func (tl *TupleLiteral) TokenLiteral() string { return tl.Token.Lexeme }
func (tl *TupleLiteral) GetToken() token.Token {
	if tl == nil {
		return token.Token{}
	}
	return tl.Token
}

// DictEntry is one `key: value` pair of a dict display.
type DictEntry struct {
	Key   Expression
	Value Expression
}

type DictLiteral struct {
	Token   token.Token // The '{' token
	Entries []DictEntry
}

func (dl *DictLiteral) Accept(v Visitor)     { v.VisitDictLiteral(dl) }
func (dl *DictLiteral) expressionNode()      {}
func (dl *DictLiteral) TokenLiteral() string { return dl.Token.Lexeme }
func (dl *DictLiteral) GetToken() token.Token {
	if dl == nil {
		return token.Token{}
	}
	return dl.Token
}

// ConditionalExpr is `then if cond else otherwise`.
type ConditionalExpr struct {
	Token     token.Token // The 'if' token
	Condition Expression
	Then      Expression
	Else      Expression
}

func (ce *ConditionalExpr) Accept(v Visitor)     { v.VisitConditionalExpr(ce) }
func (ce *ConditionalExpr) expressionNode()      {}
func (ce *ConditionalExpr) TokenLiteral() string { return ce.Token.Lexeme }
func (ce *ConditionalExpr) GetToken() token.Token {
	if ce == nil {
		return token.Token{}
	}
	return ce.Token
}

// MatchArm is one arm of a match expression. Body is an expression rather
// than a statement list.
type MatchArm struct {
	Token   token.Token
	Pattern Pattern
	Guard   Expression
	Body    Expression
}

// MatchExpr evaluates to the union of its arm values.
type MatchExpr struct {
	Token   token.Token // The 'match' token
	Subject Expression
	Arms    []*MatchArm
}

func (me *MatchExpr) Accept(v Visitor)     { v.VisitMatchExpr(me) }
func (me *MatchExpr) expressionNode()      {}
func (me *MatchExpr) TokenLiteral() string { return me.Token.Lexeme }
func (me *MatchExpr) GetToken() token.Token {
	if me == nil {
		return token.Token{}
	}
	return me.Token
}
