package ast

import "github.com/funvibe/mambacheck/internal/token"

// ComprehensionKind selects the display the comprehension builds.
type ComprehensionKind int

const (
	ListComp ComprehensionKind = iota
	SetComp
	DictComp
)

func (k ComprehensionKind) String() string {
	switch k {
	case SetComp:
		return "set"
	case DictComp:
		return "dict"
	default:
		return "list"
	}
}

// Comprehension represents a list, set or dict comprehension.
// [x * 2 for x in xs if x > 0]
// {k: v for (k, v) in pairs}
// Key is only set for DictComp. Clauses are evaluated left to right and each
// clause's target is in scope for the following clauses and the element.
type Comprehension struct {
	Token   token.Token // The opening bracket
	Kind    ComprehensionKind
	Key     Expression
	Element Expression
	Clauses []*CompClause
}

func (c *Comprehension) Accept(v Visitor)     { v.VisitComprehension(c) }
func (c *Comprehension) expressionNode()      {}
func (c *Comprehension) TokenLiteral() string { return c.Token.Lexeme }
func (c *Comprehension) GetToken() token.Token {
	if c == nil {
		return token.Token{}
	}
	return c.Token
}

// CompClause is `for target in iter if cond1 if cond2`.
type CompClause struct {
	Token      token.Token // The 'for' token
	Target     Expression
	Iter       Expression
	Conditions []Expression
}

func (cc *CompClause) GetToken() token.Token {
	if cc == nil {
		return token.Token{}
	}
	return cc.Token
}
