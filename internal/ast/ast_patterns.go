package ast

import "github.com/funvibe/mambacheck/internal/token"

// Pattern is the left-hand side of a match case.
type Pattern interface {
	Node
	patternNode()
}

// LiteralPattern matches a constant: `case 1:`, `case "x":`, `case None:`.
type LiteralPattern struct {
	Token token.Token
	Value Expression
}

func (lp *LiteralPattern) Accept(v Visitor)     { v.VisitLiteralPattern(lp) }
func (lp *LiteralPattern) patternNode()         {}
func (lp *LiteralPattern) TokenLiteral() string { return lp.Token.Lexeme }
func (lp *LiteralPattern) GetToken() token.Token {
	if lp == nil {
		return token.Token{}
	}
	return lp.Token
}

// CapturePattern binds the subject to a name: `case x:`.
type CapturePattern struct {
	Token token.Token
	Name  *Identifier
}

func (cp *CapturePattern) Accept(v Visitor)     { v.VisitCapturePattern(cp) }
func (cp *CapturePattern) patternNode()         {}
func (cp *CapturePattern) TokenLiteral() string { return cp.Token.Lexeme }
func (cp *CapturePattern) GetToken() token.Token {
	if cp == nil {
		return token.Token{}
	}
	return cp.Token
}

// WildcardPattern is `case _:`.
type WildcardPattern struct {
	Token token.Token
}

func (wp *WildcardPattern) Accept(v Visitor)     { v.VisitWildcardPattern(wp) }
func (wp *WildcardPattern) patternNode()         {}
func (wp *WildcardPattern) TokenLiteral() string { return wp.Token.Lexeme }
func (wp *WildcardPattern) GetToken() token.Token {
	if wp == nil {
		return token.Token{}
	}
	return wp.Token
}

// TuplePattern destructures a tuple subject: `case (a, 0, _):`.
type TuplePattern struct {
	Token    token.Token
	Elements []Pattern
}

func (tp *TuplePattern) Accept(v Visitor)     { v.VisitTuplePattern(tp) }
func (tp *TuplePattern) patternNode()         {}
func (tp *TuplePattern) TokenLiteral() string { return tp.Token.Lexeme }
func (tp *TuplePattern) GetToken() token.Token {
	if tp == nil {
		return token.Token{}
	}
	return tp.Token
}

// FieldPattern is one `attr=pattern` entry of a class pattern.
type FieldPattern struct {
	Name    *Identifier
	Pattern Pattern
}

// ClassPattern narrows the subject to a class: `case Point(x=px, y=0):`.
type ClassPattern struct {
	Token  token.Token
	Class  *Identifier
	Fields []*FieldPattern
}

func (cp *ClassPattern) Accept(v Visitor)     { v.VisitClassPattern(cp) }
func (cp *ClassPattern) patternNode()         {}
func (cp *ClassPattern) TokenLiteral() string { return cp.Token.Lexeme }
func (cp *ClassPattern) GetToken() token.Token {
	if cp == nil {
		return token.Token{}
	}
	return cp.Token
}
