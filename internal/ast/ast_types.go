package ast

import (
	"strings"

	"github.com/funvibe/mambacheck/internal/token"
)

// TypeExpr is a type annotation as written in source.
type TypeExpr interface {
	Node
	typeNode()
	String() string
}

// NamedType is `Name` or `Name[Arg1, Arg2]`. The special forms Optional[T],
// Union[A, B], Tuple[A, B], Callable[[A], R] and None are all NamedType too;
// the analyzer recognises them by name.
type NamedType struct {
	Token token.Token
	Name  *Identifier
	Args  []TypeExpr
}

func (nt *NamedType) Accept(v Visitor)     { v.VisitNamedType(nt) }
func (nt *NamedType) typeNode()            {}
func (nt *NamedType) TokenLiteral() string { return nt.Token.Lexeme }
func (nt *NamedType) GetToken() token.Token {
	if nt == nil {
		return token.Token{}
	}
	return nt.Token
}
func (nt *NamedType) String() string {
	if len(nt.Args) == 0 {
		return nt.Name.String()
	}
	args := make([]string, len(nt.Args))
	for i, a := range nt.Args {
		args[i] = a.String()
	}
	return nt.Name.String() + "[" + strings.Join(args, ", ") + "]"
}

// CallableType is `Callable[[P1, P2], R]`.
type CallableType struct {
	Token  token.Token
	Params []TypeExpr
	Return TypeExpr
}

func (ct *CallableType) Accept(v Visitor)     { v.VisitCallableType(ct) }
func (ct *CallableType) typeNode()            {}
func (ct *CallableType) TokenLiteral() string { return ct.Token.Lexeme }
func (ct *CallableType) GetToken() token.Token {
	if ct == nil {
		return token.Token{}
	}
	return ct.Token
}
func (ct *CallableType) String() string {
	params := make([]string, len(ct.Params))
	for i, p := range ct.Params {
		params[i] = p.String()
	}
	ret := "None"
	if ct.Return != nil {
		ret = ct.Return.String()
	}
	return "Callable[[" + strings.Join(params, ", ") + "], " + ret + "]"
}

// UnionType is `A | B`.
type UnionType struct {
	Token token.Token
	Types []TypeExpr
}

func (ut *UnionType) Accept(v Visitor)     { v.VisitUnionType(ut) }
func (ut *UnionType) typeNode()            {}
func (ut *UnionType) TokenLiteral() string { return ut.Token.Lexeme }
func (ut *UnionType) GetToken() token.Token {
	if ut == nil {
		return token.Token{}
	}
	return ut.Token
}
func (ut *UnionType) String() string {
	parts := make([]string, len(ut.Types))
	for i, t := range ut.Types {
		parts[i] = t.String()
	}
	return strings.Join(parts, " | ")
}
