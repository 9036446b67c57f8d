package ast

import "github.com/funvibe/mambacheck/internal/token"

// ClassDef represents a class declaration.
// class Name(Generic[T], Base1, Base2[T]): body
// TypeParams holds the names listed in Generic[...]; Bases holds every other
// base in the order written.
type ClassDef struct {
	Token      token.Token // The 'class' token
	Name       *Identifier
	TypeParams []*Identifier
	Bases      []TypeExpr
	Body       []Statement
}

func (cd *ClassDef) Accept(v Visitor)     { v.VisitClassDef(cd) }
func (cd *ClassDef) statementNode()       {}
func (cd *ClassDef) TokenLiteral() string { return cd.Token.Lexeme }
func (cd *ClassDef) GetToken() token.Token {
	if cd == nil {
		return token.Token{}
	}
	return cd.Token
}

// Methods returns the function definitions declared directly in the class body.
func (cd *ClassDef) Methods() []*FunctionDef {
	var out []*FunctionDef
	for _, stmt := range cd.Body {
		if fn, ok := stmt.(*FunctionDef); ok {
			out = append(out, fn)
		}
	}
	return out
}

// Param is a single function or lambda parameter.
type Param struct {
	Token    token.Token
	Name     *Identifier
	Type     TypeExpr   // nil for `self` and untyped lambda parameters
	Default  Expression // nil when required
	Variadic bool       // *args
}

func (p *Param) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// FunctionDef represents `def name[T](params) -> ret: body`.
// Abstract is set by the parser for @abstractmethod and for bodiless interface
// methods.
type FunctionDef struct {
	Token      token.Token // The 'def' token
	Name       *Identifier
	TypeParams []*Identifier
	Params     []*Param
	ReturnType TypeExpr
	Body       []Statement
	Abstract   bool
}

func (fd *FunctionDef) Accept(v Visitor)     { v.VisitFunctionDef(fd) }
func (fd *FunctionDef) statementNode()       {}
func (fd *FunctionDef) TokenLiteral() string { return fd.Token.Lexeme }
func (fd *FunctionDef) GetToken() token.Token {
	if fd == nil {
		return token.Token{}
	}
	return fd.Token
}

// TypeAliasStmt binds a name to a type expression.
// Alias = SomeClass[int] or Alias: TypeAlias = SomeClass
type TypeAliasStmt struct {
	Token token.Token
	Name  *Identifier
	Value TypeExpr
}

func (ta *TypeAliasStmt) Accept(v Visitor)     { v.VisitTypeAliasStmt(ta) }
func (ta *TypeAliasStmt) statementNode()       {}
func (ta *TypeAliasStmt) TokenLiteral() string { return ta.Token.Lexeme }
func (ta *TypeAliasStmt) GetToken() token.Token {
	if ta == nil {
		return token.Token{}
	}
	return ta.Token
}

// ImportName is one `name [as alias]` entry of a from-import.
type ImportName struct {
	Name  *Identifier
	Alias *Identifier
}

// ImportFromStmt represents `from module import a, b as c`.
type ImportFromStmt struct {
	Token  token.Token
	Module string
	Names  []*ImportName
}

func (is *ImportFromStmt) Accept(v Visitor)     { v.VisitImportFromStmt(is) }
func (is *ImportFromStmt) statementNode()       {}
func (is *ImportFromStmt) TokenLiteral() string { return is.Token.Lexeme }
func (is *ImportFromStmt) GetToken() token.Token {
	if is == nil {
		return token.Token{}
	}
	return is.Token
}

// AssignStmt covers plain, annotated and destructuring assignment.
// x = 1, x: int = 1, x: int, self.f = v, (a, b) = pair
type AssignStmt struct {
	Token      token.Token
	Target     Expression
	Annotation TypeExpr   // optional
	Value      Expression // nil for a bare annotation
}

func (as *AssignStmt) Accept(v Visitor)     { v.VisitAssignStmt(as) }
func (as *AssignStmt) statementNode()       {}
func (as *AssignStmt) TokenLiteral() string { return as.Token.Lexeme }
func (as *AssignStmt) GetToken() token.Token {
	if as == nil {
		return token.Token{}
	}
	return as.Token
}

// AugAssignStmt represents `target op= value`. Op is the binary operator
// without the '=' (e.g. "+").
type AugAssignStmt struct {
	Token  token.Token
	Target Expression
	Op     string
	Value  Expression
}

func (as *AugAssignStmt) Accept(v Visitor)     { v.VisitAugAssignStmt(as) }
func (as *AugAssignStmt) statementNode()       {}
func (as *AugAssignStmt) TokenLiteral() string { return as.Token.Lexeme }
func (as *AugAssignStmt) GetToken() token.Token {
	if as == nil {
		return token.Token{}
	}
	return as.Token
}

type ExpressionStmt struct {
	Token      token.Token
	Expression Expression
}

func (es *ExpressionStmt) Accept(v Visitor)     { v.VisitExpressionStmt(es) }
func (es *ExpressionStmt) statementNode()       {}
func (es *ExpressionStmt) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStmt) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}

type ReturnStmt struct {
	Token token.Token
	Value Expression // nil for a bare return
}

func (rs *ReturnStmt) Accept(v Visitor)     { v.VisitReturnStmt(rs) }
func (rs *ReturnStmt) statementNode()       {}
func (rs *ReturnStmt) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStmt) GetToken() token.Token {
	if rs == nil {
		return token.Token{}
	}
	return rs.Token
}

// IfStmt represents if/elif/else. An elif chain is a nested IfStmt as the
// only statement of Else.
type IfStmt struct {
	Token     token.Token
	Condition Expression
	Then      []Statement
	Else      []Statement
}

func (is *IfStmt) Accept(v Visitor)     { v.VisitIfStmt(is) }
func (is *IfStmt) statementNode()       {}
func (is *IfStmt) TokenLiteral() string { return is.Token.Lexeme }
func (is *IfStmt) GetToken() token.Token {
	if is == nil {
		return token.Token{}
	}
	return is.Token
}

type WhileStmt struct {
	Token     token.Token
	Condition Expression
	Body      []Statement
}

func (ws *WhileStmt) Accept(v Visitor)     { v.VisitWhileStmt(ws) }
func (ws *WhileStmt) statementNode()       {}
func (ws *WhileStmt) TokenLiteral() string { return ws.Token.Lexeme }
func (ws *WhileStmt) GetToken() token.Token {
	if ws == nil {
		return token.Token{}
	}
	return ws.Token
}

// ForStmt represents `for target in iter: body`. Target is an Identifier or
// a TupleLiteral of identifiers.
type ForStmt struct {
	Token  token.Token
	Target Expression
	Iter   Expression
	Body   []Statement
}

func (fs *ForStmt) Accept(v Visitor)     { v.VisitForStmt(fs) }
func (fs *ForStmt) statementNode()       {}
func (fs *ForStmt) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *ForStmt) GetToken() token.Token {
	if fs == nil {
		return token.Token{}
	}
	return fs.Token
}

// ExceptClause is one `except T as name:` handler. An empty Types list is a
// bare `except:`; more than one entry is `except (A, B):`.
type ExceptClause struct {
	Token token.Token
	Types []TypeExpr
	Name  *Identifier
	Body  []Statement
}

func (ec *ExceptClause) GetToken() token.Token {
	if ec == nil {
		return token.Token{}
	}
	return ec.Token
}

type TryStmt struct {
	Token    token.Token
	Body     []Statement
	Handlers []*ExceptClause
	Else     []Statement
	Finally  []Statement
}

func (ts *TryStmt) Accept(v Visitor)     { v.VisitTryStmt(ts) }
func (ts *TryStmt) statementNode()       {}
func (ts *TryStmt) TokenLiteral() string { return ts.Token.Lexeme }
func (ts *TryStmt) GetToken() token.Token {
	if ts == nil {
		return token.Token{}
	}
	return ts.Token
}

type RaiseStmt struct {
	Token     token.Token
	Exception Expression // nil for a bare re-raise
}

func (rs *RaiseStmt) Accept(v Visitor)     { v.VisitRaiseStmt(rs) }
func (rs *RaiseStmt) statementNode()       {}
func (rs *RaiseStmt) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *RaiseStmt) GetToken() token.Token {
	if rs == nil {
		return token.Token{}
	}
	return rs.Token
}

// MatchCase is one `case pattern if guard: body` arm.
type MatchCase struct {
	Token   token.Token
	Pattern Pattern
	Guard   Expression
	Body    []Statement
}

func (mc *MatchCase) GetToken() token.Token {
	if mc == nil {
		return token.Token{}
	}
	return mc.Token
}

type MatchStmt struct {
	Token   token.Token
	Subject Expression
	Cases   []*MatchCase
}

func (ms *MatchStmt) Accept(v Visitor)     { v.VisitMatchStmt(ms) }
func (ms *MatchStmt) statementNode()       {}
func (ms *MatchStmt) TokenLiteral() string { return ms.Token.Lexeme }
func (ms *MatchStmt) GetToken() token.Token {
	if ms == nil {
		return token.Token{}
	}
	return ms.Token
}

type PassStmt struct {
	Token token.Token
}

func (ps *PassStmt) Accept(v Visitor)     { v.VisitPassStmt(ps) }
func (ps *PassStmt) statementNode()       {}
func (ps *PassStmt) TokenLiteral() string { return ps.Token.Lexeme }
func (ps *PassStmt) GetToken() token.Token {
	if ps == nil {
		return token.Token{}
	}
	return ps.Token
}

type BreakStmt struct {
	Token token.Token
}

func (bs *BreakStmt) Accept(v Visitor)     { v.VisitBreakStmt(bs) }
func (bs *BreakStmt) statementNode()       {}
func (bs *BreakStmt) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BreakStmt) GetToken() token.Token {
	if bs == nil {
		return token.Token{}
	}
	return bs.Token
}

type ContinueStmt struct {
	Token token.Token
}

func (cs *ContinueStmt) Accept(v Visitor)     { v.VisitContinueStmt(cs) }
func (cs *ContinueStmt) statementNode()       {}
func (cs *ContinueStmt) TokenLiteral() string { return cs.Token.Lexeme }
func (cs *ContinueStmt) GetToken() token.Token {
	if cs == nil {
		return token.Token{}
	}
	return cs.Token
}
