package ast

import (
	"reflect"

	"github.com/funvibe/mambacheck/internal/token"
)

// Builders for constructing trees by hand, mostly in tests and for the
// built-in catalog. Positions are assigned by NewProgram: every statement gets
// its own line and nodes inside it get increasing columns, so diagnostics come
// out in a stable order.

// NewProgram wraps statements into a program and assigns source positions to
// every node that does not carry one yet.
func NewProgram(file, module string, stmts ...Statement) *Program {
	p := &Program{File: file, Module: module, Statements: stmts}
	Position(p)
	return p
}

// Prog is NewProgram for a single anonymous main module.
func Prog(stmts ...Statement) *Program {
	return NewProgram("main.mamba", "main", stmts...)
}

// Position stamps line/column onto nodes whose token has no line yet.
func Position(p *Program) {
	line, col := 0, 0
	Walk(p, func(n Node) bool {
		if _, ok := n.(*Program); ok {
			return true
		}
		if _, ok := n.(Statement); ok {
			line++
			col = 1
		} else {
			col += 2
		}
		stamp(n, line, col)
		return true
	})
}

func stamp(n Node, line, col int) {
	v := reflect.ValueOf(n)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return
	}
	f := v.Elem().FieldByName("Token")
	if !f.IsValid() || !f.CanSet() {
		return
	}
	tok := f.Interface().(token.Token)
	if tok.Line != 0 {
		return
	}
	tok.Line, tok.Column = line, col
	tok.EndLine, tok.EndColumn = line, col+1
	f.Set(reflect.ValueOf(tok))
}

// Expressions

func Id(name string) *Identifier {
	return &Identifier{Token: token.Token{Type: token.IDENT, Lexeme: name}, Value: name}
}

func Int(v int64) *IntegerLiteral {
	return &IntegerLiteral{Token: token.Token{Type: token.INT}, Value: v}
}

func Float(v float64) *FloatLiteral {
	return &FloatLiteral{Token: token.Token{Type: token.FLOAT}, Value: v}
}

func Str(v string) *StringLiteral {
	return &StringLiteral{Token: token.Token{Type: token.STRING, Lexeme: v}, Value: v}
}

func Bool(v bool) *BooleanLiteral {
	return &BooleanLiteral{Token: token.Token{Type: token.KEYWORD}, Value: v}
}

func None() *NoneLiteral {
	return &NoneLiteral{Token: token.Token{Type: token.KEYWORD, Lexeme: "None"}}
}

func Bin(op string, left, right Expression) *BinaryExpr {
	return &BinaryExpr{Token: token.Token{Type: token.OPERATOR, Lexeme: op}, Op: op, Left: left, Right: right}
}

func Unary(op string, operand Expression) *UnaryExpr {
	return &UnaryExpr{Token: token.Token{Type: token.OPERATOR, Lexeme: op}, Op: op, Operand: operand}
}

func Call(callee Expression, args ...Expression) *CallExpr {
	return &CallExpr{Token: token.Token{Lexeme: "("}, Callee: callee, Args: args}
}

func Attr(object Expression, name string) *AttributeExpr {
	return &AttributeExpr{Token: token.Token{Lexeme: "."}, Object: object, Name: Id(name)}
}

// Method is shorthand for Call(Attr(object, name), args...).
func Method(object Expression, name string, args ...Expression) *CallExpr {
	return Call(Attr(object, name), args...)
}

func Index(object Expression, index ...Expression) *SubscriptExpr {
	return &SubscriptExpr{Token: token.Token{Lexeme: "["}, Object: object, Index: index}
}

func Lambda(params []*Param, body Expression) *LambdaExpr {
	return &LambdaExpr{Token: token.Token{Type: token.KEYWORD, Lexeme: "lambda"}, Params: params, Body: body}
}

func List(elems ...Expression) *ListLiteral {
	return &ListLiteral{Token: token.Token{Lexeme: "["}, Elements: elems}
}

func SetOf(elems ...Expression) *SetLiteral {
	return &SetLiteral{Token: token.Token{Lexeme: "{"}, Elements: elems}
}

func Tuple(elems ...Expression) *TupleLiteral {
	return &TupleLiteral{Token: token.Token{Lexeme: "("}, Elements: elems}
}

func KV(key, value Expression) DictEntry {
	return DictEntry{Key: key, Value: value}
}

func Dict(entries ...DictEntry) *DictLiteral {
	return &DictLiteral{Token: token.Token{Lexeme: "{"}, Entries: entries}
}

func Cond(then, condition, otherwise Expression) *ConditionalExpr {
	return &ConditionalExpr{Token: token.Token{Type: token.KEYWORD, Lexeme: "if"}, Condition: condition, Then: then, Else: otherwise}
}

func Gen(target, iter Expression, conditions ...Expression) *CompClause {
	return &CompClause{Token: token.Token{Type: token.KEYWORD, Lexeme: "for"}, Target: target, Iter: iter, Conditions: conditions}
}

func ListComprehension(elem Expression, clauses ...*CompClause) *Comprehension {
	return &Comprehension{Token: token.Token{Lexeme: "["}, Kind: ListComp, Element: elem, Clauses: clauses}
}

func SetComprehension(elem Expression, clauses ...*CompClause) *Comprehension {
	return &Comprehension{Token: token.Token{Lexeme: "{"}, Kind: SetComp, Element: elem, Clauses: clauses}
}

func DictComprehension(key, value Expression, clauses ...*CompClause) *Comprehension {
	return &Comprehension{Token: token.Token{Lexeme: "{"}, Kind: DictComp, Key: key, Element: value, Clauses: clauses}
}

func MatchExpression(subject Expression, arms ...*MatchArm) *MatchExpr {
	return &MatchExpr{Token: token.Token{Type: token.KEYWORD, Lexeme: "match"}, Subject: subject, Arms: arms}
}

func Arm(pattern Pattern, guard Expression, body Expression) *MatchArm {
	return &MatchArm{Pattern: pattern, Guard: guard, Body: body}
}

// Types

// T builds a named type annotation, optionally with type arguments.
func T(name string, args ...TypeExpr) *NamedType {
	return &NamedType{Token: token.Token{Type: token.IDENT, Lexeme: name}, Name: Id(name), Args: args}
}

func Opt(inner TypeExpr) *NamedType {
	return T("Optional", inner)
}

func UnionOf(types ...TypeExpr) *UnionType {
	return &UnionType{Token: token.Token{Lexeme: "|"}, Types: types}
}

func Callable(params []TypeExpr, ret TypeExpr) *CallableType {
	return &CallableType{Token: token.Token{Type: token.IDENT, Lexeme: "Callable"}, Params: params, Return: ret}
}

// Parameters

func P(name string, typ TypeExpr) *Param {
	return &Param{Name: Id(name), Type: typ}
}

func PDefault(name string, typ TypeExpr, def Expression) *Param {
	return &Param{Name: Id(name), Type: typ, Default: def}
}

func PStar(name string, typ TypeExpr) *Param {
	return &Param{Name: Id(name), Type: typ, Variadic: true}
}

func Self() *Param {
	return &Param{Name: Id("self")}
}

// Statements

// Class starts a class definition; use the chaining methods to add type
// parameters, bases and a body.
func Class(name string) *ClassDef {
	return &ClassDef{Token: token.Token{Type: token.KEYWORD, Lexeme: "class"}, Name: Id(name)}
}

func (cd *ClassDef) Generic(params ...string) *ClassDef {
	for _, p := range params {
		cd.TypeParams = append(cd.TypeParams, Id(p))
	}
	return cd
}

func (cd *ClassDef) Extends(bases ...TypeExpr) *ClassDef {
	cd.Bases = append(cd.Bases, bases...)
	return cd
}

func (cd *ClassDef) With(body ...Statement) *ClassDef {
	cd.Body = append(cd.Body, body...)
	return cd
}

// Def starts a function definition.
func Def(name string, params ...*Param) *FunctionDef {
	return &FunctionDef{Token: token.Token{Type: token.KEYWORD, Lexeme: "def"}, Name: Id(name), Params: params}
}

func (fd *FunctionDef) Generic(params ...string) *FunctionDef {
	for _, p := range params {
		fd.TypeParams = append(fd.TypeParams, Id(p))
	}
	return fd
}

func (fd *FunctionDef) Returns(t TypeExpr) *FunctionDef {
	fd.ReturnType = t
	return fd
}

func (fd *FunctionDef) With(body ...Statement) *FunctionDef {
	fd.Body = append(fd.Body, body...)
	return fd
}

func (fd *FunctionDef) AsAbstract() *FunctionDef {
	fd.Abstract = true
	return fd
}

func Alias(name string, value TypeExpr) *TypeAliasStmt {
	return &TypeAliasStmt{Token: token.Token{Type: token.IDENT, Lexeme: name}, Name: Id(name), Value: value}
}

// Import builds `from module import names...`. A name of the form "a as b"
// is not parsed; use ImportAs for aliases.
func Import(module string, names ...string) *ImportFromStmt {
	is := &ImportFromStmt{Token: token.Token{Type: token.KEYWORD, Lexeme: "from"}, Module: module}
	for _, n := range names {
		is.Names = append(is.Names, &ImportName{Name: Id(n)})
	}
	return is
}

func ImportAs(module, name, alias string) *ImportFromStmt {
	return &ImportFromStmt{
		Token:  token.Token{Type: token.KEYWORD, Lexeme: "from"},
		Module: module,
		Names:  []*ImportName{{Name: Id(name), Alias: Id(alias)}},
	}
}

func Assign(target, value Expression) *AssignStmt {
	return &AssignStmt{Token: token.Token{Lexeme: "="}, Target: target, Value: value}
}

func Annotated(target Expression, typ TypeExpr, value Expression) *AssignStmt {
	return &AssignStmt{Token: token.Token{Lexeme: "="}, Target: target, Annotation: typ, Value: value}
}

func AugAssign(target Expression, op string, value Expression) *AugAssignStmt {
	return &AugAssignStmt{Token: token.Token{Type: token.OPERATOR, Lexeme: op + "="}, Target: target, Op: op, Value: value}
}

func Expr(e Expression) *ExpressionStmt {
	return &ExpressionStmt{Token: e.GetToken(), Expression: e}
}

func Return(value Expression) *ReturnStmt {
	return &ReturnStmt{Token: token.Token{Type: token.KEYWORD, Lexeme: "return"}, Value: value}
}

func If(condition Expression, then ...Statement) *IfStmt {
	return &IfStmt{Token: token.Token{Type: token.KEYWORD, Lexeme: "if"}, Condition: condition, Then: then}
}

func (is *IfStmt) Otherwise(otherwise ...Statement) *IfStmt {
	is.Else = otherwise
	return is
}

func While(condition Expression, body ...Statement) *WhileStmt {
	return &WhileStmt{Token: token.Token{Type: token.KEYWORD, Lexeme: "while"}, Condition: condition, Body: body}
}

func For(target, iter Expression, body ...Statement) *ForStmt {
	return &ForStmt{Token: token.Token{Type: token.KEYWORD, Lexeme: "for"}, Target: target, Iter: iter, Body: body}
}

func Try(body ...Statement) *TryStmt {
	return &TryStmt{Token: token.Token{Type: token.KEYWORD, Lexeme: "try"}, Body: body}
}

// Except appends a handler. name may be empty; no types means a bare except.
func (ts *TryStmt) Except(name string, body []Statement, types ...TypeExpr) *TryStmt {
	h := &ExceptClause{Types: types, Body: body}
	if name != "" {
		h.Name = Id(name)
	}
	ts.Handlers = append(ts.Handlers, h)
	return ts
}

func (ts *TryStmt) OrElse(body ...Statement) *TryStmt {
	ts.Else = body
	return ts
}

func (ts *TryStmt) FinallyDo(body ...Statement) *TryStmt {
	ts.Finally = body
	return ts
}

func Raise(e Expression) *RaiseStmt {
	return &RaiseStmt{Token: token.Token{Type: token.KEYWORD, Lexeme: "raise"}, Exception: e}
}

func Match(subject Expression, cases ...*MatchCase) *MatchStmt {
	return &MatchStmt{Token: token.Token{Type: token.KEYWORD, Lexeme: "match"}, Subject: subject, Cases: cases}
}

func Case(pattern Pattern, guard Expression, body ...Statement) *MatchCase {
	return &MatchCase{Pattern: pattern, Guard: guard, Body: body}
}

func Pass() *PassStmt {
	return &PassStmt{Token: token.Token{Type: token.KEYWORD, Lexeme: "pass"}}
}

func Break() *BreakStmt {
	return &BreakStmt{Token: token.Token{Type: token.KEYWORD, Lexeme: "break"}}
}

func Continue() *ContinueStmt {
	return &ContinueStmt{Token: token.Token{Type: token.KEYWORD, Lexeme: "continue"}}
}

// Patterns

func PLit(value Expression) *LiteralPattern {
	return &LiteralPattern{Value: value}
}

func PCapture(name string) *CapturePattern {
	return &CapturePattern{Name: Id(name)}
}

func PWild() *WildcardPattern {
	return &WildcardPattern{Token: token.Token{Lexeme: "_"}}
}

func PTuple(elems ...Pattern) *TuplePattern {
	return &TuplePattern{Elements: elems}
}

func PClass(class string, fields ...*FieldPattern) *ClassPattern {
	return &ClassPattern{Class: Id(class), Fields: fields}
}

func PField(name string, p Pattern) *FieldPattern {
	return &FieldPattern{Name: Id(name), Pattern: p}
}
