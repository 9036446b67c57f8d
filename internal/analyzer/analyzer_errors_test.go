package analyzer

import (
	"testing"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
)

func pointClass() *ast.ClassDef {
	return ast.Class("Point").With(
		ast.Def("__init__", ast.Self(), ast.P("x", ast.T("int"))).With(
			ast.Assign(ast.Attr(ast.Id("self"), "x"), ast.Id("x")),
		),
	)
}

func addFunction() *ast.FunctionDef {
	return ast.Def("add", ast.P("a", ast.T("int")), ast.P("b", ast.T("int"))).Returns(ast.T("int")).With(
		ast.Return(ast.Bin("+", ast.Id("a"), ast.Id("b"))),
	)
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name   string
		prog   *ast.Program
		code   diagnostics.ErrorCode
		substr string
	}{
		{
			name:   "undefined name",
			prog:   ast.Prog(ast.Expr(ast.Call(ast.Id("print"), ast.Id("zzz")))),
			code:   diagnostics.ErrUndefinedSymbol,
			substr: "name 'zzz' is not defined",
		},
		{
			name: "undefined attribute",
			prog: ast.Prog(
				pointClass(),
				ast.Expr(ast.Attr(ast.Call(ast.Id("Point"), ast.Int(1)), "y")),
			),
			code:   diagnostics.ErrUndefinedSymbol,
			substr: "'Point' object has no attribute 'y'",
		},
		{
			name: "undefined type in annotation",
			prog: ast.Prog(
				ast.Def("f", ast.P("x", ast.T("Nope"))).Returns(ast.T("None")).With(ast.Pass()),
			),
			code:   diagnostics.ErrUndefinedSymbol,
			substr: "undefined type 'Nope'",
		},
		{
			name: "duplicate function",
			prog: ast.Prog(
				ast.Def("f").Returns(ast.T("None")).With(ast.Pass()),
				ast.Def("f").Returns(ast.T("None")).With(ast.Pass()),
			),
			code:   diagnostics.ErrDuplicateDefinition,
			substr: "'f' is already defined at line 1",
		},
		{
			name: "redefined built-in class",
			prog: ast.Prog(
				ast.Class("int").With(ast.Pass()),
			),
			code:   diagnostics.ErrDuplicateDefinition,
			substr: "cannot redefine built-in class 'int'",
		},
		{
			name: "duplicate base",
			prog: ast.Prog(
				ast.Class("A").With(ast.Pass()),
				ast.Class("B").Extends(ast.T("A"), ast.T("A")).With(ast.Pass()),
			),
			code:   diagnostics.ErrDuplicateDefinition,
			substr: "duplicate base class 'A'",
		},
		{
			name: "two-class cycle",
			prog: ast.Prog(
				ast.Class("A").Extends(ast.T("B")).With(ast.Pass()),
				ast.Class("B").Extends(ast.T("A")).With(ast.Pass()),
			),
			code:   diagnostics.ErrCyclicInheritance,
			substr: "cyclic inheritance",
		},
		{
			name: "self cycle",
			prog: ast.Prog(
				ast.Class("C").Extends(ast.T("C")).With(ast.Pass()),
			),
			code:   diagnostics.ErrCyclicInheritance,
			substr: "C -> C",
		},
		{
			name: "too few arguments",
			prog: ast.Prog(
				addFunction(),
				ast.Expr(ast.Call(ast.Id("add"), ast.Int(1))),
			),
			code:   diagnostics.ErrArityMismatch,
			substr: "'add' expects 2 argument(s), got 1",
		},
		{
			name: "argument type",
			prog: ast.Prog(
				addFunction(),
				ast.Expr(ast.Call(ast.Id("add"), ast.Int(1), ast.Str("x"))),
			),
			code:   diagnostics.ErrTypeMismatch,
			substr: "argument 2 to 'add': expected int, got str",
		},
		{
			name: "default parameters widen the arity",
			prog: ast.Prog(
				ast.Def("greet", ast.P("name", ast.T("str")), ast.PDefault("punct", ast.T("str"), ast.Str("!"))).
					Returns(ast.T("str")).With(
					ast.Return(ast.Bin("+", ast.Id("name"), ast.Id("punct"))),
				),
				ast.Expr(ast.Call(ast.Id("greet"))),
			),
			code:   diagnostics.ErrArityMismatch,
			substr: "got 0",
		},
		{
			name: "annotated assignment",
			prog: ast.Prog(
				ast.Annotated(ast.Id("n"), ast.T("int"), ast.Str("s")),
			),
			code:   diagnostics.ErrTypeMismatch,
			substr: "expected int, got str",
		},
		{
			name: "reassignment with another type",
			prog: ast.Prog(
				ast.Annotated(ast.Id("n"), ast.T("int"), ast.Int(0)),
				ast.Assign(ast.Id("n"), ast.Str("s")),
			),
			code:   diagnostics.ErrTypeMismatch,
			substr: "'n'",
		},
		{
			name: "calling an int",
			prog: ast.Prog(
				ast.Assign(ast.Id("x"), ast.Int(1)),
				ast.Expr(ast.Call(ast.Id("x"))),
			),
			code:   diagnostics.ErrTypeMismatch,
			substr: "'int' object is not callable",
		},
		{
			name: "iterating an int",
			prog: ast.Prog(
				ast.For(ast.Id("x"), ast.Int(5), ast.Pass()),
			),
			code:   diagnostics.ErrTypeMismatch,
			substr: "'int' object is not iterable",
		},
		{
			name:   "return at module level",
			prog:   ast.Prog(ast.Return(ast.Int(1))),
			code:   diagnostics.ErrTypeMismatch,
			substr: "'return' outside function",
		},
		{
			name: "Generic with a non-variable",
			prog: ast.Prog(
				ast.Class("Box").Extends(ast.T("Generic", ast.T("list", ast.T("int")))).With(ast.Pass()),
			),
			code:   diagnostics.ErrTypeMismatch,
			substr: "'Generic' takes type variables only",
		},
		{
			name:   "unary minus on str",
			prog:   ast.Prog(ast.Expr(ast.Unary("-", ast.Str("s")))),
			code:   diagnostics.ErrUnresolvedOverload,
			substr: "bad operand type for unary -: str",
		},
		{
			name: "wrong return type",
			prog: ast.Prog(
				ast.Def("g").Returns(ast.T("int")).With(ast.Return(ast.Str("s"))),
			),
			code:   diagnostics.ErrTypeMismatch,
			substr: "return value of 'g': expected int, got str",
		},
		{
			name: "missing return",
			prog: ast.Prog(
				ast.Def("f", ast.P("x", ast.T("int"))).Returns(ast.T("int")).With(
					ast.If(ast.Bin(">", ast.Id("x"), ast.Int(0)), ast.Return(ast.Int(1))),
				),
			),
			code:   diagnostics.ErrTypeMismatch,
			substr: "missing return statement: function 'f' must return int",
		},
		{
			name: "raising a non-exception",
			prog: ast.Prog(
				ast.Def("f").Returns(ast.T("None")).With(ast.Raise(ast.Int(5))),
			),
			code:   diagnostics.ErrTypeMismatch,
			substr: "exceptions must derive from BaseException, got int",
		},
		{
			name: "catching a non-exception",
			prog: ast.Prog(
				ast.Try(ast.Pass()).Except("", []ast.Statement{ast.Pass()}, ast.T("int")),
			),
			code:   diagnostics.ErrIncompatibleCatch,
			substr: "catching 'int' which does not derive from BaseException",
		},
		{
			name: "directly instantiating an abstract class",
			prog: ast.Prog(
				ast.Class("Base").Extends(ast.T("ABC")).With(
					ast.Def("run", ast.Self()).Returns(ast.T("None")).AsAbstract(),
				),
				ast.Expr(ast.Call(ast.Id("Base"))),
			),
			code:   diagnostics.ErrAbstractNotImplemented,
			substr: "'run'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectAnalyzerErrorContains(t, tt.prog, tt.code, tt.substr)
		})
	}
}

func TestUninferredAttributeWarning(t *testing.T) {
	prog := ast.Prog(
		ast.Class("Bag").With(
			ast.Def("__init__", ast.Self()).With(
				ast.Assign(ast.Attr(ast.Id("self"), "items"), ast.List()),
			),
		),
	)
	results := checkModules(t, config.Default(), prog)
	d := expectCode(t, results, diagnostics.ErrUninferredAttributeType)
	if d.IsError() {
		t.Fatalf("expected a warning, got %s", d.Severity)
	}
	if !results[0].Accepted {
		t.Fatalf("a warning must not reject the module:\n%s", describe(results[0].Diagnostics))
	}
}

func TestAnnotatedEmptyAttributeIsInferred(t *testing.T) {
	results := checkModules(t, config.Default(), ast.Prog(
		ast.Class("Bag").With(
			ast.Def("__init__", ast.Self()).With(
				ast.Annotated(ast.Attr(ast.Id("self"), "items"), ast.T("list", ast.T("int")), ast.List()),
			),
		),
	))
	if n := countCode(results[0].Diagnostics, diagnostics.ErrUninferredAttributeType); n != 0 {
		t.Fatalf("expected no warning, got:\n%s", describe(results[0].Diagnostics))
	}
}
