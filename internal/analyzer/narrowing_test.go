package analyzer

import (
	"testing"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

func optionalIntParam() *ast.Param {
	return ast.P("x", ast.Opt(ast.T("int")))
}

func TestOptionalAccess(t *testing.T) {
	t.Run("operator on an optional", func(t *testing.T) {
		expectAnalyzerErrorContains(t, ast.Prog(
			ast.Def("f", optionalIntParam()).Returns(ast.T("int")).With(
				ast.Return(ast.Bin("+", ast.Id("x"), ast.Int(1))),
			),
		), diagnostics.ErrOptionalAccess, "operator '+' applied to a value of type Optional[int] that may be None")
	})

	t.Run("attribute on an optional", func(t *testing.T) {
		expectAnalyzerErrorContains(t, ast.Prog(
			ast.Def("g", ast.P("s", ast.Opt(ast.T("str")))).Returns(ast.T("str")).With(
				ast.Return(ast.Method(ast.Id("s"), "upper")),
			),
		), diagnostics.ErrOptionalAccess, "attribute 'upper' accessed on a value of type Optional[str] that may be None")
	})

	t.Run("strict_optional off", func(t *testing.T) {
		opts := config.Default()
		opts.StrictOptional = false
		results := checkModules(t, opts, ast.Prog(
			ast.Def("g", ast.P("s", ast.Opt(ast.T("str")))).Returns(ast.T("str")).With(
				ast.Return(ast.Method(ast.Id("s"), "upper")),
			),
		))
		if n := countCode(results[0].Diagnostics, diagnostics.ErrOptionalAccess); n != 0 {
			t.Fatalf("expected no optional access errors, got:\n%s", describe(results[0].Diagnostics))
		}
	})
}

func TestNoneNarrowing(t *testing.T) {
	tests := []struct {
		name string
		body []ast.Statement
	}{
		{
			name: "early return on is None",
			body: []ast.Statement{
				ast.If(ast.Bin("is", ast.Id("x"), ast.None()), ast.Return(ast.Int(0))),
				ast.Return(ast.Bin("+", ast.Id("x"), ast.Int(1))),
			},
		},
		{
			name: "is not None branch",
			body: []ast.Statement{
				ast.If(ast.Bin("is not", ast.Id("x"), ast.None()),
					ast.Return(ast.Bin("+", ast.Id("x"), ast.Int(1))),
				),
				ast.Return(ast.Int(0)),
			},
		},
		{
			name: "else branch of == None",
			body: []ast.Statement{
				ast.If(ast.Bin("==", ast.Id("x"), ast.None()),
					ast.Return(ast.Int(0)),
				).Otherwise(
					ast.Return(ast.Bin("*", ast.Id("x"), ast.Int(2))),
				),
			},
		},
		{
			name: "truthiness",
			body: []ast.Statement{
				ast.If(ast.Id("x"), ast.Return(ast.Bin("-", ast.Id("x"), ast.Int(1)))),
				ast.Return(ast.Int(0)),
			},
		},
		{
			name: "not",
			body: []ast.Statement{
				ast.If(ast.Unary("not", ast.Bin("is not", ast.Id("x"), ast.None())), ast.Return(ast.Int(0))),
				ast.Return(ast.Bin("+", ast.Id("x"), ast.Int(1))),
			},
		},
		{
			name: "right side of and",
			body: []ast.Statement{
				ast.If(ast.Bin("and", ast.Bin("is not", ast.Id("x"), ast.None()), ast.Bin(">", ast.Id("x"), ast.Int(0))),
					ast.Return(ast.Int(1)),
				),
				ast.Return(ast.Int(0)),
			},
		},
		{
			name: "raise guard",
			body: []ast.Statement{
				ast.If(ast.Bin("is", ast.Id("x"), ast.None()), ast.Raise(ast.Call(ast.Id("ValueError"), ast.Str("x")))),
				ast.Return(ast.Id("x")),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectNoAnalyzerErrors(t, ast.Prog(
				ast.Def("f", optionalIntParam()).Returns(ast.T("int")).With(tt.body...),
			))
		})
	}
}

func TestIsInstanceNarrowing(t *testing.T) {
	t.Run("union split", func(t *testing.T) {
		expectNoAnalyzerErrors(t, ast.Prog(
			ast.Def("h", ast.P("v", ast.UnionOf(ast.T("int"), ast.T("str")))).Returns(ast.T("int")).With(
				ast.If(ast.Call(ast.Id("isinstance"), ast.Id("v"), ast.Id("str")),
					ast.Return(ast.Call(ast.Id("len"), ast.Id("v"))),
				),
				ast.Return(ast.Bin("+", ast.Id("v"), ast.Int(1))),
			),
		))
	})

	t.Run("tuple of classes", func(t *testing.T) {
		expectNoAnalyzerErrors(t, ast.Prog(
			ast.Class("bytesish").With(ast.Pass()),
			ast.Def("k", ast.P("v", ast.UnionOf(ast.T("int"), ast.T("str"), ast.T("bytesish")))).Returns(ast.T("str")).With(
				ast.If(ast.Call(ast.Id("isinstance"), ast.Id("v"), ast.Tuple(ast.Id("int"), ast.Id("bytesish"))),
					ast.Return(ast.Str("other")),
				),
				ast.Return(ast.Method(ast.Id("v"), "upper")),
			),
		))
	})

	t.Run("without narrowing the union is rejected", func(t *testing.T) {
		expectAnalyzerError(t, ast.Prog(
			ast.Def("h", ast.P("v", ast.UnionOf(ast.T("int"), ast.T("str")))).Returns(ast.T("int")).With(
				ast.Return(ast.Bin("+", ast.Id("v"), ast.Int(1))),
			),
		), diagnostics.ErrUnresolvedOverload)
	})
}

func TestBranchJoin(t *testing.T) {
	t.Run("assignment in one branch widens to Optional", func(t *testing.T) {
		expectAnalyzerErrorContains(t, ast.Prog(
			ast.Def("f", ast.P("flag", ast.T("bool"))).Returns(ast.T("int")).With(
				ast.Assign(ast.Id("r"), ast.None()),
				ast.If(ast.Id("flag"), ast.Assign(ast.Id("r"), ast.Int(1))),
				ast.Return(ast.Id("r")),
			),
		), diagnostics.ErrTypeMismatch, "return value of 'f': expected int, got Optional[int]")
	})

	t.Run("narrowed after a guard", func(t *testing.T) {
		expectNoAnalyzerErrors(t, ast.Prog(
			ast.Def("f", ast.P("flag", ast.T("bool"))).Returns(ast.T("int")).With(
				ast.Assign(ast.Id("r"), ast.None()),
				ast.If(ast.Id("flag"), ast.Assign(ast.Id("r"), ast.Int(1))),
				ast.If(ast.Bin("is", ast.Id("r"), ast.None()), ast.Return(ast.Int(0))),
				ast.Return(ast.Id("r")),
			),
		))
	})
}

func linkedNode(following ...ast.Statement) *ast.Program {
	return ast.Prog(
		ast.Class("Node").With(
			ast.Assign(ast.Id("next"), ast.None()),
			ast.Def("__init__", ast.Self(), ast.P("v", ast.T("int"))).With(
				ast.Assign(ast.Attr(ast.Id("self"), "v"), ast.Id("v")),
			),
			ast.Def("link", ast.Self(), ast.P("other", ast.T("Node"))).With(
				ast.Assign(ast.Attr(ast.Id("self"), "next"), ast.Id("other")),
			),
			ast.Def("following", ast.Self()).Returns(ast.T("int")).With(following...),
		),
	)
}

func TestSentinelAttribute(t *testing.T) {
	t.Run("unguarded access", func(t *testing.T) {
		expectAnalyzerErrorContains(t, linkedNode(
			ast.Return(ast.Attr(ast.Attr(ast.Id("self"), "next"), "v")),
		), diagnostics.ErrOptionalAccess, "attribute 'v' accessed on a value of type Optional[Node] that may be None")
	})

	t.Run("guarded access", func(t *testing.T) {
		expectNoAnalyzerErrors(t, linkedNode(
			ast.If(ast.Bin("is not", ast.Attr(ast.Id("self"), "next"), ast.None()),
				ast.Return(ast.Attr(ast.Attr(ast.Id("self"), "next"), "v")),
			),
			ast.Return(ast.Int(0)),
		))
	})

	t.Run("instance sentinel set in __init__", func(t *testing.T) {
		expectAnalyzerError(t, ast.Prog(
			ast.Class("Holder").With(
				ast.Def("__init__", ast.Self()).With(
					ast.Assign(ast.Attr(ast.Id("self"), "value"), ast.None()),
				),
				ast.Def("set", ast.Self(), ast.P("v", ast.T("str"))).With(
					ast.Assign(ast.Attr(ast.Id("self"), "value"), ast.Id("v")),
				),
				ast.Def("shout", ast.Self()).Returns(ast.T("str")).With(
					ast.Return(ast.Method(ast.Attr(ast.Id("self"), "value"), "upper")),
				),
			),
		), diagnostics.ErrOptionalAccess)
	})
}

func TestConditionalExpressionType(t *testing.T) {
	cond := ast.Cond(ast.Int(1), ast.Bool(true), ast.Str("s"))
	results := expectNoAnalyzerErrors(t, ast.Prog(ast.Expr(cond)))
	want := typesystem.NormalizeUnion([]typesystem.Type{typesystem.Int, typesystem.Str})
	if got := results[0].TypeMap[cond]; !typesystem.Equal(got, want) {
		t.Errorf("got %v, want %s", got, want)
	}
}
