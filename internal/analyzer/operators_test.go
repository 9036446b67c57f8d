package analyzer

import (
	"testing"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

func vectorClasses() []ast.Statement {
	return []ast.Statement{
		ast.Class("Vec").With(
			ast.Def("__add__", ast.Self(), ast.P("other", ast.T("Vec"))).Returns(ast.T("Vec")).With(
				ast.Return(ast.Call(ast.Id("Vec"))),
			),
		),
		ast.Class("Meters").With(
			ast.Def("__rmul__", ast.Self(), ast.P("k", ast.T("int"))).Returns(ast.T("Meters")).With(
				ast.Return(ast.Call(ast.Id("Meters"))),
			),
		),
	}
}

func TestOperatorResultTypes(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expression
		want typesystem.Type
	}{
		{"int plus int", ast.Bin("+", ast.Int(1), ast.Int(2)), typesystem.Int},
		{"int promoted to float", ast.Bin("+", ast.Int(1), ast.Float(2.0)), typesystem.Float},
		{"float plus int", ast.Bin("+", ast.Float(2.0), ast.Int(1)), typesystem.Float},
		{"true division", ast.Bin("/", ast.Int(1), ast.Int(2)), typesystem.Float},
		{"comparison", ast.Bin("<", ast.Int(1), ast.Int(2)), typesystem.Bool},
		{"string concatenation", ast.Bin("+", ast.Str("a"), ast.Str("b")), typesystem.Str},
		{"string repetition", ast.Bin("*", ast.Str("ab"), ast.Int(3)), typesystem.Str},
		{"reflected string repetition", ast.Bin("*", ast.Int(3), ast.Str("ab")), typesystem.Str},
		{"bool promoted to int", ast.Bin("+", ast.Bool(true), ast.Int(1)), typesystem.Int},
		{"user __add__", ast.Bin("+", ast.Call(ast.Id("Vec")), ast.Call(ast.Id("Vec"))), typesystem.TClass{Name: "Vec"}},
		{"user __rmul__", ast.Bin("*", ast.Int(2), ast.Call(ast.Id("Meters"))), typesystem.TClass{Name: "Meters"}},
		{"unary minus", ast.Unary("-", ast.Int(4)), typesystem.Int},
		{"membership", ast.Bin("in", ast.Str("a"), ast.List(ast.Str("a"))), typesystem.Bool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := ast.Prog(append(vectorClasses(), ast.Expr(tt.expr))...)
			results := expectNoAnalyzerErrors(t, prog)
			got, ok := results[0].TypeMap[tt.expr]
			if !ok {
				t.Fatalf("no type recorded for the expression")
			}
			if !typesystem.Equal(got, tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOperatorErrors(t *testing.T) {
	tests := []struct {
		name   string
		expr   ast.Expression
		code   diagnostics.ErrorCode
		substr string
	}{
		{
			name:   "str plus int",
			expr:   ast.Bin("+", ast.Str("a"), ast.Int(1)),
			code:   diagnostics.ErrUnresolvedOverload,
			substr: "unsupported operand types for +: str and int",
		},
		{
			name:   "user class without the reflected method",
			expr:   ast.Bin("+", ast.Call(ast.Id("Vec")), ast.Int(1)),
			code:   diagnostics.ErrUnresolvedOverload,
			substr: "unsupported operand types for +: Vec and int",
		},
		{
			name:   "membership with an unrelated element type",
			expr:   ast.Bin("in", ast.Int(1), ast.List(ast.Str("a"))),
			code:   diagnostics.ErrTypeMismatch,
			substr: "can never contain a value of type int",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := ast.Prog(append(vectorClasses(), ast.Expr(tt.expr))...)
			expectAnalyzerErrorContains(t, prog, tt.code, tt.substr)
		})
	}
}

func TestOperatorResolutionOrder(t *testing.T) {
	classes := []ast.Statement{
		// Both sides accept: the left operand's method wins.
		ast.Class("Left").With(
			ast.Def("__add__", ast.Self(), ast.P("other", ast.T("Right"))).Returns(ast.T("int")).With(
				ast.Return(ast.Int(1)),
			),
		),
		ast.Class("Right").With(
			ast.Def("__radd__", ast.Self(), ast.P("other", ast.T("Left"))).Returns(ast.T("str")).With(
				ast.Return(ast.Str("r")),
			),
		),
		// A's method exists but rejects B, so B's reflected method is used.
		ast.Class("A").With(
			ast.Def("__add__", ast.Self(), ast.P("other", ast.T("A"))).Returns(ast.T("int")).With(
				ast.Return(ast.Int(1)),
			),
		),
		ast.Class("B").With(
			ast.Def("__radd__", ast.Self(), ast.P("other", ast.T("A"))).Returns(ast.T("str")).With(
				ast.Return(ast.Str("b")),
			),
		),
	}
	build := func(expr ast.Expression) *ast.Program {
		return ast.Prog(append(append([]ast.Statement(nil), classes...), ast.Expr(expr))...)
	}

	resolved := []struct {
		name string
		expr ast.Expression
		want typesystem.Type
	}{
		{"left method preferred", ast.Bin("+", ast.Call(ast.Id("Left")), ast.Call(ast.Id("Right"))), typesystem.Int},
		{"reflected after a rejecting left method", ast.Bin("+", ast.Call(ast.Id("A")), ast.Call(ast.Id("B"))), typesystem.Str},
		{"left method with its own type", ast.Bin("+", ast.Call(ast.Id("A")), ast.Call(ast.Id("A"))), typesystem.Int},
	}
	for _, tt := range resolved {
		t.Run(tt.name, func(t *testing.T) {
			results := expectNoAnalyzerErrors(t, build(tt.expr))
			got, ok := results[0].TypeMap[tt.expr]
			if !ok {
				t.Fatalf("no type recorded for the expression")
			}
			if !typesystem.Equal(got, tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	unresolved := []struct {
		name   string
		expr   ast.Expression
		substr string
	}{
		{"neither side accepts", ast.Bin("+", ast.Call(ast.Id("B")), ast.Call(ast.Id("A"))), "unsupported operand types for +: B and A"},
		{"reflected method only serves the right side", ast.Bin("+", ast.Call(ast.Id("Right")), ast.Call(ast.Id("Left"))), "unsupported operand types for +: Right and Left"},
	}
	for _, tt := range unresolved {
		t.Run(tt.name, func(t *testing.T) {
			expectAnalyzerErrorContains(t, build(tt.expr), diagnostics.ErrUnresolvedOverload, tt.substr)
		})
	}
}

func TestAugmentedAssignment(t *testing.T) {
	t.Run("same type", func(t *testing.T) {
		expectNoAnalyzerErrors(t, ast.Prog(
			ast.Annotated(ast.Id("total"), ast.T("int"), ast.Int(0)),
			ast.AugAssign(ast.Id("total"), "+", ast.Int(1)),
		))
	})

	t.Run("unsupported operand", func(t *testing.T) {
		expectAnalyzerErrorContains(t, ast.Prog(
			ast.Annotated(ast.Id("total"), ast.T("int"), ast.Int(0)),
			ast.AugAssign(ast.Id("total"), "+", ast.Str("x")),
		), diagnostics.ErrUnresolvedOverload, "unsupported operand types for +")
	})

	t.Run("result does not fit the declared type", func(t *testing.T) {
		expectAnalyzerErrorContains(t, ast.Prog(
			ast.Annotated(ast.Id("n"), ast.T("int"), ast.Int(0)),
			ast.AugAssign(ast.Id("n"), "+", ast.Float(1.5)),
		), diagnostics.ErrTypeMismatch, "cannot assign float to 'n' of type int")
	})
}
