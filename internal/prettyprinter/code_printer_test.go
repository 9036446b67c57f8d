package prettyprinter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/mambacheck/internal/ast"
)

func TestPrintExprPrecedence(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expression
		want string
	}{
		{"left assoc", ast.Bin("-", ast.Bin("-", ast.Id("a"), ast.Id("b")), ast.Id("c")), "a - b - c"},
		{"right operand grouped", ast.Bin("-", ast.Id("a"), ast.Bin("-", ast.Id("b"), ast.Id("c"))), "a - (b - c)"},
		{"tighter operand", ast.Bin("+", ast.Id("a"), ast.Bin("*", ast.Id("b"), ast.Id("c"))), "a + b * c"},
		{"looser operand", ast.Bin("*", ast.Bin("+", ast.Id("a"), ast.Id("b")), ast.Id("c")), "(a + b) * c"},
		{"power is right assoc", ast.Bin("**", ast.Id("a"), ast.Bin("**", ast.Id("b"), ast.Id("c"))), "a ** b ** c"},
		{"negated power base", ast.Bin("**", ast.Unary("-", ast.Id("a")), ast.Int(2)), "(-a) ** 2"},
		{"not binds loosely", ast.Unary("not", ast.Bin("is", ast.Id("x"), ast.None())), "not x is None"},
		{"boolean mix", ast.Bin("and", ast.Bin("or", ast.Id("a"), ast.Id("b")), ast.Id("c")), "(a or b) and c"},
		{"method call", ast.Method(ast.Id("s"), "upper"), "s.upper()"},
		{"call on sum", ast.Call(ast.Attr(ast.Bin("+", ast.Id("a"), ast.Id("b")), "f")), "(a + b).f()"},
		{"subscript", ast.Index(ast.Id("xs"), ast.Int(0)), "xs[0]"},
		{"conditional", ast.Cond(ast.Int(1), ast.Id("flag"), ast.Str("s")), `1 if flag else "s"`},
		{"conditional operand", ast.Bin("+", ast.Id("a"), ast.Cond(ast.Int(1), ast.Id("f"), ast.Int(2))), "a + (1 if f else 2)"},
		{"lambda", ast.Lambda([]*ast.Param{ast.P("x", nil)}, ast.Bin("*", ast.Id("x"), ast.Int(2))), "lambda x: x * 2"},
		{"float keeps a point", ast.Float(2), "2.0"},
		{"one-tuple", ast.Tuple(ast.Int(1)), "(1,)"},
		{"empty set", ast.SetOf(), "set()"},
		{"dict", ast.Dict(ast.KV(ast.Str("a"), ast.Int(1))), `{"a": 1}`},
		{"literals", ast.List(ast.Bool(true), ast.None()), "[True, None]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, PrintExpr(tt.expr))
		})
	}
}

func TestPrintProgram(t *testing.T) {
	prog := ast.Prog(
		ast.Import("shapes", "Circle"),
		ast.Class("Box").Generic("T").With(
			ast.Def("__init__", ast.Self(), ast.P("item", ast.T("T"))).With(
				ast.Assign(ast.Attr(ast.Id("self"), "item"), ast.Id("item")),
			),
			ast.Def("get", ast.Self()).Returns(ast.T("T")).With(
				ast.Return(ast.Attr(ast.Id("self"), "item")),
			),
		),
		ast.Def("area", ast.P("r", ast.Opt(ast.T("float")))).Returns(ast.T("float")).With(
			ast.If(ast.Bin("is", ast.Id("r"), ast.None()),
				ast.Return(ast.Float(0)),
			).Otherwise(
				ast.AugAssign(ast.Id("r"), "*", ast.Id("r")),
			),
			ast.Try(ast.Raise(ast.Call(ast.Id("ValueError"), ast.Str("x")))).
				Except("e", []ast.Statement{ast.Pass()}, ast.T("ValueError"), ast.T("KeyError")).
				Except("", nil),
			ast.Return(ast.Id("r")),
		),
	)
	want := `from shapes import Circle

class Box(Generic[T]):
    def __init__(self, item: T):
        self.item = item

    def get(self) -> T:
        return self.item

def area(r: Optional[float]) -> float:
    if r is None:
        return 0.0
    else:
        r *= r
    try:
        raise ValueError("x")
    except (ValueError, KeyError) as e:
        pass
    except:
        pass
    return r
`
	require.Equal(t, want, Print(prog))
}

func TestPrintElifAndMatch(t *testing.T) {
	prog := ast.Prog(
		ast.If(ast.Id("a"), ast.Pass()).Otherwise(
			ast.If(ast.Id("b"), ast.Break()).Otherwise(ast.Continue()),
		),
		ast.Match(ast.Id("v"),
			ast.Case(ast.PClass("Point", ast.PField("x", ast.PCapture("px"))), nil, ast.Pass()),
			ast.Case(ast.PTuple(ast.PLit(ast.Int(0)), ast.PWild()), ast.Id("ok"), ast.Pass()),
		),
	)
	want := `if a:
    pass
elif b:
    break
else:
    continue
match v:
    case Point(x=px):
        pass
    case (0, _) if ok:
        pass
`
	require.Equal(t, want, Print(prog))
}
