package analyzer

import (
	"testing"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

func TestExceptClauses(t *testing.T) {
	t.Run("bare except before a typed one", func(t *testing.T) {
		expectAnalyzerErrorContains(t, ast.Prog(
			ast.Try(ast.Pass()).
				Except("", []ast.Statement{ast.Pass()}).
				Except("", []ast.Statement{ast.Pass()}, ast.T("ValueError")),
		), diagnostics.ErrUnreachableExceptCase, "a bare except clause above catches every exception")
	})

	t.Run("bound name has the caught type", func(t *testing.T) {
		expectNoAnalyzerErrors(t, ast.Prog(
			ast.Def("f").Returns(ast.T("None")).With(
				ast.Try(ast.Raise(ast.Call(ast.Id("KeyError"), ast.Str("k")))).
					Except("e", []ast.Statement{
						ast.Expr(ast.Call(ast.Id("print"), ast.Attr(ast.Id("e"), "args"))),
					}, ast.T("KeyError")),
			),
		))
	})

	t.Run("user exception hierarchy", func(t *testing.T) {
		expectNoAnalyzerErrors(t, ast.Prog(
			ast.Class("AppError").Extends(ast.T("Exception")).With(ast.Pass()),
			ast.Class("ConfigError").Extends(ast.T("AppError")).With(ast.Pass()),
			ast.Try(ast.Raise(ast.Call(ast.Id("ConfigError")))).
				Except("", []ast.Statement{ast.Pass()}, ast.T("ConfigError")).
				Except("", []ast.Statement{ast.Pass()}, ast.T("AppError")).
				FinallyDo(ast.Pass()),
		))
	})

	t.Run("raising a class", func(t *testing.T) {
		expectNoAnalyzerErrors(t, ast.Prog(
			ast.Def("f").Returns(ast.T("None")).With(ast.Raise(ast.Id("ValueError"))),
		))
	})

	t.Run("try value is the union of the branches", func(t *testing.T) {
		try := ast.Try(ast.Expr(ast.Int(1))).
			Except("", []ast.Statement{ast.Expr(ast.Str("x"))}, ast.T("ValueError"))
		results := expectNoAnalyzerErrors(t, ast.Prog(try))
		want := typesystem.NormalizeUnion([]typesystem.Type{typesystem.Int, typesystem.Str})
		if got := results[0].TypeMap[try]; !typesystem.Equal(got, want) {
			t.Errorf("got %v, want %s", got, want)
		}
	})
}

func TestUncaughtRaiseWarning(t *testing.T) {
	raising := func(body ...ast.Statement) *ast.Program {
		return ast.Prog(ast.Def("f").Returns(ast.T("None")).With(body...))
	}
	opts := config.Default()
	opts.WarnUncaughtRaises = true

	t.Run("uncaught", func(t *testing.T) {
		results := checkModules(t, opts, raising(ast.Raise(ast.Call(ast.Id("ValueError"), ast.Str("x")))))
		d := expectCode(t, results, diagnostics.ErrUncaughtRaise)
		if d.IsError() {
			t.Fatalf("expected a warning, got %s", d.Severity)
		}
		if !results[0].Accepted {
			t.Fatalf("a warning must not reject the module")
		}
	})

	t.Run("caught by a base class", func(t *testing.T) {
		results := checkModules(t, opts, raising(
			ast.Try(ast.Raise(ast.Call(ast.Id("ValueError"), ast.Str("x")))).
				Except("", []ast.Statement{ast.Pass()}, ast.T("Exception")),
		))
		if n := countCode(results[0].Diagnostics, diagnostics.ErrUncaughtRaise); n != 0 {
			t.Fatalf("expected no warning, got:\n%s", describe(results[0].Diagnostics))
		}
	})

	t.Run("off by default", func(t *testing.T) {
		results := checkModules(t, config.Default(), raising(ast.Raise(ast.Call(ast.Id("ValueError"), ast.Str("x")))))
		if n := countCode(results[0].Diagnostics, diagnostics.ErrUncaughtRaise); n != 0 {
			t.Fatalf("expected no warning, got:\n%s", describe(results[0].Diagnostics))
		}
	})
}

func TestMatchPatterns(t *testing.T) {
	t.Run("literal of another type", func(t *testing.T) {
		expectAnalyzerErrorContains(t, ast.Prog(
			ast.Def("f", ast.P("n", ast.T("int"))).Returns(ast.T("None")).With(
				ast.Match(ast.Id("n"),
					ast.Case(ast.PLit(ast.Str("a")), nil, ast.Pass()),
				),
			),
		), diagnostics.ErrTypeMismatch, "pattern of type str can never match a subject of type int")
	})

	t.Run("class pattern binds field types", func(t *testing.T) {
		expectNoAnalyzerErrors(t, ast.Prog(
			pointClass(),
			ast.Def("f", ast.P("p", ast.T("Point"))).Returns(ast.T("int")).With(
				ast.Match(ast.Id("p"),
					ast.Case(ast.PClass("Point", ast.PField("x", ast.PCapture("px"))), nil,
						ast.Return(ast.Bin("+", ast.Id("px"), ast.Int(1))),
					),
				),
				ast.Return(ast.Int(0)),
			),
		))
	})

	t.Run("class pattern that cannot match", func(t *testing.T) {
		expectAnalyzerErrorContains(t, ast.Prog(
			ast.Def("f", ast.P("n", ast.T("int"))).Returns(ast.T("None")).With(
				ast.Match(ast.Id("n"),
					ast.Case(ast.PClass("str"), nil, ast.Pass()),
				),
			),
		), diagnostics.ErrTypeMismatch, "can never match a subject of type int")
	})

	t.Run("class pattern narrows a union", func(t *testing.T) {
		expectNoAnalyzerErrors(t, ast.Prog(
			ast.Def("f", ast.P("v", ast.UnionOf(ast.T("int"), ast.T("str")))).Returns(ast.T("str")).With(
				ast.Match(ast.Id("v"),
					ast.Case(ast.PClass("str"), nil, ast.Return(ast.Method(ast.Id("v"), "upper"))),
					ast.Case(ast.PWild(), nil, ast.Return(ast.Str("int"))),
				),
			),
		))
	})

	t.Run("name bound twice", func(t *testing.T) {
		expectAnalyzerErrorContains(t, ast.Prog(
			ast.Match(ast.Tuple(ast.Int(1), ast.Int(2)),
				ast.Case(ast.PTuple(ast.PCapture("a"), ast.PCapture("a")), nil, ast.Pass()),
			),
		), diagnostics.ErrDuplicateDefinition, "name 'a' is bound twice in the same pattern")
	})

	t.Run("match expression", func(t *testing.T) {
		m := ast.MatchExpression(ast.Int(3),
			ast.Arm(ast.PLit(ast.Int(1)), nil, ast.Str("one")),
			ast.Arm(ast.PWild(), nil, ast.Int(0)),
		)
		results := expectNoAnalyzerErrors(t, ast.Prog(ast.Expr(m)))
		want := typesystem.NormalizeUnion([]typesystem.Type{typesystem.Int, typesystem.Str})
		if got := results[0].TypeMap[m]; !typesystem.Equal(got, want) {
			t.Errorf("got %v, want %s", got, want)
		}
	})
}

func TestIteration(t *testing.T) {
	t.Run("list of ints", func(t *testing.T) {
		expectNoAnalyzerErrors(t, ast.Prog(
			ast.Def("s", ast.P("xs", ast.T("list", ast.T("int")))).Returns(ast.T("int")).With(
				ast.Assign(ast.Id("t"), ast.Int(0)),
				ast.For(ast.Id("x"), ast.Id("xs"),
					ast.Assign(ast.Id("t"), ast.Bin("+", ast.Id("t"), ast.Id("x"))),
				),
				ast.Return(ast.Id("t")),
			),
		))
	})

	t.Run("user iterator protocol", func(t *testing.T) {
		expectNoAnalyzerErrors(t, ast.Prog(
			ast.Class("CountIter").With(
				ast.Def("__next__", ast.Self()).Returns(ast.T("int")).With(ast.Return(ast.Int(1))),
			),
			ast.Class("Countdown").With(
				ast.Def("__iter__", ast.Self()).Returns(ast.T("CountIter")).With(ast.Return(ast.Call(ast.Id("CountIter")))),
			),
			ast.For(ast.Id("i"), ast.Call(ast.Id("Countdown")),
				ast.Expr(ast.Call(ast.Id("print"), ast.Bin("+", ast.Id("i"), ast.Int(1)))),
			),
		))
	})

	t.Run("iterator without __next__", func(t *testing.T) {
		expectAnalyzerErrorContains(t, ast.Prog(
			ast.Class("Broken").With(ast.Pass()),
			ast.Class("Bag").With(
				ast.Def("__iter__", ast.Self()).Returns(ast.T("Broken")).With(ast.Return(ast.Call(ast.Id("Broken")))),
			),
			ast.For(ast.Id("i"), ast.Call(ast.Id("Bag")), ast.Pass()),
		), diagnostics.ErrTypeMismatch, "'Bag' object is not iterable")
	})

	t.Run("tuple unpacking", func(t *testing.T) {
		expectAnalyzerErrorContains(t, ast.Prog(
			ast.Assign(ast.Tuple(ast.Id("a"), ast.Id("b")), ast.Tuple(ast.Int(1), ast.Int(2), ast.Int(3))),
		), diagnostics.ErrTypeMismatch, "cannot unpack 3 values into 2 targets")
	})

	t.Run("set comprehension", func(t *testing.T) {
		comp := ast.SetComprehension(ast.Bin("*", ast.Id("x"), ast.Int(2)),
			ast.Gen(ast.Id("x"), ast.List(ast.Int(1), ast.Int(2))))
		results := expectNoAnalyzerErrors(t, ast.Prog(ast.Expr(comp)))
		want := typesystem.TClass{Name: "set", Args: []typesystem.Type{typesystem.Int}}
		if got := results[0].TypeMap[comp]; !typesystem.Equal(got, want) {
			t.Errorf("got %v, want %s", got, want)
		}
	})

	t.Run("infinite loop terminates the function", func(t *testing.T) {
		expectNoAnalyzerErrors(t, ast.Prog(
			ast.Def("w").Returns(ast.T("int")).With(
				ast.While(ast.Bool(true), ast.Return(ast.Int(1))),
			),
		))
	})
}

func TestBaseDispatch(t *testing.T) {
	bases := []ast.Statement{
		ast.Class("Base1").With(
			ast.Def("__init__", ast.Self(), ast.P("x", ast.T("int"))).With(
				ast.Assign(ast.Attr(ast.Id("self"), "x"), ast.Id("x")),
			),
		),
		ast.Class("Base2").With(
			ast.Def("__init__", ast.Self()).With(
				ast.Assign(ast.Attr(ast.Id("self"), "y"), ast.Int(1)),
			),
		),
		ast.Class("Child").Extends(ast.T("Base1"), ast.T("Base2")).With(
			ast.Def("__init__", ast.Self(), ast.P("x", ast.T("int"))).With(
				ast.Expr(ast.Method(ast.Id("Base1"), "__init__", ast.Id("self"), ast.Id("x"))),
				ast.Expr(ast.Method(ast.Id("Base2"), "__init__", ast.Id("self"))),
			),
		),
	}

	t.Run("immediate bases", func(t *testing.T) {
		expectNoAnalyzerErrors(t, ast.Prog(bases...))
	})

	t.Run("skipping a level", func(t *testing.T) {
		prog := ast.Prog(append(bases,
			ast.Class("GrandChild").Extends(ast.T("Child")).With(
				ast.Def("__init__", ast.Self()).With(
					ast.Expr(ast.Method(ast.Id("Base1"), "__init__", ast.Id("self"), ast.Int(1))),
				),
			),
		)...)
		expectAnalyzerErrorContains(t, prog, diagnostics.ErrInvalidBaseDispatch,
			"'Base1' is not an immediate base of 'GrandChild'")
	})

	t.Run("super", func(t *testing.T) {
		expectNoAnalyzerErrors(t, ast.Prog(
			ast.Class("Animal").With(
				ast.Def("speak", ast.Self()).Returns(ast.T("str")).With(ast.Return(ast.Str("..."))),
			),
			ast.Class("Dog").Extends(ast.T("Animal")).With(
				ast.Def("speak", ast.Self()).Returns(ast.T("str")).With(
					ast.Return(ast.Bin("+", ast.Method(ast.Call(ast.Id("super")), "speak"), ast.Str("!"))),
				),
			),
		))
	})

	t.Run("super outside a method", func(t *testing.T) {
		expectAnalyzerErrorContains(t, ast.Prog(
			ast.Expr(ast.Call(ast.Id("super"))),
		), diagnostics.ErrUndefinedSymbol, "super() is only valid inside a method")
	})
}

func TestHigherOrderFunctions(t *testing.T) {
	apply := ast.Def("apply",
		ast.P("f", ast.Callable([]ast.TypeExpr{ast.T("int")}, ast.T("int"))),
		ast.P("x", ast.T("int")),
	).Returns(ast.T("int")).With(ast.Return(ast.Call(ast.Id("f"), ast.Id("x"))))

	t.Run("lambda parameters take the expected types", func(t *testing.T) {
		expectNoAnalyzerErrors(t, ast.Prog(
			apply,
			ast.Expr(ast.Call(ast.Id("apply"),
				ast.Lambda([]*ast.Param{ast.P("y", nil)}, ast.Bin("+", ast.Id("y"), ast.Int(1))),
				ast.Int(2))),
		))
	})

	t.Run("lambda with the wrong result", func(t *testing.T) {
		expectAnalyzerErrorContains(t, ast.Prog(
			ast.Def("apply",
				ast.P("f", ast.Callable([]ast.TypeExpr{ast.T("int")}, ast.T("int"))),
				ast.P("x", ast.T("int")),
			).Returns(ast.T("int")).With(ast.Return(ast.Call(ast.Id("f"), ast.Id("x")))),
			ast.Expr(ast.Call(ast.Id("apply"),
				ast.Lambda([]*ast.Param{ast.P("y", nil)}, ast.Str("s")),
				ast.Int(2))),
		), diagnostics.ErrTypeMismatch, "argument 1 to 'apply'")
	})

	t.Run("function passed by name", func(t *testing.T) {
		expectNoAnalyzerErrors(t, ast.Prog(
			ast.Def("inc", ast.P("n", ast.T("int"))).Returns(ast.T("int")).With(
				ast.Return(ast.Bin("+", ast.Id("n"), ast.Int(1))),
			),
			ast.Def("apply",
				ast.P("f", ast.Callable([]ast.TypeExpr{ast.T("int")}, ast.T("int"))),
				ast.P("x", ast.T("int")),
			).Returns(ast.T("int")).With(ast.Return(ast.Call(ast.Id("f"), ast.Id("x")))),
			ast.Expr(ast.Call(ast.Id("apply"), ast.Id("inc"), ast.Int(2))),
		))
	})

	tests := []struct {
		name   string
		param  string
		ret    string
		reject bool
	}{
		{"wider parameter and narrower result", "float", "bool", false},
		{"exact signature", "int", "int", false},
		{"unrelated parameter", "str", "int", true},
		{"narrower parameter", "bool", "int", true},
		{"wider result", "int", "float", true},
	}
	for _, tt := range tests {
		t.Run("named function with "+tt.name, func(t *testing.T) {
			var result ast.Expression = ast.Int(0)
			switch tt.ret {
			case "bool":
				result = ast.Bool(true)
			case "float":
				result = ast.Float(0.5)
			}
			prog := ast.Prog(
				ast.Def("g", ast.P("x", ast.T(tt.param))).Returns(ast.T(tt.ret)).With(ast.Return(result)),
				ast.Def("apply",
					ast.P("f", ast.Callable([]ast.TypeExpr{ast.T("int")}, ast.T("int"))),
					ast.P("x", ast.T("int")),
				).Returns(ast.T("int")).With(ast.Return(ast.Call(ast.Id("f"), ast.Id("x")))),
				ast.Expr(ast.Call(ast.Id("apply"), ast.Id("g"), ast.Int(2))),
			)
			if !tt.reject {
				expectNoAnalyzerErrors(t, prog)
				return
			}
			want := "argument 1 to 'apply': expected Callable[[int], int], got Callable[[" + tt.param + "], " + tt.ret + "]"
			expectAnalyzerErrorContains(t, prog, diagnostics.ErrTypeMismatch, want)
		})
	}
}

func TestGenericFunctions(t *testing.T) {
	first := ast.Def("first", ast.P("xs", ast.T("list", ast.T("T")))).Generic("T").Returns(ast.T("T")).With(
		ast.Return(ast.Index(ast.Id("xs"), ast.Int(0))),
	)
	call := ast.Call(ast.Id("first"), ast.List(ast.Str("a"), ast.Str("b")))
	results := expectNoAnalyzerErrors(t, ast.Prog(first, ast.Expr(call)))
	if got := results[0].TypeMap[call]; !typesystem.Equal(got, typesystem.Str) {
		t.Errorf("expected first([...str]) to be str, got %v", got)
	}
}
