package analyzer

import (
	"strings"
	"testing"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

func shapesModule() *ast.Program {
	return ast.NewProgram("shapes.mamba", "shapes",
		ast.Class("Circle").With(
			ast.Def("__init__", ast.Self(), ast.P("r", ast.T("float"))).With(
				ast.Assign(ast.Attr(ast.Id("self"), "r"), ast.Id("r")),
			),
		),
		ast.Annotated(ast.Id("UNIT"), ast.T("float"), ast.Float(1.0)),
	)
}

func TestImportedNames(t *testing.T) {
	radius := ast.Attr(ast.Id("c"), "r")
	main := ast.NewProgram("main.mamba", "main",
		ast.Import("shapes", "Circle", "UNIT"),
		ast.Assign(ast.Id("c"), ast.Call(ast.Id("Circle"), ast.Id("UNIT"))),
		ast.Expr(radius),
	)
	// main comes first; its module-level code still sees UNIT typed.
	results := expectNoAnalyzerErrors(t, main, shapesModule())
	if results[0].Module != "main" || results[1].Module != "shapes" {
		t.Fatalf("results out of order: %s, %s", results[0].Module, results[1].Module)
	}
	if got := results[0].TypeMap[radius]; !typesystem.Equal(got, typesystem.Float) {
		t.Errorf("expected c.r to be float, got %v", got)
	}
}

func TestImportAlias(t *testing.T) {
	main := ast.NewProgram("main.mamba", "main",
		ast.ImportAs("shapes", "Circle", "Round"),
		ast.Def("make").Returns(ast.T("Round")).With(
			ast.Return(ast.Call(ast.Id("Round"), ast.Float(2.0))),
		),
	)
	expectNoAnalyzerErrors(t, main, shapesModule())
}

func TestImportErrors(t *testing.T) {
	tests := []struct {
		name   string
		main   *ast.Program
		code   diagnostics.ErrorCode
		substr string
	}{
		{
			name:   "unknown name",
			main:   ast.NewProgram("main.mamba", "main", ast.Import("shapes", "Square")),
			code:   diagnostics.ErrUndefinedSymbol,
			substr: "cannot import name 'Square' from 'shapes'",
		},
		{
			name:   "unknown module",
			main:   ast.NewProgram("main.mamba", "main", ast.Import("nowhere", "X")),
			code:   diagnostics.ErrUndefinedSymbol,
			substr: "no module named 'nowhere'",
		},
		{
			name: "import shadows a local definition",
			main: ast.NewProgram("main.mamba", "main",
				ast.Import("shapes", "UNIT"),
				ast.Annotated(ast.Id("UNIT"), ast.T("int"), ast.Int(1)),
			),
			code:   diagnostics.ErrDuplicateDefinition,
			substr: "'UNIT' is already defined",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := checkModules(t, config.Default(), tt.main, shapesModule())
			for _, d := range results[0].Diagnostics {
				if d.Code == tt.code && strings.Contains(d.Message, tt.substr) {
					return
				}
			}
			t.Fatalf("expected %s containing %q, got:\n%s", tt.code, tt.substr, describe(allDiagnostics(results)))
		})
	}
}

func TestClassDefinedInTwoModules(t *testing.T) {
	a := ast.NewProgram("a.mamba", "a", ast.Class("Foo").With(ast.Pass()))
	b := ast.NewProgram("b.mamba", "b", ast.Class("Foo").With(ast.Pass()))
	results := checkModules(t, config.Default(), a, b)
	if !results[0].Accepted {
		t.Fatalf("first definition should be accepted:\n%s", describe(results[0].Diagnostics))
	}
	if results[1].Accepted {
		t.Fatalf("second definition should be rejected")
	}
	d := expectCode(t, results[1:], diagnostics.ErrDuplicateDefinition)
	if !strings.Contains(d.Message, "class 'Foo' is already defined in module 'a'") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestModuleNameFromFile(t *testing.T) {
	prog := ast.NewProgram("pkg/util.mamba", "", ast.Expr(ast.Int(1)))
	results := expectNoAnalyzerErrors(t, prog)
	if results[0].Module == "" {
		t.Fatalf("expected a module name derived from the file")
	}
}
