package analyzer

import (
	"context"
	"testing"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/pipeline"
)

func TestSemanticAnalyzerProcessor(t *testing.T) {
	ctx := pipeline.NewContext(context.Background(), config.Default(), nil)
	ctx.Programs = []*ast.Program{
		ast.Prog(ast.Expr(ast.Id("missing"))),
	}
	out := pipeline.New(&SemanticAnalyzerProcessor{}).Run(ctx)
	if len(out.Errors) != 0 {
		t.Fatalf("unexpected stage errors: %v", out.Errors)
	}
	if len(out.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out.Results))
	}
	if out.Results[0].Accepted || out.Accepted() {
		t.Fatalf("program with an undefined name was accepted")
	}
	if len(out.Results[0].Diagnostics) == 0 {
		t.Fatalf("expected diagnostics")
	}
}

func TestSemanticAnalyzerProcessorKeepsCachedResults(t *testing.T) {
	ctx := pipeline.NewContext(context.Background(), config.Default(), nil)
	cached := []*pipeline.FileResult{{File: "main.mamba", Module: "main", Accepted: true, Cached: true}}
	ctx.Results = cached
	ctx.Programs = []*ast.Program{ast.Prog(ast.Expr(ast.Id("missing")))}
	out := (&SemanticAnalyzerProcessor{}).Process(ctx)
	if len(out.Results) != 1 || !out.Results[0].Cached {
		t.Fatalf("cached results were replaced")
	}
}

func TestSemanticAnalyzerProcessorRejectsBadOptions(t *testing.T) {
	opts := config.Default()
	opts.Workers = -1
	ctx := pipeline.NewContext(context.Background(), opts, nil)
	ctx.Programs = []*ast.Program{ast.Prog(ast.Pass())}
	out := (&SemanticAnalyzerProcessor{}).Process(ctx)
	if len(out.Errors) == 0 {
		t.Fatalf("expected an options error")
	}
	if out.Accepted() {
		t.Fatalf("a failed stage must not be accepted")
	}
}
