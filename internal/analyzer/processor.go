package analyzer

import (
	"context"
	"fmt"

	"github.com/funvibe/mambacheck/internal/pipeline"
)

// SemanticAnalyzerProcessor runs a Session over the decoded programs of the
// pipeline. It does nothing when an earlier stage already produced results.
type SemanticAnalyzerProcessor struct{}

func (sap *SemanticAnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Results != nil || len(ctx.Programs) == 0 {
		return ctx
	}
	session, err := NewSession(ctx.Catalog, ctx.Options, ctx.Logger)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	run := ctx.Context
	if run == nil {
		run = context.Background()
	}
	results, err := session.Check(run, ctx.Programs)
	if err != nil {
		ctx.Errors = append(ctx.Errors, fmt.Errorf("checking: %w", err))
		return ctx
	}
	ctx.Results = make([]*pipeline.FileResult, len(results))
	for i, r := range results {
		ctx.Results[i] = &pipeline.FileResult{
			File:        r.File,
			Module:      r.Module,
			Diagnostics: r.Diagnostics,
			TypeMap:     r.TypeMap,
			Accepted:    r.Accepted,
		}
	}
	return ctx
}
