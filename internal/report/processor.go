package report

import (
	"fmt"
	"io"

	"github.com/funvibe/mambacheck/internal/pipeline"
)

// ReportProcessor is the last pipeline stage: it writes results and stage
// failures with the configured reporter.
type ReportProcessor struct {
	Reporter Reporter
	Writer   io.Writer
}

func (rp *ReportProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if err := rp.Reporter.Report(rp.Writer, ctx.Results, ctx.Errors); err != nil {
		ctx.Errors = append(ctx.Errors, fmt.Errorf("writing report: %w", err))
	}
	return ctx
}
