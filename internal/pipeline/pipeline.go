package pipeline

import "go.uber.org/zap"

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for i, processor := range p.processors {
		if ctx.Context != nil && ctx.Context.Err() != nil {
			ctx.Errors = append(ctx.Errors, ctx.Context.Err())
			return ctx
		}
		ctx = processor.Process(ctx)
		// Continue on errors to collect diagnostics from all stages
		// (e.g. a file that fails to decode does not stop the others).
		ctx.Logger.Debug("stage done", zap.Int("stage", i), zap.Int("errors", len(ctx.Errors)))
	}
	return ctx
}
