package astio

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/funvibe/mambacheck/internal/pipeline"
	"github.com/funvibe/mambacheck/internal/utils"
)

// DecodeProcessor turns the pipeline sources into programs. Sources without
// data are read from disk first. A file that fails to decode is reported
// and left out; the remaining files are still checked.
type DecodeProcessor struct{}

func (dp *DecodeProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	for i := range ctx.Sources {
		src := &ctx.Sources[i]
		if src.Data == nil {
			data, err := os.ReadFile(src.Path)
			if err != nil {
				ctx.Errors = append(ctx.Errors, fmt.Errorf("reading syntax tree: %w", err))
				continue
			}
			src.Data = data
		}
		prog, err := Decode(src.Data, src.Path)
		if err != nil {
			ctx.Errors = append(ctx.Errors, err)
			continue
		}
		if prog.Module == "" {
			root := ctx.Root
			if root == "" {
				root = utils.GetModuleDir(src.Path)
			}
			prog.Module = utils.DottedModuleName(root, src.Path)
		}
		ctx.Logger.Debug("decoded",
			zap.String("file", prog.File),
			zap.String("module", prog.Module),
			zap.Int("statements", len(prog.Statements)))
		ctx.Programs = append(ctx.Programs, prog)
	}
	return ctx
}
