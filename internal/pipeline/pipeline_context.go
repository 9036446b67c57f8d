package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/catalog"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// Source is one input file as read from disk (or handed in by a caller).
type Source struct {
	Path string
	Data []byte
}

// FileResult is what the pipeline reports for one checked module.
type FileResult struct {
	File        string
	Module      string
	Diagnostics []*diagnostics.DiagnosticError
	TypeMap     map[ast.Node]typesystem.Type
	Accepted    bool
	// Cached is set when the result was served from the result cache; the
	// type map is not cached and is nil in that case.
	Cached bool
}

// PipelineContext carries the state of one checking run between stages.
type PipelineContext struct {
	Context context.Context
	Options config.Options
	Logger  *zap.Logger
	Catalog *catalog.Catalog

	// Root is the directory module names are derived from.
	Root     string
	Sources  []Source
	Programs []*ast.Program
	Results  []*FileResult

	// CacheKey identifies the inputs of this run in the result cache.
	CacheKey string

	// Errors are failures of the stages themselves (unreadable files, a
	// broken cache), not checker diagnostics.
	Errors []error
}

func NewContext(ctx context.Context, opts config.Options, logger *zap.Logger) *PipelineContext {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipelineContext{Context: ctx, Options: opts, Logger: logger}
}

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx *PipelineContext) *PipelineContext

func (f ProcessorFunc) Process(ctx *PipelineContext) *PipelineContext { return f(ctx) }

// Accepted reports whether every checked module was accepted and no stage
// failed.
func (c *PipelineContext) Accepted() bool {
	if len(c.Errors) > 0 {
		return false
	}
	for _, r := range c.Results {
		if !r.Accepted {
			return false
		}
	}
	return true
}
