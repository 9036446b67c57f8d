package cache

import (
	"context"

	"go.uber.org/zap"

	"github.com/funvibe/mambacheck/internal/pipeline"
)

// runsKept bounds the number of runs kept in the database.
const runsKept = 32

// LookupProcessor answers the run from the cache when its inputs are
// unchanged. Runs with unreadable inputs are never cached.
type LookupProcessor struct {
	Cache *Cache
}

func (lp *LookupProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if len(ctx.Errors) > 0 || len(ctx.Programs) == 0 {
		return ctx
	}
	key, err := Key(ctx.Sources, ctx.Options, ctx.Catalog)
	if err != nil {
		ctx.Logger.Warn("cache disabled for this run", zap.Error(err))
		return ctx
	}
	ctx.CacheKey = key
	results, ok, err := lp.Cache.Lookup(runContext(ctx), key)
	if err != nil {
		// A broken cache only costs a re-check.
		ctx.Logger.Warn("cache lookup failed", zap.Error(err))
		return ctx
	}
	if ok {
		ctx.Logger.Debug("cache hit", zap.String("key", key[:12]), zap.Int("files", len(results)))
		ctx.Results = results
	}
	return ctx
}

// StoreProcessor saves freshly computed results under the run key.
type StoreProcessor struct {
	Cache *Cache
}

func (sp *StoreProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.CacheKey == "" || len(ctx.Errors) > 0 || len(ctx.Results) == 0 || ctx.Results[0].Cached {
		return ctx
	}
	run := runContext(ctx)
	if err := sp.Cache.Store(run, ctx.CacheKey, ctx.Results); err != nil {
		ctx.Logger.Warn("cache store failed", zap.Error(err))
		return ctx
	}
	if err := sp.Cache.Prune(run, runsKept); err != nil {
		ctx.Logger.Warn("cache prune failed", zap.Error(err))
	}
	return ctx
}

func runContext(ctx *pipeline.PipelineContext) context.Context {
	if ctx.Context != nil {
		return ctx.Context
	}
	return context.Background()
}
