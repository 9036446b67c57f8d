package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/mambacheck/internal/config"
)

func appendStage(name string, seen *[]string) Processor {
	return ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
		*seen = append(*seen, name)
		return ctx
	})
}

func TestRunOrder(t *testing.T) {
	var seen []string
	ctx := NewContext(context.Background(), config.Default(), nil)
	New(appendStage("decode", &seen), appendStage("check", &seen), appendStage("report", &seen)).Run(ctx)
	require.Equal(t, []string{"decode", "check", "report"}, seen)
}

func TestRunContinuesAfterStageErrors(t *testing.T) {
	var seen []string
	failing := ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
		ctx.Errors = append(ctx.Errors, errors.New("unreadable"))
		return ctx
	})
	ctx := NewContext(context.Background(), config.Default(), nil)
	out := New(failing, appendStage("report", &seen)).Run(ctx)
	require.Equal(t, []string{"report"}, seen)
	require.Len(t, out.Errors, 1)
	require.False(t, out.Accepted())
}

func TestRunStopsWhenCancelled(t *testing.T) {
	var seen []string
	cctx, cancel := context.WithCancel(context.Background())
	cancelling := ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
		cancel()
		return ctx
	})
	ctx := NewContext(cctx, config.Default(), nil)
	out := New(cancelling, appendStage("check", &seen)).Run(ctx)
	require.Empty(t, seen)
	require.ErrorIs(t, out.Errors[0], context.Canceled)
}

func TestAccepted(t *testing.T) {
	ctx := NewContext(context.Background(), config.Default(), nil)
	require.True(t, ctx.Accepted())
	ctx.Results = []*FileResult{{Accepted: true}, {Accepted: false}}
	require.False(t, ctx.Accepted())
	ctx.Results[1].Accepted = true
	require.True(t, ctx.Accepted())
	require.NotNil(t, ctx.Logger)
}
