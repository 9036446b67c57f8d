package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/catalog"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/pipeline"
	"github.com/funvibe/mambacheck/internal/token"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleResults() []*pipeline.FileResult {
	tok := token.Token{Lexeme: "x", Line: 3, Column: 5, EndLine: 3, EndColumn: 6}
	return []*pipeline.FileResult{
		{File: "main.mamba", Module: "main", Accepted: true},
		{
			File:     "shapes.mamba",
			Module:   "shapes",
			Accepted: false,
			Diagnostics: []*diagnostics.DiagnosticError{
				{Code: diagnostics.ErrUndefinedSymbol, Severity: diagnostics.SeverityError, Token: tok, File: "shapes.mamba", Message: "undefined name 'x'"},
				{Code: diagnostics.ErrUncaughtRaise, Severity: diagnostics.SeverityWarning, Token: tok, File: "shapes.mamba", Message: "ValueError may escape"},
			},
		},
	}
}

func TestStoreAndLookup(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()

	_, ok, err := c.Lookup(ctx, "k1")
	require.NoError(t, err)
	require.False(t, ok)

	want := sampleResults()
	require.NoError(t, c.Store(ctx, "k1", want))

	got, ok, err := c.Lookup(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	for i := range want {
		require.Equal(t, want[i].File, got[i].File)
		require.Equal(t, want[i].Module, got[i].Module)
		require.Equal(t, want[i].Accepted, got[i].Accepted)
		require.True(t, got[i].Cached)
	}
	require.Empty(t, got[0].Diagnostics)
	require.Equal(t, want[1].Diagnostics, got[1].Diagnostics)
}

func TestStoreReplacesEntry(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()
	require.NoError(t, c.Store(ctx, "k", sampleResults()))
	require.NoError(t, c.Store(ctx, "k", sampleResults()[:1]))

	got, ok, err := c.Lookup(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
}

func TestEmptyRunIsCached(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()
	require.NoError(t, c.Store(ctx, "empty", nil))

	got, ok, err := c.Lookup(ctx, "empty")
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, got)
}

func TestPrune(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()
	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, c.Store(ctx, key, sampleResults()))
	}
	require.NoError(t, c.Prune(ctx, 1))

	_, ok, err := c.Lookup(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = c.Lookup(ctx, "c")
	require.NoError(t, err)
	require.True(t, ok)
}

func builtins(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Builtin()
	require.NoError(t, err)
	return cat
}

func TestKey(t *testing.T) {
	cat := builtins(t)
	a := pipeline.Source{Path: "a.mamba.json", Data: []byte(`{"body": []}`)}
	b := pipeline.Source{Path: "b.mamba.json", Data: []byte(`{"body": [{"kind": "Pass"}]}`)}
	opts := config.Default()

	k1, err := Key([]pipeline.Source{a, b}, opts, cat)
	require.NoError(t, err)
	k2, err := Key([]pipeline.Source{b, a}, opts, cat)
	require.NoError(t, err)
	require.Equal(t, k1, k2, "key must not depend on argument order")
	require.Len(t, k1, 64)

	changed := b
	changed.Data = []byte(`{"body": []}`)
	k3, err := Key([]pipeline.Source{a, changed}, opts, cat)
	require.NoError(t, err)
	require.NotEqual(t, k1, k3)

	loose := opts
	loose.StrictOptional = false
	k4, err := Key([]pipeline.Source{a, b}, loose, cat)
	require.NoError(t, err)
	require.NotEqual(t, k1, k4)

	// Worker count does not change results, so it does not change the key.
	busy := opts
	busy.Workers = 8
	k5, err := Key([]pipeline.Source{a, b}, busy, cat)
	require.NoError(t, err)
	require.Equal(t, k1, k5)
}

func TestProcessorsRoundTrip(t *testing.T) {
	c := openTemp(t)
	cat := builtins(t)
	newCtx := func() *pipeline.PipelineContext {
		ctx := pipeline.NewContext(context.Background(), config.Default(), nil)
		ctx.Catalog = cat
		ctx.Sources = []pipeline.Source{{Path: "main.mamba.json", Data: []byte(`{"body": []}`)}}
		ctx.Programs = []*ast.Program{ast.Prog(ast.Pass())}
		return ctx
	}

	first := (&LookupProcessor{Cache: c}).Process(newCtx())
	require.NotEmpty(t, first.CacheKey)
	require.Empty(t, first.Results)

	first.Results = sampleResults()
	(&StoreProcessor{Cache: c}).Process(first)

	second := (&LookupProcessor{Cache: c}).Process(newCtx())
	require.Equal(t, first.CacheKey, second.CacheKey)
	require.Len(t, second.Results, 2)
	require.True(t, second.Results[0].Cached)
}

func TestLookupSkipsFailedRuns(t *testing.T) {
	c := openTemp(t)
	ctx := pipeline.NewContext(context.Background(), config.Default(), nil)
	ctx.Programs = []*ast.Program{ast.Prog(ast.Pass())}
	ctx.Errors = append(ctx.Errors, context.Canceled)
	out := (&LookupProcessor{Cache: c}).Process(ctx)
	require.Empty(t, out.CacheKey)
}
