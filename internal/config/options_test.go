package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseKeepsDefaults(t *testing.T) {
	opts, err := Parse([]byte(`workers = 3`))
	require.NoError(t, err)
	require.Equal(t, 3, opts.Workers)
	require.True(t, opts.StrictOptional)
	require.Equal(t, FormatText, opts.Format)
}

func TestParseAllKeys(t *testing.T) {
	src := `
workers = 2
warn_uncaught_raises = true
strict_optional = false
format = "lsp"

[cache]
path = ".mambacheck/cache.db"

[catalog]
extra = ["stubs/numpy.yaml", "stubs/extra.yaml"]
`
	opts, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Equal(t, 2, opts.Workers)
	require.True(t, opts.WarnUncaughtRaises)
	require.False(t, opts.StrictOptional)
	require.Equal(t, FormatLSP, opts.Format)
	require.Equal(t, ".mambacheck/cache.db", opts.Cache.Path)
	require.Equal(t, []string{"stubs/numpy.yaml", "stubs/extra.yaml"}, opts.Catalog.Extra)
}

func TestParseRejectsBadValues(t *testing.T) {
	_, err := Parse([]byte(`format = "xml"`))
	require.Error(t, err)

	_, err = Parse([]byte(`workers = -1`))
	require.Error(t, err)

	_, err = Parse([]byte(`workers = "many"`))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	opts, err := Load(filepath.Join(dir, ConfigFileName), true)
	require.NoError(t, err)
	require.Equal(t, Default(), opts)

	_, err = Load(filepath.Join(dir, ConfigFileName), false)
	require.Error(t, err)

	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("warn_uncaught_raises = true\n"), 0644))
	opts, err = Load(path, false)
	require.NoError(t, err)
	require.True(t, opts.WarnUncaughtRaises)
}

func TestEffectiveWorkers(t *testing.T) {
	require.Equal(t, 4, Options{Workers: 4}.EffectiveWorkers())
	require.Greater(t, Options{}.EffectiveWorkers(), 0)
}
