package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
)

const shapesTree = `{"body": [
  {"kind": "ClassDef", "pos": [1, 1], "name": "Circle", "body": [
    {"kind": "FunctionDef", "pos": [2, 5], "name": "__init__",
     "params": [{"name": "self"}, {"name": "r", "type": "float"}],
     "body": [
       {"kind": "Assign", "pos": [3, 9],
        "target": {"kind": "Attribute", "object": {"kind": "Name", "name": "self"}, "name": "r"},
        "value": {"kind": "Name", "name": "r"}}
     ]}
  ]}
]}`

const mainTree = `{"body": [
  {"kind": "ImportFrom", "pos": [1, 1], "module": "shapes", "names": [{"name": "Circle"}]},
  {"kind": "Assign", "pos": [2, 1], "target": {"kind": "Name", "name": "c"},
   "value": {"kind": "Call", "callee": {"kind": "Name", "name": "Circle"}, "args": [{"kind": "Float", "value": 1.5}]}},
  {"kind": "Expr", "pos": [3, 1], "value": {"kind": "Attribute", "object": {"kind": "Name", "name": "c"}, "name": "r"}}
]}`

const brokenTree = `{"body": [
  {"kind": "Expr", "pos": [4, 1], "value": {"kind": "Name", "pos": [4, 1], "name": "radius"}}
]}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestUsage(t *testing.T) {
	code, _, stderr := runCLI(t)
	require.Equal(t, exitUsage, code)
	require.Contains(t, stderr, "usage: mambacheck")

	code, _, _ = runCLI(t, "-h")
	require.Equal(t, exitOK, code)

	code, _, _ = runCLI(t, "-no-such-flag", "x")
	require.Equal(t, exitUsage, code)
}

func TestAcceptedProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shapes.mamba.json", shapesTree)
	writeFile(t, dir, "main.mamba.json", mainTree)

	code, stdout, stderr := runCLI(t, dir)
	require.Equal(t, exitOK, code, "stdout:\n%s\nstderr:\n%s", stdout, stderr)
	require.Contains(t, stdout, "Success: no issues found in 2 files")
}

func TestRejectedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.mamba.json", brokenTree)

	code, stdout, _ := runCLI(t, path)
	require.Equal(t, exitRejected, code)
	require.Contains(t, stdout, ":4:1: error: ")
	require.Contains(t, stdout, "[UndefinedSymbolError]")
}

func TestJSONOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shapes.mamba.json", shapesTree)
	writeFile(t, dir, "broken.mamba.json", brokenTree)

	code, stdout, _ := runCLI(t, "-format", "json", dir)
	require.Equal(t, exitRejected, code)

	var doc struct {
		RunID string `json:"run_id"`
		Files []struct {
			Module   string `json:"module"`
			Accepted bool   `json:"accepted"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	require.NotEmpty(t, doc.RunID)
	require.Len(t, doc.Files, 2)
	accepted := map[string]bool{}
	for _, f := range doc.Files {
		accepted[f.Module] = f.Accepted
	}
	require.Equal(t, map[string]bool{"broken": false, "shapes": true}, accepted)
}

func TestLSPOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.mamba.json", brokenTree)

	code, stdout, _ := runCLI(t, "-format", "lsp", path)
	require.Equal(t, exitRejected, code)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], `"method":"textDocument/publishDiagnostics"`)

	writeFile(t, dir, "bad.mamba.json", `{"body": [{"kind": "Goto"}]}`)
	code, stdout, _ = runCLI(t, "-format", "lsp", dir)
	require.Equal(t, exitRejected, code)
	lines = strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], `"method":"window/logMessage"`)
	require.Contains(t, lines[1], `unknown statement kind \"Goto\"`)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.mamba.json", brokenTree)
	cfg := writeFile(t, dir, "mambacheck.toml", "format = \"json\"\nworkers = 2\n")

	code, stdout, _ := runCLI(t, "-config", cfg, path)
	require.Equal(t, exitRejected, code)
	require.True(t, strings.HasPrefix(strings.TrimSpace(stdout), "{"), stdout)

	// Flags win over the file.
	code, stdout, _ = runCLI(t, "-config", cfg, "-format", "text", path)
	require.Equal(t, exitRejected, code)
	require.Contains(t, stdout, "[UndefinedSymbolError]")
}

func TestBadOptions(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.mamba.json", mainTree)

	code, _, stderr := runCLI(t, "-format", "xml", path)
	require.Equal(t, exitUsage, code)
	require.Contains(t, stderr, "unknown output format")

	code, _, _ = runCLI(t, "-workers", "-1", path)
	require.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "-config", filepath.Join(dir, "missing.toml"), path)
	require.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, filepath.Join(dir, "nowhere.mamba.json"))
	require.Equal(t, exitUsage, code)

	code, _, stderr = runCLI(t, t.TempDir())
	require.Equal(t, exitUsage, code)
	require.Contains(t, stderr, "no .mamba.json files found")
}

func TestUndecodableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shapes.mamba.json", shapesTree)
	writeFile(t, dir, "bad.mamba.json", `{"body": [{"kind": "Goto"}]}`)

	code, stdout, _ := runCLI(t, dir)
	require.Equal(t, exitRejected, code)
	require.Contains(t, stdout, `unknown statement kind "Goto"`)
	require.Contains(t, stdout, "1 input could not be checked")
}

func TestResultCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.mamba.json", brokenTree)
	db := filepath.Join(t.TempDir(), "results.db")

	type doc struct {
		Summary struct {
			Errors int `json:"errors"`
			Cached int `json:"cached"`
		} `json:"summary"`
	}
	check := func() doc {
		code, stdout, stderr := runCLI(t, "-cache", db, "-format", "json", path)
		require.Equal(t, exitRejected, code, stderr)
		var d doc
		require.NoError(t, json.Unmarshal([]byte(stdout), &d))
		return d
	}

	first := check()
	require.Equal(t, 1, first.Summary.Errors)
	require.Zero(t, first.Summary.Cached)

	second := check()
	require.Equal(t, 1, second.Summary.Errors)
	require.Equal(t, 1, second.Summary.Cached)
}

func TestCollectSources(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "pkg/b.mamba.json", "{}")
	a := writeFile(t, dir, "pkg/a.mamba.json", "{}")
	writeFile(t, dir, "pkg/notes.txt", "")

	sources, root, err := collectSources([]string{dir, a})
	require.NoError(t, err)
	require.Equal(t, dir, root)
	require.Len(t, sources, 2, "files named twice are read once")
	require.Equal(t, a, sources[0].Path)
	require.Equal(t, b, sources[1].Path)

	_, root, err = collectSources([]string{b})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "pkg"), root)
}

func TestPrintTrees(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "shapes.mamba.json", shapesTree)

	code, stdout, stderr := runCLI(t, "-print", path)
	require.Equal(t, exitOK, code, stderr)
	require.True(t, strings.HasPrefix(stdout, "# shapes ("), stdout)
	require.Contains(t, stdout, "class Circle:\n    def __init__(self, r: float):\n        self.r = r\n")

	writeFile(t, dir, "bad.mamba.json", `{"body": [{"kind": "Goto"}]}`)
	code, _, stderr = runCLI(t, "-print", dir)
	require.Equal(t, exitRejected, code)
	require.Contains(t, stderr, `unknown statement kind "Goto"`)
}
