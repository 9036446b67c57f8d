package report

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/pipeline"
	"github.com/funvibe/mambacheck/internal/token"
)

func results() []*pipeline.FileResult {
	return []*pipeline.FileResult{
		{File: "main.mamba", Module: "main", Accepted: true},
		{
			File:   "shapes.mamba",
			Module: "shapes",
			Diagnostics: []*diagnostics.DiagnosticError{
				{
					Code:     diagnostics.ErrUndefinedSymbol,
					Severity: diagnostics.SeverityError,
					Token:    token.Token{Lexeme: "radius", Line: 4, Column: 9},
					File:     "shapes.mamba",
					Message:  "undefined name 'radius'",
				},
				{
					Code:     diagnostics.ErrUninferredAttributeType,
					Severity: diagnostics.SeverityWarning,
					Token:    token.Token{Lexeme: "=", Line: 2, Column: 5, EndLine: 2, EndColumn: 20},
					Message:  "cannot infer the type of attribute 'items'",
				},
			},
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(results())
	require.Equal(t, Summary{Files: 2, Rejected: 1, Errors: 1, Warnings: 1}, s)
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	for _, format := range []string{config.FormatText, config.FormatJSON, config.FormatLSP, ""} {
		r, err := New(format, &buf)
		require.NoError(t, err, format)
		require.NotNil(t, r)
	}
	_, err := New("xml", &buf)
	require.Error(t, err)

	// A buffer is never a terminal.
	r, _ := New(config.FormatText, &buf)
	require.False(t, r.(*TextReporter).Color)
}

func TestTextReporter(t *testing.T) {
	var buf bytes.Buffer
	err := (&TextReporter{}).Report(&buf, results(), nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, []string{
		"shapes.mamba:4:9: error: undefined name 'radius' [UndefinedSymbolError]",
		"shapes.mamba:2:5: warning: cannot infer the type of attribute 'items' [UninferredAttributeTypeWarning]",
		"Found 1 error in 1 file (checked 2 files)",
	}, lines)
}

func TestTextReporterSuccess(t *testing.T) {
	var buf bytes.Buffer
	ok := []*pipeline.FileResult{{File: "main.mamba", Accepted: true}}
	require.NoError(t, (&TextReporter{}).Report(&buf, ok, nil))
	require.Equal(t, "Success: no issues found in 1 file\n", buf.String())
}

func TestTextReporterFailures(t *testing.T) {
	var buf bytes.Buffer
	err := (&TextReporter{}).Report(&buf, nil, []error{errors.New("reading syntax tree: missing.json")})
	require.NoError(t, err)
	out := buf.String()
	require.Contains(t, out, "error: reading syntax tree: missing.json")
	require.Contains(t, out, "1 input could not be checked")
}

func TestTextReporterColor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextReporter{Color: true}).Report(&buf, results(), nil))
	require.Contains(t, buf.String(), ansiRed+"error"+ansiReset)
	require.Contains(t, buf.String(), ansiYellow+"warning"+ansiReset)
}

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	jr := NewJSONReporter()
	require.NoError(t, jr.Report(&buf, results(), []error{errors.New("boom")}))

	var doc jsonDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	_, err := uuid.Parse(doc.RunID)
	require.NoError(t, err)
	require.Equal(t, jr.RunID.String(), doc.RunID)
	require.Equal(t, []string{"boom"}, doc.Failures)
	require.Equal(t, 1, doc.Summary.Errors)
	require.Len(t, doc.Files, 2)
	require.True(t, doc.Files[0].Accepted)
	require.NotNil(t, doc.Files[0].Diagnostics)
	require.Empty(t, doc.Files[0].Diagnostics)

	d := doc.Files[1].Diagnostics[0]
	require.Equal(t, "UndefinedSymbolError", d.Code)
	require.Equal(t, "error", d.Severity)
	require.Equal(t, 4, d.Line)
	require.Equal(t, 9, d.Column)
}

func TestJSONReporterRunIDsDiffer(t *testing.T) {
	require.NotEqual(t, NewJSONReporter().RunID, NewJSONReporter().RunID)
}

func TestToLSP(t *testing.T) {
	rs := results()
	d := ToLSP(rs[1].Diagnostics[0])
	require.Equal(t, protocol.Position{Line: 3, Character: 8}, d.Range.Start)
	require.Equal(t, protocol.Position{Line: 3, Character: 14}, d.Range.End)
	require.Equal(t, protocol.DiagnosticSeverityError, d.Severity)
	require.Equal(t, "mambacheck", d.Source)

	w := ToLSP(rs[1].Diagnostics[1])
	require.Equal(t, protocol.Position{Line: 1, Character: 19}, w.Range.End)
	require.Equal(t, protocol.DiagnosticSeverityWarning, w.Severity)
}

func TestLSPReporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&LSPReporter{}).Report(&buf, results(), nil))

	var lines []string
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.Equal(t, "2.0", first["jsonrpc"])
	require.Equal(t, "textDocument/publishDiagnostics", first["method"])
	params := first["params"].(map[string]interface{})
	require.True(t, strings.HasPrefix(params["uri"].(string), "file://"))
	require.True(t, strings.HasSuffix(params["uri"].(string), "/main.mamba"))
	// Clean files still publish an empty list.
	require.Equal(t, []interface{}{}, params["diagnostics"])
}

func TestLSPReporterFailures(t *testing.T) {
	var buf bytes.Buffer
	failure := errors.New("reading syntax tree bad.mamba.json: unknown statement kind \"Goto\"")
	require.NoError(t, (&LSPReporter{}).Report(&buf, results()[:1], []error{failure}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var msg struct {
		Method string `json:"method"`
		Params struct {
			Type    int    `json:"type"`
			Message string `json:"message"`
		} `json:"params"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &msg))
	require.Equal(t, "window/logMessage", msg.Method)
	require.Equal(t, int(protocol.MessageTypeError), msg.Params.Type)
	require.Equal(t, failure.Error(), msg.Params.Message)
}

func TestReportProcessor(t *testing.T) {
	var buf bytes.Buffer
	ctx := pipeline.NewContext(context.Background(), config.Default(), nil)
	ctx.Results = results()
	out := (&ReportProcessor{Reporter: &TextReporter{}, Writer: &buf}).Process(ctx)
	require.Empty(t, out.Errors)
	require.Contains(t, buf.String(), "Found 1 error")
}
