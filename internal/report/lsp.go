package report

import (
	"io"
	"path/filepath"

	"github.com/segmentio/encoding/json"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/pipeline"
)

// diagnosticSource names the checker in editor diagnostics.
const diagnosticSource = "mambacheck"

// LSPReporter writes one textDocument/publishDiagnostics notification per
// file, one JSON object per line, so an editor bridge can forward them
// unchanged. Files without findings get an empty list, which clears stale
// diagnostics in the editor. Inputs that could not be checked have no
// document to attach to and are sent as window/logMessage errors.
type LSPReporter struct{}

type notification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

func (lr *LSPReporter) Report(w io.Writer, results []*pipeline.FileResult, failures []error) error {
	enc := json.NewEncoder(w)
	for _, r := range results {
		n := notification{
			JSONRPC: "2.0",
			Method:  protocol.MethodTextDocumentPublishDiagnostics,
			Params:  PublishParams(r),
		}
		if err := enc.Encode(n); err != nil {
			return err
		}
	}
	for _, err := range failures {
		n := notification{
			JSONRPC: "2.0",
			Method:  protocol.MethodWindowLogMessage,
			Params: protocol.LogMessageParams{
				Type:    protocol.MessageTypeError,
				Message: err.Error(),
			},
		}
		if err := enc.Encode(n); err != nil {
			return err
		}
	}
	return nil
}

// PublishParams converts the diagnostics of one file.
func PublishParams(r *pipeline.FileResult) protocol.PublishDiagnosticsParams {
	path := r.File
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	params := protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(uri.File(path)),
		Diagnostics: make([]protocol.Diagnostic, 0, len(r.Diagnostics)),
	}
	for _, d := range r.Diagnostics {
		params.Diagnostics = append(params.Diagnostics, ToLSP(d))
	}
	return params
}

// ToLSP converts a diagnostic. LSP positions are zero-based; a diagnostic
// without an end position covers its lexeme.
func ToLSP(d *diagnostics.DiagnosticError) protocol.Diagnostic {
	start := protocol.Position{
		Line:      zeroBased(d.Token.Line),
		Character: zeroBased(d.Token.Column),
	}
	end := start
	switch {
	case d.Token.EndLine > 0:
		end = protocol.Position{
			Line:      zeroBased(d.Token.EndLine),
			Character: zeroBased(d.Token.EndColumn),
		}
	case len(d.Token.Lexeme) > 0:
		end.Character = start.Character + uint32(len(d.Token.Lexeme))
	}
	severity := protocol.DiagnosticSeverityError
	switch d.Severity {
	case diagnostics.SeverityWarning:
		severity = protocol.DiagnosticSeverityWarning
	case diagnostics.SeverityNote:
		severity = protocol.DiagnosticSeverityInformation
	}
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: severity,
		Code:     string(d.Code),
		Source:   diagnosticSource,
		Message:  d.Message,
	}
}

func zeroBased(n int) uint32 {
	if n <= 0 {
		return 0
	}
	return uint32(n - 1)
}
