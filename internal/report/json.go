package report

import (
	"io"

	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"

	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/pipeline"
)

// JSONReporter writes the whole run as one JSON document. Every document
// carries a fresh run id so that tools collecting reports can tell runs
// apart.
type JSONReporter struct {
	RunID uuid.UUID
}

func NewJSONReporter() *JSONReporter {
	return &JSONReporter{RunID: uuid.New()}
}

type jsonDocument struct {
	RunID    string     `json:"run_id"`
	Summary  Summary    `json:"summary"`
	Files    []jsonFile `json:"files"`
	Failures []string   `json:"failures,omitempty"`
}

type jsonFile struct {
	File        string           `json:"file"`
	Module      string           `json:"module"`
	Accepted    bool             `json:"accepted"`
	Cached      bool             `json:"cached,omitempty"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

type jsonDiagnostic struct {
	Code      string `json:"code"`
	Severity  string `json:"severity"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"end_line,omitempty"`
	EndColumn int    `json:"end_column,omitempty"`
	Message   string `json:"message"`
}

func (jr *JSONReporter) Report(w io.Writer, results []*pipeline.FileResult, failures []error) error {
	doc := jsonDocument{
		RunID:   jr.RunID.String(),
		Summary: Summarize(results),
		Files:   make([]jsonFile, 0, len(results)),
	}
	for _, err := range failures {
		doc.Failures = append(doc.Failures, err.Error())
	}
	for _, r := range results {
		f := jsonFile{
			File:        r.File,
			Module:      r.Module,
			Accepted:    r.Accepted,
			Cached:      r.Cached,
			Diagnostics: make([]jsonDiagnostic, 0, len(r.Diagnostics)),
		}
		for _, d := range r.Diagnostics {
			f.Diagnostics = append(f.Diagnostics, toJSON(d))
		}
		doc.Files = append(doc.Files, f)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func toJSON(d *diagnostics.DiagnosticError) jsonDiagnostic {
	return jsonDiagnostic{
		Code:      string(d.Code),
		Severity:  d.Severity.String(),
		Line:      d.Token.Line,
		Column:    d.Token.Column,
		EndLine:   d.Token.EndLine,
		EndColumn: d.Token.EndColumn,
		Message:   d.Message,
	}
}
