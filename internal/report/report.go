// Package report renders checking results for people and tools: plain or
// colored text, a JSON document, or LSP publishDiagnostics notifications.
package report

import (
	"fmt"
	"io"

	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/pipeline"
)

// Reporter writes the outcome of one run. failures are stage errors such as
// unreadable files; they are reported next to the diagnostics.
type Reporter interface {
	Report(w io.Writer, results []*pipeline.FileResult, failures []error) error
}

// New returns the reporter for an output format. Text output is colored
// when w is a terminal.
func New(format string, w io.Writer) (Reporter, error) {
	switch format {
	case config.FormatText, "":
		return &TextReporter{Color: ColorEnabled(w)}, nil
	case config.FormatJSON:
		return NewJSONReporter(), nil
	case config.FormatLSP:
		return &LSPReporter{}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// Summary counts the findings of a run.
type Summary struct {
	Files    int `json:"files"`
	Rejected int `json:"rejected"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Cached   int `json:"cached"`
}

func Summarize(results []*pipeline.FileResult) Summary {
	s := Summary{Files: len(results)}
	for _, r := range results {
		if !r.Accepted {
			s.Rejected++
		}
		if r.Cached {
			s.Cached++
		}
		for _, d := range r.Diagnostics {
			if d.IsError() {
				s.Errors++
			} else {
				s.Warnings++
			}
		}
	}
	return s
}
