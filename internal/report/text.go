package report

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize/english"
	"github.com/mattn/go-isatty"

	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/pipeline"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiGreen  = "\033[32m"
)

// ColorEnabled reports whether w is a terminal that should get ANSI colors.
// NO_COLOR and TERM=dumb turn colors off.
func ColorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// TextReporter prints one line per diagnostic in the file:line:col form
// editors understand, followed by a summary.
type TextReporter struct {
	Color bool
}

func (tr *TextReporter) paint(code, s string) string {
	if !tr.Color {
		return s
	}
	return code + s + ansiReset
}

func (tr *TextReporter) Report(w io.Writer, results []*pipeline.FileResult, failures []error) error {
	for _, err := range failures {
		if _, err := fmt.Fprintf(w, "%s %v\n", tr.paint(ansiBold+ansiRed, "error:"), err); err != nil {
			return err
		}
	}
	for _, r := range results {
		for _, d := range r.Diagnostics {
			if _, err := fmt.Fprintln(w, tr.line(r, d)); err != nil {
				return err
			}
		}
	}
	s := Summarize(results)
	_, err := fmt.Fprintln(w, tr.summary(s, len(failures)))
	return err
}

func (tr *TextReporter) line(r *pipeline.FileResult, d *diagnostics.DiagnosticError) string {
	file := d.File
	if file == "" {
		file = r.File
	}
	loc := tr.paint(ansiBold, fmt.Sprintf("%s:%d:%d:", file, d.Token.Line, d.Token.Column))
	sev := d.Severity.String()
	switch d.Severity {
	case diagnostics.SeverityError:
		sev = tr.paint(ansiRed, sev)
	case diagnostics.SeverityWarning:
		sev = tr.paint(ansiYellow, sev)
	}
	return fmt.Sprintf("%s %s: %s %s", loc, sev, d.Message, tr.paint(ansiCyan, "["+string(d.Code)+"]"))
}

func (tr *TextReporter) summary(s Summary, failures int) string {
	checked := english.Plural(s.Files, "file", "files")
	if s.Errors == 0 && failures == 0 {
		msg := "Success: no issues found in " + checked
		if s.Warnings > 0 {
			msg += " (" + english.Plural(s.Warnings, "warning", "warnings") + ")"
		}
		return tr.paint(ansiGreen, msg)
	}
	msg := fmt.Sprintf("Found %s in %s (checked %s)",
		english.Plural(s.Errors, "error", "errors"),
		english.Plural(s.Rejected, "file", "files"),
		checked)
	if failures > 0 {
		msg += "; " + english.Plural(failures, "input", "inputs") + " could not be checked"
	}
	return tr.paint(ansiRed, msg)
}
