package diagnostics

import "fmt"

// Collector is an append-only diagnostic sink owned by a single worker.
// Duplicate reports at the same position with the same code and message are
// dropped, so re-visiting a node during error recovery does not double-report.
type Collector struct {
	file  string
	seen  map[string]bool
	items []*DiagnosticError
}

func NewCollector(file string) *Collector {
	return &Collector{file: file, seen: make(map[string]bool)}
}

func (c *Collector) Add(err *DiagnosticError) {
	if err == nil {
		return
	}
	if err.File == "" {
		err.File = c.file
	}
	key := fmt.Sprintf("%d:%d:%s:%s", err.Token.Line, err.Token.Column, err.Code, err.Message)
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	c.items = append(c.items, err)
}

func (c *Collector) AddAll(errs []*DiagnosticError) {
	for _, err := range errs {
		c.Add(err)
	}
}

func (c *Collector) Len() int {
	return len(c.items)
}

// Items returns the collected diagnostics in emission order.
func (c *Collector) Items() []*DiagnosticError {
	out := make([]*DiagnosticError, len(c.items))
	copy(out, c.items)
	return out
}

// Merge concatenates the per-worker lists and orders the result by file and
// source position.
func Merge(parts ...[]*DiagnosticError) []*DiagnosticError {
	var out []*DiagnosticError
	for _, p := range parts {
		out = append(out, p...)
	}
	Sort(out)
	return out
}
