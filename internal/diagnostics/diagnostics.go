// Package diagnostics collects the non-fatal error taxonomy the analyzer
// surfaces alongside its graph (§7). The core never logs; it returns
// diagnostics as structured data for callers to log, store, or ignore.
package diagnostics

import "fmt"

// Kind is one of the four diagnostic kinds in the error taxonomy (§7).
type Kind string

const (
	ParseError      Kind = "ParseError"
	DuplicateSymbol Kind = "DuplicateSymbol"
	UnresolvedRef   Kind = "UnresolvedReference"
	MalformedSpan   Kind = "MalformedSpan"
)

// Diagnostic is a single accumulated error-taxonomy entry.
type Diagnostic struct {
	Kind     Kind   `json:"kind"`
	FilePath string `json:"file_path,omitempty"`
	Message  string `json:"message"`
}

func (d Diagnostic) Error() string {
	if d.FilePath != "" {
		return fmt.Sprintf("%s: %s: %s", d.Kind, d.FilePath, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Collector accumulates diagnostics across every stage of the pipeline.
// It is not safe for concurrent use by itself; callers running stage
// A/B per-file concurrently must guard it (see internal/pipeline).
type Collector struct {
	items []Diagnostic
}

// New returns an empty Collector.
func New() *Collector {
	return &Collector{}
}

func (c *Collector) Add(kind Kind, filePath, format string, args ...any) {
	c.items = append(c.items, Diagnostic{
		Kind:     kind,
		FilePath: filePath,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Items returns every diagnostic accumulated so far, in emission order.
func (c *Collector) Items() []Diagnostic {
	return c.items
}

// Len reports how many diagnostics have been accumulated.
func (c *Collector) Len() int {
	return len(c.items)
}

// MalformedSpanError is returned (not just collected) when a source range
// crosses file bounds or inverts — per §7 this is a programmer error
// inside the analyzer and aborts the pipeline rather than degrading.
type MalformedSpanError struct {
	FilePath string
	Start    int
	End      int
	Reason   string
}

func (e *MalformedSpanError) Error() string {
	return fmt.Sprintf("malformed span in %s: [%d,%d]: %s", e.FilePath, e.Start, e.End, e.Reason)
}
