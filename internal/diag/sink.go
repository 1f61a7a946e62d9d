package diag

import "sort"

// Sink accumulates diagnostics for one conversion run. Reporting never fails.
// A Sink is not safe for concurrent use; each run owns its own.
type Sink struct {
	items []Diagnostic
}

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{}
}

// Report records a diagnostic of the given kind against a node.
func (s *Sink) Report(kind Kind, at Locator, format string, args ...any) {
	s.items = append(s.items, New(kind, at, format, args...))
}

// Add appends already-built diagnostics.
func (s *Sink) Add(ds ...Diagnostic) {
	s.items = append(s.items, ds...)
}

// Items returns the recorded diagnostics in report order.
func (s *Sink) Items() []Diagnostic {
	out := make([]Diagnostic, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of recorded diagnostics.
func (s *Sink) Len() int {
	return len(s.items)
}

// Count returns how many diagnostics have the given severity.
func (s *Sink) Count(sev Severity) int {
	return Count(s.items, sev)
}

// Count returns how many diagnostics in ds have the given severity.
func Count(ds []Diagnostic, sev Severity) int {
	n := 0
	for _, d := range ds {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// ByKind groups diagnostics by kind, keeping report order within a group.
func ByKind(ds []Diagnostic) map[Kind][]Diagnostic {
	out := make(map[Kind][]Diagnostic)
	for _, d := range ds {
		out[d.Kind] = append(out[d.Kind], d)
	}
	return out
}

// Sorted returns a copy ordered by severity, then path. Report order is kept
// for equal keys.
func Sorted(ds []Diagnostic) []Diagnostic {
	out := make([]Diagnostic, len(ds))
	copy(out, ds)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity < out[j].Severity
		}
		return out[i].Path < out[j].Path
	})
	return out
}
