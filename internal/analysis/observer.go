package analysis

import "fmt"

// WarningKind classifies a non-fatal data-quality event
type WarningKind string

const (
	WarnZeroVolume     WarningKind = "zero_volume"
	WarnInvalidTime    WarningKind = "invalid_time"
	WarnInvalidNumber  WarningKind = "invalid_number"
	WarnMalformedLabel WarningKind = "malformed_label"
)

// Warning is a single data-quality event. Line is the 1-based source data line,
// or 0 when the event is not tied to a row.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Line    int         `json:"line,omitempty"`
	Value   string      `json:"value,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", w.Kind, w.Line, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// Observer receives warnings as they are produced
type Observer interface {
	Warn(w Warning)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Warning)

// Warn calls f(w)
func (f ObserverFunc) Warn(w Warning) { f(w) }

// Diagnostics collects the warnings of a run
type Diagnostics struct {
	Warnings []Warning `json:"warnings"`
	observer Observer
}

func newDiagnostics(obs Observer) *Diagnostics {
	return &Diagnostics{observer: obs}
}

func (d *Diagnostics) add(w Warning) {
	d.Warnings = append(d.Warnings, w)
	if d.observer != nil {
		d.observer.Warn(w)
	}
}

// Count returns the number of warnings of a kind
func (d *Diagnostics) Count(kind WarningKind) int {
	n := 0
	for _, w := range d.Warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// Counts returns warning totals keyed by kind
func (d *Diagnostics) Counts() map[WarningKind]int {
	counts := make(map[WarningKind]int)
	for _, w := range d.Warnings {
		counts[w.Kind]++
	}
	return counts
}

// Merge appends other's warnings without notifying the observer again
func (d *Diagnostics) Merge(other []Warning) {
	d.Warnings = append(d.Warnings, other...)
}
