package story

import (
	"maps"
	"slices"
)

// Condition gates an option or an instruction on the current story state.
// Every populated clause must hold.
type Condition struct {
	Flags          map[string]string `json:"flags,omitempty" yaml:"flags,omitempty"`                     // All flags must equal these values
	Markers        []string          `json:"markers,omitempty" yaml:"markers,omitempty"`                 // All markers must be completed
	MissingMarkers []string          `json:"missing_markers,omitempty" yaml:"missing_markers,omitempty"` // None of these markers may be completed
	Journal        []string          `json:"journal,omitempty" yaml:"journal,omitempty"`                 // All entries must be in the journal
}

// IsEmpty reports whether no clause was specified.
func (c Condition) IsEmpty() bool {
	return len(c.Flags) == 0 &&
		len(c.Markers) == 0 &&
		len(c.MissingMarkers) == 0 &&
		len(c.Journal) == 0
}

// Evaluate checks every clause against the view.
// An empty condition never holds; validation rejects it.
func (c Condition) Evaluate(view StateView) bool {
	if c.IsEmpty() || view == nil {
		return false
	}

	for name, expected := range c.Flags {
		actual, ok := view.GetFlag(name)
		if !ok || actual != expected {
			return false
		}
	}

	for _, marker := range c.Markers {
		if !view.IsCompleted(marker) {
			return false
		}
	}

	for _, marker := range c.MissingMarkers {
		if view.IsCompleted(marker) {
			return false
		}
	}

	for _, entry := range c.Journal {
		if !view.HasJournalEntry(entry) {
			return false
		}
	}

	return true
}

// Holds is Evaluate for optional conditions: a nil condition always holds.
func (c *Condition) Holds(view StateView) bool {
	if c == nil {
		return true
	}
	return c.Evaluate(view)
}

func (c *Condition) clone() *Condition {
	if c == nil {
		return nil
	}
	return &Condition{
		Flags:          maps.Clone(c.Flags),
		Markers:        slices.Clone(c.Markers),
		MissingMarkers: slices.Clone(c.MissingMarkers),
		Journal:        slices.Clone(c.Journal),
	}
}
