package diag

import (
	"fmt"
	"sort"
)

// Context accumulates warnings and tracks the cursor (the measure,
// instrument, staff, and voice currently being processed) so that
// warnings carry location context without every call site passing it.
type Context struct {
	warnings []Warning

	measure    int
	instrument string
	staff      int
	voice      int

	skipped int
}

// NewContext creates an empty context for one import call.
func NewContext() *Context {
	return &Context{}
}

// SetMeasure sets the cursor's measure number (1-indexed).
func (c *Context) SetMeasure(number int) { c.measure = number }

// SetInstrument sets the cursor's instrument name.
func (c *Context) SetInstrument(name string) { c.instrument = name }

// SetStaff sets the cursor's staff number (1-indexed).
func (c *Context) SetStaff(number int) { c.staff = number }

// SetVoice sets the cursor's voice number (1-indexed).
func (c *Context) SetVoice(number int) { c.voice = number }

// ClearCursor resets all cursor fields for a new parsing scope.
func (c *Context) ClearCursor() {
	c.measure = 0
	c.instrument = ""
	c.staff = 0
	c.voice = 0
}

// Warn records a warning stamped with the current cursor context.
func (c *Context) Warn(severity Severity, category Category, format string, args ...any) {
	c.warnings = append(c.warnings, Warning{
		Severity:       severity,
		Category:       category,
		Message:        fmt.Sprintf(format, args...),
		MeasureNumber:  c.measure,
		InstrumentName: c.instrument,
		StaffNumber:    c.staff,
		VoiceNumber:    c.voice,
	})
}

// Merge appends another context's warnings and counters. Used when a
// stage runs against a scratch context whose output is only kept on
// success (e.g. encoding attempts).
func (c *Context) Merge(other *Context) {
	c.warnings = append(c.warnings, other.warnings...)
	c.skipped += other.skipped
}

// SkipElement increments the skipped-element counter.
func (c *Context) SkipElement() { c.skipped++ }

// SkippedElements returns how many elements were skipped so far.
func (c *Context) SkippedElements() int { return c.skipped }

// WarningCount returns the number of warnings recorded so far, before
// deduplication.
func (c *Context) WarningCount() int { return len(c.warnings) }

// HasErrors reports whether any Error-severity warning was recorded.
// This is the partial-import signal.
func (c *Context) HasErrors() bool {
	for i := range c.warnings {
		if c.warnings[i].Severity == SeverityError {
			return true
		}
	}
	return false
}

// Finalize returns the sorted, deduplicated warning list. Sort key:
// category, then measure number, then staff number; ties keep
// recording order. Sorting makes the output independent of the order
// in which defects were discovered.
func (c *Context) Finalize() []Warning {
	deduped := make([]Warning, 0, len(c.warnings))
	seen := make(map[string]bool, len(c.warnings))
	for _, w := range c.warnings {
		key := fmt.Sprintf("%s|%s|%s|%d|%s|%d|%d",
			w.Severity, w.Category, w.Message,
			w.MeasureNumber, w.InstrumentName, w.StaffNumber, w.VoiceNumber)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, w)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		a, b := deduped[i], deduped[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.MeasureNumber != b.MeasureNumber {
			return a.MeasureNumber < b.MeasureNumber
		}
		return a.StaffNumber < b.StaffNumber
	})

	return deduped
}
