package diag

// Severity is the impact level of a warning.
type Severity string

const (
	// SeverityInfo marks substituted defaults and non-critical adjustments.
	SeverityInfo Severity = "info"

	// SeverityWarning marks recovered structural issues worth review.
	SeverityWarning Severity = "warning"

	// SeverityError marks skipped or truncated content. Any Error-level
	// warning makes the import partial.
	SeverityError Severity = "error"
)

// Category classifies warnings for grouping and filtering.
type Category string

const (
	// CategoryOverlapResolution covers same-pitch overlapping notes that
	// were split into multiple voices or skipped.
	CategoryOverlapResolution Category = "overlap_resolution"

	// CategoryMissingElements covers absent elements (tempo, time
	// signature, clef) for which defaults were applied.
	CategoryMissingElements Category = "missing_elements"

	// CategoryStructuralIssues covers malformed markup, encoding
	// fallbacks, measure gaps, and skipped elements.
	CategoryStructuralIssues Category = "structural_issues"

	// CategoryPartialImport covers content discarded because of
	// unrecoverable errors (instrument truncation).
	CategoryPartialImport Category = "partial_import"
)

// Warning is one non-fatal issue found during import. Immutable once
// recorded.
type Warning struct {
	// Severity is the impact level: info, warning, or error.
	Severity Severity `json:"severity"`

	// Category classifies the warning for UI grouping.
	Category Category `json:"category"`

	// Message describes the issue and the action taken.
	Message string `json:"message"`

	// MeasureNumber is the 1-indexed measure context, 0 when unknown.
	MeasureNumber int `json:"measure_number,omitempty"`

	// InstrumentName is the instrument context, empty when unknown.
	InstrumentName string `json:"instrument_name,omitempty"`

	// StaffNumber is the 1-indexed staff context, 0 when unknown.
	StaffNumber int `json:"staff_number,omitempty"`

	// VoiceNumber is the 1-indexed voice context, 0 when unknown.
	VoiceNumber int `json:"voice_number,omitempty"`
}

// CanonicalMap converts the warning to a map tree for canonical JSON
// serialization. Zero-valued context fields are omitted.
func (w Warning) CanonicalMap() map[string]any {
	m := map[string]any{
		"severity": string(w.Severity),
		"category": string(w.Category),
		"message":  w.Message,
	}
	if w.MeasureNumber != 0 {
		m["measure_number"] = w.MeasureNumber
	}
	if w.InstrumentName != "" {
		m["instrument_name"] = w.InstrumentName
	}
	if w.StaffNumber != 0 {
		m["staff_number"] = w.StaffNumber
	}
	if w.VoiceNumber != 0 {
		m["voice_number"] = w.VoiceNumber
	}
	return m
}
