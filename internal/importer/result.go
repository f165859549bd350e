package importer

import (
	"github.com/partwise/partwise/internal/diag"
	"github.com/partwise/partwise/internal/score"
)

// Metadata describes the imported document.
type Metadata struct {
	Format    string `json:"format"`
	Version   string `json:"version,omitempty"`
	FileName  string `json:"file_name,omitempty"`
	WorkTitle string `json:"work_title,omitempty"`
	Composer  string `json:"composer,omitempty"`
	Software  string `json:"software,omitempty"`
	Encoding  string `json:"encoding,omitempty"`
}

// Statistics summarizes the import for observability and UI display.
// Never consulted for control flow.
type Statistics struct {
	InstrumentCount     int        `json:"instrument_count"`
	StaffCount          int        `json:"staff_count"`
	VoiceCount          int        `json:"voice_count"`
	NoteCount           int        `json:"note_count"`
	DurationTicks       score.Tick `json:"duration_ticks"`
	WarningCount        int        `json:"warning_count"`
	SkippedElementCount int        `json:"skipped_element_count"`
}

// ImportResult is the successful outcome of an import: the score plus
// everything a caller needs to judge its completeness.
type ImportResult struct {
	Score         *score.Score   `json:"score"`
	Metadata      Metadata       `json:"metadata"`
	Statistics    Statistics     `json:"statistics"`
	Warnings      []diag.Warning `json:"warnings"`
	PartialImport bool           `json:"partial_import"`
}

// CanonicalMap converts the result to a map tree for canonical JSON.
func (r *ImportResult) CanonicalMap() map[string]any {
	warnings := make([]any, len(r.Warnings))
	for i, w := range r.Warnings {
		warnings[i] = w.CanonicalMap()
	}

	metadata := map[string]any{
		"format": r.Metadata.Format,
	}
	if r.Metadata.Version != "" {
		metadata["version"] = r.Metadata.Version
	}
	if r.Metadata.FileName != "" {
		metadata["file_name"] = r.Metadata.FileName
	}
	if r.Metadata.WorkTitle != "" {
		metadata["work_title"] = r.Metadata.WorkTitle
	}
	if r.Metadata.Composer != "" {
		metadata["composer"] = r.Metadata.Composer
	}
	if r.Metadata.Software != "" {
		metadata["software"] = r.Metadata.Software
	}
	if r.Metadata.Encoding != "" {
		metadata["encoding"] = r.Metadata.Encoding
	}

	statistics := map[string]any{
		"instrument_count":      r.Statistics.InstrumentCount,
		"staff_count":           r.Statistics.StaffCount,
		"voice_count":           r.Statistics.VoiceCount,
		"note_count":            r.Statistics.NoteCount,
		"duration_ticks":        r.Statistics.DurationTicks,
		"warning_count":         r.Statistics.WarningCount,
		"skipped_element_count": r.Statistics.SkippedElementCount,
	}

	return map[string]any{
		"score":          r.Score.CanonicalMap(),
		"metadata":       metadata,
		"statistics":     statistics,
		"warnings":       warnings,
		"partial_import": r.PartialImport,
	}
}

// Serialize produces the canonical JSON form of the result. Repeated
// imports of identical input serialize to identical bytes.
func (r *ImportResult) Serialize() ([]byte, error) {
	return score.MarshalCanonical(r.CanonicalMap())
}

func computeStatistics(sc *score.Score, ctx *diag.Context, warnings []diag.Warning) Statistics {
	staves := 0
	voices := 0
	for i := range sc.Instruments {
		staves += len(sc.Instruments[i].Staves)
		for s := range sc.Instruments[i].Staves {
			voices += len(sc.Instruments[i].Staves[s].Voices)
		}
	}
	return Statistics{
		InstrumentCount:     len(sc.Instruments),
		StaffCount:          staves,
		VoiceCount:          voices,
		NoteCount:           sc.NoteCount(),
		DurationTicks:       sc.DurationTicks(),
		WarningCount:        len(warnings),
		SkippedElementCount: ctx.SkippedElements(),
	}
}
