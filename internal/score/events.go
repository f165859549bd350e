package score

// TempoEvent sets the tempo from a tick onward. Score-scoped.
type TempoEvent struct {
	Tick Tick `json:"tick"`
	BPM  BPM  `json:"bpm"`
}

// TimeSignatureEvent sets the meter from a tick onward. Score-scoped.
type TimeSignatureEvent struct {
	Tick     Tick `json:"tick"`
	Beats    int  `json:"beats"`
	BeatType int  `json:"beat_type"`
}

// ClefEvent sets the clef of one staff from a tick onward.
type ClefEvent struct {
	Tick Tick `json:"tick"`
	Clef Clef `json:"clef"`
}

// KeySignatureEvent sets the key of one staff from a tick onward.
type KeySignatureEvent struct {
	Tick   Tick         `json:"tick"`
	Fifths KeySignature `json:"fifths"`
}
