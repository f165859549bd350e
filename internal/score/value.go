package score

import "fmt"

// TicksPerQuarter is the fixed tick resolution of the domain model.
// All durations and positions are expressed in 960 PPQ regardless of
// the divisions value declared by the source document.
const TicksPerQuarter = 960

// MiddleC is the MIDI pitch value of C4, the boundary used when
// inferring a missing clef from a staff's mean pitch.
const MiddleC = 60

// Tick is a discrete time position or duration at 960 PPQ resolution.
type Tick int64

// Add returns the tick advanced by a duration.
func (t Tick) Add(duration Tick) Tick {
	return t + duration
}

// BPM is a tempo value in beats per minute.
type BPM int

// NewBPM validates the playable tempo range.
func NewBPM(value int) (BPM, error) {
	if value < 20 || value > 400 {
		return 0, fmt.Errorf("bpm must be in range 20-400, got %d", value)
	}
	return BPM(value), nil
}

// Pitch is a MIDI pitch value (0-127).
type Pitch int

// NewPitch validates the MIDI pitch range.
func NewPitch(value int) (Pitch, error) {
	if value < 0 || value > 127 {
		return 0, fmt.Errorf("pitch must be in range 0-127, got %d", value)
	}
	return Pitch(value), nil
}

// Clef identifies the clef drawn at the start of a staff.
type Clef string

const (
	ClefTreble Clef = "treble"
	ClefBass   Clef = "bass"
	ClefAlto   Clef = "alto"
	ClefTenor  Clef = "tenor"
)

// KeySignature is a sharps/flats count on the circle of fifths.
// Positive values are sharps, negative values are flats.
type KeySignature int

// NewKeySignature validates the standard key range.
func NewKeySignature(fifths int) (KeySignature, error) {
	if fifths < -7 || fifths > 7 {
		return 0, fmt.Errorf("key signature must be in range -7 (flats) to 7 (sharps), got %d", fifths)
	}
	return KeySignature(fifths), nil
}

// NoteSpelling preserves the enharmonic spelling of a pitch as written
// in the source document (e.g. D-sharp vs E-flat).
type NoteSpelling struct {
	// Step is the note letter C-G, A, B.
	Step string `json:"step"`

	// Alter is the chromatic alteration: -2 double flat .. +2 double sharp.
	Alter int `json:"alter"`
}
