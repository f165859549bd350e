package score

// Note is a pitched interval event within a voice.
type Note struct {
	ID            NoteID `json:"id"`
	StartTick     Tick   `json:"start_tick"`
	DurationTicks Tick   `json:"duration_ticks"`
	Pitch         Pitch  `json:"pitch"`

	// Spelling preserves the written enharmonic form, when known.
	Spelling *NoteSpelling `json:"spelling,omitempty"`

	// TiedTo references the note this one is tied into. Resolved by
	// lookup at read time; empty when the note is not tied.
	TiedTo NoteID `json:"tied_to,omitempty"`
}

// NewNote validates and constructs a note.
func NewNote(id NoteID, startTick Tick, durationTicks Tick, pitch Pitch) (Note, error) {
	if durationTicks <= 0 {
		return Note{}, newConstraintViolation("note duration must be greater than 0, got %d", durationTicks)
	}
	if startTick < 0 {
		return Note{}, newConstraintViolation("note start tick must not be negative, got %d", startTick)
	}
	return Note{
		ID:            id,
		StartTick:     startTick,
		DurationTicks: durationTicks,
		Pitch:         pitch,
	}, nil
}

// EndTick is the first tick after the note stops sounding.
func (n Note) EndTick() Tick {
	return n.StartTick + n.DurationTicks
}

// Overlaps reports whether two notes occupy intersecting time intervals.
// Intervals are half-open: a note ending exactly where another begins
// does not overlap it.
func (n Note) Overlaps(other Note) bool {
	return n.StartTick < other.EndTick() && other.StartTick < n.EndTick()
}
