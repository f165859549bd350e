package score

// Voice is an ordered sequence of notes on one staff forming a single
// polyphonic layer. The voice invariant: no two notes with the same
// pitch may overlap in time.
type Voice struct {
	ID    VoiceID `json:"id"`
	Notes []Note  `json:"notes"`
}

// NewVoice creates an empty voice.
func NewVoice(id VoiceID) Voice {
	return Voice{ID: id}
}

// CanAddNote reports whether the note respects the voice invariant.
// Notes of different pitches may sound simultaneously (chords); only a
// same-pitch time overlap is rejected.
func (v *Voice) CanAddNote(note Note) bool {
	for i := range v.Notes {
		if v.Notes[i].Pitch == note.Pitch && v.Notes[i].Overlaps(note) {
			return false
		}
	}
	return true
}

// AddNote appends a note, enforcing the voice invariant.
func (v *Voice) AddNote(note Note) error {
	if !v.CanAddNote(note) {
		return newConstraintViolation(
			"note with pitch %d overlaps an existing note at the same pitch", note.Pitch)
	}
	v.Notes = append(v.Notes, note)
	return nil
}

// Note returns the note with the given ID, if present. Used to resolve
// tie references.
func (v *Voice) Note(id NoteID) (Note, bool) {
	for i := range v.Notes {
		if v.Notes[i].ID == id {
			return v.Notes[i], true
		}
	}
	return Note{}, false
}
