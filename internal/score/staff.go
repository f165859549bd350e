package score

// Staff is one notated line of an instrument, holding voices and
// staff-scoped structural events (clef, key signature).
type Staff struct {
	ID         StaffID             `json:"id"`
	ClefEvents []ClefEvent         `json:"clef_events"`
	KeyEvents  []KeySignatureEvent `json:"key_events"`
	Voices     []Voice             `json:"voices"`
}

// NewStaff creates a staff with no events and no voices. The importer
// decides which defaults to apply and records each applied default.
func NewStaff(id StaffID) Staff {
	return Staff{ID: id}
}

// AddClefEvent appends a clef event, rejecting a second clef at the
// same tick.
func (s *Staff) AddClefEvent(event ClefEvent) error {
	for i := range s.ClefEvents {
		if s.ClefEvents[i].Tick == event.Tick {
			return newDuplicateEvent("clef", event.Tick)
		}
	}
	s.ClefEvents = append(s.ClefEvents, event)
	return nil
}

// AddKeySignatureEvent appends a key signature event, rejecting a
// second key at the same tick.
func (s *Staff) AddKeySignatureEvent(event KeySignatureEvent) error {
	for i := range s.KeyEvents {
		if s.KeyEvents[i].Tick == event.Tick {
			return newDuplicateEvent("key signature", event.Tick)
		}
	}
	s.KeyEvents = append(s.KeyEvents, event)
	return nil
}

// AddVoice appends a voice to the staff.
func (s *Staff) AddVoice(voice Voice) {
	s.Voices = append(s.Voices, voice)
}

// NoteCount counts notes across all voices.
func (s *Staff) NoteCount() int {
	count := 0
	for i := range s.Voices {
		count += len(s.Voices[i].Notes)
	}
	return count
}
