package score

// Score is the aggregate root containing all musical elements.
type Score struct {
	ID ScoreID `json:"id"`

	// Score-scoped structural events, kept in insertion order. Imports
	// always place the tick-0 events first.
	TempoEvents         []TempoEvent         `json:"tempo_events"`
	TimeSignatureEvents []TimeSignatureEvent `json:"time_signature_events"`

	Instruments []Instrument `json:"instruments"`
}

// NewScore creates an empty score. The importer is responsible for
// ensuring a tempo and time signature exist at tick 0, recording a
// diagnostic for any default it substitutes.
func NewScore(id ScoreID) *Score {
	return &Score{ID: id}
}

// AddTempoEvent appends a tempo event, rejecting a second tempo at the
// same tick.
func (s *Score) AddTempoEvent(event TempoEvent) error {
	for i := range s.TempoEvents {
		if s.TempoEvents[i].Tick == event.Tick {
			return newDuplicateEvent("tempo", event.Tick)
		}
	}
	s.TempoEvents = append(s.TempoEvents, event)
	return nil
}

// AddTimeSignatureEvent appends a time signature event, rejecting a
// second signature at the same tick.
func (s *Score) AddTimeSignatureEvent(event TimeSignatureEvent) error {
	for i := range s.TimeSignatureEvents {
		if s.TimeSignatureEvents[i].Tick == event.Tick {
			return newDuplicateEvent("time signature", event.Tick)
		}
	}
	s.TimeSignatureEvents = append(s.TimeSignatureEvents, event)
	return nil
}

// AddInstrument appends an instrument to the score.
func (s *Score) AddInstrument(instrument Instrument) {
	s.Instruments = append(s.Instruments, instrument)
}

// TempoAt returns the tempo active at a tick, or false when no tempo
// event lies at or before it.
func (s *Score) TempoAt(tick Tick) (TempoEvent, bool) {
	var best TempoEvent
	found := false
	for i := range s.TempoEvents {
		e := s.TempoEvents[i]
		if e.Tick <= tick && (!found || e.Tick >= best.Tick) {
			best = e
			found = true
		}
	}
	return best, found
}

// TimeSignatureAt returns the time signature active at a tick, or
// false when no signature lies at or before it.
func (s *Score) TimeSignatureAt(tick Tick) (TimeSignatureEvent, bool) {
	var best TimeSignatureEvent
	found := false
	for i := range s.TimeSignatureEvents {
		e := s.TimeSignatureEvents[i]
		if e.Tick <= tick && (!found || e.Tick >= best.Tick) {
			best = e
			found = true
		}
	}
	return best, found
}

// FindNote resolves a note ID anywhere in the score. This is the
// lookup used to follow tie references, which are stored as NoteIDs
// rather than pointers.
func (s *Score) FindNote(id NoteID) (Note, error) {
	for i := range s.Instruments {
		for st := range s.Instruments[i].Staves {
			for v := range s.Instruments[i].Staves[st].Voices {
				if note, ok := s.Instruments[i].Staves[st].Voices[v].Note(id); ok {
					return note, nil
				}
			}
		}
	}
	return Note{}, newNotFound("note", string(id))
}

// NoteCount counts notes across the whole score.
func (s *Score) NoteCount() int {
	count := 0
	for i := range s.Instruments {
		count += s.Instruments[i].NoteCount()
	}
	return count
}

// DurationTicks is the end tick of the last-sounding note, 0 for an
// empty score.
func (s *Score) DurationTicks() Tick {
	var max Tick
	for i := range s.Instruments {
		for st := range s.Instruments[i].Staves {
			for v := range s.Instruments[i].Staves[st].Voices {
				for _, n := range s.Instruments[i].Staves[st].Voices[v].Notes {
					if n.EndTick() > max {
						max = n.EndTick()
					}
				}
			}
		}
	}
	return max
}

// HasNotes reports whether at least one instrument carries a note.
// An import that yields no note-bearing instrument is a failure, never
// an empty-but-successful score.
func (s *Score) HasNotes() bool {
	for i := range s.Instruments {
		if s.Instruments[i].NoteCount() > 0 {
			return true
		}
	}
	return false
}
