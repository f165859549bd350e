package score

// CanonicalMap converts the score to a map tree for MarshalCanonical.
// Optional fields are omitted when empty so snapshots stay minimal.
func (s *Score) CanonicalMap() map[string]any {
	tempos := make([]any, len(s.TempoEvents))
	for i, e := range s.TempoEvents {
		tempos[i] = map[string]any{
			"tick": int64(e.Tick),
			"bpm":  int(e.BPM),
		}
	}

	timeSigs := make([]any, len(s.TimeSignatureEvents))
	for i, e := range s.TimeSignatureEvents {
		timeSigs[i] = map[string]any{
			"tick":      int64(e.Tick),
			"beats":     e.Beats,
			"beat_type": e.BeatType,
		}
	}

	instruments := make([]any, len(s.Instruments))
	for i := range s.Instruments {
		instruments[i] = s.Instruments[i].canonicalMap()
	}

	return map[string]any{
		"id":                    string(s.ID),
		"tempo_events":          tempos,
		"time_signature_events": timeSigs,
		"instruments":           instruments,
	}
}

func (i *Instrument) canonicalMap() map[string]any {
	staves := make([]any, len(i.Staves))
	for s := range i.Staves {
		staves[s] = i.Staves[s].canonicalMap()
	}
	return map[string]any{
		"id":     string(i.ID),
		"name":   i.Name,
		"kind":   i.Kind,
		"staves": staves,
	}
}

func (s *Staff) canonicalMap() map[string]any {
	clefs := make([]any, len(s.ClefEvents))
	for i, e := range s.ClefEvents {
		clefs[i] = map[string]any{
			"tick": int64(e.Tick),
			"clef": string(e.Clef),
		}
	}

	keys := make([]any, len(s.KeyEvents))
	for i, e := range s.KeyEvents {
		keys[i] = map[string]any{
			"tick":   int64(e.Tick),
			"fifths": int(e.Fifths),
		}
	}

	voices := make([]any, len(s.Voices))
	for i := range s.Voices {
		voices[i] = s.Voices[i].canonicalMap()
	}

	return map[string]any{
		"id":          string(s.ID),
		"clef_events": clefs,
		"key_events":  keys,
		"voices":      voices,
	}
}

func (v *Voice) canonicalMap() map[string]any {
	notes := make([]any, len(v.Notes))
	for i := range v.Notes {
		notes[i] = v.Notes[i].canonicalMap()
	}
	return map[string]any{
		"id":    string(v.ID),
		"notes": notes,
	}
}

func (n *Note) canonicalMap() map[string]any {
	m := map[string]any{
		"id":             string(n.ID),
		"start_tick":     int64(n.StartTick),
		"duration_ticks": int64(n.DurationTicks),
		"pitch":          int(n.Pitch),
	}
	if n.Spelling != nil {
		m["spelling"] = map[string]any{
			"step":  n.Spelling.Step,
			"alter": n.Spelling.Alter,
		}
	}
	if n.TiedTo != "" {
		m["tied_to"] = string(n.TiedTo)
	}
	return m
}
