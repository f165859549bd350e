package importer

import (
	"fmt"

	"github.com/partwise/partwise/internal/diag"
	"github.com/partwise/partwise/internal/mxml"
	"github.com/partwise/partwise/internal/score"
)

const (
	// defaultBPM is substituted when a document declares no tempo.
	defaultBPM = 120

	// defaultDivisions is assumed until a document declares its own
	// divisions value. 480 is the most common export resolution.
	defaultDivisions = 480

	// clefInferenceCap bounds how many notes the clef heuristic
	// examines, so inference stays cheap on very long staves.
	clefInferenceCap = 100
)

// Convert builds the score aggregate from a parsed document.
//
// Instruments convert independently: a measure that cannot be
// converted truncates its own instrument and the rest of the document
// proceeds. Missing tempo, time signature, and clef are filled with
// defaults, each recorded as an info-level warning.
func Convert(doc *mxml.Document, ids *score.IDGen, ctx *diag.Context) (*score.Score, error) {
	sc := score.NewScore(ids.ScoreID())

	bpm := score.BPM(defaultBPM)
	if doc.TempoBPM == 0 {
		ctx.Warn(diag.SeverityInfo, diag.CategoryMissingElements,
			"No tempo marking found - using default tempo %d BPM", defaultBPM)
	} else if v, err := score.NewBPM(doc.TempoBPM); err != nil {
		ctx.Warn(diag.SeverityInfo, diag.CategoryMissingElements,
			"Tempo %d BPM outside supported range - using default tempo %d BPM", doc.TempoBPM, defaultBPM)
	} else {
		bpm = v
	}
	if err := sc.AddTempoEvent(score.TempoEvent{Tick: 0, BPM: bpm}); err != nil {
		return nil, err
	}

	ts := firstTimeSignature(doc)
	if ts == nil {
		ctx.Warn(diag.SeverityInfo, diag.CategoryMissingElements,
			"No time signature found - using default 4/4")
		ts = &mxml.TimeSignature{Beats: 4, BeatType: 4}
	}
	if err := sc.AddTimeSignatureEvent(score.TimeSignatureEvent{Tick: 0, Beats: ts.Beats, BeatType: ts.BeatType}); err != nil {
		return nil, err
	}

	for _, part := range doc.Parts {
		sc.AddInstrument(convertPart(part, ids, ctx))
	}
	return sc, nil
}

// firstTimeSignature returns the first time signature declared
// anywhere in the document, in document order.
func firstTimeSignature(doc *mxml.Document) *mxml.TimeSignature {
	for p := range doc.Parts {
		for m := range doc.Parts[p].Measures {
			if attrs := doc.Parts[p].Measures[m].Attributes; attrs != nil && attrs.Time != nil {
				return attrs.Time
			}
		}
	}
	return nil
}

// convertPart builds one instrument. On a measure-level conversion
// failure the instrument keeps every measure before the failing one
// and records an error-level partial-import warning; it never aborts
// the surrounding import.
func convertPart(part mxml.Part, ids *score.IDGen, ctx *diag.Context) score.Instrument {
	name := instrumentName(part)
	ctx.SetInstrument(name)
	defer ctx.ClearCursor()

	inst := score.NewInstrument(ids.InstrumentID(), name)
	staffCount := part.StaffCount
	if staffCount < 1 {
		staffCount = 1
	}
	multi := staffCount > 1

	// Collect notes per staff against scratch contexts, shrinking the
	// measure window until every staff converts. Only the winning
	// collection's diagnostics are kept, so retries never double-report.
	measures := part.Measures
	truncMeasure := 0
	truncReason := ""
	var staffNotes [][]stagedNote
	for {
		staffNotes = staffNotes[:0]
		scratches := make([]*diag.Context, 0, staffCount)
		failed := false
		for s := 1; s <= staffCount; s++ {
			scratch := diag.NewContext()
			scratch.SetInstrument(name)
			scratch.SetStaff(s)
			notes, failIdx, err := collectStaffNotes(measures, s, multi, scratch)
			if err != nil {
				truncMeasure = measures[failIdx].Number
				truncReason = err.Error()
				measures = measures[:failIdx]
				failed = true
				break
			}
			staffNotes = append(staffNotes, notes)
			scratches = append(scratches, scratch)
		}
		if !failed {
			for _, scratch := range scratches {
				ctx.Merge(scratch)
			}
			break
		}
	}

	attrs := firstAttributes(measures)
	for s := 1; s <= staffCount; s++ {
		staff := score.NewStaff(ids.StaffID())
		ctx.SetStaff(s)
		ctx.SetMeasure(0)
		notes := staffNotes[s-1]

		clef, ok := clefFromAttributes(attrs, s, multi)
		if !ok {
			clef = inferClef(notes)
			ctx.Warn(diag.SeverityInfo, diag.CategoryMissingElements,
				"No clef found - inferred %s clef from note range", clef)
		}
		_ = staff.AddClefEvent(score.ClefEvent{Tick: 0, Clef: clef})

		if attrs != nil && attrs.Key != nil {
			if fifths, err := score.NewKeySignature(attrs.Key.Fifths); err != nil {
				ctx.Warn(diag.SeverityWarning, diag.CategoryStructuralIssues,
					"Ignoring key signature with %d fifths - outside supported range", attrs.Key.Fifths)
			} else {
				_ = staff.AddKeySignatureEvent(score.KeySignatureEvent{Tick: 0, Fifths: fifths})
			}
		}

		for _, voice := range distributeVoices(notes, ids, ctx) {
			staff.AddVoice(voice)
		}
		inst.AddStaff(staff)
	}

	if truncMeasure > 0 {
		ctx.SetStaff(0)
		ctx.SetMeasure(truncMeasure)
		ctx.Warn(diag.SeverityError, diag.CategoryPartialImport,
			"Instrument '%s' truncated at measure %d - %s", name, truncMeasure, truncReason)
	}
	return inst
}

// collectStaffNotes walks measures and positions every note of one
// staff on the tick timeline. The returned index marks the failing
// measure when err is non-nil; notes collected before it are valid.
func collectStaffNotes(measures []mxml.Measure, staffNum int, multi bool, ctx *diag.Context) ([]stagedNote, int, error) {
	var notes []stagedNote
	divisions := defaultDivisions
	var current, lastNote score.Tick

	for mi := range measures {
		m := &measures[mi]
		ctx.SetMeasure(m.Number)

		if m.Attributes != nil {
			switch {
			case m.Attributes.Divisions > 0:
				divisions = m.Attributes.Divisions
			case m.Attributes.Divisions < 0:
				return notes, mi, fmt.Errorf("measure declares an unusable divisions value")
			}
		}

		// In multi-staff notation backup rewinds to write the next
		// staff; each staff tracks its own timeline, so backup resets
		// to the measure start and the measure end is the furthest
		// tick any element reached.
		measureStart := current
		maxTick := current

		for _, el := range m.Elements {
			switch el.Kind {
			case mxml.ElementNote:
				n := el.Note
				if multi && n.Staff != staffNum {
					continue
				}
				pitch, err := mapPitch(n.Step, n.Octave, n.Alter)
				if err != nil {
					ctx.Warn(diag.SeverityWarning, diag.CategoryStructuralIssues,
						"Skipping invalid note: %v", err)
					ctx.SkipElement()
					continue
				}
				ticks, err := ticksForDuration(n.Duration, divisions, ctx)
				if err != nil {
					return notes, mi, err
				}
				if ticks <= 0 {
					ctx.Warn(diag.SeverityWarning, diag.CategoryStructuralIssues,
						"Skipping invalid note: duration %d converts to no ticks", n.Duration)
					ctx.SkipElement()
					continue
				}
				start := current
				if n.Chord {
					start = lastNote
				}
				notes = append(notes, stagedNote{
					start:    start,
					duration: score.Tick(ticks),
					pitch:    pitch,
					spelling: score.NoteSpelling{Step: n.Step, Alter: n.Alter},
					tieStart: n.TieStart,
					tieStop:  n.TieStop,
				})
				if !n.Chord {
					lastNote = current
					current = current.Add(score.Tick(ticks))
				}
				if current > maxTick {
					maxTick = current
				}

			case mxml.ElementRest:
				n := el.Note
				if multi && n.Staff != staffNum {
					continue
				}
				ticks, err := ticksForDuration(n.Duration, divisions, ctx)
				if err != nil {
					return notes, mi, err
				}
				if ticks <= 0 {
					continue
				}
				current = current.Add(score.Tick(ticks))
				if current > maxTick {
					maxTick = current
				}

			case mxml.ElementBackup:
				if multi {
					current = measureStart
					continue
				}
				ticks, err := ticksForDuration(el.Duration, divisions, ctx)
				if err != nil {
					return notes, mi, err
				}
				if score.Tick(ticks) <= current {
					current -= score.Tick(ticks)
				}

			case mxml.ElementForward:
				ticks, err := ticksForDuration(el.Duration, divisions, ctx)
				if err != nil {
					return notes, mi, err
				}
				if ticks <= 0 {
					continue
				}
				current = current.Add(score.Tick(ticks))
				if current > maxTick {
					maxTick = current
				}
			}
		}

		if multi {
			current = maxTick
		}
	}
	return notes, 0, nil
}

// ticksForDuration converts a duration in source division units to
// ticks, warning when rounding drifts more than 0.1 ticks from the
// exact rational value.
func ticksForDuration(duration, divisions int, ctx *diag.Context) (int64, error) {
	f, err := fractionFromDivisions(duration, divisions)
	if err != nil {
		return 0, err
	}
	if f.Drifts() {
		ctx.Warn(diag.SeverityWarning, diag.CategoryStructuralIssues,
			"Duration %d at %d divisions rounds to %d ticks - possible timing drift",
			duration, divisions, f.ToTicks())
	}
	return f.ToTicks(), nil
}

var stepOffsets = map[string]int{
	"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
}

// mapPitch converts written pitch to a MIDI value: C4 = 60.
func mapPitch(step string, octave, alter int) (score.Pitch, error) {
	offset, ok := stepOffsets[step]
	if !ok {
		return 0, fmt.Errorf("unknown pitch step %q", step)
	}
	return score.NewPitch(12*(octave+1) + offset + alter)
}

// mapClef converts a clef sign and line to the domain clef.
func mapClef(sign string, line int) (score.Clef, bool) {
	switch sign {
	case "G":
		return score.ClefTreble, true
	case "F":
		return score.ClefBass, true
	case "C":
		if line == 4 {
			return score.ClefTenor, true
		}
		return score.ClefAlto, true
	}
	return "", false
}

// clefFromAttributes finds a usable declared clef for a staff. For
// multi-staff parts the clef must name the staff; a single staff
// takes the first declared clef.
func clefFromAttributes(attrs *mxml.Attributes, staffNum int, multi bool) (score.Clef, bool) {
	if attrs == nil {
		return "", false
	}
	for _, c := range attrs.Clefs {
		if multi && c.StaffNumber != staffNum {
			continue
		}
		return mapClef(c.Sign, c.Line)
	}
	return "", false
}

// inferClef picks treble or bass from the mean pitch of the first
// notes on the staff. An empty staff defaults to treble.
func inferClef(notes []stagedNote) score.Clef {
	if len(notes) == 0 {
		return score.ClefTreble
	}
	n := len(notes)
	if n > clefInferenceCap {
		n = clefInferenceCap
	}
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(notes[i].pitch)
	}
	if sum/n >= score.MiddleC {
		return score.ClefTreble
	}
	return score.ClefBass
}

// firstAttributes returns the first declared attributes block, which
// carries the opening clef and key for the part.
func firstAttributes(measures []mxml.Measure) *mxml.Attributes {
	for i := range measures {
		if measures[i].Attributes != nil {
			return measures[i].Attributes
		}
	}
	return nil
}

func instrumentName(part mxml.Part) string {
	if part.Name != "" {
		return part.Name
	}
	return "Instrument " + part.ID
}
