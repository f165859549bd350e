package importer

import (
	"sort"

	"github.com/partwise/partwise/internal/diag"
	"github.com/partwise/partwise/internal/score"
)

// maxVoices bounds how many polyphonic layers one staff may hold.
const maxVoices = 4

// stagedNote is a note collected from the document, positioned in
// ticks but not yet assigned to a voice.
type stagedNote struct {
	start    score.Tick
	duration score.Tick
	pitch    score.Pitch
	spelling score.NoteSpelling
	tieStart bool
	tieStop  bool
}

// distributeVoices partitions a staff's notes into 1-4 voices.
//
// Notes are processed in (start tick, pitch) order and each goes to
// the first voice that accepts it, so identical input always yields
// identical assignment. A note landing in voice 2+ records an
// overlap-resolution warning; a note no voice can take is skipped
// with an error-level warning rather than dropped silently.
func distributeVoices(notes []stagedNote, ids *score.IDGen, ctx *diag.Context) []score.Voice {
	order := make([]int, len(notes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		na, nb := notes[order[a]], notes[order[b]]
		if na.start != nb.start {
			return na.start < nb.start
		}
		return na.pitch < nb.pitch
	})

	voices := make([]score.Voice, 0, 1)
	voiceOf := make([]int, len(notes))
	posOf := make([]int, len(notes))
	idOf := make([]score.NoteID, len(notes))
	overflowed := 0

	for _, idx := range order {
		sn := notes[idx]
		id := ids.NoteID()
		note, err := score.NewNote(id, sn.start, sn.duration, sn.pitch)
		if err != nil {
			ctx.Warn(diag.SeverityWarning, diag.CategoryStructuralIssues,
				"Skipping invalid note: %v", err)
			ctx.SkipElement()
			continue
		}
		spelling := sn.spelling
		note.Spelling = &spelling

		placed := false
		for v := range voices {
			if voices[v].CanAddNote(note) {
				if err := voices[v].AddNote(note); err != nil {
					break
				}
				voiceOf[idx] = v + 1
				posOf[idx] = len(voices[v].Notes) - 1
				idOf[idx] = id
				if v > 0 {
					ctx.SetVoice(v + 1)
					ctx.Warn(diag.SeverityWarning, diag.CategoryOverlapResolution,
						"Overlapping notes at tick %d - note assigned to voice %d", sn.start, v+1)
					ctx.SetVoice(0)
				}
				placed = true
				break
			}
		}
		if placed {
			continue
		}

		if len(voices) < maxVoices {
			voice := score.NewVoice(ids.VoiceID())
			if err := voice.AddNote(note); err != nil {
				continue
			}
			voices = append(voices, voice)
			voiceOf[idx] = len(voices)
			posOf[idx] = 0
			idOf[idx] = id
			if len(voices) > 1 {
				ctx.SetVoice(len(voices))
				ctx.Warn(diag.SeverityWarning, diag.CategoryOverlapResolution,
					"Overlapping notes at tick %d - note assigned to voice %d", sn.start, len(voices))
				ctx.SetVoice(0)
			}
			continue
		}

		// The ordinal keeps warnings for identical skipped notes
		// distinct, so one warning survives per lost note.
		overflowed++
		ctx.Warn(diag.SeverityError, diag.CategoryOverlapResolution,
			"Voice overflow: Note %d at tick %d (pitch %d) could not be assigned (all 4 voices occupied)",
			overflowed, sn.start, sn.pitch)
		ctx.SkipElement()
	}

	resolveTies(notes, voices, voiceOf, posOf, idOf)

	// A staff always carries at least one voice, even when empty.
	if len(voices) == 0 {
		voices = append(voices, score.NewVoice(ids.VoiceID()))
	}
	return voices
}

// resolveTies links each tie-start note to its continuation: the note
// in the same voice, at the same pitch, starting exactly where the
// tied note ends. Candidates marked tie-stop win over unmarked ones.
func resolveTies(notes []stagedNote, voices []score.Voice, voiceOf, posOf []int, idOf []score.NoteID) {
	for i := range notes {
		if !notes[i].tieStart || voiceOf[i] == 0 {
			continue
		}
		end := notes[i].start + notes[i].duration
		best := -1
		for j := range notes {
			if j == i || voiceOf[j] != voiceOf[i] {
				continue
			}
			if notes[j].pitch != notes[i].pitch || notes[j].start != end {
				continue
			}
			if notes[j].tieStop {
				best = j
				break
			}
			if best == -1 {
				best = j
			}
		}
		if best >= 0 {
			voices[voiceOf[i]-1].Notes[posOf[i]].TiedTo = idOf[best]
		}
	}
}
