package mxml

// Document is the raw MusicXML structure after parsing, before domain
// conversion.
type Document struct {
	// Version is the format version declared on the root element
	// (e.g. "3.1", "4.0").
	Version string

	// Encoding is the name of the text encoding that decoded the
	// document ("UTF-8" when no fallback was needed).
	Encoding string

	// WorkTitle is the <work>/<work-title> text, if present.
	WorkTitle string

	// MovementTitle is the <movement-title> text, if present.
	MovementTitle string

	// Composer is the <identification>/<creator type="composer"> text.
	Composer string

	// Software is the producing application from <encoding>/<software>.
	Software string

	// TempoBPM is the first tempo marking found in document order,
	// 0 when the document declares none.
	TempoBPM int

	// PartNames maps part IDs to display names ("P1" -> "Piano"),
	// populated from <part-list>. Consulted by ID lookup only.
	PartNames map[string]string

	// Parts holds each <part> in document order.
	Parts []Part
}

// Title returns the best available document title: the work title,
// falling back to the movement title.
func (d *Document) Title() string {
	if d.WorkTitle != "" {
		return d.WorkTitle
	}
	return d.MovementTitle
}

// Part is one <part> element: a single instrument's measures.
type Part struct {
	// ID is the part identifier ("P1", "P2").
	ID string

	// Name is the display name resolved from the part-list, empty when
	// the part-list did not provide one.
	Name string

	// StaffCount is the number of staves used by this part (1 for a
	// single staff, 2 for a grand staff).
	StaffCount int

	// Measures holds each measure in document order, gap-filled.
	Measures []Measure
}

// Measure is one <measure> element.
type Measure struct {
	// Number is the 1-indexed measure number.
	Number int

	// Attributes carries divisions, key, time, and clefs when the
	// measure declares an <attributes> block.
	Attributes *Attributes

	// Elements holds notes, rests, and timing cursors in document order.
	Elements []Element

	// Synthesized marks measures fabricated to fill numbering gaps.
	Synthesized bool
}

// Attributes is the timing and notation context from <attributes>.
type Attributes struct {
	// Divisions is the source file's ticks-per-quarter. 0 when the
	// element is absent, -1 when it is declared but unusable.
	Divisions int

	// Key is the key signature, nil when absent.
	Key *Key

	// Time is the time signature, nil when absent.
	Time *TimeSignature

	// Clefs lists per-staff clefs declared in this block.
	Clefs []ClefElement
}

// Key is a <key> element.
type Key struct {
	// Fifths is the circle-of-fifths position (-7..+7, 0 = C major).
	Fifths int

	// Mode is "major", "minor", etc.
	Mode string
}

// TimeSignature is a <time> element.
type TimeSignature struct {
	Beats    int
	BeatType int
}

// ClefElement is a <clef> element.
type ClefElement struct {
	// StaffNumber is the 1-indexed staff this clef applies to.
	StaffNumber int

	// Sign is the clef sign: "G", "F", "C".
	Sign string

	// Line is the staff line the clef sits on.
	Line int
}

// ElementKind is the closed set of measure element kinds the importer
// understands. Anything else lands on the unrecognized arm and takes
// the skip-and-warn path.
type ElementKind int

const (
	// ElementNote is a pitched <note>.
	ElementNote ElementKind = iota

	// ElementRest is a <note> carrying <rest/>.
	ElementRest

	// ElementBackup moves the timing cursor backward.
	ElementBackup

	// ElementForward moves the timing cursor forward.
	ElementForward
)

// Element is a tagged variant over measure content.
type Element struct {
	Kind ElementKind

	// Note is set for ElementNote and ElementRest.
	Note *NoteElement

	// Duration is set for ElementBackup and ElementForward, in source
	// division units.
	Duration int
}

// NoteElement is a parsed <note>. A rest is a NoteElement with Rest
// set and no pitch.
type NoteElement struct {
	// Step is the note letter "C".."B", empty for rests.
	Step string

	// Octave is the scientific octave number (C4 = middle C).
	Octave int

	// Alter is the chromatic alteration (-2..+2).
	Alter int

	// Duration is in source division units.
	Duration int

	// Voice is the declared voice number, default 1.
	Voice int

	// Staff is the declared staff number, default 1.
	Staff int

	// Rest marks the element as a rest.
	Rest bool

	// Chord marks a note starting at the same tick as the previous one.
	Chord bool

	// TieStart and TieStop carry <tie type="start"/"stop"> markers.
	TieStart bool
	TieStop  bool

	// Type is the notated value ("quarter", "eighth"), informational.
	Type string
}
