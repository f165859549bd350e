package score

// Instrument is one part of the score, holding one or more staves
// (e.g. a piano grand staff has two).
type Instrument struct {
	ID   InstrumentID `json:"id"`
	Name string       `json:"name"`

	// Kind selects the playback sound (e.g. "piano"). Always "piano"
	// until instrument mapping lands.
	Kind string `json:"kind"`

	Staves []Staff `json:"staves"`
}

// NewInstrument creates an instrument with no staves.
func NewInstrument(id InstrumentID, name string) Instrument {
	return Instrument{
		ID:   id,
		Name: name,
		Kind: "piano",
	}
}

// AddStaff appends a staff to the instrument.
func (i *Instrument) AddStaff(staff Staff) {
	i.Staves = append(i.Staves, staff)
}

// NoteCount counts notes across all staves.
func (i *Instrument) NoteCount() int {
	count := 0
	for s := range i.Staves {
		count += i.Staves[s].NoteCount()
	}
	return count
}
