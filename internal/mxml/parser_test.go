package mxml

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partwise/partwise/internal/diag"
)

const basicDoc = `<?xml version="1.0" encoding="UTF-8"?>
<score-partwise version="3.1">
  <work><work-title>Test Piece</work-title></work>
  <identification>
    <creator type="composer">Someone</creator>
    <encoding><software>TestWriter 2.0</software></encoding>
  </identification>
  <part-list>
    <score-part id="P1"><part-name>Piano</part-name></score-part>
  </part-list>
  <part id="P1">
    <measure number="1">
      <attributes>
        <divisions>480</divisions>
        <key><fifths>2</fifths><mode>major</mode></key>
        <time><beats>3</beats><beat-type>4</beat-type></time>
        <clef><sign>G</sign><line>2</line></clef>
      </attributes>
      <sound tempo="100"/>
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>480</duration><type>quarter</type></note>
      <note><pitch><step>D</step><octave>4</octave><alter>1</alter></pitch><duration>480</duration></note>
    </measure>
  </part>
</score-partwise>`

func TestParse_BasicDocument(t *testing.T) {
	ctx := diag.NewContext()
	doc, err := Parse([]byte(basicDoc), ctx)
	require.NoError(t, err)

	assert.Equal(t, "3.1", doc.Version)
	assert.Equal(t, "UTF-8", doc.Encoding)
	assert.Equal(t, "Test Piece", doc.WorkTitle)
	assert.Equal(t, "Test Piece", doc.Title())
	assert.Equal(t, "Someone", doc.Composer)
	assert.Equal(t, "TestWriter 2.0", doc.Software)
	assert.Equal(t, 100, doc.TempoBPM)
	assert.Equal(t, "Piano", doc.PartNames["P1"])

	require.Len(t, doc.Parts, 1)
	part := doc.Parts[0]
	assert.Equal(t, "P1", part.ID)
	assert.Equal(t, "Piano", part.Name)
	assert.Equal(t, 1, part.StaffCount)

	require.Len(t, part.Measures, 1)
	m := part.Measures[0]
	assert.Equal(t, 1, m.Number)
	require.NotNil(t, m.Attributes)
	assert.Equal(t, 480, m.Attributes.Divisions)
	require.NotNil(t, m.Attributes.Key)
	assert.Equal(t, 2, m.Attributes.Key.Fifths)
	require.NotNil(t, m.Attributes.Time)
	assert.Equal(t, 3, m.Attributes.Time.Beats)
	assert.Equal(t, 4, m.Attributes.Time.BeatType)
	require.Len(t, m.Attributes.Clefs, 1)
	assert.Equal(t, "G", m.Attributes.Clefs[0].Sign)

	require.Len(t, m.Elements, 2)
	assert.Equal(t, ElementNote, m.Elements[0].Kind)
	first := m.Elements[0].Note
	assert.Equal(t, "C", first.Step)
	assert.Equal(t, 4, first.Octave)
	assert.Equal(t, 480, first.Duration)
	assert.Equal(t, "quarter", first.Type)
	second := m.Elements[1].Note
	assert.Equal(t, "D", second.Step)
	assert.Equal(t, 1, second.Alter)

	assert.Zero(t, ctx.WarningCount())
	assert.Zero(t, ctx.SkippedElements())
}

func TestParse_MovementTitleFallback(t *testing.T) {
	doc := `<score-partwise>
  <movement-title>Second Movement</movement-title>
  <part id="P1"><measure number="1"/></part>
</score-partwise>`

	parsed, err := Parse([]byte(doc), diag.NewContext())
	require.NoError(t, err)
	assert.Equal(t, "Second Movement", parsed.Title())
}

func TestParse_RestChordTieBackupForward(t *testing.T) {
	doc := `<score-partwise>
  <part id="P1">
    <measure number="1">
      <attributes><divisions>480</divisions></attributes>
      <note><rest/><duration>480</duration></note>
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>960</duration><tie type="start"/></note>
      <note><chord/><pitch><step>E</step><octave>4</octave></pitch><duration>960</duration></note>
      <backup><duration>480</duration></backup>
      <forward><duration>240</duration></forward>
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>480</duration><tie type="stop"/><staff>2</staff><voice>3</voice></note>
    </measure>
  </part>
</score-partwise>`

	parsed, err := Parse([]byte(doc), diag.NewContext())
	require.NoError(t, err)

	elements := parsed.Parts[0].Measures[0].Elements
	require.Len(t, elements, 6)

	assert.Equal(t, ElementRest, elements[0].Kind)
	assert.True(t, elements[0].Note.Rest)

	assert.Equal(t, ElementNote, elements[1].Kind)
	assert.True(t, elements[1].Note.TieStart)

	assert.Equal(t, ElementNote, elements[2].Kind)
	assert.True(t, elements[2].Note.Chord)

	assert.Equal(t, ElementBackup, elements[3].Kind)
	assert.Equal(t, 480, elements[3].Duration)

	assert.Equal(t, ElementForward, elements[4].Kind)
	assert.Equal(t, 240, elements[4].Duration)

	last := elements[5].Note
	assert.True(t, last.TieStop)
	assert.Equal(t, 2, last.Staff)
	assert.Equal(t, 3, last.Voice)

	// A note on staff 2 raises the detected staff count.
	assert.Equal(t, 2, parsed.Parts[0].StaffCount)
}

func TestParse_UnrecognizedElementSkippedWithWarning(t *testing.T) {
	doc := `<score-partwise>
  <part id="P1">
    <measure number="1">
      <attributes><divisions>480</divisions></attributes>
      <fermata-cloud><inner>junk</inner></fermata-cloud>
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>480</duration></note>
    </measure>
  </part>
</score-partwise>`

	ctx := diag.NewContext()
	parsed, err := Parse([]byte(doc), ctx)
	require.NoError(t, err)

	// The note after the unknown element still parses.
	require.Len(t, parsed.Parts[0].Measures[0].Elements, 1)
	assert.Equal(t, 1, ctx.SkippedElements())

	warnings := ctx.Finalize()
	require.Len(t, warnings, 1)
	assert.Equal(t, diag.SeverityWarning, warnings[0].Severity)
	assert.Equal(t, diag.CategoryStructuralIssues, warnings[0].Category)
	assert.Contains(t, warnings[0].Message, "fermata-cloud")
	assert.Equal(t, 1, warnings[0].MeasureNumber)
}

func TestParse_IgnorableElementsAreSilent(t *testing.T) {
	doc := `<score-partwise>
  <part id="P1">
    <measure number="1">
      <print new-page="yes"/>
      <barline location="right"><bar-style>light-heavy</bar-style></barline>
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>480</duration></note>
    </measure>
  </part>
</score-partwise>`

	ctx := diag.NewContext()
	_, err := Parse([]byte(doc), ctx)
	require.NoError(t, err)
	assert.Zero(t, ctx.WarningCount())
	assert.Zero(t, ctx.SkippedElements())
}

func TestParse_MeasureGapFilled(t *testing.T) {
	doc := `<score-partwise>
  <part id="P1">
    <measure number="1">
      <attributes><divisions>480</divisions><time><beats>3</beats><beat-type>4</beat-type></time></attributes>
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>480</duration></note>
    </measure>
    <measure number="2"/>
    <measure number="5">
      <note><pitch><step>D</step><octave>4</octave></pitch><duration>480</duration></note>
    </measure>
  </part>
</score-partwise>`

	ctx := diag.NewContext()
	parsed, err := Parse([]byte(doc), ctx)
	require.NoError(t, err)

	measures := parsed.Parts[0].Measures
	require.Len(t, measures, 5)
	assert.Equal(t, []int{1, 2, 3, 4, 5},
		[]int{measures[0].Number, measures[1].Number, measures[2].Number, measures[3].Number, measures[4].Number})
	assert.True(t, measures[2].Synthesized)
	assert.True(t, measures[3].Synthesized)
	assert.False(t, measures[4].Synthesized)

	warnings := ctx.Finalize()
	require.Len(t, warnings, 1)
	assert.Equal(t, diag.SeverityWarning, warnings[0].Severity)
	assert.Equal(t, diag.CategoryStructuralIssues, warnings[0].Category)
	assert.Contains(t, warnings[0].Message, "Measures 3-4 missing")
	assert.Contains(t, warnings[0].Message, "3/4 time signature")
}

func TestParse_InvalidDivisionsKeptAsSentinel(t *testing.T) {
	doc := `<score-partwise>
  <part id="P1">
    <measure number="1">
      <attributes><divisions>abc</divisions></attributes>
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>480</duration></note>
    </measure>
  </part>
</score-partwise>`

	parsed, err := Parse([]byte(doc), diag.NewContext())
	require.NoError(t, err)
	assert.Equal(t, -1, parsed.Parts[0].Measures[0].Attributes.Divisions)
}

func TestParse_DirectionTempo(t *testing.T) {
	doc := `<score-partwise>
  <part id="P1">
    <measure number="1">
      <direction placement="above">
        <direction-type><metronome><beat-unit>quarter</beat-unit><per-minute>80</per-minute></metronome></direction-type>
        <sound tempo="80"/>
      </direction>
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>480</duration></note>
    </measure>
  </part>
</score-partwise>`

	parsed, err := Parse([]byte(doc), diag.NewContext())
	require.NoError(t, err)
	assert.Equal(t, 80, parsed.TempoBPM)
}

func TestParse_Latin1Fallback(t *testing.T) {
	doc := `<?xml version="1.0" encoding="ISO-8859-1"?>
<score-partwise>
  <identification><creator type="composer">Caf!</creator></identification>
  <part id="P1">
    <measure number="1">
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>480</duration></note>
    </measure>
  </part>
</score-partwise>`
	// Swap the placeholder for a raw Latin-1 e-acute byte, which is
	// invalid UTF-8 on its own.
	data := bytes.Replace([]byte(doc), []byte("Caf!"), []byte{'C', 'a', 'f', 0xe9}, 1)

	ctx := diag.NewContext()
	parsed, err := Parse(data, ctx)
	require.NoError(t, err)

	assert.Equal(t, "ISO-8859-1", parsed.Encoding)
	assert.Equal(t, "Café", parsed.Composer)

	warnings := ctx.Finalize()
	require.Len(t, warnings, 1)
	assert.Equal(t, diag.SeverityInfo, warnings[0].Severity)
	assert.Equal(t, diag.CategoryStructuralIssues, warnings[0].Category)
	assert.Contains(t, warnings[0].Message, "ISO-8859-1")
}

func TestParse_InvalidRootFailsAllEncodings(t *testing.T) {
	_, err := Parse([]byte(`<not-music/>`), diag.NewContext())
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Len(t, pe.Attempts, 3)
	assert.Equal(t, "UTF-8", pe.Attempts[0].Encoding)
	assert.Equal(t, "ISO-8859-1", pe.Attempts[1].Encoding)
	assert.Equal(t, "Windows-1252", pe.Attempts[2].Encoding)
	for _, attempt := range pe.Attempts {
		assert.Contains(t, attempt.Reason, "not-music")
	}
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse([]byte("   \n"), diag.NewContext())
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Empty(t, pe.Attempts)
}

func TestParse_NonXMLInput(t *testing.T) {
	_, err := Parse([]byte("this is not a score"), diag.NewContext())
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Len(t, pe.Attempts, 3)
}

func TestEncodingLadder_Windows1252(t *testing.T) {
	ladder := encodingLadder()
	require.Len(t, ladder, 3)

	// 0x93 is a curly quote in Windows-1252.
	decoded, err := ladder[2].decode([]byte{0x93})
	require.NoError(t, err)
	assert.Equal(t, "“", string(decoded))
}
