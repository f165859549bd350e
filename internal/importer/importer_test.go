package importer

import (
	"bytes"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partwise/partwise/internal/diag"
	"github.com/partwise/partwise/internal/score"
)

const completeDoc = `<?xml version="1.0" encoding="UTF-8"?>
<score-partwise version="3.1">
  <work><work-title>Sonatina</work-title></work>
  <identification>
    <creator type="composer">Clementi</creator>
    <encoding><software>NotationApp 5</software></encoding>
  </identification>
  <part-list>
    <score-part id="P1"><part-name>Piano</part-name></score-part>
  </part-list>
  <part id="P1">
    <measure number="1">
      <attributes>
        <divisions>480</divisions>
        <key><fifths>0</fifths></key>
        <time><beats>4</beats><beat-type>4</beat-type></time>
        <clef><sign>G</sign><line>2</line></clef>
      </attributes>
      <sound tempo="100"/>
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>480</duration></note>
      <note><pitch><step>E</step><octave>4</octave></pitch><duration>480</duration></note>
      <note><pitch><step>G</step><octave>4</octave></pitch><duration>480</duration></note>
      <note><pitch><step>C</step><octave>5</octave></pitch><duration>480</duration></note>
    </measure>
  </part>
</score-partwise>`

func TestImport_CompleteDocument(t *testing.T) {
	result, err := Import([]byte(completeDoc), "sonatina.musicxml")
	require.NoError(t, err)

	assert.False(t, result.PartialImport)
	assert.Empty(t, result.Warnings)

	assert.Equal(t, "musicxml", result.Metadata.Format)
	assert.Equal(t, "3.1", result.Metadata.Version)
	assert.Equal(t, "sonatina.musicxml", result.Metadata.FileName)
	assert.Equal(t, "Sonatina", result.Metadata.WorkTitle)
	assert.Equal(t, "Clementi", result.Metadata.Composer)
	assert.Equal(t, "NotationApp 5", result.Metadata.Software)
	assert.Equal(t, "UTF-8", result.Metadata.Encoding)

	assert.Equal(t, 1, result.Statistics.InstrumentCount)
	assert.Equal(t, 1, result.Statistics.StaffCount)
	assert.Equal(t, 1, result.Statistics.VoiceCount)
	assert.Equal(t, 4, result.Statistics.NoteCount)
	assert.Equal(t, score.Tick(3840), result.Statistics.DurationTicks)
	assert.Zero(t, result.Statistics.WarningCount)
	assert.Zero(t, result.Statistics.SkippedElementCount)

	tempo, ok := result.Score.TempoAt(0)
	require.True(t, ok)
	assert.Equal(t, score.BPM(100), tempo.BPM)
}

func TestImport_Latin1Document(t *testing.T) {
	doc := `<?xml version="1.0" encoding="ISO-8859-1"?>
<score-partwise>
  <identification><creator type="composer">Faur!</creator></identification>
  <part-list>
    <score-part id="P1"><part-name>Piano</part-name></score-part>
  </part-list>
  <part id="P1">
    <measure number="1">
      <attributes><divisions>480</divisions><time><beats>4</beats><beat-type>4</beat-type></time><clef><sign>G</sign><line>2</line></clef></attributes>
      <sound tempo="100"/>
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>480</duration></note>
    </measure>
  </part>
</score-partwise>`
	data := bytes.Replace([]byte(doc), []byte("Faur!"), []byte{'F', 'a', 'u', 'r', 0xe9}, 1)

	result, err := Import(data, "faure.xml")
	require.NoError(t, err)

	assert.Equal(t, "ISO-8859-1", result.Metadata.Encoding)
	assert.Equal(t, "Fauré", result.Metadata.Composer)
	assert.False(t, result.PartialImport)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, diag.SeverityInfo, result.Warnings[0].Severity)
	assert.Equal(t, diag.CategoryStructuralIssues, result.Warnings[0].Category)
	assert.Contains(t, result.Warnings[0].Message, "ISO-8859-1")
}

func TestImport_TruncatedInstrumentKeepsTheRest(t *testing.T) {
	doc := `<score-partwise>
  <part-list>
    <score-part id="P1"><part-name>Violin</part-name></score-part>
    <score-part id="P2"><part-name>Viola</part-name></score-part>
    <score-part id="P3"><part-name>Cello</part-name></score-part>
  </part-list>
  <part id="P1">
    <measure number="1">
      <attributes><divisions>480</divisions><time><beats>4</beats><beat-type>4</beat-type></time><clef><sign>G</sign><line>2</line></clef></attributes>
      <sound tempo="90"/>
      <note><pitch><step>A</step><octave>4</octave></pitch><duration>480</duration></note>
    </measure>
    <measure number="2">
      <note><pitch><step>B</step><octave>4</octave></pitch><duration>480</duration></note>
    </measure>
  </part>
  <part id="P2">
    <measure number="1">
      <attributes><divisions>480</divisions><clef><sign>C</sign><line>3</line></clef></attributes>
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>480</duration></note>
    </measure>
    <measure number="2">
      <attributes><divisions>oops</divisions></attributes>
      <note><pitch><step>D</step><octave>4</octave></pitch><duration>480</duration></note>
    </measure>
  </part>
  <part id="P3">
    <measure number="1">
      <attributes><divisions>480</divisions><clef><sign>F</sign><line>4</line></clef></attributes>
      <note><pitch><step>C</step><octave>3</octave></pitch><duration>480</duration></note>
    </measure>
    <measure number="2">
      <note><pitch><step>G</step><octave>2</octave></pitch><duration>480</duration></note>
    </measure>
  </part>
</score-partwise>`

	result, err := Import([]byte(doc), "quartet.xml")
	require.NoError(t, err)

	assert.True(t, result.PartialImport)
	require.Len(t, result.Score.Instruments, 3)

	// The instrument with the broken measure keeps only measure 1.
	assert.Equal(t, 2, result.Score.Instruments[0].NoteCount())
	assert.Equal(t, 1, result.Score.Instruments[1].NoteCount())
	assert.Equal(t, 2, result.Score.Instruments[2].NoteCount())

	var truncation *diag.Warning
	for i := range result.Warnings {
		if result.Warnings[i].Category == diag.CategoryPartialImport {
			truncation = &result.Warnings[i]
		}
	}
	require.NotNil(t, truncation)
	assert.Equal(t, diag.SeverityError, truncation.Severity)
	assert.Contains(t, truncation.Message, "Instrument 'Viola' truncated at measure 2")
}

func TestImport_RestOnlyDocumentRejected(t *testing.T) {
	doc := `<score-partwise>
  <part id="P1">
    <measure number="1">
      <attributes><divisions>480</divisions><time><beats>4</beats><beat-type>4</beat-type></time><clef><sign>G</sign><line>2</line></clef></attributes>
      <sound tempo="100"/>
      <note><rest/><duration>1920</duration></note>
    </measure>
  </part>
</score-partwise>`

	_, err := Import([]byte(doc), "rests.xml")
	require.Error(t, err)
	assert.True(t, IsNoValidContent(err))

	var ie *ImportError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, CodeNoValidContent, ie.Code)
}

func TestImport_GarbageRejectedWithAttempts(t *testing.T) {
	_, err := Import([]byte("definitely not music"), "garbage.bin")
	require.Error(t, err)
	assert.True(t, IsUnparseable(err))

	var ie *ImportError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, CodeUnparseableDocument, ie.Code)
	require.Len(t, ie.Attempts, 3)
	assert.Equal(t, "UTF-8", ie.Attempts[0].Encoding)
	assert.Equal(t, "ISO-8859-1", ie.Attempts[1].Encoding)
	assert.Equal(t, "Windows-1252", ie.Attempts[2].Encoding)
}

func TestImport_EmptyInputRejected(t *testing.T) {
	_, err := Import(nil, "empty.xml")
	require.Error(t, err)
	assert.True(t, IsUnparseable(err))
}

func TestImportReader(t *testing.T) {
	result, err := ImportReader(bytes.NewReader([]byte(completeDoc)), "sonatina.musicxml")
	require.NoError(t, err)
	assert.Equal(t, 4, result.Statistics.NoteCount)

	_, err = ImportReader(iotest.ErrReader(errors.New("broken pipe")), "stream")
	require.Error(t, err)
	assert.True(t, IsUnparseable(err))
}

func TestImport_DeterministicSerialization(t *testing.T) {
	first, err := Import([]byte(completeDoc), "sonatina.musicxml")
	require.NoError(t, err)
	firstJSON, err := first.Serialize()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := Import([]byte(completeDoc), "sonatina.musicxml")
		require.NoError(t, err)
		againJSON, err := again.Serialize()
		require.NoError(t, err)
		assert.Equal(t, firstJSON, againJSON)
	}
}

func TestImportResult_CanonicalMapShape(t *testing.T) {
	result, err := Import([]byte(completeDoc), "sonatina.musicxml")
	require.NoError(t, err)

	data, err := result.Serialize()
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"format":"musicxml"`)
	assert.Contains(t, out, `"version":"3.1"`)
	assert.Contains(t, out, `"work_title":"Sonatina"`)
	assert.Contains(t, out, `"note_count":4`)
	assert.Contains(t, out, `"partial_import":false`)
	assert.Contains(t, out, `"warnings":[]`)
}
