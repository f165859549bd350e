package mxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/partwise/partwise/internal/diag"
)

// Parse decodes and tokenizes a MusicXML document, walking the
// encoding ladder until one attempt tokenizes cleanly. Parser-level
// diagnostics are recorded into ctx only for the attempt that is
// actually used; failed attempts leave no trace beyond the returned
// error when all of them fail.
func Parse(data []byte, ctx *diag.Context) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Message: "document is empty"}
	}

	var attempts []EncodingAttempt
	for _, enc := range encodingLadder() {
		decoded, err := enc.decode(data)
		if err != nil {
			attempts = append(attempts, EncodingAttempt{Encoding: enc.name, Reason: err.Error()})
			continue
		}
		if enc.name == "UTF-8" && !utf8.Valid(decoded) {
			attempts = append(attempts, EncodingAttempt{Encoding: enc.name, Reason: "invalid UTF-8 byte sequence"})
			continue
		}

		scratch := diag.NewContext()
		doc, err := parseDocument(decoded, scratch)
		if err != nil {
			attempts = append(attempts, EncodingAttempt{Encoding: enc.name, Reason: err.Error()})
			continue
		}

		ctx.Merge(scratch)
		doc.Encoding = enc.name
		if enc.name != "UTF-8" {
			ctx.Warn(diag.SeverityInfo, diag.CategoryStructuralIssues,
				"Document decoded using %s encoding", enc.name)
		}
		return doc, nil
	}

	return nil, &ParseError{
		Message:  "no text encoding yielded parseable XML",
		Attempts: attempts,
	}
}

type parser struct {
	d   *xml.Decoder
	ctx *diag.Context
}

func parseDocument(data []byte, ctx *diag.Context) (*Document, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	// The ladder already produced UTF-8; declared charset labels are a
	// statement about the original bytes, not the decoded stream.
	d.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	p := &parser{d: d, ctx: ctx}

	root, err := p.findRoot()
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Version:   "3.1",
		PartNames: make(map[string]string),
	}
	for _, attr := range root.Attr {
		if attr.Name.Local == "version" && attr.Value != "" {
			doc.Version = attr.Value
		}
	}

	if err := p.parseScore(doc); err != nil {
		return nil, err
	}
	if len(doc.Parts) == 0 {
		return nil, errors.New("document contains no parts")
	}
	return doc, nil
}

// findRoot scans past prolog, comments, and doctype to the root
// element, which must be <score-partwise>.
func (p *parser) findRoot() (xml.StartElement, error) {
	for {
		tok, err := p.d.Token()
		if err == io.EOF {
			return xml.StartElement{}, errors.New("document has no root element")
		}
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("tokenizer failed before root element: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			if start.Name.Local != "score-partwise" {
				return xml.StartElement{}, fmt.Errorf("unsupported root element <%s>, want <score-partwise>", start.Name.Local)
			}
			return start, nil
		}
	}
}

func (p *parser) parseScore(doc *Document) error {
	for {
		tok, err := p.d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("tokenizer failed in score body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "work":
				if err := p.parseWork(doc); err != nil {
					return err
				}
			case "movement-title":
				text, err := p.elementText()
				if err != nil {
					return err
				}
				doc.MovementTitle = text
			case "identification":
				if err := p.parseIdentification(doc); err != nil {
					return err
				}
			case "part-list":
				if err := p.parsePartList(doc); err != nil {
					return err
				}
			case "part":
				id := attrValue(t, "id")
				if id == "" {
					id = fmt.Sprintf("P%d", len(doc.Parts)+1)
				}
				part, err := p.parsePart(id, doc)
				if err != nil {
					return err
				}
				doc.Parts = append(doc.Parts, part)
			default:
				if err := p.d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p *parser) parseWork(doc *Document) error {
	for {
		tok, err := p.d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "work-title" {
				text, err := p.elementText()
				if err != nil {
					return err
				}
				doc.WorkTitle = text
				continue
			}
			if err := p.d.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p *parser) parseIdentification(doc *Document) error {
	for {
		tok, err := p.d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "creator":
				kind := attrValue(t, "type")
				text, err := p.elementText()
				if err != nil {
					return err
				}
				if kind == "composer" && doc.Composer == "" {
					doc.Composer = text
				}
			case "encoding":
				if err := p.parseEncodingMeta(doc); err != nil {
					return err
				}
			default:
				if err := p.d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p *parser) parseEncodingMeta(doc *Document) error {
	for {
		tok, err := p.d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "software" && doc.Software == "" {
				text, err := p.elementText()
				if err != nil {
					return err
				}
				doc.Software = text
				continue
			}
			if err := p.d.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p *parser) parsePartList(doc *Document) error {
	for {
		tok, err := p.d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "score-part" {
				id := attrValue(t, "id")
				name, err := p.parseScorePart()
				if err != nil {
					return err
				}
				if id != "" && name != "" {
					doc.PartNames[id] = name
				}
				continue
			}
			if err := p.d.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p *parser) parseScorePart() (string, error) {
	name := ""
	for {
		tok, err := p.d.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "part-name" {
				text, err := p.elementText()
				if err != nil {
					return "", err
				}
				name = text
				continue
			}
			if err := p.d.Skip(); err != nil {
				return "", err
			}
		case xml.EndElement:
			return name, nil
		}
	}
}

func (p *parser) parsePart(id string, doc *Document) (Part, error) {
	part := Part{
		ID:         id,
		Name:       doc.PartNames[id],
		StaffCount: 1,
	}
	p.ctx.SetInstrument(displayName(part))
	defer p.ctx.ClearCursor()

	lastNumber := 0
	stavesDecl := 1
	for {
		tok, err := p.d.Token()
		if err != nil {
			return Part{}, fmt.Errorf("tokenizer failed in part %s: %w", id, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "measure" {
				number := intOr(attrValue(t, "number"), lastNumber+1)
				if number <= 0 {
					number = lastNumber + 1
				}
				p.ctx.SetMeasure(number)
				measure, decl, err := p.parseMeasure(number, doc)
				if err != nil {
					return Part{}, err
				}
				if decl > stavesDecl {
					stavesDecl = decl
				}
				part.Measures = append(part.Measures, measure)
				if number > lastNumber {
					lastNumber = number
				}
				continue
			}
			if err := p.d.Skip(); err != nil {
				return Part{}, err
			}
		case xml.EndElement:
			part.StaffCount = detectStaffCount(part.Measures, stavesDecl)
			fillMeasureGaps(&part, p.ctx)
			return part, nil
		}
	}
}

// detectStaffCount takes the larger of the declared <staves> value and
// the highest staff number any note actually uses.
func detectStaffCount(measures []Measure, stavesDecl int) int {
	max := stavesDecl
	if max < 1 {
		max = 1
	}
	for m := range measures {
		for _, el := range measures[m].Elements {
			if el.Note != nil && el.Note.Staff > max {
				max = el.Note.Staff
			}
		}
	}
	return max
}

// fillMeasureGaps synthesizes empty measures for holes in the measure
// numbering (1, 2, 4 -> synthesize 3). One warning is recorded per
// contiguous gap, naming the time signature the synthesized measures
// inherit.
func fillMeasureGaps(part *Part, ctx *diag.Context) {
	if len(part.Measures) == 0 {
		return
	}

	lastTime := TimeSignature{Beats: 4, BeatType: 4}
	filled := make([]Measure, 0, len(part.Measures))
	prev := 0
	for _, m := range part.Measures {
		if prev > 0 && m.Number > prev+1 {
			first, last := prev+1, m.Number-1
			for n := first; n <= last; n++ {
				filled = append(filled, Measure{Number: n, Synthesized: true})
			}
			ctx.SetMeasure(first)
			ctx.Warn(diag.SeverityWarning, diag.CategoryStructuralIssues,
				"Measures %d-%d missing - synthesized %d empty measure(s) using %d/%d time signature",
				first, last, last-first+1, lastTime.Beats, lastTime.BeatType)
		}
		if m.Attributes != nil && m.Attributes.Time != nil {
			lastTime = *m.Attributes.Time
		}
		filled = append(filled, m)
		if m.Number > prev {
			prev = m.Number
		}
	}
	part.Measures = filled
}

// measureIgnorable lists measure children that carry no note content
// the importer needs; they are skipped without a diagnostic.
var measureIgnorable = map[string]bool{
	"print":        true,
	"barline":      true,
	"harmony":      true,
	"figured-bass": true,
	"grouping":     true,
	"link":         true,
	"bookmark":     true,
	"listening":    true,
}

func (p *parser) parseMeasure(number int, doc *Document) (Measure, int, error) {
	measure := Measure{Number: number}
	stavesDecl := 0
	for {
		tok, err := p.d.Token()
		if err != nil {
			return Measure{}, 0, fmt.Errorf("tokenizer failed in measure %d: %w", number, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "attributes":
				attrs, decl, err := p.parseAttributes()
				if err != nil {
					return Measure{}, 0, err
				}
				if decl > stavesDecl {
					stavesDecl = decl
				}
				measure.Attributes = mergeAttributes(measure.Attributes, attrs)
			case "note":
				note, err := p.parseNote()
				if err != nil {
					return Measure{}, 0, err
				}
				kind := ElementNote
				if note.Rest || note.Step == "" {
					note.Rest = true
					kind = ElementRest
				}
				measure.Elements = append(measure.Elements, Element{Kind: kind, Note: note})
			case "backup", "forward":
				kind := ElementBackup
				if t.Name.Local == "forward" {
					kind = ElementForward
				}
				duration, err := p.parseDurationElement()
				if err != nil {
					return Measure{}, 0, err
				}
				if duration > 0 {
					measure.Elements = append(measure.Elements, Element{Kind: kind, Duration: duration})
				}
			case "sound":
				if bpm := tempoAttr(t); bpm > 0 && doc.TempoBPM == 0 {
					doc.TempoBPM = bpm
				}
				if err := p.d.Skip(); err != nil {
					return Measure{}, 0, err
				}
			case "direction":
				bpm, err := p.parseDirection()
				if err != nil {
					return Measure{}, 0, err
				}
				if bpm > 0 && doc.TempoBPM == 0 {
					doc.TempoBPM = bpm
				}
			default:
				if !measureIgnorable[t.Name.Local] {
					p.ctx.Warn(diag.SeverityWarning, diag.CategoryStructuralIssues,
						"Skipping unrecognized element <%s> - content not imported", t.Name.Local)
					p.ctx.SkipElement()
				}
				if err := p.d.Skip(); err != nil {
					return Measure{}, 0, err
				}
			}
		case xml.EndElement:
			return measure, stavesDecl, nil
		}
	}
}

// mergeAttributes folds a second <attributes> block in one measure
// into the first; later values win for scalars, clef lists append.
func mergeAttributes(existing, incoming *Attributes) *Attributes {
	if existing == nil {
		return incoming
	}
	if incoming == nil {
		return existing
	}
	if incoming.Divisions != 0 {
		existing.Divisions = incoming.Divisions
	}
	if incoming.Key != nil {
		existing.Key = incoming.Key
	}
	if incoming.Time != nil {
		existing.Time = incoming.Time
	}
	existing.Clefs = append(existing.Clefs, incoming.Clefs...)
	return existing
}

func (p *parser) parseAttributes() (*Attributes, int, error) {
	attrs := &Attributes{}
	stavesDecl := 0
	for {
		tok, err := p.d.Token()
		if err != nil {
			return nil, 0, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "divisions":
				text, err := p.elementText()
				if err != nil {
					return nil, 0, err
				}
				// A declared but unusable divisions value is kept as -1
				// so the converter can fail the measure rather than
				// silently misplacing every note after it.
				v := intOr(text, -1)
				if v <= 0 {
					v = -1
				}
				attrs.Divisions = v
			case "staves":
				text, err := p.elementText()
				if err != nil {
					return nil, 0, err
				}
				stavesDecl = intOr(text, 0)
			case "key":
				key, err := p.parseKey()
				if err != nil {
					return nil, 0, err
				}
				attrs.Key = key
			case "time":
				ts, err := p.parseTime()
				if err != nil {
					return nil, 0, err
				}
				attrs.Time = ts
			case "clef":
				staffNumber := intOr(attrValue(t, "number"), 1)
				clef, err := p.parseClef(staffNumber)
				if err != nil {
					return nil, 0, err
				}
				attrs.Clefs = append(attrs.Clefs, clef)
			default:
				if err := p.d.Skip(); err != nil {
					return nil, 0, err
				}
			}
		case xml.EndElement:
			return attrs, stavesDecl, nil
		}
	}
}

func (p *parser) parseKey() (*Key, error) {
	key := &Key{Mode: "major"}
	for {
		tok, err := p.d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "fifths":
				text, err := p.elementText()
				if err != nil {
					return nil, err
				}
				key.Fifths = intOr(text, 0)
			case "mode":
				text, err := p.elementText()
				if err != nil {
					return nil, err
				}
				if text != "" {
					key.Mode = text
				}
			default:
				if err := p.d.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			return key, nil
		}
	}
}

func (p *parser) parseTime() (*TimeSignature, error) {
	ts := &TimeSignature{Beats: 4, BeatType: 4}
	for {
		tok, err := p.d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "beats":
				text, err := p.elementText()
				if err != nil {
					return nil, err
				}
				ts.Beats = intOr(text, 4)
			case "beat-type":
				text, err := p.elementText()
				if err != nil {
					return nil, err
				}
				ts.BeatType = intOr(text, 4)
			default:
				if err := p.d.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			return ts, nil
		}
	}
}

func (p *parser) parseClef(staffNumber int) (ClefElement, error) {
	clef := ClefElement{StaffNumber: staffNumber, Sign: "G", Line: 2}
	for {
		tok, err := p.d.Token()
		if err != nil {
			return ClefElement{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sign":
				text, err := p.elementText()
				if err != nil {
					return ClefElement{}, err
				}
				if text != "" {
					clef.Sign = text
				}
			case "line":
				text, err := p.elementText()
				if err != nil {
					return ClefElement{}, err
				}
				clef.Line = intOr(text, defaultClefLine(clef.Sign))
			default:
				if err := p.d.Skip(); err != nil {
					return ClefElement{}, err
				}
			}
		case xml.EndElement:
			if clef.Line == 0 {
				clef.Line = defaultClefLine(clef.Sign)
			}
			return clef, nil
		}
	}
}

// defaultClefLine supplies the conventional line when <line> is absent.
func defaultClefLine(sign string) int {
	switch sign {
	case "F":
		return 4
	case "C":
		return 3
	default:
		return 2
	}
}

func (p *parser) parseNote() (*NoteElement, error) {
	note := &NoteElement{Octave: 4, Voice: 1, Staff: 1}
	for {
		tok, err := p.d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pitch":
				if err := p.parsePitch(note); err != nil {
					return nil, err
				}
			case "rest":
				note.Rest = true
				if err := p.d.Skip(); err != nil {
					return nil, err
				}
			case "duration":
				text, err := p.elementText()
				if err != nil {
					return nil, err
				}
				note.Duration = intOr(text, 0)
			case "voice":
				text, err := p.elementText()
				if err != nil {
					return nil, err
				}
				note.Voice = intOr(text, 1)
			case "staff":
				text, err := p.elementText()
				if err != nil {
					return nil, err
				}
				note.Staff = intOr(text, 1)
			case "type":
				text, err := p.elementText()
				if err != nil {
					return nil, err
				}
				note.Type = text
			case "chord":
				note.Chord = true
				if err := p.d.Skip(); err != nil {
					return nil, err
				}
			case "tie":
				switch attrValue(t, "type") {
				case "start":
					note.TieStart = true
				case "stop":
					note.TieStop = true
				}
				if err := p.d.Skip(); err != nil {
					return nil, err
				}
			default:
				if err := p.d.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			return note, nil
		}
	}
}

func (p *parser) parsePitch(note *NoteElement) error {
	for {
		tok, err := p.d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "step":
				text, err := p.elementText()
				if err != nil {
					return err
				}
				note.Step = strings.ToUpper(text)
			case "octave":
				text, err := p.elementText()
				if err != nil {
					return err
				}
				note.Octave = intOr(text, 4)
			case "alter":
				text, err := p.elementText()
				if err != nil {
					return err
				}
				note.Alter = intOr(text, 0)
			default:
				if err := p.d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p *parser) parseDurationElement() (int, error) {
	duration := 0
	for {
		tok, err := p.d.Token()
		if err != nil {
			return 0, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "duration" {
				text, err := p.elementText()
				if err != nil {
					return 0, err
				}
				duration = intOr(text, 0)
				continue
			}
			if err := p.d.Skip(); err != nil {
				return 0, err
			}
		case xml.EndElement:
			return duration, nil
		}
	}
}

// parseDirection scans a <direction> block for a tempo marking and
// skips everything else.
func (p *parser) parseDirection() (int, error) {
	bpm := 0
	for {
		tok, err := p.d.Token()
		if err != nil {
			return 0, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "sound" {
				if v := tempoAttr(t); v > 0 && bpm == 0 {
					bpm = v
				}
			}
			if err := p.d.Skip(); err != nil {
				return 0, err
			}
		case xml.EndElement:
			return bpm, nil
		}
	}
}

// elementText consumes the current element's content, returning its
// trimmed character data. Nested elements are consumed and ignored.
func (p *parser) elementText() (string, error) {
	var sb strings.Builder
	depth := 0
	for {
		tok, err := p.d.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return strings.TrimSpace(sb.String()), nil
			}
			depth--
		case xml.CharData:
			if depth == 0 {
				sb.Write(t)
			}
		}
	}
}

func attrValue(start xml.StartElement, name string) string {
	for _, attr := range start.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

// tempoAttr reads a tempo attribute, rounding fractional BPM to the
// nearest integer. Returns 0 when absent or unparseable.
func tempoAttr(start xml.StartElement) int {
	raw := attrValue(start, "tempo")
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0
	}
	return int(math.Round(v))
}

func intOr(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

func displayName(part Part) string {
	if part.Name != "" {
		return part.Name
	}
	return "Instrument " + part.ID
}
