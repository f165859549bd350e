// Package importer converts parsed MusicXML documents into the score
// aggregate and assembles the final import result.
//
// The pipeline is Parse -> Convert -> Assemble. Conversion walks the
// intermediate document part by part: timing is translated losslessly
// from source divisions to 960 PPQ through rational arithmetic,
// missing structural elements (tempo, time signature, clef) are filled
// with recorded defaults, and staves whose notes violate the
// single-voice invariant are redistributed across up to four voices.
//
// Recovery is scoped tightly. A defective note is skipped, a
// defective measure truncates its instrument, and only a document
// with no valid musical content at all fails the import. Every
// recovery records a diagnostic; nothing is dropped silently.
package importer
