// Package mxml parses MusicXML documents into an intermediate model.
//
// The parser expects defective input: real-world exports routinely
// carry wrong text encodings, unrecognized vendor elements, and holes
// in the measure numbering. Recovery happens at the smallest possible
// scope:
//
//   - Encoding: decoding is attempted as UTF-8, then ISO-8859-1, then
//     Windows-1252; the first attempt whose XML tokenizes wins. Only
//     when every attempt fails is the whole parse an error.
//   - Elements: an unrecognized but well-formed sub-tree is skipped
//     with a recorded diagnostic; parsing continues at the next
//     sibling. An XML syntax error fails the whole encoding attempt,
//     since the tokenizer cannot resynchronize past it.
//   - Measures: gaps in the measure numbering are filled with
//     synthesized empty measures.
//
// The intermediate model mirrors the source document (parts, measures,
// element lists); it is not the domain aggregate. Conversion to the
// aggregate is the importer package's job.
package mxml
