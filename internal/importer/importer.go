package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/partwise/partwise/internal/diag"
	"github.com/partwise/partwise/internal/mxml"
	"github.com/partwise/partwise/internal/score"
)

// Import runs the full pipeline on raw MusicXML bytes: parse with
// encoding recovery, convert to the score aggregate, assemble the
// result. fileName is carried into the metadata only.
//
// A returned *ImportResult may still be partial; check PartialImport.
// An error return means nothing usable was imported.
func Import(data []byte, fileName string) (*ImportResult, error) {
	return importBytes(data, fileName)
}

// ImportReader reads r to completion and imports the content.
func ImportReader(r io.Reader, fileName string) (*ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ImportError{
			Code:    CodeUnparseableDocument,
			Message: "document could not be read",
			cause:   fmt.Errorf("read input: %w", err),
		}
	}
	return importBytes(data, fileName)
}

func importBytes(data []byte, fileName string) (*ImportResult, error) {
	ctx := diag.NewContext()

	doc, err := mxml.Parse(data, ctx)
	if err != nil {
		ie := &ImportError{
			Code:    CodeUnparseableDocument,
			Message: "document could not be parsed",
			cause:   err,
		}
		var pe *mxml.ParseError
		if errors.As(err, &pe) {
			ie.Message = pe.Message
			ie.Attempts = pe.Attempts
		}
		return nil, ie
	}

	ids := score.NewIDGen()
	sc, err := Convert(doc, ids, ctx)
	if err != nil {
		return nil, &ImportError{
			Code:     CodeInternal,
			Message:  "conversion failed",
			Warnings: ctx.Finalize(),
			cause:    err,
		}
	}

	if !sc.HasNotes() {
		return nil, &ImportError{
			Code:     CodeNoValidContent,
			Message:  "no instrument produced any notes",
			Warnings: ctx.Finalize(),
		}
	}

	warnings := ctx.Finalize()
	return &ImportResult{
		Score: sc,
		Metadata: Metadata{
			Format:    "musicxml",
			Version:   doc.Version,
			FileName:  fileName,
			WorkTitle: doc.Title(),
			Composer:  doc.Composer,
			Software:  doc.Software,
			Encoding:  doc.Encoding,
		},
		Statistics:    computeStatistics(sc, ctx, warnings),
		Warnings:      warnings,
		PartialImport: ctx.HasErrors(),
	}, nil
}
