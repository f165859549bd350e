package importer

import (
	"errors"
	"fmt"

	"github.com/partwise/partwise/internal/diag"
	"github.com/partwise/partwise/internal/mxml"
)

// ErrorCode identifies the terminal failure class of an import.
type ErrorCode string

const (
	// CodeUnparseableDocument means no encoding attempt yielded
	// tokenizable XML, or the document structure was unusable.
	CodeUnparseableDocument ErrorCode = "UNPARSEABLE_DOCUMENT"

	// CodeNoValidContent means the document parsed but no instrument
	// produced a single note. An empty score is a failure, never a
	// successful import.
	CodeNoValidContent ErrorCode = "NO_VALID_CONTENT"

	// CodeInternal covers invariant violations inside the converter.
	CodeInternal ErrorCode = "INTERNAL"
)

// ImportError is the terminal failure of an import call. It carries a
// report of every recovery strategy attempted: the encoding ladder for
// unparseable documents, the accumulated warnings for content-free
// ones.
type ImportError struct {
	Code    ErrorCode
	Message string

	// Attempts lists the encoding ladder outcome when the document
	// never tokenized.
	Attempts []mxml.EncodingAttempt

	// Warnings holds the diagnostics recorded before the import was
	// declared a failure.
	Warnings []diag.Warning

	cause error
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *ImportError) Unwrap() error {
	return e.cause
}

// IsUnparseable reports whether err is a document-level parse failure.
func IsUnparseable(err error) bool {
	var ie *ImportError
	return errors.As(err, &ie) && ie.Code == CodeUnparseableDocument
}

// IsNoValidContent reports whether err is an empty-content failure.
func IsNoValidContent(err error) bool {
	var ie *ImportError
	return errors.As(err, &ie) && ie.Code == CodeNoValidContent
}
