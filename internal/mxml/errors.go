package mxml

import (
	"fmt"
	"strings"
)

// EncodingAttempt records why one rung of the decoding ladder failed.
type EncodingAttempt struct {
	// Encoding is the attempted encoding name.
	Encoding string `json:"encoding"`

	// Reason is the tokenizer or decoder error.
	Reason string `json:"reason"`
}

// ParseError is the structured whole-document failure: no encoding
// yielded parseable XML, or the root element was absent or invalid.
type ParseError struct {
	// Message summarizes the failure.
	Message string

	// Attempts lists every encoding tried and why it failed.
	Attempts []EncodingAttempt
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if len(e.Attempts) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %s", a.Encoding, a.Reason)
	}
	return fmt.Sprintf("%s (attempted encodings: %s)", e.Message, strings.Join(parts, "; "))
}
