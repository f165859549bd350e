package mxml

import (
	"golang.org/x/text/encoding/charmap"
)

// encodingAttempt is one rung of the decoding ladder. The ladder order
// is fixed: UTF-8, then ISO-8859-1, then Windows-1252. An attempt
// succeeds purely when the XML tokenizer completes on its output; no
// plausibility scoring is applied.
type encodingAttempt struct {
	name   string
	decode func([]byte) ([]byte, error)
}

func encodingLadder() []encodingAttempt {
	return []encodingAttempt{
		{
			name: "UTF-8",
			// Passthrough; Parse rejects invalid UTF-8 before the
			// tokenizer runs, since the tokenizer would silently
			// substitute replacement characters.
			decode: func(data []byte) ([]byte, error) { return data, nil },
		},
		{
			name: "ISO-8859-1",
			decode: func(data []byte) ([]byte, error) {
				return charmap.ISO8859_1.NewDecoder().Bytes(data)
			},
		},
		{
			name: "Windows-1252",
			decode: func(data []byte) ([]byte, error) {
				return charmap.Windows1252.NewDecoder().Bytes(data)
			},
		},
	}
}
