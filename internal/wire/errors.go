package wire

import "errors"

// Codec error taxonomy (spec §4.1): unknown discriminants and malformed
// bodies are always typed so callers can distinguish "drop this one
// action" from "the whole batch/connection is broken".
var (
	// ErrShortBuffer means the buffer ended before a field could be
	// fully read.
	ErrShortBuffer = errors.New("wire: short buffer")

	// ErrUnknownDiscriminant means a 1-byte tag didn't match any known
	// Action or Event variant.
	ErrUnknownDiscriminant = errors.New("wire: unknown discriminant")

	// ErrMalformed means a field was structurally invalid (oversized
	// string, negative count, etc.) even though bytes were available.
	ErrMalformed = errors.New("wire: malformed field")
)
