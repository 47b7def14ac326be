package chat

import "errors"

// ErrEmptyInput rejects a turn before any state is touched.
var ErrEmptyInput = errors.New("no input provided")

// GenerationError wraps a backend failure: the backend raised, timed
// out, or returned unusable output. The stored conversation is
// untouched when this is returned.
type GenerationError struct {
	Cause error
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Cause.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
