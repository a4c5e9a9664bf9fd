package colorbook

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by collaborators when a document or
	// background does not exist.
	ErrNotFound = errors.New("colorbook: not found")

	// ErrDecode matches every *DecodeError via errors.Is.
	ErrDecode = errors.New("colorbook: decode failure")
)

// DecodeError reports a raster that could not be decoded. The layer the
// raster was destined for is left unchanged.
type DecodeError struct {
	Source string // "history", "document", "background", "upload"
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("colorbook: decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports ErrDecode as a match so callers need not type-assert.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
