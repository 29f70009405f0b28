package audio

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds indicates a slice or overlay outside the buffer.
	ErrOutOfBounds = errors.New("range outside buffer bounds")

	// ErrFormatMismatch indicates buffers with different rates or channel counts.
	ErrFormatMismatch = errors.New("buffer formats do not match")

	// ErrMisaligned indicates PCM data that does not divide into whole frames.
	ErrMisaligned = errors.New("PCM data is not frame aligned")
)

// TimelineInvariantError reports an operation that would corrupt the track:
// a range outside the current bounds or a combination of incompatible buffers.
type TimelineInvariantError struct {
	Op     string
	Offset int // frames
	Length int // frames
	Bound  int // frames available
	Want   Format
	Got    Format
	Err    error
}

// Error implements the error interface.
func (e *TimelineInvariantError) Error() string {
	switch {
	case errors.Is(e.Err, ErrFormatMismatch):
		return fmt.Sprintf("%s: %v: %s vs %s", e.Op, e.Err, e.Want, e.Got)
	case errors.Is(e.Err, ErrOutOfBounds):
		return fmt.Sprintf("%s: %v: [%d, %d) of %d frames", e.Op, e.Err, e.Offset, e.Offset+e.Length, e.Bound)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

// Unwrap returns the underlying sentinel.
func (e *TimelineInvariantError) Unwrap() error {
	return e.Err
}

func mismatch(op string, want, got Format) error {
	return &TimelineInvariantError{Op: op, Want: want, Got: got, Err: ErrFormatMismatch}
}

func outOfBounds(op string, offset, length, bound int) error {
	return &TimelineInvariantError{Op: op, Offset: offset, Length: length, Bound: bound, Err: ErrOutOfBounds}
}
