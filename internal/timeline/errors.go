package timeline

import (
	"errors"
	"fmt"
)

var errFinalized = errors.New("track already finalized")

// ErrInvalidBackground is returned for a background bed that is not one
// minute of audio.
var ErrInvalidBackground = errors.New("background must be exactly one minute")

// AnnouncementError reports which announcement could not be produced.
type AnnouncementError struct {
	Kind      EventKind
	TaskIndex int
	Task      string
	Minute    int // -1 for the intro
	Text      string
	Err       error
}

// Error implements the error interface
func (e *AnnouncementError) Error() string {
	where := "intro"
	if e.Minute >= 0 {
		where = fmt.Sprintf("minute %d", e.Minute+1)
	}
	return fmt.Sprintf("task %d %q, %s: %s %q: %v", e.TaskIndex+1, e.Task, where, e.Kind, e.Text, e.Err)
}

// Unwrap returns the underlying error
func (e *AnnouncementError) Unwrap() error {
	return e.Err
}
