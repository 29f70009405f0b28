package synth

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter indicates a synthesis parameter outside its domain.
var ErrInvalidParameter = errors.New("invalid synthesis parameter")

// SynthesisError reports a generator call that was rejected before any audio
// was produced.
type SynthesisError struct {
	Op    string
	Param string
	Value any
	Err   error
}

// Error implements the error interface
func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synth %s: %s=%v: %v", e.Op, e.Param, e.Value, e.Err)
}

// Unwrap returns the underlying error
func (e *SynthesisError) Unwrap() error {
	return e.Err
}

func invalid(op, param string, value any) error {
	return &SynthesisError{Op: op, Param: param, Value: value, Err: ErrInvalidParameter}
}
