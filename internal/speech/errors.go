package speech

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgnsrekt/focusbox/internal/proc"
)

// ErrorCode classifies a speech failure.
type ErrorCode string

const (
	ErrorCodeEngineFailure     ErrorCode = "ENGINE_FAILURE"
	ErrorCodeEngineUnavailable ErrorCode = "ENGINE_UNAVAILABLE"
	ErrorCodeTimeout           ErrorCode = "TIMEOUT"
	ErrorCodeRateLimited       ErrorCode = "RATE_LIMITED"
	ErrorCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrorCodeDecodeFailure     ErrorCode = "DECODE_FAILURE"
)

// SpeechSynthesisError reports a provider failure for one piece of text.
type SpeechSynthesisError struct {
	Code  ErrorCode
	Text  string
	Voice Voice
	Cause error
}

// Error implements the error interface
func (e *SpeechSynthesisError) Error() string {
	msg := fmt.Sprintf("%s: synthesize %q (%s)", e.Code, e.Text, e.Voice.Language)
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *SpeechSynthesisError) Unwrap() error {
	return e.Cause
}

// Temporary reports whether retrying the same request may succeed.
func (e *SpeechSynthesisError) Temporary() bool {
	switch e.Code {
	case ErrorCodeTimeout, ErrorCodeRateLimited, ErrorCodeEngineFailure:
		return true
	default:
		return false
	}
}

// NewError wraps cause, deriving the code from well-known causes when code
// is empty.
func NewError(code ErrorCode, text string, voice Voice, cause error) *SpeechSynthesisError {
	if code == "" {
		code = classify(cause)
	}
	return &SpeechSynthesisError{Code: code, Text: text, Voice: voice, Cause: cause}
}

func classify(err error) ErrorCode {
	switch {
	case errors.Is(err, proc.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ErrorCodeTimeout
	case errors.Is(err, proc.ErrNotFound):
		return ErrorCodeEngineUnavailable
	default:
		return ErrorCodeEngineFailure
	}
}
