package speech

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/focusbox/internal/audio"
)

// Retrying retries temporary failures of the wrapped Provider with
// exponential backoff. Invalid input is never retried.
type Retrying struct {
	provider Provider
	attempts int
	backoff  time.Duration
	logger   *log.Logger
}

// NewRetrying wraps p. attempts counts the first try; values below 1 mean 1.
func NewRetrying(p Provider, attempts int, backoff time.Duration, logger *log.Logger) *Retrying {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Retrying{provider: p, attempts: attempts, backoff: backoff, logger: logger}
}

// Synthesize implements Provider.
func (r *Retrying) Synthesize(ctx context.Context, text string, voice Voice) (*audio.Buffer, error) {
	wait := r.backoff
	var err error
	for attempt := 1; ; attempt++ {
		var clip *audio.Buffer
		clip, err = r.provider.Synthesize(ctx, text, voice)
		if err == nil {
			return clip, nil
		}

		var se *SpeechSynthesisError
		if attempt >= r.attempts || (errors.As(err, &se) && !se.Temporary()) {
			return nil, err
		}
		r.logger.Warn("retrying speech synthesis", "text", text, "attempt", attempt, "err", err)

		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(wait):
		}
		wait *= 2
	}
}

var _ Provider = (*Retrying)(nil)
