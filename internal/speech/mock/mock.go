// Package mock provides a deterministic speech provider for testing.
package mock

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/dgnsrekt/focusbox/internal/audio"
	"github.com/dgnsrekt/focusbox/internal/speech"
)

// DefaultClipDuration is the length of every clip unless overridden.
const DefaultClipDuration = 1500 * time.Millisecond

// ErrInjected is the cause of failures configured with FailOn.
var ErrInjected = errors.New("injected failure")

// Provider returns constant-level mono clips whose length and level depend
// only on the text, so tests can find where each clip landed.
type Provider struct {
	// Duration returns the clip length for text. Nil means DefaultClipDuration.
	Duration func(text string) time.Duration
	// Delay simulates engine latency.
	Delay time.Duration

	mu     sync.Mutex
	calls  []string
	failOn map[string]error
}

// New creates a mock provider with fixed-length clips.
func New() *Provider {
	return &Provider{failOn: make(map[string]error)}
}

// WithDuration returns a mock whose clips last d.
func WithDuration(d time.Duration) *Provider {
	p := New()
	p.Duration = func(string) time.Duration { return d }
	return p
}

// FailOn makes requests for text fail with a SpeechSynthesisError wrapping
// cause (ErrInjected when nil).
func (p *Provider) FailOn(text string, cause error) {
	if cause == nil {
		cause = ErrInjected
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failOn[text] = cause
}

// Synthesize implements speech.Provider.
func (p *Provider) Synthesize(ctx context.Context, text string, voice speech.Voice) (*audio.Buffer, error) {
	p.mu.Lock()
	p.calls = append(p.calls, text)
	cause, fail := p.failOn[text]
	p.mu.Unlock()

	if p.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, speech.NewError(speech.ErrorCodeTimeout, text, voice, ctx.Err())
		case <-time.After(p.Delay):
		}
	}
	if fail {
		return nil, speech.NewError(speech.ErrorCodeEngineFailure, text, voice, cause)
	}

	d := DefaultClipDuration
	if p.Duration != nil {
		d = p.Duration(text)
	}
	samples := make([]int16, audio.FramesFor(d))
	level := Level(text)
	for i := range samples {
		samples[i] = level
	}
	return audio.NewBuffer(audio.MonoFormat, samples)
}

// Calls returns the texts requested so far, in request order.
func (p *Provider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallCount returns how many requests were made.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// Reset clears the call log.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}

// Level is the constant sample value of the clip for text, in [100, 1099].
func Level(text string) int16 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	return int16(100 + h.Sum32()%1000)
}

var _ speech.Provider = (*Provider)(nil)
