// Package speech turns announcement text into decoded audio clips.
//
// Provider is the capability the timeline consumes. GTTSEngine shells out to
// gtts-cli and decodes its MP3 output; Cached puts a clip cache in front of
// any Provider. Package mock holds a deterministic Provider for tests.
package speech

import (
	"context"

	"github.com/dgnsrekt/focusbox/internal/audio"
)

// Voice selects how text is spoken.
type Voice struct {
	Language string // e.g. "en"
	TLD      string // Google Translate host suffix, selects the accent
	Slow     bool
}

// DefaultVoice is English from translate.google.com at normal speed.
var DefaultVoice = Voice{Language: "en", TLD: "com"}

// withDefaults fills empty fields from DefaultVoice.
func (v Voice) withDefaults() Voice {
	if v.Language == "" {
		v.Language = DefaultVoice.Language
	}
	if v.TLD == "" {
		v.TLD = DefaultVoice.TLD
	}
	return v
}

// Provider synthesizes sanitized text into a clip at audio.SampleRate.
// Clips are mono or stereo; callers convert as needed.
type Provider interface {
	Synthesize(ctx context.Context, text string, voice Voice) (*audio.Buffer, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, text string, voice Voice) (*audio.Buffer, error)

// Synthesize implements Provider.
func (f ProviderFunc) Synthesize(ctx context.Context, text string, voice Voice) (*audio.Buffer, error) {
	return f(ctx, text, voice)
}
