package speech

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/focusbox/internal/audio"
	"github.com/dgnsrekt/focusbox/internal/cache"
)

// Cached serves clips from a cache.Store and falls back to the wrapped
// Provider on a miss. Cache write failures are logged and ignored.
type Cached struct {
	provider Provider
	store    cache.Store
	logger   *log.Logger
}

// NewCached wraps p with store.
func NewCached(p Provider, store cache.Store, logger *log.Logger) *Cached {
	if logger == nil {
		logger = log.Default()
	}
	return &Cached{provider: p, store: store, logger: logger}
}

// Synthesize implements Provider.
func (c *Cached) Synthesize(ctx context.Context, text string, voice Voice) (*audio.Buffer, error) {
	v := voice.withDefaults()
	key := cache.Key(text, v.Language, v.TLD, v.Slow)
	if data, ok := c.store.Get(key); ok {
		clip, err := decodeClip(data)
		if err == nil {
			return clip, nil
		}
		c.logger.Warn("discarding unreadable cached clip", "text", text, "err", err)
		c.store.Delete(key)
	}

	clip, err := c.provider.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(key, encodeClip(clip)); err != nil {
		c.logger.Warn("failed to cache clip", "text", text, "err", err)
	}
	return clip, nil
}

// encodeClip prefixes the PCM with its channel count.
func encodeClip(clip *audio.Buffer) []byte {
	pcm := clip.PCM()
	out := make([]byte, 0, len(pcm)+1)
	out = append(out, byte(clip.Channels()))
	return append(out, pcm...)
}

func decodeClip(data []byte) (*audio.Buffer, error) {
	if len(data) == 0 {
		return nil, cache.ErrCorrupted
	}
	clip, err := audio.FromPCM(data[1:], audio.Format{SampleRate: audio.SampleRate, Channels: int(data[0])})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cache.ErrCorrupted, err)
	}
	return clip, nil
}

var _ Provider = (*Cached)(nil)
