package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/v2/mp3"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/focusbox/internal/audio"
	"github.com/dgnsrekt/focusbox/internal/proc"
)

// gTTS limits.
const (
	MaxTextSize = 5000
	maxMP3Size  = 50 * 1024 * 1024
)

// GTTSEngine synthesizes speech with gtts-cli (Google Translate TTS) and
// decodes the MP3 it prints to stdout.
type GTTSEngine struct {
	command     string
	runner      *proc.Runner
	rateLimiter *rate.Limiter
	logger      *log.Logger
}

// GTTSConfig holds configuration for the gTTS engine.
type GTTSConfig struct {
	// Command is the gtts-cli executable, defaults to "gtts-cli"
	Command string

	// Timeout bounds each request, defaults to 30s
	Timeout time.Duration

	// RequestsPerMinute throttles requests to avoid being blocked, defaults to 50
	RequestsPerMinute int

	Logger *log.Logger
}

// NewGTTSEngine creates a gTTS engine.
func NewGTTSEngine(config GTTSConfig) *GTTSEngine {
	if config.Command == "" {
		config.Command = "gtts-cli"
	}
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 50
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	return &GTTSEngine{
		command:     config.Command,
		runner:      proc.NewRunner(config.Timeout),
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1),
		logger:      config.Logger,
	}
}

// Synthesize converts text to a mono clip.
// Process: text → gtts-cli → MP3 → beep decode → resample to 44.1 kHz
func (e *GTTSEngine) Synthesize(ctx context.Context, text string, voice Voice) (*audio.Buffer, error) {
	voice = voice.withDefaults()
	if text == "" {
		return nil, NewError(ErrorCodeInvalidInput, text, voice, errors.New("text cannot be empty"))
	}
	if len(text) > MaxTextSize {
		return nil, NewError(ErrorCodeInvalidInput, text, voice,
			fmt.Errorf("text too long: %d characters (max %d)", len(text), MaxTextSize))
	}

	if err := e.rateLimiter.Wait(ctx); err != nil {
		return nil, NewError(ErrorCodeRateLimited, text, voice, fmt.Errorf("rate limit wait cancelled: %w", err))
	}

	start := time.Now()
	mp3Data, err := e.synthesizeToMP3(ctx, text, voice)
	if err != nil {
		return nil, NewError("", text, voice, err)
	}

	clip, err := decodeMP3(mp3Data)
	if err != nil {
		return nil, NewError(ErrorCodeDecodeFailure, text, voice, err)
	}

	e.logger.Debug("synthesized clip", "text", text, "lang", voice.Language,
		"duration", clip.Duration(), "took", time.Since(start))
	return clip, nil
}

// synthesizeToMP3 runs gtts-cli and returns its MP3 output.
func (e *GTTSEngine) synthesizeToMP3(ctx context.Context, text string, voice Voice) ([]byte, error) {
	args := []string{text, "-l", voice.Language, "-t", voice.TLD}
	if voice.Slow {
		args = append(args, "--slow")
	}
	args = append(args, "-o", "-")

	mp3Data, err := e.runner.Run(ctx, nil, e.command, args...)
	if err != nil {
		return nil, err
	}
	if len(mp3Data) == 0 {
		return nil, errors.New("gtts-cli produced no MP3 output")
	}
	if len(mp3Data) > maxMP3Size {
		return nil, fmt.Errorf("gtts-cli MP3 output too large: %d bytes (max %d)", len(mp3Data), maxMP3Size)
	}
	return mp3Data, nil
}

// decodeMP3 decodes an MP3 document into a mono clip at audio.SampleRate.
func decodeMP3(data []byte) (*audio.Buffer, error) {
	stream, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("mp3 decode: %w", err)
	}
	defer stream.Close() //nolint:errcheck

	return audio.Decode(stream, format, audio.Mono)
}

// Validate checks that gtts-cli can be found.
func (e *GTTSEngine) Validate() error {
	if _, err := proc.LookPath(e.command); err != nil {
		return fmt.Errorf("%w\n\nInstall with: pip install gtts", err)
	}
	return nil
}

var _ Provider = (*GTTSEngine)(nil)
