// Package export writes a finished track to disk.
//
// WAV is encoded in process. MP3, FLAC and Ogg Vorbis are encoded by piping
// raw PCM through ffmpeg. Every export goes to a temporary file in the
// destination directory which is renamed into place only on success, so a
// failed run never leaves a partial file behind.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gopxl/beep/v2/wav"

	"github.com/dgnsrekt/focusbox/internal/audio"
	"github.com/dgnsrekt/focusbox/internal/proc"
)

// Format is an output container.
type Format string

// Supported formats.
const (
	FormatMP3  Format = "mp3"
	FormatWAV  Format = "wav"
	FormatFLAC Format = "flac"
	FormatOGG  Format = "ogg"
)

// DefaultFormat is mp3.
const DefaultFormat = FormatMP3

// ErrUnsupportedFormat is returned for an unknown output format.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch f {
	case FormatMP3, FormatWAV, FormatFLAC, FormatOGG:
		return f, nil
	case "":
		return DefaultFormat, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFor picks the format from the extension of path.
func FormatFor(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// NeedsEncoder reports whether f is encoded with ffmpeg.
func (f Format) NeedsEncoder() bool {
	return f != FormatWAV
}

// DefaultFilename names a track after the time it was rendered.
func DefaultFilename(now time.Time, f Format) string {
	return fmt.Sprintf("focus_box_%s.%s", now.Format("20060102_15_04_05"), f)
}

// Config configures an Exporter.
type Config struct {
	// FFmpeg is the encoder binary. Defaults to "ffmpeg".
	FFmpeg string
	// Bitrate in kbit/s for lossy formats. Zero leaves ffmpeg's default.
	Bitrate int
	Timeout time.Duration
	Logger  *log.Logger
}

// Exporter writes tracks to files.
type Exporter struct {
	ffmpeg  string
	bitrate int
	runner  *proc.Runner
	logger  *log.Logger
}

// NewExporter returns an Exporter. A zero timeout means five minutes.
func NewExporter(cfg Config) *Exporter {
	if cfg.FFmpeg == "" {
		cfg.FFmpeg = "ffmpeg"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Exporter{
		ffmpeg:  cfg.FFmpeg,
		bitrate: cfg.Bitrate,
		runner:  proc.NewRunner(cfg.Timeout),
		logger:  cfg.Logger,
	}
}

// Validate checks that the encoder needed for f is installed.
func (e *Exporter) Validate(f Format) error {
	if !f.NeedsEncoder() {
		return nil
	}
	if _, err := proc.LookPath(e.ffmpeg); err != nil {
		return fmt.Errorf("%s output needs ffmpeg: %w", f, err)
	}
	return nil
}

// Export writes buf to path in format f.
func (e *Exporter) Export(ctx context.Context, buf *audio.Buffer, path string, f Format) error {
	if _, err := ParseFormat(string(f)); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	start := time.Now()

	var err error
	if f.NeedsEncoder() {
		err = e.encode(ctx, buf, tmp, f)
	} else {
		err = writeWAV(buf, tmp)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to move track into place: %w", err)
	}

	e.logger.Debug("track exported", "path", path, "format", f, "length", buf.Duration(), "took", time.Since(start))
	return nil
}

func writeWAV(buf *audio.Buffer, path string) error {
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := wav.Encode(file, buf.Streamer(), buf.Format().BeepFormat()); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to encode wav: %w", err)
	}
	return file.Close()
}

// encode pipes raw PCM into ffmpeg.
func (e *Exporter) encode(ctx context.Context, buf *audio.Buffer, path string, f Format) error {
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "s16le",
		"-ar", strconv.Itoa(audio.SampleRate),
		"-ac", strconv.Itoa(buf.Channels()),
		"-i", "-",
	}
	switch f {
	case FormatMP3:
		args = append(args, "-c:a", "libmp3lame")
	case FormatOGG:
		args = append(args, "-c:a", "libvorbis")
	case FormatFLAC:
		args = append(args, "-c:a", "flac")
	}
	if e.bitrate > 0 && f != FormatFLAC {
		args = append(args, "-b:a", fmt.Sprintf("%dk", e.bitrate))
	}
	args = append(args, "-f", string(f), path)

	if err := e.runner.Stream(ctx, bytes.NewReader(buf.PCM()), io.Discard, e.ffmpeg, args...); err != nil {
		return fmt.Errorf("failed to encode %s: %w", f, err)
	}
	return nil
}
