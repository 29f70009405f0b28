package export_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gopxl/beep/v2/wav"

	"github.com/dgnsrekt/focusbox/internal/audio"
	"github.com/dgnsrekt/focusbox/internal/export"
	"github.com/dgnsrekt/focusbox/internal/proc"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    export.Format
		wantErr bool
	}{
		{"mp3", export.FormatMP3, false},
		{".WAV", export.FormatWAV, false},
		{" flac ", export.FormatFLAC, false},
		{"ogg", export.FormatOGG, false},
		{"", export.DefaultFormat, false},
		{"aiff", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := export.ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, export.ErrUnsupportedFormat) {
					t.Errorf("err = %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

func TestDefaultFilename(t *testing.T) {
	now := time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC)
	if got := export.DefaultFilename(now, export.FormatMP3); got != "focus_box_20240309_07_05_01.mp3" {
		t.Errorf("DefaultFilename = %q", got)
	}
}

func ramp(t *testing.T) *audio.Buffer {
	t.Helper()
	samples := make([]int16, 2*4410)
	for i := range samples {
		samples[i] = int16((i%200)*100 - 10000)
	}
	buf, err := audio.NewBuffer(audio.StereoFormat, samples)
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestExportWAV(t *testing.T) {
	buf := ramp(t)
	path := filepath.Join(t.TempDir(), "out", "track.wav")

	e := export.NewExporter(export.Config{FFmpeg: "focusbox-missing-ffmpeg"})
	if err := e.Validate(export.FormatWAV); err != nil {
		t.Fatalf("Validate(wav) = %v", err)
	}
	if err := e.Export(context.Background(), buf, path, export.FormatWAV); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	s, format, err := wav.Decode(f)
	if err != nil {
		t.Fatalf("wav.Decode: %v", err)
	}
	if int(format.SampleRate) != audio.SampleRate || format.NumChannels != 2 {
		t.Fatalf("format = %+v", format)
	}
	got, err := audio.Decode(s, format, audio.Stereo)
	if err != nil {
		t.Fatal(err)
	}
	if got.Frames() != buf.Frames() {
		t.Fatalf("Frames = %d, want %d", got.Frames(), buf.Frames())
	}
	for _, i := range []int{0, 17, 999, 4409} {
		for ch := 0; ch < 2; ch++ {
			diff := int(got.Sample(i, ch)) - int(buf.Sample(i, ch))
			if diff < -2 || diff > 2 {
				t.Errorf("frame %d ch %d = %d, want %d", i, ch, got.Sample(i, ch), buf.Sample(i, ch))
			}
		}
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestExportMissingEncoder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track.mp3")
	e := export.NewExporter(export.Config{FFmpeg: "focusbox-missing-ffmpeg"})

	if err := e.Validate(export.FormatMP3); !errors.Is(err, proc.ErrNotFound) {
		t.Errorf("Validate = %v", err)
	}
	err := e.Export(context.Background(), ramp(t), path, export.FormatMP3)
	if !errors.Is(err, proc.ErrNotFound) {
		t.Errorf("Export = %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("files left behind: %v", entries)
	}
}

func TestExportEncoderFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	dir := t.TempDir()
	fake := filepath.Join(t.TempDir(), "fake-ffmpeg")
	if err := os.WriteFile(fake, []byte("#!/bin/sh\ncat > /dev/null\necho 'Unknown encoder' >&2\nexit 1\n"), 0o755); err != nil { //nolint:gosec
		t.Fatal(err)
	}

	e := export.NewExporter(export.Config{FFmpeg: fake})
	err := e.Export(context.Background(), ramp(t), filepath.Join(dir, "track.ogg"), export.FormatOGG)
	if err == nil {
		t.Fatal("expected error")
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("files left behind: %v", entries)
	}
}

func TestExportMP3(t *testing.T) {
	if _, err := proc.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	path := filepath.Join(t.TempDir(), "track.mp3")
	e := export.NewExporter(export.Config{Bitrate: 128})
	if err := e.Export(context.Background(), ramp(t), path, export.FormatMP3); err != nil {
		t.Fatalf("Export: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Errorf("output = %v, %v", info, err)
	}
}
