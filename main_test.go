package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/dgnsrekt/focusbox/internal/cache"
	"github.com/dgnsrekt/focusbox/internal/config"
	"github.com/dgnsrekt/focusbox/internal/export"
	"github.com/dgnsrekt/focusbox/internal/tasks"
)

func TestDefaultConfigFileMatchesDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(defaultConfig)); err != nil {
		t.Fatalf("default config does not parse: %v", err)
	}
	cfg, err := config.LoadFromViper(v)
	if err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	want := config.DefaultConfig()
	if err := want.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg != want {
		t.Errorf("config file defaults drifted:\n got %+v\nwant %+v", cfg, want)
	}
}

func TestOutputFor(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.Dir = "/tmp/out"
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)

	tests := []struct {
		name       string
		format     string
		path       string
		wantPath   string
		wantFormat export.Format
		wantErr    bool
	}{
		{"default", "mp3", "", "/tmp/out/focus_box_20250102_03_04_05.mp3", export.FormatMP3, false},
		{"configured format", "wav", "", "/tmp/out/focus_box_20250102_03_04_05.wav", export.FormatWAV, false},
		{"explicit path", "mp3", "/music/session.flac", "/music/session.flac", export.FormatFLAC, false},
		{"unknown extension", "mp3", "session.aiff", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.Output.Format = tt.format
			path, format, err := outputFor(cfg, tt.path, now)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if path != tt.wantPath || format != tt.wantFormat {
				t.Errorf("outputFor = %q, %q", path, format)
			}
		})
	}
}

func TestClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{3 * time.Second, "0:03"},
		{50*time.Second + 400*time.Millisecond, "0:50"},
		{2*time.Minute + 6*time.Second, "2:06"},
		{time.Hour + 5*time.Minute, "1:05:00"},
	}
	for _, tt := range tests {
		if got := clock(tt.d); got != tt.want {
			t.Errorf("clock(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestPlain(t *testing.T) {
	styles := []func(...string) string{keyword, faint, heading, plain}
	if got := styles[3]("a", "b"); got != "a b" {
		t.Errorf("plain = %q", got)
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &summary{
		Path:          "out.mp3",
		Format:        export.FormatMP3,
		Tasks:         2,
		Minutes:       3,
		Length:        3*time.Minute + 12*time.Second,
		Size:          2048,
		Announcements: 27,
		Took:          1500 * time.Millisecond,
	})
	out := buf.String()

	for _, want := range []string{"Wrote out.mp3", "3:12, 2 tasks, 3 minutes", "2.0 kB MP3", "27 announcements"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPrintCacheStats(t *testing.T) {
	var buf bytes.Buffer
	printCacheStats(&buf, cache.ManagerStats{
		Dir:    "/tmp/clips",
		Memory: cache.Stats{Capacity: 64 << 20},
		Disk:   cache.Stats{Items: 3, Size: 2048, Capacity: 512 << 20},
	}, plain)
	out := buf.String()

	for _, want := range []string{"Cache /tmp/clips", "memory 0 clips, 0 B of 64 MiB", "disk   3 clips, 2.0 KiB of 512 MiB"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats missing %q:\n%s", want, out)
		}
	}
}

func TestPrintPlan(t *testing.T) {
	cfg := config.DefaultConfig()
	list := []tasks.Task{{Name: "Focus", DurationMinutes: 2}, {Name: "Stretch", DurationMinutes: 1}}

	var buf bytes.Buffer
	printPlan(&buf, cfg, list, time.Second)
	out := buf.String()

	for _, want := range []string{
		`1. Focus`,
		`"Focus - 2 minutes"`,
		`"Focus, 2 minutes left"`,
		`"Coming up next, Stretch - 1 minutes."`,
		`ten .. one`,
		`2. Stretch`,
		`Total: 3:12 plus 2 spoken intros`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}
}

func TestWatchRerunsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte(`[]`), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, path, func(context.Context, string) { runs.Add(1) })
	}()

	waitFor(t, func() bool { return runs.Load() == 1 })
	if err := os.WriteFile(path, []byte(`[{"name":"Focus","duration_minutes":1}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return runs.Load() >= 2 })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(20 * time.Millisecond)
	}
}
