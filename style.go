package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

var (
	keyword   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Render
	paragraph = lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2).Render
	faint     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}).Render
	heading   = lipgloss.NewStyle().Bold(true).Render
)

// styled reports whether stdout is a terminal worth colouring.
func styled() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec
}

// plain renders like a lipgloss style with no styling.
func plain(strs ...string) string { return strings.Join(strs, " ") }

// clock formats d as m:ss or h:mm:ss.
func clock(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func printSummary(w io.Writer, s *summary) {
	kw, dim := keyword, faint
	if !styled() {
		kw, dim = plain, plain
	}

	fmt.Fprintf(w, "Wrote %s\n", kw(s.Path))
	fmt.Fprintf(w, "  %s %s, %d tasks, %d minutes of focus\n", dim("length"), clock(s.Length), s.Tasks, s.Minutes)
	fmt.Fprintf(w, "  %s %s %s\n", dim("size  "), humanize.Bytes(uint64(max(s.Size, 0))), strings.ToUpper(string(s.Format))) //nolint:gosec
	fmt.Fprintf(w, "  %s %s\n", dim("spoken"), humanize.Comma(int64(s.Announcements))+" announcements")
	if s.Cache != nil {
		fmt.Fprintf(w, "  %s %.0f%% memory hits, %.0f%% disk hits\n", dim("cache "), 100*s.Cache.Memory.HitRate(), 100*s.Cache.Disk.HitRate())
	}
	fmt.Fprintf(w, "  %s %s\n", dim("took  "), s.Took.Round(time.Millisecond))
}
