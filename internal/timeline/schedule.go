package timeline

import (
	"fmt"
	"time"

	ntw "moul.io/number-to-words"

	"github.com/dgnsrekt/focusbox/internal/tasks"
)

// EventKind identifies an announcement.
type EventKind int

const (
	KindIntro EventKind = iota
	KindReminder
	KindCountdown
	KindPreview
)

// String implements fmt.Stringer.
func (k EventKind) String() string {
	switch k {
	case KindIntro:
		return "intro"
	case KindReminder:
		return "reminder"
	case KindCountdown:
		return "countdown"
	case KindPreview:
		return "preview"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Anchor says what an event offset is measured from.
type Anchor int

const (
	// AnchorSegment offsets are from the start of the segment being built.
	AnchorSegment Anchor = iota
	// AnchorTrackEnd events end exactly at the current end of the track.
	AnchorTrackEnd
)

// CueEvent asks for text to be spoken at Offset within a segment.
type CueEvent struct {
	Kind   EventKind
	Text   string
	Offset time.Duration
	Anchor Anchor
}

// StepKind is a state of the per-task state machine.
type StepKind int

const (
	StepIntro StepKind = iota
	StepMinute
	StepOutro
)

// String implements fmt.Stringer.
func (k StepKind) String() string {
	switch k {
	case StepIntro:
		return "intro"
	case StepMinute:
		return "minute"
	case StepOutro:
		return "outro"
	default:
		return fmt.Sprintf("StepKind(%d)", int(k))
	}
}

// Step is one segment of the track and the announcements placed on it.
// Events with AnchorTrackEnd are applied after the segment is appended.
type Step struct {
	Kind      StepKind
	TaskIndex int
	Task      tasks.Task
	Minute    int // -1 outside StepMinute
	Events    []CueEvent
}

// Timing holds the fixed positions of announcements within a minute.
type Timing struct {
	ReminderOffset time.Duration
	CountdownStart time.Duration
	CountdownStep  time.Duration
	CountdownFrom  int
	OutroGap       time.Duration
}

// DefaultTiming reminds 3s into a minute, counts down ten to one from 50s
// and pauses 5s after each task.
func DefaultTiming() Timing {
	return Timing{
		ReminderOffset: 3 * time.Second,
		CountdownStart: 50 * time.Second,
		CountdownStep:  time.Second,
		CountdownFrom:  10,
		OutroGap:       5 * time.Second,
	}
}

// IntroText announces a task.
func IntroText(t tasks.Task) string {
	return fmt.Sprintf("%s - %d minutes", t.Name, t.DurationMinutes)
}

// ReminderText announces the minutes left in a task.
func ReminderText(t tasks.Task, minutesLeft int) string {
	return fmt.Sprintf("%s, %d minutes left", t.Name, minutesLeft)
}

// PreviewText announces the next task.
func PreviewText(next tasks.Task) string {
	return fmt.Sprintf("Coming up next, %s - %d minutes.", next.Name, next.DurationMinutes)
}

// CountdownWord spells n in the given language. Languages without a
// speller fall back to English.
func CountdownWord(n int, language string) string {
	switch language {
	case "fr":
		return ntw.IntegerToFrFr(n)
	default:
		return ntw.IntegerToEnUs(n)
	}
}

// Plan lays out every step of the track for list in playback order.
func Plan(list []tasks.Task, policy ReminderPolicy, timing Timing, language string) []Step {
	var steps []Step
	for i := range list {
		steps = append(steps, PlanTask(list, i, policy, timing, language)...)
	}
	return steps
}

// PlanTask lays out the steps of task i: intro, one step per minute, outro.
func PlanTask(list []tasks.Task, i int, policy ReminderPolicy, timing Timing, language string) []Step {
	task := list[i]
	d := task.DurationMinutes
	steps := make([]Step, 0, d+2)

	steps = append(steps, Step{
		Kind: StepIntro, TaskIndex: i, Task: task, Minute: -1,
		Events: []CueEvent{{Kind: KindIntro, Text: IntroText(task)}},
	})

	for m := 0; m < d; m++ {
		var events []CueEvent
		if policy.Remind(m, d) {
			events = append(events, CueEvent{
				Kind:   KindReminder,
				Text:   ReminderText(task, d-m),
				Offset: timing.ReminderOffset,
			})
		}
		if m == d-1 {
			for k := 0; k < timing.CountdownFrom; k++ {
				events = append(events, CueEvent{
					Kind:   KindCountdown,
					Text:   CountdownWord(timing.CountdownFrom-k, language),
					Offset: timing.CountdownStart + time.Duration(k)*timing.CountdownStep,
				})
			}
		}
		if m == d-2 && i+1 < len(list) {
			events = append(events, CueEvent{
				Kind:   KindPreview,
				Text:   PreviewText(list[i+1]),
				Anchor: AnchorTrackEnd,
			})
		}
		steps = append(steps, Step{Kind: StepMinute, TaskIndex: i, Task: task, Minute: m, Events: events})
	}

	steps = append(steps, Step{Kind: StepOutro, TaskIndex: i, Task: task, Minute: -1})
	return steps
}
