package timeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/focusbox/internal/audio"
	"github.com/dgnsrekt/focusbox/internal/speech"
	"github.com/dgnsrekt/focusbox/internal/speech/mock"
	"github.com/dgnsrekt/focusbox/internal/tasks"
	"github.com/dgnsrekt/focusbox/internal/timeline"
)

const outroLevel = 500

// constant returns a stereo buffer holding level in every sample.
func constant(t *testing.T, d time.Duration, level int16) *audio.Buffer {
	t.Helper()
	samples := make([]int16, audio.FramesFor(d)*audio.Stereo)
	for i := range samples {
		samples[i] = level
	}
	buf, err := audio.NewBuffer(audio.StereoFormat, samples)
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func newAssembler(t *testing.T, p speech.Provider, background *audio.Buffer, opts ...timeline.Option) *timeline.Assembler {
	t.Helper()
	if background == nil {
		background = audio.Silence(timeline.Minute, audio.Stereo)
	}
	a, err := timeline.NewAssembler(p, background, constant(t, time.Second, outroLevel), opts...)
	if err != nil {
		t.Fatalf("NewAssembler: %v", err)
	}
	return a
}

func placementsOf(res *timeline.Result, kind timeline.EventKind) []timeline.Placement {
	var out []timeline.Placement
	for _, p := range res.Placements {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

var (
	clipFrames   = audio.FramesFor(mock.DefaultClipDuration)
	minuteFrames = audio.FramesFor(time.Minute)
	outroFrames  = audio.FramesFor(time.Second) + audio.FramesFor(5*time.Second)
)

func TestComposeSingleTask(t *testing.T) {
	provider := mock.New()
	a := newAssembler(t, provider, nil)

	res, err := a.Compose(context.Background(), []tasks.Task{{Name: "Focus", DurationMinutes: 2}})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	track := res.Track

	want := clipFrames + 2*minuteFrames + outroFrames
	if track.Frames() != want {
		t.Fatalf("Frames = %d, want %d", track.Frames(), want)
	}
	if track.Channels() != audio.Stereo {
		t.Errorf("Channels = %d", track.Channels())
	}

	intro := placementsOf(res, timeline.KindIntro)
	if len(intro) != 1 || intro[0].Start != 0 || intro[0].Text != "Focus 2 minutes" {
		t.Fatalf("intro = %+v", intro)
	}
	if got := track.Sample(10, 0); got != mock.Level("Focus 2 minutes") {
		t.Errorf("intro sample = %d", got)
	}

	reminders := placementsOf(res, timeline.KindReminder)
	if len(reminders) != 2 {
		t.Fatalf("reminders = %d, want 2", len(reminders))
	}
	for m, r := range reminders {
		at := clipFrames + m*minuteFrames + audio.FramesFor(3*time.Second)
		if r.Start != at {
			t.Errorf("reminder %d at %d, want %d", m, r.Start, at)
		}
	}
	if reminders[0].Text != "Focus 2 minutes left" || reminders[1].Text != "Focus 1 minutes left" {
		t.Errorf("reminder texts = %q, %q", reminders[0].Text, reminders[1].Text)
	}

	countdown := placementsOf(res, timeline.KindCountdown)
	words := []string{"ten", "nine", "eight", "seven", "six", "five", "four", "three", "two", "one"}
	if len(countdown) != len(words) {
		t.Fatalf("countdown = %d words", len(countdown))
	}
	lastMinute := clipFrames + minuteFrames
	for k, c := range countdown {
		at := lastMinute + audio.FramesFor(50*time.Second+time.Duration(k)*time.Second)
		if c.Start != at || c.Text != words[k] || c.Minute != 1 {
			t.Errorf("countdown %d = %+v, want %q at %d", k, c, words[k], at)
		}
	}
	halfSecond := audio.FramesFor(500 * time.Millisecond)
	if got := track.Sample(countdown[0].Start+halfSecond, 1); got != mock.Level("ten") {
		t.Errorf("countdown sample = %d, want %d", got, mock.Level("ten"))
	}

	// "one" starts at 59 s and must not spill into the outro.
	outroStart := clipFrames + 2*minuteFrames
	if got := track.Sample(outroStart, 0); got != outroLevel {
		t.Errorf("outro start = %d, want %d", got, outroLevel)
	}
	if got := track.Sample(outroStart-1, 0); got != mock.Level("one") {
		t.Errorf("end of minute = %d, want %d", got, mock.Level("one"))
	}
	if last := countdown[len(countdown)-1]; last.Length() != time.Second || last.Start+last.Frames != outroStart {
		t.Errorf("clipped countdown placement = %+v, want 1s ending at %d", last, outroStart)
	}
	if c := countdown[len(countdown)-2]; c.Frames != clipFrames {
		t.Errorf("unclipped countdown Frames = %d, want %d", c.Frames, clipFrames)
	}

	tail, err := track.SliceFrames(track.Frames()-audio.FramesFor(5*time.Second), track.Frames())
	if err != nil {
		t.Fatal(err)
	}
	if !tail.IsSilent() {
		t.Error("final five seconds are not silent")
	}

	if n := len(placementsOf(res, timeline.KindPreview)); n != 0 {
		t.Errorf("single task has %d previews", n)
	}
}

func TestComposePreview(t *testing.T) {
	a := newAssembler(t, mock.New(), nil)
	list := []tasks.Task{{Name: "Focus", DurationMinutes: 3}, {Name: "Stretch", DurationMinutes: 2}}

	res, err := a.Compose(context.Background(), list)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	previews := placementsOf(res, timeline.KindPreview)
	if len(previews) != 1 {
		t.Fatalf("previews = %d, want 1", len(previews))
	}
	p := previews[0]
	if p.Text != "Coming up next Stretch 2 minutes" {
		t.Errorf("preview text = %q", p.Text)
	}
	if p.TaskIndex != 0 || p.Minute != 1 {
		t.Errorf("preview at task %d minute %d", p.TaskIndex, p.Minute)
	}

	insertion := clipFrames + 2*minuteFrames
	if p.Start != insertion-clipFrames || p.Start+p.Frames != insertion {
		t.Errorf("preview spans [%d, %d), want [%d, %d)", p.Start, p.Start+p.Frames, insertion-clipFrames, insertion)
	}
	if got := res.Track.Sample(insertion-1, 0); got != mock.Level(p.Text) {
		t.Errorf("preview sample = %d", got)
	}
	if got := res.Track.Sample(insertion, 0); got != 0 {
		t.Errorf("sample after preview = %d, want silence", got)
	}

	want := 2*clipFrames + 5*minuteFrames + 2*outroFrames
	if res.Track.Frames() != want {
		t.Errorf("Frames = %d, want %d", res.Track.Frames(), want)
	}
}

func TestComposeOneMinuteTasksHaveNoPreview(t *testing.T) {
	a := newAssembler(t, mock.New(), nil)
	res, err := a.Compose(context.Background(), []tasks.Task{{Name: "A", DurationMinutes: 1}, {Name: "B", DurationMinutes: 1}})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if n := len(placementsOf(res, timeline.KindPreview)); n != 0 {
		t.Errorf("previews = %d", n)
	}
	if n := len(placementsOf(res, timeline.KindCountdown)); n != 20 {
		t.Errorf("countdown words = %d, want 20", n)
	}
}

func TestComposeLengthIndependentOfOverlays(t *testing.T) {
	list := []tasks.Task{{Name: "Read", DurationMinutes: 4}, {Name: "Walk", DurationMinutes: 3}, {Name: "Rest", DurationMinutes: 2}}
	policies := []timeline.ReminderPolicy{timeline.EveryMinute, timeline.SkipFinal, timeline.EveryOther, timeline.NoReminders}

	want := 3*clipFrames + 9*minuteFrames + 3*outroFrames
	for _, policy := range policies {
		t.Run(policy.String(), func(t *testing.T) {
			a := newAssembler(t, mock.New(), nil, timeline.WithPolicy(policy))
			res, err := a.Compose(context.Background(), list)
			if err != nil {
				t.Fatalf("Compose: %v", err)
			}
			if res.Track.Frames() != want {
				t.Errorf("Frames = %d, want %d", res.Track.Frames(), want)
			}
		})
	}
}

func TestComposeDeduplicatesRequests(t *testing.T) {
	provider := mock.New()
	a := newAssembler(t, provider, nil, timeline.WithConcurrency(2))

	if _, err := a.Compose(context.Background(), []tasks.Task{{Name: "Focus", DurationMinutes: 2}}); err != nil {
		t.Fatal(err)
	}
	// intro, two reminders, ten countdown words
	if provider.CallCount() != 13 {
		t.Errorf("CallCount = %d, want 13", provider.CallCount())
	}
}

func TestComposeProviderFailure(t *testing.T) {
	provider := mock.New()
	provider.FailOn("Focus 1 minutes left", nil)
	a := newAssembler(t, provider, nil)

	res, err := a.Compose(context.Background(), []tasks.Task{{Name: "Focus", DurationMinutes: 2}})
	if res != nil {
		t.Error("partial result returned")
	}

	var ae *timeline.AnnouncementError
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v, want AnnouncementError", err)
	}
	if ae.Kind != timeline.KindReminder || ae.TaskIndex != 0 || ae.Minute != 1 || ae.Task != "Focus" {
		t.Errorf("AnnouncementError = %+v", ae)
	}
	var se *speech.SpeechSynthesisError
	if !errors.As(err, &se) || !errors.Is(err, mock.ErrInjected) {
		t.Errorf("cause lost: %v", err)
	}
	if !strings.Contains(err.Error(), "minute 2") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestComposeCanceled(t *testing.T) {
	provider := mock.New()
	provider.Delay = time.Second
	a := newAssembler(t, provider, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Compose(ctx, []tasks.Task{{Name: "Focus", DurationMinutes: 1}}); err == nil {
		t.Fatal("expected error")
	}
}

func TestComposeRejectsInvalidTasks(t *testing.T) {
	a := newAssembler(t, mock.New(), nil)
	tests := []struct {
		name string
		list []tasks.Task
	}{
		{"empty", nil},
		{"zero minutes", []tasks.Task{{Name: "A", DurationMinutes: 0}}},
		{"no name", []tasks.Task{{Name: " ", DurationMinutes: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Compose(context.Background(), tt.list); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestComposeLeavesBackgroundIntact(t *testing.T) {
	background := constant(t, time.Minute, 300)
	a := newAssembler(t, mock.New(), background)

	res, err := a.Compose(context.Background(), []tasks.Task{{Name: "Focus", DurationMinutes: 3}})
	if err != nil {
		t.Fatal(err)
	}
	if background.Peak() != 300 || background.Sample(audio.FramesFor(3*time.Second), 0) != 300 {
		t.Error("background modified by overlays")
	}
	// Third minute, twenty seconds in: background only.
	at := clipFrames + 2*minuteFrames + audio.FramesFor(20*time.Second)
	if got := res.Track.Sample(at, 1); got != 300 {
		t.Errorf("background sample = %d, want 300", got)
	}
}

func TestComposeLongIntroLoopsBackground(t *testing.T) {
	provider := mock.New()
	provider.Duration = func(text string) time.Duration {
		if text == "Focus 1 minutes" {
			return 90 * time.Second
		}
		return mock.DefaultClipDuration
	}
	a := newAssembler(t, provider, constant(t, time.Minute, 300))

	res, err := a.Compose(context.Background(), []tasks.Task{{Name: "Focus", DurationMinutes: 1}})
	if err != nil {
		t.Fatal(err)
	}
	introFrames := audio.FramesFor(90 * time.Second)
	if res.Track.Frames() != introFrames+minuteFrames+outroFrames {
		t.Errorf("Frames = %d", res.Track.Frames())
	}
	if got := res.Track.Sample(audio.FramesFor(75*time.Second), 0); got != 300+mock.Level("Focus 1 minutes") {
		t.Errorf("looped bed sample = %d", got)
	}
}

func TestComposePreviewLongerThanTrack(t *testing.T) {
	provider := mock.New()
	provider.Duration = func(text string) time.Duration {
		if strings.HasPrefix(text, "Coming up next") {
			return 10 * time.Minute
		}
		return mock.DefaultClipDuration
	}
	a := newAssembler(t, provider, nil)

	_, err := a.Compose(context.Background(), []tasks.Task{{Name: "A", DurationMinutes: 2}, {Name: "B", DurationMinutes: 1}})
	var ie *audio.TimelineInvariantError
	if !errors.As(err, &ie) || !errors.Is(err, audio.ErrOutOfBounds) {
		t.Fatalf("error = %v, want out of bounds", err)
	}
}

func TestNewAssemblerRejectsShortBackground(t *testing.T) {
	_, err := timeline.NewAssembler(mock.New(), audio.Silence(30*time.Second, audio.Stereo), audio.Empty(audio.Stereo))
	if !errors.Is(err, timeline.ErrInvalidBackground) {
		t.Errorf("error = %v", err)
	}
}

func TestComposeMonoBackground(t *testing.T) {
	a, err := timeline.NewAssembler(mock.New(), audio.Silence(time.Minute, audio.Mono), audio.Silence(time.Second, audio.Mono))
	if err != nil {
		t.Fatal(err)
	}
	res, err := a.Compose(context.Background(), []tasks.Task{{Name: "A", DurationMinutes: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Track.Channels() != audio.Stereo {
		t.Errorf("Channels = %d", res.Track.Channels())
	}
}
