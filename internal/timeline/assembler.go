package timeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/dgnsrekt/focusbox/internal/audio"
	"github.com/dgnsrekt/focusbox/internal/speech"
	"github.com/dgnsrekt/focusbox/internal/tasks"
	"github.com/dgnsrekt/focusbox/internal/text"
)

// DefaultConcurrency is how many clips of one task are fetched at once.
const DefaultConcurrency = 4

// Placement records where an announcement landed in the finished track.
type Placement struct {
	Kind      EventKind
	TaskIndex int
	Minute    int
	Text      string
	Start     int // frame
	Frames    int
}

// At returns the start of the placement.
func (p Placement) At() time.Duration {
	return audio.DurationOf(p.Start)
}

// Length returns how much of the clip made it onto the track.
func (p Placement) Length() time.Duration {
	return audio.DurationOf(p.Frames)
}

// Result is a composed track.
type Result struct {
	Track      *audio.Buffer
	Placements []Placement
}

// Assembler composes tracks. It holds no per-run state and may be reused.
type Assembler struct {
	provider    speech.Provider
	normalizer  *text.Normalizer
	voice       speech.Voice
	policy      ReminderPolicy
	timing      Timing
	background  *audio.Buffer
	outro       *audio.Buffer
	concurrency int
	logger      *log.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithNormalizer sets how announcement text is cleaned before synthesis.
func WithNormalizer(n *text.Normalizer) Option {
	return func(a *Assembler) { a.normalizer = n }
}

// WithVoice sets the language and speed of announcements.
func WithVoice(v speech.Voice) Option {
	return func(a *Assembler) { a.voice = v }
}

// WithPolicy sets the reminder cadence.
func WithPolicy(p ReminderPolicy) Option {
	return func(a *Assembler) { a.policy = p }
}

// WithTiming overrides announcement offsets.
func WithTiming(t Timing) Option {
	return func(a *Assembler) { a.timing = t }
}

// WithConcurrency bounds parallel clip requests. Values below one mean one.
func WithConcurrency(n int) Option {
	return func(a *Assembler) { a.concurrency = max(n, 1) }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// NewAssembler returns an Assembler laying clips from provider over
// background, which must be exactly one minute long, and closing every task
// with outro. Mono sources are converted to stereo.
func NewAssembler(provider speech.Provider, background, outro *audio.Buffer, opts ...Option) (*Assembler, error) {
	if background.Frames() != audio.FramesFor(Minute) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidBackground, background.Duration())
	}
	a := &Assembler{
		provider:    provider,
		normalizer:  text.NewNormalizer(),
		voice:       speech.DefaultVoice,
		policy:      DefaultReminderPolicy,
		timing:      DefaultTiming(),
		background:  background.ToStereo(),
		outro:       outro.ToStereo(),
		concurrency: DefaultConcurrency,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Steps returns the plan for list with this Assembler's settings.
func (a *Assembler) Steps(list []tasks.Task) []Step {
	return Plan(list, a.policy, a.timing, a.voice.Language)
}

// Compose renders list into one track. Any failed announcement aborts the
// render with an *AnnouncementError.
func (a *Assembler) Compose(ctx context.Context, list []tasks.Task) (*Result, error) {
	if err := tasks.Validate(list); err != nil {
		return nil, err
	}

	tl := New(a.estimate(list))
	res := &Result{}
	for i := range list {
		steps := PlanTask(list, i, a.policy, a.timing, a.voice.Language)
		clips, err := a.prefetch(ctx, steps)
		if err != nil {
			return nil, err
		}
		for _, step := range steps {
			placed, err := a.apply(tl, step, clips)
			if err != nil {
				return nil, err
			}
			res.Placements = append(res.Placements, placed...)
		}
		a.logger.Debug("task composed", "task", list[i].Name, "length", tl.Duration())
	}

	track, err := tl.Finalize()
	if err != nil {
		return nil, err
	}
	res.Track = track
	a.logger.Info("track composed", "tasks", len(list), "length", track.Duration(), "announcements", len(res.Placements))
	return res, nil
}

// estimate sizes the timeline allocation, allowing a few seconds per intro.
func (a *Assembler) estimate(list []tasks.Task) time.Duration {
	perTask := 5*time.Second + a.outro.Duration() + a.timing.OutroGap
	return time.Duration(tasks.TotalMinutes(list))*Minute + time.Duration(len(list))*perTask
}

// announcement is the first event that asked for a given text.
type announcement struct {
	step  Step
	event CueEvent
}

func (an announcement) fail(spoken string, err error) error {
	return &AnnouncementError{
		Kind:      an.event.Kind,
		TaskIndex: an.step.TaskIndex,
		Task:      an.step.Task.Name,
		Minute:    an.step.Minute,
		Text:      spoken,
		Err:       err,
	}
}

// prefetch synthesizes every distinct announcement of steps concurrently.
// Clips are keyed by normalized text and returned in stereo.
func (a *Assembler) prefetch(ctx context.Context, steps []Step) (map[string]*audio.Buffer, error) {
	pending := make(map[string]announcement)
	var order []string
	for _, step := range steps {
		for _, ev := range step.Events {
			spoken := a.normalizer.Normalize(ev.Text)
			if _, ok := pending[spoken]; ok {
				continue
			}
			pending[spoken] = announcement{step: step, event: ev}
			order = append(order, spoken)
		}
	}

	clips := make([]*audio.Buffer, len(order))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, spoken := range order {
		g.Go(func() error {
			clip, err := a.provider.Synthesize(gctx, spoken, a.voice)
			if err == nil && clip.Format().SampleRate != audio.SampleRate {
				err = &audio.TimelineInvariantError{Op: "speech", Want: audio.MonoFormat, Got: clip.Format(), Err: audio.ErrFormatMismatch}
			}
			if err != nil {
				return pending[spoken].fail(spoken, err)
			}
			clips[i] = clip.ToStereo()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*audio.Buffer, len(order))
	for i, spoken := range order {
		out[spoken] = clips[i]
	}
	return out, nil
}

// apply appends one step to tl and lays its announcements over it.
func (a *Assembler) apply(tl *Timeline, step Step, clips map[string]*audio.Buffer) ([]Placement, error) {
	minuteFrames := a.background.Frames()
	var placed []Placement
	place := func(ev CueEvent, spoken string, at, frames int) {
		placed = append(placed, Placement{
			Kind: ev.Kind, TaskIndex: step.TaskIndex, Minute: step.Minute,
			Text: spoken, Start: at, Frames: frames,
		})
	}

	switch step.Kind {
	case StepIntro:
		ev := step.Events[0]
		spoken := a.normalizer.Normalize(ev.Text)
		clip := clips[spoken]
		bed, err := a.bed(clip.Frames())
		if err != nil {
			return nil, err
		}
		start := tl.Frames()
		if err := tl.Append(bed); err != nil {
			return nil, err
		}
		if err := tl.OverlayAt(clip, start); err != nil {
			return nil, err
		}
		place(ev, spoken, start, clip.Frames())

	case StepMinute:
		start := tl.Frames()
		if err := tl.Append(a.background); err != nil {
			return nil, err
		}
		for _, ev := range step.Events {
			if ev.Anchor != AnchorSegment {
				continue
			}
			spoken := a.normalizer.Normalize(ev.Text)
			clip := clips[spoken]
			at := start + audio.FramesFor(ev.Offset)
			if err := tl.OverlayClipped(clip, at, start+minuteFrames); err != nil {
				return nil, err
			}
			place(ev, spoken, at, min(clip.Frames(), start+minuteFrames-at))
		}
		for _, ev := range step.Events {
			if ev.Anchor != AnchorTrackEnd {
				continue
			}
			spoken := a.normalizer.Normalize(ev.Text)
			clip := clips[spoken]
			at := tl.Frames() - clip.Frames()
			if err := tl.OverlayAt(clip, at); err != nil {
				return nil, err
			}
			place(ev, spoken, at, clip.Frames())
		}

	case StepOutro:
		if err := tl.Append(a.outro); err != nil {
			return nil, err
		}
		if err := tl.AppendSilence(a.timing.OutroGap); err != nil {
			return nil, err
		}
	}
	return placed, nil
}

// bed returns the first frames of the background, looping it when frames
// exceeds one minute.
func (a *Assembler) bed(frames int) (*audio.Buffer, error) {
	if frames <= a.background.Frames() {
		return a.background.SliceFrames(0, frames)
	}
	return a.background.Loop(frames), nil
}
