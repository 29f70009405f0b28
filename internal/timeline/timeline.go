package timeline

import (
	"time"

	"github.com/dgnsrekt/focusbox/internal/audio"
)

// Timeline is the growing stereo accumulator for one render. It only grows by
// Append; overlays mix into what is already there.
type Timeline struct {
	samples []int16
	done    bool
}

// New returns an empty timeline with room for reserve of audio.
func New(reserve time.Duration) *Timeline {
	return &Timeline{samples: make([]int16, 0, audio.FramesFor(reserve)*audio.Stereo)}
}

// Frames returns the current length in frames.
func (t *Timeline) Frames() int {
	return len(t.samples) / audio.Stereo
}

// Duration returns the current length.
func (t *Timeline) Duration() time.Duration {
	return audio.DurationOf(t.Frames())
}

// Append copies buf onto the end of the track.
func (t *Timeline) Append(buf *audio.Buffer) error {
	if err := t.check("append", buf); err != nil {
		return err
	}
	t.samples = buf.AppendTo(t.samples)
	return nil
}

// AppendSilence extends the track by d of silence.
func (t *Timeline) AppendSilence(d time.Duration) error {
	return t.Append(audio.Silence(d, audio.Stereo))
}

// OverlayAt mixes buf into the track at frame. The clip must lie entirely
// inside the current track.
func (t *Timeline) OverlayAt(buf *audio.Buffer, frame int) error {
	if err := t.check("overlay", buf); err != nil {
		return err
	}
	if frame < 0 || frame+buf.Frames() > t.Frames() {
		return &audio.TimelineInvariantError{
			Op: "overlay", Offset: frame, Length: buf.Frames(), Bound: t.Frames(), Err: audio.ErrOutOfBounds,
		}
	}
	return audio.MixInto(t.samples, audio.StereoFormat, buf, frame)
}

// OverlayClipped mixes buf into the track at frame, dropping whatever would
// run past limit (or past the end of the track).
func (t *Timeline) OverlayClipped(buf *audio.Buffer, frame, limit int) error {
	if err := t.check("overlay", buf); err != nil {
		return err
	}
	limit = min(limit, t.Frames())
	if frame < 0 || frame > limit {
		return &audio.TimelineInvariantError{
			Op: "overlay", Offset: frame, Length: buf.Frames(), Bound: limit, Err: audio.ErrOutOfBounds,
		}
	}
	return audio.MixInto(t.samples[:limit*audio.Stereo], audio.StereoFormat, buf, frame)
}

// Finalize hands the samples over as a Buffer. The track cannot be used
// afterwards.
func (t *Timeline) Finalize() (*audio.Buffer, error) {
	if t.done {
		return nil, &audio.TimelineInvariantError{Op: "finalize", Err: errFinalized}
	}
	t.done = true
	samples := t.samples
	t.samples = nil
	return audio.Wrap(audio.StereoFormat, samples)
}

func (t *Timeline) check(op string, buf *audio.Buffer) error {
	if t.done {
		return &audio.TimelineInvariantError{Op: op, Err: errFinalized}
	}
	if buf.Format() != audio.StereoFormat {
		return &audio.TimelineInvariantError{Op: op, Want: audio.StereoFormat, Got: buf.Format(), Err: audio.ErrFormatMismatch}
	}
	return nil
}
