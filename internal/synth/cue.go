package synth

import (
	"time"

	"github.com/dgnsrekt/focusbox/internal/audio"
)

// Note is one pitch of a cue sequence.
type Note struct {
	Frequency float64
	Duration  time.Duration
	GainDB    float64
}

// Cue is a short melodic phrase played when a task ends.
type Cue struct {
	Notes []Note
	// Sustain multiplies the length of the last note. 1 leaves it as is.
	Sustain     float64
	FadeIn      time.Duration
	FadeOut     time.Duration
	LastFadeOut time.Duration
}

// C major arpeggio pitches.
const (
	C5 = 523.25
	E5 = 659.25
	G5 = 783.99
	C6 = 1046.5
)

// DefaultArpeggio is an ascending C major arpeggio of 400 ms notes with the
// top note held twice as long.
func DefaultArpeggio() Cue {
	notes := make([]Note, 0, 4)
	for _, f := range []float64{C5, E5, G5, C6} {
		notes = append(notes, Note{Frequency: f, Duration: 400 * time.Millisecond, GainDB: -12})
	}
	return Cue{
		Notes:       notes,
		Sustain:     2,
		FadeIn:      50 * time.Millisecond,
		FadeOut:     50 * time.Millisecond,
		LastFadeOut: 300 * time.Millisecond,
	}
}

// Duration returns the rendered length of the cue.
func (c Cue) Duration() time.Duration {
	var total time.Duration
	for i, n := range c.Notes {
		total += c.noteLength(i, n)
	}
	return total
}

func (c Cue) noteLength(i int, n Note) time.Duration {
	if i == len(c.Notes)-1 {
		return time.Duration(float64(n.Duration) * c.Sustain)
	}
	return n.Duration
}

// CueSequence renders the notes of c back to back as a mono buffer. Every
// note fades in; all but the last fade out over FadeOut, the last over
// LastFadeOut.
func CueSequence(c Cue) (*audio.Buffer, error) {
	if len(c.Notes) == 0 {
		return nil, invalid("cue", "notes", 0)
	}
	if !finite(c.Sustain) || c.Sustain <= 0 {
		return nil, invalid("cue", "sustain", c.Sustain)
	}
	if c.FadeIn < 0 || c.FadeOut < 0 || c.LastFadeOut < 0 {
		return nil, invalid("cue", "fade", []time.Duration{c.FadeIn, c.FadeOut, c.LastFadeOut})
	}

	parts := make([]*audio.Buffer, 0, len(c.Notes))
	for i, n := range c.Notes {
		tone, err := Tone(c.noteLength(i, n), n.Frequency, n.GainDB)
		if err != nil {
			return nil, err
		}
		tone = tone.FadeIn(c.FadeIn)
		if i == len(c.Notes)-1 {
			tone = tone.FadeOut(c.LastFadeOut)
		} else {
			tone = tone.FadeOut(c.FadeOut)
		}
		parts = append(parts, tone)
	}
	return audio.Concat(parts...)
}
