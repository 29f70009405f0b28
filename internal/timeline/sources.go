package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgnsrekt/focusbox/internal/audio"
	"github.com/dgnsrekt/focusbox/internal/synth"
)

// Minute is the length of one background segment.
const Minute = time.Minute

// Background kinds.
const (
	BackgroundBinaural = "binaural"
	BackgroundNoise    = "noise"
	BackgroundSilence  = "silence"
)

// Outro kinds.
const (
	OutroTone     = "tone"
	OutroArpeggio = "arpeggio"
)

// Background selects the bed under every task.
type Background struct {
	Kind string

	// binaural
	BaseHz float64
	BeatHz float64
	GainDB float64

	// noise
	Noise synth.Noise
}

// DefaultBackground is a 220 Hz binaural tone with a 40 Hz beat at -10 dB.
func DefaultBackground() Background {
	return Background{
		Kind:   BackgroundBinaural,
		BaseHz: 220,
		BeatHz: 40,
		GainDB: -10,
		Noise:  synth.DefaultNoise(),
	}
}

// Build renders one stereo minute of the background. syn is only used for
// noise and may be nil otherwise.
func (b Background) Build(syn *synth.Synthesizer) (*audio.Buffer, error) {
	switch strings.ToLower(b.Kind) {
	case BackgroundBinaural, "":
		return synth.Binaural(Minute, b.BaseHz, b.BeatHz, b.GainDB)
	case BackgroundNoise:
		if syn == nil {
			syn = synth.NewRandom()
		}
		return syn.ColoredNoise(Minute, b.Noise)
	case BackgroundSilence:
		return audio.Silence(Minute, audio.Stereo), nil
	default:
		return nil, fmt.Errorf("unknown background %q", b.Kind)
	}
}

// Outro selects the end-of-task cue.
type Outro struct {
	Kind string

	// tone
	FrequencyHz float64
	Duration    time.Duration
	GainDB      float64

	// arpeggio
	Cue synth.Cue
}

// DefaultOutro is a one second 440 Hz tone at -15 dB.
func DefaultOutro() Outro {
	return Outro{
		Kind:        OutroTone,
		FrequencyHz: 440,
		Duration:    time.Second,
		GainDB:      -15,
		Cue:         synth.DefaultArpeggio(),
	}
}

// Build renders the cue as stereo.
func (o Outro) Build() (*audio.Buffer, error) {
	var (
		cue *audio.Buffer
		err error
	)
	switch strings.ToLower(o.Kind) {
	case OutroTone, "":
		cue, err = synth.Tone(o.Duration, o.FrequencyHz, o.GainDB)
	case OutroArpeggio:
		cue, err = synth.CueSequence(o.Cue)
	default:
		return nil, fmt.Errorf("unknown outro %q", o.Kind)
	}
	if err != nil {
		return nil, err
	}
	return cue.ToStereo(), nil
}
