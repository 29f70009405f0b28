package synth

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dgnsrekt/focusbox/internal/audio"
)

// Nyquist is the highest frequency representable at the fixed sample rate.
const Nyquist = audio.SampleRate / 2

// Leaky integrator constants for colored noise.
const (
	// NoiseIntegration is the weight of each new white sample.
	NoiseIntegration = 0.02
	// NoisePostGain restores loudness lost to integration smoothing.
	NoisePostGain = 3.5
)

// Noise describes a layered colored noise bed.
type Noise struct {
	Layers      int
	LayerGainDB float64
	LowPassHz   float64
}

// DefaultNoise is a soft brown-like bed: three layers filtered below 800 Hz.
func DefaultNoise() Noise {
	return Noise{Layers: 3, LayerGainDB: -12, LowPassHz: 800}
}

// Synthesizer owns the random source used for noise. It is safe for
// concurrent use.
type Synthesizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Synthesizer drawing from src.
func New(src rand.Source) *Synthesizer {
	return &Synthesizer{rng: rand.New(src)}
}

// NewSeeded returns a Synthesizer whose noise is reproducible for a seed.
func NewSeeded(seed uint64) *Synthesizer {
	return New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandom returns a Synthesizer seeded from the runtime's random source.
func NewRandom() *Synthesizer {
	return NewSeeded(rand.Uint64())
}

// ColoredNoise renders n.Layers independent leaky-integrated noise layers,
// sums them with saturation and low-passes the result. Zero layers give
// silence of the requested length. The cutoff must lie in (0, Nyquist).
func (s *Synthesizer) ColoredNoise(d time.Duration, n Noise) (*audio.Buffer, error) {
	if n.Layers < 0 {
		return nil, invalid("noise", "layers", n.Layers)
	}
	if !finite(n.LayerGainDB) {
		return nil, invalid("noise", "gain", n.LayerGainDB)
	}
	if !finite(n.LowPassHz) || n.LowPassHz <= 0 || n.LowPassHz >= Nyquist {
		return nil, invalid("noise", "lowpass", n.LowPassHz)
	}

	frames := audio.FramesFor(d)
	mixed := make([]int16, frames*audio.Stereo)
	for range n.Layers {
		layer := s.layer(frames).ToStereo().Gain(n.LayerGainDB)
		if err := audio.MixInto(mixed, audio.StereoFormat, layer, 0); err != nil {
			return nil, err
		}
	}

	buf, err := audio.NewBuffer(audio.StereoFormat, mixed)
	if err != nil {
		return nil, err
	}
	return buf.LowPass(n.LowPassHz), nil
}

// layer renders one mono channel of integrated white noise.
func (s *Synthesizer) layer(frames int) *audio.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()

	samples := make([]int16, frames)
	var state float64
	for i := range samples {
		white := s.rng.Float64()*2 - 1
		state = (state + NoiseIntegration*white) / (1 + NoiseIntegration)
		samples[i] = quantize(state * NoisePostGain * audio.MaxSample)
	}
	buf, _ := audio.NewBuffer(audio.MonoFormat, samples)
	return buf
}
