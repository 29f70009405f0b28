package synth

import (
	"math"
	"time"

	"github.com/dgnsrekt/focusbox/internal/audio"
)

// Tone returns a mono sine wave of frequency Hz lasting d, attenuated by
// gainDB. Durations of zero or less give an empty buffer.
func Tone(d time.Duration, frequency, gainDB float64) (*audio.Buffer, error) {
	if !finite(frequency) || frequency < 0 {
		return nil, invalid("tone", "frequency", frequency)
	}
	if !finite(gainDB) {
		return nil, invalid("tone", "gain", gainDB)
	}
	return sine(audio.FramesFor(d), frequency, gainDB), nil
}

// Binaural returns a stereo buffer with base Hz in the left channel and
// base-beat Hz in the right, both attenuated by gainDB.
//
// When base-beat is negative the right channel is a phase-inverted sine at
// |base-beat| Hz, which sounds the same as the positive frequency. When it
// is exactly zero the right channel is silent.
func Binaural(d time.Duration, base, beat, gainDB float64) (*audio.Buffer, error) {
	if !finite(base) || base <= 0 {
		return nil, invalid("binaural", "base", base)
	}
	if !finite(beat) {
		return nil, invalid("binaural", "beat", beat)
	}
	if !finite(gainDB) {
		return nil, invalid("binaural", "gain", gainDB)
	}
	frames := audio.FramesFor(d)
	return audio.FromMono(sine(frames, base, gainDB), sine(frames, base-beat, gainDB))
}

// sine renders frames of a full-scale sine scaled by gainDB.
func sine(frames int, frequency, gainDB float64) *audio.Buffer {
	amp := float64(audio.MaxSample) * audio.DBToGain(gainDB)
	step := 2 * math.Pi * frequency / audio.SampleRate
	samples := make([]int16, frames)
	for i := range samples {
		samples[i] = quantize(amp * math.Sin(step*float64(i)))
	}
	buf, _ := audio.NewBuffer(audio.MonoFormat, samples)
	return buf
}

// quantize rounds v to the nearest sample, saturating at ±32767.
func quantize(v float64) int16 {
	return int16(math.Round(math.Max(-audio.MaxSample, math.Min(audio.MaxSample, v))))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
