package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Fixed render configuration shared by every buffer in the pipeline.
const (
	// SampleRate is the audio sample rate in Hz.
	SampleRate = 44100
	// BitDepth is the bit depth per sample.
	BitDepth = 16
	// BytesPerSample is the number of bytes in one channel sample.
	BytesPerSample = BitDepth / 8

	// Mono is a single channel layout.
	Mono = 1
	// Stereo is the two channel layout used by the timeline.
	Stereo = 2

	// MaxSample is the largest positive quantized sample.
	MaxSample = math.MaxInt16
	// MinSample is the smallest quantized sample.
	MinSample = math.MinInt16
)

// Format describes the sample layout of a Buffer.
type Format struct {
	SampleRate int
	Channels   int
}

// MonoFormat is the layout of decoded speech clips and synthesized tones.
var MonoFormat = Format{SampleRate: SampleRate, Channels: Mono}

// StereoFormat is the layout of the timeline and everything mixed into it.
var StereoFormat = Format{SampleRate: SampleRate, Channels: Stereo}

// String implements fmt.Stringer.
func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch", f.SampleRate, f.Channels)
}

// FrameBytes returns the number of bytes in one interleaved frame.
func (f Format) FrameBytes() int {
	return BytesPerSample * f.Channels
}

// validate checks that a format is one the pipeline can carry.
func (f Format) validate() error {
	if f.SampleRate != SampleRate {
		return fmt.Errorf("unsupported sample rate %d (want %d)", f.SampleRate, SampleRate)
	}
	if f.Channels != Mono && f.Channels != Stereo {
		return fmt.Errorf("unsupported channel count %d", f.Channels)
	}
	return nil
}

// FramesFor converts a duration to the nearest whole number of frames.
// Negative durations clamp to zero.
func FramesFor(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((int64(d)*SampleRate + int64(time.Second)/2) / int64(time.Second))
}

// DurationOf converts a frame count back to a duration.
func DurationOf(frames int) time.Duration {
	return time.Duration(int64(frames) * int64(time.Second) / SampleRate)
}

// DBToGain converts a decibel change to a linear amplitude factor.
func DBToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

// clamp saturates a mixed value into the int16 range.
func clamp(v float64) int16 {
	if v > MaxSample {
		return MaxSample
	}
	if v < MinSample {
		return MinSample
	}
	return int16(math.Round(v))
}

// mix adds two samples with saturation.
func mix(a, b int16) int16 {
	sum := int32(a) + int32(b)
	if sum > MaxSample {
		return MaxSample
	}
	if sum < MinSample {
		return MinSample
	}
	return int16(sum)
}

// encodePCM converts int16 samples to little-endian bytes.
func encodePCM(samples []int16) []byte {
	buf := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*BytesPerSample:], uint16(s))
	}
	return buf
}

// decodePCM converts little-endian bytes to int16 samples.
func decodePCM(data []byte) []int16 {
	samples := make([]int16, len(data)/BytesPerSample)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*BytesPerSample:]))
	}
	return samples
}
