package audio

import (
	"fmt"
	"math"
	"time"
)

// Buffer is an immutable sequence of interleaved 16-bit samples.
// Every operation returns a new Buffer and leaves the receiver untouched,
// so one buffer can be sliced and overlaid many times.
type Buffer struct {
	format  Format
	samples []int16
}

// NewBuffer wraps interleaved samples. The slice is copied.
func NewBuffer(format Format, samples []int16) (*Buffer, error) {
	if err := format.validate(); err != nil {
		return nil, err
	}
	if len(samples)%format.Channels != 0 {
		return nil, fmt.Errorf("%w: %d samples for %d channels", ErrMisaligned, len(samples), format.Channels)
	}
	cp := make([]int16, len(samples))
	copy(cp, samples)
	return &Buffer{format: format, samples: cp}, nil
}

// Wrap is NewBuffer without the copy. The caller gives up samples and must
// not modify them afterwards.
func Wrap(format Format, samples []int16) (*Buffer, error) {
	if err := format.validate(); err != nil {
		return nil, err
	}
	if len(samples)%format.Channels != 0 {
		return nil, fmt.Errorf("%w: %d samples for %d channels", ErrMisaligned, len(samples), format.Channels)
	}
	return &Buffer{format: format, samples: samples}, nil
}

// FromPCM decodes little-endian signed 16-bit PCM.
func FromPCM(data []byte, format Format) (*Buffer, error) {
	if err := format.validate(); err != nil {
		return nil, err
	}
	if len(data)%format.FrameBytes() != 0 {
		return nil, fmt.Errorf("%w: %d bytes for %d-byte frames", ErrMisaligned, len(data), format.FrameBytes())
	}
	return &Buffer{format: format, samples: decodePCM(data)}, nil
}

// FromMono combines two mono buffers of equal length into one stereo buffer.
func FromMono(left, right *Buffer) (*Buffer, error) {
	if left.format != MonoFormat {
		return nil, mismatch("stereo", MonoFormat, left.format)
	}
	if right.format != MonoFormat {
		return nil, mismatch("stereo", MonoFormat, right.format)
	}
	if left.Frames() != right.Frames() {
		return nil, outOfBounds("stereo", 0, right.Frames(), left.Frames())
	}
	out := make([]int16, 2*left.Frames())
	for i := range left.samples {
		out[2*i] = left.samples[i]
		out[2*i+1] = right.samples[i]
	}
	return &Buffer{format: StereoFormat, samples: out}, nil
}

// Silence returns a zero-filled buffer. Non-positive durations yield an empty buffer.
func Silence(d time.Duration, channels int) *Buffer {
	return SilenceFrames(FramesFor(d), channels)
}

// SilenceFrames returns a zero-filled buffer of the given frame count.
func SilenceFrames(frames, channels int) *Buffer {
	if frames < 0 {
		frames = 0
	}
	return &Buffer{
		format:  Format{SampleRate: SampleRate, Channels: channels},
		samples: make([]int16, frames*channels),
	}
}

// Empty returns a zero-length buffer.
func Empty(channels int) *Buffer {
	return SilenceFrames(0, channels)
}

// Format returns the buffer layout.
func (b *Buffer) Format() Format {
	return b.format
}

// Channels returns the channel count.
func (b *Buffer) Channels() int {
	return b.format.Channels
}

// Frames returns the number of frames (samples per channel).
func (b *Buffer) Frames() int {
	return len(b.samples) / b.format.Channels
}

// Duration returns the playing time of the buffer.
func (b *Buffer) Duration() time.Duration {
	return DurationOf(b.Frames())
}

// Sample returns the value of one channel at one frame.
func (b *Buffer) Sample(frame, channel int) int16 {
	return b.samples[frame*b.format.Channels+channel]
}

// Samples returns a copy of the interleaved samples.
func (b *Buffer) Samples() []int16 {
	cp := make([]int16, len(b.samples))
	copy(cp, b.samples)
	return cp
}

// Channel extracts one channel as a mono buffer.
func (b *Buffer) Channel(ch int) *Buffer {
	n := b.Frames()
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = b.samples[i*b.format.Channels+ch]
	}
	return &Buffer{format: MonoFormat, samples: out}
}

// AppendTo appends the interleaved samples of b to dst.
func (b *Buffer) AppendTo(dst []int16) []int16 {
	return append(dst, b.samples...)
}

// PCM encodes the buffer as little-endian signed 16-bit PCM.
func (b *Buffer) PCM() []byte {
	return encodePCM(b.samples)
}

// Peak returns the largest absolute sample value.
func (b *Buffer) Peak() int {
	peak := 0
	for _, s := range b.samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

// IsSilent reports whether every sample is zero.
func (b *Buffer) IsSilent() bool {
	return b.Peak() == 0
}

// ToStereo duplicates a mono buffer into both channels. Stereo buffers are returned as is.
func (b *Buffer) ToStereo() *Buffer {
	if b.format.Channels == Stereo {
		return b
	}
	out := make([]int16, 2*len(b.samples))
	for i, s := range b.samples {
		out[2*i] = s
		out[2*i+1] = s
	}
	return &Buffer{format: Format{SampleRate: b.format.SampleRate, Channels: Stereo}, samples: out}
}

// Slice returns the range [start, end) as a new buffer.
func (b *Buffer) Slice(start, end time.Duration) (*Buffer, error) {
	return b.SliceFrames(FramesFor(start), FramesFor(end))
}

// SliceFrames returns the frame range [from, to) as a new buffer.
func (b *Buffer) SliceFrames(from, to int) (*Buffer, error) {
	if from < 0 || to < from || to > b.Frames() {
		return nil, outOfBounds("slice", from, to-from, b.Frames())
	}
	ch := b.format.Channels
	out := make([]int16, (to-from)*ch)
	copy(out, b.samples[from*ch:to*ch])
	return &Buffer{format: b.format, samples: out}, nil
}

// Overlay mixes other onto a copy of b starting at offset. The result keeps
// b's length: any part of other past the end of b is dropped.
func (b *Buffer) Overlay(other *Buffer, offset time.Duration) (*Buffer, error) {
	return b.OverlayFrames(other, FramesFor(offset))
}

// OverlayFrames is Overlay with a frame offset.
func (b *Buffer) OverlayFrames(other *Buffer, offset int) (*Buffer, error) {
	out := make([]int16, len(b.samples))
	copy(out, b.samples)
	if err := MixInto(out, b.format, other, offset); err != nil {
		return nil, err
	}
	return &Buffer{format: b.format, samples: out}, nil
}

// MixInto adds other into dst (interleaved samples in the given format) at a
// frame offset, truncating at the end of dst. dst is modified in place.
func MixInto(dst []int16, format Format, other *Buffer, offset int) error {
	frames := len(dst) / format.Channels
	if other.format != format {
		return mismatch("overlay", format, other.format)
	}
	if offset < 0 || offset > frames {
		return outOfBounds("overlay", offset, other.Frames(), frames)
	}
	ch := format.Channels
	n := other.Frames()
	if offset+n > frames {
		n = frames - offset
	}
	base := dst[offset*ch : (offset+n)*ch]
	for i := range base {
		base[i] = mix(base[i], other.samples[i])
	}
	return nil
}

// Concat joins buffers end to end. All buffers must share one format.
func Concat(bufs ...*Buffer) (*Buffer, error) {
	if len(bufs) == 0 {
		return Empty(Stereo), nil
	}
	format := bufs[0].format
	total := 0
	for _, buf := range bufs {
		if buf.format != format {
			return nil, mismatch("concat", format, buf.format)
		}
		total += len(buf.samples)
	}
	out := make([]int16, 0, total)
	for _, buf := range bufs {
		out = append(out, buf.samples...)
	}
	return &Buffer{format: format, samples: out}, nil
}

// Loop repeats the buffer until it is exactly frames long.
func (b *Buffer) Loop(frames int) *Buffer {
	if frames <= 0 || b.Frames() == 0 {
		return SilenceFrames(frames, b.format.Channels)
	}
	ch := b.format.Channels
	out := make([]int16, frames*ch)
	for i := 0; i < len(out); i += len(b.samples) {
		copy(out[i:], b.samples)
	}
	return &Buffer{format: b.format, samples: out}
}

// Gain applies a uniform change in decibels.
func (b *Buffer) Gain(db float64) *Buffer {
	factor := DBToGain(db)
	out := make([]int16, len(b.samples))
	for i, s := range b.samples {
		out[i] = clamp(float64(s) * factor)
	}
	return &Buffer{format: b.format, samples: out}
}

// LowPass attenuates content above cutoff Hz with a single-pole RC filter
// run independently over each channel. A non-positive cutoff returns b.
func (b *Buffer) LowPass(cutoff float64) *Buffer {
	if cutoff <= 0 || b.Frames() == 0 {
		return b
	}
	rc := 1 / (2 * math.Pi * cutoff)
	dt := 1 / float64(b.format.SampleRate)
	alpha := dt / (rc + dt)

	ch := b.format.Channels
	out := make([]int16, len(b.samples))
	for c := 0; c < ch; c++ {
		prev := float64(b.samples[c])
		out[c] = b.samples[c]
		for i := c + ch; i < len(b.samples); i += ch {
			prev += alpha * (float64(b.samples[i]) - prev)
			out[i] = clamp(prev)
		}
	}
	return &Buffer{format: b.format, samples: out}
}

// FadeIn ramps the first d of the buffer linearly up from silence.
func (b *Buffer) FadeIn(d time.Duration) *Buffer {
	n := min(FramesFor(d), b.Frames())
	out := b.Samples()
	ch := b.format.Channels
	for i := 0; i < n; i++ {
		g := float64(i) / float64(n)
		for c := 0; c < ch; c++ {
			out[i*ch+c] = clamp(float64(out[i*ch+c]) * g)
		}
	}
	return &Buffer{format: b.format, samples: out}
}

// FadeOut ramps the last d of the buffer linearly down to silence.
func (b *Buffer) FadeOut(d time.Duration) *Buffer {
	frames := b.Frames()
	n := min(FramesFor(d), frames)
	out := b.Samples()
	ch := b.format.Channels
	start := frames - n
	for i := 0; i < n; i++ {
		g := float64(n-1-i) / float64(n)
		for c := 0; c < ch; c++ {
			idx := (start+i)*ch + c
			out[idx] = clamp(float64(out[idx]) * g)
		}
	}
	return &Buffer{format: b.format, samples: out}
}
