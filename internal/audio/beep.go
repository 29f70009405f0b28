package audio

import (
	"errors"
	"fmt"

	"github.com/gopxl/beep/v2"
)

// resampleQuality is the beep resampler quality used for decoded speech.
const resampleQuality = 4

// BeepFormat returns the beep description of the buffer layout.
func (f Format) BeepFormat() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(f.SampleRate),
		NumChannels: f.Channels,
		Precision:   BytesPerSample,
	}
}

// Streamer returns a beep.Streamer that plays the buffer once.
func (b *Buffer) Streamer() beep.Streamer {
	return &bufferStreamer{buf: b}
}

type bufferStreamer struct {
	buf *Buffer
	pos int
}

func (s *bufferStreamer) Stream(samples [][2]float64) (int, bool) {
	frames := s.buf.Frames()
	if s.pos >= frames {
		return 0, false
	}
	ch := s.buf.format.Channels
	n := 0
	for n < len(samples) && s.pos < frames {
		left := float64(s.buf.samples[s.pos*ch]) / (MaxSample + 1)
		right := left
		if ch == Stereo {
			right = float64(s.buf.samples[s.pos*ch+1]) / (MaxSample + 1)
		}
		samples[n] = [2]float64{left, right}
		n++
		s.pos++
	}
	return n, true
}

func (s *bufferStreamer) Err() error { return nil }

// Decode drains a beep stream into a buffer with the requested channel
// count, resampling to SampleRate when the source rate differs.
func Decode(s beep.Streamer, format beep.Format, channels int) (*Buffer, error) {
	if channels != Mono && channels != Stereo {
		return nil, fmt.Errorf("unsupported channel count %d", channels)
	}
	if format.SampleRate <= 0 {
		return nil, errors.New("stream has no sample rate")
	}
	if int(format.SampleRate) != SampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, beep.SampleRate(SampleRate), s)
	}

	out := make([]int16, 0, SampleRate*channels)
	chunk := make([][2]float64, 1024)
	for {
		n, ok := s.Stream(chunk)
		for _, frame := range chunk[:n] {
			if channels == Mono {
				out = append(out, toSample((frame[0]+frame[1])/2))
			} else {
				out = append(out, toSample(frame[0]), toSample(frame[1]))
			}
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("decode stream: %w", err)
	}
	return &Buffer{format: Format{SampleRate: SampleRate, Channels: channels}, samples: out}, nil
}

// toSample quantizes a beep float sample in [-1, 1].
func toSample(v float64) int16 {
	return clamp(v * (MaxSample + 1))
}
