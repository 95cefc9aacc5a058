// Package audio provides live microphone capture: the Frame data model,
// input format negotiation against the host's default device, and a
// portaudio-backed capture stream that pushes frames to a callback on the
// audio backend's own thread.
package audio

import (
	"fmt"
	"time"
)

// SampleFormat identifies the in-memory representation of a Frame's samples.
type SampleFormat int

const (
	FormatInt16 SampleFormat = iota
	FormatInt32
	FormatFloat32
)

func (f SampleFormat) String() string {
	switch f {
	case FormatInt16:
		return "int16"
	case FormatInt32:
		return "int32"
	case FormatFloat32:
		return "float32"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// BitDepth returns the sample width in bits.
func (f SampleFormat) BitDepth() int {
	switch f {
	case FormatInt16:
		return 16
	default:
		return 32
	}
}

// Frame is a bounded chunk of PCM samples tagged with its format, channel
// count and sample rate. Exactly one of Int16, Int32 or Float32 is populated,
// matching Format. Frames are immutable after delivery.
type Frame struct {
	Format     SampleFormat
	Channels   int
	SampleRate int

	Int16   []int16
	Int32   []int32
	Float32 []float32
}

// NumSamples returns the total sample count across all channels.
func (f Frame) NumSamples() int {
	switch f.Format {
	case FormatInt16:
		return len(f.Int16)
	case FormatInt32:
		return len(f.Int32)
	default:
		return len(f.Float32)
	}
}

// Duration returns the wall-clock time spanned by the frame.
func (f Frame) Duration() time.Duration {
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return 0
	}
	frames := f.NumSamples() / f.Channels
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// Float32Samples returns the samples normalized to [-1, 1], converting from
// the integer formats when needed. The returned slice aliases the frame data
// only for FormatFloat32.
func (f Frame) Float32Samples() []float32 {
	switch f.Format {
	case FormatInt16:
		out := make([]float32, len(f.Int16))
		for i, s := range f.Int16 {
			out[i] = float32(s) / 32768.0
		}
		return out
	case FormatInt32:
		out := make([]float32, len(f.Int32))
		for i, s := range f.Int32 {
			out[i] = float32(float64(s) / 2147483648.0)
		}
		return out
	default:
		return f.Float32
	}
}

// Int16Samples returns the samples as 16-bit PCM, converting and clamping
// from the other formats when needed. The returned slice aliases the frame
// data only for FormatInt16.
func (f Frame) Int16Samples() []int16 {
	switch f.Format {
	case FormatInt16:
		return f.Int16
	case FormatInt32:
		out := make([]int16, len(f.Int32))
		for i, s := range f.Int32 {
			out[i] = int16(s >> 16)
		}
		return out
	default:
		out := make([]int16, len(f.Float32))
		for i, s := range f.Float32 {
			if s > 1.0 {
				s = 1.0
			} else if s < -1.0 {
				s = -1.0
			}
			out[i] = int16(s * 32767.0)
		}
		return out
	}
}
