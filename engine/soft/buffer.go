// SPDX-License-Identifier: EPL-2.0

package soft

import "github.com/ik5/audtransport/audio"

// Buffer holds decoded audio as interleaved stereo at the engine rate.
type Buffer struct {
	samples []float32
	rate    int
}

// NewBuffer wraps interleaved stereo samples recorded at rate. A trailing
// half frame is dropped.
func NewBuffer(samples []float32, rate int) *Buffer {
	return &Buffer{
		samples: samples[:len(samples)-len(samples)%2],
		rate:    rate,
	}
}

func (b *Buffer) Duration() float64 {
	return float64(b.Frames()) / float64(b.rate)
}

// Frames is the buffer length in sample frames.
func (b *Buffer) Frames() int { return len(b.samples) / 2 }

func (b *Buffer) SampleRate() int { return b.rate }

// Source replays the buffer as a stereo audio.Source.
func (b *Buffer) Source() audio.Source {
	return audio.NewSliceSource(b.samples, b.rate, 2)
}

// toStereo spreads interleaved samples of the given channel count over two
// channels. Mono is duplicated; channels beyond two are expected to be mixed
// down already.
func toStereo(samples []float32, channels int) []float32 {
	if channels == 2 {
		return samples
	}

	frames := len(samples) / channels
	out := make([]float32, frames*2)
	for f := range frames {
		v := samples[f*channels]
		out[2*f] = v
		out[2*f+1] = v
	}
	return out
}
