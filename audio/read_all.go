// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"fmt"
	"io"
)

// MaxSamples bounds ReadAll so a corrupt length field cannot exhaust memory
// (one hour of 48kHz stereo).
const MaxSamples = 48000 * 2 * 60 * 60

const maxEmptyReads = 8

// ReadAll drains src into a single interleaved slice. ctx is checked
// between reads; on cancellation the context error is returned.
func ReadAll(ctx context.Context, src Source, bufSize int) ([]float32, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	// keep reads frame aligned
	bufSize = max(bufSize-bufSize%channels, channels)
	buf := make([]float32, bufSize)
	out := make([]float32, 0, src.SampleRate()*channels*2)
	empty := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := src.ReadSamples(buf)
		if n > 0 {
			if len(out)+n > MaxSamples {
				return nil, ErrSourceTooLarge
			}
			out = append(out, buf[:n]...)
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading samples: %w", err)
		}
		if n > 0 {
			empty = 0
			continue
		}
		// decoders may stall for a few reads between frames
		empty++
		if empty >= maxEmptyReads {
			break
		}
	}

	// drop a trailing partial frame
	return out[:len(out)-len(out)%channels], nil
}

// SliceSource serves interleaved samples from memory.
type SliceSource struct {
	samples    []float32
	sampleRate int
	channels   int
	pos        int
}

// NewSliceSource wraps samples without copying them.
func NewSliceSource(samples []float32, sampleRate, channels int) *SliceSource {
	return &SliceSource{
		samples:    samples,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

func (s *SliceSource) SampleRate() int { return s.sampleRate }
func (s *SliceSource) Channels() int   { return s.channels }
func (s *SliceSource) BufSize() int    { return 4096 }
func (s *SliceSource) Close() error    { return nil }

func (s *SliceSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.samples) {
		return 0, io.EOF
	}

	n := copy(dst, s.samples[s.pos:])
	s.pos += n
	if s.pos >= len(s.samples) {
		return n, io.EOF
	}
	return n, nil
}
