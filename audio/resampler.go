// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audtransport/utils"
)

// Resampler streams from src to a target sample rate using cubic
// interpolation. Works on interleaved samples and preserves channel count.
// A one-pole low-pass runs on the input when downsampling.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames consumed per output frame
	channels int

	// window of four source frames: t-1, t0, t+1, t+2
	win   [4][]float32
	valid [4]bool
	pos   float64 // fractional position between win[1] and win[2]

	frame  []float32
	primed bool
	seeded bool
	eof    bool
	done   bool

	lowPass bool
	lpState []float32
}

const lowPassAlpha = 0.5

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     step,
		channels: channels,
		frame:    make([]float32, channels),
		lowPass:  step > 1.0,
		lpState:  make([]float32, channels),
	}
	for i := range r.win {
		r.win[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("closing resampler source: %w", err)
	}
	return nil
}

// readFrame pulls one source frame into r.frame.
func (r *Resampler) readFrame() (bool, error) {
	if r.eof {
		return false, nil
	}

	n, err := r.src.ReadSamples(r.frame)
	got := n == r.channels
	if got && r.lowPass {
		if !r.seeded {
			// start the filter at the first frame to skip the warm-up ramp
			copy(r.lpState, r.frame)
			r.seeded = true
		}
		for c := range r.channels {
			r.frame[c] = lowPassAlpha*r.frame[c] + (1-lowPassAlpha)*r.lpState[c]
			r.lpState[c] = r.frame[c]
		}
	}

	if err == io.EOF {
		r.eof = true
		return got, nil
	}
	if err != nil {
		return false, fmt.Errorf("resampler source: %w", err)
	}
	return got, nil
}

// load reads the next source frame into slot i.
func (r *Resampler) load(i int) error {
	got, err := r.readFrame()
	if err != nil {
		return err
	}
	if got {
		copy(r.win[i], r.frame)
	}
	r.valid[i] = got
	return nil
}

// prime places the first source frame at win[1]; win[0] has no
// predecessor yet.
func (r *Resampler) prime() error {
	r.primed = true

	for i := 1; i < len(r.win); i++ {
		if err := r.load(i); err != nil {
			return err
		}
	}
	if !r.valid[1] {
		return io.EOF
	}
	return nil
}

// shift advances the window by one source frame.
func (r *Resampler) shift() error {
	r.win[0], r.win[1], r.win[2], r.win[3] = r.win[1], r.win[2], r.win[3], r.win[0]
	r.valid[0], r.valid[1], r.valid[2] = r.valid[1], r.valid[2], r.valid[3]

	if err := r.load(3); err != nil {
		return err
	}
	if !r.valid[1] {
		return io.EOF
	}
	return nil
}

// ReadSamples produces dst samples at the target rate.
// len(dst) must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if r.done {
		return 0, io.EOF
	}
	if !r.primed {
		if err := r.prime(); err != nil {
			r.done = true
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0

	for written < frames {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.shift(); err != nil {
				r.done = true
				return written * r.channels, err
			}
		}

		x := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range r.channels {
			y1 := r.win[1][c]
			y0, y2 := y1, y1
			if r.valid[0] {
				y0 = r.win[0][c]
			}
			if r.valid[2] {
				y2 = r.win[2][c]
			}
			y3 := y2
			if r.valid[3] {
				y3 = r.win[3][c]
			}
			out[c] = utils.CubicInterpolate(y0, y1, y2, y3, x)
		}

		written++
		r.pos += r.step
	}

	return written * r.channels, nil
}
