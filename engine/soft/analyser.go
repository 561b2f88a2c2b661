// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"math"
	"math/cmplx"

	"github.com/ik5/audtransport/audio"
	"github.com/ik5/audtransport/utils"
)

// Decibel range mapped onto 0..255 by Frequency.
const (
	MinDecibels = -100.0
	MaxDecibels = -30.0
)

// analyserNode keeps the last size mono samples of its input and derives
// time and frequency snapshots from them on demand.
type analyserNode struct {
	node
	size      int
	smoothing float64

	ring []float32 // mono history, ring[pos] is the oldest sample
	pos  int
	mono []float32

	window []float64
	fft    []complex128
	mag    []float64 // smoothed magnitudes, size/2 bins
}

func newAnalyser(e *Engine, size int, smoothing float64) *analyserNode {
	a := &analyserNode{
		node:      node{eng: e, kind: "analyser"},
		size:      size,
		smoothing: smoothing,
		ring:      make([]float32, size),
		window:    blackman(size),
		fft:       make([]complex128, size),
		mag:       make([]float64, size/2),
	}
	return a
}

func (a *analyserNode) process(block []float32) {
	frames := len(block) / 2
	if cap(a.mono) < frames {
		a.mono = make([]float32, frames)
	}
	a.mono = a.mono[:frames]
	audio.MixDown(a.mono, block, 2)

	for _, v := range a.mono {
		a.ring[a.pos] = v
		a.pos = (a.pos + 1) % a.size
	}
}

func (a *analyserNode) TimeDomain(dst []byte) {
	a.eng.mu.Lock()
	defer a.eng.mu.Unlock()

	n := min(len(dst), a.size)
	// most recent n samples, oldest first
	from := a.pos + a.size - n
	for i := range n {
		dst[i] = utils.Float32ToByte(a.ring[(from+i)%a.size])
	}
	for i := n; i < len(dst); i++ {
		dst[i] = 128
	}
}

func (a *analyserNode) Frequency(dst []byte) {
	a.eng.mu.Lock()
	defer a.eng.mu.Unlock()

	for i := range a.size {
		v := float64(a.ring[(a.pos+i)%a.size]) * a.window[i]
		a.fft[i] = complex(v, 0)
	}
	fftInPlace(a.fft)

	scale := 1.0 / float64(a.size)
	for k := range a.mag {
		cur := cmplx.Abs(a.fft[k]) * scale
		a.mag[k] = a.smoothing*a.mag[k] + (1-a.smoothing)*cur
	}

	n := min(len(dst), len(a.mag))
	for k := range n {
		db := math.Inf(-1)
		if a.mag[k] > 0 {
			db = 20 * math.Log10(a.mag[k])
		}
		dst[k] = utils.DecibelsToByte(db, MinDecibels, MaxDecibels)
	}
	clear(dst[n:])
}

// blackman returns the window used by graph analysers (alpha = 0.16).
func blackman(n int) []float64 {
	const alpha = 0.16
	a0 := (1 - alpha) / 2
	a1 := 0.5
	a2 := alpha / 2

	w := make([]float64, n)
	for i := range n {
		x := float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(2*math.Pi*x) + a2*math.Cos(4*math.Pi*x)
	}
	return w
}

// fftInPlace is an iterative radix-2 Cooley-Tukey transform; len(a) must be
// a power of two.
func fftInPlace(a []complex128) {
	n := len(a)
	if n <= 1 {
		return
	}

	j := 0
	for i := 1; i < n; i++ {
		bit := n >> 1
		for j&bit != 0 {
			j ^= bit
			bit >>= 1
		}
		j ^= bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}

	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		w := cmplx.Exp(complex(0, -2*math.Pi/float64(size)))
		for start := 0; start < n; start += size {
			wn := complex(1, 0)
			for k := range half {
				t := wn * a[start+k+half]
				a[start+k+half] = a[start+k] - t
				a[start+k] += t
				wn *= w
			}
		}
	}
}
