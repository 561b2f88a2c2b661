// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"log/slog"
	"math"
	"math/bits"
	"sync"

	"github.com/ik5/audtransport/audio"
	"github.com/ik5/audtransport/engine"
	"github.com/ik5/audtransport/formats/aiff"
	"github.com/ik5/audtransport/formats/mp3"
	"github.com/ik5/audtransport/formats/vorbis"
	"github.com/ik5/audtransport/formats/wav"
)

const (
	DefaultSampleRate = 44100

	// blockFrames is the render quantum.
	blockFrames = 128

	minWindow = 32
	maxWindow = 32768

	// maxAdvance bounds one Advance call, in seconds.
	maxAdvance = 3600.0
)

var _ engine.Engine = (*Engine)(nil)

// Engine is a pull-driven software mixing engine. Its clock only moves
// when Render or Advance is called.
type Engine struct {
	mu sync.Mutex

	rate     int
	frame    int64
	gen      uint64
	registry *audio.Registry
	logger   *slog.Logger

	out       *outputNode
	players   map[*playbackNode]struct{}
	analysers []*analyserNode

	silence []float32
	touched []vertex
	queue   []vertex
}

type Option func(*Engine)

func WithSampleRate(rate int) Option {
	return func(e *Engine) {
		if rate > 0 {
			e.rate = rate
		}
	}
}

// WithRegistry replaces the decoders used by Decode.
func WithRegistry(r *audio.Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		rate:    DefaultSampleRate,
		logger:  slog.New(slog.DiscardHandler),
		players: make(map[*playbackNode]struct{}),
		silence: make([]float32, blockFrames*2),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = DefaultRegistry()
	}
	e.out = &outputNode{node: node{eng: e, kind: "output"}}

	return e
}

// DefaultRegistry knows wav, aiff, ogg vorbis and mp3. mp3 goes last since
// its frame sync check is the loosest.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{}, wav.Sniff)
	r.Register("aiff", aiff.Decoder{}, aiff.Sniff)
	r.Register("ogg", vorbis.Decoder{}, vorbis.Sniff)
	r.Register("mp3", mp3.Decoder{}, mp3.Sniff)
	return r
}

func (e *Engine) SampleRate() int { return e.rate }

func (e *Engine) Now() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.seconds(e.frame)
}

func (e *Engine) Output() engine.Node { return e.out }

func (e *Engine) NewAnalysisNode(windowSize int, smoothing float64) engine.AnalysisNode {
	size := windowFor(windowSize)
	if size != windowSize {
		e.logger.Warn("analyser window adjusted",
			slog.Int("requested", windowSize),
			slog.Int("size", size))
	}
	if math.IsNaN(smoothing) {
		smoothing = 0
	}
	smoothing = min(max(smoothing, 0), 1)

	a := newAnalyser(e, size, smoothing)

	e.mu.Lock()
	e.analysers = append(e.analysers, a)
	e.mu.Unlock()

	return a
}

func (e *Engine) NewPassThroughNode(windowSize int) engine.Node {
	return &passNode{
		node:      node{eng: e, kind: "pass"},
		blockSize: windowSize,
	}
}

func (e *Engine) NewPlaybackNode(buf engine.Buffer) engine.PlaybackNode {
	b, ok := buf.(*Buffer)
	if !ok {
		e.logger.Warn("playback node created for a buffer this engine did not decode")
	}
	return &playbackNode{
		node: node{eng: e, kind: "playback"},
		buf:  b,
	}
}

// Active is the number of playback nodes still scheduled or sounding.
func (e *Engine) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.players)
}

// Render fills dst with the next len(dst) frames reaching the output and
// advances the clock by as much.
func (e *Engine) Render(dst [][2]float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for len(dst) > 0 {
		n := min(len(dst), blockFrames)
		out := e.renderBlock(n)
		for i := range n {
			dst[i][0] = float64(out[2*i])
			dst[i][1] = float64(out[2*i+1])
		}
		dst = dst[n:]
	}
}

// Advance renders and discards the given number of seconds. NaN, infinite
// and non-positive spans do nothing; longer spans than maxAdvance are capped.
func (e *Engine) Advance(seconds float64) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return
	}
	if seconds > maxAdvance {
		e.logger.Warn("advance capped",
			slog.Float64("requested", seconds),
			slog.Float64("max", maxAdvance))
		seconds = maxAdvance
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for left := e.toFrames(seconds); left > 0; {
		n := int(min(left, blockFrames))
		e.renderBlock(n)
		left -= int64(n)
	}
}

// renderBlock runs one quantum of n frames through the graph and returns
// what reached the output. Callers hold e.mu.
func (e *Engine) renderBlock(n int) []float32 {
	e.gen++
	gen := e.gen

	e.touched = e.touched[:0]
	for p := range e.players {
		e.touch(p, gen, n)
	}
	for _, v := range e.touched {
		for _, o := range v.base().outputs {
			o.base().indeg++
		}
	}

	for p := range e.players {
		p.render(p.acc, e.frame)
	}

	e.queue = e.queue[:0]
	for _, v := range e.touched {
		if v.base().indeg == 0 {
			e.queue = append(e.queue, v)
		}
	}
	for len(e.queue) > 0 {
		v := e.queue[0]
		e.queue = e.queue[1:]

		b := v.base()
		v.process(b.acc)
		for _, o := range b.outputs {
			ob := o.base()
			for i, s := range b.acc {
				ob.acc[i] += s
			}
			ob.indeg--
			if ob.indeg == 0 {
				e.queue = append(e.queue, o)
			}
		}
	}

	silence := e.silence[:2*n]
	for _, a := range e.analysers {
		if a.gen != gen {
			a.process(silence)
		}
	}

	out := silence
	if e.out.gen == gen {
		out = e.out.acc
	}

	e.frame += int64(n)
	for p := range e.players {
		if p.finished(e.frame) {
			p.state = playDone
			delete(e.players, p)
		}
	}

	return out
}

func (e *Engine) touch(v vertex, gen uint64, n int) {
	b := v.base()
	if b.gen == gen {
		return
	}
	b.gen = gen
	b.indeg = 0
	if cap(b.acc) < 2*n {
		b.acc = make([]float32, 2*blockFrames)
	}
	b.acc = b.acc[:2*n]
	clear(b.acc)
	e.touched = append(e.touched, v)

	for _, o := range b.outputs {
		e.touch(o, gen, n)
	}
}

func (e *Engine) seconds(frame int64) float64 {
	return float64(frame) / float64(e.rate)
}

// toFrames converts seconds on the engine timeline to frames, saturating at
// never.
func (e *Engine) toFrames(sec float64) int64 {
	limit := float64(never) / float64(e.rate)
	switch {
	case math.IsNaN(sec):
		return 0
	case sec >= limit:
		return never
	case sec <= -limit:
		return -never
	}
	return int64(math.Round(sec * float64(e.rate)))
}

// satAdd adds two frame positions without wrapping past never.
func satAdd(a, b int64) int64 {
	if b > 0 && a > never-b {
		return never
	}
	return a + b
}

// windowFor rounds n up to a power of two within the supported range.
func windowFor(n int) int {
	if n <= minWindow {
		return minWindow
	}
	if n >= maxWindow {
		return maxWindow
	}
	return 1 << bits.Len(uint(n-1))
}
