// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"log/slog"
	"math"
)

const never = math.MaxInt64

type playState int

const (
	playIdle playState = iota
	playScheduled
	playDone
)

// playbackNode renders a window of its buffer onto the engine timeline.
// Positions are in frames: start/end/stop on the engine clock, offset into
// the buffer.
type playbackNode struct {
	node
	buf *Buffer

	state  playState
	start  int64
	end    int64
	stop   int64
	offset int64
}

func (p *playbackNode) process([]float32) {}

func (p *playbackNode) RenderRange(delay, start, length float64) {
	e := p.eng
	e.mu.Lock()
	defer e.mu.Unlock()

	if p.state != playIdle {
		e.logger.Warn("playback node already started, ignoring",
			slog.Float64("start", start))
		return
	}
	if p.buf == nil {
		e.logger.Warn("playback node has no buffer, ignoring")
		p.state = playDone
		return
	}

	total := int64(p.buf.Frames())
	offset := min(max(e.toFrames(start), 0), total)
	frames := min(max(e.toFrames(length), 0), total-offset)

	p.state = playScheduled
	p.start = satAdd(e.frame, max(e.toFrames(delay), 0))
	p.offset = offset
	p.end = satAdd(p.start, frames)
	p.stop = never
	e.players[p] = struct{}{}

	e.logger.Debug("playback scheduled",
		slog.Float64("at", e.seconds(p.start)),
		slog.Float64("offset", start),
		slog.Float64("length", length))
}

func (p *playbackNode) Stop(delay float64) {
	e := p.eng
	e.mu.Lock()
	defer e.mu.Unlock()

	if p.state != playScheduled {
		e.logger.Debug("stop on a node that is not playing, ignoring")
		return
	}

	p.stop = min(p.stop, satAdd(e.frame, max(e.toFrames(delay), 0)))
}

// render writes the frames [at, at+len(dst)/2) of the engine timeline.
func (p *playbackNode) render(dst []float32, at int64) {
	clear(dst)

	last := min(p.end, p.stop)
	for i := range len(dst) / 2 {
		t := at + int64(i)
		if t < p.start || t >= last {
			continue
		}
		src := 2 * (p.offset + t - p.start)
		dst[2*i] = p.buf.samples[src]
		dst[2*i+1] = p.buf.samples[src+1]
	}
}

// finished reports whether nothing remains to render at or after frame.
func (p *playbackNode) finished(frame int64) bool {
	return p.state == playDone || frame >= min(p.end, p.stop)
}
