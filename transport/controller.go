// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/ik5/audtransport/engine"
)

// Controller plays sub-ranges of one decoded track through an analysis
// stage and keeps track of how far into the track playback has got.
//
// Play, Pause and LoadData must be called from a single goroutine. Waveform
// and Frequency only read from the engine and may be polled at any time.
type Controller struct {
	eng    engine.Engine
	cfg    Config
	logger *slog.Logger

	analyser engine.AnalysisNode
	tap      engine.Node

	source    engine.Node
	session   engine.PlaybackNode
	sessionID string
	buf       engine.Buffer

	// elapsed is the track offset reached when the current segment began
	// (or when playback was last paused). The segment is bounded by
	// segmentEnd.
	elapsed      float64
	segmentStart float64
	segmentEnd   float64
	paused       bool

	timeData []byte
	freqData []byte
}

// New builds the analysis and pass-through nodes on eng and routes both to
// the configured output.
func New(eng engine.Engine, opts ...Option) (*Controller, error) {
	if eng == nil {
		return nil, ErrNilEngine
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Output == nil {
		cfg.Output = eng.Output()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	c := &Controller{
		eng:      eng,
		cfg:      cfg,
		logger:   cfg.Logger,
		analyser: eng.NewAnalysisNode(cfg.WindowSize, cfg.Smoothing),
		tap:      eng.NewPassThroughNode(cfg.WindowSize / 2),
		paused:   true,
		timeData: make([]byte, cfg.WindowSize),
		freqData: make([]byte, cfg.WindowSize),
	}
	c.analyser.Connect(cfg.Output)
	c.tap.Connect(cfg.Output)

	return c, nil
}

// ConnectSource replaces the current source with src, feeding it to both
// the analyser and the raw tap.
func (c *Controller) ConnectSource(src engine.Node) {
	if c.source != nil {
		c.source.Disconnect()
	}
	c.source = src
	if src == nil {
		return
	}

	src.Connect(c.analyser)
	src.Connect(c.tap)
}

// LoadData decodes data on the engine and makes it the current track.
// Failures are reported as *engine.DecodeError and leave the controller
// untouched. A session still running on the previous track is stopped.
func (c *Controller) LoadData(ctx context.Context, data []byte) (engine.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, engine.NewDecodeError("", err)
	}

	buf, err := c.eng.Decode(ctx, data)
	if err != nil {
		err = engine.NewDecodeError("", err)
		c.logger.Warn("load failed", slog.Any("error", err))
		return nil, err
	}
	if buf == nil {
		return nil, engine.NewDecodeError("", ErrNoBuffer)
	}

	if !c.paused {
		c.session.Stop(0)
		c.paused = true
	}

	c.buf = buf
	c.elapsed = 0
	c.segmentStart = 0
	c.segmentEnd = 0

	c.logger.Info("track loaded", slog.Float64("duration", buf.Duration()))

	return buf, nil
}

// Duration of the loaded track in seconds; false when nothing is loaded.
func (c *Controller) Duration() (float64, bool) {
	if c.buf == nil {
		return 0, false
	}
	return c.buf.Duration(), true
}

// Play starts a new session. Without WithStart it resumes from the elapsed
// offset; without WithEnd it runs to the end of the track. A running session
// is paused first, so at most one is ever active. The range is passed to the
// engine unchecked. Play is a no-op until a track is loaded.
//
// The elapsed offset restarts at the requested start, so it only grows
// across plays without WithStart. WithStart earlier than Elapsed seeks back.
func (c *Controller) Play(opts ...PlayOption) {
	if c.buf == nil {
		return
	}

	c.Pause()

	node := c.eng.NewPlaybackNode(c.buf)
	c.ConnectSource(node)
	c.session = node
	c.sessionID = uuid.NewString()

	var p playParams
	for _, opt := range opts {
		opt(&p)
	}
	duration := c.buf.Duration()
	start := lo.FromPtrOr(p.start, c.elapsed)
	end := lo.FromPtrOr(p.end, duration)
	delay := lo.FromPtrOr(p.delay, 0)

	c.elapsed = start
	c.segmentEnd = min(max(end, start), duration)
	c.segmentStart = c.eng.Now()

	c.logger.Debug("play",
		slog.String("session", c.sessionID),
		slog.Float64("start", start),
		slog.Float64("end", end),
		slog.Float64("delay", delay),
		slog.Float64("at", c.segmentStart))

	node.RenderRange(delay, start, end-start)
	c.paused = false
}

// Pause stops the current session and folds the time it played into the
// elapsed offset. It is a no-op when nothing is loaded or already paused.
func (c *Controller) Pause(opts ...PauseOption) {
	if c.buf == nil || c.paused {
		return
	}

	var p pauseParams
	for _, opt := range opts {
		opt(&p)
	}
	delay := lo.FromPtrOr(p.delay, 0)

	c.elapsed = c.offsetAt(c.eng.Now())
	c.session.Stop(delay)
	c.paused = true

	c.logger.Debug("pause",
		slog.String("session", c.sessionID),
		slog.Float64("elapsed", c.elapsed),
		slog.Float64("delay", delay))
}

// Session identifies the most recent playback session in log records. It
// is empty before the first Play.
func (c *Controller) Session() string { return c.sessionID }

// Paused reports whether no session is running.
func (c *Controller) Paused() bool { return c.paused }

// Elapsed is the current offset into the track in seconds.
func (c *Controller) Elapsed() float64 {
	if c.paused {
		return c.elapsed
	}
	return c.offsetAt(c.eng.Now())
}

// offsetAt is the track position at engine time now for the running
// segment, held at the segment end once playback has passed it.
func (c *Controller) offsetAt(now float64) float64 {
	pos := c.elapsed + max(now-c.segmentStart, 0)
	if pos > c.segmentEnd {
		pos = max(c.segmentEnd, c.elapsed)
	}
	return pos
}

// Waveform returns the latest time-domain window, 128 being silence. The
// slice is reused by the next Waveform call.
func (c *Controller) Waveform() []byte {
	c.analyser.TimeDomain(c.timeData)
	return c.timeData
}

// Frequency returns the latest spectrum. Only the first WindowSize/2 bytes
// carry bins; the rest stay zero. The slice is reused by the next Frequency
// call and is independent from the one Waveform returns.
func (c *Controller) Frequency() []byte {
	c.analyser.Frequency(c.freqData)
	return c.freqData
}

func (c *Controller) String() string {
	state := "paused"
	if !c.paused {
		state = "playing"
	}
	return fmt.Sprintf("transport(%s, elapsed=%.3fs)", state, c.Elapsed())
}
