// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/samber/lo"

	"github.com/ik5/audtransport/engine"
)

// Defaults used by New when no option overrides them.
const (
	DefaultWindowSize = 1024
	DefaultSmoothing  = 0.3

	minWindowSize = 32
	maxWindowSize = 32768
)

// Config is fixed for the lifetime of a Controller.
type Config struct {
	// WindowSize is the analysis window in samples. Waveform returns this
	// many bytes.
	WindowSize int
	// Smoothing blends each spectrum with the previous one.
	Smoothing float64
	// Output receives both the analysed and the raw signal. Nil means the
	// engine's default output.
	Output engine.Node
	// Logger receives load and transport events. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the configuration New starts from.
func DefaultConfig() Config {
	return Config{
		WindowSize: DefaultWindowSize,
		Smoothing:  DefaultSmoothing,
	}
}

func (c Config) validate() error {
	n := c.WindowSize
	if n < minWindowSize || n > maxWindowSize || n&(n-1) != 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWindowSize, n)
	}
	if math.IsNaN(c.Smoothing) || c.Smoothing < 0 || c.Smoothing > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidSmoothing, c.Smoothing)
	}
	return nil
}

// Option adjusts the Config passed to New.
type Option func(*Config)

// WithWindowSize sets the analysis window, a power of two in [32, 32768].
func WithWindowSize(n int) Option {
	return func(c *Config) { c.WindowSize = n }
}

// WithSmoothing sets the spectrum smoothing constant, in [0, 1].
func WithSmoothing(s float64) Option {
	return func(c *Config) { c.Smoothing = s }
}

// WithOutput routes the analysed signal to n instead of the engine output.
func WithOutput(n engine.Node) Option {
	return func(c *Config) { c.Output = n }
}

// WithLogger sets the logger used by the Controller.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithConfig replaces the whole configuration. A zero WindowSize falls back
// to the default.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
		if c.WindowSize == 0 {
			c.WindowSize = DefaultWindowSize
		}
	}
}

type playParams struct {
	start *float64
	end   *float64
	delay *float64
}

// PlayOption overrides one of Play's defaults. Any value passed, zero
// included, is used as is.
type PlayOption func(*playParams)

// WithStart sets the offset into the track, in seconds. Without it Play
// resumes from the elapsed offset.
func WithStart(sec float64) PlayOption {
	return func(p *playParams) { p.start = lo.ToPtr(sec) }
}

// WithEnd sets where playback stops, in seconds into the track. Without it
// playback runs to the end of the buffer.
func WithEnd(sec float64) PlayOption {
	return func(p *playParams) { p.end = lo.ToPtr(sec) }
}

// WithDelay schedules the start that many seconds from now.
func WithDelay(sec float64) PlayOption {
	return func(p *playParams) { p.delay = lo.ToPtr(sec) }
}

type pauseParams struct {
	delay *float64
}

// PauseOption overrides Pause's default of stopping immediately.
type PauseOption func(*pauseParams)

// WithStopDelay lets the current session sound for sec more seconds.
func WithStopDelay(sec float64) PauseOption {
	return func(p *pauseParams) { p.delay = lo.ToPtr(sec) }
}
