// SPDX-License-Identifier: EPL-2.0

package soft

import "github.com/gopxl/beep/v2"

// streamer exposes the engine output as an endless beep stream.
type streamer struct {
	e *Engine
}

// Streamer returns a beep.Streamer whose every Stream call renders the
// engine, so whoever drains it drives the clock.
func (e *Engine) Streamer() beep.Streamer {
	return streamer{e: e}
}

func (s streamer) Stream(samples [][2]float64) (int, bool) {
	s.e.Render(samples)
	return len(samples), true
}

func (streamer) Err() error { return nil }

// Format is the beep sample format matching the engine output.
func (e *Engine) Format() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(e.rate),
		NumChannels: 2,
		Precision:   2,
	}
}
