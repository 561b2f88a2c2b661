// SPDX-License-Identifier: EPL-2.0

// Package transport plays ranges of a decoded track on an audio engine and
// exposes live waveform and spectrum snapshots of what is playing.
//
// A Controller owns one track, at most one playback session and the elapsed
// offset into the track. Every Play builds a fresh playback node and wires it
// into an analyser and a raw pass-through tap, both of which feed the output:
//
//	source ─┬─> analyser ──> output
//	        └─> tap ───────> output
//
// The elapsed offset follows the engine clock. Play anchors it at the start
// of the segment; Pause adds the time played since then. Play without
// WithStart therefore resumes where the last Pause left off.
//
//	c, _ := transport.New(eng)
//	c.LoadData(ctx, data)
//	c.Play(transport.WithStart(2), transport.WithEnd(8))
//	...
//	c.Pause()
//	c.Play() // resumes
package transport
