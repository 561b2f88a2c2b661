// SPDX-License-Identifier: EPL-2.0

// Package soft is a software implementation of engine.Engine.
//
// Nothing runs in the background: the clock moves only while Render (or
// Advance) is called, in blocks of 128 frames. Each block sums every
// playback node that reaches the output, directly or through analyser and
// pass-through nodes. Analysers that receive nothing in a block record
// silence.
//
// Decoded buffers are stereo at the engine sample rate. Decode detects the
// container using the registry, then resamples and remixes as needed:
//
//	e := soft.New(soft.WithSampleRate(48000))
//	buf, err := e.Decode(ctx, data)
//	...
//	p := e.NewPlaybackNode(buf)
//	p.Connect(e.Output())
//	p.RenderRange(0, 1.5, 3)
//
//	speaker.Play(e.Streamer())
package soft
