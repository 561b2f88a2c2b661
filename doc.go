// SPDX-License-Identifier: EPL-2.0

// Package audtransport is a playback transport with live analysis on top of
// a graph-based audio engine.
//
// The pieces live in subpackages:
//   - transport: the Controller (load, play ranges, pause, resume, snapshots)
//   - engine: the capabilities a host engine must provide
//   - engine/soft: a software engine that renders on demand
//   - audio and formats/*: PCM sources, resampling and format decoders
//
// # Quick Start
//
//	eng := soft.New()
//	c, _ := transport.New(eng)
//
//	data, _ := os.ReadFile("track.mp3")
//	if _, err := c.LoadData(ctx, data); err != nil {
//	    var de *engine.DecodeError
//	    errors.As(err, &de) // payload rejected
//	}
//
//	c.Play(transport.WithStart(2), transport.WithEnd(8))
//	speaker.Play(eng.Streamer())
//	...
//	spectrum := c.Frequency()
//
// # Exporting PCM
//
// ResampleToMono16 turns any audio.Source into mono 16-bit samples ready
// for wav.WriteWAV16:
//
//	pcm, _ := audtransport.ResampleToMono16(ctx, src, 16000, 4096)
//	wav.WriteWAV16(f, 16000, pcm)
package audtransport
