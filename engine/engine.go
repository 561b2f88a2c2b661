// SPDX-License-Identifier: EPL-2.0

package engine

import "context"

// Node is a vertex in the engine's mixing graph.
type Node interface {
	// Connect routes this node's output into dst. Connecting twice to the
	// same destination is a no-op.
	Connect(dst Node)
	// Disconnect removes every outgoing connection of this node.
	Disconnect()
}

// Buffer is fully decoded audio owned by the engine.
type Buffer interface {
	// Duration in seconds.
	Duration() float64
}

// AnalysisNode passes its input through while exposing snapshots of it.
type AnalysisNode interface {
	Node
	// TimeDomain fills dst with the most recent samples mapped to 0..255,
	// 128 being silence.
	TimeDomain(dst []byte)
	// Frequency fills dst with smoothed bin magnitudes mapped to 0..255.
	Frequency(dst []byte)
}

// PlaybackNode renders a bound Buffer. A node plays at most once.
type PlaybackNode interface {
	Node
	// RenderRange starts playback delay seconds from now, beginning at
	// start seconds into the buffer, for length seconds.
	RenderRange(delay, start, length float64)
	// Stop ends playback delay seconds from now.
	Stop(delay float64)
}

// Engine is the set of capabilities the transport consumes from a host
// audio engine.
type Engine interface {
	NewAnalysisNode(windowSize int, smoothing float64) AnalysisNode
	NewPassThroughNode(windowSize int) Node
	NewPlaybackNode(buf Buffer) PlaybackNode

	// Decode turns an encoded payload into a playable buffer. Failures are
	// reported as *DecodeError.
	Decode(ctx context.Context, data []byte) (Buffer, error)

	// Now is the engine clock in seconds. It only moves while the engine
	// renders.
	Now() float64

	// Output is the default destination node.
	Output() Node
}
