// SPDX-License-Identifier: EPL-2.0

// Package engine declares the capabilities a host audio engine must offer
// to the transport: a node graph, an analysis node, a pass-through tap,
// buffer playback, decoding and a monotonic clock.
//
// Times are float64 seconds on the engine clock, matching the scheduling
// model of graph-based audio engines. The package has no implementation;
// see engine/soft for a software engine.
package engine
