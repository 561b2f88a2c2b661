// SPDX-License-Identifier: EPL-2.0

// Package enginetest provides an in-memory engine.Engine whose clock is set
// by the test and whose graph operations are recorded.
package enginetest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/ik5/audtransport/engine"
)

// Call is one recorded graph operation.
type Call struct {
	Op   string // connect, disconnect, render, stop
	Node string
	To   string
	Args []float64
}

// Engine is a fake engine.Engine. Decoded buffers last one second per input
// byte unless Duration is set.
type Engine struct {
	mu sync.Mutex

	now   float64
	calls []Call
	seq   map[string]int

	// DecodeErr, when set, makes Decode fail with it.
	DecodeErr error
	// Duration overrides the duration of decoded buffers.
	Duration float64

	out       *Node
	analysers []*AnalysisNode
	taps      []*Node
	playbacks []*PlaybackNode

	// TimeValue and FreqValue fill analyser snapshots.
	TimeValue byte
	FreqValue byte
}

var _ engine.Engine = (*Engine)(nil)

func New() *Engine {
	e := &Engine{
		seq:       make(map[string]int),
		TimeValue: 128,
	}
	e.out = e.newNode("output")
	return e
}

func (e *Engine) newNode(kind string) *Node {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.seq[kind]++
	return &Node{eng: e, ID: fmt.Sprintf("%s-%d", kind, e.seq[kind])}
}

func (e *Engine) record(c Call) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, c)
}

func (e *Engine) NewAnalysisNode(windowSize int, smoothing float64) engine.AnalysisNode {
	a := &AnalysisNode{Node: e.newNode("analyser"), WindowSize: windowSize, Smoothing: smoothing}

	e.mu.Lock()
	e.analysers = append(e.analysers, a)
	e.mu.Unlock()

	return a
}

func (e *Engine) NewPassThroughNode(windowSize int) engine.Node {
	n := e.newNode("tap")

	e.mu.Lock()
	e.taps = append(e.taps, n)
	e.mu.Unlock()

	return n
}

func (e *Engine) NewPlaybackNode(buf engine.Buffer) engine.PlaybackNode {
	p := &PlaybackNode{Node: e.newNode("playback"), Buffer: buf}

	e.mu.Lock()
	e.playbacks = append(e.playbacks, p)
	e.mu.Unlock()

	return p
}

func (e *Engine) Decode(ctx context.Context, data []byte) (engine.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, engine.NewDecodeError("", err)
	}
	if e.DecodeErr != nil {
		return nil, engine.NewDecodeError("fake", e.DecodeErr)
	}

	d := e.Duration
	if d == 0 {
		d = float64(len(data))
	}
	return Buffer(d), nil
}

func (e *Engine) Now() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.now
}

// Advance moves the clock forward by d seconds.
func (e *Engine) Advance(d float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.now += d
}

func (e *Engine) Output() engine.Node { return e.out }

// OutputNode is Output with its concrete type.
func (e *Engine) OutputNode() *Node { return e.out }

func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]Call(nil), e.calls...)
}

// ResetCalls forgets the calls recorded so far.
func (e *Engine) ResetCalls() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = nil
}

func (e *Engine) Playbacks() []*PlaybackNode {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]*PlaybackNode(nil), e.playbacks...)
}

func (e *Engine) Analysers() []*AnalysisNode {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]*AnalysisNode(nil), e.analysers...)
}

func (e *Engine) Taps() []*Node {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]*Node(nil), e.taps...)
}

// Buffer is a decoded track of the given duration in seconds.
type Buffer float64

func (b Buffer) Duration() float64 { return float64(b) }

// Node records its connections.
type Node struct {
	eng *Engine
	ID  string

	outputs []*Node
}

func (n *Node) self() *Node { return n }

type noder interface{ self() *Node }

func (n *Node) Connect(dst engine.Node) {
	to := "?"
	if d, ok := dst.(noder); ok {
		to = d.self().ID

		n.eng.mu.Lock()
		n.outputs = append(n.outputs, d.self())
		n.eng.mu.Unlock()
	}
	n.eng.record(Call{Op: "connect", Node: n.ID, To: to})
}

func (n *Node) Disconnect() {
	n.eng.mu.Lock()
	n.outputs = nil
	n.eng.mu.Unlock()

	n.eng.record(Call{Op: "disconnect", Node: n.ID})
}

// Outputs lists the IDs of the nodes n feeds.
func (n *Node) Outputs() []string {
	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()

	ids := make([]string, 0, len(n.outputs))
	for _, o := range n.outputs {
		ids = append(ids, o.ID)
	}
	return ids
}

// Connected reports whether n currently feeds the node with the given ID.
func (n *Node) Connected(id string) bool {
	return slices.Contains(n.Outputs(), id)
}

type AnalysisNode struct {
	*Node
	WindowSize int
	Smoothing  float64
}

func (a *AnalysisNode) TimeDomain(dst []byte) {
	for i := range dst {
		dst[i] = a.eng.TimeValue
	}
}

func (a *AnalysisNode) Frequency(dst []byte) {
	for i := range dst {
		dst[i] = a.eng.FreqValue
	}
}

// Range is one RenderRange request.
type Range struct {
	Delay, Start, Length float64
}

type PlaybackNode struct {
	*Node
	Buffer engine.Buffer

	mu     sync.Mutex
	ranges []Range
	stops  []float64
}

func (p *PlaybackNode) RenderRange(delay, start, length float64) {
	p.mu.Lock()
	p.ranges = append(p.ranges, Range{Delay: delay, Start: start, Length: length})
	p.mu.Unlock()

	p.eng.record(Call{Op: "render", Node: p.ID, Args: []float64{delay, start, length}})
}

func (p *PlaybackNode) Stop(delay float64) {
	p.mu.Lock()
	p.stops = append(p.stops, delay)
	p.mu.Unlock()

	p.eng.record(Call{Op: "stop", Node: p.ID, Args: []float64{delay}})
}

func (p *PlaybackNode) Ranges() []Range {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]Range(nil), p.ranges...)
}

func (p *PlaybackNode) Stops() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]float64(nil), p.stops...)
}
