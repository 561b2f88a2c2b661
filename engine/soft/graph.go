// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"log/slog"
	"slices"

	"github.com/ik5/audtransport/engine"
)

// vertex is implemented by every node this engine creates.
type vertex interface {
	engine.Node
	base() *node
	// process sees the summed input of the current block before it is
	// forwarded.
	process(block []float32)
}

// node carries the graph bookkeeping shared by all node kinds. All fields
// are guarded by the engine mutex.
type node struct {
	eng     *Engine
	kind    string
	outputs []vertex

	// per-block render state
	gen   uint64
	indeg int
	acc   []float32
}

func (n *node) base() *node { return n }

func (n *node) Connect(dst engine.Node) {
	v, ok := dst.(vertex)
	if !ok || v.base().eng != n.eng {
		n.eng.logger.Warn("ignoring connection to foreign node",
			slog.String("from", n.kind))
		return
	}

	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()

	if slices.Contains(n.outputs, v) {
		return
	}
	n.outputs = append(n.outputs, v)
}

func (n *node) Disconnect() {
	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()

	n.outputs = nil
}

// Outputs reports how many destinations the node feeds.
func (n *node) Outputs() int {
	n.eng.mu.Lock()
	defer n.eng.mu.Unlock()

	return len(n.outputs)
}

// outputNode is the final destination; whatever reaches it is rendered.
type outputNode struct {
	node
}

func (*outputNode) process([]float32) {}

// passNode forwards its input untouched.
type passNode struct {
	node
	blockSize int
	frames    int64
}

func (p *passNode) process(block []float32) {
	p.frames += int64(len(block) / 2)
}

// Frames is how many sample frames have flowed through the tap.
func (p *passNode) Frames() int64 {
	p.eng.mu.Lock()
	defer p.eng.mu.Unlock()

	return p.frames
}

// BlockSize is the window size the tap was created with.
func (p *passNode) BlockSize() int { return p.blockSize }
