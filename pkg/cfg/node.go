// Copyright © 2019 mg
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package cfg is the unified control-flow-graph model shared by the three
// readers: typed nodes, counted edges, calls, signal handlers and the
// per-procedure container with its validator.
package cfg

import (
	"fmt"

	"github.com/master-g/cfgconv/pkg/addr"
)

// NodeType is the tag of the Node union.
type NodeType int

const (
	NodeEntry NodeType = iota
	NodeBlock
	NodePhantom
	NodeExit
	NodeHalt
)

func (t NodeType) String() string {
	switch t {
	case NodeEntry:
		return "entry"
	case NodeBlock:
		return "block"
	case NodePhantom:
		return "phantom"
	case NodeExit:
		return "exit"
	case NodeHalt:
		return "halt"
	default:
		return "unknown"
	}
}

// BlockData is the payload carried by a NodeBlock. It is the only node
// variant that owns instructions, calls and signal handlers.
type BlockData struct {
	Size         int
	Indirect     bool
	Instructions []*addr.Instruction
	calls        map[addr.Address]*Call
	signals      map[int]*SignalHandler
}

// Calls returns the calls attached to this block, keyed by callee address.
func (b *BlockData) Calls() map[addr.Address]*Call { return b.calls }

// Signals returns the signal handlers attached to this block, keyed by
// signal id.
func (b *BlockData) Signals() map[int]*SignalHandler { return b.signals }

// AddInstruction appends an interned instruction to the block.
func (b *BlockData) AddInstruction(i *addr.Instruction) {
	b.Instructions = append(b.Instructions, i)
}

// AddCall records a call from this block to callee, additive on count for a
// repeated callee (unique by called-procedure address within the block).
func (b *BlockData) AddCall(callee *CFG, count uint64) *Call {
	if c, ok := b.calls[callee.Addr()]; ok {
		c.Count += count
		return c
	}
	c := &Call{Callee: callee, Count: count}
	b.calls[callee.Addr()] = c
	return c
}

// AddSignalHandler records a handler for signal id on this block. A second
// record for the same signal id and the same handler adds onto its count; a
// second record for the same signal id with a different handler is a
// semantic error (ErrDuplicateSignal).
func (b *BlockData) AddSignalHandler(signal int, handler *CFG, count uint64) (*SignalHandler, error) {
	if signal <= 0 {
		return nil, fmt.Errorf("cfg: invalid signal id %d, want > 0", signal)
	}
	if existing, ok := b.signals[signal]; ok {
		if existing.Handler != handler {
			return nil, fmt.Errorf("%w: signal %d already handled by a different procedure", ErrDuplicateSignal, signal)
		}
		existing.Count += count
		return existing, nil
	}
	sh := &SignalHandler{Signal: signal, Handler: handler, Count: count}
	b.signals[signal] = sh
	return sh, nil
}

// Node is a polymorphic record: exactly one of Block is non-nil, and only
// when Type == NodeBlock. Phantom->Block promotion rewrites Type and Block
// on the same *Node, so every held pointer keeps observing the live state
// (the arena/handle pattern called out in the design notes).
type Node struct {
	Type    NodeType
	address addr.Address // 0 for Entry/Exit/Halt sentinels
	Block   *BlockData   // non-nil iff Type == NodeBlock
}

// Address returns the node's address; 0 for sentinel nodes.
func (n *Node) Address() addr.Address { return n.address }

// Name renders the node's display name used by the renderer: "entry",
// "exit", "halt", or the hex address otherwise.
func (n *Node) Name() string {
	switch n.Type {
	case NodeEntry:
		return "entry"
	case NodeExit:
		return "exit"
	case NodeHalt:
		return "halt"
	default:
		return n.address.String()
	}
}

func newSentinel(t NodeType) *Node {
	return &Node{Type: t}
}

func newPhantom(a addr.Address) *Node {
	return &Node{Type: NodePhantom, address: a}
}

func newBlock(a addr.Address, size int) *Node {
	return &Node{
		Type:    NodeBlock,
		address: a,
		Block: &BlockData{
			Size:    size,
			calls:   make(map[addr.Address]*Call),
			signals: make(map[int]*SignalHandler),
		},
	}
}

// Promote turns a Phantom node into a Block node in place, carrying the
// same address. Promoting anything other than a Phantom, or promoting a
// Block back to Phantom, is a semantic error.
func (n *Node) Promote(size int) (*BlockData, error) {
	if n.Type != NodePhantom {
		return nil, fmt.Errorf("%w: address %s is a %s, not a phantom", ErrBackwardPromotion, n.address, n.Type)
	}
	n.Type = NodeBlock
	n.Block = &BlockData{
		Size:    size,
		calls:   make(map[addr.Address]*Call),
		signals: make(map[int]*SignalHandler),
	}
	return n.Block, nil
}
