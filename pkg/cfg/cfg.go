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

package cfg

import (
	"fmt"
	"sort"

	"github.com/master-g/cfgconv/pkg/addr"
)

// Status is the three-valued outcome of Check.
type Status int

const (
	Unchecked Status = iota
	Invalid
	Valid
)

func (s Status) String() string {
	switch s {
	case Unchecked:
		return "UNCHECKED"
	case Invalid:
		return "INVALID"
	case Valid:
		return "VALID"
	default:
		return "UNKNOWN"
	}
}

// CFG is one procedure: an entry address, its nodes and edges, and the
// three distinguished sentinel singletons.
type CFG struct {
	addr         addr.Address
	functionName string
	execs        uint64
	status       Status
	complete     bool

	entry *Node
	exit  *Node
	halt  *Node

	byAddr map[addr.Address]*Node

	succ map[*Node]map[*Node]*Edge
	pred map[*Node]map[*Node]*Edge
}

// New creates an empty CFG for entry address a with the default function
// name "unknown".
func New(a addr.Address) *CFG {
	return &CFG{
		addr:         a,
		functionName: "unknown",
		status:       Unchecked,
		byAddr:       make(map[addr.Address]*Node),
		succ:         make(map[*Node]map[*Node]*Edge),
		pred:         make(map[*Node]map[*Node]*Edge),
	}
}

func (c *CFG) Addr() addr.Address        { return c.addr }
func (c *CFG) FunctionName() string      { return c.functionName }
func (c *CFG) Execs() uint64             { return c.execs }
func (c *CFG) Status() Status            { return c.status }
func (c *CFG) Complete() bool            { return c.complete }
func (c *CFG) EntryNode() *Node          { return c.entry }
func (c *CFG) ExitNode() *Node           { return c.exit }
func (c *CFG) HaltNode() *Node           { return c.halt }

// SetFunctionName overrides the procedure's display name.
func (c *CFG) SetFunctionName(name string) {
	if name != "" {
		c.functionName = name
	}
}

// AddExecs adds n to the procedure's dynamic execution-count accumulator.
func (c *CFG) AddExecs(n uint64) {
	c.execs += n
	c.invalidate()
}

func (c *CFG) invalidate() {
	c.status = Unchecked
}

// NodeByAddr looks up a Block or Phantom by address without creating one.
func (c *CFG) NodeByAddr(a addr.Address) (*Node, bool) {
	n, ok := c.byAddr[a]
	return n, ok
}

// NodeWithAddr is the single phantom-creating lookup point used by every
// reader (design notes: "forward references"). A lookup that does not find
// a block inserts a Phantom at that address and returns it.
func (c *CFG) NodeWithAddr(a addr.Address) *Node {
	if n, ok := c.byAddr[a]; ok {
		return n
	}
	n := newPhantom(a)
	c.byAddr[a] = n
	c.succ[n] = make(map[*Node]*Edge)
	c.pred[n] = make(map[*Node]*Edge)
	c.invalidate()
	return n
}

// EnsureEntry returns the CFG's Entry sentinel, creating it if absent.
func (c *CFG) EnsureEntry() *Node {
	if c.entry == nil {
		c.entry = newSentinel(NodeEntry)
		c.succ[c.entry] = make(map[*Node]*Edge)
		c.pred[c.entry] = make(map[*Node]*Edge)
		c.invalidate()
	}
	return c.entry
}

// EnsureExit returns the CFG's Exit sentinel, creating it if absent.
func (c *CFG) EnsureExit() *Node {
	if c.exit == nil {
		c.exit = newSentinel(NodeExit)
		c.succ[c.exit] = make(map[*Node]*Edge)
		c.pred[c.exit] = make(map[*Node]*Edge)
		c.invalidate()
	}
	return c.exit
}

// EnsureHalt returns the CFG's Halt sentinel, creating it if absent.
func (c *CFG) EnsureHalt() *Node {
	if c.halt == nil {
		c.halt = newSentinel(NodeHalt)
		c.succ[c.halt] = make(map[*Node]*Edge)
		c.pred[c.halt] = make(map[*Node]*Edge)
		c.invalidate()
	}
	return c.halt
}

// AddBlock creates and indexes a fresh Block node at address a. It is an
// error to add a second Block/Phantom at an address already present; use
// NodeWithAddr + Promote to materialize a block at a forward-referenced
// address instead.
func (c *CFG) AddBlock(a addr.Address, size int) (*Node, error) {
	if _, ok := c.byAddr[a]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAddress, a)
	}
	n := newBlock(a, size)
	c.byAddr[a] = n
	c.succ[n] = make(map[*Node]*Edge)
	c.pred[n] = make(map[*Node]*Edge)
	c.invalidate()
	return n, nil
}

// AddEdge is idempotent on (src,dst): creates a fresh Edge with count, or
// adds count onto the existing one. Updating the CFG invalidates its
// cached status.
func (c *CFG) AddEdge(src, dst *Node, count uint64) *Edge {
	c.ensureAdjacency(src)
	c.ensureAdjacency(dst)

	if e, ok := c.succ[src][dst]; ok {
		e.Count += count
		c.invalidate()
		return e
	}
	e := &Edge{Src: src, Dst: dst, Count: count}
	c.succ[src][dst] = e
	c.pred[dst][src] = e
	c.invalidate()
	return e
}

func (c *CFG) ensureAdjacency(n *Node) {
	if _, ok := c.succ[n]; !ok {
		c.succ[n] = make(map[*Node]*Edge)
	}
	if _, ok := c.pred[n]; !ok {
		c.pred[n] = make(map[*Node]*Edge)
	}
}

// FindEdge retrieves the edge (src,dst), if any.
func (c *CFG) FindEdge(src, dst *Node) (*Edge, bool) {
	m, ok := c.succ[src]
	if !ok {
		return nil, false
	}
	e, ok := m[dst]
	return e, ok
}

// Successors returns the outgoing edges of n.
func (c *CFG) Successors(n *Node) []*Edge {
	return sortedEdges(c.succ[n])
}

// Predecessors returns the incoming edges of n.
func (c *CFG) Predecessors(n *Node) []*Edge {
	return sortedEdges(c.pred[n])
}

func sortedEdges(m map[*Node]*Edge) []*Edge {
	edges := make([]*Edge, 0, len(m))
	for _, e := range m {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		ni, nj := edgeOtherEnd(edges[i]), edgeOtherEnd(edges[j])
		return ni < nj
	})
	return edges
}

// edgeOtherEnd gives a stable sort key: the source and destination node
// names joined as "src->dst", compared as strings.
func edgeOtherEnd(e *Edge) string {
	return e.Src.Name() + "->" + e.Dst.Name()
}

// Blocks returns every Block node, sorted by address, for deterministic
// iteration by the validator and renderer.
func (c *CFG) Blocks() []*Node {
	return c.nodesOfType(NodeBlock)
}

// Phantoms returns every Phantom node, sorted by address.
func (c *CFG) Phantoms() []*Node {
	return c.nodesOfType(NodePhantom)
}

func (c *CFG) nodesOfType(t NodeType) []*Node {
	var out []*Node
	for _, n := range c.byAddr {
		if n.Type == t {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].address < out[j].address })
	return out
}
