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

// Check recomputes Status and Complete. It is the structural and
// flow-conservation validator; it never returns an error,
// only a Status, since a failing structural check is not an exceptional
// condition — the CFG is preserved and may still be emitted.
func (c *CFG) Check() Status {
	if !c.checkEntryExit() {
		return c.fail()
	}

	indirectSeen := false
	for _, b := range c.Blocks() {
		ok, indirect := c.checkBlock(b)
		if !ok {
			return c.fail()
		}
		indirectSeen = indirectSeen || indirect
	}

	phantomSeen := len(c.Phantoms()) > 0
	for _, p := range c.Phantoms() {
		if !c.checkPhantom(p) {
			return c.fail()
		}
	}

	if !c.checkSentinel(c.exit) || !c.checkSentinel(c.halt) {
		return c.fail()
	}

	if !c.checkExecCountBalance() {
		return c.fail()
	}

	c.status = Valid
	c.complete = !indirectSeen && !phantomSeen
	return c.status
}

func (c *CFG) fail() Status {
	c.status = Invalid
	c.complete = false
	return c.status
}

// checkEntryExit implements rules 1 and 2.
func (c *CFG) checkEntryExit() bool {
	if c.entry == nil {
		return false
	}
	if c.exit == nil && c.halt == nil {
		return false
	}

	preds := c.Predecessors(c.entry)
	if len(preds) != 0 {
		return false
	}

	succs := c.Successors(c.entry)
	if len(succs) != 1 {
		return false
	}
	first := succs[0]
	if first.Dst.Address() != c.addr {
		return false
	}
	if first.Count != c.execs {
		return false
	}
	return true
}

// checkBlock implements rule 3 for a single block, returning whether it
// passed and whether it is indirect.
func (c *CFG) checkBlock(b *Node) (ok bool, indirect bool) {
	preds := c.Predecessors(b)
	succs := c.Successors(b)
	if len(preds) == 0 || len(succs) == 0 {
		return false, false
	}

	var in, out uint64
	for _, e := range preds {
		in += e.Count
	}
	for _, e := range succs {
		out += e.Count
	}
	if in != out {
		return false, false
	}

	return true, b.Block.Indirect
}

// checkPhantom implements rule 4.
func (c *CFG) checkPhantom(p *Node) bool {
	preds := c.Predecessors(p)
	succs := c.Successors(p)
	if len(preds) == 0 || len(succs) != 0 {
		return false
	}

	var in uint64
	for _, e := range preds {
		in += e.Count
	}
	return in == 0
}

// checkSentinel implements rule 5 for Exit/Halt; a nil sentinel (absent) is
// trivially fine since rule 1 only requires at least one of the two.
func (c *CFG) checkSentinel(n *Node) bool {
	if n == nil {
		return true
	}
	preds := c.Predecessors(n)
	succs := c.Successors(n)
	return len(preds) >= 1 && len(succs) == 0
}

// checkExecCountBalance implements rule 6.
func (c *CFG) checkExecCountBalance() bool {
	var total uint64
	if c.exit != nil {
		for _, e := range c.Predecessors(c.exit) {
			total += e.Count
		}
	}
	if c.halt != nil {
		for _, e := range c.Predecessors(c.halt) {
			total += e.Count
		}
	}
	return total == c.execs
}
