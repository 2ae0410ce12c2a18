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
	"sort"

	"github.com/master-g/cfgconv/pkg/addr"
)

// Table is the per-loader global mapping from entry address to CFG.
// The caller creates one per load and passes it to a reader, which creates
// CFGs in it on demand; it owns every CFG it hands out; calls and signal handlers keep non-owning references into the
// same table.
type Table struct {
	cfgs map[addr.Address]*CFG
}

// NewTable returns an empty CFG table.
func NewTable() *Table {
	return &Table{cfgs: make(map[addr.Address]*CFG)}
}

// CFGByAddr fetches the CFG rooted at a, creating it if this is the first
// reference to that entry address.
func (t *Table) CFGByAddr(a addr.Address) *CFG {
	if c, ok := t.cfgs[a]; ok {
		return c
	}
	c := New(a)
	t.cfgs[a] = c
	return c
}

// Lookup returns the CFG at a without creating one.
func (t *Table) Lookup(a addr.Address) (*CFG, bool) {
	c, ok := t.cfgs[a]
	return c, ok
}

// All returns every CFG in the table, sorted by entry address.
func (t *Table) All() []*CFG {
	out := make([]*CFG, 0, len(t.cfgs))
	for _, c := range t.cfgs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].addr < out[j].addr })
	return out
}

// Len reports how many CFGs the table holds.
func (t *Table) Len() int { return len(t.cfgs) }
