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

// Package render produces the two canonical output formats: the
// cfggrind-compatible text dump and the graph-description dot
// dump, both driven purely off the pkg/cfg model. The text dump
// round-trips through pkg/reader/cfggrind; the dot dump does not.
package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/master-g/cfgconv/pkg/addr"
	"github.com/master-g/cfgconv/pkg/cfg"
)

// Text writes the canonical text dump of c to w. The node line follows
// reader B's grammar exactly — instruction sizes, calls, indirect
// flag, successors — so a VALID CFG's dump re-parses losslessly through
// pkg/reader/cfggrind. Reader B's grammar has no production for signal
// handlers, so they are omitted here and carried only by the graph
// description dump (Dot).
func Text(w io.Writer, c *cfg.CFG) error {
	if err := writeCFGHeader(w, c); err != nil {
		return err
	}
	for _, b := range c.Blocks() {
		if err := writeBlockLine(w, c, b); err != nil {
			return err
		}
	}
	return nil
}

func writeCFGHeader(w io.Writer, c *cfg.CFG) error {
	execsSuffix := ""
	if c.Execs() > 0 {
		execsSuffix = fmt.Sprintf(":%d", c.Execs())
	}
	_, err := fmt.Fprintf(w, "[cfg %s%s %q %s]\n", c.Addr(), execsSuffix, c.FunctionName(), boolText(c.Complete()))
	return err
}

func writeBlockLine(w io.Writer, c *cfg.CFG, b *cfg.Node) error {
	sizes := make([]string, 0, len(b.Block.Instructions))
	for _, inst := range b.Block.Instructions {
		sizes = append(sizes, fmt.Sprintf("%d", inst.Size))
	}

	calleeAddrs := make([]addr.Address, 0, len(b.Block.Calls()))
	for a := range b.Block.Calls() {
		calleeAddrs = append(calleeAddrs, a)
	}
	sort.Slice(calleeAddrs, func(i, j int) bool { return calleeAddrs[i] < calleeAddrs[j] })
	calls := make([]string, 0, len(calleeAddrs))
	for _, a := range calleeAddrs {
		call := b.Block.Calls()[a]
		calls = append(calls, fmt.Sprintf("%s%s", call.Callee.Addr(), countSuffix(call.Count)))
	}

	succs := make([]string, 0)
	for _, e := range c.Successors(b) {
		succs = append(succs, fmt.Sprintf("%s%s", e.Dst.Name(), countSuffix(e.Count)))
	}

	_, err := fmt.Fprintf(w, "[node %s %s %d %s %s %s %s]\n",
		c.Addr(), b.Name(), b.Block.Size,
		bracketed(sizes), bracketed(calls),
		boolText(b.Block.Indirect), bracketed(succs))
	return err
}

func countSuffix(n uint64) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf(":%d", n)
}

func bracketed(items []string) string {
	out := "["
	for i, s := range items {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out + "]"
}

func boolText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
