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

package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/master-g/cfgconv/pkg/addr"
	"github.com/master-g/cfgconv/pkg/cfg"
)

// Dot writes a graph-description dump of c to w, compatible with the
// `digraph "..." { ... }` convention.
func Dot(w io.Writer, c *cfg.CFG) error {
	fmt.Fprintf(w, "digraph \"%s\" {\n", c.FunctionName())
	fmt.Fprintf(w, "  rankdir=TB;\n")

	if err := writeSentinel(w, c.EntryNode(), "doublecircle"); err != nil {
		return err
	}
	if err := writeSentinel(w, c.ExitNode(), "box"); err != nil {
		return err
	}
	if err := writeSentinel(w, c.HaltNode(), "octagon"); err != nil {
		return err
	}
	for _, p := range c.Phantoms() {
		fmt.Fprintf(w, "  %q [shape=ellipse style=dashed label=%q];\n", nodeID(p), p.Name())
	}
	for _, b := range c.Blocks() {
		if err := writeBlockNode(w, b); err != nil {
			return err
		}
	}

	allNodes := allNodesOf(c)
	for _, n := range allNodes {
		for _, e := range c.Successors(n) {
			label := ""
			if e.Count > 0 {
				label = fmt.Sprintf(" [label=%q]", fmt.Sprintf("%d", e.Count))
			}
			fmt.Fprintf(w, "  %q -> %q%s;\n", nodeID(e.Src), nodeID(e.Dst), label)
		}
		if n.Type == cfg.NodeBlock && n.Block.Indirect {
			ghost := nodeID(n) + "?"
			fmt.Fprintf(w, "  %q [shape=ellipse style=dashed label=\"?\"];\n", ghost)
			fmt.Fprintf(w, "  %q -> %q [style=dashed];\n", nodeID(n), ghost)
		}
	}

	fmt.Fprintln(w, "}")
	return nil
}

func writeSentinel(w io.Writer, n *cfg.Node, shape string) error {
	if n == nil {
		return nil
	}
	_, err := fmt.Fprintf(w, "  %q [shape=%s label=%q];\n", nodeID(n), shape, n.Name())
	return err
}

func writeBlockNode(w io.Writer, b *cfg.Node) error {
	var label strings.Builder
	fmt.Fprintf(&label, "%s\\nsize=%d", b.Name(), b.Block.Size)

	if len(b.Block.Instructions) > 0 {
		var sizes []string
		for _, inst := range b.Block.Instructions {
			sizes = append(sizes, fmt.Sprintf("%d", inst.Size))
		}
		fmt.Fprintf(&label, "\\ninstrs=[%s]", strings.Join(sizes, ","))
	}

	if len(b.Block.Calls()) > 0 {
		calleeAddrs := make([]addr.Address, 0, len(b.Block.Calls()))
		for a := range b.Block.Calls() {
			calleeAddrs = append(calleeAddrs, a)
		}
		sort.Slice(calleeAddrs, func(i, j int) bool { return calleeAddrs[i] < calleeAddrs[j] })
		var calls []string
		for _, a := range calleeAddrs {
			call := b.Block.Calls()[a]
			calls = append(calls, fmt.Sprintf("%s%s", call.Callee.Addr(), countSuffix(call.Count)))
		}
		fmt.Fprintf(&label, "\\ncalls=[%s]", strings.Join(calls, ","))
	}

	if len(b.Block.Signals()) > 0 {
		signalIDs := make([]int, 0, len(b.Block.Signals()))
		for id := range b.Block.Signals() {
			signalIDs = append(signalIDs, id)
		}
		sort.Ints(signalIDs)
		var signals []string
		for _, id := range signalIDs {
			sh := b.Block.Signals()[id]
			signals = append(signals, fmt.Sprintf("%d:%s%s", sh.Signal, sh.Handler.Addr(), countSuffix(sh.Count)))
		}
		fmt.Fprintf(&label, "\\nsignals=[%s]", strings.Join(signals, ","))
	}

	_, err := fmt.Fprintf(w, "  %q [shape=record label=%q];\n", nodeID(b), label.String())
	return err
}

func nodeID(n *cfg.Node) string {
	return n.Name()
}

func allNodesOf(c *cfg.CFG) []*cfg.Node {
	var out []*cfg.Node
	if c.EntryNode() != nil {
		out = append(out, c.EntryNode())
	}
	out = append(out, c.Blocks()...)
	out = append(out, c.Phantoms()...)
	if c.ExitNode() != nil {
		out = append(out, c.ExitNode())
	}
	if c.HaltNode() != nil {
		out = append(out, c.HaltNode())
	}
	return out
}
