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

// Package cfggrind implements Reader B: the bracketed structural
// description with per-edge and per-call execution counts.
package cfggrind

import (
	"fmt"
	"io"
	"strconv"

	"github.com/master-g/cfgconv/pkg/addr"
	"github.com/master-g/cfgconv/pkg/cfg"
	"github.com/master-g/cfgconv/pkg/cfglog"
	"github.com/master-g/cfgconv/pkg/token"
)

type parser struct {
	s       *token.Scanner
	current token.Lexeme
	reg     *addr.Registry
}

func newParser(r io.Reader, reg *addr.Registry) *parser {
	p := &parser{s: token.NewScanner(r), reg: reg}
	p.advance()
	return p
}

func (p *parser) advance() { p.current = p.s.Next() }

func (p *parser) expect(kind token.Kind) (token.Lexeme, error) {
	if p.current.Kind != kind {
		return token.Lexeme{}, fmt.Errorf("cfggrind: line %d: expected %v, got %v %q",
			p.current.Line, kind, p.current.Kind, p.current.Text)
	}
	lx := p.current
	p.advance()
	return lx, nil
}

func (p *parser) expectAddr() (addr.Address, error) {
	lx, err := p.expect(token.Addr)
	if err != nil {
		return 0, err
	}
	return addr.Parse(lx.Text)
}

func (p *parser) expectNumber() (uint64, error) {
	lx, err := p.expect(token.Number)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(lx.Text, 10, 64)
}

func (p *parser) expectBool() (bool, error) {
	lx, err := p.expect(token.Bool)
	if err != nil {
		return false, err
	}
	return lx.Text == "true", nil
}

func (p *parser) optionalCount() (uint64, error) {
	if p.current.Kind != token.Colon {
		return 0, nil
	}
	if _, err := p.expect(token.Colon); err != nil {
		return 0, err
	}
	return p.expectNumber()
}

// Load parses a cfggrind input stream and materializes its CFGs into tbl,
// interning per-instruction sizes into reg.
func Load(r io.Reader, tbl *cfg.Table, reg *addr.Registry) error {
	p := newParser(r, reg)

	for p.current.Kind == token.BracketOpen {
		if _, err := p.expect(token.BracketOpen); err != nil {
			return err
		}
		kw, err := p.expect(token.Keyword)
		if err != nil {
			return err
		}

		switch kw.Text {
		case "cfg":
			if err := parseCFGRecord(p, tbl); err != nil {
				return err
			}
		case "node":
			if err := parseNodeRecord(p, tbl); err != nil {
				return err
			}
		default:
			return fmt.Errorf("cfggrind: line %d: unknown record keyword %q", kw.Line, kw.Text)
		}

		if _, err := p.expect(token.BracketClose); err != nil {
			return err
		}
	}

	if _, err := p.expect(token.EOF); err != nil {
		return err
	}

	for _, c := range tbl.All() {
		status := c.Check()
		cfglog.Logf("cfggrind: cfg %s (%s) checked as %s", c.Addr(), c.FunctionName(), status)
	}
	return nil
}

func parseCFGRecord(p *parser, tbl *cfg.Table) error {
	a, err := p.expectAddr()
	if err != nil {
		return err
	}
	execs, err := p.optionalCount()
	if err != nil {
		return err
	}
	fname, err := p.expect(token.String)
	if err != nil {
		return err
	}
	if _, err := p.expectBool(); err != nil { // complete flag, recomputed by Check()
		return err
	}

	c := tbl.CFGByAddr(a)
	c.SetFunctionName(fname.Text)
	c.AddExecs(execs)
	return nil
}

func parseNodeRecord(p *parser, tbl *cfg.Table) error {
	faddr, err := p.expectAddr()
	if err != nil {
		return err
	}
	c := tbl.CFGByAddr(faddr)

	baddr, err := p.expectAddr()
	if err != nil {
		return err
	}

	node := c.NodeWithAddr(baddr)
	wasNewEntry := baddr == c.Addr() && c.EntryNode() == nil

	declaredSize, err := p.expectNumber()
	if err != nil {
		return err
	}

	var data *cfg.BlockData
	switch node.Type {
	case cfg.NodePhantom:
		data, err = node.Promote(int(declaredSize))
		if err != nil {
			return fmt.Errorf("cfggrind: %w", err)
		}
	case cfg.NodeBlock:
		return fmt.Errorf("cfggrind: line %d: duplicate node record for block %s", p.current.Line, baddr)
	default:
		return fmt.Errorf("cfggrind: line %d: node at %s collides with a %s sentinel", p.current.Line, baddr, node.Type)
	}

	if wasNewEntry {
		entry := c.EnsureEntry()
		c.AddEdge(entry, node, c.Execs())
	}

	if err := parseInstructions(p, data, baddr); err != nil {
		return err
	}
	if int(declaredSize) != data.Size {
		return fmt.Errorf("cfggrind: node %s declared size %d but instructions sum to %d", baddr, declaredSize, data.Size)
	}

	if err := parseCalls(p, tbl, data); err != nil {
		return err
	}

	indirect, err := p.expectBool()
	if err != nil {
		return err
	}
	data.Indirect = indirect

	return parseSuccessors(p, c, node)
}

func parseInstructions(p *parser, data *cfg.BlockData, baddr addr.Address) error {
	if _, err := p.expect(token.BracketOpen); err != nil {
		return err
	}
	iaddr := baddr
	total := 0
	for p.current.Kind != token.BracketClose {
		size, err := p.expectNumber()
		if err != nil {
			return err
		}
		inst := p.reg.Get(iaddr, int(size))
		data.AddInstruction(inst)
		iaddr += addr.Address(size)
		total += int(size)
	}
	if _, err := p.expect(token.BracketClose); err != nil {
		return err
	}
	data.Size = total
	return nil
}

func parseCalls(p *parser, tbl *cfg.Table, data *cfg.BlockData) error {
	if _, err := p.expect(token.BracketOpen); err != nil {
		return err
	}
	for p.current.Kind != token.BracketClose {
		callee, err := p.expectAddr()
		if err != nil {
			return err
		}
		count, err := p.optionalCount()
		if err != nil {
			return err
		}
		data.AddCall(tbl.CFGByAddr(callee), count)
	}
	_, err := p.expect(token.BracketClose)
	return err
}

func parseSuccessors(p *parser, c *cfg.CFG, node *cfg.Node) error {
	if _, err := p.expect(token.BracketOpen); err != nil {
		return err
	}
	for p.current.Kind != token.BracketClose {
		var dst *cfg.Node
		switch p.current.Kind {
		case token.Addr:
			target, err := p.expectAddr()
			if err != nil {
				return err
			}
			dst = c.NodeWithAddr(target)
		case token.Keyword:
			kw := p.current.Text
			p.advance()
			switch kw {
			case "exit":
				dst = c.EnsureExit()
			case "halt":
				dst = c.EnsureHalt()
			default:
				return fmt.Errorf("cfggrind: line %d: unknown successor keyword %q", p.current.Line, kw)
			}
		default:
			return fmt.Errorf("cfggrind: line %d: expected successor target, got %v", p.current.Line, p.current.Kind)
		}

		count, err := p.optionalCount()
		if err != nil {
			return err
		}
		c.AddEdge(node, dst, count)
	}
	_, err := p.expect(token.BracketClose)
	return err
}
