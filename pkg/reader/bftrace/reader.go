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

// Package bftrace implements Reader A: the flat, keyword-directed
// symbol/block/branch trace format.
package bftrace

import (
	"fmt"
	"io"

	"github.com/master-g/cfgconv/pkg/addr"
	"github.com/master-g/cfgconv/pkg/cfg"
	"github.com/master-g/cfgconv/pkg/cfglog"
	"github.com/master-g/cfgconv/pkg/token"
)

type terminator int

const (
	termJump terminator = iota
	termCall
	termReturn
	termOther
)

type basicBlock struct {
	size   int
	term   terminator
	isExit bool
}

type symbol struct {
	start, end         addr.Address
	filename, funcname string
	bias               addr.Address

	blocks  map[addr.Address]basicBlock
	edges   map[addr.Address][]addr.Address
	entries []addr.Address
}

func newSymbol() *symbol {
	return &symbol{
		blocks: make(map[addr.Address]basicBlock),
		edges:  make(map[addr.Address][]addr.Address),
	}
}

// parser walks the token stream one lexeme of lookahead at a time.
type parser struct {
	s       *token.Scanner
	current token.Lexeme
}

func newParser(r io.Reader) *parser {
	p := &parser{s: token.NewScanner(r)}
	p.advance()
	return p
}

func (p *parser) advance() {
	p.current = p.s.Next()
}

func (p *parser) expect(kind token.Kind) (token.Lexeme, error) {
	if p.current.Kind != kind {
		return token.Lexeme{}, fmt.Errorf("bftrace: line %d: expected %v, got %v %q",
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

func (p *parser) expectBool() (bool, error) {
	lx, err := p.expect(token.Bool)
	if err != nil {
		return false, err
	}
	return lx.Text == "true", nil
}

// Load parses a bftrace input stream and materializes its CFGs into tbl.
func Load(r io.Reader, tbl *cfg.Table) error {
	p := newParser(r)

	var symbols []*symbol
	var cur *symbol

	for p.current.Kind == token.Keyword {
		keyword := p.current.Text
		p.advance()

		switch keyword {
		case "symbol":
			sym := newSymbol()
			symbols = append(symbols, sym)
			cur = sym

			var err error
			if sym.start, err = p.expectAddr(); err != nil {
				return err
			}
			if sym.end, err = p.expectAddr(); err != nil {
				return err
			}
			name, err := p.expect(token.String)
			if err != nil {
				return err
			}
			sym.filename = name.Text
			fn, err := p.expect(token.String)
			if err != nil {
				return err
			}
			sym.funcname = fn.Text
			if sym.bias, err = p.expectAddr(); err != nil {
				return err
			}

		case "program-entry":
			cur = nil
			if _, err := p.expectAddr(); err != nil {
				return err
			}
			if _, err := p.expectAddr(); err != nil {
				return err
			}

		case "block":
			if cur == nil {
				return fmt.Errorf("bftrace: line %d: block directive outside any symbol", p.current.Line)
			}
			faddr, err := p.expectAddr()
			if err != nil {
				return err
			}
			if faddr != cur.start {
				return fmt.Errorf("bftrace: line %d: block symbol address %s does not match current symbol %s",
					p.current.Line, faddr, cur.start)
			}

			bbAddr, err := p.expectAddr()
			if err != nil {
				return err
			}
			bbEnd, err := p.expectAddr()
			if err != nil {
				return err
			}
			if _, err := p.expectAddr(); err != nil { // trailing address, unused
				return err
			}

			kw, err := p.expect(token.Keyword)
			if err != nil {
				return err
			}
			var term terminator
			switch kw.Text {
			case "jump":
				term = termJump
			case "call":
				term = termCall
			case "return":
				term = termReturn
			case "other":
				term = termOther
			default:
				return fmt.Errorf("bftrace: line %d: unknown terminator kind %q", kw.Line, kw.Text)
			}

			isEntry, err := p.expectBool()
			if err != nil {
				return err
			}
			isExit, err := p.expectBool()
			if err != nil {
				return err
			}

			size := int(bbEnd) - int(bbAddr)
			cur.blocks[bbAddr] = basicBlock{size: size, term: term, isExit: isExit}
			if isEntry {
				cur.entries = append(cur.entries, bbAddr)
			}

		case "call", "return":
			if _, err := p.expectAddr(); err != nil {
				return err
			}
			if _, err := p.expectAddr(); err != nil {
				return err
			}

		case "br":
			if cur == nil {
				return fmt.Errorf("bftrace: line %d: br directive outside any symbol", p.current.Line)
			}
			src, err := p.expectAddr()
			if err != nil {
				return err
			}
			dst, err := p.expectAddr()
			if err != nil {
				return err
			}
			cur.edges[src] = append(cur.edges[src], dst)

		default:
			return fmt.Errorf("bftrace: line %d: unknown directive %q", p.current.Line, keyword)
		}
	}

	if _, err := p.expect(token.EOF); err != nil {
		return err
	}

	for _, sym := range symbols {
		for _, entryAddr := range sym.entries {
			if err := buildCFG(tbl, sym, entryAddr); err != nil {
				return err
			}
		}
	}
	return nil
}

func buildCFG(tbl *cfg.Table, sym *symbol, entryAddr addr.Address) error {
	c := tbl.CFGByAddr(entryAddr)
	c.SetFunctionName(sym.filename + "::" + sym.funcname)

	visited := map[addr.Address]bool{}
	queue := []addr.Address{entryAddr}
	visited[entryAddr] = true

	for len(queue) > 0 {
		a := queue[0]
		queue = queue[1:]

		bb, described := sym.blocks[a]

		node := c.NodeWithAddr(a)
		if described {
			if node.Type == cfg.NodePhantom {
				if _, err := node.Promote(bb.size); err != nil {
					return fmt.Errorf("bftrace: %w", err)
				}
			}
		}

		if a == entryAddr {
			entry := c.EnsureEntry()
			c.AddEdge(entry, node, 0)
		}

		if described && (bb.isExit || bb.term == termReturn) {
			exit := c.EnsureExit()
			c.AddEdge(node, exit, 0)
		}

		if described {
			for _, dst := range sym.edges[a] {
				dstNode := c.NodeWithAddr(dst)
				c.AddEdge(node, dstNode, 0)
				if !visited[dst] {
					visited[dst] = true
					queue = append(queue, dst)
				}
			}
		}
	}

	status := c.Check()
	cfglog.Logf("bftrace: cfg %s (%s) checked as %s", c.Addr(), c.FunctionName(), status)
	return nil
}
