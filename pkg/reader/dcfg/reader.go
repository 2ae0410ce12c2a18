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

// Package dcfg implements Reader C: the dense, header-led JSON trace format.
// Unlike bftrace and cfggrind it carries no token grammar of
// its own; the wire format is plain JSON, decoded with encoding/json.
package dcfg

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/master-g/cfgconv/pkg/addr"
	"github.com/master-g/cfgconv/pkg/cfg"
	"github.com/master-g/cfgconv/pkg/cfglog"
)

// Reserved node ids (original format: ENTRY_NODE=1, EXIT_NODE=2, UNKNOWN_NODE=3).
const entryBlockID = 4

// Edge type names from the dense format's enumerated vocabulary.
const (
	typeDirectUnconditionalBranch   = "DIRECT_UNCONDITIONAL_BRANCH"
	typeIndirectUnconditionalBranch = "INDIRECT_UNCONDITIONAL_BRANCH"
	typeDirectConditionalBranch     = "DIRECT_CONDITIONAL_BRANCH"
	typeRep                         = "REP"
	typeCallBypass                  = "CALL_BYPASS"
	typeSystemCallBypass            = "SYSTEM_CALL_BYPASS"
	typeFallThrough                 = "FALL_THROUGH"
	typeExcludedCodeBypass          = "EXCLUDED_CODE_BYPASS"
	typeDirectCall                  = "DIRECT_CALL"
	typeSystemCall                  = "SYSTEM_CALL"
	typeIndirectCall                = "INDIRECT_CALL"
	typeContextChange               = "CONTEXT_CHANGE"
	typeExit                        = "EXIT"
	typeReturn                      = "RETURN"
)

// plainEdgeTypes add a same-CFG edge with the row's count, with no other
// side effect.
var plainEdgeTypes = map[string]bool{
	typeDirectUnconditionalBranch: true,
	typeRep:                       true,
	typeCallBypass:                true,
	typeSystemCallBypass:          true,
	typeFallThrough:               true,
	typeExcludedCodeBypass:        true,
}

// callEdgeTypes attach a Call to the destination CFG rather than an
// intra-procedural edge.
var callEdgeTypes = map[string]bool{
	typeDirectCall: true,
	typeSystemCall: true,
}

type nodeInfo struct {
	Addr   addr.Address
	Size   int
	Instrs int
	Execs  uint64
}

type edgeRec struct {
	Dst   int
	Type  string
	Count uint64
}

type symbolInfo struct {
	FileID int
	FName  string
	LineNo int
}

// doc is the decoded, flattened view of a trace; a single JSON document may
// describe several processes and images, which this reader merges into one
// flat node/edge/symbol space since node ids are only ever referenced within
// the image that declared them in well-formed input.
type doc struct {
	filenames []string
	nodes     map[int]nodeInfo
	edges     map[int][]edgeRec
	symbols   map[addr.Address]symbolInfo
}

// Load parses a dcfg JSON document and materializes its CFGs into tbl.
func Load(r io.Reader, tbl *cfg.Table) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("dcfg: %w", err)
	}

	var root map[string]interface{}
	if err := json.Unmarshal(raw, &root); err != nil {
		return fmt.Errorf("dcfg: %w", err)
	}

	d := &doc{
		nodes:   make(map[int]nodeInfo),
		edges:   make(map[int][]edgeRec),
		symbols: make(map[addr.Address]symbolInfo),
	}

	if v, ok := root["FILE_NAMES"]; ok {
		if err := d.readFileNames(v); err != nil {
			return err
		}
	}
	if v, ok := root["PROCESSES"]; ok {
		if err := d.readProcesses(v); err != nil {
			return err
		}
	}

	return d.reconstruct(tbl)
}

func (d *doc) readFileNames(v interface{}) error {
	rows, err := dataRows(v, "FILE_NAMES")
	if err != nil {
		return err
	}
	for _, rv := range rows {
		r, err := row(rv, "FILE_NAMES")
		if err != nil {
			return err
		}
		id, err := cellInt(r, 0, "FILE_NAMES")
		if err != nil {
			return err
		}
		name, err := cellString(r, 1, "FILE_NAMES")
		if err != nil {
			return err
		}
		for len(d.filenames) <= id {
			d.filenames = append(d.filenames, "")
		}
		d.filenames[id] = name
	}
	return nil
}

func (d *doc) readProcesses(v interface{}) error {
	rows, err := dataRows(v, "PROCESSES")
	if err != nil {
		return err
	}
	for _, rv := range rows {
		r, err := row(rv, "PROCESSES")
		if err != nil {
			return err
		}
		pdata, err := cell(r, 1, "PROCESSES")
		if err != nil {
			return err
		}
		pobj, err := asObject(pdata, "PROCESSES[].data")
		if err != nil {
			return err
		}
		if v, ok := pobj["IMAGES"]; ok {
			if err := d.readImages(v); err != nil {
				return err
			}
		}
		if v, ok := pobj["EDGES"]; ok {
			if err := d.readEdges(v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *doc) readImages(v interface{}) error {
	rows, err := dataRows(v, "IMAGES")
	if err != nil {
		return err
	}
	for _, rv := range rows {
		r, err := row(rv, "IMAGES")
		if err != nil {
			return err
		}
		base, err := cellAddr(r, 1, "IMAGES")
		if err != nil {
			return err
		}
		idataRaw, err := cell(r, 3, "IMAGES")
		if err != nil {
			return err
		}
		idata, err := asObject(idataRaw, "IMAGES[].data")
		if err != nil {
			return err
		}
		fileID := 0
		if v, ok := idata["FILE_NAME_ID"]; ok {
			if f, ok := v.(float64); ok {
				fileID = int(f)
			}
		}
		if v, ok := idata["BASIC_BLOCKS"]; ok {
			if err := d.readBasicBlocks(v, base); err != nil {
				return err
			}
		}
		if v, ok := idata["SYMBOLS"]; ok {
			if err := d.readSymbols(v, base, fileID); err != nil {
				return err
			}
		}
		if v, ok := idata["SOURCE_DATA"]; ok {
			if err := d.readSourceData(v, base); err != nil {
				return err
			}
		}
		// ROUTINES is accepted but unused: reconstruction discovers
		// entries from call/context-change edge destinations instead.
	}
	return nil
}

func (d *doc) readBasicBlocks(v interface{}, base addr.Address) error {
	rows, err := dataRows(v, "BASIC_BLOCKS")
	if err != nil {
		return err
	}
	for _, rv := range rows {
		r, err := row(rv, "BASIC_BLOCKS")
		if err != nil {
			return err
		}
		id, err := cellInt(r, 0, "BASIC_BLOCKS")
		if err != nil {
			return err
		}
		offset, err := cellAddr(r, 1, "BASIC_BLOCKS")
		if err != nil {
			return err
		}
		size, err := cellInt(r, 2, "BASIC_BLOCKS")
		if err != nil {
			return err
		}
		instrs, err := cellInt(r, 3, "BASIC_BLOCKS")
		if err != nil {
			return err
		}
		execs, err := cellUint(r, 5, "BASIC_BLOCKS")
		if err != nil {
			return err
		}
		d.nodes[id] = nodeInfo{Addr: base + offset, Size: size, Instrs: instrs, Execs: execs}
	}
	return nil
}

func (d *doc) readSymbols(v interface{}, base addr.Address, fileID int) error {
	rows, err := dataRows(v, "SYMBOLS")
	if err != nil {
		return err
	}
	for _, rv := range rows {
		r, err := row(rv, "SYMBOLS")
		if err != nil {
			return err
		}
		fname, err := cellString(r, 0, "SYMBOLS")
		if err != nil {
			return err
		}
		offset, err := cellAddr(r, 1, "SYMBOLS")
		if err != nil {
			return err
		}
		a := base + offset
		si := d.symbols[a]
		si.FileID = fileID
		si.FName = fname
		si.LineNo = -1
		d.symbols[a] = si
	}
	return nil
}

func (d *doc) readSourceData(v interface{}, base addr.Address) error {
	rows, err := dataRows(v, "SOURCE_DATA")
	if err != nil {
		return err
	}
	for _, rv := range rows {
		r, err := row(rv, "SOURCE_DATA")
		if err != nil {
			return err
		}
		fileID, err := cellInt(r, 0, "SOURCE_DATA")
		if err != nil {
			return err
		}
		lineno, err := cellInt(r, 1, "SOURCE_DATA")
		if err != nil {
			return err
		}
		offset, err := cellAddr(r, 2, "SOURCE_DATA")
		if err != nil {
			return err
		}
		a := base + offset
		si, ok := d.symbols[a]
		if !ok {
			si.FileID = fileID
		}
		si.LineNo = lineno
		d.symbols[a] = si
	}
	return nil
}

func (d *doc) readEdges(v interface{}) error {
	rows, err := dataRows(v, "EDGES")
	if err != nil {
		return err
	}
	for _, rv := range rows {
		r, err := row(rv, "EDGES")
		if err != nil {
			return err
		}
		src, err := cellInt(r, 1, "EDGES")
		if err != nil {
			return err
		}
		dst, err := cellInt(r, 2, "EDGES")
		if err != nil {
			return err
		}
		typ, err := cellString(r, 3, "EDGES")
		if err != nil {
			return err
		}
		var count uint64
		if len(r) > 4 {
			count, err = cellUint(r, 4, "EDGES")
			if err != nil {
				return err
			}
		}
		d.edges[src] = append(d.edges[src], edgeRec{Dst: dst, Type: typ, Count: count})
	}
	return nil
}

// reconstruct runs a two-pass build: first every
// call/context-change edge's count is folded into its destination CFG's
// execution-count accumulator (exactly once per source block, since each
// edge is visited exactly once in this pass), then every entry is walked by
// BFS to materialize nodes, edges, calls and signal handlers, by which point
// each CFG's Execs is already final and its Entry->firstBlock edge count is
// correct on first construction.
func (d *doc) reconstruct(tbl *cfg.Table) error {
	entries := map[int]bool{entryBlockID: true}

	for _, recs := range d.edges {
		for _, e := range recs {
			if callEdgeTypes[e.Type] || e.Type == typeIndirectCall || e.Type == typeContextChange {
				entries[e.Dst] = true
				dstInfo, ok := d.nodes[e.Dst]
				if !ok {
					return fmt.Errorf("dcfg: edge references unknown node id %d", e.Dst)
				}
				tbl.CFGByAddr(dstInfo.Addr).AddExecs(e.Count)
			}
		}
	}

	ids := make([]int, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		if err := d.walk(tbl, id); err != nil {
			return err
		}
	}

	for _, c := range tbl.All() {
		status := c.Check()
		cfglog.Logf("dcfg: cfg %s (%s) checked as %s", c.Addr(), c.FunctionName(), status)
	}
	return nil
}

func (d *doc) walk(tbl *cfg.Table, entryID int) error {
	entryInfo, ok := d.nodes[entryID]
	if !ok {
		return fmt.Errorf("dcfg: entry references unknown node id %d", entryID)
	}

	c := tbl.CFGByAddr(entryInfo.Addr)
	if sym, ok := d.symbols[c.Addr()]; ok {
		name := d.fileQualifiedName(sym)
		c.SetFunctionName(name)
	}

	entryNode := c.NodeWithAddr(entryInfo.Addr)
	if entryNode.Type == cfg.NodePhantom {
		if _, err := entryNode.Promote(entryInfo.Size); err != nil {
			return fmt.Errorf("dcfg: %w", err)
		}
	}
	c.AddEdge(c.EnsureEntry(), entryNode, c.Execs())

	visited := map[int]bool{entryID: true}
	queue := []int{entryID}
	nodesByID := map[int]*cfg.Node{entryID: entryNode}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := nodesByID[id]
		info := d.nodes[id]

		for _, e := range d.edges[id] {
			switch {
			case plainEdgeTypes[e.Type]:
				dst, dstID, err := d.resolveIntra(c, e.Dst, nodesByID)
				if err != nil {
					return err
				}
				c.AddEdge(n, dst, e.Count)
				if !visited[dstID] {
					visited[dstID] = true
					queue = append(queue, dstID)
				}

			case e.Type == typeIndirectUnconditionalBranch:
				if n.Type == cfg.NodeBlock {
					n.Block.Indirect = true
				}
				dst, dstID, err := d.resolveIntra(c, e.Dst, nodesByID)
				if err != nil {
					return err
				}
				c.AddEdge(n, dst, e.Count)
				if !visited[dstID] {
					visited[dstID] = true
					queue = append(queue, dstID)
				}

			case e.Type == typeDirectConditionalBranch:
				dst, dstID, err := d.resolveIntra(c, e.Dst, nodesByID)
				if err != nil {
					return err
				}
				c.AddEdge(n, dst, e.Count)
				if !visited[dstID] {
					visited[dstID] = true
					queue = append(queue, dstID)
				}
				fallthroughAddr := info.Addr + addr.Address(info.Size)
				fallthroughNode := c.NodeWithAddr(fallthroughAddr)
				c.AddEdge(n, fallthroughNode, 0)

			case callEdgeTypes[e.Type]:
				calleeInfo, ok := d.nodes[e.Dst]
				if !ok {
					return fmt.Errorf("dcfg: call references unknown node id %d", e.Dst)
				}
				if n.Type == cfg.NodeBlock {
					n.Block.AddCall(tbl.CFGByAddr(calleeInfo.Addr), e.Count)
				}

			case e.Type == typeIndirectCall:
				calleeInfo, ok := d.nodes[e.Dst]
				if !ok {
					return fmt.Errorf("dcfg: call references unknown node id %d", e.Dst)
				}
				if n.Type == cfg.NodeBlock {
					n.Block.Indirect = true
					n.Block.AddCall(tbl.CFGByAddr(calleeInfo.Addr), e.Count)
				}

			case e.Type == typeContextChange:
				calleeInfo, ok := d.nodes[e.Dst]
				if !ok {
					return fmt.Errorf("dcfg: context-change references unknown node id %d", e.Dst)
				}
				if n.Type == cfg.NodeBlock {
					if _, err := n.Block.AddSignalHandler(1, tbl.CFGByAddr(calleeInfo.Addr), e.Count); err != nil {
						return fmt.Errorf("dcfg: %w", err)
					}
				}

			case e.Type == typeExit:
				c.AddEdge(n, c.EnsureHalt(), e.Count)

			case e.Type == typeReturn:
				c.AddEdge(n, c.EnsureExit(), e.Count)

			default:
				return fmt.Errorf("dcfg: unknown edge type %q at node %d", e.Type, id)
			}
		}
	}
	return nil
}

// resolveIntra materializes (or reuses) the node for a same-CFG destination
// id, promoting it to Block with its declared size on first visit.
func (d *doc) resolveIntra(c *cfg.CFG, id int, nodesByID map[int]*cfg.Node) (*cfg.Node, int, error) {
	info, ok := d.nodes[id]
	if !ok {
		return nil, 0, fmt.Errorf("dcfg: edge references unknown node id %d", id)
	}
	n := c.NodeWithAddr(info.Addr)
	if n.Type == cfg.NodePhantom {
		if _, err := n.Promote(info.Size); err != nil {
			return nil, 0, fmt.Errorf("dcfg: %w", err)
		}
	}
	nodesByID[id] = n
	return n, id, nil
}

func (d *doc) fileQualifiedName(sym symbolInfo) string {
	fname := sym.FName
	if sym.FileID >= 0 && sym.FileID < len(d.filenames) {
		fname = d.filenames[sym.FileID] + "::" + fname
	}
	if sym.LineNo >= 0 {
		fname = fmt.Sprintf("%s(%d)", fname, sym.LineNo)
	}
	return fname
}
