package dcfg

import (
	"strings"
	"testing"

	"github.com/master-g/cfgconv/pkg/addr"
	"github.com/master-g/cfgconv/pkg/cfg"
)

const testDoc = `{
  "FILE_NAMES": [["id", "name"], [0, "f.c"]],
  "PROCESSES": [["id", "data"], [0, {
    "IMAGES": [["id", "base", "name", "data"], [0, "0x0", "img", {
      "FILE_NAME_ID": 0,
      "BASIC_BLOCKS": [["id", "addr", "size", "instrs", "unused", "execs"],
        [4, "0x400", 8, 1, 0, 0],
        [5, "0x408", 4, 1, 0, 0],
        [6, "0x500", 4, 1, 0, 0],
        [7, "0x20", 4, 1, 0, 0]
      ],
      "SYMBOLS": [["fname", "addr"], ["foo", "0x400"]]
    }],
    "EDGES": [["id", "src", "dst", "type", "count"],
      [0, 4, 6, "DIRECT_CONDITIONAL_BRANCH", 3],
      [1, 4, 7, "DIRECT_CALL", 7]
    ]
  }]]
}`

func TestLoad_DirectConditionalBranch(t *testing.T) {
	tbl := cfg.NewTable()
	if err := Load(strings.NewReader(testDoc), tbl); err != nil {
		t.Fatalf("Load: %v", err)
	}

	c, ok := tbl.Lookup(0x400)
	if !ok {
		t.Fatalf("CFG at 0x400 not found")
	}
	if c.FunctionName() != "f.c::foo" {
		t.Errorf("FunctionName() = %q, want %q", c.FunctionName(), "f.c::foo")
	}

	entryBlock, ok := c.NodeByAddr(0x400)
	if !ok {
		t.Fatalf("block at 0x400 not found")
	}

	taken, ok := c.FindEdge(entryBlock, mustNode(t, c, 0x500))
	if !ok || taken.Count != 3 {
		t.Fatalf("taken branch edge missing or wrong count: %+v", taken)
	}
	fallthroughEdge, ok := c.FindEdge(entryBlock, mustNode(t, c, 0x408))
	if !ok || fallthroughEdge.Count != 0 {
		t.Fatalf("fallthrough edge missing or wrong count: %+v", fallthroughEdge)
	}
}

func TestLoad_DirectCallWithCount(t *testing.T) {
	tbl := cfg.NewTable()
	if err := Load(strings.NewReader(testDoc), tbl); err != nil {
		t.Fatalf("Load: %v", err)
	}

	caller, ok := tbl.Lookup(0x400)
	if !ok {
		t.Fatalf("CFG at 0x400 not found")
	}
	entryBlock, ok := caller.NodeByAddr(0x400)
	if !ok || entryBlock.Type != cfg.NodeBlock {
		t.Fatalf("entry block at 0x400 not promoted: %+v", entryBlock)
	}
	call, ok := entryBlock.Block.Calls()[0x20]
	if !ok {
		t.Fatalf("call to 0x20 not recorded")
	}
	if call.Count != 7 {
		t.Errorf("Count = %v, want 7", call.Count)
	}

	callee, ok := tbl.Lookup(0x20)
	if !ok {
		t.Fatalf("CFG at 0x20 not found")
	}
	if callee.Execs() != 7 {
		t.Errorf("Execs() = %v, want 7", callee.Execs())
	}
	calleeEntryBlock, ok := callee.NodeByAddr(0x20)
	if !ok {
		t.Fatalf("callee entry block not found")
	}
	entryEdge, ok := callee.FindEdge(callee.EntryNode(), calleeEntryBlock)
	if !ok || entryEdge.Count != 7 {
		t.Fatalf("callee Entry->block edge missing or wrong count: %+v", entryEdge)
	}
}

func mustNode(t *testing.T, c *cfg.CFG, a addr.Address) *cfg.Node {
	t.Helper()
	n, ok := c.NodeByAddr(a)
	if !ok {
		t.Fatalf("node at %s not found", a)
	}
	return n
}
