package bftrace

import (
	"strings"
	"testing"

	"github.com/master-g/cfgconv/pkg/addr"
	"github.com/master-g/cfgconv/pkg/cfg"
)

func TestLoad_Minimal(t *testing.T) {
	input := `symbol 0x400 0x410 "f.c" "foo" 0x0
block 0x400 0x400 0x408 0x408 return true true
`
	tbl := cfg.NewTable()
	if err := Load(strings.NewReader(input), tbl); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if tbl.Len() != 1 {
		t.Fatalf("Len() = %v, want 1", tbl.Len())
	}
	c, ok := tbl.Lookup(0x400)
	if !ok {
		t.Fatalf("CFG at 0x400 not found")
	}
	if c.FunctionName() != "f.c::foo" {
		t.Errorf("FunctionName() = %q, want %q", c.FunctionName(), "f.c::foo")
	}
	if c.Status() != cfg.Valid {
		t.Fatalf("Status() = %v, want VALID", c.Status())
	}
	if !c.Complete() {
		t.Errorf("Complete() = false, want true")
	}
	blocks := c.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("len(Blocks()) = %v, want 1", len(blocks))
	}
	if blocks[0].Block.Size != 8 {
		t.Errorf("Size = %v, want 8", blocks[0].Block.Size)
	}

	if _, ok := c.FindEdge(c.EntryNode(), blocks[0]); !ok {
		t.Errorf("missing Entry->0x400 edge")
	}
	if _, ok := c.FindEdge(blocks[0], c.ExitNode()); !ok {
		t.Errorf("missing 0x400->Exit edge")
	}
}

func TestLoad_ForwardReferenceBecomesPhantom(t *testing.T) {
	input := `symbol 0x400 0x420 "f.c" "foo" 0x0
block 0x400 0x400 0x408 0x408 jump true false
br 0x400 0x500
`
	tbl := cfg.NewTable()
	if err := Load(strings.NewReader(input), tbl); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c, _ := tbl.Lookup(0x400)
	phantoms := c.Phantoms()
	if len(phantoms) != 1 || phantoms[0].Address() != addr.Address(0x500) {
		t.Fatalf("Phantoms() = %v, want one phantom at 0x500", phantoms)
	}
}
