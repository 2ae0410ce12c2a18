package cfggrind

import (
	"strings"
	"testing"

	"github.com/master-g/cfgconv/pkg/addr"
	"github.com/master-g/cfgconv/pkg/cfg"
)

func TestLoad_CountedCFG(t *testing.T) {
	input := "[cfg 0x100:5 \"g\" true]\n[node 0x100 0x100 4 [4] [] false [exit:5]]\n"
	tbl := cfg.NewTable()
	reg := addr.NewRegistry()
	if err := Load(strings.NewReader(input), tbl, reg); err != nil {
		t.Fatalf("Load: %v", err)
	}

	c, ok := tbl.Lookup(0x100)
	if !ok {
		t.Fatalf("CFG at 0x100 not found")
	}
	if c.Execs() != 5 {
		t.Errorf("Execs() = %v, want 5", c.Execs())
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
	if len(blocks[0].Block.Instructions) != 1 {
		t.Fatalf("len(Instructions) = %v, want 1", len(blocks[0].Block.Instructions))
	}

	entryEdge, ok := c.FindEdge(c.EntryNode(), blocks[0])
	if !ok || entryEdge.Count != 5 {
		t.Fatalf("Entry->0x100 edge missing or wrong count: %+v", entryEdge)
	}
	exitEdge, ok := c.FindEdge(blocks[0], c.ExitNode())
	if !ok || exitEdge.Count != 5 {
		t.Fatalf("0x100->Exit edge missing or wrong count: %+v", exitEdge)
	}
}

func TestLoad_PhantomSuccessor(t *testing.T) {
	// The block also reaches Exit: a block whose only successor is a
	// Phantom, with no Exit/Halt anywhere in the CFG, fails the entry/exit
	// structural check and comes back INVALID, not VALID.
	input := "[cfg 0x200 \"h\" true]\n[node 0x200 0x200 4 [4] [] false [0x300 exit]]\n"
	tbl := cfg.NewTable()
	reg := addr.NewRegistry()
	if err := Load(strings.NewReader(input), tbl, reg); err != nil {
		t.Fatalf("Load: %v", err)
	}

	c, _ := tbl.Lookup(0x200)
	if c.Status() != cfg.Valid {
		t.Fatalf("Status() = %v, want VALID", c.Status())
	}
	if c.Complete() {
		t.Errorf("Complete() = true, want false (phantom successor)")
	}
	phantoms := c.Phantoms()
	if len(phantoms) != 1 || phantoms[0].Address() != addr.Address(0x300) {
		t.Fatalf("Phantoms() = %v, want [0x300]", phantoms)
	}
}

func TestLoad_CallWithCount(t *testing.T) {
	input := "[cfg 0x10 \"caller\" true]\n" +
		"[node 0x10 0x10 2 [2] [0x20:7] false [exit]]\n"
	tbl := cfg.NewTable()
	reg := addr.NewRegistry()
	if err := Load(strings.NewReader(input), tbl, reg); err != nil {
		t.Fatalf("Load: %v", err)
	}

	c, _ := tbl.Lookup(0x10)
	blocks := c.Blocks()
	calls := blocks[0].Block.Calls()
	call, ok := calls[0x20]
	if !ok {
		t.Fatalf("call to 0x20 not recorded")
	}
	if call.Count != 7 {
		t.Errorf("Count = %v, want 7", call.Count)
	}
	if call.Callee.Addr() != 0x20 {
		t.Errorf("Callee.Addr() = %v, want 0x20", call.Callee.Addr())
	}
}
