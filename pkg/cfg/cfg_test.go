package cfg

import (
	"testing"

	"github.com/master-g/cfgconv/pkg/addr"
)

func TestAddEdge_AggregatesCount(t *testing.T) {
	c := New(0x400)
	entry := c.EnsureEntry()
	blk, err := c.AddBlock(0x400, 4)
	if err != nil {
		t.Fatalf("AddBlock: %v", err)
	}

	c.AddEdge(entry, blk, 3)
	e := c.AddEdge(entry, blk, 2)
	if e.Count != 5 {
		t.Fatalf("Count = %v, want 5", e.Count)
	}
	if len(c.Successors(entry)) != 1 {
		t.Fatalf("Successors(entry) has %d edges, want 1", len(c.Successors(entry)))
	}
}

func TestAddBlock_DuplicateAddress(t *testing.T) {
	c := New(0x400)
	if _, err := c.AddBlock(0x400, 4); err != nil {
		t.Fatalf("first AddBlock: %v", err)
	}
	if _, err := c.AddBlock(0x400, 8); err == nil {
		t.Fatalf("second AddBlock at same address succeeded, want error")
	}
}

func TestNodeWithAddr_CreatesPhantomThenPromotes(t *testing.T) {
	c := New(0x400)
	p := c.NodeWithAddr(0x500)
	if p.Type != NodePhantom {
		t.Fatalf("Type = %v, want Phantom", p.Type)
	}

	if _, err := p.Promote(4); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if p.Type != NodeBlock {
		t.Fatalf("Type after Promote = %v, want Block", p.Type)
	}
	if p.Address() != 0x500 {
		t.Fatalf("Address changed by promotion: got %v, want 0x500", p.Address())
	}

	if _, err := p.Promote(8); err == nil {
		t.Fatalf("second Promote succeeded, want error (no demotion)")
	}
}

func TestCheck_MinimalValidCFG(t *testing.T) {
	// One block, entry->block->exit, no counts.
	c := New(0x400)
	entry := c.EnsureEntry()
	exit := c.EnsureExit()
	blk, _ := c.AddBlock(0x400, 8)

	c.AddEdge(entry, blk, 0)
	c.AddEdge(blk, exit, 0)

	if got := c.Check(); got != Valid {
		t.Fatalf("Check() = %v, want VALID", got)
	}
	if !c.Complete() {
		t.Errorf("Complete() = false, want true")
	}
}

func TestCheck_CountedCFG(t *testing.T) {
	// execs=5, entry->block count 5, block->exit count 5.
	c := New(0x100)
	c.AddExecs(5)
	entry := c.EnsureEntry()
	exit := c.EnsureExit()
	blk, _ := c.AddBlock(0x100, 4)
	blk.Block.AddInstruction(&addr.Instruction{Address: 0x100, Size: 4})

	c.AddEdge(entry, blk, 5)
	c.AddEdge(blk, exit, 5)

	if got := c.Check(); got != Valid {
		t.Fatalf("Check() = %v, want VALID", got)
	}
	if !c.Complete() {
		t.Errorf("Complete() = false, want true")
	}
}

func TestCheck_PhantomMakesIncomplete(t *testing.T) {
	// A phantom successor keeps the CFG valid but incomplete.
	c := New(0x200)
	entry := c.EnsureEntry()
	exit := c.EnsureExit()
	blk, _ := c.AddBlock(0x200, 4)
	phantom := c.NodeWithAddr(0x300)

	c.AddEdge(entry, blk, 0)
	c.AddEdge(blk, phantom, 0)
	c.AddEdge(blk, exit, 0)

	if got := c.Check(); got != Valid {
		t.Fatalf("Check() = %v, want VALID", got)
	}
	if c.Complete() {
		t.Errorf("Complete() = true, want false (phantom present)")
	}
}

func TestCheck_IndirectMakesIncomplete(t *testing.T) {
	// An indirect block keeps the CFG valid but incomplete.
	c := New(0x600)
	entry := c.EnsureEntry()
	exit := c.EnsureExit()
	blk, _ := c.AddBlock(0x600, 4)
	blk.Block.Indirect = true

	c.AddEdge(entry, blk, 0)
	c.AddEdge(blk, exit, 0)

	if got := c.Check(); got != Valid {
		t.Fatalf("Check() = %v, want VALID", got)
	}
	if c.Complete() {
		t.Errorf("Complete() = true, want false (indirect block present)")
	}
}

func TestCheck_UnbalancedFlowIsInvalid(t *testing.T) {
	c := New(0x700)
	entry := c.EnsureEntry()
	exit := c.EnsureExit()
	blk, _ := c.AddBlock(0x700, 4)

	c.AddEdge(entry, blk, 3)
	c.AddEdge(blk, exit, 2) // unbalanced

	if got := c.Check(); got != Invalid {
		t.Fatalf("Check() = %v, want INVALID", got)
	}
}

func TestCheck_MissingExitAndHaltIsInvalid(t *testing.T) {
	c := New(0x800)
	c.EnsureEntry()
	c.AddBlock(0x800, 4)

	if got := c.Check(); got != Invalid {
		t.Fatalf("Check() = %v, want INVALID", got)
	}
}

func TestTable_CFGByAddrCreatesOnce(t *testing.T) {
	tbl := NewTable()
	a := tbl.CFGByAddr(0x400)
	b := tbl.CFGByAddr(0x400)
	if a != b {
		t.Fatalf("CFGByAddr returned different instances for the same address")
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len() = %v, want 1", tbl.Len())
	}
}
