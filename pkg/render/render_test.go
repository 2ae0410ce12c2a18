package render

import (
	"strings"
	"testing"

	"github.com/master-g/cfgconv/pkg/addr"
	"github.com/master-g/cfgconv/pkg/cfg"
	"github.com/master-g/cfgconv/pkg/reader/cfggrind"
)

func TestText_RoundTripsThroughReaderB(t *testing.T) {
	input := "[cfg 0x100:5 \"g\" true]\n[node 0x100 0x100 4 [4] [] false [exit:5]]\n"

	tbl := cfg.NewTable()
	reg := addr.NewRegistry()
	if err := cfggrind.Load(strings.NewReader(input), tbl, reg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c, _ := tbl.Lookup(0x100)

	var buf strings.Builder
	if err := Text(&buf, c); err != nil {
		t.Fatalf("Text: %v", err)
	}

	tbl2 := cfg.NewTable()
	reg2 := addr.NewRegistry()
	if err := cfggrind.Load(strings.NewReader(buf.String()), tbl2, reg2); err != nil {
		t.Fatalf("re-parse: %v\ndump:\n%s", err, buf.String())
	}
	c2, ok := tbl2.Lookup(0x100)
	if !ok {
		t.Fatalf("CFG at 0x100 missing after re-parse")
	}
	if c2.Execs() != c.Execs() {
		t.Errorf("Execs() = %v, want %v", c2.Execs(), c.Execs())
	}
	if c2.FunctionName() != c.FunctionName() {
		t.Errorf("FunctionName() = %q, want %q", c2.FunctionName(), c.FunctionName())
	}
	if len(c2.Blocks()) != len(c.Blocks()) {
		t.Fatalf("len(Blocks()) = %v, want %v", len(c2.Blocks()), len(c.Blocks()))
	}

	var buf2 strings.Builder
	if err := Text(&buf2, c2); err != nil {
		t.Fatalf("Text (second pass): %v", err)
	}
	if buf.String() != buf2.String() {
		t.Errorf("dump not idempotent:\nfirst:\n%s\nsecond:\n%s", buf.String(), buf2.String())
	}
}

func TestDot_ContainsDigraphHeader(t *testing.T) {
	input := "[cfg 0x200 \"h\" true]\n[node 0x200 0x200 4 [4] [] false [0x300]]\n"
	tbl := cfg.NewTable()
	reg := addr.NewRegistry()
	if err := cfggrind.Load(strings.NewReader(input), tbl, reg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c, _ := tbl.Lookup(0x200)

	var buf strings.Builder
	if err := Dot(&buf, c); err != nil {
		t.Fatalf("Dot: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "digraph \"h\" {") {
		t.Errorf("Dot output missing digraph header: %s", out)
	}
	if !strings.Contains(out, "style=dashed") {
		t.Errorf("Dot output missing dashed phantom styling: %s", out)
	}
}
