package rangeset

import (
	"testing"

	"github.com/master-g/cfgconv/pkg/addr"
)

func TestSet_EmptyMatchesEverything(t *testing.T) {
	s := New()
	if !s.Contains(0x1234) {
		t.Errorf("empty set should contain every address")
	}
}

func TestSet_RangeAndPoint(t *testing.T) {
	s := New()
	if err := s.AddRangeString("0x100:0x200"); err != nil {
		t.Fatalf("AddRangeString: %v", err)
	}
	if err := s.AddPointString("0x500"); err != nil {
		t.Fatalf("AddPointString: %v", err)
	}

	cases := []struct {
		addr string
		want bool
	}{
		{"0x100", true},
		{"0x180", true},
		{"0x200", true},
		{"0x201", false},
		{"0x500", true},
		{"0x501", false},
	}
	for _, c := range cases {
		a, err := addr.Parse(c.addr)
		if err != nil {
			t.Fatalf("parse %q: %v", c.addr, err)
		}
		if got := s.Contains(a); got != c.want {
			t.Errorf("Contains(%s) = %v, want %v", c.addr, got, c.want)
		}
	}
}

func TestSet_InvalidRange(t *testing.T) {
	s := New()
	if err := s.AddRangeString("0x200:0x100"); err == nil {
		t.Errorf("expected error for end before start")
	}
}
