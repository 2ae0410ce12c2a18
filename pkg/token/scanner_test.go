package token

import (
	"strings"
	"testing"
)

func kinds(t *testing.T, input string) []Kind {
	t.Helper()
	s := NewScanner(strings.NewReader(input))
	var got []Kind
	for {
		lx := s.Next()
		got = append(got, lx.Kind)
		if lx.Kind == EOF {
			break
		}
	}
	return got
}

func TestScanner_Directive(t *testing.T) {
	got := kinds(t, `symbol 0x400 0x410 "f.c" "foo" 0x0`)
	want := []Kind{Keyword, Addr, Addr, String, String, Addr, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScanner_Bracketed(t *testing.T) {
	got := kinds(t, `[node 0x100 0x100 4 [4] [] false [exit:5]]`)
	want := []Kind{
		BracketOpen, Keyword, Addr, Addr, Number,
		BracketOpen, Number, BracketClose,
		BracketOpen, BracketClose,
		Bool,
		BracketOpen, Keyword, Colon, Number, BracketClose,
		BracketClose, EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("len(got)=%d len(want)=%d\ngot=%v\nwant=%v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScanner_CommentsAndWhitespace(t *testing.T) {
	got := kinds(t, "  # a comment\n\ttrue false\n")
	want := []Kind{Bool, Bool, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestScanner_UnterminatedString(t *testing.T) {
	s := NewScanner(strings.NewReader(`"unterminated`))
	lx := s.Next()
	if lx.Kind != UnexpectedEOF {
		t.Fatalf("Kind = %v, want UNEXPECTED_EOF", lx.Kind)
	}
}

func TestScanner_Invalid(t *testing.T) {
	s := NewScanner(strings.NewReader(`@`))
	lx := s.Next()
	if lx.Kind != Invalid {
		t.Fatalf("Kind = %v, want INVALID", lx.Kind)
	}
}

func TestScanner_ZeroAndHex(t *testing.T) {
	got := kinds(t, "0 0x10 0xFF")
	want := []Kind{Number, Addr, Addr, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
