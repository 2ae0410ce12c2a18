package addr

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    Address
		wantErr bool
	}{
		{"0x400", 0x400, false},
		{"400", 0x400, false},
		{"0X1a", 0x1a, false},
		{"", 0, true},
		{"zz", 0, true},
	}

	for _, c := range cases {
		got, err := Parse(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) = %v, want error", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRegistry_GetAdoptsSize(t *testing.T) {
	r := NewRegistry()

	inst := r.Get(0x400, 0)
	if inst.Size != 0 {
		t.Fatalf("Size = %v, want 0", inst.Size)
	}

	inst2 := r.Get(0x400, 4)
	if inst2 != inst {
		t.Fatalf("Get() returned a different instance for the same address")
	}
	if inst.Size != 4 {
		t.Errorf("Size = %v, want adopted 4", inst.Size)
	}

	inst3 := r.Get(0x400, 8)
	if inst3.Size != 4 {
		t.Errorf("Size = %v, want unchanged 4 (never contradicted)", inst3.Size)
	}
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry()
	r.Get(0x400, 4)
	if r.Len() != 1 {
		t.Fatalf("Len() = %v, want 1", r.Len())
	}
	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Len() after Clear() = %v, want 0", r.Len())
	}
}
