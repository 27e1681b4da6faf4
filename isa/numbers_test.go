package isa

import "testing"

func TestParseIntBases(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{"-7", -7, true},
		{"0x1F", 31, true},
		{"0X1f", 31, true},
		{"0b101", 5, true},
		{"0o17", 15, true},
		{"017", 15, true},
		{"+5", 5, true},
		{"not_a_number", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseInt(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("ParseInt(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestFloorDivMod(t *testing.T) {
	cases := []struct{ a, b, div, mod int64 }{
		{7, 2, 3, 1},
		{-7, 2, -4, 1},
		{7, -2, -4, -1},
		{-7, -2, 3, -1},
	}
	for _, c := range cases {
		if got := FloorDiv(c.a, c.b); got != c.div {
			t.Errorf("FloorDiv(%d, %d) = %d, want %d", c.a, c.b, got, c.div)
		}
		if got := FloorMod(c.a, c.b); got != c.mod {
			t.Errorf("FloorMod(%d, %d) = %d, want %d", c.a, c.b, got, c.mod)
		}
	}
}

func TestFitsSigned(t *testing.T) {
	if !FitsSigned(127, 8) || FitsSigned(128, 8) {
		t.Error("FitsSigned boundary wrong for positive 8-bit")
	}
	if !FitsSigned(-128, 8) || FitsSigned(-129, 8) {
		t.Error("FitsSigned boundary wrong for negative 8-bit")
	}
}
