package symtab

import "testing"

func TestEvalArithPrecedence(t *testing.T) {
	cases := []struct {
		expr string
		want int64
	}{
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"10/3", 3},
		{"-10/3", -4}, // floor division
		{"10%3", 1},
		{"-10%3", 2},
		{"1<<4", 16},
		{"0xff & 0x0f", 0x0f},
		{"1 | 2 | 4", 7},
		{"~0", -1},
		{"-(-5)", 5},
	}
	for _, c := range cases {
		v, err := EvalExpr(c.expr, New(), LookupOptions{File: "a.s", PCRelFrom: -1})
		if err != nil {
			t.Fatalf("EvalExpr(%q): %v", c.expr, err)
		}
		if v != c.want {
			t.Errorf("EvalExpr(%q) = %d, want %d", c.expr, v, c.want)
		}
	}
}

func TestEvalWithLabelSubstitution(t *testing.T) {
	tbl := New()
	tbl.AddLabel("base", "a.s", 0x1000)
	v, err := EvalExpr("base+4", tbl, LookupOptions{File: "a.s", PCRelFrom: -1})
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x1004 {
		t.Errorf("want 0x1004, got %#x", v)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	_, err := EvalExpr("1/0", New(), LookupOptions{File: "a.s", PCRelFrom: -1})
	if err == nil {
		t.Error("expected division-by-zero error")
	}
}

func TestEvalUndeclaredLabel(t *testing.T) {
	_, err := EvalExpr("missing_label+1", New(), LookupOptions{File: "a.s", PCRelFrom: -1})
	if err == nil {
		t.Error("expected error for undeclared label reference")
	}
}
