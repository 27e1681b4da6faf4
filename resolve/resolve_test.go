package resolve

import (
	"testing"

	"github.com/b-inary/gaia-software/diag"
	"github.com/b-inary/gaia-software/layout"
	"github.com/b-inary/gaia-software/symtab"
)

func pos() diag.Pos { return diag.Pos{File: "a.s", Line: 1} }

func TestResolveMovOneOp(t *testing.T) {
	tbl := symtab.New()
	tbl.AddLabel("target", "a.s", 100)
	items := []layout.Item{{Mnemonic: "mov", Operands: []string{"r1", "target"}, Pos: pos()}}
	out, err := Resolve(items, tbl, Options{EntryPoint: 0, OneOp: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Mnemonic != "ldl" || out[0].Operands[1] != "100" {
		t.Errorf("one-op mov should become a single ldl 100, got %v", out)
	}
}

func TestResolveMovTwoOp(t *testing.T) {
	tbl := symtab.New()
	tbl.AddLabel("target", "a.s", 0x12345)
	items := []layout.Item{{Mnemonic: "mov", Operands: []string{"r1", "target"}, Pos: pos()}}
	out, err := Resolve(items, tbl, Options{EntryPoint: 0, OneOp: false})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].Mnemonic != "ldl" || out[1].Mnemonic != "ldh" {
		t.Errorf("two-op mov should become ldl+ldh, got %v", out)
	}
}

func TestResolveSymbolicLoadOneOp(t *testing.T) {
	tbl := symtab.New()
	tbl.AddLabel("data", "a.s", 200)
	items := []layout.Item{{Mnemonic: "ld", Operands: []string{"r1", "data"}, Pos: pos()}}
	out, err := Resolve(items, tbl, Options{EntryPoint: 0, OneOp: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Operands[1] != "r0" || out[0].Operands[2] != "200" {
		t.Errorf("one-op symbolic ld should use r0 base and the full offset, got %v", out)
	}
}

func TestResolveSymbolicLoadTwoOp(t *testing.T) {
	tbl := symtab.New()
	tbl.AddLabel("data", "a.s", 0x20000)
	items := []layout.Item{{Mnemonic: "ld", Operands: []string{"r1", "data"}, Pos: pos()}}
	out, err := Resolve(items, tbl, Options{EntryPoint: 0, OneOp: false})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].Mnemonic != "ldh" || out[1].Mnemonic != "ld" || out[1].Operands[1] != "r29" {
		t.Errorf("two-op symbolic ld should split into ldh r29 + ld via r29, got %v", out)
	}
}

func TestResolveBranchDisplacement(t *testing.T) {
	tbl := symtab.New()
	tbl.AddLabel("target", "a.s", 0x20)
	items := []layout.Item{{Mnemonic: "bne", Operands: []string{"r1", "r2", "target"}, Pos: pos()}}
	out, err := Resolve(items, tbl, Options{EntryPoint: 0x10})
	if err != nil {
		t.Fatal(err)
	}
	want := int64(0x20 - (0x10 + 4))
	if len(out) != 1 || out[0].Operands[2] != itoaHelper(want) {
		t.Errorf("branch displacement should be PC-relative, got %v", out)
	}
}

func TestResolveDotInt(t *testing.T) {
	tbl := symtab.New()
	items := []layout.Item{{Mnemonic: ".int", Operands: []string{"42", "2"}, Pos: pos()}}
	out, err := Resolve(items, tbl, Options{EntryPoint: 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Operands[0] != "42" {
		t.Errorf("want .int 42, got %v", out)
	}
}

func itoaHelper(v int64) string {
	return dec(v)
}
