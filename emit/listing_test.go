package emit

import (
	"strings"
	"testing"

	"github.com/b-inary/gaia-software/diag"
	"github.com/b-inary/gaia-software/resolve"
	"github.com/b-inary/gaia-software/symtab"
)

func TestListingAnnotatesLabelsAndFiles(t *testing.T) {
	tbl := symtab.New()
	if err := tbl.AddLabel("main", "a.s", 0x2000); err != nil {
		t.Fatal(err)
	}

	items := []resolve.FinalOp{
		{Mnemonic: "add", Operands: []string{"r1", "r2", "r3", "0"}, Pos: diag.Pos{File: "a.s", Line: 1}},
		{Mnemonic: "halt", Operands: nil, Pos: diag.Pos{File: "a.s", Line: 2}},
	}

	out, err := Listing(items, tbl, ListingOptions{EntryPoint: 0x2000})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "# file: a.s") {
		t.Errorf("expected file header, got %q", out)
	}
	if !strings.Contains(out, "main") {
		t.Errorf("expected label annotation at entry address, got %q", out)
	}
	if !strings.Contains(out, "0x002000") {
		t.Errorf("expected formatted address, got %q", out)
	}
}

func TestListingVerboseIncludesEncodedWord(t *testing.T) {
	tbl := symtab.New()
	items := []resolve.FinalOp{
		{Mnemonic: "add", Operands: []string{"r1", "r2", "r3", "0"}, Pos: diag.Pos{File: "a.s", Line: 1}},
	}
	out, err := Listing(items, tbl, ListingOptions{EntryPoint: 0x2000, Verbose: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "[") || !strings.Contains(out, "]") {
		t.Errorf("expected bracketed encoded word in verbose listing, got %q", out)
	}
}
