// Package assemble wires the pipeline stages — source loading, lexing,
// macro expansion, layout, resolution, and encoding — into the single
// two-pass run the reference assembler's main process performs, so
// cmd/gaiasm stays a thin flag-parsing shell over this package.
package assemble

import (
	"fmt"
	"sort"

	"github.com/b-inary/gaia-software/diag"
	"github.com/b-inary/gaia-software/encode"
	"github.com/b-inary/gaia-software/expand"
	"github.com/b-inary/gaia-software/layout"
	"github.com/b-inary/gaia-software/resolve"
	"github.com/b-inary/gaia-software/source"
	"github.com/b-inary/gaia-software/symtab"
	"github.com/b-inary/gaia-software/token"
)

// Options gathers every setting that affects either pass of label
// resolution; it is the merge of config defaults and CLI overrides.
type Options struct {
	LibraryPaths []string
	InputPaths   []string
	EntryPoint   int64
	StartLabel   string
	JumpMain     bool
	OneOp        bool
	EndMarker    string // empty disables the -f end-of-program marker
	WarnScratch  bool
	WarnUnused   bool
}

// Warning is a non-fatal diagnostic surfaced alongside a successful build.
type Warning = diag.Warning

// Result is everything a caller needs to emit output or a listing.
type Result struct {
	Program  []byte
	Final    []resolve.FinalOp
	Symbols  *symtab.Table
	Cache    *source.Cache
	Warnings []*Warning
}

// Run executes the full pipeline once, end to end. A pipeline error
// aborts immediately and is returned as-is (a *diag.Error); the caller
// renders it with a diag.Formatter.
func Run(opt Options) (*Result, error) {
	src, err := source.Load(opt.LibraryPaths, opt.InputPaths)
	if err != nil {
		return nil, err
	}
	lines := src.Lines
	if opt.EndMarker != "" {
		lines = source.AppendEndMarker(lines, opt.EndMarker)
	}

	var warnings []*Warning

	items := make([]layout.Item, 0, len(lines))
	for _, ln := range lines {
		pos := diag.Pos{File: ln.File, Line: ln.Num}
		if ln.File == source.GeneratedFile {
			pos.File = ""
		}
		mnemonic, operands, err := token.Split(ln.Text)
		if err != nil {
			return nil, &diag.Error{Kind: diag.KindSyntaxError, Pos: pos, Message: err.Error()}
		}
		if mnemonic == "" {
			continue
		}
		ops, err := expand.Expand(mnemonic, operands)
		if err != nil {
			return nil, &diag.Error{Kind: diag.KindSyntaxError, Pos: pos, Message: err.Error()}
		}
		for _, o := range ops {
			if opt.WarnScratch && usesScratch(o.Operands) {
				warnings = append(warnings, &diag.Warning{Pos: pos, Message: "r29 is used"})
			}
			items = append(items, layout.Item{Mnemonic: o.Mnemonic, Operands: o.Operands, Pos: pos})
		}
	}

	libs := src.Libraries

	laid, err := layout.Layout(items, layout.Options{
		EntryPoint: opt.EntryPoint,
		JumpMain:   opt.JumpMain,
		OneOp:      opt.OneOp,
		StartLabel: opt.StartLabel,
		Libraries:  libs,
	})
	if err != nil {
		return nil, err
	}

	if err := validateGlobals(items, laid.Symbols); err != nil {
		return nil, err
	}

	final, err := resolve.Resolve(laid.Items, laid.Symbols, resolve.Options{
		EntryPoint: opt.EntryPoint,
		OneOp:      opt.OneOp,
		StartLabel: opt.StartLabel,
		Libraries:  libs,
	})
	if err != nil {
		return nil, err
	}

	if opt.WarnUnused {
		warnings = append(warnings, unusedLabelWarnings(items, laid.Symbols, libs)...)
	}

	program, err := encode.Program(final)
	if err != nil {
		return nil, err
	}

	return &Result{Program: program, Final: final, Symbols: laid.Symbols, Cache: src.Cache, Warnings: warnings}, nil
}

func usesScratch(operands []string) bool {
	for _, o := range operands {
		if o == "r29" {
			return true
		}
	}
	return false
}

// unusedLabelWarnings reports every label declaration that Resolve never
// marked used, matching the reference implementation's warn_unused_label
// pass over every mnemonic ending in ':' (and its exclusion of a library's
// own unused global export).
func unusedLabelWarnings(items []layout.Item, tbl *symtab.Table, libs map[string]bool) []*Warning {
	type decl struct {
		label string
		file  string
		pos   diag.Pos
	}
	var decls []decl
	for _, it := range items {
		if len(it.Mnemonic) > 0 && it.Mnemonic[len(it.Mnemonic)-1] == ':' {
			decls = append(decls, decl{label: it.Mnemonic[:len(it.Mnemonic)-1], file: it.Pos.File, pos: it.Pos})
		}
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].pos.Line < decls[j].pos.Line })
	var out []*Warning
	for _, d := range decls {
		if tbl.Unused(d.label, d.file, libs) {
			out = append(out, &diag.Warning{Pos: d.pos, Message: fmt.Sprintf("label '%s' is declared but not used", d.label)})
		}
	}
	return out
}

// validateGlobals checks that every ".global name" actually has a matching
// label declaration in the same file, matching the reference
// implementation's check_global.
func validateGlobals(items []layout.Item, tbl *symtab.Table) error {
	for _, it := range items {
		if it.Mnemonic != ".global" {
			continue
		}
		label := it.Operands[0]
		if !tbl.Declared(label, it.Pos.File) {
			return &diag.Error{Kind: diag.KindLabelNotDeclared, Pos: it.Pos, Message: fmt.Sprintf("label '%s' is not declared", label)}
		}
	}
	return nil
}
