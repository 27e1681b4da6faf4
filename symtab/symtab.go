// Package symtab holds the nested per-file label table the layout and
// resolution passes share, and the small arithmetic expression evaluator
// that substitutes label references inside "mov" targets, displacement
// expressions, and .int operands. The table shape follows spec.md §9's
// nested model (label -> file -> declaration) rather than the teacher's
// flat, single-file parser/symbols.go, because this instruction set's
// label visibility rules (own-file first, then unique global, with a
// library-file demotion) have no equivalent in the ARM emulator the
// teacher targets. The method-per-operation shape is kept from that file
// regardless; the types here are named Decl and Table.
package symtab

import (
	"fmt"
	"regexp"

	"github.com/b-inary/gaia-software/diag"
	"github.com/b-inary/gaia-software/isa"
)

// Decl is one file's declaration of a label: its address (or -1 if the
// file only references it, e.g. via a not-yet-defined .global), whether
// it was declared global from that file, and whether any reference has
// resolved to it yet.
type Decl struct {
	Address int64
	Global  bool
	Used    bool
}

// Table is the label -> file -> Decl map plus the reverse address -> label
// index used by listings.
type Table struct {
	labels  map[string]map[string]*Decl
	reverse map[int64][]string
}

func New() *Table {
	return &Table{
		labels:  make(map[string]map[string]*Decl),
		reverse: make(map[int64][]string),
	}
}

var forbiddenLabelChar = regexp.MustCompile(`[^\w.$!?]`)

func (t *Table) entry(label, file string) *Decl {
	m, ok := t.labels[label]
	if !ok {
		m = make(map[string]*Decl)
		t.labels[label] = m
	}
	d, ok := m[file]
	if !ok {
		d = &Decl{Address: -1}
		m[file] = d
	}
	return d
}

// ValidateLabelName rejects a register name, an integer literal, or a
// name using a character outside [A-Za-z0-9_.$!?].
func ValidateLabelName(label string) error {
	if isa.IsRegister(label) {
		return fmt.Errorf("'%s' is register name", label)
	}
	if _, ok := isa.ParseInt(label); ok {
		return fmt.Errorf("'%s' can be parsed as integer", label)
	}
	if m := forbiddenLabelChar.FindString(label); m != "" {
		return fmt.Errorf("label name cannot contain '%s' character", m)
	}
	return nil
}

// AddLabel records a label declaration at addr in file. It is an error to
// declare the same label twice in the same file.
func (t *Table) AddLabel(label, file string, addr int64) error {
	if err := ValidateLabelName(label); err != nil {
		return err
	}
	d := t.entry(label, file)
	if d.Address >= 0 {
		return fmt.Errorf("duplicate declaration of label '%s'", label)
	}
	d.Address = addr
	t.reverse[addr] = append(t.reverse[addr], label)
	return nil
}

// AddGlobal marks label as globally visible from file.
func (t *Table) AddGlobal(label, file string) {
	t.entry(label, file).Global = true
}

// Declared reports whether label has a recorded (address >= 0)
// declaration in file — used to validate a .global that names a label
// never actually defined in that file.
func (t *Table) Declared(label, file string) bool {
	m, ok := t.labels[label]
	if !ok {
		return false
	}
	d, ok := m[file]
	return ok && d.Address >= 0
}

// LabelsAt returns the labels declared at addr, for listings.
func (t *Table) LabelsAt(addr int64) []string {
	return t.reverse[addr]
}

// LookupOptions carries the context a label reference needs to resolve
// visibility: the referencing file, the optional PC-relative base (-1 for
// a non-PC-relative reference), the library file set, and the configured
// start label (whose absence is a fatal, not per-reference, error).
type LookupOptions struct {
	File        string
	PCRelFrom   int64
	Libraries   map[string]bool
	StartLabel  string
}

// Resolve returns the value of a label reference: own file first, else the
// unique global declaration (library declarations are dropped when a
// non-library one is also visible), marking the winning declaration used.
// If opt.PCRelFrom is -1 the raw address is returned (as in a .set's
// expression or an .int operand); otherwise the value returned is the byte
// displacement from a branch at that address (PCRelFrom+4).
func (t *Table) Resolve(label string, opt LookupOptions) (int64, error) {
	if v, ok := isa.ParseInt(label); ok {
		return v, nil
	}
	dic, ok := t.labels[label]
	if !ok {
		dic = map[string]*Decl{}
	}
	var candidates []string
	if _, ok := dic[opt.File]; ok {
		candidates = []string{opt.File}
	} else {
		for f, d := range dic {
			if d.Global {
				candidates = append(candidates, f)
			}
		}
	}
	if len(candidates) == 0 {
		if label == opt.StartLabel {
			return 0, &diag.Error{Kind: diag.KindMissingStartLabel, Message: fmt.Sprintf("global label '%s' is required", label)}
		}
		return 0, &diag.Error{Kind: diag.KindLabelNotDeclared, Message: fmt.Sprintf("label '%s' is not declared", label)}
	}
	if len(candidates) > 1 && !allLibrary(candidates, opt.Libraries) {
		candidates = withoutLibrary(candidates, opt.Libraries)
	}
	if len(candidates) > 1 {
		msg := fmt.Sprintf("label '%s' is declared in multiple files (%s)", label, joinSorted(candidates))
		if label == opt.StartLabel {
			return 0, &diag.Error{Kind: diag.KindMissingStartLabel, Message: msg}
		}
		return 0, &diag.Error{Kind: diag.KindLabelAmbiguous, Message: msg}
	}
	d := dic[candidates[0]]
	d.Used = true
	offset := int64(0)
	if opt.PCRelFrom >= 0 {
		offset = opt.PCRelFrom + 4
	}
	return d.Address - offset, nil
}

// Unused reports labels declared in file that were never marked used by
// Resolve and are not a library's own global declaration (a library is
// allowed to export symbols nothing in the same assembly happens to use,
// matching warn_unused_label's library exclusion).
func (t *Table) Unused(label, file string, libs map[string]bool) bool {
	m, ok := t.labels[label]
	if !ok {
		return false
	}
	d, ok := m[file]
	if !ok {
		return false
	}
	if d.Global && libs[file] {
		return false
	}
	return !d.Used
}

func allLibrary(files []string, libs map[string]bool) bool {
	for _, f := range files {
		if !libs[f] {
			return false
		}
	}
	return true
}

func withoutLibrary(files []string, libs map[string]bool) []string {
	var out []string
	for _, f := range files {
		if !libs[f] {
			out = append(out, f)
		}
	}
	return out
}

func joinSorted(files []string) string {
	cp := append([]string(nil), files...)
	for i := 1; i < len(cp); i++ {
		for j := i; j > 0 && cp[j-1] > cp[j]; j-- {
			cp[j-1], cp[j] = cp[j], cp[j-1]
		}
	}
	out := ""
	for i, f := range cp {
		if i > 0 {
			out += ", "
		}
		out += f
	}
	return out
}
