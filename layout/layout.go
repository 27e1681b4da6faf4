// Package layout implements the first of the two label-resolution walks
// over the macro-expanded instruction stream: it assigns a byte address
// to every emitted unit, populates the symbol table, and expands
// alignment directives into concrete .space padding. It is the Go
// translation of the reference implementation's init_label, restructured
// as an explicit pass over a slice rather than a generator closing over
// module globals (the reference threads filename/pos through Python
// module-level globals; here they travel as a diag.Pos on each Item).
package layout

import (
	"fmt"

	"github.com/b-inary/gaia-software/diag"
	"github.com/b-inary/gaia-software/isa"
	"github.com/b-inary/gaia-software/symtab"
)

func parseIntOperand(s string) (int64, bool) {
	return isa.ParseInt(s)
}

// Item is one entry of the macro-expanded stream: a base-ISA mnemonic, a
// directive, or a label declaration (mnemonic ending in ":").
type Item struct {
	Mnemonic string
	Operands []string
	Pos      diag.Pos
}

// Options configures one layout run. A caller that needs both one- and
// two-operation-mode output (e.g. to compare sizes) runs Layout twice,
// once per mode — spec.md treats this as two independent layout+resolve
// passes, never a fixed point.
type Options struct {
	EntryPoint int64
	JumpMain   bool
	OneOp      bool
	StartLabel string
	Libraries  map[string]bool
}

// ProgramSizeLimit is the maximum byte span (from EntryPoint to the final
// cursor) a laid-out program may occupy.
const ProgramSizeLimit = 0x400000

// Result is the layout pass's output: the enriched stream (alignment
// padding expanded to .space, everything else passed through), the
// populated symbol table, and the final address reached (one past the
// last emitted byte) — the latter is what a -f marker label points at.
type Result struct {
	Items    []Item
	Symbols  *symtab.Table
	FinalPC  int64
}

func isMemOp(mnemonic string, operandCount int) bool {
	switch mnemonic {
	case "ld", "ldb", "st", "stb":
		return operandCount == 2
	default:
		return false
	}
}

// Layout walks stream once, in order.
func Layout(stream []Item, opt Options) (*Result, error) {
	tbl := symtab.New()
	var out []Item

	if opt.JumpMain {
		gen := diag.Pos{File: "", Line: 0}
		out = append(out,
			Item{Mnemonic: "mov", Operands: []string{"r29", opt.StartLabel}, Pos: gen},
			Item{Mnemonic: "jr", Operands: []string{"r29"}, Pos: gen},
		)
	}
	addr := opt.EntryPoint
	if opt.JumpMain {
		if opt.OneOp {
			addr += 8
		} else {
			addr += 12
		}
	}

	for _, it := range stream {
		m, operands, pos := it.Mnemonic, it.Operands, it.Pos
		switch {
		case len(m) > 0 && m[len(m)-1] == ':':
			if len(operands) > 0 {
				return nil, &diag.Error{Kind: diag.KindSyntaxError, Pos: pos, Message: "label declaration must be followed by new line"}
			}
			if err := tbl.AddLabel(m[:len(m)-1], pos.File, addr); err != nil {
				return nil, wrapLabelErr(err, pos)
			}
		case m == ".align":
			if err := requireN(operands, 1, pos); err != nil {
				return nil, err
			}
			imm, ok := parseIntOperand(operands[0])
			if !ok {
				return nil, &diag.Error{Kind: diag.KindParseError, Pos: pos, Message: "expected integer literal: " + operands[0]}
			}
			if imm < 4 || imm&(imm-1) != 0 {
				return nil, &diag.Error{Kind: diag.KindImmediateRangeError, Pos: pos, Message: "alignment must be a power of 2 which is not less than 4"}
			}
			padding := imm - (addr & (imm - 1))
			if padding < imm {
				addr += padding
				out = append(out, Item{Mnemonic: ".space", Operands: []string{itoa(padding), "0"}, Pos: pos})
			}
		case m == ".byte":
			addr += int64(len(operands))
			out = append(out, it)
		case m == ".global":
			if err := requireN(operands, 1, pos); err != nil {
				return nil, err
			}
			tbl.AddGlobal(operands[0], pos.File)
		case m == ".int":
			if err := requireN(operands, 2, pos); err != nil {
				return nil, err
			}
			cnt, ok := parseIntOperand(operands[1])
			if !ok {
				return nil, &diag.Error{Kind: diag.KindParseError, Pos: pos, Message: "expected integer literal: " + operands[1]}
			}
			addr += 4 * cnt
			out = append(out, it)
		case m == ".set":
			if err := requireN(operands, 2, pos); err != nil {
				return nil, err
			}
			v, err := symtab.EvalExpr(operands[1], tbl, symtab.LookupOptions{
				File: pos.File, PCRelFrom: -1, Libraries: opt.Libraries, StartLabel: opt.StartLabel,
			})
			if err != nil {
				return nil, attachPos(err, pos)
			}
			if err := tbl.AddLabel(operands[0], pos.File, v); err != nil {
				return nil, wrapLabelErr(err, pos)
			}
		case m == ".space":
			if err := requireN(operands, 2, pos); err != nil {
				return nil, err
			}
			sz, ok := parseIntOperand(operands[0])
			if !ok {
				return nil, &diag.Error{Kind: diag.KindParseError, Pos: pos, Message: "expected integer literal: " + operands[0]}
			}
			addr += sz
			out = append(out, it)
		default:
			if addr&3 != 0 {
				return nil, &diag.Error{Kind: diag.KindDisplacementAlignmentError, Pos: pos, Message: "instruction must be aligned on 4-byte boundaries"}
			}
			if m == "mov" || isMemOp(m, len(operands)) {
				if opt.OneOp {
					addr += 4
				} else {
					addr += 8
				}
			} else {
				addr += 4
			}
			out = append(out, it)
		}
	}

	if addr-opt.EntryPoint > ProgramSizeLimit {
		return nil, &diag.Error{Kind: diag.KindProgramTooLarge, Message: fmt.Sprintf("program size exceeds 4MB limit (%d bytes)", addr-opt.EntryPoint)}
	}
	return &Result{Items: out, Symbols: tbl, FinalPC: addr}, nil
}

func requireN(operands []string, n int, pos diag.Pos) error {
	if len(operands) != n {
		return &diag.Error{Kind: diag.KindOperandCountError, Pos: pos, Message: fmt.Sprintf("expected %d operands, but %d given", n, len(operands))}
	}
	return nil
}

func wrapLabelErr(err error, pos diag.Pos) error {
	kind := diag.KindDuplicateLabel
	msg := err.Error()
	if len(msg) > 0 && (msg[0] == '\'' || containsAny(msg, "register name", "can be parsed as integer", "cannot contain")) {
		kind = diag.KindInvalidLabelName
	}
	return &diag.Error{Kind: kind, Pos: pos, Message: msg}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if indexOf(s, sub) >= 0 {
			return true
		}
	}
	return false
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func attachPos(err error, pos diag.Pos) error {
	if de, ok := err.(*diag.Error); ok {
		de.Pos = pos
		return de
	}
	return &diag.Error{Kind: diag.KindExprEvalError, Pos: pos, Message: err.Error()}
}

func itoa(v int64) string {
	return fmt.Sprintf("%d", v)
}
