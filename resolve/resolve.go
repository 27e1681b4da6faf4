// Package resolve implements the second walk over the laid-out stream:
// substituting label references inside expressions now that every label
// has an address, lowering the mov/symbolic-load-store pseudo-ops into
// their final one- or two-instruction form, and turning branch targets
// into signed PC-relative displacements. This is the Go translation of
// the reference implementation's resolve_label.
package resolve

import (
	"fmt"

	"github.com/b-inary/gaia-software/diag"
	"github.com/b-inary/gaia-software/isa"
	"github.com/b-inary/gaia-software/layout"
	"github.com/b-inary/gaia-software/symtab"
)

// FinalOp is a fully-resolved base-ISA instruction or directive, ready for
// the encoder.
type FinalOp struct {
	Mnemonic string
	Operands []string
	Pos      diag.Pos
}

// Options mirrors layout.Options' mode selection; resolution must use the
// same entry point, start label, and library set layout used.
type Options struct {
	EntryPoint int64
	OneOp      bool
	StartLabel string
	Libraries  map[string]bool
}

var symbolicMemOps = map[string]bool{"ld": true, "ldb": true, "st": true, "stb": true}
var branchOps = map[string]bool{"jl": true, "bne": true, "bne-": true, "bne+": true, "beq": true, "beq-": true, "beq+": true}

// Resolve walks items in order, producing the final instruction stream.
func Resolve(items []layout.Item, tbl *symtab.Table, opt Options) ([]FinalOp, error) {
	var out []FinalOp
	addr := opt.EntryPoint

	exprOpt := func(pos diag.Pos) symtab.LookupOptions {
		return symtab.LookupOptions{File: pos.File, PCRelFrom: -1, Libraries: opt.Libraries, StartLabel: opt.StartLabel}
	}

	for _, it := range items {
		m, operands, pos := it.Mnemonic, it.Operands, it.Pos

		if m == "mov" {
			val, err := symtab.EvalExpr(operands[1], tbl, exprOpt(pos))
			if err != nil {
				return nil, attachPos(err, pos)
			}
			if val < -0x80000000 || val > 0xffffffff {
				if pos.File == "" {
					return nil, &diag.Error{Kind: diag.KindLabelOutOfRange, Message: fmt.Sprintf("address of start label is too large: %#x", val)}
				}
				return nil, &diag.Error{Kind: diag.KindLabelOutOfRange, Pos: pos, Message: fmt.Sprintf("expression value too large: %#x", val)}
			}
			if opt.OneOp {
				addr += 4
				out = append(out, FinalOp{Mnemonic: "ldl", Operands: []string{operands[0], dec(val)}, Pos: pos})
			} else {
				addr += 8
				out = append(out, FinalOp{Mnemonic: "ldl", Operands: []string{operands[0], dec(val & 0xffff)}, Pos: pos})
				out = append(out, FinalOp{Mnemonic: "ldh", Operands: []string{operands[0], operands[0], dec((val >> 16) & 0xffff)}, Pos: pos})
			}
			continue
		}

		if symbolicMemOps[m] && len(operands) == 2 {
			val, err := symtab.EvalExpr(operands[1], tbl, exprOpt(pos))
			if err != nil {
				return nil, attachPos(err, pos)
			}
			if val < -0x80000000 || val > 0xffffffff {
				return nil, &diag.Error{Kind: diag.KindLabelOutOfRange, Pos: pos, Message: fmt.Sprintf("expression value too large: %#x", val)}
			}
			if opt.OneOp {
				addr += 4
				out = append(out, FinalOp{Mnemonic: m, Operands: []string{operands[0], "r0", dec(val)}, Pos: pos})
			} else {
				addr += 8
				hi := ((val + 0x8000) >> 16) & 0xffff
				lo := ((val + 0x8000) & 0xffff) - 0x8000
				out = append(out, FinalOp{Mnemonic: "ldh", Operands: []string{"r29", "r0", dec(hi)}, Pos: pos})
				out = append(out, FinalOp{Mnemonic: m, Operands: []string{operands[0], "r29", dec(lo)}, Pos: pos})
			}
			continue
		}

		if branchOps[m] {
			if len(operands) < 2 || len(operands) > 3 {
				return nil, &diag.Error{Kind: diag.KindOperandCountError, Pos: pos, Message: fmt.Sprintf("expected 2 to 3 operands, but %d given", len(operands))}
			}
			last := len(operands) - 1
			disp, err := tbl.Resolve(operands[last], symtab.LookupOptions{
				File: pos.File, PCRelFrom: addr, Libraries: opt.Libraries, StartLabel: opt.StartLabel,
			})
			if err != nil {
				return nil, attachPos(err, pos)
			}
			operands = append([]string(nil), operands...)
			operands[last] = dec(disp)
		}

		switch m {
		case ".byte":
			addr += int64(len(operands))
		case ".int":
			val, err := symtab.EvalExpr(operands[0], tbl, exprOpt(pos))
			if err != nil {
				return nil, attachPos(err, pos)
			}
			if val < -0x80000000 || val > 0xffffffff {
				return nil, &diag.Error{Kind: diag.KindLabelOutOfRange, Pos: pos, Message: fmt.Sprintf("expression value too large: %#x", val)}
			}
			operands = append([]string(nil), operands...)
			operands[0] = dec(val)
			cnt, _ := isa.ParseInt(operands[1])
			addr += 4 * cnt
		case ".space":
			sz, _ := isa.ParseInt(operands[0])
			addr += sz
		default:
			addr += 4
		}

		out = append(out, FinalOp{Mnemonic: m, Operands: operands, Pos: pos})
	}
	return out, nil
}

func dec(v int64) string {
	return fmt.Sprintf("%d", v)
}

func attachPos(err error, pos diag.Pos) error {
	if de, ok := err.(*diag.Error); ok {
		if de.Pos == (diag.Pos{}) {
			de.Pos = pos
		}
		return de
	}
	return &diag.Error{Kind: diag.KindExprEvalError, Pos: pos, Message: err.Error()}
}
