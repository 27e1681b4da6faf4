// Package encode lowers a fully-resolved instruction or directive into its
// 4-byte-aligned binary form. It is the direct translation of the
// reference implementation's code/code_i/code_f/code_m family, restructured
// to return ([]byte, error) instead of building Python byte-strings with a
// global error() call.
package encode

import (
	"fmt"
	"strings"

	"github.com/b-inary/gaia-software/diag"
	"github.com/b-inary/gaia-software/isa"
	"github.com/b-inary/gaia-software/resolve"
)

func regnum(name string, pos diag.Pos) (uint8, error) {
	n, ok := isa.RegisterNumber(name)
	if !ok {
		return 0, &diag.Error{Kind: diag.KindSyntaxError, Pos: pos, Message: "expected register name: " + name}
	}
	return n, nil
}

func codeI(op uint8, rx, ra, rb, imm string, tag uint8, pos diag.Pos) ([]byte, error) {
	x, err := regnum(rx, pos)
	if err != nil {
		return nil, err
	}
	a, err := regnum(ra, pos)
	if err != nil {
		return nil, err
	}
	b, err := regnum(rb, pos)
	if err != nil {
		return nil, err
	}
	i, ok := isa.ParseInt(imm)
	if !ok {
		return nil, &diag.Error{Kind: diag.KindParseError, Pos: pos, Message: "expected integer literal: " + imm}
	}
	if !isa.FitsSigned(i, 8) {
		return nil, &diag.Error{Kind: diag.KindImmediateRangeError, Pos: pos, Message: "immediate value too large: " + imm}
	}
	c0 := byte(((i & 7) << 5)) + tag
	c1 := byte((uint8(b)&7)<<5) + byte((i>>3)&31)
	c2 := ((x & 1) << 7) + (a << 2) + (b >> 3)
	c3 := (op << 4) + (x >> 1)
	return []byte{c0, c1, c2, c3}, nil
}

func codeF(rx, ra, rb string, sign, tag uint8, pos diag.Pos) ([]byte, error) {
	x, err := regnum(rx, pos)
	if err != nil {
		return nil, err
	}
	a, err := regnum(ra, pos)
	if err != nil {
		return nil, err
	}
	b, err := regnum(rb, pos)
	if err != nil {
		return nil, err
	}
	c0 := (sign << 5) + tag
	c1 := (b & 7) << 5
	c2 := ((x & 1) << 7) + (a << 2) + (b >> 3)
	c3 := (1 << 4) + (x >> 1)
	return []byte{c0, c1, c2, c3}, nil
}

func codeM(op uint8, rx, ra string, pred uint8, disp string, dispMode int, pos diag.Pos) ([]byte, error) {
	x, err := regnum(rx, pos)
	if err != nil {
		return nil, err
	}
	a, err := regnum(ra, pos)
	if err != nil {
		return nil, err
	}
	d, ok := isa.ParseInt(disp)
	if !ok {
		return nil, &diag.Error{Kind: diag.KindParseError, Pos: pos, Message: "expected displacement: " + disp}
	}
	switch dispMode {
	case 0:
		if d < -0x8000 || d > 0xffff {
			return nil, &diag.Error{Kind: diag.KindImmediateRangeError, Pos: pos, Message: "immediate value too large: " + disp}
		}
	case 1:
		if !isa.FitsSigned(d, 16) {
			return nil, &diag.Error{Kind: diag.KindDisplacementAlignmentError, Pos: pos, Message: "displacement too large: " + disp}
		}
	default:
		if d&3 != 0 {
			return nil, &diag.Error{Kind: diag.KindDisplacementAlignmentError, Pos: pos, Message: "displacement must be a multiple of 4"}
		}
		if !isa.FitsSigned(d, 18) {
			return nil, &diag.Error{Kind: diag.KindDisplacementAlignmentError, Pos: pos, Message: "displacement too large: " + disp}
		}
		d >>= 2
	}
	c0 := byte(d & 255)
	c1 := byte((d >> 8) & 255)
	c2 := ((x & 1) << 7) + (a << 2) + pred
	c3 := (op << 4) + (x >> 1)
	return []byte{c0, c1, c2, c3}, nil
}

func requireN(operands []string, pos diag.Pos, ns ...int) error {
	for _, n := range ns {
		if len(operands) == n {
			return nil
		}
	}
	want := fmt.Sprintf("%d", ns[0])
	for _, n := range ns[1:] {
		want += fmt.Sprintf(" to %d", n)
	}
	return &diag.Error{Kind: diag.KindOperandCountError, Pos: pos, Message: fmt.Sprintf("expected %s operands, but %d given", want, len(operands))}
}

var branchPred = map[string]uint8{"jl": 3, "jr": 3, "bne+": 3, "beq+": 3}

// Instruction encodes a single base-ISA instruction word (4 bytes) or a
// data directive's bytes. Branch suffix variants (bne-/bne+, beq-/beq+)
// collapse to their base mnemonic here, after contributing a predict bit.
func Instruction(mnemonic string, operands []string, pos diag.Pos) ([]byte, error) {
	if tag, ok := alu3Table[mnemonic]; ok {
		if err := requireN(operands, pos, 3); err != nil {
			return nil, err
		}
		return codeI(0, operands[0], operands[1], operands[2], "0", tag, pos)
	}
	if tag, ok := alu4Table[mnemonic]; ok {
		if err := requireN(operands, pos, 4); err != nil {
			return nil, err
		}
		return codeI(0, operands[0], operands[1], operands[2], operands[3], tag, pos)
	}

	fpuMnemonic, fpuSuffix := mnemonic, ""
	if idx := strings.IndexByte(mnemonic, '.'); idx >= 0 {
		fpuMnemonic, fpuSuffix = mnemonic[:idx], mnemonic[idx+1:]
	}
	if tag, ok := fpu2Table[fpuMnemonic]; ok {
		if err := requireN(operands, pos, 2); err != nil {
			return nil, err
		}
		sign, ok := signTable[fpuSuffix]
		if !ok {
			return nil, &diag.Error{Kind: diag.KindUnknownMnemonic, Pos: pos, Message: "unknown sign suffix: " + fpuSuffix}
		}
		return codeF(operands[0], operands[1], "r0", sign, tag, pos)
	}
	if tag, ok := fpu3Table[fpuMnemonic]; ok {
		if err := requireN(operands, pos, 3); err != nil {
			return nil, err
		}
		sign, ok := signTable[fpuSuffix]
		if !ok {
			return nil, &diag.Error{Kind: diag.KindUnknownMnemonic, Pos: pos, Message: "unknown sign suffix: " + fpuSuffix}
		}
		return codeF(operands[0], operands[1], operands[2], sign, tag, pos)
	}

	pred := branchPred[mnemonic]
	dispMode := 2
	switch mnemonic {
	case "ldl", "ldh":
		dispMode = 0
	case "ldb", "stb":
		dispMode = 1
	}
	switch mnemonic {
	case "bne-", "bne+":
		mnemonic = "bne"
	case "beq-", "beq+":
		mnemonic = "beq"
	}

	if op, ok := misc0Table[mnemonic]; ok {
		if err := requireN(operands, pos, 0); err != nil {
			return nil, err
		}
		return codeM(op, "r0", "r0", pred, "0", dispMode, pos)
	}
	if op, ok := misc1Table[mnemonic]; ok {
		if err := requireN(operands, pos, 1); err != nil {
			return nil, err
		}
		return codeM(op, operands[0], "r0", pred, "0", dispMode, pos)
	}
	if op, ok := misc2Table[mnemonic]; ok {
		if err := requireN(operands, pos, 2); err != nil {
			return nil, err
		}
		return codeM(op, operands[0], "r0", pred, operands[1], dispMode, pos)
	}
	if op, ok := misc3Table[mnemonic]; ok {
		if err := requireN(operands, pos, 3); err != nil {
			return nil, err
		}
		return codeM(op, operands[0], operands[1], pred, operands[2], dispMode, pos)
	}
	if tag, ok := debugTable[mnemonic]; ok {
		if err := requireN(operands, pos, 1); err != nil {
			return nil, err
		}
		return codeI(10, "r0", "r0", "r0", operands[0], tag, pos)
	}

	switch mnemonic {
	case ".int":
		return dotInt(operands, pos)
	case ".byte":
		return dotByte(operands, pos)
	case ".space":
		return dotSpace(operands, pos)
	}
	return nil, &diag.Error{Kind: diag.KindUnknownMnemonic, Pos: pos, Message: fmt.Sprintf("unknown mnemonic '%s'", mnemonic)}
}

func dotInt(operands []string, pos diag.Pos) ([]byte, error) {
	if err := requireN(operands, pos, 2); err != nil {
		return nil, err
	}
	imm, ok := isa.ParseInt(operands[0])
	if !ok {
		return nil, &diag.Error{Kind: diag.KindParseError, Pos: pos, Message: "expected integer literal: " + operands[0]}
	}
	if imm < -0x80000000 || imm > 0xffffffff {
		return nil, &diag.Error{Kind: diag.KindImmediateRangeError, Pos: pos, Message: "immediate value too large: " + operands[0]}
	}
	cnt, ok := isa.ParseInt(operands[1])
	if !ok {
		return nil, &diag.Error{Kind: diag.KindParseError, Pos: pos, Message: "expected integer literal: " + operands[1]}
	}
	word := []byte{byte(imm), byte(imm >> 8), byte(imm >> 16), byte(imm >> 24)}
	out := make([]byte, 0, 4*cnt)
	for i := int64(0); i < cnt; i++ {
		out = append(out, word...)
	}
	return out, nil
}

func dotByte(operands []string, pos diag.Pos) ([]byte, error) {
	out := make([]byte, 0, len(operands))
	for _, operand := range operands {
		imm, ok := isa.ParseInt(operand)
		if !ok {
			return nil, &diag.Error{Kind: diag.KindParseError, Pos: pos, Message: "expected integer literal: " + operand}
		}
		if imm < -128 || imm > 255 {
			return nil, &diag.Error{Kind: diag.KindImmediateRangeError, Pos: pos, Message: "immediate value too large: " + operand}
		}
		out = append(out, byte(imm))
	}
	return out, nil
}

func dotSpace(operands []string, pos diag.Pos) ([]byte, error) {
	if err := requireN(operands, pos, 2); err != nil {
		return nil, err
	}
	size, ok := isa.ParseInt(operands[0])
	if !ok {
		return nil, &diag.Error{Kind: diag.KindParseError, Pos: pos, Message: "expected integer literal: " + operands[0]}
	}
	imm, ok := isa.ParseInt(operands[1])
	if !ok {
		return nil, &diag.Error{Kind: diag.KindParseError, Pos: pos, Message: "expected integer literal: " + operands[1]}
	}
	if imm < -128 || imm > 255 {
		return nil, &diag.Error{Kind: diag.KindImmediateRangeError, Pos: pos, Message: "immediate value too large: " + operands[1]}
	}
	out := make([]byte, size)
	for i := range out {
		out[i] = byte(imm)
	}
	return out, nil
}

// Program encodes an entire resolved stream, concatenating every item's
// bytes in order.
func Program(items []resolve.FinalOp) ([]byte, error) {
	var out []byte
	for _, it := range items {
		b, err := Instruction(it.Mnemonic, it.Operands, it.Pos)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}
