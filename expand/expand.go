// Package expand rewrites one surface-syntax line into zero or more base
// instruction-set tuples. It is a pure function of (mnemonic, operands):
// it never consults a symbol table and never knows the current address,
// exactly the contract spec.md's macro expander states. It is grounded on
// the reference implementation's macro_table / expand_macro functions
// (asm.py), translated statement-for-statement rather than on the
// teacher's parser/macros.go, which models a fundamentally different
// thing — user-definable parameterized macros rather than a fixed
// pseudo-op table.
package expand

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/b-inary/gaia-software/isa"
)

// Op is one base-ISA (or still-to-be-lowered pseudo, or directive) tuple
// produced by expansion.
type Op struct {
	Mnemonic string
	Operands []string
}

func op(mnemonic string, operands ...string) Op {
	return Op{Mnemonic: mnemonic, Operands: append([]string(nil), operands...)}
}

func i64(v int64) string { return strconv.FormatInt(v, 10) }

func requireOperands(operands []string, min, max int) error {
	if max < 0 {
		max = min
	}
	n := len(operands)
	if n < min {
		return fmt.Errorf("expected %d operands, but %d given", min, n)
	}
	if n > max {
		return fmt.Errorf("expected %d operands, but %d given", max, n)
	}
	return nil
}

var genericALU = map[string]bool{
	"add": true, "sub": true, "shl": true, "shr": true, "sar": true,
	"or": true, "xor": true, "cmpne": true, "cmpeq": true, "cmplt": true, "cmple": true,
}

// Expand dispatches mnemonic to the first rule that matches it: exact
// macro name, then the generic ALU list, then suffix-stripped branch
// synthesis, then pass-through.
func Expand(mnemonic string, operands []string) ([]Op, error) {
	switch mnemonic {
	case "nop":
		return expandNop(operands)
	case "mov":
		return expandMov(operands)
	case "movb":
		return expandMovb(operands)
	case "and":
		return expandAnd(operands)
	case "neg":
		return expandNeg(operands)
	case "not":
		return expandNot(operands)
	case "sextb":
		return expandSextb(operands)
	case "sextw":
		return expandSextw(operands)
	case "zextb":
		return expandZextb(operands)
	case "zextw":
		return expandZextw(operands)
	case "cmpgt":
		return expandCmpgt(operands)
	case "cmpge":
		return expandCmpge(operands)
	case "fcmpgt":
		return expandFcmpgt(operands)
	case "fcmpge":
		return expandFcmpge(operands)
	case "read":
		return expandRead(operands)
	case "write":
		return expandWrite(operands)
	case "br":
		return expandBr(operands)
	case "push":
		return expandPush(operands)
	case "pop":
		return expandPop(operands)
	case "call":
		return expandCall(operands)
	case "ret":
		return expandRet(operands)
	case "enter":
		return expandEnter(operands)
	case "leave":
		return expandLeave(operands)
	case "halt":
		return expandHalt(operands)
	case ".int":
		return expandDotInt(operands)
	case ".float":
		return expandDotFloat(operands)
	case ".space":
		return expandDotSpace(operands)
	case ".string":
		return expandDotString(operands)
	}
	if genericALU[mnemonic] {
		return expandALU(mnemonic, operands)
	}
	if base, pred, ok := splitBranchSuffix(mnemonic); ok {
		switch base {
		case "bz":
			return expandBz(operands, pred)
		case "bnz":
			return expandBnz(operands, pred)
		case "bne", "beq":
			return expandBne(base, operands, pred)
		case "blt", "ble", "bgt", "bge":
			return expandBlt(base, operands, pred)
		case "bfne", "bfeq", "bflt", "bfle", "bfgt", "bfge":
			return expandBfne(base, operands, pred)
		}
	}
	return []Op{op(mnemonic, operands...)}, nil
}

// splitBranchSuffix strips a trailing '+' or '-' predictor hint, mirroring
// the reference regex `(\w+)([+-]?)$`.
func splitBranchSuffix(mnemonic string) (base string, pred string, ok bool) {
	if mnemonic == "" {
		return "", "", false
	}
	last := mnemonic[len(mnemonic)-1]
	if last == '+' || last == '-' {
		base = mnemonic[:len(mnemonic)-1]
		pred = string(last)
	} else {
		base = mnemonic
		pred = ""
	}
	if base == "" {
		return "", "", false
	}
	for _, r := range base {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return "", "", false
		}
	}
	return base, pred, true
}

func expandNop(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 0, -1); err != nil {
		return nil, err
	}
	return []Op{op("add", "r0", "r0", "r0", "0")}, nil
}

// movImm lowers a constant load into one or two instructions depending on
// whether it fits the 16-bit immediate of ldl alone.
func movImm(dest string, imm int64) ([]Op, error) {
	if isa.FitsSigned(imm, 16) {
		return []Op{op("ldl", dest, i64(imm))}, nil
	}
	if imm < -0x80000000 || imm > 0xffffffff {
		return nil, fmt.Errorf("immediate value too large: %#x", imm)
	}
	if imm&0xffff == 0 {
		return []Op{op("ldh", dest, "r0", i64((imm>>16)&0xffff))}, nil
	}
	return []Op{
		op("ldl", dest, i64(imm&0xffff)),
		op("ldh", dest, dest, i64((imm>>16)&0xffff)),
	}, nil
}

func isMemOperand(s string) bool {
	return len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']'
}

func expandMov(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 2, -1); err != nil {
		return nil, err
	}
	dst, src := operands[0], operands[1]
	if isa.IsRegister(dst) && isa.IsRegister(src) {
		return []Op{op("add", dst, src, "r0", "0")}, nil
	}
	if isMemOperand(src) {
		ok, base, disp := parseMemAccess(src)
		if !ok {
			return []Op{op("ld", dst, strings.TrimSpace(src[1:len(src)-1]))}, nil
		}
		if isa.FitsSigned(disp, 18) {
			return []Op{op("ld", dst, base, i64(disp))}, nil
		}
		hi := disp & ^int64(0xffff)
		lo := disp & 0xffff
		pre, err := movImm("r29", hi)
		if err != nil {
			return nil, err
		}
		if base == "r0" {
			return append(pre, op("ld", dst, "r29", i64(lo))), nil
		}
		return append(append(pre, op("add", "r29", base, "r29", "0")), op("ld", dst, "r29", i64(lo))), nil
	}
	if isMemOperand(dst) {
		ok, base, disp := parseMemAccess(dst)
		if !ok {
			return []Op{op("st", src, strings.TrimSpace(dst[1:len(dst)-1]))}, nil
		}
		if isa.FitsSigned(disp, 18) {
			var pre []Op
			d := src
			if !isa.IsRegister(src) {
				d = "r29"
				var err error
				pre, err = expandMov([]string{"r29", src})
				if err != nil {
					return nil, err
				}
			}
			return append(pre, op("st", d, base, i64(disp))), nil
		}
		hi := disp & ^int64(0xffff)
		lo := disp & 0xffff
		pre, err := movImm("r29", hi)
		if err != nil {
			return nil, err
		}
		if base == "r0" {
			return append(pre, op("st", src, "r29", i64(lo))), nil
		}
		return append(append(pre, op("add", "r29", base, "r29", "0")), op("st", src, "r29", i64(lo))), nil
	}
	if v, ok := isa.ParseInt(src); ok {
		return movImm(dst, v)
	}
	if f, ok := isa.ParseFloat(src); ok {
		return movImm(dst, int64(floatToBits(f)))
	}
	if isa.IsRegister(dst) {
		return []Op{op("mov", operands...)}, nil
	}
	return nil, fmt.Errorf("invalid syntax")
}

func expandMovb(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 2, -1); err != nil {
		return nil, err
	}
	dst, src := operands[0], operands[1]
	if isMemOperand(src) {
		ok, base, disp := parseMemAccess(src)
		if !ok {
			return []Op{op("ldb", dst, strings.TrimSpace(src[1:len(src)-1]))}, nil
		}
		if isa.FitsSigned(disp, 16) {
			return []Op{op("ldb", dst, base, i64(disp))}, nil
		}
		hi := (disp + 0x8000) & ^int64(0xffff)
		lo := ((disp + 0x8000) & 0xffff) - 0x8000
		pre, err := movImm("r29", hi)
		if err != nil {
			return nil, err
		}
		if base == "r0" {
			return append(pre, op("ldb", dst, "r29", i64(lo))), nil
		}
		return append(append(pre, op("add", "r29", base, "r29", "0")), op("ldb", dst, "r29", i64(lo))), nil
	}
	if isMemOperand(dst) {
		ok, base, disp := parseMemAccess(dst)
		if !ok {
			return []Op{op("stb", src, strings.TrimSpace(dst[1:len(dst)-1]))}, nil
		}
		if isa.FitsSigned(disp, 16) {
			var pre []Op
			d := src
			if !isa.IsRegister(src) {
				d = "r29"
				var err error
				pre, err = expandMov([]string{"r29", src})
				if err != nil {
					return nil, err
				}
			}
			return append(pre, op("stb", d, base, i64(disp))), nil
		}
		hi := (disp + 0x8000) & ^int64(0xffff)
		lo := ((disp + 0x8000) & 0xffff) - 0x8000
		pre, err := movImm("r29", hi)
		if err != nil {
			return nil, err
		}
		if base == "r0" {
			return append(pre, op("stb", src, "r29", i64(lo))), nil
		}
		return append(append(pre, op("add", "r29", base, "r29", "0")), op("stb", src, "r29", i64(lo))), nil
	}
	return nil, fmt.Errorf("movb only supports move between register and memory")
}

// expandALU implements the shared 3/4-operand lowering for add, sub, shl,
// shr, sar, or, xor, cmpne, cmpeq, cmplt, cmple.
func expandALU(mnemonic string, operands []string) ([]Op, error) {
	if err := requireOperands(operands, 3, 4); err != nil {
		return nil, err
	}
	if len(operands) == 4 {
		return []Op{op(mnemonic, operands...)}, nil
	}
	if isa.IsRegister(operands[2]) {
		return []Op{op(mnemonic, operands[0], operands[1], operands[2], "0")}, nil
	}
	imm, ok := isa.ParseInt(operands[2])
	if !ok {
		return nil, fmt.Errorf("expected register or immediate value: %s", operands[2])
	}
	if isa.FitsSigned(imm, 8) {
		return []Op{op(mnemonic, operands[0], operands[1], "r0", operands[2])}, nil
	}
	pre, err := movImm("r29", imm)
	if err != nil {
		return nil, err
	}
	return append(pre, op(mnemonic, operands[0], operands[1], "r29", "0")), nil
}

func expandAnd(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 3, 4); err != nil {
		return nil, err
	}
	if len(operands) == 4 {
		return []Op{op("and", operands...)}, nil
	}
	if isa.IsRegister(operands[2]) {
		return []Op{op("and", operands[0], operands[1], operands[2], "-1")}, nil
	}
	imm, ok := isa.ParseInt(operands[2])
	if !ok {
		return nil, fmt.Errorf("expected register or immediate value: %s", operands[2])
	}
	if isa.FitsSigned(imm, 8) {
		return []Op{op("and", operands[0], operands[1], operands[1], operands[2])}, nil
	}
	pre, err := movImm("r29", imm)
	if err != nil {
		return nil, err
	}
	return append(pre, op("and", operands[0], operands[1], "r29", "-1")), nil
}

func expandNeg(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 2, -1); err != nil {
		return nil, err
	}
	return []Op{op("sub", operands[0], "r0", operands[1], "0")}, nil
}

func expandNot(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 2, -1); err != nil {
		return nil, err
	}
	return []Op{op("xor", operands[0], operands[1], "r0", "-1")}, nil
}

func expandSextb(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 2, -1); err != nil {
		return nil, err
	}
	return []Op{
		op("shl", "r29", operands[1], "r0", "24"),
		op("sar", operands[0], "r29", "r0", "24"),
	}, nil
}

func expandSextw(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 2, -1); err != nil {
		return nil, err
	}
	return []Op{
		op("shl", "r29", operands[1], "r0", "16"),
		op("sar", operands[0], "r29", "r0", "16"),
	}, nil
}

func expandZextb(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 2, -1); err != nil {
		return nil, err
	}
	return []Op{
		op("shl", "r29", operands[1], "r0", "24"),
		op("shr", operands[0], "r29", "r0", "24"),
	}, nil
}

func expandZextw(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 2, -1); err != nil {
		return nil, err
	}
	return []Op{op("ldh", operands[0], operands[1], "0")}, nil
}

func expandCmpgt(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 3, -1); err != nil {
		return nil, err
	}
	if isa.IsRegister(operands[2]) {
		return []Op{op("cmplt", operands[0], operands[2], operands[1], "0")}, nil
	}
	imm, ok := isa.ParseInt(operands[2])
	if !ok {
		return nil, fmt.Errorf("expected register or immediate value: %s", operands[2])
	}
	pre, err := movImm("r29", imm)
	if err != nil {
		return nil, err
	}
	return append(pre, op("cmplt", operands[0], "r29", operands[1], "0")), nil
}

func expandCmpge(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 3, -1); err != nil {
		return nil, err
	}
	if isa.IsRegister(operands[2]) {
		return []Op{op("cmple", operands[0], operands[2], operands[1], "0")}, nil
	}
	imm, ok := isa.ParseInt(operands[2])
	if !ok {
		return nil, fmt.Errorf("expected register or immediate value: %s", operands[2])
	}
	pre, err := movImm("r29", imm)
	if err != nil {
		return nil, err
	}
	return append(pre, op("cmple", operands[0], "r29", operands[1], "0")), nil
}

func expandFcmpgt(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 3, -1); err != nil {
		return nil, err
	}
	return []Op{op("fcmplt", operands[0], operands[2], operands[1])}, nil
}

func expandFcmpge(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 3, -1); err != nil {
		return nil, err
	}
	return []Op{op("fcmple", operands[0], operands[2], operands[1])}, nil
}

// mmioStatusHi/mmioDataLo address the single MMIO word at 0x80001000 used
// by read/write (ldh r29 with the high half, then a 0x1000 displacement).
// read reloads that word until its value is non-negative; write stores to
// it without polling.
const (
	mmioStatusHi = "0x8000"
	mmioDataLo   = "0x1000"
)

func expandRead(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 1, -1); err != nil {
		return nil, err
	}
	return []Op{
		op("ldh", "r29", "r0", mmioStatusHi),
		op("ld", operands[0], "r29", mmioDataLo),
		op("cmplt", "r29", operands[0], "r0", "0"),
		op("bne", "r29", "r0", "-16"),
	}, nil
}

func expandWrite(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 1, 2); err != nil {
		return nil, err
	}
	if len(operands) == 1 {
		return []Op{
			op("ldh", "r29", "r0", mmioStatusHi),
			op("st", operands[0], "r29", mmioDataLo),
		}, nil
	}
	s, err := unquoteString(operands[1])
	if err != nil {
		return nil, err
	}
	ops := []Op{op("ldh", "r29", "r0", mmioStatusHi)}
	for _, c := range []byte(s) {
		pre, err := movImm(operands[0], int64(c))
		if err != nil {
			return nil, err
		}
		ops = append(ops, pre...)
		ops = append(ops, op("st", operands[0], "r29", mmioDataLo))
	}
	return ops, nil
}

func expandBr(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 1, -1); err != nil {
		return nil, err
	}
	return []Op{op("jl", "r29", operands[0])}, nil
}

func expandBz(operands []string, pred string) ([]Op, error) {
	if err := requireOperands(operands, 2, -1); err != nil {
		return nil, err
	}
	return []Op{op("beq"+pred, operands[0], "r0", operands[1])}, nil
}

func expandBnz(operands []string, pred string) ([]Op, error) {
	if err := requireOperands(operands, 2, -1); err != nil {
		return nil, err
	}
	return []Op{op("bne"+pred, operands[0], "r0", operands[1])}, nil
}

func expandBne(base string, operands []string, pred string) ([]Op, error) {
	if err := requireOperands(operands, 3, -1); err != nil {
		return nil, err
	}
	if imm, ok := isa.ParseInt(operands[1]); ok {
		pre, err := movImm("r29", imm)
		if err != nil {
			return nil, err
		}
		return append(pre, op(base+pred, operands[0], "r29", operands[2])), nil
	}
	return []Op{op(base+pred, operands...)}, nil
}

func expandBlt(base string, operands []string, pred string) ([]Op, error) {
	if err := requireOperands(operands, 3, -1); err != nil {
		return nil, err
	}
	var branch, cmp string
	switch base {
	case "bgt":
		branch, cmp = "beq", "cmple"
	case "bge":
		branch, cmp = "beq", "cmplt"
	default:
		branch, cmp = "bne", "cmp"+base[1:]
	}
	pre, err := expandALU(cmp, []string{"r29", operands[0], operands[1]})
	if err != nil {
		return nil, err
	}
	return append(pre, op(branch+pred, "r29", "r0", operands[2])), nil
}

func expandBfne(base string, operands []string, pred string) ([]Op, error) {
	if err := requireOperands(operands, 3, -1); err != nil {
		return nil, err
	}
	var branch, cmp string
	switch base {
	case "bfgt":
		branch, cmp = "beq", "fcmple"
	case "bfge":
		branch, cmp = "beq", "fcmplt"
	default:
		branch, cmp = "bne", "fcmp"+base[2:]
	}
	return []Op{
		op(cmp, "r29", operands[0], operands[1]),
		op(branch+pred, "r29", "r0", operands[2]),
	}, nil
}

func expandPush(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 1, -1); err != nil {
		return nil, err
	}
	pre := op("sub", "rsp", "rsp", "r0", "4")
	if imm, ok := isa.ParseInt(operands[0]); ok {
		movs, err := movImm("r29", imm)
		if err != nil {
			return nil, err
		}
		return append(append(movs, pre), op("st", "r29", "rsp", "0")), nil
	}
	return []Op{pre, op("st", operands[0], "rsp", "0")}, nil
}

func expandPop(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 1, -1); err != nil {
		return nil, err
	}
	return []Op{
		op("ld", operands[0], "rsp", "0"),
		op("add", "rsp", "rsp", "r0", "4"),
	}, nil
}

func expandCall(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 1, -1); err != nil {
		return nil, err
	}
	pre := []Op{
		op("st", "rbp", "rsp", "-4"),
		op("sub", "rsp", "rsp", "r0", "4"),
		op("add", "rbp", "rsp", "r0", "0"),
	}
	post := []Op{
		op("add", "rsp", "rbp", "r0", "4"),
		op("ld", "rbp", "rsp", "-4"),
	}
	if isa.IsRegister(operands[0]) {
		jump := []Op{
			op("jl", "r28", "0"),
			op("add", "r28", "r28", "r0", "8"),
			op("jr", operands[0]),
		}
		return append(append(append([]Op{}, pre...), jump...), post...), nil
	}
	all := append(append([]Op{}, pre...), op("jl", "r28", operands[0]))
	return append(all, post...), nil
}

func expandRet(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 0, -1); err != nil {
		return nil, err
	}
	return []Op{op("jr", "r28")}, nil
}

func expandEnter(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 0, 1); err != nil {
		return nil, err
	}
	arg := "0"
	if len(operands) == 1 {
		arg = operands[0]
	}
	imm, ok := isa.ParseInt(arg)
	if !ok {
		return nil, fmt.Errorf("expected integer literal: %s", arg)
	}
	if imm&3 != 0 {
		return nil, fmt.Errorf("immediate value must be a multiple of 4")
	}
	pre, err := expandALU("sub", []string{"rsp", "rsp", i64(imm + 4)})
	if err != nil {
		return nil, err
	}
	return append(pre, op("st", "r28", "rsp", "0")), nil
}

func expandLeave(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 0, -1); err != nil {
		return nil, err
	}
	return []Op{op("ld", "r28", "rsp", "0")}, nil
}

func expandHalt(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 0, -1); err != nil {
		return nil, err
	}
	return []Op{op("beq+", "r31", "r31", "-4")}, nil
}

func expandDotInt(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 1, 2); err != nil {
		return nil, err
	}
	if len(operands) == 2 {
		return []Op{op(".int", operands...)}, nil
	}
	return []Op{op(".int", operands[0], "1")}, nil
}

func expandDotFloat(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 1, -1); err != nil {
		return nil, err
	}
	f, ok := isa.ParseFloat(operands[0])
	if !ok {
		return nil, fmt.Errorf("expected floating point literal: %s", operands[0])
	}
	return expandDotInt([]string{i64(int64(floatToBits(f)))})
}

func expandDotSpace(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 1, 2); err != nil {
		return nil, err
	}
	if len(operands) == 2 {
		return []Op{op(".space", operands...)}, nil
	}
	return []Op{op(".space", operands[0], "0")}, nil
}

func expandDotString(operands []string) ([]Op, error) {
	if err := requireOperands(operands, 1, -1); err != nil {
		return nil, err
	}
	s, err := unquoteString(operands[0])
	if err != nil {
		return nil, err
	}
	bytes := make([]string, 0, len(s)+1)
	for _, c := range []byte(s) {
		bytes = append(bytes, strconv.Itoa(int(c)))
	}
	bytes = append(bytes, "0")
	return []Op{op(".byte", bytes...)}, nil
}
