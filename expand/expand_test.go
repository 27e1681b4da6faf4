package expand

import "testing"

func mustExpand(t *testing.T, mnemonic string, operands ...string) []Op {
	t.Helper()
	ops, err := Expand(mnemonic, operands)
	if err != nil {
		t.Fatalf("Expand(%s, %v): %v", mnemonic, operands, err)
	}
	return ops
}

func TestExpandNop(t *testing.T) {
	ops := mustExpand(t, "nop")
	if len(ops) != 1 || ops[0].Mnemonic != "add" {
		t.Errorf("nop should lower to a single add, got %v", ops)
	}
}

func TestExpandMovRegToReg(t *testing.T) {
	ops := mustExpand(t, "mov", "r1", "r2")
	if len(ops) != 1 || ops[0].Mnemonic != "add" || ops[0].Operands[1] != "r2" {
		t.Errorf("reg-to-reg mov should lower to add, got %v", ops)
	}
}

func TestExpandMovSmallImmediate(t *testing.T) {
	ops := mustExpand(t, "mov", "r1", "100")
	if len(ops) != 1 || ops[0].Mnemonic != "ldl" {
		t.Errorf("small immediate mov should lower to a single ldl, got %v", ops)
	}
}

func TestExpandMovLargeImmediate(t *testing.T) {
	ops := mustExpand(t, "mov", "r1", "0x12345678")
	if len(ops) != 2 || ops[0].Mnemonic != "ldl" || ops[1].Mnemonic != "ldh" {
		t.Errorf("large immediate mov should lower to ldl+ldh, got %v", ops)
	}
}

func TestExpandMovSymbolic(t *testing.T) {
	ops := mustExpand(t, "mov", "r1", "some_label")
	if len(ops) != 1 || ops[0].Mnemonic != "mov" {
		t.Errorf("symbolic mov should pass through unresolved, got %v", ops)
	}
}

func TestExpandMovMemorySmallDisp(t *testing.T) {
	ops := mustExpand(t, "mov", "r1", "[r2+4]")
	if len(ops) != 1 || ops[0].Mnemonic != "ld" || ops[0].Operands[2] != "4" {
		t.Errorf("small-displacement load should lower to a single ld, got %v", ops)
	}
}

func TestExpandALUImmediateFitsEightBits(t *testing.T) {
	ops := mustExpand(t, "add", "r1", "r2", "5")
	if len(ops) != 1 || ops[0].Operands[2] != "r0" || ops[0].Operands[3] != "5" {
		t.Errorf("small immediate ALU op should fold into the i-field, got %v", ops)
	}
}

func TestExpandALUImmediateNeedsScratch(t *testing.T) {
	ops := mustExpand(t, "add", "r1", "r2", "100000")
	// 100000 = 0x186a0 has a non-zero low half, so r29 is loaded with ldl+ldh.
	if len(ops) != 3 || ops[len(ops)-1].Operands[2] != "r29" {
		t.Errorf("out-of-range immediate ALU op should route through r29, got %v", ops)
	}
}

func TestExpandBranchSuffix(t *testing.T) {
	ops := mustExpand(t, "bne+", "r1", "r2", "target")
	if len(ops) == 0 || ops[len(ops)-1].Mnemonic != "bne+" {
		t.Errorf("predicted bne+ should reach the encoder with its suffix intact, got %v", ops)
	}
}

func TestExpandCmpgtRegisterSwapsOperands(t *testing.T) {
	ops := mustExpand(t, "cmpgt", "r1", "r2", "r3")
	if len(ops) != 1 || ops[0].Mnemonic != "cmplt" || ops[0].Operands[1] != "r3" || ops[0].Operands[2] != "r2" {
		t.Errorf("cmpgt should swap operands into cmplt, got %v", ops)
	}
}

func TestExpandHaltHalts(t *testing.T) {
	ops := mustExpand(t, "halt")
	if len(ops) == 0 {
		t.Fatal("halt should expand to at least one op")
	}
}

func TestExpandDotStringEmitsBytes(t *testing.T) {
	ops := mustExpand(t, ".string", `"hi"`)
	if len(ops) != 1 || ops[0].Mnemonic != ".byte" {
		t.Errorf(".string should lower to .byte, got %v", ops)
	}
}

func TestExpandUnknownPassesThrough(t *testing.T) {
	ops := mustExpand(t, ".global", "main")
	if len(ops) != 1 || ops[0].Mnemonic != ".global" {
		t.Errorf("directive should pass through unchanged, got %v", ops)
	}
}
