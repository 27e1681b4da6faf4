package isa

import "testing"

func TestRegisterAliases(t *testing.T) {
	n, ok := RegisterNumber("rsp")
	if !ok || n != 30 {
		t.Errorf("rsp should alias r30, got %d, %v", n, ok)
	}
	n, ok = RegisterNumber("rbp")
	if !ok || n != 31 {
		t.Errorf("rbp should alias r31, got %d, %v", n, ok)
	}
	if !IsRegister("r0") || !IsRegister("r31") {
		t.Error("r0 and r31 should be valid registers")
	}
	if IsRegister("r32") || IsRegister("rax") {
		t.Error("r32 and rax should not be valid registers")
	}
}
