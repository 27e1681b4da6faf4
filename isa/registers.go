// Package isa describes the register file of the instruction set and the
// numeric helpers (literal parsing, signed-field range checks, floor
// division) that every other package (expand, layout, resolve, encode)
// needs to agree on but that none of them owns.
package isa

import "strconv"

// NumRegisters is the size of the general-purpose register file.
const NumRegisters = 32

// ZeroRegister reads as zero; writes to it are never observed by anything
// downstream of the encoder.
const ZeroRegister = "r0"

// CallReturnRegister is the convention used by call/ret expansion.
const CallReturnRegister = "r28"

// ScratchRegister is clobbered freely by macro expansion.
const ScratchRegister = "r29"

var registerNumbers = buildRegisterTable()

func buildRegisterTable() map[string]uint8 {
	t := map[string]uint8{
		"rsp": 30,
		"rbp": 31,
	}
	for i := 0; i < NumRegisters; i++ {
		t["r"+strconv.Itoa(i)] = uint8(i)
	}
	return t
}

// RegisterNumber resolves a register name (including the rsp/rbp aliases)
// to its 5-bit register number.
func RegisterNumber(name string) (uint8, bool) {
	n, ok := registerNumbers[name]
	return n, ok
}

// IsRegister reports whether name is a known register or alias.
func IsRegister(name string) bool {
	_, ok := registerNumbers[name]
	return ok
}

// FitsSigned reports whether v fits in a signed field of the given bit
// width, i.e. -2^(bits-1) <= v < 2^(bits-1).
func FitsSigned(v int64, bits uint) bool {
	x := int64(1) << (bits - 1)
	return -x <= v && v < x
}
