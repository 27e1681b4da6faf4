package isa

import (
	"strconv"
	"strings"
)

// ParseInt parses an integer literal the way the reference assembler's
// host language parses int(s, 0): decimal, 0x/0X hex, 0b/0B binary, or a
// legacy 0-prefixed octal run, with an optional leading sign. The second
// return value reports whether s was a valid integer literal at all —
// callers use this to distinguish "not a number" (try something else)
// from a genuine parse error.
func ParseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	body := s
	if body[0] == '+' || body[0] == '-' {
		neg = body[0] == '-'
		body = body[1:]
	}
	if body == "" {
		return 0, false
	}
	var v uint64
	var err error
	switch {
	case strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X"):
		v, err = strconv.ParseUint(body[2:], 16, 64)
	case strings.HasPrefix(body, "0b") || strings.HasPrefix(body, "0B"):
		v, err = strconv.ParseUint(body[2:], 2, 64)
	case strings.HasPrefix(body, "0o") || strings.HasPrefix(body, "0O"):
		v, err = strconv.ParseUint(body[2:], 8, 64)
	case len(body) > 1 && body[0] == '0':
		v, err = strconv.ParseUint(body[1:], 8, 64)
	default:
		v, err = strconv.ParseUint(body, 10, 64)
	}
	if err != nil {
		return 0, false
	}
	r := int64(v)
	if neg {
		r = -r
	}
	return r, true
}

// ParseFloat parses a floating-point literal; the second return value
// mirrors ParseInt's "was this even a number" signal.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FloorDiv implements floor division over int64, matching the
// classic-division semantics the expression evaluator's host language
// applies to integers (rounds toward negative infinity, not toward zero).
func FloorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FloorMod implements the matching floored modulo: the result always has
// the same sign as the divisor.
func FloorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
