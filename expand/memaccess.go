package expand

import (
	"regexp"
	"strings"

	"github.com/b-inary/gaia-software/isa"
)

var (
	memRegBase  = regexp.MustCompile(`^\[\s*(r\w+)\s*([+-])\s*(\w+)\s*\]$`)
	memRegOnly  = regexp.MustCompile(`^\[\s*(r\w+)\s*\]$`)
	memImmOnly  = regexp.MustCompile(`^\[\s*([+-]?\s*\w+)\s*\]$`)
)

// parseMemAccess recognizes the three simple bracket forms — [reg],
// [reg±disp], [±integer] — that lower directly to a base+displacement
// load/store. Anything else (a label, an arithmetic expression) reports
// ok=false so the caller falls back to the symbolic pseudo-ld/st form.
func parseMemAccess(operand string) (ok bool, base string, disp int64) {
	if m := memRegBase.FindStringSubmatch(operand); m != nil {
		sign, tok := m[2], m[3]
		text := tok
		if sign == "-" {
			text = "-" + tok
		}
		if v, ok2 := isa.ParseInt(text); ok2 && isa.IsRegister(m[1]) {
			return true, m[1], v
		}
	}
	if m := memRegOnly.FindStringSubmatch(operand); m != nil && isa.IsRegister(m[1]) {
		return true, m[1], 0
	}
	if m := memImmOnly.FindStringSubmatch(operand); m != nil {
		text := strings.ReplaceAll(m[1], " ", "")
		if v, ok2 := isa.ParseInt(text); ok2 {
			return true, "r0", v
		}
	}
	return false, "r0", 0
}
