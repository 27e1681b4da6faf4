package emit

import (
	"fmt"
	"strings"

	"github.com/b-inary/gaia-software/diag"
	"github.com/b-inary/gaia-software/encode"
	"github.com/b-inary/gaia-software/resolve"
	"github.com/b-inary/gaia-software/symtab"
)

// ListingOptions controls the preprocessed-assembly dump (-s/-v).
type ListingOptions struct {
	EntryPoint int64
	Verbose    bool
	// SourceLine returns the original source text for pos, when available
	// (the -v form echoes it once per distinct source line).
	SourceLine func(pos diag.Pos) (string, bool)
}

// Listing renders the fully-resolved stream as human-readable assembly,
// one line per item, grouped by source file and annotated with each
// item's address, resolved label names, and (in verbose mode) its encoded
// word and originating source line. This mirrors the reference
// implementation's -s/-v dump.
func Listing(items []resolve.FinalOp, tbl *symtab.Table, opt ListingOptions) (string, error) {
	var b strings.Builder
	addr := opt.EntryPoint
	prevFile := "\x00"
	prevPos := -1

	for _, it := range items {
		if it.Pos.File != prevFile {
			fmt.Fprintf(&b, "\n# file: %s\n", it.Pos.File)
			prevFile = it.Pos.File
		}
		s := fmt.Sprintf("%#08x  %-7s %s", addr, it.Mnemonic, strings.Join(it.Operands, ", "))
		label := labelsAt(tbl, addr)

		var comment string
		if opt.Verbose {
			word, err := encode.Instruction(it.Mnemonic, it.Operands, it.Pos)
			if err != nil {
				return "", err
			}
			comment = fmt.Sprintf("# [%s]  ", hexWord(word))
			if label != "" {
				comment += "(" + label + ")  "
			}
			if opt.SourceLine != nil && (prevPos != it.Pos.Line || it.Pos.File == "") {
				if line, ok := opt.SourceLine(it.Pos); ok {
					comment += line
					prevPos = it.Pos.Line
				}
			}
		} else if label != "" {
			comment = "# " + label
		}

		fmt.Fprintf(&b, "%-39s %s\n", s, strings.TrimRight(comment, " "))

		switch it.Mnemonic {
		case ".byte":
			addr += int64(len(it.Operands))
		case ".int":
			cnt := int64(0)
			fmt.Sscanf(it.Operands[1], "%d", &cnt)
			addr += 4 * cnt
		case ".space":
			sz := int64(0)
			fmt.Sscanf(it.Operands[0], "%d", &sz)
			addr += sz
		default:
			addr += 4
		}
	}
	return b.String(), nil
}

func labelsAt(tbl *symtab.Table, addr int64) string {
	names := tbl.LabelsAt(addr)
	if len(names) == 0 {
		return ""
	}
	return strings.Join(names, ", ")
}

func hexWord(b []byte) string {
	for len(b) < 4 {
		b = append(b, 0)
	}
	v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return fmt.Sprintf("%08x", v)
}
