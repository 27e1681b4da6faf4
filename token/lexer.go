// Package token splits one already-comment-free-of-leading-whitespace
// source line into a mnemonic and its comma-separated operands. It knows
// nothing about registers, labels, or instruction semantics — that is
// exactly the "pure-text; no semantic interpretation" lexer stage, mirroring
// the separation the reference lexer (parser/lexer.go) draws between
// tokenizing and everything downstream.
package token

import (
	"fmt"
	"strings"
)

// Split divides a trimmed source line into a mnemonic and its operand
// list. A line that is empty after removing a "#" comment, or whose
// mnemonic itself starts with "#", yields an empty mnemonic and no
// operands — the caller should simply skip it.
//
// "#" begins a line comment unless inside a double-quoted string; a
// backslash inside a string quotes the following character (including a
// quote, comma, or '#') so it is not treated specially.
func Split(line string) (string, []string, error) {
	mnemonic, rest := firstToken(line)
	if strings.Contains(mnemonic, "#") {
		return mnemonic[:strings.Index(mnemonic, "#")], nil, nil
	}
	if rest == "" || rest[0] == '#' {
		return mnemonic, nil, nil
	}
	operands, err := splitComma(rest)
	if err != nil {
		return "", nil, err
	}
	for i := range operands {
		operands[i] = strings.TrimSpace(operands[i])
	}
	return mnemonic, operands, nil
}

// firstToken mimics Python's "line.split(None, 1)": the first
// whitespace-delimited token, and everything after the whitespace run
// that follows it (or "" if there is none).
func firstToken(line string) (string, string) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	mnemonic := line[:i]
	rest := strings.TrimLeft(line[i:], " \t")
	return mnemonic, rest
}

// splitComma splits s on top-level commas, honoring double-quoted string
// literals (where a comma is just a character) and terminating early at a
// top-level "#" comment.
func splitComma(s string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			cur.WriteByte(c)
			escaped = false
			continue
		}
		switch {
		case c == '"':
			inString = !inString
			cur.WriteByte(c)
		case c == '\\' && inString:
			escaped = true
			cur.WriteByte(c)
		case c == ',' && !inString:
			fields = append(fields, cur.String())
			cur.Reset()
		case c == '#' && !inString:
			fields = append(fields, cur.String())
			return fields, nil
		default:
			cur.WriteByte(c)
		}
	}
	if inString {
		return nil, fmt.Errorf("unterminated string literal")
	}
	fields = append(fields, cur.String())
	return fields, nil
}
