// Package diag carries the abstract diagnostics raised by the assembler
// core and renders them for a terminal. The core packages never format a
// message themselves; they return a *diag.Error or record a diag.Warning
// and leave presentation to this package, the way the reference lexer's
// ErrorList separates error content from its Error() rendering.
package diag

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Kind enumerates the diagnostic taxonomy the assembler can raise.
type Kind int

const (
	KindFileNotFound Kind = iota
	KindIOError
	KindParseError
	KindSyntaxError
	KindOperandCountError
	KindImmediateRangeError
	KindDisplacementAlignmentError
	KindUnknownMnemonic
	KindDuplicateLabel
	KindInvalidLabelName
	KindLabelNotDeclared
	KindLabelAmbiguous
	KindExprEvalError
	KindExprTypeError
	KindLabelOutOfRange
	KindProgramTooLarge
	KindMissingStartLabel
)

var kindNames = map[Kind]string{
	KindFileNotFound:               "file not found",
	KindIOError:                    "io error",
	KindParseError:                 "parse error",
	KindSyntaxError:                "syntax error",
	KindOperandCountError:          "operand count error",
	KindImmediateRangeError:        "immediate range error",
	KindDisplacementAlignmentError: "displacement alignment error",
	KindUnknownMnemonic:            "unknown mnemonic",
	KindDuplicateLabel:             "duplicate label",
	KindInvalidLabelName:           "invalid label name",
	KindLabelNotDeclared:           "label not declared",
	KindLabelAmbiguous:             "label ambiguous",
	KindExprEvalError:              "expression error",
	KindExprTypeError:              "expression type error",
	KindLabelOutOfRange:            "label out of range",
	KindProgramTooLarge:            "program too large",
	KindMissingStartLabel:          "missing start label",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "error"
}

// Fatal reports whether a diagnostic of this kind is program-wide rather
// than tied to one source line; the command line renders such errors with
// PrintFatal (no source position) instead of PrintError.
func (k Kind) Fatal() bool {
	switch k {
	case KindFileNotFound, KindIOError, KindProgramTooLarge, KindMissingStartLabel:
		return true
	default:
		return false
	}
}

// Pos locates a diagnostic in the source: a file name and a 1-based line
// number. Pos{} (empty File) denotes a synthetic position, such as the
// prologue jump or a -f marker label, which carries no source line.
type Pos struct {
	File string
	Line int
}

func (p Pos) String() string {
	if p.File == "" {
		return "<generated>"
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Error is a diagnostic raised by the core. It satisfies the error
// interface with a plain, unformatted message; Formatter applies the
// "file:line: error:" framing and color.
type Error struct {
	Kind    Kind
	Pos     Pos
	Message string
}

func NewError(kind Kind, pos Pos, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
}

// Warning is informational and never aborts the run.
type Warning struct {
	Pos     Pos
	Message string
}

func (w *Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.Pos, w.Message)
}

// Formatter renders diagnostics to an io.Writer, coloring the severity
// word when the destination is a real terminal — the Go equivalent of the
// reference implementation's sys.stderr.isatty() checks.
type Formatter struct {
	out   io.Writer
	color bool
	// SourceLine, when set, is consulted to echo the offending source
	// line under a per-line diagnostic (diag.Pos carries no text).
	SourceLine func(pos Pos) (string, bool)
}

// NewFormatter builds a Formatter writing to w, auto-detecting color from
// w's file descriptor when w is an *os.File.
func NewFormatter(w io.Writer) *Formatter {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Formatter{out: w, color: color}
}

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiMagent = "\x1b[35m"
)

func (f *Formatter) wrap(prefix, word, color, msg string) string {
	if !f.color {
		return fmt.Sprintf("%s%s: %s", prefix, word, msg)
	}
	return fmt.Sprintf("%s%s%s%s: %s%s", ansiBold, prefix, color, word, ansiReset, msg) + ansiReset
}

// PrintFatal renders a program-wide fatal message with no source position.
func (f *Formatter) PrintFatal(prog, msg string) {
	fmt.Fprintln(f.out, f.wrap(prog+": ", "fatal error", ansiRed, msg))
}

// PrintError renders a per-line error, echoing the source line when
// SourceLine supplies one.
func (f *Formatter) PrintError(e *Error) {
	fmt.Fprintln(f.out, f.wrap(e.Pos.String()+": ", "error", ansiRed, e.Message))
	if f.SourceLine != nil {
		if line, ok := f.SourceLine(e.Pos); ok {
			fmt.Fprintln(f.out, "  "+line)
		}
	}
}

// PrintWarning renders a warning; showLine mirrors the reference
// implementation's warning(msg, show_line) parameter.
func (f *Formatter) PrintWarning(w *Warning, showLine bool) {
	fmt.Fprintln(f.out, f.wrap(w.Pos.String()+": ", "warning", ansiMagent, w.Message))
	if showLine && f.SourceLine != nil {
		if line, ok := f.SourceLine(w.Pos); ok {
			fmt.Fprintln(f.out, "  "+line)
		}
	}
}
