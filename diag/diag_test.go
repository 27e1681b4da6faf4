package diag

import (
	"bytes"
	"strings"
	"testing"
)

func TestErrorString(t *testing.T) {
	e := &Error{Kind: KindLabelNotDeclared, Pos: Pos{File: "a.s", Line: 3}, Message: "label 'x' is not declared"}
	got := e.Error()
	if !strings.Contains(got, "a.s:3") || !strings.Contains(got, "label not declared") {
		t.Errorf("unexpected error string: %q", got)
	}
}

func TestFatalKinds(t *testing.T) {
	if !KindFileNotFound.Fatal() {
		t.Error("file-not-found should be fatal")
	}
	if KindLabelNotDeclared.Fatal() {
		t.Error("label-not-declared should not be fatal")
	}
}

func TestFormatterPrintError(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)
	f.PrintError(&Error{Kind: KindSyntaxError, Pos: Pos{File: "a.s", Line: 1}, Message: "bad syntax"})
	if !strings.Contains(buf.String(), "bad syntax") {
		t.Errorf("expected message in output, got %q", buf.String())
	}
}

func TestGeneratedPosString(t *testing.T) {
	p := Pos{}
	if p.String() != "<generated>" {
		t.Errorf("empty Pos should render as <generated>, got %q", p.String())
	}
}
