package token

import (
	"reflect"
	"testing"
)

func TestSplitBasic(t *testing.T) {
	m, ops, err := Split("add r1, r2, r3, 0")
	if err != nil {
		t.Fatal(err)
	}
	if m != "add" || !reflect.DeepEqual(ops, []string{"r1", "r2", "r3", "0"}) {
		t.Errorf("got %q %v", m, ops)
	}
}

func TestSplitComment(t *testing.T) {
	m, ops, err := Split("add r1, r2, r3, 0 # comment")
	if err != nil {
		t.Fatal(err)
	}
	if m != "add" || len(ops) != 4 {
		t.Errorf("got %q %v", m, ops)
	}
}

func TestSplitLabel(t *testing.T) {
	m, ops, err := Split("main:")
	if err != nil {
		t.Fatal(err)
	}
	if m != "main:" || ops != nil {
		t.Errorf("got %q %v", m, ops)
	}
}

func TestSplitStringOperandWithComma(t *testing.T) {
	m, ops, err := Split(`write "hello, world\n"`)
	if err != nil {
		t.Fatal(err)
	}
	if m != "write" || len(ops) != 1 || ops[0] != `"hello, world\n"` {
		t.Errorf("got %q %v", m, ops)
	}
}

func TestSplitUnterminatedString(t *testing.T) {
	_, _, err := Split(`write "unterminated`)
	if err == nil {
		t.Error("expected error for unterminated string literal")
	}
}
