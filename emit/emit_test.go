package emit

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestWriteRawWithHeader(t *testing.T) {
	var buf bytes.Buffer
	program := []byte{1, 2, 3, 4}
	if err := Write(&buf, program, Options{Format: FormatRaw, WithHeader: true}); err != nil {
		t.Fatal(err)
	}
	got := buf.Bytes()
	if len(got) != 8 {
		t.Fatalf("want 8 bytes (4 header + 4 body), got %d", len(got))
	}
	size := binary.LittleEndian.Uint32(got[:4])
	if size != 4 {
		t.Errorf("header should record program length 4, got %d", size)
	}
	if !bytes.Equal(got[4:], program) {
		t.Errorf("body mismatch: %v", got[4:])
	}
}

func TestWriteRawNoHeader(t *testing.T) {
	var buf bytes.Buffer
	program := []byte{9, 9}
	if err := Write(&buf, program, Options{Format: FormatRaw, WithHeader: false}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), program) {
		t.Errorf("no-header raw output should be exactly the program bytes, got %v", buf.Bytes())
	}
}

func TestWriteIndexed(t *testing.T) {
	var buf bytes.Buffer
	program := []byte{0x78, 0x56, 0x34, 0x12}
	if err := Write(&buf, program, Options{Format: FormatIndexed}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !bytes.Contains([]byte(out), []byte(`0 => x"12345678",`)) {
		t.Errorf("expected indexed hex word, got %q", out)
	}
	if !bytes.Contains([]byte(out), []byte("others => (others => '0')")) {
		t.Errorf("expected VHDL others catch-all, got %q", out)
	}
}

func TestWriteSerial(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, []byte{0x01}, Options{Format: FormatSerial}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("serial output should not be empty")
	}
}
