// Package emit renders an encoded program into one of the output formats
// the reference assembler supports: a raw byte stream (optionally prefixed
// with a little-endian size header), a VHDL std_logic_vector array
// initializer, or an RS-232 send-test waveform script. This is the direct
// translation of the reference implementation's write()/the three output
// branches at the end of its main process.
package emit

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Format selects one of the three output renderings.
type Format int

const (
	// FormatRaw writes the program bytes as-is.
	FormatRaw Format = iota
	// FormatIndexed writes one VHDL std_logic_vector assignment line per
	// 32-bit word, suitable for splicing into a ROM initializer.
	FormatIndexed
	// FormatSerial writes an RS-232 send-test waveform, one stanza of
	// start/8-data/stop bit transitions per byte.
	FormatSerial
)

// Options controls header emission; WithHeader mirrors the reference
// implementation's default behavior (a 4-byte little-endian size prefix),
// which -c/-k both suppress.
type Options struct {
	Format     Format
	WithHeader bool
}

// Write renders program to w according to opt. For FormatRaw and
// FormatSerial, WithHeader prepends a 4-byte little-endian byte count
// before the body; FormatIndexed never carries a header and instead
// closes with the VHDL "others" catch-all line.
func Write(w io.Writer, program []byte, opt Options) error {
	switch opt.Format {
	case FormatIndexed:
		return writeIndexed(w, program)
	case FormatSerial:
		if opt.WithHeader {
			if err := writeSizeHeader(w, len(program)); err != nil {
				return err
			}
		}
		return writeSerial(w, program)
	default:
		if opt.WithHeader {
			if err := writeSizeHeader(w, len(program)); err != nil {
				return err
			}
		}
		_, err := w.Write(program)
		return err
	}
}

func writeSizeHeader(w io.Writer, size int) error {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(size))
	_, err := w.Write(hdr[:])
	return err
}

func writeIndexed(w io.Writer, program []byte) error {
	for i := 0; i+4 <= len(program); i += 4 {
		word := binary.LittleEndian.Uint32(program[i : i+4])
		if _, err := fmt.Fprintf(w, "%d => x\"%08x\",\n", i/4, word); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "others => (others => '0')")
	return err
}

const serialStanza = `
wait for BR; RS_RX <= '0';
wait for BR; RS_RX <= '%c';
wait for BR; RS_RX <= '%c';
wait for BR; RS_RX <= '%c';
wait for BR; RS_RX <= '%c';
wait for BR; RS_RX <= '%c';
wait for BR; RS_RX <= '%c';
wait for BR; RS_RX <= '%c';
wait for BR; RS_RX <= '%c';
wait for BR; RS_RX <= '1';

wait for (2 * BR);

`

func writeSerial(w io.Writer, program []byte) error {
	for _, b := range program {
		bits := make([]any, 8)
		for j := 0; j < 8; j++ {
			if b&(1<<uint(j)) != 0 {
				bits[j] = '1'
			} else {
				bits[j] = '0'
			}
		}
		if _, err := fmt.Fprintf(w, serialStanza, bits...); err != nil {
			return err
		}
	}
	return nil
}
