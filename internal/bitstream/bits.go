// Package bitstream holds the raw CAN bit sequence type and the bit
// stuffing/destuffing transforms applied to it on the wire.
package bitstream

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/imroc/biu"
)

// Bits is an ordered, most-significant-bit-first sequence of bus bits.
// A value is never modified once produced; transforms return new sequences.
type Bits []bool

// SyntaxError reports an unexpected character in a bit literal.
type SyntaxError struct {
	Pos  int
	Char rune
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bitstream: invalid character %q at position %d", e.Char, e.Pos)
}

func isSeparator(c byte) bool {
	switch c {
	case ',', '_', ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// Parse reads a bit literal such as "0,00000010100,0" or "0b0001 0b1".
// Digits may be grouped with commas, underscores or whitespace, and each group
// may carry a 0b prefix.
func Parse(literal string) (Bits, error) {
	out := make(Bits, 0, len(literal))
	groupStart := true
	for i := 0; i < len(literal); i++ {
		c := literal[i]
		if isSeparator(c) {
			groupStart = true
			continue
		}
		if groupStart && c == '0' && i+1 < len(literal) && (literal[i+1] == 'b' || literal[i+1] == 'B') {
			i++
			groupStart = false
			continue
		}
		groupStart = false
		switch c {
		case '0':
			out = append(out, false)
		case '1':
			out = append(out, true)
		default:
			return nil, &SyntaxError{Pos: i, Char: rune(c)}
		}
	}
	return out, nil
}

// MustParse is like Parse but panics on error. Intended for fixtures.
func MustParse(literal string) Bits {
	b, err := Parse(literal)
	if err != nil {
		panic(err)
	}
	return b
}

// FromBytes expands bytes into bits, MSB first.
func FromBytes(data []byte) Bits {
	out := make(Bits, 0, len(data)*8)
	for _, d := range data {
		for _, c := range biu.ToBinaryString(d) {
			out = append(out, c == '1')
		}
	}
	return out
}

// String renders the sequence as a run of 0 and 1 digits.
func (b Bits) String() string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, bit := range b {
		if bit {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Uint loads width bits starting at offset as an MSB-first unsigned integer.
// ok is false if the range falls outside the sequence or width exceeds 64.
func (b Bits) Uint(offset, width int) (v uint64, ok bool) {
	if offset < 0 || width < 0 || width > 64 || offset+width > len(b) {
		return 0, false
	}
	for _, bit := range b[offset : offset+width] {
		v <<= 1
		if bit {
			v |= 1
		}
	}
	return v, true
}

// Bytes packs the sequence into bytes, MSB first. The length must be a
// multiple of eight.
func (b Bits) Bytes() ([]byte, error) {
	if len(b)%8 != 0 {
		return nil, errors.Newf("bitstream: %d bits is not a whole number of bytes", len(b))
	}
	if len(b) == 0 {
		return []byte{}, nil
	}
	return biu.BinaryStringToBytes(b.String()), nil
}

// Clone returns an independent copy of the sequence.
func (b Bits) Clone() Bits {
	out := make(Bits, len(b))
	copy(out, b)
	return out
}

// Equal reports whether both sequences hold the same bits.
func (b Bits) Equal(other Bits) bool {
	if len(b) != len(other) {
		return false
	}
	for i := range b {
		if b[i] != other[i] {
			return false
		}
	}
	return true
}

// LongestRun returns the length of the longest run of identical bits in
// b[from:to]. Out-of-range bounds are clamped.
func (b Bits) LongestRun(from, to int) int {
	if from < 0 {
		from = 0
	}
	if to > len(b) {
		to = len(b)
	}
	longest, run := 0, 0
	for i := from; i < to; i++ {
		if i > from && b[i] == b[i-1] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
