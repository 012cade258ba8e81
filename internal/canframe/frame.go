// Package canframe decodes CAN 2.0 data frames from their bit-level
// representation on the wire.
package canframe

import (
	"github.com/farouk15160/canbits/internal/bitstream"
	"github.com/farouk15160/canbits/internal/canid"
)

// Frame is the common view of a decoded base or extended data frame.
type Frame interface {
	// ID returns canid.Standard for base frames and canid.Extended for
	// extended frames.
	ID() canid.ID
	DLC() uint8
	Payload() []byte
	CRC() uint16
	Remote() bool
	// Len is the number of destuffed bits the frame occupied.
	Len() int
	// StuffedBitCount is the number of stuff bits removed before decoding,
	// zero if the input was already destuffed.
	StuffedBitCount() int
}

var (
	_ Frame = (*BaseDataFrame)(nil)
	_ Frame = (*ExtendedDataFrame)(nil)
)

// ideOffset is the position of the IDE bit in a base frame, which is the
// SRR bit's successor in an extended frame. Both layouts agree up to here.
const ideOffset = 1 + canid.StandardWidth + 1

// Decode decodes destuffed bits, choosing the base or extended layout from
// the IDE bit.
func Decode(bits bitstream.Bits) (Frame, error) {
	if len(bits) > ideOffset && bits[ideOffset] {
		f, err := DecodeExtended(bits)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	f, err := DecodeBase(bits)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// DecodeStuffed destuffs bits with the standard width and decodes the result.
func DecodeStuffed(bits bitstream.Bits) (Frame, error) {
	return Decoder{StuffWidth: bitstream.StuffWidth}.Decode(bits)
}

// Decoder decodes frames with a configurable stuff width. A StuffWidth
// below 1 treats input as already destuffed.
type Decoder struct {
	StuffWidth int
}

// Decode destuffs bits per d.StuffWidth and decodes the frame.
func (d Decoder) Decode(bits bitstream.Bits) (Frame, error) {
	if d.StuffWidth < 1 {
		return Decode(bits)
	}
	unstuffed := bitstream.Unstuff(bits, d.StuffWidth)
	f, err := Decode(unstuffed)
	if err != nil {
		return nil, err
	}
	removed := len(bits) - len(unstuffed)
	switch v := f.(type) {
	case *BaseDataFrame:
		v.stuffBits = removed
	case *ExtendedDataFrame:
		v.stuffBits = removed
	}
	return f, nil
}
