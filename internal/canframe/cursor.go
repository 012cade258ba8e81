package canframe

import "github.com/farouk15160/canbits/internal/bitstream"

// cursor walks a destuffed frame front to back. It never rewinds.
type cursor struct {
	bits bitstream.Bits
	pos  int
}

func (c *cursor) field(name string, width int, missing ErrorKind) (uint64, error) {
	v, ok := c.bits.Uint(c.pos, width)
	if !ok {
		return 0, &DecodeError{Kind: missing, Field: name, Offset: c.pos}
	}
	c.pos += width
	return v, nil
}

func (c *cursor) constant(name string, width int, want uint64, missing, mismatch ErrorKind) (uint64, error) {
	start := c.pos
	v, err := c.field(name, width, missing)
	if err != nil {
		return 0, err
	}
	if v != want {
		return 0, &DecodeError{Kind: mismatch, Field: name, Offset: start}
	}
	return v, nil
}

// data consumes 8*dlc bits and returns them as bytes.
func (c *cursor) data(dlc uint8) ([]byte, error) {
	n := 8 * int(dlc)
	if c.pos+n > len(c.bits) {
		return nil, &DecodeError{Kind: DataFieldMissing, Field: "data field", Offset: c.pos}
	}
	payload, err := c.bits[c.pos : c.pos+n].Bytes()
	if err != nil {
		return nil, err
	}
	c.pos += n
	return payload, nil
}

// trailer covers the fields shared by base and extended frames after the
// data field.
type trailer struct {
	crc          uint16
	crcDelimiter uint8
	ackSlot      uint8
	ackDelimiter uint8
	endOfFrame   uint8
	interFrame   uint8
}

func (c *cursor) trailer() (t trailer, err error) {
	var v uint64
	if v, err = c.field("crc", 15, CyclicRedundancyCheckMissing); err != nil {
		return t, err
	}
	t.crc = uint16(v)
	if v, err = c.constant("crc delimiter", 1, 1, CyclicRedundancyCheckDelimiterMissing, CyclicRedundancyCheckDelimiterMustBeOne); err != nil {
		return t, err
	}
	t.crcDelimiter = uint8(v)
	if v, err = c.field("ack slot", 1, AcknowledgementSlotMissing); err != nil {
		return t, err
	}
	t.ackSlot = uint8(v)
	if v, err = c.constant("ack delimiter", 1, 1, AcknowledgementDelimiterMissing, AcknowledgementDelimiterMustBeOne); err != nil {
		return t, err
	}
	t.ackDelimiter = uint8(v)
	if v, err = c.constant("end of frame", 7, 0x7F, EndOfFrameMissing, EndOfFrameMustBeOne); err != nil {
		return t, err
	}
	t.endOfFrame = uint8(v)
	if v, err = c.constant("inter frame spacing", 3, 0x7, InterFrameSpacingMissing, InterFrameSpacingMustBeOne); err != nil {
		return t, err
	}
	t.interFrame = uint8(v)
	return t, nil
}
