package canframe

import (
	"github.com/farouk15160/canbits/internal/bitstream"
	"github.com/farouk15160/canbits/internal/canid"
)

// BaseDataFrame is a decoded CAN 2.0A data frame with an 11-bit identifier.
type BaseDataFrame struct {
	StartOfFrame                   uint8
	Identifier                     uint16
	RemoteTransmissionRequest      uint8
	IdentifierExtensionBit         uint8
	ReservedBitZero                uint8
	DataLengthCode                 uint8
	DataField                      []byte
	CyclicRedundancyCheck          uint16
	CyclicRedundancyCheckDelimiter uint8
	AcknowledgementSlot            uint8
	AcknowledgementDelimiter       uint8
	EndOfFrame                     uint8
	InterFrameSpacing              uint8

	length    int
	stuffBits int
}

// DecodeBase decodes a destuffed base data frame.
//
// Layout: SOF(1)=0 ID(11) RTR(1) IDE(1)=0 R0(1) DLC(4) DATA(8*DLC) CRC(15)
// CRCDelim(1)=1 ACKSlot(1) ACKDelim(1)=1 EOF(7)=0x7F IFS(3)=0x7.
func DecodeBase(bits bitstream.Bits) (*BaseDataFrame, error) {
	c := &cursor{bits: bits}
	f := &BaseDataFrame{}

	v, err := c.constant("start of frame", 1, 0, StartOfFrameMissing, StartOfFrameMustBeZero)
	if err != nil {
		return nil, err
	}
	f.StartOfFrame = uint8(v)

	if v, err = c.field("identifier", canid.StandardWidth, IdentifierMissing); err != nil {
		return nil, err
	}
	f.Identifier = uint16(v)

	if v, err = c.field("rtr", 1, RemoteTransmissionRequestMissing); err != nil {
		return nil, err
	}
	f.RemoteTransmissionRequest = uint8(v)

	if v, err = c.constant("ide", 1, 0, IdentifierExtensionBitMissing, IdentifierExtensionBitMustBeZero); err != nil {
		return nil, err
	}
	f.IdentifierExtensionBit = uint8(v)

	if v, err = c.field("r0", 1, ReservedBitZeroMissing); err != nil {
		return nil, err
	}
	f.ReservedBitZero = uint8(v)

	if v, err = c.field("dlc", 4, DataLengthCodeMissing); err != nil {
		return nil, err
	}
	f.DataLengthCode = uint8(v)

	if f.DataField, err = c.data(f.DataLengthCode); err != nil {
		return nil, err
	}

	t, err := c.trailer()
	if err != nil {
		return nil, err
	}
	f.CyclicRedundancyCheck = t.crc
	f.CyclicRedundancyCheckDelimiter = t.crcDelimiter
	f.AcknowledgementSlot = t.ackSlot
	f.AcknowledgementDelimiter = t.ackDelimiter
	f.EndOfFrame = t.endOfFrame
	f.InterFrameSpacing = t.interFrame

	f.length = c.pos
	return f, nil
}

// DecodeBaseStuffed destuffs bits with the standard width and decodes the result.
func DecodeBaseStuffed(bits bitstream.Bits) (*BaseDataFrame, error) {
	unstuffed := bitstream.Unstuff(bits, bitstream.StuffWidth)
	f, err := DecodeBase(unstuffed)
	if err != nil {
		return nil, err
	}
	f.stuffBits = len(bits) - len(unstuffed)
	return f, nil
}

func (f *BaseDataFrame) ID() canid.ID         { return canid.Standard(f.Identifier) }
func (f *BaseDataFrame) DLC() uint8           { return f.DataLengthCode }
func (f *BaseDataFrame) Payload() []byte      { return f.DataField }
func (f *BaseDataFrame) CRC() uint16          { return f.CyclicRedundancyCheck }
func (f *BaseDataFrame) Remote() bool         { return f.RemoteTransmissionRequest == 1 }
func (f *BaseDataFrame) Len() int             { return f.length }
func (f *BaseDataFrame) StuffedBitCount() int { return f.stuffBits }
