package canframe

import (
	"github.com/farouk15160/canbits/internal/bitstream"
	"github.com/farouk15160/canbits/internal/canid"
)

// identifierBWidth is the width of the second identifier half of an
// extended frame.
const identifierBWidth = canid.ExtendedWidth - canid.StandardWidth

// ExtendedDataFrame is a decoded CAN 2.0B data frame with a 29-bit identifier
// split into an 11-bit and an 18-bit half.
type ExtendedDataFrame struct {
	StartOfFrame                   uint8
	IdentifierA                    uint16
	SubstituteRemoteRequest        uint8
	IdentifierExtensionBit         uint8
	IdentifierB                    uint32
	RemoteTransmissionRequest      uint8
	ReservedBitOne                 uint8
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

// DecodeExtended decodes a destuffed extended data frame.
//
// Layout: SOF(1)=0 IDA(11) SRR(1)=1 IDE(1)=1 IDB(18) RTR(1) R1(1) R0(1)
// DLC(4) DATA(8*DLC) CRC(15) CRCDelim(1)=1 ACKSlot(1) ACKDelim(1)=1
// EOF(7)=0x7F IFS(3)=0x7.
func DecodeExtended(bits bitstream.Bits) (*ExtendedDataFrame, error) {
	c := &cursor{bits: bits}
	f := &ExtendedDataFrame{}

	v, err := c.constant("start of frame", 1, 0, StartOfFrameMissing, StartOfFrameMustBeZero)
	if err != nil {
		return nil, err
	}
	f.StartOfFrame = uint8(v)

	if v, err = c.field("identifier a", canid.StandardWidth, IdentifierAMissing); err != nil {
		return nil, err
	}
	f.IdentifierA = uint16(v)

	if v, err = c.constant("srr", 1, 1, SubstituteRemoteRequestMissing, SubstituteRemoteRequestMustBeOne); err != nil {
		return nil, err
	}
	f.SubstituteRemoteRequest = uint8(v)

	if v, err = c.constant("ide", 1, 1, IdentifierExtensionBitMissing, IdentifierExtensionBitMustBeOne); err != nil {
		return nil, err
	}
	f.IdentifierExtensionBit = uint8(v)

	if v, err = c.field("identifier b", identifierBWidth, IdentifierBMissing); err != nil {
		return nil, err
	}
	f.IdentifierB = uint32(v)

	if v, err = c.field("rtr", 1, RemoteTransmissionRequestMissing); err != nil {
		return nil, err
	}
	f.RemoteTransmissionRequest = uint8(v)

	if v, err = c.field("r1", 1, ReservedBitOneMissing); err != nil {
		return nil, err
	}
	f.ReservedBitOne = uint8(v)

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

// DecodeExtendedStuffed destuffs bits with the standard width and decodes the
// result.
func DecodeExtendedStuffed(bits bitstream.Bits) (*ExtendedDataFrame, error) {
	unstuffed := bitstream.Unstuff(bits, bitstream.StuffWidth)
	f, err := DecodeExtended(unstuffed)
	if err != nil {
		return nil, err
	}
	f.stuffBits = len(bits) - len(unstuffed)
	return f, nil
}

// Identifier composes the 29-bit identifier from both halves.
func (f *ExtendedDataFrame) Identifier() uint32 {
	return uint32(f.IdentifierA)<<identifierBWidth | f.IdentifierB
}

func (f *ExtendedDataFrame) ID() canid.ID         { return canid.Extended(f.Identifier()) }
func (f *ExtendedDataFrame) DLC() uint8           { return f.DataLengthCode }
func (f *ExtendedDataFrame) Payload() []byte      { return f.DataField }
func (f *ExtendedDataFrame) CRC() uint16          { return f.CyclicRedundancyCheck }
func (f *ExtendedDataFrame) Remote() bool         { return f.RemoteTransmissionRequest == 1 }
func (f *ExtendedDataFrame) Len() int             { return f.length }
func (f *ExtendedDataFrame) StuffedBitCount() int { return f.stuffBits }
