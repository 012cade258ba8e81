package j1939

import (
	"fmt"

	"github.com/farouk15160/canbits/internal/bitwidth"
)

// PGNWidth is the width of a parameter group number.
const PGNWidth = 18

// PGN is a parameter group number: reserved bit, data page bit and PDU.
type PGN struct {
	reserved uint8
	dataPage uint8
	pdu      PDU
}

// NewPGN builds a PGN on data page 0 with the reserved bit clear.
func NewPGN(pdu PDU) PGN {
	return PGN{pdu: pdu}
}

// NewPGNWithPage builds a PGN with explicit reserved and data page bits.
func NewPGNWithPage(reserved, dataPage uint8, pdu PDU) (PGN, error) {
	if err := bitwidth.Check("reserved bit", uint64(reserved), 1); err != nil {
		return PGN{}, err
	}
	if err := bitwidth.Check("data page", uint64(dataPage), 1); err != nil {
		return PGN{}, err
	}
	return PGN{reserved: reserved, dataPage: dataPage, pdu: pdu}, nil
}

// NewPGNFromRaw splits an 18-bit value into its fields.
func NewPGNFromRaw(raw uint32) (PGN, error) {
	if err := bitwidth.Check("pgn", uint64(raw), PGNWidth); err != nil {
		return PGN{}, err
	}
	return PGN{
		reserved: uint8(raw>>17) & 1,
		dataPage: uint8(raw>>16) & 1,
		pdu:      PDUFromRaw(uint16(raw)),
	}, nil
}

// Raw returns reserved<<17 | dataPage<<16 | pdu.
func (p PGN) Raw() uint32 {
	return uint32(p.reserved)<<17 | uint32(p.dataPage)<<16 | uint32(p.pdu.Raw())
}

func (p PGN) Reserved() uint8 { return p.reserved }
func (p PGN) DataPage() uint8 { return p.dataPage }
func (p PGN) PDU() PDU        { return p.pdu }

// Number returns the PGN as quoted in J1939 documents. For PDU1 groups the
// destination address is not part of the number and reads as zero.
func (p PGN) Number() uint32 {
	if p.pdu.Type() == PDU1 {
		return p.Raw() &^ 0xFF
	}
	return p.Raw()
}

func (p PGN) String() string {
	return fmt.Sprintf("%05X", p.Raw())
}
