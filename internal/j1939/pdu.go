// Package j1939 decomposes 29-bit CAN identifiers into SAE J1939 priority,
// parameter group number and source address.
package j1939

import "fmt"

// PDU1FormatLimit is the first PDU format value that denotes a broadcast
// (PDU2) parameter group.
const PDU1FormatLimit = 0xF0

// PDUType distinguishes peer-to-peer from broadcast parameter groups.
type PDUType uint8

const (
	// PDU1 messages address a destination in the PDU specific byte.
	PDU1 PDUType = iota + 1
	// PDU2 messages are broadcast; the specific byte is a group extension.
	PDU2
)

func (t PDUType) String() string {
	switch t {
	case PDU1:
		return "PDU1"
	case PDU2:
		return "PDU2"
	}
	return fmt.Sprintf("PDUType(%d)", uint8(t))
}

// PDUTypeOf classifies a PDU format byte.
func PDUTypeOf(format uint8) PDUType {
	if format < PDU1FormatLimit {
		return PDU1
	}
	return PDU2
}

// PDU is the format/specific byte pair in the low 16 bits of a PGN.
type PDU struct {
	format   uint8
	specific uint8
}

// NewPDU builds a PDU from its format and specific bytes.
func NewPDU(format, specific uint8) PDU {
	return PDU{format: format, specific: specific}
}

// PDUFromRaw splits a 16-bit value into format (high) and specific (low) bytes.
func PDUFromRaw(raw uint16) PDU {
	return NewPDU(uint8(raw>>8), uint8(raw))
}

// Raw returns format<<8 | specific.
func (p PDU) Raw() uint16 {
	return uint16(p.format)<<8 | uint16(p.specific)
}

// Format returns the PDU format byte.
func (p PDU) Format() uint8 { return p.format }

// Specific returns the PDU specific byte.
func (p PDU) Specific() uint8 { return p.specific }

// Type classifies the PDU.
func (p PDU) Type() PDUType { return PDUTypeOf(p.format) }

// DestinationAddress returns the specific byte for PDU1 messages.
func (p PDU) DestinationAddress() (uint8, bool) {
	if p.Type() != PDU1 {
		return 0, false
	}
	return p.specific, true
}

// GroupExtension returns the specific byte for PDU2 messages.
func (p PDU) GroupExtension() (uint8, bool) {
	if p.Type() != PDU2 {
		return 0, false
	}
	return p.specific, true
}

func (p PDU) String() string {
	return fmt.Sprintf("%s(%02X,%02X)", p.Type(), p.format, p.specific)
}
