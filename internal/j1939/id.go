package j1939

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/farouk15160/canbits/internal/bitwidth"
	"github.com/farouk15160/canbits/internal/canid"
)

// PriorityWidth is the width of the J1939 priority field.
const PriorityWidth = 3

// ErrStandardID is returned when an 11-bit identifier is converted to J1939.
var ErrStandardID = errors.New("j1939: unable to convert standard 11-bit CAN ID into 29-bit J1939 ID")

// ConversionError carries the identifier that could not be converted.
type ConversionError struct {
	ID canid.ID
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%v (id %s)", ErrStandardID, e.ID)
}

func (e *ConversionError) Unwrap() error { return ErrStandardID }

// Priority is the 3-bit message priority; 0 is highest.
type Priority uint8

// NewPriority validates v as a 3-bit priority.
func NewPriority(v uint8) (Priority, error) {
	if err := bitwidth.Check("priority", uint64(v), PriorityWidth); err != nil {
		return 0, err
	}
	return Priority(v), nil
}

// ID is a J1939 identifier. Raw layout: priority<<26 | pgn<<8 | source.
type ID struct {
	priority Priority
	pgn      PGN
	source   uint8
}

// NewID builds an identifier from its fields.
func NewID(priority Priority, pgn PGN, source uint8) ID {
	return ID{priority: priority & 0x7, pgn: pgn, source: source}
}

// FromRaw unpacks a 29-bit identifier.
func FromRaw(raw uint32) (ID, error) {
	if err := bitwidth.Check("j1939 identifier", uint64(raw), canid.ExtendedWidth); err != nil {
		return ID{}, err
	}
	pgn, err := NewPGNFromRaw((raw & 0x3FFFF00) >> 8)
	if err != nil {
		return ID{}, err
	}
	return ID{
		priority: Priority((raw & 0x1C000000) >> 26),
		pgn:      pgn,
		source:   uint8(raw),
	}, nil
}

// FromCANID interprets a bus identifier as J1939. Only extended identifiers
// qualify.
func FromCANID(id canid.ID) (ID, error) {
	switch v := id.(type) {
	case canid.Extended:
		return FromRaw(uint32(v))
	case canid.Standard:
		return ID{}, &ConversionError{ID: v}
	}
	return ID{}, errors.Newf("j1939: unsupported identifier type %T", id)
}

// Raw packs the identifier into 29 bits.
func (id ID) Raw() uint32 {
	return uint32(id.priority)<<26 | id.pgn.Raw()<<8 | uint32(id.source)
}

// CANID returns the identifier as an extended bus identifier.
func (id ID) CANID() canid.Extended {
	return canid.Extended(id.Raw())
}

func (id ID) Priority() Priority   { return id.priority }
func (id ID) PGN() PGN             { return id.pgn }
func (id ID) SourceAddress() uint8 { return id.source }

// Destination returns the destination address of a PDU1 message.
func (id ID) Destination() (uint8, bool) {
	return id.pgn.PDU().DestinationAddress()
}

func (id ID) String() string {
	return fmt.Sprintf("prio=%d pgn=%s sa=%02X", id.priority, id.pgn, id.source)
}
