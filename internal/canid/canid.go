// Package canid models CAN bus identifiers and their database encoding.
//
// ID and DBID are closed sum types: the only implementations are Standard and
// Extended (ID) and DBStandard and DBExtended (DBID). Consumers switch on the
// concrete type.
package canid

import (
	"fmt"

	"github.com/farouk15160/canbits/internal/bitwidth"
)

const (
	// StandardWidth is the width of a CAN 2.0A identifier.
	StandardWidth = 11
	// ExtendedWidth is the width of a CAN 2.0B identifier.
	ExtendedWidth = 29

	// MaxStandard is the largest 11-bit identifier.
	MaxStandard = 0x7FF
	// MaxExtended is the largest 29-bit identifier.
	MaxExtended = 0x1FFFFFFF
)

// ID is a logical bus identifier, either Standard or Extended.
type ID interface {
	// Value returns the identifier bits without any flags.
	Value() uint32
	// IsExtended reports whether the identifier is 29 bits wide.
	IsExtended() bool
	String() string

	isID()
}

// Standard is an 11-bit identifier.
type Standard uint16

// Extended is a 29-bit identifier.
type Extended uint32

// NewStandard validates v as an 11-bit identifier.
func NewStandard(v uint16) (Standard, error) {
	if err := bitwidth.Check("standard identifier", uint64(v), StandardWidth); err != nil {
		return 0, err
	}
	return Standard(v), nil
}

// NewExtended validates v as a 29-bit identifier.
func NewExtended(v uint32) (Extended, error) {
	if err := bitwidth.Check("extended identifier", uint64(v), ExtendedWidth); err != nil {
		return 0, err
	}
	return Extended(v), nil
}

func (s Standard) Value() uint32    { return uint32(s) }
func (s Standard) IsExtended() bool { return false }
func (s Standard) String() string   { return fmt.Sprintf("0x%03X", uint16(s)) }
func (Standard) isID()              {}

func (e Extended) Value() uint32    { return uint32(e) }
func (e Extended) IsExtended() bool { return true }
func (e Extended) String() string   { return fmt.Sprintf("0x%08X", uint32(e)) }
func (Extended) isID()              {}

// Linux SocketCAN can_id flags and masks.
const (
	socketCANEFF     = 0x80000000
	socketCANRTR     = 0x40000000
	socketCANEffMask = 0x1FFFFFFF
	socketCANSffMask = 0x7FF
)

// FromSocketCAN interprets a Linux can_frame.can_id. The EFF flag selects the
// variant; the RTR and ERR flags are ignored.
func FromSocketCAN(raw uint32) ID {
	if raw&socketCANEFF != 0 {
		return Extended(raw & socketCANEffMask)
	}
	return Standard(raw & socketCANSffMask)
}

// SocketCAN encodes id as a Linux can_frame.can_id, setting the EFF flag for
// extended identifiers.
func SocketCAN(id ID) uint32 {
	switch v := id.(type) {
	case Extended:
		return uint32(v)&socketCANEffMask | socketCANEFF
	case Standard:
		return uint32(v) & socketCANSffMask
	}
	return 0
}

// SocketCANRemote returns the RTR flag to OR into a can_id.
func SocketCANRemote(remote bool) uint32 {
	if remote {
		return socketCANRTR
	}
	return 0
}
