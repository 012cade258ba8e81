package canid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"go.einride.tech/can/pkg/dbc"

	"github.com/farouk15160/canbits/internal/bitwidth"
)

// DBExtendedFlag marks an extended identifier in the database encoding.
const DBExtendedFlag = 1 << 31

// DBID is the identifier encoding used by DBC files and logging tools.
type DBID interface {
	// Raw returns the encoded value, including the extended flag.
	Raw() uint32
	String() string

	isDBID()
}

// DBStandard is an 11-bit identifier, stored as is.
type DBStandard uint16

// DBExtended is a 29-bit identifier widened to 32 bits with bit 31 set.
type DBExtended uint32

// NewDBExtended validates that raw carries the extended flag.
func NewDBExtended(raw uint32) (DBExtended, error) {
	if raw&DBExtendedFlag == 0 {
		return 0, errors.Newf("canid: database identifier 0x%08X lacks the extended flag", raw)
	}
	return DBExtended(raw), nil
}

// NewDBStandard validates v as an 11-bit identifier.
func NewDBStandard(v uint16) (DBStandard, error) {
	if err := bitwidth.Check("standard identifier", uint64(v), StandardWidth); err != nil {
		return 0, err
	}
	return DBStandard(v), nil
}

func (s DBStandard) Raw() uint32    { return uint32(s) }
func (s DBStandard) String() string { return fmt.Sprintf("%d", uint16(s)) }
func (DBStandard) isDBID()          {}

func (e DBExtended) Raw() uint32    { return uint32(e) }
func (e DBExtended) String() string { return fmt.Sprintf("%d", uint32(e)) }
func (DBExtended) isDBID()          {}

// MessageID returns the value as a DBC message identifier.
func (e DBExtended) MessageID() dbc.MessageID { return dbc.MessageID(e) }

// MessageID returns the value as a DBC message identifier.
func (s DBStandard) MessageID() dbc.MessageID { return dbc.MessageID(s) }

// ToDBID converts a bus identifier into its database encoding.
func ToDBID(id ID) DBID {
	switch v := id.(type) {
	case Standard:
		return DBStandard(v)
	case Extended:
		return DBExtended(uint32(v) | DBExtendedFlag)
	}
	return nil
}

// FromDBID converts a database identifier back into a bus identifier. The
// extended variant keeps only the low 29 bits.
func FromDBID(id DBID) ID {
	switch v := id.(type) {
	case DBStandard:
		return Standard(v)
	case DBExtended:
		return Extended(uint32(v) & MaxExtended)
	}
	return nil
}

// FromMessageID classifies a DBC message identifier. Standard identifiers
// wider than 11 bits are rejected.
func FromMessageID(m dbc.MessageID) (DBID, error) {
	if m.IsExtended() {
		return DBExtended(m), nil
	}
	if err := bitwidth.Check("standard identifier", uint64(m), StandardWidth); err != nil {
		return nil, err
	}
	return DBStandard(m), nil
}

// ParseDBID parses a decimal or 0x-prefixed hexadecimal database identifier,
// as written in DBC files ("BO_ 2566848773 ...") and logging tools.
func ParseDBID(text string) (DBID, error) {
	text = strings.TrimSpace(text)
	base := 10
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		text, base = text[2:], 16
	}
	v, err := strconv.ParseUint(text, base, 32)
	if err != nil {
		return nil, errors.Wrap(err, "canid: parse database identifier")
	}
	return FromMessageID(dbc.MessageID(v))
}
