package bridge

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brutella/can"
	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"

	"github.com/farouk15160/canbits/internal/bitstream"
	"github.com/farouk15160/canbits/internal/canframe"
	"github.com/farouk15160/canbits/internal/canid"
	"github.com/farouk15160/canbits/internal/config"
	"github.com/farouk15160/canbits/internal/j1939"
)

// Frame kinds as they appear in records and default topics.
const (
	KindBase     = "base"
	KindExtended = "extended"
)

// J1939Record is the J1939 view of an extended identifier.
type J1939Record struct {
	Priority    uint8  `json:"priority"`
	PGN         string `json:"pgn"`
	PGNName     string `json:"pgn_name,omitempty"`
	Source      uint8  `json:"source"`
	Destination *uint8 `json:"destination,omitempty"`
}

// Record is the published form of a decoded frame.
type Record struct {
	Kind      string       `json:"kind"`
	ID        string       `json:"id"`
	DBID      uint32       `json:"dbid"`
	DLC       uint8        `json:"dlc"`
	Data      string       `json:"data"`
	DataBits  string       `json:"data_bits,omitempty"`
	CRC       uint16       `json:"crc"`
	Remote    bool         `json:"remote,omitempty"`
	Length    int          `json:"length"`
	StuffBits int          `json:"stuff_bits"`
	J1939     *J1939Record `json:"j1939,omitempty"`
	UnixTime  int64        `json:"unixtime"` // nanoseconds

	canID canid.ID
}

// CANID returns the bus identifier the record was built from.
func (r Record) CANID() canid.ID { return r.canID }

// NewRecord converts a decoded frame into a record stamped with now.
func NewRecord(f canframe.Frame, now time.Time) Record {
	id := f.ID()
	r := Record{
		Kind:      KindBase,
		ID:        id.String(),
		DBID:      canid.ToDBID(id).Raw(),
		DLC:       f.DLC(),
		Data:      hex.EncodeToString(f.Payload()),
		DataBits:  bitstream.FromBytes(f.Payload()).String(),
		CRC:       f.CRC(),
		Remote:    f.Remote(),
		Length:    f.Len(),
		StuffBits: f.StuffedBitCount(),
		UnixTime:  now.UnixNano(),
		canID:     id,
	}
	if id.IsExtended() {
		r.Kind = KindExtended
		if jid, err := j1939.FromCANID(id); err == nil {
			r.J1939 = newJ1939Record(jid)
		}
	}
	return r
}

func newJ1939Record(id j1939.ID) *J1939Record {
	jr := &J1939Record{
		Priority: uint8(id.Priority()),
		PGN:      fmt.Sprintf("%05X", id.PGN().Number()),
		PGNName:  j1939.Name(id.PGN()),
		Source:   id.SourceAddress(),
	}
	if da, ok := id.Destination(); ok {
		jr.Destination = &da
	}
	return jr
}

// DefaultTopic is used when no routing rule matches.
func DefaultTopic(r Record) string {
	return fmt.Sprintf("canbits/frames/%s/%X", r.Kind, r.canID.Value())
}

// EncodeRecord serializes r as JSON or CBOR. CBOR keys follow the JSON tags.
func EncodeRecord(r Record, format string) ([]byte, error) {
	switch format {
	case config.FormatJSON, "":
		return json.Marshal(r)
	case config.FormatCBOR:
		return cbor.Marshal(r)
	}
	return nil, errors.Newf("unknown record format %q", format)
}

// ToCANFrame converts a decoded frame into a SocketCAN frame. Payloads
// longer than eight bytes are truncated.
func ToCANFrame(f canframe.Frame) can.Frame {
	frame := can.Frame{
		ID: canid.SocketCAN(f.ID()) | canid.SocketCANRemote(f.Remote()),
	}
	n := copy(frame.Data[:], f.Payload())
	frame.Length = uint8(n)
	return frame
}
