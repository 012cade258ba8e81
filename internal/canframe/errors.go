package canframe

import "fmt"

// ErrorKind identifies why a frame failed to decode. Each field has a
// "missing" kind raised when the input ends inside it; fields with a fixed
// value also have a "must be" kind raised on mismatch.
type ErrorKind uint8

const (
	StartOfFrameMissing ErrorKind = iota + 1
	StartOfFrameMustBeZero
	IdentifierMissing
	IdentifierAMissing
	IdentifierBMissing
	SubstituteRemoteRequestMissing
	SubstituteRemoteRequestMustBeOne
	RemoteTransmissionRequestMissing
	IdentifierExtensionBitMissing
	IdentifierExtensionBitMustBeZero
	IdentifierExtensionBitMustBeOne
	ReservedBitOneMissing
	ReservedBitZeroMissing
	DataLengthCodeMissing
	DataFieldMissing
	CyclicRedundancyCheckMissing
	CyclicRedundancyCheckDelimiterMissing
	CyclicRedundancyCheckDelimiterMustBeOne
	AcknowledgementSlotMissing
	AcknowledgementDelimiterMissing
	AcknowledgementDelimiterMustBeOne
	EndOfFrameMissing
	EndOfFrameMustBeOne
	InterFrameSpacingMissing
	InterFrameSpacingMustBeOne
)

var kindNames = map[ErrorKind]string{
	StartOfFrameMissing:                     "StartOfFrameMissing",
	StartOfFrameMustBeZero:                  "StartOfFrameMustBeZero",
	IdentifierMissing:                       "IdentifierMissing",
	IdentifierAMissing:                      "IdentifierAMissing",
	IdentifierBMissing:                      "IdentifierBMissing",
	SubstituteRemoteRequestMissing:          "SubstituteRemoteRequestMissing",
	SubstituteRemoteRequestMustBeOne:        "SubstituteRemoteRequestMustBeOne",
	RemoteTransmissionRequestMissing:        "RemoteTransmissionRequestMissing",
	IdentifierExtensionBitMissing:           "IdentifierExtensionBitMissing",
	IdentifierExtensionBitMustBeZero:        "IdentifierExtensionBitMustBeZero",
	IdentifierExtensionBitMustBeOne:         "IdentifierExtensionBitMustBeOne",
	ReservedBitOneMissing:                   "ReservedBitOneMissing",
	ReservedBitZeroMissing:                  "ReservedBitZeroMissing",
	DataLengthCodeMissing:                   "DataLengthCodeMissing",
	DataFieldMissing:                        "DataFieldMissing",
	CyclicRedundancyCheckMissing:            "CyclicRedundancyCheckMissing",
	CyclicRedundancyCheckDelimiterMissing:   "CyclicRedundancyCheckDelimiterMissing",
	CyclicRedundancyCheckDelimiterMustBeOne: "CyclicRedundancyCheckDelimiterMustBeOne",
	AcknowledgementSlotMissing:              "AcknowledgementSlotMissing",
	AcknowledgementDelimiterMissing:         "AcknowledgementDelimiterMissing",
	AcknowledgementDelimiterMustBeOne:       "AcknowledgementDelimiterMustBeOne",
	EndOfFrameMissing:                       "EndOfFrameMissing",
	EndOfFrameMustBeOne:                     "EndOfFrameMustBeOne",
	InterFrameSpacingMissing:                "InterFrameSpacingMissing",
	InterFrameSpacingMustBeOne:              "InterFrameSpacingMustBeOne",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// Error lets a kind be used as a sentinel with errors.Is.
func (k ErrorKind) Error() string { return "canframe: " + k.String() }

// Truncated reports whether the kind signals that the input ended early.
func (k ErrorKind) Truncated() bool {
	switch k {
	case StartOfFrameMissing, IdentifierMissing, IdentifierAMissing, IdentifierBMissing,
		SubstituteRemoteRequestMissing, RemoteTransmissionRequestMissing,
		IdentifierExtensionBitMissing, ReservedBitOneMissing, ReservedBitZeroMissing,
		DataLengthCodeMissing, DataFieldMissing, CyclicRedundancyCheckMissing,
		CyclicRedundancyCheckDelimiterMissing, AcknowledgementSlotMissing,
		AcknowledgementDelimiterMissing, EndOfFrameMissing, InterFrameSpacingMissing:
		return true
	}
	return false
}

// DecodeError reports the first field that could not be decoded.
type DecodeError struct {
	Kind   ErrorKind
	Field  string
	Offset int // first bit of the field in the destuffed stream
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("canframe: %s (%s at bit %d)", e.Kind.String(), e.Field, e.Offset)
}

func (e *DecodeError) Unwrap() error { return e.Kind }
