package j1939

// Well-known parameter group numbers, as returned by PGN.Number.
const (
	PGNAcknowledgement     = 0x0E800
	PGNRequest             = 0x0EA00
	PGNTransportData       = 0x0EB00
	PGNTransportConnection = 0x0EC00
	PGNAddressClaimed      = 0x0EE00
	PGNProprietaryA        = 0x0EF00
	PGNElectronicEngine2   = 0x0F003
	PGNElectronicEngine1   = 0x0F004
	PGNActiveDiagnostic    = 0x0FECA
	PGNVehicleHours        = 0x0FEE5
	PGNEngineTemperature1  = 0x0FEEE
	PGNCruiseControlSpeed  = 0x0FEF1
	PGNFuelEconomy         = 0x0FEF2
	PGNAmbientConditions   = 0x0FEF5
	PGNProprietaryB        = 0x0FF00
)

var pgnNames = map[uint32]string{
	PGNAcknowledgement:     "ACKM",
	PGNRequest:             "RQST",
	PGNTransportData:       "TP.DT",
	PGNTransportConnection: "TP.CM",
	PGNAddressClaimed:      "ACL",
	PGNProprietaryA:        "PROPA",
	PGNElectronicEngine2:   "EEC2",
	PGNElectronicEngine1:   "EEC1",
	PGNActiveDiagnostic:    "DM1",
	PGNVehicleHours:        "HOURS",
	PGNEngineTemperature1:  "ET1",
	PGNCruiseControlSpeed:  "CCVS",
	PGNFuelEconomy:         "LFE",
	PGNAmbientConditions:   "AMB",
}

// Name returns the acronym of a well-known parameter group, or "" if the
// group is not in the table. Proprietary B covers the whole 0xFF00 page.
func Name(pgn PGN) string {
	n := pgn.Number()
	if name, ok := pgnNames[n]; ok {
		return name
	}
	if n&^0xFF == PGNProprietaryB {
		return "PROPB"
	}
	return ""
}
