package config

import (
	"flag"
	"time"

	"github.com/cockroachdb/errors"
)

// Global command-line flag definitions.
var (
	DebugFlag         = flag.Bool("v", false, "Enable debug output (same as -log debug)")
	InputFlag         = flag.String("i", "-", "Input file with one bit string per line, - for stdin")
	MqttBrokerFlag    = flag.String("m", "", "MQTT broker (e.g. tcp://host:1883), empty disables MQTT")
	UsernameFlag      = flag.String("u", "", "MQTT username")
	ClientIDFlag      = flag.String("id", "canbits-client", "MQTT client ID")
	RedisAddrFlag     = flag.String("r", "", "Redis address (e.g. localhost:6379), empty disables Redis")
	CanIfaceFlag      = flag.String("c", "", "CAN interface to replay decoded frames on, empty disables")
	ConfigFileFlag    = flag.String("f", "", "Path to the JSON routing rules, optional")
	StuffWidthFlag    = flag.Int("n", 5, "Bit stuffing width")
	StuffedFlag       = flag.Bool("stuffed", true, "Input lines carry stuff bits")
	FormatFlag        = flag.String("format", FormatJSON, "Record encoding: json or cbor")
	LogLevelFlag      = flag.String("log", "info", "Log level: error, warn, info, debug, trace")
	StatsIntervalFlag = flag.Duration("stats", 0, "Interval for status reports, 0 disables")
)

const AppName = "canbits"

// Options is the parsed command line.
type Options struct {
	Input         string
	Broker        string
	Username      string
	ClientID      string
	RedisAddr     string
	CanIface      string
	ConfigFile    string
	StuffWidth    int
	Stuffed       bool
	Format        string
	LogLevel      string
	StatsInterval time.Duration
}

// FromFlags collects the flag values. Call after flag.Parse.
func FromFlags() Options {
	level := *LogLevelFlag
	if *DebugFlag {
		level = "debug"
	}
	return Options{
		Input:         *InputFlag,
		Broker:        *MqttBrokerFlag,
		Username:      *UsernameFlag,
		ClientID:      *ClientIDFlag,
		RedisAddr:     *RedisAddrFlag,
		CanIface:      *CanIfaceFlag,
		ConfigFile:    *ConfigFileFlag,
		StuffWidth:    *StuffWidthFlag,
		Stuffed:       *StuffedFlag,
		Format:        *FormatFlag,
		LogLevel:      level,
		StatsInterval: *StatsIntervalFlag,
	}
}

// EffectiveStuffWidth is the width handed to the decoder; zero when the
// input is already destuffed.
func (o Options) EffectiveStuffWidth() int {
	if !o.Stuffed {
		return 0
	}
	return o.StuffWidth
}

// Validate checks option values that flag parsing cannot.
func (o Options) Validate() error {
	if err := checkFormat(o.Format); err != nil {
		return err
	}
	if _, err := ParseLogLevel(o.LogLevel); err != nil {
		return err
	}
	if o.Stuffed && o.StuffWidth < 1 {
		return errors.Newf("stuff width must be at least 1, got %d", o.StuffWidth)
	}
	if o.StatsInterval < 0 {
		return errors.Newf("stats interval must not be negative, got %s", o.StatsInterval)
	}
	return nil
}
