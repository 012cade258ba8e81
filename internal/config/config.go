package config

import (
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/farouk15160/canbits/internal/canid"
	"github.com/farouk15160/canbits/internal/j1939"
	"github.com/pion/logging"
)

// Record encodings.
const (
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// Route sends matching frames to an MQTT topic. CanID and PGN are hex
// strings ("0x18FF0105", "0xFF01"); an empty matcher matches every frame.
// A CanID matches extended frames when it is wider than 11 bits or written
// with eight digits ("0x00000014", as in a record's id), standard frames
// otherwise.
type Route struct {
	Topic  string `json:"topic"`
	CanID  string `json:"canid"`
	PGN    string `json:"pgn"`
	Format string `json:"format"` // empty uses the -format flag

	canID    uint32
	extended bool
	pgn      uint32
}

// Config holds the routing rules, evaluated in file order.
type Config struct {
	Routes []Route `json:"routes"`
}

// LoadConfig reads and validates the JSON rules file at path.
func LoadConfig(path string, log logging.LeveledLogger) (*Config, error) {
	if log != nil {
		log.Infof("Loading configuration from: %s", path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open config file '%s'", path)
	}
	defer file.Close()

	cfg, err := Parse(file)
	if err != nil {
		return nil, errors.Wrapf(err, "config file '%s'", path)
	}
	if log != nil {
		if len(cfg.Routes) == 0 {
			log.Warnf("Configuration file '%s' contains no routes, using default topics", path)
		} else {
			log.Infof("Config loaded successfully: %d routes", len(cfg.Routes))
		}
	}
	return cfg, nil
}

// Parse decodes and validates rules from r.
func Parse(r io.Reader) (*Config, error) {
	var cfg Config
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode JSON rules")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every route and caches the parsed matchers.
func (c *Config) Validate() error {
	for i := range c.Routes {
		r := &c.Routes[i]
		if r.Topic == "" {
			return errors.Newf("route %d: topic is required", i)
		}
		if strings.ContainsAny(r.Topic, "+#") {
			return errors.Newf("route %d: topic %q contains a wildcard", i, r.Topic)
		}
		if r.Format != "" {
			if err := checkFormat(r.Format); err != nil {
				return errors.Wrapf(err, "route %d", i)
			}
		}
		var err error
		if r.CanID != "" {
			if r.canID, err = parseHex(r.CanID, canid.ExtendedWidth); err != nil {
				return errors.Wrapf(err, "route %d: canid", i)
			}
			r.extended = r.canID > canid.MaxStandard || hexDigits(r.CanID) == 8
		}
		if r.PGN != "" {
			if r.pgn, err = parseHex(r.PGN, j1939.PGNWidth); err != nil {
				return errors.Wrapf(err, "route %d: pgn", i)
			}
		}
	}
	return nil
}

// Route returns the first rule matching id. The PGN matcher compares
// against j1939 PGN numbers and never matches standard identifiers.
func (c *Config) Route(id canid.ID) (Route, bool) {
	if c == nil {
		return Route{}, false
	}
	for _, r := range c.Routes {
		if r.Matches(id) {
			return r, true
		}
	}
	return Route{}, false
}

// Matches reports whether id satisfies both matchers of the route.
func (r Route) Matches(id canid.ID) bool {
	if r.CanID != "" && (id.Value() != r.canID || id.IsExtended() != r.extended) {
		return false
	}
	if r.PGN != "" {
		jid, err := j1939.FromCANID(id)
		if err != nil || jid.PGN().Number() != r.pgn {
			return false
		}
	}
	return true
}

func parseHex(text string, width int) (uint32, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
	v, err := strconv.ParseUint(digits, 16, width)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid hex value %q", text)
	}
	return uint32(v), nil
}

func hexDigits(text string) int {
	return len(strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X"))
}

func checkFormat(format string) error {
	switch format {
	case FormatJSON, FormatCBOR:
		return nil
	}
	return errors.Newf("unknown record format %q", format)
}

// ParseLogLevel maps a -log value to a pion log level.
func ParseLogLevel(level string) (logging.LogLevel, error) {
	switch strings.ToLower(level) {
	case "disabled", "off":
		return logging.LogLevelDisabled, nil
	case "error":
		return logging.LogLevelError, nil
	case "warn", "warning":
		return logging.LogLevelWarn, nil
	case "info", "":
		return logging.LogLevelInfo, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "trace":
		return logging.LogLevelTrace, nil
	}
	return logging.LogLevelDisabled, errors.Newf("unknown log level %q", level)
}
