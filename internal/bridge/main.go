// Package bridge turns lines of raw CAN bit strings into decoded records and
// fans them out to MQTT, Redis, SocketCAN and the log.
package bridge

import (
	"time"

	"github.com/pion/logging"

	"github.com/farouk15160/canbits/internal/canframe"
	"github.com/farouk15160/canbits/internal/config"
)

// Config configures a Bridge.
type Config struct {
	Decoder canframe.Decoder
	// Routes selects topic and encoding per frame; nil uses DefaultTopic.
	Routes *config.Config
	// Format is the record encoding when a route does not name one.
	Format        string
	Sinks         []Sink
	LoggerFactory logging.LoggerFactory
	// Now stamps records; defaults to time.Now.
	Now func() time.Time
}

// Bridge runs the decode pipeline.
type Bridge struct {
	decoder canframe.Decoder
	routes  *config.Config
	format  string
	sinks   []Sink
	now     func() time.Time
	log     logging.LeveledLogger
	stats   Stats
}

// New builds a bridge from cfg.
func New(cfg Config) *Bridge {
	factory := cfg.LoggerFactory
	if factory == nil {
		factory = logging.NewDefaultLoggerFactory()
	}
	b := &Bridge{
		decoder: cfg.Decoder,
		routes:  cfg.Routes,
		format:  cfg.Format,
		sinks:   cfg.Sinks,
		now:     cfg.Now,
		log:     factory.NewLogger("bridge"),
	}
	if b.format == "" {
		b.format = config.FormatJSON
	}
	if b.now == nil {
		b.now = time.Now
	}
	for _, s := range b.sinks {
		b.log.Infof("Sink enabled: %s", s.Name())
	}
	return b
}

// Stats returns a snapshot of the pipeline counters.
func (b *Bridge) Stats() Snapshot {
	return b.stats.Snapshot()
}
