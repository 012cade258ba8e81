package config

import (
	"io"

	"github.com/pion/logging"
)

// LoggerFactory builds the leveled logger factory for the -log level. A nil
// writer logs to stderr.
func (o Options) LoggerFactory(w io.Writer) (*logging.DefaultLoggerFactory, error) {
	level, err := ParseLogLevel(o.LogLevel)
	if err != nil {
		return nil, err
	}
	factory := logging.NewDefaultLoggerFactory()
	factory.DefaultLogLevel = level
	if w != nil {
		factory.Writer = w
	}
	return factory, nil
}
