package bridge

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/pion/logging"
)

// MQTTSink publishes each record on its routed topic.
type MQTTSink struct {
	pub Publisher
}

func NewMQTTSink(pub Publisher) *MQTTSink {
	return &MQTTSink{pub: pub}
}

func (s *MQTTSink) Name() string { return "mqtt" }

func (s *MQTTSink) Send(_ context.Context, msg Message) error {
	if err := s.pub.Publish(msg.Topic, msg.Payload); err != nil {
		return errors.Wrapf(err, "publish to %s", msg.Topic)
	}
	return nil
}

// Redis key layout.
const (
	RedisKeyPrefix = "canbits:frame:"
	RedisChannel   = "canbits:frames"
)

// RedisSink stores the latest record per identifier in a hash and announces
// it on a pub/sub channel.
type RedisSink struct {
	client RedisClient
}

func NewRedisSink(client RedisClient) *RedisSink {
	return &RedisSink{client: client}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Send(ctx context.Context, msg Message) error {
	r := msg.Record
	key := RedisKeyPrefix + r.ID
	fields := []interface{}{
		"kind", r.Kind,
		"dlc", r.DLC,
		"data", r.Data,
		"crc", r.CRC,
		"topic", msg.Topic,
		"unixtime", r.UnixTime,
	}
	if r.J1939 != nil {
		fields = append(fields,
			"pgn", r.J1939.PGN,
			"priority", r.J1939.Priority,
			"source", r.J1939.Source,
		)
	}
	if err := s.client.HSet(ctx, key, fields...).Err(); err != nil {
		return errors.Wrapf(err, "failed to store %s", key)
	}
	if err := s.client.Publish(ctx, RedisChannel, msg.Payload).Err(); err != nil {
		return errors.Wrapf(err, "failed to publish on %s", RedisChannel)
	}
	return nil
}

// LogSink writes a one-line summary of every record.
type LogSink struct {
	log logging.LeveledLogger
}

func NewLogSink(factory logging.LoggerFactory) *LogSink {
	return &LogSink{log: factory.NewLogger("frames")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(_ context.Context, msg Message) error {
	s.log.Info(summary(msg.Record))
	return nil
}

func summary(r Record) string {
	line := fmt.Sprintf("%s id=%s dlc=%d data=%s crc=%04X", r.Kind, r.ID, r.DLC, r.Data, r.CRC)
	if r.J1939 != nil {
		line += fmt.Sprintf(" pgn=%s", r.J1939.PGN)
		if r.J1939.PGNName != "" {
			line += "(" + r.J1939.PGNName + ")"
		}
		line += fmt.Sprintf(" sa=%02X", r.J1939.Source)
	}
	return line
}
