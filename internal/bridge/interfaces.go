package bridge

import (
	"context"

	"github.com/brutella/can"
	"github.com/go-redis/redis/v8"

	"github.com/farouk15160/canbits/internal/canframe"
)

// Message is one decoded frame ready for delivery.
type Message struct {
	Topic   string
	Payload []byte
	Record  Record
	Frame   canframe.Frame
}

// Sink delivers messages to one destination.
type Sink interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Publisher defines the MQTT publishing capabilities needed by the bridge.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// FramePublisher writes frames to a CAN bus; *can.Bus satisfies it.
type FramePublisher interface {
	Publish(frame can.Frame) error
}

// RedisClient is the subset of *redis.Client used by RedisSink.
type RedisClient interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}
