package mqtt

import MQTT "github.com/eclipse/paho.mqtt.golang"

// HandlerFunc receives messages for a subscribed topic.
type HandlerFunc func(topic string, payload []byte)

// StatusFunc returns the application specific part of a status report. The
// value must marshal to JSON.
type StatusFunc func() any

// pahoClient is the subset of MQTT.Client used here.
type pahoClient interface {
	Connect() MQTT.Token
	Disconnect(quiesce uint)
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) MQTT.Token
	Subscribe(topic string, qos byte, callback MQTT.MessageHandler) MQTT.Token
}
