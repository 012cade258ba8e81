package bridge

import (
	"context"

	"github.com/brutella/can"
	"github.com/cockroachdb/errors"
	"github.com/pion/logging"
)

// CANSink replays decoded frames onto a SocketCAN bus.
type CANSink struct {
	bus FramePublisher
	log logging.LeveledLogger
}

func NewCANSink(bus FramePublisher, factory logging.LoggerFactory) *CANSink {
	return &CANSink{bus: bus, log: factory.NewLogger("sink-can")}
}

func (s *CANSink) Name() string { return "can" }

func (s *CANSink) Send(_ context.Context, msg Message) error {
	if msg.Frame == nil {
		return errors.New("can sink: message carries no frame")
	}
	frame := ToCANFrame(msg.Frame)
	s.log.Tracef("Publishing CAN Frame: ID=%X Len=%d Data=%X", frame.ID, frame.Length, frame.Data[:frame.Length])
	if err := s.bus.Publish(frame); err != nil {
		return errors.Wrapf(err, "publishing CAN frame (ID: %X)", frame.ID)
	}
	return nil
}

// OpenCANBus activates a SocketCAN interface and runs its read loop in the
// background. The returned bus must be closed with Disconnect.
func OpenCANBus(iface string, factory logging.LoggerFactory) (*can.Bus, error) {
	log := factory.NewLogger("sink-can")
	log.Infof("Initializing CAN-Bus interface %s", iface)
	bus, err := can.NewBusForInterfaceWithName(iface)
	if err != nil {
		return nil, errors.Wrapf(err, "activating CAN-Bus interface %s", iface)
	}
	go func() {
		if err := bus.ConnectAndPublish(); err != nil {
			log.Errorf("CAN-Bus interface %s stopped: %v", iface, err)
			return
		}
		log.Infof("Disconnected from CAN interface %s", iface)
	}()
	return bus, nil
}
