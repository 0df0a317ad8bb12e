// Package bmv2 talks to the P4 behavioral model's nanomsg-based
// simulated network devices. Normally bmv2 uses host veth devices for
// packet I/O, which needs superuser privileges; with its --packet-in
// option it simulates devices over a nanomsg pair socket instead, which
// is friendlier to CI. This package implements that wire protocol.
package bmv2

import (
	"encoding/binary"
	"fmt"
)

// MessageType identifies a simulated-device message. The values must
// match bmv2's dev_mgr_packet_in.cpp.
type MessageType int32

const (
	MsgPortAdd       MessageType = 0
	MsgPortRemove    MessageType = 1
	MsgPortSetStatus MessageType = 2
	MsgPacketIn      MessageType = 3
	MsgPacketOut     MessageType = 4
	MsgInfoReq       MessageType = 5
	MsgInfoRep       MessageType = 6
)

// Port status values carried in the "more" field of a PortSetStatus
// message. These must match bmv2's port_monitor.h.
const (
	portStatusUp   int32 = 2
	portStatusDown int32 = 3
)

// headerLen is the fixed message header: type, port, and more, each a
// native-endian int32.
const headerLen = 12

// Message is one simulated-device message. Port is meaningful for the
// port and packet messages; More carries the port status for
// PortSetStatus and the payload length for packet messages; Payload is
// non-empty only for packet messages.
type Message struct {
	Type    MessageType
	Port    int32
	More    int32
	Payload Frame
}

// PortAdd builds a message creating the given port. The port is
// initially up.
func PortAdd(port int32) Message {
	return Message{Type: MsgPortAdd, Port: port}
}

// PortRemove builds a message removing the given port.
func PortRemove(port int32) Message {
	return Message{Type: MsgPortRemove, Port: port}
}

// PortUp builds a message bringing the given port up.
func PortUp(port int32) Message {
	return Message{Type: MsgPortSetStatus, Port: port, More: portStatusUp}
}

// PortDown builds a message taking the given port down.
func PortDown(port int32) Message {
	return Message{Type: MsgPortSetStatus, Port: port, More: portStatusDown}
}

// PacketIn builds a message causing the switch program to receive frame
// on the given port.
func PacketIn(port int32, frame Frame) Message {
	return Message{Type: MsgPacketIn, Port: port, More: int32(len(frame)), Payload: frame}
}

// InfoReq builds an info request; bmv2 answers with an InfoRep, which
// makes it usable as an application-level echo.
func InfoReq() Message {
	return Message{Type: MsgInfoReq}
}

// IsPortUp reports whether a PortSetStatus message signals port-up.
func (m Message) IsPortUp() bool {
	return m.Type == MsgPortSetStatus && m.More == portStatusUp
}

// Encode serializes the message into bmv2's wire format: a 12-byte
// native-endian header followed by the payload.
func (m Message) Encode() []byte {
	buf := make([]byte, headerLen+len(m.Payload))
	binary.NativeEndian.PutUint32(buf[0:4], uint32(m.Type))
	binary.NativeEndian.PutUint32(buf[4:8], uint32(m.Port))
	binary.NativeEndian.PutUint32(buf[8:12], uint32(m.More))
	copy(buf[headerLen:], m.Payload)
	return buf
}

// Decode parses a wire message. It rejects messages shorter than the
// header and messages with an unknown type.
func Decode(data []byte) (Message, error) {
	if len(data) < headerLen {
		return Message{}, fmt.Errorf("message too short (%d bytes)", len(data))
	}

	m := Message{
		Type: MessageType(binary.NativeEndian.Uint32(data[0:4])),
		Port: int32(binary.NativeEndian.Uint32(data[4:8])),
		More: int32(binary.NativeEndian.Uint32(data[8:12])),
	}
	if len(data) > headerLen {
		m.Payload = append(Frame(nil), data[headerLen:]...)
	}

	switch m.Type {
	case MsgPortAdd, MsgPortRemove, MsgPortSetStatus, MsgPacketIn, MsgPacketOut, MsgInfoReq, MsgInfoRep:
		return m, nil
	default:
		return Message{}, fmt.Errorf("unknown message type %d", m.Type)
	}
}

// String returns a human-readable summary of the message.
func (m Message) String() string {
	switch m.Type {
	case MsgPortAdd:
		return fmt.Sprintf("PortAdd(%d)", m.Port)
	case MsgPortRemove:
		return fmt.Sprintf("PortRemove(%d)", m.Port)
	case MsgPortSetStatus:
		if m.IsPortUp() {
			return fmt.Sprintf("PortUp(%d)", m.Port)
		}
		return fmt.Sprintf("PortDown(%d)", m.Port)
	case MsgPacketIn:
		return fmt.Sprintf("PacketIn(%d, %s)", m.Port, m.Payload)
	case MsgPacketOut:
		return fmt.Sprintf("PacketOut(%d, %s)", m.Port, m.Payload)
	case MsgInfoReq:
		return "InfoReq"
	case MsgInfoRep:
		return "InfoRep"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(m.Type))
	}
}
