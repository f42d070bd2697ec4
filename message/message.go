/*
The message package is the protocol-agnostic message model shared by the rest
of this module: the wire-adjacent RawMessage variant set, the caller-facing
Message subset, close frames and their status-code taxonomy, and the total
conversions between all of these and the gorilla/websocket wire
representation (frame opcode plus payload).
*/
package message

import (
	"fmt"

	gorilla "github.com/gorilla/websocket"
)

// Type enumerates the message variants carried over the connection
type Type int

const (
	Text Type = iota + 1
	Binary
	Ping
	Pong
	Close
)

func (t Type) String() string {
	switch t {
	case Text:
		return "text"
	case Binary:
		return "binary"
	case Ping:
		return "ping"
	case Pong:
		return "pong"
	case Close:
		return "close"
	default:
		return "unknown"
	}
}

// RawMessage is the full, wire-adjacent variant set: everything the peer can
// send us and everything we can put on the wire, including the protocol's
// control frames. Frame is set only for Close messages; Data carries the
// payload of every other variant.
type RawMessage struct {
	Type  Type
	Data  []byte
	Frame *CloseFrame
}

func NewText(text string) RawMessage {
	return RawMessage{Type: Text, Data: []byte(text)}
}

func NewBinary(data []byte) RawMessage {
	return RawMessage{Type: Binary, Data: data}
}

func NewPing(data []byte) RawMessage {
	return RawMessage{Type: Ping, Data: data}
}

func NewPong(data []byte) RawMessage {
	return RawMessage{Type: Pong, Data: data}
}

func NewClose(frame *CloseFrame) RawMessage {
	return RawMessage{Type: Close, Frame: frame}
}

// Text returns the payload as a string, which is how Text messages are meant
// to be read.
func (m RawMessage) Text() string {
	return string(m.Data)
}

// FromWire maps a gorilla frame onto a RawMessage. Anything other than the
// five message opcodes is a contract violation by the underlying library and
// comes back as an InvalidFrameError.
func FromWire(messageType int, data []byte) (RawMessage, error) {
	switch messageType {
	case gorilla.TextMessage:
		return RawMessage{Type: Text, Data: data}, nil
	case gorilla.BinaryMessage:
		return RawMessage{Type: Binary, Data: data}, nil
	case gorilla.PingMessage:
		return RawMessage{Type: Ping, Data: data}, nil
	case gorilla.PongMessage:
		return RawMessage{Type: Pong, Data: data}, nil
	case gorilla.CloseMessage:
		return RawMessage{Type: Close, Frame: CloseFrameFromWire(data)}, nil
	default:
		return RawMessage{}, &InvalidFrameError{MessageType: messageType}
	}
}

// Wire maps the message onto the gorilla frame representation
func (m RawMessage) Wire() (int, []byte) {
	switch m.Type {
	case Text:
		return gorilla.TextMessage, m.Data
	case Binary:
		return gorilla.BinaryMessage, m.Data
	case Ping:
		return gorilla.PingMessage, m.Data
	case Pong:
		return gorilla.PongMessage, m.Data
	case Close:
		return gorilla.CloseMessage, m.Frame.Wire()
	default:
		// A RawMessage is only ever constructed with one of the five
		// variants; anything else is a corrupted value
		panic(fmt.Sprintf("cannot encode a message of unknown type %d", m.Type))
	}
}

// Message is the caller-facing subset of RawMessage: just Text, Binary and
// Close. Ping and Pong are protocol-internal control frames a typical caller
// never constructs, though they still surface inbound as RawMessage.
type Message struct {
	Type  Type
	Data  []byte
	Frame *CloseFrame
}

func TextMessage(text string) Message {
	return Message{Type: Text, Data: []byte(text)}
}

func BinaryMessage(data []byte) Message {
	return Message{Type: Binary, Data: data}
}

func CloseMessage(frame *CloseFrame) Message {
	return Message{Type: Close, Frame: frame}
}

// Raw widens the caller-facing message into the full variant set
func (m Message) Raw() RawMessage {
	return RawMessage{Type: m.Type, Data: m.Data, Frame: m.Frame}
}

// Wire maps the message directly onto the gorilla frame representation
func (m Message) Wire() (int, []byte) {
	return m.Raw().Wire()
}
