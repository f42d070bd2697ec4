package message

import (
	"encoding/binary"
	"fmt"

	gorilla "github.com/gorilla/websocket"
)

// CloseCode is the status code attached to a close frame. The numeric value
// is the code as it appears on the wire, so conversion to and from the
// underlying library's representation is the identity and loses nothing.
type CloseCode uint16

const (
	// Indicates a normal closure, meaning that the purpose for which the
	// connection was established has been fulfilled.
	CloseNormal CloseCode = 1000

	// Indicates that an endpoint is "going away", such as a server going
	// down or a browser having navigated away from a page.
	CloseAway CloseCode = 1001

	// Indicates that an endpoint is terminating the connection due to a
	// protocol error.
	CloseProtocol CloseCode = 1002

	// Indicates that an endpoint is terminating the connection because it
	// has received a type of data it cannot accept.
	CloseUnsupported CloseCode = 1003

	// Indicates that no status code was included in a closing frame.
	CloseStatus CloseCode = 1005

	// Indicates an abnormal closure.
	CloseAbnormal CloseCode = 1006

	// Indicates that an endpoint is terminating the connection because it
	// has received data within a message that was not consistent with the
	// type of the message (e.g., non-UTF-8 data within a text message).
	CloseInvalid CloseCode = 1007

	// Indicates that an endpoint is terminating the connection because it
	// has received a message that violates its policy.
	ClosePolicy CloseCode = 1008

	// Indicates that an endpoint is terminating the connection because it
	// has received a message that is too big for it to process.
	CloseSize CloseCode = 1009

	// Indicates that a client is terminating the connection because it
	// expected the server to negotiate one or more extensions that the
	// server did not return in the handshake response.
	CloseExtension CloseCode = 1010

	// Indicates that a server is terminating the connection because it
	// encountered an unexpected condition that prevented it from fulfilling
	// the request.
	CloseError CloseCode = 1011

	// Indicates that the server is restarting.
	CloseRestart CloseCode = 1012

	// Indicates that the server is overloaded and the client should either
	// connect to a different IP or retry after a user action.
	CloseAgain CloseCode = 1013

	// Reserved for the transport layer; signals a TLS handshake failure.
	CloseTLS CloseCode = 1015
)

// CloseCodeClass partitions the numeric close-code space the same way the
// protocol does: the codes registered by the RFC, the range reserved for
// future protocol use, the IANA-registered range, the range free for library
// and application use, and everything that is not valid on the wire at all.
type CloseCodeClass int

const (
	ClassRegistered CloseCodeClass = iota
	ClassReserved
	ClassIana
	ClassLibrary
	ClassBad
)

func (c CloseCode) Class() CloseCodeClass {
	switch {
	case c >= 1000 && c <= 1015:
		switch c {
		case 1004, 1014:
			return ClassBad
		default:
			return ClassRegistered
		}
	case c >= 1016 && c <= 2999:
		return ClassReserved
	case c >= 3000 && c <= 3999:
		return ClassIana
	case c >= 4000 && c <= 4999:
		return ClassLibrary
	default:
		return ClassBad
	}
}

// CloseCodeFromWire converts the underlying library's status code
func CloseCodeFromWire(code int) CloseCode {
	return CloseCode(code)
}

// Wire converts back to the underlying library's status code
func (c CloseCode) Wire() int {
	return int(c)
}

func (c CloseCode) String() string {
	switch c {
	case CloseNormal:
		return "normal"
	case CloseAway:
		return "away"
	case CloseProtocol:
		return "protocol"
	case CloseUnsupported:
		return "unsupported"
	case CloseStatus:
		return "status"
	case CloseAbnormal:
		return "abnormal"
	case CloseInvalid:
		return "invalid"
	case ClosePolicy:
		return "policy"
	case CloseSize:
		return "size"
	case CloseExtension:
		return "extension"
	case CloseError:
		return "error"
	case CloseRestart:
		return "restart"
	case CloseAgain:
		return "again"
	case CloseTLS:
		return "tls"
	}

	switch c.Class() {
	case ClassReserved:
		return fmt.Sprintf("reserved(%d)", uint16(c))
	case ClassIana:
		return fmt.Sprintf("iana(%d)", uint16(c))
	case ClassLibrary:
		return fmt.Sprintf("library(%d)", uint16(c))
	default:
		return fmt.Sprintf("bad(%d)", uint16(c))
	}
}

// CloseFrame carries the status code and human-readable reason attached to a
// connection close.
type CloseFrame struct {
	Code   CloseCode
	Reason string
}

// CloseFrameFromWire decodes a close payload. An empty payload means the
// peer sent no status, which maps to the absence of a frame.
func CloseFrameFromWire(payload []byte) *CloseFrame {
	if len(payload) < 2 {
		return nil
	}
	return &CloseFrame{
		Code:   CloseCode(binary.BigEndian.Uint16(payload[:2])),
		Reason: string(payload[2:]),
	}
}

// Wire encodes the frame as a close payload. A nil frame encodes to an empty
// payload, meaning no status.
func (f *CloseFrame) Wire() []byte {
	if f == nil {
		return []byte{}
	}
	return gorilla.FormatCloseMessage(f.Code.Wire(), f.Reason)
}
