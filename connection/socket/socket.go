/*
The socket package defines the contract this module expects from an
already-established duplex channel. The channel is exclusive-access: a single
owner may read and a single owner may write at any moment. The connection
package lifts that restriction by giving each half to a dedicated actor.

The read/write shape intentionally matches *gorilla.Conn, so a raw gorilla
connection (or the gorillasocket adapter, which also surfaces control frames)
can be handed straight to connection.New.
*/
package socket

// Stream is the inbound half: a lazy sequence of frames, one per call.
// End of stream and transport failure both surface as a read error.
type Stream interface {
	ReadMessage() (messageType int, data []byte, err error)
}

// Sink is the outbound half: accepts one frame at a time for transmission
type Sink interface {
	WriteMessage(messageType int, data []byte) error
}

// Socket is a full duplex channel. Close releases the underlying transport
// and unblocks any in-flight read.
type Socket interface {
	Stream
	Sink
	Close() error
}
