/*
The connection package turns an exclusive-access duplex socket into a
shareable handle. A websocket connection supports one reader and one writer
at a time, so each half is given to a dedicated actor goroutine that is its
sole owner and serves callers from an ordered queue: sends are serialized
onto the wire in enqueue order, and concurrent receives are paired with
inbound messages in strict request order. Any number of goroutines may hold
the same *Connection and use it concurrently.
*/
package connection

import (
	"context"
	"sync"

	"github.com/StyMaar/ezsockets/connection/socket"
	"github.com/StyMaar/ezsockets/logger"
	"github.com/StyMaar/ezsockets/message"
)

type Connection struct {
	logger *logger.Logger
	socket socket.Socket

	sink   *Sink
	stream *Stream

	done      chan struct{}
	closeOnce sync.Once
}

// New takes exclusive ownership of the socket and spawns the two actors.
// The returned handle is the unit callers hold and share; nothing else may
// touch the socket afterwards.
func New(logger *logger.Logger, sock socket.Socket) *Connection {
	c := &Connection{
		logger: logger,
		socket: sock,
		sink:   NewSink(logger.GetComponentLogger("sink"), sock),
		stream: NewStream(logger.GetComponentLogger("stream"), sock),
		done:   make(chan struct{}),
	}

	go func() {
		<-c.sink.Done()
		<-c.stream.Done()
		close(c.done)
	}()

	return c
}

// Send enqueues a message for transmission and returns immediately. Writes
// reach the wire in enqueue order, never interleaved, even when many
// goroutines send through the same handle.
func (c *Connection) Send(m message.RawMessage) {
	c.sink.Send(m)
}

// Recv suspends the caller until the next inbound message is read on its
// behalf. io.EOF means the stream has ended, either because the peer closed
// the connection or because the transport failed; the handle does not
// distinguish the two.
func (c *Connection) Recv(ctx context.Context) (message.RawMessage, error) {
	return c.stream.Recv(ctx)
}

// Close shuts the connection down: queued sends are drained onto the wire,
// then the socket is closed and both actors terminate. Pending receives
// resolve to io.EOF. Closing more than once has no effect.
func (c *Connection) Close(reason error) {
	c.closeOnce.Do(func() {
		c.sink.Close(reason)
		c.stream.Close(reason)
		c.socket.Close()
	})
}

// Done is closed once both actors have terminated
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Err reports why the connection terminated: the transport failure that
// killed an actor, or the reason handed to Close. It is nil while the
// connection is alive and after the peer ends the stream cleanly.
func (c *Connection) Err() error {
	if err := c.stream.Err(); err != nil {
		return err
	}
	return c.sink.Err()
}
