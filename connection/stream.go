package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	gorilla "github.com/gorilla/websocket"
	"gopkg.in/tomb.v2"

	"github.com/StyMaar/ezsockets/connection/socket"
	"github.com/StyMaar/ezsockets/internal/unbounded"
	"github.com/StyMaar/ezsockets/logger"
	"github.com/StyMaar/ezsockets/message"
)

// Stream owns the exclusive inbound half of a socket. Each Recv call
// enqueues a request carrying a one-shot reply slot; a single actor
// goroutine serves the requests in order, performing exactly one read per
// request. The n-th request enqueued is answered with the n-th message read,
// so concurrent receivers cannot steal each other's messages. A *Stream is
// freely shareable across goroutines.
type Stream struct {
	tmb    tomb.Tomb
	logger *logger.Logger

	stream   socket.Stream
	requests *unbounded.Queue[chan message.RawMessage]
}

// NewStream takes exclusive ownership of the inbound half and starts the
// actor. No other code path may read from the stream afterwards.
func NewStream(logger *logger.Logger, stream socket.Stream) *Stream {
	s := &Stream{
		logger:   logger,
		stream:   stream,
		requests: unbounded.New[chan message.RawMessage](),
	}
	s.tmb.Go(s.run)
	return s
}

// Recv suspends the caller until its request is answered with the next
// inbound message. It returns io.EOF once the stream has ended or the actor
// has shut down, and ctx.Err() if the caller gives up first; an abandoned
// request is discarded by the actor without disturbing later receivers.
func (s *Stream) Recv(ctx context.Context) (message.RawMessage, error) {
	reply := make(chan message.RawMessage, 1)
	if !s.requests.Push(reply) {
		return message.RawMessage{}, io.EOF
	}

	select {
	case m, ok := <-reply:
		if !ok {
			return message.RawMessage{}, io.EOF
		}
		return m, nil
	case <-s.tmb.Dead():
		// The actor may have answered this request just before dying
		select {
		case m, ok := <-reply:
			if ok {
				return m, nil
			}
		default:
		}
		return message.RawMessage{}, io.EOF
	case <-ctx.Done():
		return message.RawMessage{}, ctx.Err()
	}
}

// Close shuts the actor down. Requests still pending are dropped; their
// callers observe io.EOF.
func (s *Stream) Close(reason error) {
	if !s.tmb.Alive() {
		return
	}
	s.logger.Infof("Stream closing because: %s", reason)

	s.tmb.Kill(reason)
	s.requests.Close()

	// Unblock an in-flight read
	if closer, ok := s.stream.(io.Closer); ok {
		closer.Close()
	}

	s.tmb.Wait()
}

// Done is closed once the actor has terminated
func (s *Stream) Done() <-chan struct{} {
	return s.tmb.Dead()
}

func (s *Stream) Err() error {
	if err := s.tmb.Err(); err != tomb.ErrStillAlive {
		return err
	}
	return nil
}

func (s *Stream) run() error {
	defer s.requests.Close()
	defer s.logger.Info("Stream stopped")
	s.logger.Info("Stream started")

	for {
		reply, ok := s.requests.Pop(s.tmb.Dying())
		if !ok {
			return nil
		}

		messageType, data, err := s.stream.ReadMessage()
		if !s.tmb.Alive() {
			return nil
		} else if err != nil {
			if endOfStream(err) {
				// The peer is done sending; answer this and every later
				// request with end-of-stream
				close(reply)
				continue
			}
			return fmt.Errorf("failed to read from the underlying stream: %w", err)
		}

		m, err := message.FromWire(messageType, data)
		if err != nil {
			// Contract violation by the underlying library; kills this
			// actor only
			return err
		}

		// The reply slot holds one message, so delivery never blocks; if
		// the caller already gave up, the message is simply discarded
		reply <- m
	}
}

// endOfStream distinguishes the peer finishing cleanly from a transport
// failure. Both end the stream; only the latter is recorded as the actor's
// death reason.
func endOfStream(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		gorilla.IsCloseError(err,
			gorilla.CloseNormalClosure,
			gorilla.CloseGoingAway,
			gorilla.CloseNoStatusReceived)
}
