package connection

import (
	"fmt"

	"gopkg.in/tomb.v2"

	"github.com/StyMaar/ezsockets/connection/socket"
	"github.com/StyMaar/ezsockets/internal/unbounded"
	"github.com/StyMaar/ezsockets/logger"
	"github.com/StyMaar/ezsockets/message"
)

// Sink owns the exclusive outbound half of a socket. Concurrent callers
// enqueue messages through Send; a single actor goroutine drains the queue
// and performs the writes, so frames hit the wire one at a time, in enqueue
// order. A *Sink is freely shareable across goroutines.
type Sink struct {
	tmb    tomb.Tomb
	logger *logger.Logger

	sink  socket.Sink
	queue *unbounded.Queue[message.RawMessage]
}

// NewSink takes exclusive ownership of the outbound half and starts the
// actor. No other code path may write to the sink afterwards.
func NewSink(logger *logger.Logger, sink socket.Sink) *Sink {
	s := &Sink{
		logger: logger,
		sink:   sink,
		queue:  unbounded.New[message.RawMessage](),
	}
	s.tmb.Go(s.run)
	return s
}

// Send enqueues a message and returns immediately. There is no completion
// signal: once the actor has died, messages are silently discarded.
func (s *Sink) Send(m message.RawMessage) {
	if !s.queue.Push(m) {
		s.logger.Debugf("dropped a %s message sent after the sink shut down", m.Type)
	}
}

// Close stops accepting new messages, waits for the queued ones to drain,
// and lets the actor terminate.
func (s *Sink) Close(reason error) {
	if s.tmb.Alive() {
		s.logger.Infof("Sink closing because: %s", reason)
	}
	s.queue.Close()
	s.tmb.Wait()
}

// Done is closed once the actor has terminated
func (s *Sink) Done() <-chan struct{} {
	return s.tmb.Dead()
}

func (s *Sink) Err() error {
	if err := s.tmb.Err(); err != tomb.ErrStillAlive {
		return err
	}
	return nil
}

func (s *Sink) run() error {
	defer s.logger.Info("Sink stopped")
	s.logger.Info("Sink started")

	for {
		m, ok := s.queue.Pop(s.tmb.Dying())
		if !ok {
			return nil
		}

		messageType, data := m.Wire()
		if err := s.sink.WriteMessage(messageType, data); err != nil {
			// Write failures are not surfaced to any individual caller;
			// later sends just become no-ops
			s.queue.Close()
			return fmt.Errorf("failed to write %s message: %w", m.Type, err)
		}
	}
}
