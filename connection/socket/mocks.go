package socket

import (
	"io"
	"net"
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockSocket struct {
	mock.Mock
}

func (m *MockSocket) ReadMessage() (int, []byte, error) {
	args := m.Called()
	return args.Int(0), args.Get(1).([]byte), args.Error(2)
}

func (m *MockSocket) WriteMessage(messageType int, data []byte) error {
	args := m.Called(messageType, data)
	return args.Error(0)
}

func (m *MockSocket) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Frame is a single wire frame as recorded by the FakeSocket
type Frame struct {
	MessageType int
	Data        []byte
}

// FakeSocket is an in-memory duplex channel for tests. Inbound frames are
// queued by the test and handed out one per ReadMessage call; outbound
// frames are recorded in a write log. Reads block until a frame is queued,
// the stream is ended, or the socket is closed, which lets tests issue
// receives before any inbound message is available.
type FakeSocket struct {
	inbound chan Frame

	closed    chan struct{}
	closeOnce sync.Once

	lock     sync.Mutex
	writes   []Frame
	writeErr error
}

func NewFakeSocket() *FakeSocket {
	return &FakeSocket{
		inbound: make(chan Frame, 64),
		closed:  make(chan struct{}),
	}
}

// QueueInbound makes a frame available to the next ReadMessage call
func (s *FakeSocket) QueueInbound(messageType int, data []byte) {
	s.inbound <- Frame{MessageType: messageType, Data: data}
}

// EndStream marks the inbound sequence as exhausted: once the queued frames
// are drained, ReadMessage reports io.EOF.
func (s *FakeSocket) EndStream() {
	close(s.inbound)
}

// FailWrites makes every subsequent WriteMessage call return err
func (s *FakeSocket) FailWrites(err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.writeErr = err
}

// Writes returns a copy of the write log
func (s *FakeSocket) Writes() []Frame {
	s.lock.Lock()
	defer s.lock.Unlock()
	writes := make([]Frame, len(s.writes))
	copy(writes, s.writes)
	return writes
}

func (s *FakeSocket) ReadMessage() (int, []byte, error) {
	select {
	case frame, ok := <-s.inbound:
		if !ok {
			return 0, nil, io.EOF
		}
		return frame.MessageType, frame.Data, nil
	case <-s.closed:
		return 0, nil, net.ErrClosed
	}
}

func (s *FakeSocket) WriteMessage(messageType int, data []byte) error {
	select {
	case <-s.closed:
		return net.ErrClosed
	default:
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.writeErr != nil {
		return s.writeErr
	}

	s.writes = append(s.writes, Frame{MessageType: messageType, Data: data})
	return nil
}

func (s *FakeSocket) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	return nil
}
