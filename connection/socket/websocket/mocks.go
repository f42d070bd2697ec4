package websocket

import (
	"fmt"
	"net"
	"net/http"
	"time"

	gorilla "github.com/gorilla/websocket"

	"github.com/StyMaar/ezsockets/logger"
)

// Text payload that makes the mock server close the connection cleanly
const MockServerGoodbye = "goodbye"

// MockWebsocketServer accepts websocket connections, records every data
// frame it receives and echoes it back. A text frame carrying
// MockServerGoodbye makes it send a normal close frame instead of an echo.
type MockWebsocketServer struct {
	logger   *logger.Logger
	listener net.Listener

	Addr           string
	ReceivedFrames chan []byte
}

func NewMockWebsocketServer(logger *logger.Logger) *MockWebsocketServer {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		logger.Errorf("failed to setup listener")
	}

	mockServer := &MockWebsocketServer{
		logger:         logger,
		listener:       listener,
		Addr:           fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port),
		ReceivedFrames: make(chan []byte, 16),
	}

	go func() {
		http.Serve(mockServer.listener, mockServer)
	}()

	return mockServer
}

func (m *MockWebsocketServer) Shutdown() {
	m.listener.Close()
}

func (m *MockWebsocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := gorilla.Upgrader{}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Errorf("Error during connection upgrade: %s", err)
		return
	}
	defer conn.Close()

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if !gorilla.IsCloseError(err, gorilla.CloseNormalClosure) {
				m.logger.Errorf("Error during message reading: %s", err)
			}
			break
		}

		m.ReceivedFrames <- message

		if messageType == gorilla.TextMessage && string(message) == MockServerGoodbye {
			deadline := time.Now().Add(time.Second)
			closeFrame := gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, MockServerGoodbye)
			if err := conn.WriteControl(gorilla.CloseMessage, closeFrame, deadline); err != nil {
				m.logger.Errorf("Error during connection close: %s", err)
			}
			break
		}

		if err = conn.WriteMessage(messageType, message); err != nil {
			m.logger.Errorf("Error during message writing: %s", err)
			break
		}
	}
}
