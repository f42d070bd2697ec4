/*
The websocket package adapts an established gorilla/websocket connection to
the socket contract. gorilla only hands data frames back from ReadMessage and
routes control frames through handlers, so this adapter captures inbound
ping, pong and close frames and replays them, in arrival order, as ordinary
frames; the message layer above therefore sees the full variant set.

The adapter is single-reader/single-writer, exactly like the connection it
wraps: one goroutine may call ReadMessage and one may call WriteMessage at
any moment. The connection actors guarantee that.
*/
package websocket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	gorilla "github.com/gorilla/websocket"

	"github.com/StyMaar/ezsockets/connection/socket"
	"github.com/StyMaar/ezsockets/logger"
)

const (
	HttpsOnlyWebsocketScheme = "wss"
	HttpWebsocketScheme      = "ws"

	// Deadline on the automatic pong answer, mirroring gorilla's default
	// ping handler
	controlWriteTimeout = time.Second
)

var WebsocketUrlScheme = HttpsOnlyWebsocketScheme

type frame struct {
	messageType int
	data        []byte
}

type Socket struct {
	conn *gorilla.Conn

	// Control frames captured by the gorilla handlers during a read; they
	// arrived before whatever that read returned, so they are replayed
	// first. Only the reading goroutine touches these.
	pending []frame
	stashed *frame

	readErr        error
	closeDelivered bool
}

var _ socket.Socket = (*Socket)(nil)

// New wraps an established gorilla connection. The adapter takes over the
// connection's ping, pong and close handling.
func New(conn *gorilla.Conn) *Socket {
	s := &Socket{conn: conn}

	conn.SetPingHandler(func(appData string) error {
		s.pending = append(s.pending, frame{gorilla.PingMessage, []byte(appData)})

		// Answer with a pong, as the default handler would; the caller still
		// sees the ping and may send its own
		err := conn.WriteControl(gorilla.PongMessage, []byte(appData), time.Now().Add(controlWriteTimeout))
		if errors.Is(err, gorilla.ErrCloseSent) {
			return nil
		} else if e, ok := err.(net.Error); ok && e.Timeout() {
			return nil
		}
		return err
	})

	conn.SetPongHandler(func(appData string) error {
		s.pending = append(s.pending, frame{gorilla.PongMessage, []byte(appData)})
		return nil
	})

	return s
}

// Dial connects once and wraps the result. The url scheme is forced to the
// configured websocket scheme.
func Dial(ctx context.Context, connUrl *url.URL, headers http.Header) (*Socket, error) {
	connUrl.Scheme = WebsocketUrlScheme

	conn, _, err := gorilla.DefaultDialer.DialContext(ctx, connUrl.String(), headers)
	if err != nil {
		return nil, fmt.Errorf("error dialing websocket: %w", err)
	}

	return New(conn), nil
}

// DialWithRetry keeps dialing with exponential backoff until the connection
// is established, the backoff gives up, or ctx is cancelled.
func DialWithRetry(logger *logger.Logger, ctx context.Context, connUrl *url.URL, headers http.Header, backoffParams *backoff.ExponentialBackOff) (*Socket, error) {
	ticker := backoff.NewTicker(backoffParams)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case _, ok := <-ticker.C:
			if !ok {
				return nil, fmt.Errorf("failed to connect to %s after %s", connUrl, backoffParams.MaxElapsedTime.Round(time.Second))
			}

			sock, err := Dial(ctx, connUrl, headers)
			if err != nil {
				logger.Infof("Retrying in %s because we failed to connect: %s", backoffParams.NextBackOff().Round(time.Second), err)
				continue
			}
			return sock, nil
		}
	}
}

func (s *Socket) ReadMessage() (int, []byte, error) {
	for {
		if len(s.pending) > 0 {
			f := s.pending[0]
			s.pending = s.pending[1:]
			return f.messageType, f.data, nil
		}

		if s.stashed != nil {
			f := *s.stashed
			s.stashed = nil
			return f.messageType, f.data, nil
		}

		if s.readErr != nil {
			return s.consumeReadErr()
		}

		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			// Control frames captured during this read arrived first
			s.readErr = err
			continue
		}

		if len(s.pending) > 0 {
			s.stashed = &frame{messageType, data}
			continue
		}

		return messageType, data, nil
	}
}

// consumeReadErr surfaces a close sent by the peer as one final close frame;
// every other error, and every read after that frame, reports the error
// itself.
func (s *Socket) consumeReadErr() (int, []byte, error) {
	var closeErr *gorilla.CloseError
	if errors.As(s.readErr, &closeErr) && !s.closeDelivered {
		s.closeDelivered = true
		if closeErr.Code == gorilla.CloseNoStatusReceived {
			return gorilla.CloseMessage, nil, nil
		}
		return gorilla.CloseMessage, gorilla.FormatCloseMessage(closeErr.Code, closeErr.Text), nil
	}
	return 0, nil, s.readErr
}

func (s *Socket) WriteMessage(messageType int, data []byte) error {
	return s.conn.WriteMessage(messageType, data)
}

func (s *Socket) Close() error {
	return s.conn.Close()
}
