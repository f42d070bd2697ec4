package websocket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	gorilla "github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/StyMaar/ezsockets/connection"
	"github.com/StyMaar/ezsockets/logger"
	"github.com/StyMaar/ezsockets/message"
)

func TestWebsocket(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Websocket Suite")
}

var _ = Describe("Websocket", Ordered, func() {
	var server *MockWebsocketServer
	var sock *Socket
	var testUrl *url.URL

	log := logger.MockLogger(GinkgoWriter)
	ctx := context.Background()

	testSendData := []byte("whooopie")
	WebsocketUrlScheme = HttpWebsocketScheme

	Context("Making connections", func() {
		When("Connecting to a legitimate host", func() {
			var err error

			BeforeEach(func() {
				server = NewMockWebsocketServer(log)
				testUrl, _ = url.Parse(server.Addr)

				sock, err = Dial(ctx, testUrl, http.Header{})
			})

			AfterEach(func() {
				server.Shutdown()
			})

			It("succeeds", func() {
				Expect(err).ShouldNot(HaveOccurred(), "Websocket was unable to connect: %s", err)
			})
		})

		When("Connecting to a port with no listener", func() {
			var err error

			BeforeEach(func() {
				testUrl, _ = url.Parse("http://localhost:0")
				_, err = Dial(ctx, testUrl, http.Header{})
			})

			It("fails", func() {
				Expect(err).Should(HaveOccurred(), "It looks like the websocket connected but it shouldn't have")
			})
		})

		When("Retrying against a port with no listener", func() {
			var err error

			BeforeEach(func() {
				backoffParams := backoff.NewExponentialBackOff()
				backoffParams.InitialInterval = 50 * time.Millisecond
				backoffParams.MaxElapsedTime = 200 * time.Millisecond

				testUrl, _ = url.Parse("http://localhost:0")
				_, err = DialWithRetry(log, ctx, testUrl, http.Header{}, backoffParams)
			})

			It("gives up once the backoff is exhausted", func() {
				Expect(err).Should(HaveOccurred(), "DialWithRetry should have given up")
			})
		})
	})

	Context("Exchanging messages", func() {
		BeforeEach(func() {
			server = NewMockWebsocketServer(log)
			testUrl, _ = url.Parse(server.Addr)

			var err error
			sock, err = Dial(ctx, testUrl, http.Header{})
			Expect(err).ShouldNot(HaveOccurred(), "Websocket was unable to connect: %s", err)
		})

		AfterEach(func() {
			sock.Close()
			server.Shutdown()
		})

		When("Sending a text frame", func() {
			BeforeEach(func() {
				Expect(sock.WriteMessage(gorilla.TextMessage, testSendData)).To(Succeed())
			})

			It("is received by the server and echoed back", func() {
				var received []byte
				Eventually(server.ReceivedFrames, time.Second).Should(Receive(&received))
				Expect(received).To(Equal(testSendData))

				messageType, data, err := sock.ReadMessage()
				Expect(err).ShouldNot(HaveOccurred())
				Expect(messageType).To(Equal(gorilla.TextMessage))
				Expect(data).To(Equal(testSendData))
			})
		})

		When("Sending a ping ahead of a text frame", func() {
			BeforeEach(func() {
				Expect(sock.WriteMessage(gorilla.PingMessage, []byte("marco"))).To(Succeed())
				Expect(sock.WriteMessage(gorilla.TextMessage, []byte("hi"))).To(Succeed())
			})

			It("surfaces the server's pong before the echo", func() {
				messageType, data, err := sock.ReadMessage()
				Expect(err).ShouldNot(HaveOccurred())
				Expect(messageType).To(Equal(gorilla.PongMessage))
				Expect(string(data)).To(Equal("marco"))

				messageType, data, err = sock.ReadMessage()
				Expect(err).ShouldNot(HaveOccurred())
				Expect(messageType).To(Equal(gorilla.TextMessage))
				Expect(string(data)).To(Equal("hi"))
			})
		})

		When("The server closes the connection", func() {
			BeforeEach(func() {
				Expect(sock.WriteMessage(gorilla.TextMessage, []byte(MockServerGoodbye))).To(Succeed())
			})

			It("surfaces one close frame and then the terminal error", func() {
				messageType, data, err := sock.ReadMessage()
				Expect(err).ShouldNot(HaveOccurred())
				Expect(messageType).To(Equal(gorilla.CloseMessage))

				frame := message.CloseFrameFromWire(data)
				Expect(frame).ToNot(BeNil())
				Expect(frame.Code).To(Equal(message.CloseNormal))
				Expect(frame.Reason).To(Equal(MockServerGoodbye))

				_, _, err = sock.ReadMessage()
				Expect(err).Should(HaveOccurred(), "reads after the close frame should report the close error")
			})
		})
	})

	Context("Behind a connection handle", func() {
		var conn *connection.Connection

		BeforeEach(func() {
			server = NewMockWebsocketServer(log)
			testUrl, _ = url.Parse(server.Addr)

			sock, err := Dial(ctx, testUrl, http.Header{})
			Expect(err).ShouldNot(HaveOccurred(), "Websocket was unable to connect: %s", err)

			conn = connection.New(log, sock)
		})

		AfterEach(func() {
			conn.Close(fmt.Errorf("test finished"))
			server.Shutdown()
		})

		When("Sending and receiving through the handle", func() {
			It("round trips a message through the echo server", func() {
				conn.Send(message.NewText("whooopie"))

				var received []byte
				Eventually(server.ReceivedFrames, time.Second).Should(Receive(&received))
				Expect(string(received)).To(Equal("whooopie"))

				echo, err := conn.Recv(ctx)
				Expect(err).ShouldNot(HaveOccurred())
				Expect(echo.Type).To(Equal(message.Text))
				Expect(echo.Text()).To(Equal("whooopie"))
			})
		})
	})
})
