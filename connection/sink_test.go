package connection

import (
	"fmt"
	"time"

	gorilla "github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/StyMaar/ezsockets/connection/socket"
	"github.com/StyMaar/ezsockets/logger"
	"github.com/StyMaar/ezsockets/message"
)

var _ = Describe("Sink", func() {
	var mockSocket *socket.MockSocket
	var sink *Sink

	log := logger.MockLogger(GinkgoWriter)

	Context("Writing", func() {
		When("A message is sent through the handle", func() {
			BeforeEach(func() {
				mockSocket = &socket.MockSocket{}
				mockSocket.On("WriteMessage", gorilla.TextMessage, []byte("hi")).Return(nil)

				sink = NewSink(log, mockSocket)
				sink.Send(message.NewText("hi"))

				// Close drains the queue before returning
				sink.Close(fmt.Errorf("test finished"))
			})

			It("performs the write against the owned sink", func() {
				mockSocket.AssertCalled(GinkgoT(), "WriteMessage", gorilla.TextMessage, []byte("hi"))
			})
		})

		When("Several messages are queued", func() {
			payloads := []string{"one", "two", "three"}

			BeforeEach(func() {
				mockSocket = &socket.MockSocket{}
				mockSocket.On("WriteMessage", mock.Anything, mock.Anything).Return(nil)

				sink = NewSink(log, mockSocket)
				for _, payload := range payloads {
					sink.Send(message.NewText(payload))
				}

				sink.Close(fmt.Errorf("test finished"))
			})

			It("writes them one at a time, in enqueue order", func() {
				Expect(mockSocket.Calls).To(HaveLen(len(payloads)))

				for i, call := range mockSocket.Calls {
					Expect(call.Method).To(Equal("WriteMessage"))
					Expect(call.Arguments.Get(0)).To(Equal(gorilla.TextMessage))
					Expect(call.Arguments.Get(1)).To(Equal([]byte(payloads[i])))
				}
			})
		})

		When("The sink reports a write failure", func() {
			BeforeEach(func() {
				mockSocket = &socket.MockSocket{}
				mockSocket.On("WriteMessage", mock.Anything, mock.Anything).Return(fmt.Errorf("broken pipe"))

				sink = NewSink(log, mockSocket)
				sink.Send(message.NewText("doomed"))
			})

			It("terminates and records the failure", func() {
				Eventually(sink.Done(), time.Second).Should(BeClosed())
				Expect(sink.Err()).To(HaveOccurred())

				// Only the first write is attempted; later sends are dropped
				sink.Send(message.NewText("dropped"))
				Expect(mockSocket.Calls).To(HaveLen(1))
			})
		})
	})
})
