package message

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CloseCode", func() {

	registeredCodes := []CloseCode{
		CloseNormal,
		CloseAway,
		CloseProtocol,
		CloseUnsupported,
		CloseStatus,
		CloseAbnormal,
		CloseInvalid,
		ClosePolicy,
		CloseSize,
		CloseExtension,
		CloseError,
		CloseRestart,
		CloseAgain,
		CloseTLS,
	}

	Context("Round trips through the wire representation", func() {

		When("Given every registered code", func() {
			It("comes back unchanged", func() {
				for _, code := range registeredCodes {
					Expect(CloseCodeFromWire(code.Wire())).To(Equal(code))
				}
			})
		})

		When("Given codes from each escape range", func() {
			escapeCodes := []int{1016, 2999, 3000, 3999, 4000, 4999, 500, 1004, 1014, 5000}

			It("comes back unchanged", func() {
				for _, wire := range escapeCodes {
					Expect(CloseCodeFromWire(wire).Wire()).To(Equal(wire))
				}
			})
		})
	})

	Context("Classification", func() {

		When("Given a registered code", func() {
			It("is classified as registered", func() {
				for _, code := range registeredCodes {
					Expect(code.Class()).To(Equal(ClassRegistered), "code %d", uint16(code))
				}
			})
		})

		When("Given codes at the edges of each range", func() {
			It("falls into the matching class", func() {
				Expect(CloseCodeFromWire(1016).Class()).To(Equal(ClassReserved))
				Expect(CloseCodeFromWire(2999).Class()).To(Equal(ClassReserved))
				Expect(CloseCodeFromWire(3000).Class()).To(Equal(ClassIana))
				Expect(CloseCodeFromWire(3999).Class()).To(Equal(ClassIana))
				Expect(CloseCodeFromWire(4000).Class()).To(Equal(ClassLibrary))
				Expect(CloseCodeFromWire(4999).Class()).To(Equal(ClassLibrary))
			})
		})

		When("Given codes that are not valid on the wire", func() {
			It("is classified as bad", func() {
				for _, wire := range []int{0, 999, 1004, 1014, 5000} {
					Expect(CloseCodeFromWire(wire).Class()).To(Equal(ClassBad), "code %d", wire)
				}
			})
		})
	})

	Context("Close frame payloads", func() {

		When("The payload carries a code and a reason", func() {
			testFrame := &CloseFrame{Code: CloseAway, Reason: "server going down"}

			It("round trips", func() {
				Expect(CloseFrameFromWire(testFrame.Wire())).To(Equal(testFrame))
			})
		})

		When("The payload is empty", func() {
			It("decodes to no frame at all", func() {
				Expect(CloseFrameFromWire([]byte{})).To(BeNil())
			})
		})

		When("There is no frame", func() {
			It("encodes to an empty payload", func() {
				var frame *CloseFrame
				Expect(frame.Wire()).To(BeEmpty())
			})
		})
	})
})
