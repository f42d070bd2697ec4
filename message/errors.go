package message

import "fmt"

// The InvalidFrameError is returned when the underlying library hands us a
// frame type that should never surface at this layer, such as a continuation
// fragment. Correct collaborators never produce one, so receiving it is an
// internal-invariant failure rather than a recoverable condition.
type InvalidFrameError struct {
	MessageType int
}

func (e *InvalidFrameError) Error() string {
	return fmt.Sprintf("received a frame of type %d which must never surface at the message layer", e.MessageType)
}
