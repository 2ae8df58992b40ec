package session

import (
	"fmt"

	"github.com/junsooki/AirDesk/internal/transport"
)

// ChannelError is a transport-level failure on one channel. It is always
// fatal to the session.
type ChannelError struct {
	Channel transport.Channel
	Op      string
	Err     error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("%s channel: %s: %v", e.Channel, e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

func channelError(c transport.Channel, op string, err error) error {
	return &ChannelError{Channel: c, Op: op, Err: err}
}
