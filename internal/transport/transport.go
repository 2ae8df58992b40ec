// Package transport establishes the three byte streams of a session.
//
// A session always has exactly three channels. Over TCP each channel is
// its own connection on a port derived from a base port; over WebRTC each
// is a detached data channel on one peer connection. Everything above
// this package sees only ordered, reliable byte streams.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrConnectTimeout is returned when a channel could not be established
// within the dialer's timeout.
var ErrConnectTimeout = errors.New("connect timed out")

// Channel identifies one of the three session channels.
type Channel int

const (
	ChannelImage Channel = iota
	ChannelCursor
	ChannelKeyboard
)

// AllChannels lists the channels in the order they are established.
var AllChannels = []Channel{ChannelImage, ChannelCursor, ChannelKeyboard}

func (c Channel) String() string {
	switch c {
	case ChannelImage:
		return "image"
	case ChannelCursor:
		return "cursor"
	case ChannelKeyboard:
		return "keyboard"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Port returns the TCP port for the channel given the session base port:
// image on base, cursor on base-1, keyboard on base-2.
func (c Channel) Port(base int) int {
	return base - int(c)
}

// Channels holds the three established streams of one session.
type Channels struct {
	Image    io.ReadWriteCloser
	Cursor   io.ReadWriteCloser
	Keyboard io.ReadWriteCloser

	// Peer describes the remote end for logging.
	Peer string
	// Conn, if set, carries all three streams and is closed after them.
	Conn io.Closer

	closeOnce sync.Once
	closeErr  error
}

// Get returns the stream for c.
func (ch *Channels) Get(c Channel) io.ReadWriteCloser {
	switch c {
	case ChannelImage:
		return ch.Image
	case ChannelCursor:
		return ch.Cursor
	case ChannelKeyboard:
		return ch.Keyboard
	default:
		return nil
	}
}

func (ch *Channels) set(c Channel, rwc io.ReadWriteCloser) {
	switch c {
	case ChannelImage:
		ch.Image = rwc
	case ChannelCursor:
		ch.Cursor = rwc
	case ChannelKeyboard:
		ch.Keyboard = rwc
	}
}

// Close closes every non-nil stream, then Conn. Any blocked Read or Write on them
// returns. Safe to call more than once.
func (ch *Channels) Close() error {
	ch.closeOnce.Do(func() {
		var errs []error
		for _, c := range AllChannels {
			if rwc := ch.Get(c); rwc != nil {
				if err := rwc.Close(); err != nil {
					errs = append(errs, fmt.Errorf("close %s channel: %w", c, err))
				}
			}
		}
		if ch.Conn != nil {
			if err := ch.Conn.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close connection: %w", err))
			}
		}
		ch.closeErr = errors.Join(errs...)
	})
	return ch.closeErr
}

// Acceptor is the host side of channel establishment.
type Acceptor interface {
	// Listen binds whatever local resources are needed to accept one
	// session. It returns once peers can begin connecting.
	Listen(ctx context.Context) (Listener, error)
}

// Listener accepts exactly one session.
type Listener interface {
	// Accept blocks until all three channels are connected, ctx is done,
	// or the listener is closed.
	Accept(ctx context.Context) (*Channels, error)
	// Addr describes where the listener can be reached.
	Addr() string
	Close() error
}

// Dialer is the controller side of channel establishment.
type Dialer interface {
	// Dial establishes all three channels or none.
	Dial(ctx context.Context) (*Channels, error)
}
