package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Compile-time interface checks.
var (
	_ Acceptor = (*TCPAcceptor)(nil)
	_ Listener = (*TCPListener)(nil)
	_ Dialer   = (*TCPDialer)(nil)
)

// DefaultConnectTimeout bounds each TCP connect attempt.
const DefaultConnectTimeout = time.Second

// TCPAcceptor listens on three consecutive ports ending at BasePort.
type TCPAcceptor struct {
	// Host is the interface to bind. Empty binds all interfaces.
	Host     string
	BasePort int
	// ImageWriteBuffer, when positive, sets the kernel send buffer of the
	// accepted image connection so that a slow reader stalls the capture
	// loop after a bounded number of frames.
	ImageWriteBuffer int
}

// Listen binds all three ports. If any bind fails the others are released.
func (a *TCPAcceptor) Listen(ctx context.Context) (Listener, error) {
	if a.BasePort-2 < 1 || a.BasePort > 65535 {
		return nil, fmt.Errorf("base port %d out of range", a.BasePort)
	}
	var lc net.ListenConfig
	l := &TCPListener{writeBuffer: a.ImageWriteBuffer}
	for _, c := range AllChannels {
		address := net.JoinHostPort(a.Host, strconv.Itoa(c.Port(a.BasePort)))
		ln, err := lc.Listen(ctx, "tcp", address)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("listen %s channel on %s: %w", c, address, err)
		}
		l.listeners[c] = ln
	}
	return l, nil
}

// TCPListener holds the three bound listeners of one session.
type TCPListener struct {
	listeners   [3]net.Listener
	writeBuffer int

	closeOnce sync.Once
}

// Accept waits for one connection on each port. Connections accepted
// before a failure are closed.
func (l *TCPListener) Accept(ctx context.Context) (*Channels, error) {
	stop := context.AfterFunc(ctx, func() { l.Close() })
	defer stop()

	var (
		mu    sync.Mutex
		chans = &Channels{}
		peers []string
	)
	g := new(errgroup.Group)
	for _, c := range AllChannels {
		ln := l.listeners[c]
		g.Go(func() error {
			conn, err := ln.Accept()
			if err != nil {
				// Unblock the other accepts.
				l.Close()
				return fmt.Errorf("accept %s channel: %w", c, err)
			}
			tuneConn(conn, c, l.writeBuffer)
			mu.Lock()
			chans.set(c, conn)
			peers = append(peers, conn.RemoteAddr().String())
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	l.Close()
	if err != nil {
		chans.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	chans.Peer = strings.Join(peers, ",")
	return chans, nil
}

// Addr returns the image channel address; the other two sit just below it.
func (l *TCPListener) Addr() string {
	if ln := l.listeners[ChannelImage]; ln != nil {
		return ln.Addr().String()
	}
	return ""
}

// Close releases the listening sockets. Accepted connections are not
// affected.
func (l *TCPListener) Close() error {
	var errs []error
	l.closeOnce.Do(func() {
		for _, ln := range l.listeners {
			if ln == nil {
				continue
			}
			if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

// TCPDialer connects to the three ports of a host.
type TCPDialer struct {
	Host     string
	BasePort int
	// Timeout bounds each connect. Zero uses DefaultConnectTimeout.
	Timeout time.Duration
}

// Dial connects image, cursor, then keyboard. If any connect fails, the
// ones already open are closed and the error names the channel.
func (d *TCPDialer) Dial(ctx context.Context) (*Channels, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	dialer := &net.Dialer{Timeout: timeout}
	chans := &Channels{}
	for _, c := range AllChannels {
		address := net.JoinHostPort(d.Host, strconv.Itoa(c.Port(d.BasePort)))
		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			chans.Close()
			if isTimeout(err) && ctx.Err() == nil {
				return nil, fmt.Errorf("%w: %s channel %s after %s", ErrConnectTimeout, c, address, timeout)
			}
			return nil, fmt.Errorf("connect %s channel %s: %w", c, address, err)
		}
		tuneConn(conn, c, 0)
		chans.set(c, conn)
	}
	chans.Peer = net.JoinHostPort(d.Host, strconv.Itoa(d.BasePort))
	return chans, nil
}

func tuneConn(conn net.Conn, c Channel, writeBuffer int) {
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	// Input events are tiny and latency bound; frames are flushed whole.
	tcp.SetNoDelay(true)
	if c == ChannelImage && writeBuffer > 0 {
		tcp.SetWriteBuffer(writeBuffer)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
