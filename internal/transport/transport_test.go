package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"
)

// listenFreeBase binds a TCPAcceptor on three free consecutive loopback
// ports, retrying random bases until one works.
func listenFreeBase(t *testing.T) (Listener, int) {
	t.Helper()
	var lastErr error
	for range 50 {
		base := 20000 + rand.IntN(40000)
		acceptor := &TCPAcceptor{Host: "127.0.0.1", BasePort: base}
		l, err := acceptor.Listen(context.Background())
		if err == nil {
			t.Cleanup(func() { l.Close() })
			return l, base
		}
		lastErr = err
	}
	t.Fatalf("no free port triple found: %v", lastErr)
	return nil, 0
}

func TestChannelPorts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		channel Channel
		port    int
		name    string
	}{
		{ChannelImage, 9999, "image"},
		{ChannelCursor, 9998, "cursor"},
		{ChannelKeyboard, 9997, "keyboard"},
	}
	for _, tt := range tests {
		if got := tt.channel.Port(9999); got != tt.port {
			t.Errorf("%s.Port(9999) = %d, want %d", tt.channel, got, tt.port)
		}
		if got := tt.channel.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
	}
}

func TestTCPAcceptDialRoutesChannels(t *testing.T) {
	t.Parallel()

	listener, base := listenFreeBase(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		chans *Channels
		err   error
	}
	accepted := make(chan result, 1)
	go func() {
		chans, err := listener.Accept(ctx)
		accepted <- result{chans, err}
	}()

	dialer := &TCPDialer{Host: "127.0.0.1", BasePort: base, Timeout: time.Second}
	client, err := dialer.Dial(ctx)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	var server *Channels
	select {
	case r := <-accepted:
		if r.err != nil {
			t.Fatalf("Accept: %v", r.err)
		}
		server = r.chans
	case <-ctx.Done():
		t.Fatal("timed out waiting for Accept")
	}
	defer server.Close()

	for _, c := range AllChannels {
		want := []byte("hello " + c.String())
		if _, err := client.Get(c).Write(want); err != nil {
			t.Fatalf("write %s: %v", c, err)
		}
		got := make([]byte, len(want))
		if _, err := io.ReadFull(server.Get(c), got); err != nil {
			t.Fatalf("read %s: %v", c, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%s channel carried %q, want %q", c, got, want)
		}
	}
}

func TestTCPAcceptCancelled(t *testing.T) {
	t.Parallel()

	listener, _ := listenFreeBase(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := listener.Accept(ctx)
		done <- err
	}()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Accept error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Accept did not return after cancel")
	}
}

func TestTCPAcceptCancelledClosesPartialSession(t *testing.T) {
	t.Parallel()

	listener, base := listenFreeBase(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := listener.Accept(ctx)
		done <- err
	}()

	// Only the image channel connects.
	conn, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(base)), time.Second)
	if err != nil {
		t.Fatalf("dial image port: %v", err)
	}
	defer conn.Close()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Accept did not return after cancel")
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	// EOF if the connection was accepted then closed, a reset if it was
	// still in the backlog when the listener closed.
	if _, err := conn.Read(make([]byte, 1)); err == nil || isTimeout(err) {
		t.Errorf("read on abandoned image connection = %v, want EOF or reset", err)
	}
}

func TestTCPListenReleasesPortsOnFailure(t *testing.T) {
	t.Parallel()

	// Occupy what will be the keyboard port of the base.
	blocker, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer blocker.Close()
	base := blocker.Addr().(*net.TCPAddr).Port + 2
	if base > 65535 {
		t.Skip("ephemeral port too high for this layout")
	}

	acceptor := &TCPAcceptor{Host: "127.0.0.1", BasePort: base}
	if _, err := acceptor.Listen(context.Background()); err == nil {
		t.Fatal("Listen succeeded with keyboard port taken")
	}
	// The image port bound before the failure must be free again.
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(base)))
	if err != nil {
		t.Fatalf("image port still held after failed Listen: %v", err)
	}
	ln.Close()
}

func TestTCPListenRejectsBadBase(t *testing.T) {
	t.Parallel()

	for _, base := range []int{0, 2, 70000} {
		acceptor := &TCPAcceptor{Host: "127.0.0.1", BasePort: base}
		if _, err := acceptor.Listen(context.Background()); err == nil {
			t.Errorf("Listen(base %d) succeeded", base)
		}
	}
}

func TestTCPDialRefused(t *testing.T) {
	t.Parallel()

	// Bind and release to get a port that is almost certainly closed.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	base := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	dialer := &TCPDialer{Host: "127.0.0.1", BasePort: base, Timeout: time.Second}
	chans, err := dialer.Dial(context.Background())
	if err == nil {
		chans.Close()
		t.Fatal("Dial succeeded against a closed port")
	}
	if errors.Is(err, ErrConnectTimeout) {
		t.Errorf("refused connection reported as timeout: %v", err)
	}
}

func TestTCPDialTimeout(t *testing.T) {
	t.Parallel()

	// A non-routable address: the SYN is never answered.
	dialer := &TCPDialer{Host: "10.255.255.1", BasePort: 9999, Timeout: 100 * time.Millisecond}
	start := time.Now()
	chans, err := dialer.Dial(context.Background())
	if err == nil {
		// A transparent proxy or NAT accepted the connection.
		chans.Close()
		t.Skip("network accepted a connection to a non-routable address")
	}
	if !errors.Is(err, ErrConnectTimeout) {
		t.Skipf("network rejected the address immediately: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Dial took %s with a 100ms timeout", elapsed)
	}
}

func TestIsTimeout(t *testing.T) {
	t.Parallel()

	if !isTimeout(context.DeadlineExceeded) {
		t.Error("context.DeadlineExceeded not recognized")
	}
	if isTimeout(errors.New("connection refused")) {
		t.Error("plain error recognized as timeout")
	}
}

func TestChannelsCloseIdempotent(t *testing.T) {
	t.Parallel()

	a, b := net.Pipe()
	defer b.Close()
	chans := &Channels{Image: a}
	if err := chans.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := chans.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

type countingCloser struct{ n int }

func (c *countingCloser) Close() error {
	c.n++
	return nil
}

func TestChannelsCloseClosesConnOnce(t *testing.T) {
	t.Parallel()

	conn := &countingCloser{}
	chans := &Channels{Image: newMessagePipe(), Cursor: newMessagePipe(), Conn: conn}
	chans.Close()
	chans.Close()
	if conn.n != 1 {
		t.Errorf("Conn closed %d times, want 1", conn.n)
	}
}

// messagePipe mimics a detached data channel: each Write is one message,
// and Read fails with io.ErrShortBuffer when a message does not fit.
type messagePipe struct {
	mu       sync.Mutex
	cond     *sync.Cond
	messages [][]byte
	closed   bool
	largest  int
}

func newMessagePipe() *messagePipe {
	p := &messagePipe{}
	p.cond = sync.NewCond(&p.mu)
	return p
}

func (p *messagePipe) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, io.ErrClosedPipe
	}
	p.messages = append(p.messages, bytes.Clone(b))
	p.largest = max(p.largest, len(b))
	p.cond.Broadcast()
	return len(b), nil
}

func (p *messagePipe) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.messages) == 0 && !p.closed {
		p.cond.Wait()
	}
	if len(p.messages) == 0 {
		return 0, io.EOF
	}
	msg := p.messages[0]
	if len(msg) > len(b) {
		return 0, io.ErrShortBuffer
	}
	p.messages = p.messages[1:]
	return copy(b, msg), nil
}

func (p *messagePipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.cond.Broadcast()
	return nil
}

func TestMessageStreamChunksAndReassembles(t *testing.T) {
	t.Parallel()

	pipe := newMessagePipe()
	stream := NewMessageStream(pipe, "test/image")

	payload := make([]byte, 100*1024+7)
	for i := range payload {
		payload[i] = byte(i * 31)
	}
	n, err := stream.Write(payload)
	if err != nil || n != len(payload) {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if pipe.largest > MaxMessageSize {
		t.Errorf("largest message = %d, want <= %d", pipe.largest, MaxMessageSize)
	}

	// Small reads must still work across message boundaries.
	got := make([]byte, 0, len(payload))
	buf := make([]byte, 5)
	for len(got) < len(payload) {
		n, err := stream.Read(buf)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		got = append(got, buf[:n]...)
	}
	if !bytes.Equal(got, payload) {
		t.Error("reassembled stream differs from payload")
	}

	if err := stream.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := stream.Read(buf); !errors.Is(err, io.EOF) {
		t.Errorf("Read after close = %v, want io.EOF", err)
	}
	if stream.String() != "test/image" {
		t.Errorf("String() = %q", stream.String())
	}
}
