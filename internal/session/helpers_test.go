package session

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/junsooki/AirDesk/internal/input"
	"github.com/junsooki/AirDesk/internal/testutil"
	"github.com/junsooki/AirDesk/internal/transport"
)

const waitTimeout = 5 * time.Second

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// pipePair returns the two ends of an in-memory session.
func pipePair(t *testing.T) (server, client *transport.Channels) {
	t.Helper()
	server, client = &transport.Channels{Peer: "pipe"}, &transport.Channels{Peer: "pipe"}
	for _, c := range transport.AllChannels {
		a, b := net.Pipe()
		switch c {
		case transport.ChannelImage:
			server.Image, client.Image = a, b
		case transport.ChannelCursor:
			server.Cursor, client.Cursor = a, b
		case transport.ChannelKeyboard:
			server.Keyboard, client.Keyboard = a, b
		}
	}
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return server, client
}

// pipeAcceptor hands out a prepared server end once release is closed.
type pipeAcceptor struct {
	chans   *transport.Channels
	release chan struct{}
}

func newPipeAcceptor(chans *transport.Channels) *pipeAcceptor {
	a := &pipeAcceptor{chans: chans, release: make(chan struct{})}
	close(a.release)
	return a
}

func (a *pipeAcceptor) Listen(context.Context) (transport.Listener, error) { return a, nil }

func (a *pipeAcceptor) Accept(ctx context.Context) (*transport.Channels, error) {
	select {
	case <-a.release:
		return a.chans, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *pipeAcceptor) Addr() string { return "pipe" }
func (a *pipeAcceptor) Close() error { return nil }

// pipeDialer returns a prepared client end.
type pipeDialer struct {
	chans *transport.Channels
	err   error
}

func (d pipeDialer) Dial(context.Context) (*transport.Channels, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.chans, nil
}

type fakeCapturer struct {
	bounds image.Rectangle
	fill   color.RGBA
	err    error
	calls  atomic.Int64
}

func (f *fakeCapturer) Bounds() image.Rectangle { return f.bounds }

func (f *fakeCapturer) CaptureRegion(rect image.Rectangle) (*image.RGBA, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	img := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = f.fill.R, f.fill.G, f.fill.B, 255
	}
	return img, nil
}

type recordingInjector struct {
	pointer chan input.CursorEvent
	keys    chan input.KeyEvent
}

func newRecordingInjector() *recordingInjector {
	return &recordingInjector{
		pointer: make(chan input.CursorEvent, 256),
		keys:    make(chan input.KeyEvent, 256),
	}
}

func (r *recordingInjector) InjectPointer(e input.CursorEvent) error {
	r.pointer <- e
	return nil
}

func (r *recordingInjector) InjectKey(e input.KeyEvent) error {
	r.keys <- e
	return nil
}

type stateChange struct {
	state State
	err   error
}

type recordingStatus struct {
	states chan stateChange
	fps    chan int
}

func newRecordingStatus() *recordingStatus {
	return &recordingStatus{
		states: make(chan stateChange, 64),
		fps:    make(chan int, 1024),
	}
}

func (r *recordingStatus) StateChanged(state State, err error) {
	select {
	case r.states <- stateChange{state, err}:
	default:
	}
}

func (r *recordingStatus) FPS(fps int) {
	select {
	case r.fps <- fps:
	default:
	}
}

// waitState consumes state changes until want is seen.
func (r *recordingStatus) waitState(t *testing.T, want State) stateChange {
	t.Helper()
	for {
		change := testutil.RequireReceive(t, r.states, waitTimeout, "waiting for state %s", want)
		if change.state == want {
			return change
		}
	}
}

// waitErr runs wait in the background and returns its result, failing
// the test if it does not return in time.
func waitErr(t *testing.T, wait func() error) error {
	t.Helper()
	result := make(chan error, 1)
	go func() { result <- wait() }()
	return testutil.RequireReceive(t, result, waitTimeout, "waiting for session to stop")
}

func requireChannelError(t *testing.T, err error, want transport.Channel) {
	t.Helper()
	var chErr *ChannelError
	if !errors.As(err, &chErr) {
		t.Fatalf("error = %v, want *ChannelError", err)
	}
	if chErr.Channel != want {
		t.Fatalf("failed channel = %s, want %s (error %v)", chErr.Channel, want, err)
	}
}

func solidImage(w, h int, red uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = red, 255
	}
	return img
}
