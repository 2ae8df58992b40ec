// Package peer carries the three session channels over one WebRTC peer
// connection. The controller offers, the host answers, and the offer and
// answer are exchanged through the signaling relay with every ICE
// candidate already gathered. Each channel is an ordered, reliable data
// channel named after its transport.Channel, detached and wrapped in a
// transport.MessageStream.
package peer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/junsooki/AirDesk/internal/transport"
)

// DefaultICEServers is the default ICE server configuration.
var DefaultICEServers = []webrtc.ICEServer{
	{URLs: []string{"stun:stun.l.google.com:19302", "stun:stun1.l.google.com:19302"}},
}

// Config holds the WebRTC settings shared by host and controller.
type Config struct {
	ICEServers []webrtc.ICEServer
	// Loopback adds loopback candidates so both ends can share a machine.
	Loopback bool
}

// newPeerConnection creates a PeerConnection whose data channels can be
// detached into plain readers and writers.
func (cfg Config) newPeerConnection() (*webrtc.PeerConnection, error) {
	var se webrtc.SettingEngine
	se.DetachDataChannels()
	se.SetIncludeLoopbackCandidate(cfg.Loopback)
	api := webrtc.NewAPI(webrtc.WithSettingEngine(se))

	pc, err := api.NewPeerConnection(webrtc.Configuration{ICEServers: cfg.ICEServers})
	if err != nil {
		return nil, fmt.Errorf("new peer connection: %w", err)
	}
	return pc, nil
}

// setLocalDescription applies desc and waits for ICE gathering to finish,
// returning the complete description as JSON.
func setLocalDescription(ctx context.Context, pc *webrtc.PeerConnection, desc webrtc.SessionDescription) (json.RawMessage, error) {
	gathered := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(desc); err != nil {
		return nil, fmt.Errorf("set local description: %w", err)
	}
	select {
	case <-gathered:
	case <-ctx.Done():
		return nil, fmt.Errorf("gather candidates: %w", context.Cause(ctx))
	}
	return json.Marshal(pc.LocalDescription())
}

func setRemoteDescription(pc *webrtc.PeerConnection, payload json.RawMessage) error {
	var desc webrtc.SessionDescription
	if err := json.Unmarshal(payload, &desc); err != nil {
		return fmt.Errorf("decode session description: %w", err)
	}
	if err := pc.SetRemoteDescription(desc); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}
	return nil
}

func channelForLabel(label string) (transport.Channel, bool) {
	for _, c := range transport.AllChannels {
		if c.String() == label {
			return c, true
		}
	}
	return 0, false
}

// channelSet collects the three data channels of one peer connection as
// they open. It owns the connection's state handler.
type channelSet struct {
	logger *slog.Logger

	mu      sync.Mutex
	streams map[transport.Channel]io.ReadWriteCloser
	ready   chan struct{}

	failOnce sync.Once
	failed   chan struct{}
	err      error
}

func newChannelSet(pc *webrtc.PeerConnection, logger *slog.Logger) *channelSet {
	s := &channelSet{
		logger:  logger,
		streams: make(map[transport.Channel]io.ReadWriteCloser),
		ready:   make(chan struct{}),
		failed:  make(chan struct{}),
	}
	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		logger.Info("peer connection state", "state", state.String())
		switch state {
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed:
			s.fail(fmt.Errorf("peer connection %s", state))
			if state == webrtc.PeerConnectionStateFailed {
				// Unblocks detached channel reads so the session tears down.
				go pc.Close()
			}
		}
	})
	return s
}

func (s *channelSet) fail(err error) {
	s.failOnce.Do(func() {
		s.err = err
		close(s.failed)
	})
}

// attach detaches dc once it opens.
func (s *channelSet) attach(dc *webrtc.DataChannel) {
	c, ok := channelForLabel(dc.Label())
	if !ok {
		s.logger.Warn("ignoring unknown data channel", "label", dc.Label())
		return
	}
	dc.OnOpen(func() {
		raw, err := dc.Detach()
		if err != nil {
			s.fail(fmt.Errorf("detach %s channel: %w", c, err))
			return
		}
		s.add(c, transport.NewMessageStream(raw, "webrtc/"+c.String()))
	})
}

func (s *channelSet) add(c transport.Channel, rwc io.ReadWriteCloser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.streams[c]; dup {
		rwc.Close()
		return
	}
	s.streams[c] = rwc
	if len(s.streams) == len(transport.AllChannels) {
		close(s.ready)
	}
}

// wait blocks until all three channels are open.
func (s *channelSet) wait(ctx context.Context, pc *webrtc.PeerConnection, peer string) (*transport.Channels, error) {
	select {
	case <-s.ready:
	case <-s.failed:
		return nil, s.err
	case <-ctx.Done():
		return nil, fmt.Errorf("open data channels: %w", context.Cause(ctx))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return &transport.Channels{
		Image:    s.streams[transport.ChannelImage],
		Cursor:   s.streams[transport.ChannelCursor],
		Keyboard: s.streams[transport.ChannelKeyboard],
		Peer:     peer,
		Conn:     pc,
	}, nil
}

// timeoutError maps a deadline hit on the dial context to
// transport.ErrConnectTimeout, leaving caller cancellation untouched.
func timeoutError(parent, dial context.Context, err error) error {
	if parent.Err() == nil && errors.Is(dial.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", transport.ErrConnectTimeout, err)
	}
	return err
}
