package peer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/junsooki/AirDesk/internal/signaling"
	"github.com/junsooki/AirDesk/internal/transport"
)

// DefaultNegotiationTimeout bounds each offer/answer exchange on the host.
const DefaultNegotiationTimeout = 15 * time.Second

// ErrSignalingClosed is returned when the signaling connection drops.
var ErrSignalingClosed = errors.New("signaling connection closed")

// Host accepts sessions offered by controllers through a signaling relay.
// It implements transport.Acceptor.
type Host struct {
	SignalingURL string
	ID           string
	Config       Config
	// NegotiationTimeout defaults to DefaultNegotiationTimeout.
	NegotiationTimeout time.Duration
	Logger             *slog.Logger
}

type offer struct {
	from    string
	payload json.RawMessage
}

// Listen registers with the signaling relay and returns once the host is
// reachable under its ID.
func (h *Host) Listen(ctx context.Context) (transport.Listener, error) {
	if h.ID == "" {
		return nil, errors.New("peer: host id is required")
	}
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	l := &hostListener{
		host:   h,
		logger: logger,
		offers: make(chan offer, 4),
		closed: make(chan struct{}),
	}
	registered := make(chan struct{})
	var (
		regOnce sync.Once
		errMu   sync.Mutex
		lastErr string
	)
	l.client = signaling.NewClient(h.SignalingURL, h.ID, signaling.ClientTypeHost, signaling.Handler{
		OnRegistered: func() { regOnce.Do(func() { close(registered) }) },
		OnOffer: func(from string, payload json.RawMessage) {
			select {
			case l.offers <- offer{from: from, payload: payload}:
			default:
				logger.Warn("dropping offer, host busy", "from", from)
			}
		},
		OnError: func(msg string) {
			errMu.Lock()
			lastErr = msg
			errMu.Unlock()
		},
	}, logger)

	if err := l.client.Connect(ctx); err != nil {
		return nil, err
	}
	select {
	case <-registered:
		return l, nil
	case <-l.client.Done():
		errMu.Lock()
		defer errMu.Unlock()
		if lastErr != "" {
			return nil, fmt.Errorf("signaling register: %s", lastErr)
		}
		return nil, ErrSignalingClosed
	case <-ctx.Done():
		l.client.Close()
		return nil, ctx.Err()
	}
}

type hostListener struct {
	host      *Host
	logger    *slog.Logger
	client    *signaling.Client
	offers    chan offer
	closed    chan struct{}
	closeOnce sync.Once
}

func (l *hostListener) Addr() string {
	return l.host.SignalingURL + "#" + l.host.ID
}

func (l *hostListener) Close() error {
	l.closeOnce.Do(func() {
		close(l.closed)
		l.client.Close()
	})
	return nil
}

// Accept answers offers until one yields three open channels. A failed
// negotiation is logged and the next offer is awaited.
func (l *hostListener) Accept(ctx context.Context) (*transport.Channels, error) {
	for {
		select {
		case o := <-l.offers:
			chans, err := l.answer(ctx, o)
			if err == nil {
				return chans, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			l.logger.Warn("negotiation failed", "from", o.from, "error", err)
		case <-l.client.Done():
			return nil, ErrSignalingClosed
		case <-l.closed:
			return nil, net.ErrClosed
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *hostListener) answer(ctx context.Context, o offer) (*transport.Channels, error) {
	timeout := l.host.NegotiationTimeout
	if timeout <= 0 {
		timeout = DefaultNegotiationTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger := l.logger.With("from", o.from)
	pc, err := l.host.Config.newPeerConnection()
	if err != nil {
		return nil, err
	}
	set := newChannelSet(pc, logger)
	pc.OnDataChannel(set.attach)

	chans, err := func() (*transport.Channels, error) {
		if err := setRemoteDescription(pc, o.payload); err != nil {
			return nil, err
		}
		answer, err := pc.CreateAnswer(nil)
		if err != nil {
			return nil, fmt.Errorf("create answer: %w", err)
		}
		desc, err := setLocalDescription(ctx, pc, answer)
		if err != nil {
			return nil, err
		}
		if err := l.client.SendAnswer(o.from, desc); err != nil {
			return nil, fmt.Errorf("send answer: %w", err)
		}
		return set.wait(ctx, pc, "webrtc:"+o.from)
	}()
	if err != nil {
		pc.Close()
		return nil, err
	}
	logger.Info("data channels open")
	return chans, nil
}
