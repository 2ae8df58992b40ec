package peer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/junsooki/AirDesk/internal/signaling"
	"github.com/junsooki/AirDesk/internal/transport"
)

// DefaultDialTimeout bounds a whole WebRTC dial.
const DefaultDialTimeout = 15 * time.Second

// Controller offers a session to one host through a signaling relay. It
// implements transport.Dialer.
type Controller struct {
	SignalingURL string
	// ID is the controller's signaling ID; empty picks a random one.
	ID     string
	HostID string
	Config Config
	// Timeout defaults to DefaultDialTimeout. Hitting it yields
	// transport.ErrConnectTimeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

func (c *Controller) Dial(ctx context.Context) (*transport.Channels, error) {
	if c.HostID == "" {
		return nil, errors.New("peer: host id is required")
	}
	id := c.ID
	if id == "" {
		id = "controller-" + uuid.NewString()[:8]
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("host", c.HostID)

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chans, err := c.dial(dialCtx, id, logger)
	if err != nil {
		return nil, timeoutError(ctx, dialCtx, err)
	}
	return chans, nil
}

func (c *Controller) dial(ctx context.Context, id string, logger *slog.Logger) (*transport.Channels, error) {
	var (
		registered = make(chan struct{})
		answers    = make(chan json.RawMessage, 1)
		failures   = make(chan error, 1)
		regOnce    sync.Once
	)
	fail := func(err error) {
		select {
		case failures <- err:
		default:
		}
	}
	client := signaling.NewClient(c.SignalingURL, id, signaling.ClientTypeController, signaling.Handler{
		OnRegistered: func() { regOnce.Do(func() { close(registered) }) },
		OnAnswer: func(from string, payload json.RawMessage) {
			if from != c.HostID {
				return
			}
			select {
			case answers <- payload:
			default:
			}
		},
		OnHostDisconnected: func(hostID string) {
			if hostID == c.HostID {
				fail(fmt.Errorf("host %s disconnected from signaling", hostID))
			}
		},
		OnError: func(msg string) { fail(fmt.Errorf("signaling: %s", msg)) },
	}, logger)

	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	// Signaling is only needed until the channels are up.
	defer client.Close()

	select {
	case <-registered:
	case err := <-failures:
		return nil, err
	case <-client.Done():
		return nil, ErrSignalingClosed
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}

	pc, err := c.Config.newPeerConnection()
	if err != nil {
		return nil, err
	}
	set := newChannelSet(pc, logger)

	chans, err := func() (*transport.Channels, error) {
		for _, ch := range transport.AllChannels {
			dc, err := pc.CreateDataChannel(ch.String(), nil)
			if err != nil {
				return nil, fmt.Errorf("create %s channel: %w", ch, err)
			}
			set.attach(dc)
		}
		offer, err := pc.CreateOffer(nil)
		if err != nil {
			return nil, fmt.Errorf("create offer: %w", err)
		}
		desc, err := setLocalDescription(ctx, pc, offer)
		if err != nil {
			return nil, err
		}
		if err := client.SendOffer(c.HostID, desc); err != nil {
			return nil, fmt.Errorf("send offer: %w", err)
		}
		logger.Debug("offer sent")

		select {
		case answer := <-answers:
			if err := setRemoteDescription(pc, answer); err != nil {
				return nil, err
			}
		case err := <-failures:
			return nil, err
		case <-client.Done():
			return nil, ErrSignalingClosed
		case <-ctx.Done():
			return nil, fmt.Errorf("await answer: %w", context.Cause(ctx))
		}
		return set.wait(ctx, pc, "webrtc:"+c.HostID)
	}()
	if err != nil {
		pc.Close()
		return nil, err
	}
	logger.Info("data channels open")
	return chans, nil
}
