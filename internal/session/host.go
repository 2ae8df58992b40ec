package session

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/junsooki/AirDesk/internal/capture"
	"github.com/junsooki/AirDesk/internal/codec"
	"github.com/junsooki/AirDesk/internal/encoder"
	"github.com/junsooki/AirDesk/internal/input"
	"github.com/junsooki/AirDesk/internal/protocol"
	"github.com/junsooki/AirDesk/internal/transport"
)

// DefaultInterval is the target time between frame captures.
const DefaultInterval = 30 * time.Millisecond

// HostConfig configures the server side of a session.
type HostConfig struct {
	// Region is the part of the display to stream. The zero rectangle
	// streams the whole display.
	Region image.Rectangle
	// Width and Height are the frame size sent on the wire.
	Width, Height int
	// Codec compresses frames. nil or codec.None disables compression.
	Codec codec.Codec
	// Interval is the target capture period. Zero uses DefaultInterval.
	Interval time.Duration
	// StatsInterval, when positive, reports the send rate to Status.
	StatsInterval time.Duration
}

// Host serves one session at a time: it waits for a controller to
// connect all three channels, sends the handshake, then streams frames
// and injects the events it receives.
type Host struct {
	cfg       HostConfig
	acceptor  transport.Acceptor
	capturer  capture.Capturer
	injector  input.Injector
	status    Status
	logger    *slog.Logger
	lifecycle *Lifecycle

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewHost validates cfg and returns a host in StateIdle. A nil status
// reports to logger.
func NewHost(cfg HostConfig, acceptor transport.Acceptor, capturer capture.Capturer,
	injector input.Injector, status Status, logger *slog.Logger,
) (*Host, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Codec == nil {
		cfg.Codec = codec.None{}
	}
	if status == nil {
		status = LogStatus{Logger: logger}
	}
	return &Host{
		cfg:       cfg,
		acceptor:  acceptor,
		capturer:  capturer,
		injector:  injector,
		status:    status,
		logger:    logger,
		lifecycle: NewLifecycle(status),
	}, nil
}

// State returns the current lifecycle state.
func (h *Host) State() State { return h.lifecycle.State() }

// Start binds the endpoints and begins waiting for a controller. It
// returns once peers can connect; the session then runs in the
// background until it fails, Stop is called, or ctx is done.
func (h *Host) Start(ctx context.Context) error {
	region, err := capture.Region(h.capturer, h.cfg.Region)
	if err != nil {
		return fmt.Errorf("capture region: %w", err)
	}
	enc, err := encoder.NewFrameEncoder(h.cfg.Width, h.cfg.Height, h.cfg.Codec)
	if err != nil {
		return err
	}
	if err := h.lifecycle.begin(); err != nil {
		return err
	}

	listener, err := h.acceptor.Listen(ctx)
	if err != nil {
		err = fmt.Errorf("listen: %w", err)
		h.lifecycle.Transition(StateStopping, err)
		h.lifecycle.Transition(StateStopped, err)
		return err
	}

	sctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	h.mu.Lock()
	h.cancel, h.done, h.err = cancel, done, nil
	h.mu.Unlock()

	logger := h.logger.With("session", uuid.NewString())
	logger.Info("awaiting connections",
		"addr", listener.Addr(),
		"region", region,
		"width", h.cfg.Width,
		"height", h.cfg.Height,
		"codec", h.cfg.Codec.Name(),
	)
	go func() {
		defer close(done)
		defer cancel()
		err := h.run(sctx, listener, region, enc, logger)
		h.mu.Lock()
		h.err = err
		h.mu.Unlock()
	}()
	return nil
}

// Stop ends the current session. It does not wait; use Wait.
func (h *Host) Stop() {
	h.mu.Lock()
	cancel := h.cancel
	h.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the current session has stopped and returns the
// failure that ended it, or nil for an operator stop.
func (h *Host) Wait() error {
	h.mu.Lock()
	done := h.done
	h.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *Host) run(ctx context.Context, listener transport.Listener, region image.Rectangle,
	enc *encoder.FrameEncoder, logger *slog.Logger,
) (err error) {
	defer func() {
		h.lifecycle.Transition(StateStopping, err)
		h.lifecycle.Transition(StateStopped, err)
		logger.Info("session ended", "error", err)
	}()

	chans, err := listener.Accept(ctx)
	listener.Close()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("accept: %w", err)
	}
	logger = logger.With("peer", chans.Peer)

	params := protocol.InitParams{
		SourceWidth:  int32(region.Dx()),
		SourceHeight: int32(region.Dy()),
		TargetWidth:  int32(h.cfg.Width),
		TargetHeight: int32(h.cfg.Height),
		Compressed:   enc.Compressed(),
	}
	frames := bufio.NewWriterSize(chans.Image, imageBufferSize)
	err = protocol.WriteInitParams(frames, params)
	if err == nil {
		err = frames.Flush()
	}
	if err != nil {
		chans.Close()
		if ctx.Err() != nil {
			return nil
		}
		return channelError(transport.ChannelImage, "handshake", err)
	}

	if err := h.lifecycle.Transition(StateActive, nil); err != nil {
		chans.Close()
		return err
	}
	logger.Info("session active", "params", params)

	sent := &FPSCounter{}
	workers := []worker{
		(&frameSender{
			w:        frames,
			capturer: h.capturer,
			region:   region,
			encoder:  enc,
			interval: h.cfg.Interval,
			sent:     sent,
			logger:   logger.With("channel", transport.ChannelImage),
		}).run,
		func(ctx context.Context) error {
			return receiveEvents(ctx, transport.ChannelCursor, chans.Cursor,
				protocol.ReadCursorEvent, regionPointer(h.injector, region),
				logger.With("channel", transport.ChannelCursor))
		},
		func(ctx context.Context) error {
			return receiveEvents(ctx, transport.ChannelKeyboard, chans.Keyboard,
				protocol.ReadKeyEvent, h.injector.InjectKey,
				logger.With("channel", transport.ChannelKeyboard))
		},
	}
	if h.cfg.StatsInterval > 0 {
		workers = append(workers, func(ctx context.Context) error {
			return reportFPS(ctx, h.cfg.StatsInterval, sent, h.status)
		})
	}

	onStop := func(cause error) { h.lifecycle.Transition(StateStopping, cause) }
	return runWorkers(ctx, chans, onStop, workers...)
}

// regionPointer translates moves from frame coordinates into display
// coordinates and keeps them inside region.
func regionPointer(inj input.Injector, region image.Rectangle) func(input.CursorEvent) error {
	return func(e input.CursorEvent) error {
		if e.Action == input.CursorMove {
			e.X = int32(region.Min.X + clamp(int(e.X), 0, region.Dx()-1))
			e.Y = int32(region.Min.Y + clamp(int(e.Y), 0, region.Dy()-1))
		}
		return inj.InjectPointer(e)
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
