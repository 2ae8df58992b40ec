package session

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/junsooki/AirDesk/internal/codec"
	"github.com/junsooki/AirDesk/internal/decoder"
	"github.com/junsooki/AirDesk/internal/input"
	"github.com/junsooki/AirDesk/internal/protocol"
	"github.com/junsooki/AirDesk/internal/transport"
)

const (
	// DefaultFPSInterval is how often the received frame rate is reported.
	DefaultFPSInterval = time.Second
	// DefaultQueueSize bounds each input queue.
	DefaultQueueSize = 256
)

// ControllerConfig configures the viewer side of a session.
type ControllerConfig struct {
	// Codec must match the host's when the host compresses.
	Codec       codec.Codec
	FPSInterval time.Duration
	QueueSize   int
}

// Controller dials a host, renders what it streams, and forwards local
// input. Input methods never block: they enqueue onto bounded queues
// drained by the channel writers.
type Controller struct {
	cfg       ControllerConfig
	dialer    transport.Dialer
	status    Status
	logger    *slog.Logger
	lifecycle *Lifecycle

	slot    FrameSlot
	fps     FPSCounter
	active  atomic.Pointer[activeSession]
	dropped atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// activeSession is what input methods need from a running session.
type activeSession struct {
	params protocol.InitParams
	cursor chan input.CursorEvent
	keys   chan input.KeyEvent
}

// NewController returns a controller in StateIdle.
func NewController(cfg ControllerConfig, dialer transport.Dialer, status Status, logger *slog.Logger) *Controller {
	if cfg.FPSInterval <= 0 {
		cfg.FPSInterval = DefaultFPSInterval
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if status == nil {
		status = LogStatus{Logger: logger}
	}
	return &Controller{
		cfg:       cfg,
		dialer:    dialer,
		status:    status,
		logger:    logger,
		lifecycle: NewLifecycle(status),
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.lifecycle.State() }

// CurrentFrame returns the latest complete frame, or nil.
func (c *Controller) CurrentFrame() *image.RGBA { return c.slot.Load() }

// Params returns the handshake of the active session.
func (c *Controller) Params() (protocol.InitParams, bool) {
	s := c.active.Load()
	if s == nil {
		return protocol.InitParams{}, false
	}
	return s.params, true
}

// Dropped returns how many input events were discarded because a queue
// was full.
func (c *Controller) Dropped() int64 { return c.dropped.Load() }

// Start begins connecting in the background. Progress is reported via
// Status; the outcome via Wait.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.lifecycle.begin(); err != nil {
		return err
	}
	sctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.mu.Lock()
	c.cancel, c.done, c.err = cancel, done, nil
	c.mu.Unlock()
	c.slot.Publish(nil)

	logger := c.logger.With("session", uuid.NewString())
	go func() {
		defer close(done)
		defer cancel()
		err := c.run(sctx, logger)
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
	}()
	return nil
}

// Stop ends the current session without waiting.
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the current session has stopped.
func (c *Controller) Wait() error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller) run(ctx context.Context, logger *slog.Logger) (err error) {
	defer func() {
		c.active.Store(nil)
		c.lifecycle.Transition(StateStopping, err)
		c.lifecycle.Transition(StateStopped, err)
		logger.Info("session ended", "error", err)
	}()

	chans, err := c.dialer.Dial(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connect: %w", err)
	}
	logger = logger.With("peer", chans.Peer)

	frames := bufio.NewReaderSize(chans.Image, imageBufferSize)
	params, err := protocol.ReadInitParams(frames)
	if err != nil {
		chans.Close()
		if ctx.Err() != nil {
			return nil
		}
		return channelError(transport.ChannelImage, "handshake", err)
	}
	dec, err := decoder.NewFrameDecoder(params, c.cfg.Codec)
	if err != nil {
		chans.Close()
		return err
	}

	s := &activeSession{
		params: params,
		cursor: make(chan input.CursorEvent, c.cfg.QueueSize),
		keys:   make(chan input.KeyEvent, c.cfg.QueueSize),
	}
	c.fps.Tick()
	c.active.Store(s)
	if err := c.lifecycle.Transition(StateActive, nil); err != nil {
		chans.Close()
		return err
	}
	logger.Info("session active", "params", params)

	receiver := &frameReceiver{
		r:          frames,
		maxPayload: params.MaxPayload(),
		decoder:    dec,
		slot:       &c.slot,
		received:   &c.fps,
		logger:     logger.With("channel", transport.ChannelImage),
	}
	cursorLogger := logger.With("channel", transport.ChannelCursor)
	keyLogger := logger.With("channel", transport.ChannelKeyboard)
	onStop := func(cause error) {
		c.active.Store(nil)
		c.lifecycle.Transition(StateStopping, cause)
	}
	return runWorkers(ctx, chans, onStop,
		receiver.run,
		func(ctx context.Context) error {
			return sendEvents(ctx, transport.ChannelCursor, chans.Cursor, s.cursor, protocol.WriteCursorEvent, cursorLogger)
		},
		func(ctx context.Context) error {
			return sendEvents(ctx, transport.ChannelKeyboard, chans.Keyboard, s.keys, protocol.WriteKeyEvent, keyLogger)
		},
		func(ctx context.Context) error {
			return reportFPS(ctx, c.cfg.FPSInterval, &c.fps, c.status)
		},
	)
}

// PointerMoved forwards a pointer position inside a view of the given
// size, mapped into source display coordinates.
func (c *Controller) PointerMoved(localX, localY, viewWidth, viewHeight int) {
	s := c.active.Load()
	if s == nil {
		return
	}
	x, y, ok := input.MapPoint(localX, localY, viewWidth, viewHeight,
		int(s.params.SourceWidth), int(s.params.SourceHeight))
	if !ok {
		return
	}
	enqueue(c, s.cursor, input.Move(x, y), transport.ChannelCursor)
}

// PointerButton forwards a button press or release.
func (c *Controller) PointerButton(b input.Button, pressed bool) {
	s := c.active.Load()
	if s == nil {
		return
	}
	e := input.ButtonUp(b)
	if pressed {
		e = input.ButtonDown(b)
	}
	enqueue(c, s.cursor, e, transport.ChannelCursor)
}

// Wheel forwards one wheel notch. up scrolls toward the start of the
// content.
func (c *Controller) Wheel(up bool) {
	s := c.active.Load()
	if s == nil {
		return
	}
	e := input.WheelDown()
	if up {
		e = input.WheelUp()
	}
	enqueue(c, s.cursor, e, transport.ChannelCursor)
}

// Key forwards a key press or release.
func (c *Controller) Key(code input.KeyCode, pressed bool) {
	s := c.active.Load()
	if s == nil {
		return
	}
	e := input.KeyUp(code)
	if pressed {
		e = input.KeyDown(code)
	}
	enqueue(c, s.keys, e, transport.ChannelKeyboard)
}

func enqueue[E any](c *Controller, queue chan<- E, e E, ch transport.Channel) {
	select {
	case queue <- e:
	default:
		if n := c.dropped.Add(1); n == 1 || n%100 == 0 {
			c.logger.Warn("input queue full, dropping event", "channel", ch, "event", e, "dropped", n)
		}
	}
}
