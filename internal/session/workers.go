package session

import (
	"bufio"
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/junsooki/AirDesk/internal/capture"
	"github.com/junsooki/AirDesk/internal/decoder"
	"github.com/junsooki/AirDesk/internal/encoder"
	"github.com/junsooki/AirDesk/internal/protocol"
	"github.com/junsooki/AirDesk/internal/transport"
)

// imageBufferSize is the bufio size wrapped around the image channel.
const imageBufferSize = 64 * 1024

// worker is one channel loop. It returns nil when ctx is done and an
// error only for failures that must end the session.
type worker func(ctx context.Context) error

// runWorkers runs the workers of an established session until the first
// fatal error or until ctx is done. All three channels are closed as soon
// as the group's context ends, which unblocks any worker stuck in a read
// or write. onStop is called with the cause once every worker has
// returned and before runWorkers does. An operator stop (ctx done)
// returns nil and reports a nil cause.
func runWorkers(ctx context.Context, chans *transport.Channels, onStop func(cause error), workers ...worker) error {
	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, func() { chans.Close() })
	defer stop()

	for _, w := range workers {
		g.Go(func() error { return w(gctx) })
	}
	err := g.Wait()
	chans.Close()
	if ctx.Err() != nil {
		onStop(nil)
		return nil
	}
	cause := err
	if cause == nil {
		cause = context.Cause(gctx)
	}
	onStop(cause)
	return err
}

// frameSender is the host's image worker: capture, scale, compress,
// write, flush, then wait out the rest of the interval. Each frame is
// fully written before the next capture begins.
type frameSender struct {
	w        *bufio.Writer
	capturer capture.Capturer
	region   image.Rectangle
	encoder  *encoder.FrameEncoder
	interval time.Duration
	sent     *FPSCounter
	logger   *slog.Logger
}

func (s *frameSender) run(ctx context.Context) error {
	timer := time.NewTimer(s.interval)
	timer.Stop()
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		start := time.Now()
		img, err := s.capturer.CaptureRegion(s.region)
		if err != nil {
			return channelError(transport.ChannelImage, "capture", err)
		}
		payload, err := s.encoder.Encode(img)
		if err != nil {
			return channelError(transport.ChannelImage, "encode", err)
		}
		if err := protocol.WriteFrame(s.w, payload); err != nil {
			return channelError(transport.ChannelImage, "write", err)
		}
		if err := s.w.Flush(); err != nil {
			return channelError(transport.ChannelImage, "flush", err)
		}
		s.sent.Inc()
		s.logger.Debug("frame sent", "bytes", len(payload), "elapsed", time.Since(start))

		if wait := s.interval - time.Since(start); wait > 0 {
			timer.Reset(wait)
			select {
			case <-ctx.Done():
				return nil
			case <-timer.C:
			}
		}
	}
}

// frameReceiver is the controller's image worker. Malformed frames are
// dropped; only transport failures end the loop.
type frameReceiver struct {
	r          io.Reader
	maxPayload int
	decoder    decoder.Decoder
	slot       *FrameSlot
	received   *FPSCounter
	logger     *slog.Logger
}

func (f *frameReceiver) run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		payload, err := protocol.ReadFrame(f.r, f.maxPayload)
		if err != nil {
			return channelError(transport.ChannelImage, "read", err)
		}
		img, err := f.decoder.Decode(payload)
		if err != nil {
			f.logger.Warn("dropping malformed frame", "bytes", len(payload), "error", err)
			continue
		}
		f.slot.Publish(img)
		f.received.Inc()
	}
}

// sendEvents drains queue onto w, flushing after every event.
func sendEvents[E any](ctx context.Context, c transport.Channel, w io.Writer, queue <-chan E,
	encode func(io.Writer, E) error, logger *slog.Logger,
) error {
	bw := bufio.NewWriter(w)
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-queue:
			if err := encode(bw, e); err != nil {
				logger.Warn("dropping unencodable event", "event", e, "error", err)
				continue
			}
			if err := bw.Flush(); err != nil {
				return channelError(c, "write", err)
			}
		}
	}
}

// receiveEvents decodes events from r and hands each to inject. Unknown
// event types and injection failures are logged and skipped.
func receiveEvents[E any](ctx context.Context, c transport.Channel, r io.Reader,
	decode func(io.Reader) (E, error), inject func(E) error, logger *slog.Logger,
) error {
	br := bufio.NewReader(r)
	for {
		if ctx.Err() != nil {
			return nil
		}
		e, err := decode(br)
		if err != nil {
			var unknown *protocol.UnknownEventError
			if errors.As(err, &unknown) {
				logger.Warn("ignoring unknown event", "type", unknown.Type, "button", unknown.Button)
				continue
			}
			return channelError(c, "read", err)
		}
		logger.Debug("event received", "event", e)
		if err := inject(e); err != nil {
			logger.Warn("injection failed", "event", e, "error", err)
		}
	}
}

// reportFPS publishes the counter to status once per interval.
func reportFPS(ctx context.Context, interval time.Duration, counter *FPSCounter, status Status) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			status.FPS(counter.Tick())
		}
	}
}
