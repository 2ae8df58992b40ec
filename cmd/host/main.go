// Airdesk-host shares this machine's screen with one controller at a
// time. It streams frames on the image channel and injects the pointer
// and keyboard events it receives.
//
// A session starts on launch. When it ends, SIGHUP starts a new one;
// SIGINT or SIGTERM stops the session and exits.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/junsooki/AirDesk/internal/capture"
	"github.com/junsooki/AirDesk/internal/codec"
	"github.com/junsooki/AirDesk/internal/config"
	"github.com/junsooki/AirDesk/internal/input/native"
	"github.com/junsooki/AirDesk/internal/logging"
	"github.com/junsooki/AirDesk/internal/peer"
	"github.com/junsooki/AirDesk/internal/permissions"
	"github.com/junsooki/AirDesk/internal/protocol"
	"github.com/junsooki/AirDesk/internal/session"
	"github.com/junsooki/AirDesk/internal/transport"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "airdesk-host: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.ParseHostFlags(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Options())
	if err != nil {
		return err
	}

	if !cfg.SkipPermissionCheck {
		if err := permissions.Check(true); err != nil {
			return err
		}
	}

	region, err := capture.ParseRegion(cfg.Region)
	if err != nil {
		return err
	}
	frameCodec, err := codec.Lookup(cfg.Codec)
	if err != nil {
		return err
	}
	capturer, err := capture.NewPlatformCapturer(cfg.Display)
	if err != nil {
		return fmt.Errorf("capture init: %w", err)
	}

	host, err := session.NewHost(session.HostConfig{
		Region:        region,
		Width:         cfg.Width,
		Height:        cfg.Height,
		Codec:         frameCodec,
		Interval:      cfg.Interval,
		StatsInterval: time.Second,
	}, newAcceptor(cfg, logger), capturer, native.NewPlatformInjector(), nil, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	restart := make(chan os.Signal, 1)
	signal.Notify(restart, syscall.SIGHUP)
	defer signal.Stop(restart)

	logger.Info("airdesk host starting",
		"transport", cfg.Transport,
		"display", cfg.Display,
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"codec", cfg.Codec,
	)
	if err := host.Start(ctx); err != nil {
		return err
	}
	if cfg.Transport == config.TransportWebRTC {
		logger.Info("share this host id with controllers", "id", cfg.HostID)
	}

	for {
		ended := make(chan error, 1)
		go func() { ended <- host.Wait() }()

	running:
		for {
			select {
			case <-ctx.Done():
				host.Stop()
				<-ended
				logger.Info("host stopped")
				return nil
			case <-restart:
				logger.Info("session still running, ignoring SIGHUP")
			case err := <-ended:
				logger.Info("session ended, send SIGHUP to start another", "error", err)
				break running
			}
		}

		for started := false; !started; {
			select {
			case <-ctx.Done():
				return nil
			case <-restart:
			}
			if err := host.Start(ctx); err != nil {
				logger.Error("restart failed", "error", err)
				continue
			}
			started = true
		}
	}
}

func newAcceptor(cfg *config.Config, logger *slog.Logger) transport.Acceptor {
	if cfg.Transport == config.TransportWebRTC {
		return &peer.Host{
			SignalingURL: cfg.Signaling,
			ID:           cfg.HostID,
			Config:       peer.Config{ICEServers: peer.DefaultICEServers},
			Logger:       logger,
		}
	}
	return &transport.TCPAcceptor{
		Host:     cfg.Listen,
		BasePort: cfg.Port,
		// Bounds kernel-side queueing to about two raw frames.
		ImageWriteBuffer: 2 * cfg.Width * cfg.Height * protocol.BytesPerPixel,
	}
}
