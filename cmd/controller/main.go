// Airdesk-controller connects to a host, shows its screen in a window and
// forwards local pointer and keyboard input. Closing the window ends the
// session.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/junsooki/AirDesk/internal/codec"
	"github.com/junsooki/AirDesk/internal/config"
	"github.com/junsooki/AirDesk/internal/display"
	"github.com/junsooki/AirDesk/internal/logging"
	"github.com/junsooki/AirDesk/internal/peer"
	"github.com/junsooki/AirDesk/internal/session"
	"github.com/junsooki/AirDesk/internal/transport"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "airdesk-controller: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.ParseControllerFlags(args)
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
	frameCodec, err := codec.Lookup(cfg.Codec)
	if err != nil {
		return err
	}

	dialer, target := newDialer(cfg, logger)
	window := display.NewEbitenDisplay("AirDesk - " + target)
	ctrl := session.NewController(session.ControllerConfig{Codec: frameCodec}, dialer,
		session.MultiStatus{window, session.LogStatus{Logger: logger}}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		window.Close()
	}()

	logger.Info("connecting", "transport", cfg.Transport, "target", target)
	if err := ctrl.Start(ctx); err != nil {
		return err
	}

	// The window stays open after a failed or ended session so the
	// overlay can show why.
	runErr := window.Run(ctrl, cfg.WindowWidth, cfg.WindowHeight)
	ctrl.Stop()
	sessionErr := ctrl.Wait()
	if runErr != nil {
		return fmt.Errorf("display: %w", runErr)
	}
	if ctrl.Dropped() > 0 {
		logger.Warn("input events dropped during session", "dropped", ctrl.Dropped())
	}
	return sessionErr
}

func newDialer(cfg *config.ControllerConfig, logger *slog.Logger) (transport.Dialer, string) {
	if cfg.Transport == config.TransportWebRTC {
		return &peer.Controller{
			SignalingURL: cfg.Signaling,
			ID:           cfg.ControllerID,
			HostID:       cfg.HostID,
			Config:       peer.Config{ICEServers: peer.DefaultICEServers},
			Timeout:      cfg.ConnectTimeout,
			Logger:       logger,
		}, cfg.HostID
	}
	return &transport.TCPDialer{
		Host:     cfg.Address,
		BasePort: cfg.Port,
		Timeout:  cfg.ConnectTimeout,
	}, net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port))
}
