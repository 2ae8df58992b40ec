// Package config loads host and controller settings.
//
// Settings come from three layers, later ones winning: built-in
// defaults, an optional YAML file named by --config or the AIRDESK_CONFIG
// environment variable, and flags given explicitly on the command line.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/junsooki/AirDesk/internal/capture"
	"github.com/junsooki/AirDesk/internal/codec"
	"github.com/junsooki/AirDesk/internal/logging"
)

// EnvConfigFile names the environment variable consulted when --config is
// not given.
const EnvConfigFile = "AIRDESK_CONFIG"

// Transport names.
const (
	TransportTCP    = "tcp"
	TransportWebRTC = "webrtc"
)

// DefaultPort is the image channel port; cursor and keyboard use the two
// ports below it.
const DefaultPort = 9999

const maxFrameDimension = 16384

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Options converts the config into logging options.
func (c LogConfig) Options() logging.Options {
	return logging.Options{Level: c.Level, Format: c.Format}
}

// Config holds the host (server agent) settings.
type Config struct {
	Listen    string        `yaml:"listen"`
	Port      int           `yaml:"port"`
	Display   int           `yaml:"display"`
	Region    string        `yaml:"region"`
	Width     int           `yaml:"width"`
	Height    int           `yaml:"height"`
	Codec     string        `yaml:"codec"`
	Interval  time.Duration `yaml:"interval"`
	Transport string        `yaml:"transport"`
	Signaling string        `yaml:"signaling"`
	HostID    string        `yaml:"id"`
	// SkipPermissionCheck starts even when the OS reports missing
	// capture or accessibility permission.
	SkipPermissionCheck bool      `yaml:"skip_permission_check"`
	Log                 LogConfig `yaml:"log"`
}

// DefaultHostConfig returns the built-in host defaults.
func DefaultHostConfig() Config {
	return Config{
		Port:      DefaultPort,
		Width:     1920,
		Height:    1080,
		Codec:     codec.NameSnappy,
		Interval:  30 * time.Millisecond,
		Transport: TransportTCP,
		Signaling: "ws://localhost:8080/ws",
		Log:       LogConfig{Level: "info", Format: logging.FormatAuto},
	}
}

func bindHostFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "interface to listen on (empty = all)")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "image channel port; cursor and keyboard use port-1 and port-2")
	fs.IntVar(&cfg.Display, "display", cfg.Display, "display index to capture (0 = primary)")
	fs.StringVar(&cfg.Region, "region", cfg.Region, "capture region x,y,width,height (empty = whole display)")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "frame width sent to the controller")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "frame height sent to the controller")
	fs.StringVar(&cfg.Codec, "codec", cfg.Codec, fmt.Sprintf("frame compression %v", codec.Names()))
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "target time between captures")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "tcp or webrtc")
	fs.StringVar(&cfg.Signaling, "signaling", cfg.Signaling, "signaling server WebSocket URL (webrtc)")
	fs.StringVar(&cfg.HostID, "id", cfg.HostID, "host ID for signaling (auto-generated if empty)")
	fs.BoolVar(&cfg.SkipPermissionCheck, "skip-permission-check", cfg.SkipPermissionCheck, "start without checking OS permissions")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "debug, info, warn or error")
	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "auto, text or json")
}

// ParseHostFlags builds the host config from args (without the program
// name). It returns pflag.ErrHelp when help was requested.
func ParseHostFlags(args []string) (*Config, error) {
	cfg, err := load("airdesk-host", args, DefaultHostConfig, bindHostFlags)
	if err != nil {
		return nil, err
	}
	if cfg.HostID == "" {
		cfg.HostID = "host-" + shortID()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := validatePort(c.Port); err != nil {
		return err
	}
	if c.Width <= 0 || c.Height <= 0 || c.Width > maxFrameDimension || c.Height > maxFrameDimension {
		return fmt.Errorf("invalid frame size %dx%d", c.Width, c.Height)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.Display < 0 {
		return fmt.Errorf("invalid display index %d", c.Display)
	}
	if _, err := capture.ParseRegion(c.Region); err != nil {
		return err
	}
	if _, err := codec.Lookup(c.Codec); err != nil {
		return err
	}
	return validateTransport(c.Transport, c.Signaling)
}

// ControllerConfig holds the controller (viewer) settings.
type ControllerConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
	// ConnectTimeout bounds channel establishment. Zero picks a default
	// for the transport.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	Codec          string        `yaml:"codec"`
	Transport      string        `yaml:"transport"`
	Signaling      string        `yaml:"signaling"`
	HostID         string        `yaml:"host"`
	ControllerID   string        `yaml:"id"`
	WindowWidth    int           `yaml:"window_width"`
	WindowHeight   int           `yaml:"window_height"`
	Log            LogConfig     `yaml:"log"`
}

// DefaultControllerConfig returns the built-in controller defaults.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		Address:      "localhost",
		Port:         DefaultPort,
		Codec:        codec.NameSnappy,
		Transport:    TransportTCP,
		Signaling:    "ws://localhost:8080/ws",
		WindowWidth:  1280,
		WindowHeight: 720,
		Log:          LogConfig{Level: "info", Format: logging.FormatAuto},
	}
}

func bindControllerFlags(fs *pflag.FlagSet, cfg *ControllerConfig) {
	fs.StringVar(&cfg.Address, "address", cfg.Address, "host address (tcp)")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "host image channel port")
	fs.DurationVar(&cfg.ConnectTimeout, "connect-timeout", cfg.ConnectTimeout, "connection timeout (default 1s for tcp, 15s for webrtc)")
	fs.StringVar(&cfg.Codec, "codec", cfg.Codec, fmt.Sprintf("frame compression, must match the host %v", codec.Names()))
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "tcp or webrtc")
	fs.StringVar(&cfg.Signaling, "signaling", cfg.Signaling, "signaling server WebSocket URL (webrtc)")
	fs.StringVar(&cfg.HostID, "host", cfg.HostID, "host ID to connect to (webrtc)")
	fs.StringVar(&cfg.ControllerID, "id", cfg.ControllerID, "controller ID for signaling (auto-generated if empty)")
	fs.IntVar(&cfg.WindowWidth, "window-width", cfg.WindowWidth, "initial window width")
	fs.IntVar(&cfg.WindowHeight, "window-height", cfg.WindowHeight, "initial window height")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "debug, info, warn or error")
	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "auto, text or json")
}

// ParseControllerFlags builds the controller config from args.
func ParseControllerFlags(args []string) (*ControllerConfig, error) {
	cfg, err := load("airdesk-controller", args, DefaultControllerConfig, bindControllerFlags)
	if err != nil {
		return nil, err
	}
	if cfg.ControllerID == "" {
		cfg.ControllerID = "controller-" + shortID()
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = time.Second
		if cfg.Transport == TransportWebRTC {
			cfg.ConnectTimeout = 15 * time.Second
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *ControllerConfig) Validate() error {
	if err := validatePort(c.Port); err != nil {
		return err
	}
	if c.ConnectTimeout < 0 {
		return fmt.Errorf("connect timeout must not be negative, got %s", c.ConnectTimeout)
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.WindowWidth, c.WindowHeight)
	}
	if _, err := codec.Lookup(c.Codec); err != nil {
		return err
	}
	if err := validateTransport(c.Transport, c.Signaling); err != nil {
		return err
	}
	switch c.Transport {
	case TransportTCP:
		if c.Address == "" {
			return errors.New("address is required for tcp transport")
		}
	case TransportWebRTC:
		if c.HostID == "" {
			return errors.New("host ID is required for webrtc transport")
		}
	}
	return nil
}

func validatePort(port int) error {
	if port-2 < 1 || port > 65535 {
		return fmt.Errorf("port %d out of range (need 3 <= port <= 65535)", port)
	}
	return nil
}

func validateTransport(transport, signaling string) error {
	switch transport {
	case TransportTCP:
		return nil
	case TransportWebRTC:
		if signaling == "" {
			return errors.New("signaling URL is required for webrtc transport")
		}
		return nil
	default:
		return fmt.Errorf("unknown transport %q (want tcp or webrtc)", transport)
	}
}

// load parses args over defaults, then, when a config file is named,
// re-applies only the explicitly set flags on top of the file contents.
func load[C any](name string, args []string, defaults func() C, bind func(*pflag.FlagSet, *C)) (*C, error) {
	cfg := defaults()
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	bind(fs, &cfg)
	var path string
	fs.StringVar(&path, "config", os.Getenv(EnvConfigFile), "YAML config file (env "+EnvConfigFile+")")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	if path == "" {
		return &cfg, nil
	}

	fileCfg := defaults()
	if err := loadFile(path, &fileCfg); err != nil {
		return nil, err
	}
	overlay := pflag.NewFlagSet(name, pflag.ContinueOnError)
	bind(overlay, &fileCfg)
	var setErr error
	fs.Visit(func(f *pflag.Flag) {
		if f.Name == "config" || setErr != nil {
			return
		}
		setErr = overlay.Set(f.Name, f.Value.String())
	})
	if setErr != nil {
		return nil, setErr
	}
	return &fileCfg, nil
}

func loadFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func shortID() string {
	return uuid.NewString()[:8]
}
