package trishade

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Configuration errors.
var (
	// ErrInvalidSize is returned when the window size is not positive.
	ErrInvalidSize = errors.New("trishade: window size must be positive")

	// ErrInvalidLogLevel is returned for unknown log level names.
	ErrInvalidLogLevel = errors.New("trishade: unknown log level")
)

// Config holds the startup settings for the demo. The zero value is not
// useful; start from DefaultConfig and override with the With* methods or
// LoadConfig.
//
// Example:
//
//	cfg := trishade.DefaultConfig().
//	    WithTitle("Triangle").
//	    WithSize(1024, 768)
type Config struct {
	// Title is the window title.
	Title string `yaml:"title"`

	// Width and Height are the requested initial window size in screen
	// coordinates. The surface follows the physical framebuffer size.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Platform names the device platform to open ("vulkan", "headless").
	// Empty selects the highest-priority available platform.
	Platform string `yaml:"platform"`

	// LogLevel is one of "debug", "info", "warn", "error" or "off".
	LogLevel string `yaml:"log_level"`

	// Frames limits the number of frames rendered by headless runs.
	// Zero means run until the loop is asked to exit.
	Frames int `yaml:"frames"`

	// BlockingBootstrap constructs the render state inside the first
	// window callback instead of in the background.
	BlockingBootstrap bool `yaml:"blocking_bootstrap"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Title:    "trishade",
		Width:    800,
		Height:   600,
		Platform: "",
		LogLevel: "info",
	}
}

// WithTitle returns a copy of c with the window title set.
func (c Config) WithTitle(title string) Config {
	c.Title = title
	return c
}

// WithSize returns a copy of c with the initial window size set.
func (c Config) WithSize(width, height int) Config {
	c.Width = width
	c.Height = height
	return c
}

// WithPlatform returns a copy of c with the platform name set.
func (c Config) WithPlatform(name string) Config {
	c.Platform = name
	return c
}

// WithLogLevel returns a copy of c with the log level set.
func (c Config) WithLogLevel(level string) Config {
	c.LogLevel = level
	return c
}

// WithFrames returns a copy of c with the headless frame limit set.
func (c Config) WithFrames(n int) Config {
	c.Frames = n
	return c
}

// WithBlockingBootstrap returns a copy of c with blocking bootstrap enabled
// or disabled.
func (c Config) WithBlockingBootstrap(enabled bool) Config {
	c.BlockingBootstrap = enabled
	return c
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, c.Width, c.Height)
	}
	if c.Frames < 0 {
		return fmt.Errorf("trishade: frame limit must not be negative: %d", c.Frames)
	}
	if _, _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level converts LogLevel to a slog level. The boolean is false when
// logging is switched off.
func (c Config) Level() (slog.Level, bool, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug, true, nil
	case "", "info":
		return slog.LevelInfo, true, nil
	case "warn", "warning":
		return slog.LevelWarn, true, nil
	case "error":
		return slog.LevelError, true, nil
	case "off", "none":
		return slog.LevelInfo, false, nil
	default:
		return slog.LevelInfo, false, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
}

// LoadConfig reads a YAML file and overlays it on DefaultConfig.
// Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
