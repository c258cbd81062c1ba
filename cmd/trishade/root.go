package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gogpu/trishade"
	"github.com/gogpu/trishade/app"
	"github.com/gogpu/trishade/internal/window"
	"github.com/gogpu/trishade/platform"
)

type flags struct {
	platform string
	width    int
	height   int
	title    string
	config   string
	logLevel string
	frames   int
	blocking bool
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "trishade",
		Short: "Draw a GPU triangle with two switchable pipelines",
		Long: `trishade opens a window and draws a triangle.

  Space   toggle between the flat and the position-shaded pipeline
  Pointer steer the background color
  Escape  quit

The headless platform renders offscreen with a noop device and is meant
for CI; combine it with --frames.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, *f)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return run(ctx, cfg, cmd.ErrOrStderr())
		},
	}
	bindFlags(cmd, f)
	return cmd
}

func bindFlags(cmd *cobra.Command, f *flags) {
	def := trishade.DefaultConfig()
	fl := cmd.Flags()
	fl.StringVar(&f.platform, "platform", def.Platform, "device platform ("+strings.Join(platform.List(), ", ")+"); empty picks the best available")
	fl.IntVar(&f.width, "width", def.Width, "initial window width")
	fl.IntVar(&f.height, "height", def.Height, "initial window height")
	fl.StringVar(&f.title, "title", def.Title, "window title")
	fl.StringVar(&f.config, "config", "", "path to a YAML config file")
	fl.StringVar(&f.logLevel, "log-level", def.LogLevel, "log level: debug, info, warn, error, off")
	fl.IntVar(&f.frames, "frames", def.Frames, "headless only: frames to render before exiting (0 = until interrupted)")
	fl.BoolVar(&f.blocking, "blocking-bootstrap", def.BlockingBootstrap, "create the GPU device on the event loop")
}

// resolveConfig loads the config file, if any, and applies the flags the
// user set explicitly on top of it.
func resolveConfig(cmd *cobra.Command, f flags) (trishade.Config, error) {
	cfg := trishade.DefaultConfig()
	if f.config != "" {
		loaded, err := trishade.LoadConfig(f.config)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("platform") {
		cfg = cfg.WithPlatform(f.platform)
	}
	if changed("width") || changed("height") {
		w, h := cfg.Width, cfg.Height
		if changed("width") {
			w = f.width
		}
		if changed("height") {
			h = f.height
		}
		cfg = cfg.WithSize(w, h)
	}
	if changed("title") {
		cfg = cfg.WithTitle(f.title)
	}
	if changed("log-level") {
		cfg = cfg.WithLogLevel(f.logLevel)
	}
	if changed("frames") {
		cfg = cfg.WithFrames(f.frames)
	}
	if changed("blocking-bootstrap") {
		cfg = cfg.WithBlockingBootstrap(f.blocking)
	}
	return cfg, cfg.Validate()
}

// newLogger returns a charmbracelet logger wrapped as a slog.Logger.
func newLogger(cfg trishade.Config, w io.Writer) (*slog.Logger, error) {
	level, enabled, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, nil
	}
	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "trishade",
		Level:           log.Level(level),
	})
	return slog.New(handler), nil
}

// eventLoop is implemented by both window loops.
type eventLoop interface {
	app.EventLoop
	Run(ctx context.Context, h app.Handler) error
}

func run(ctx context.Context, cfg trishade.Config, logOut io.Writer) error {
	logger, err := newLogger(cfg, logOut)
	if err != nil {
		return err
	}
	trishade.SetLogger(logger)
	defer trishade.SetLogger(nil)

	trishade.Logger().Debug("platforms", "available", platform.Available())
	p, name, err := platform.New(cfg.Platform)
	if err != nil {
		return err
	}

	var loop eventLoop
	if name == platform.HeadlessName {
		loop = window.NewHeadlessLoop(uint32(cfg.Width), uint32(cfg.Height), cfg.Frames)
	} else {
		loop = window.NewGLFWLoop(cfg.Title, cfg.Width, cfg.Height)
	}

	var opts []app.Option
	if cfg.BlockingBootstrap {
		opts = append(opts, app.WithBlockingBootstrap())
	}
	// The loop closes the shell before it tears down the window system.
	shell := app.New(loop, app.StateFactory(p), opts...)

	trishade.Logger().Info("starting", "platform", name, "width", cfg.Width, "height", cfg.Height)
	if err := loop.Run(ctx, shell); err != nil {
		return fmt.Errorf("trishade: %w", err)
	}
	return nil
}
