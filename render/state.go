// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/trishade"
	"github.com/gogpu/trishade/internal/coord"
)

// DefaultClearColor is the background before the pointer first moves.
var DefaultClearColor = gputypes.Color{R: 0.1, G: 0.3, B: 0.2, A: 1.0}

// DefaultFenceTimeout bounds the wait for one submitted frame.
const DefaultFenceTimeout = 5 * time.Second

// FrameStats counts what Render did.
type FrameStats struct {
	// Submitted is the number of frames recorded, submitted and presented.
	Submitted uint64

	// Skipped is the number of Render calls made before the surface was
	// configured.
	Skipped uint64

	// Failed is the number of Render calls that returned an error.
	Failed uint64

	// LastVariant is the variant bound by the most recent submitted frame.
	LastVariant Variant
}

// Option configures a State.
type Option func(*options)

type options struct {
	fenceTimeout time.Duration
	variant      Variant
}

func defaultOptions() options {
	return options{
		fenceTimeout: DefaultFenceTimeout,
		variant:      VariantA,
	}
}

// WithFenceTimeout sets how long Render waits for the GPU. Non-positive
// values are ignored.
func WithFenceTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fenceTimeout = d
		}
	}
}

// WithInitialVariant selects the pipeline bound before the first toggle.
// Invalid values are ignored.
func WithInitialVariant(v Variant) Option {
	return func(o *options) {
		if v == VariantA || v == VariantB {
			o.variant = v
		}
	}
}

// State owns every GPU resource of the demo. See the package documentation
// for its lifecycle.
type State struct {
	window  Window
	dev     *Device
	pipes   *pipelineSet
	timeout time.Duration

	config     SurfaceConfig
	configured bool
	variant    Variant
	clearColor gputypes.Color

	// stalled is a frame whose submission outlived the fence timeout.
	stalled *inflight

	stats FrameStats
}

// New opens a device for win through platform and builds both pipelines.
// The returned state is not configured; call Resize with the window size
// before rendering. Every error wraps ErrInit.
func New(ctx context.Context, platform Platform, win Window, opts ...Option) (*State, error) {
	if platform == nil {
		return nil, fmt.Errorf("%w: %w", ErrInit, ErrNilPlatform)
	}
	if win == nil {
		return nil, fmt.Errorf("%w: %w", ErrInit, ErrNilWindow)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}
	dev, err := platform.Open(ctx, win)
	if err != nil {
		return nil, fmt.Errorf("%w: open device: %w", ErrInit, err)
	}

	format, err := dev.Capabilities.PreferredFormat()
	if err != nil {
		dev.Release()
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}
	if err := ctx.Err(); err != nil {
		dev.Release()
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}

	pipes, err := createPipelines(dev.Device, format)
	if err != nil {
		dev.Release()
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}

	width, height := win.Size()
	s := &State{
		window:  win,
		dev:     dev,
		pipes:   pipes,
		timeout: o.fenceTimeout,
		config: SurfaceConfig{
			Width:       width,
			Height:      height,
			Format:      format,
			PresentMode: dev.Capabilities.PreferredPresentMode(),
			AlphaMode:   dev.Capabilities.PreferredAlphaMode(),
		},
		variant:    o.variant,
		clearColor: DefaultClearColor,
	}
	trishade.Logger().Info("render state created",
		"adapter", dev.Name,
		"format", format,
		"present_mode", s.config.PresentMode,
		"alpha_mode", s.config.AlphaMode,
	)
	return s, nil
}

// Resize reconfigures the surface for a new physical size. A zero width or
// height is ignored. If configuration fails the error is logged and both
// the configuration and the configured flag keep their previous values.
func (s *State) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	s.reclaim()

	cfg := s.config
	cfg.Width, cfg.Height = width, height
	if err := s.dev.Surface.Configure(s.dev.Device, &cfg); err != nil {
		trishade.Logger().Warn("surface configure failed",
			"width", width, "height", height, "err", err)
		return
	}
	s.config = cfg
	s.configured = true
	trishade.Logger().Debug("surface configured", "width", width, "height", height)
}

// TogglePipeline switches to the other pipeline variant.
func (s *State) TogglePipeline() {
	s.variant = s.variant.Toggle()
	trishade.Logger().Debug("pipeline toggled", "variant", s.variant)
}

// UpdateClearColor maps a pointer position in physical pixels to the red
// and green channels of the clear color. Positions outside the window map
// outside [-1, 1] and are kept as is. Ignored while the window has a zero
// dimension.
func (s *State) UpdateClearColor(x, y float64) {
	width, height := s.window.Size()
	if width == 0 || height == 0 {
		return
	}
	s.clearColor.R, s.clearColor.G = coord.Normalize(x, y, width, height)
}

// Update is the per-frame simulation hook. The triangle is static.
func (s *State) Update() {}

// Render requests the next redraw and, once the surface is configured,
// draws one frame. Surface acquisition errors are returned unchanged as
// *FrameError values. A frame that outlives the fence timeout keeps its
// command buffer and surface texture until the GPU finishes it, and Render
// returns ErrFenceTimeout until then.
func (s *State) Render() error {
	s.window.RequestRedraw()

	if !s.configured {
		s.stats.Skipped++
		return nil
	}
	if !s.reclaim() {
		s.stats.Failed++
		return fmt.Errorf("render: previous frame: %w", ErrFenceTimeout)
	}

	frame, err := s.dev.Surface.Acquire()
	if err != nil {
		s.stats.Failed++
		return err
	}

	pipeline := s.pipes.get(s.variant)
	cmd, err := encodeFrame(s.dev.Device, frame.View, pipeline, s.clearColor)
	if err != nil {
		s.dev.Surface.Discard(frame)
		s.stats.Failed++
		return fmt.Errorf("render: encode frame: %w", err)
	}
	index, err := submitFrame(s.dev.Queue, cmd, s.timeout)
	if errors.Is(err, ErrFenceTimeout) {
		s.stalled = &inflight{index: index, cmd: cmd, frame: frame}
		s.stats.Failed++
		return fmt.Errorf("render: %w", err)
	}
	s.dev.Device.FreeCommandBuffer(cmd)
	if err != nil {
		s.dev.Surface.Discard(frame)
		s.stats.Failed++
		return fmt.Errorf("render: %w", err)
	}
	if err := s.dev.Surface.Present(s.dev.Queue, frame); err != nil {
		s.stats.Failed++
		return fmt.Errorf("render: present: %w", err)
	}

	s.stats.Submitted++
	s.stats.LastVariant = s.variant
	return nil
}

// reclaim frees the stalled frame once its submission has completed. It
// reports whether nothing is left in flight.
func (s *State) reclaim() bool {
	if s.stalled == nil {
		return true
	}
	if !s.stalled.done(s.dev.Queue) {
		return false
	}
	s.dev.Device.FreeCommandBuffer(s.stalled.cmd)
	s.dev.Surface.Discard(s.stalled.frame)
	s.stalled = nil
	return true
}

// Release destroys every GPU resource. The state must not be used after.
func (s *State) Release() {
	if s == nil || s.dev == nil {
		return
	}
	if s.stalled != nil {
		if err := s.dev.Device.WaitIdle(); err != nil {
			trishade.Logger().Warn("wait for stalled frame", "err", err)
		}
		s.reclaim()
	}
	s.pipes.destroy(s.dev.Device)
	s.pipes = nil
	s.dev.Release()
	s.dev = nil
	s.configured = false
}

// Config returns the current surface configuration.
func (s *State) Config() SurfaceConfig { return s.config }

// Configured reports whether the surface has been configured with a
// non-zero size.
func (s *State) Configured() bool { return s.configured }

// Variant returns the active pipeline variant.
func (s *State) Variant() Variant { return s.variant }

// ClearColor returns the current background color.
func (s *State) ClearColor() gputypes.Color { return s.clearColor }

// Stats returns the frame counters.
func (s *State) Stats() FrameStats { return s.stats }

// Window returns the window the state renders to.
func (s *State) Window() Window { return s.window }

// SurfaceFormat returns the texture format both pipelines target.
func (s *State) SurfaceFormat() gputypes.TextureFormat { return s.config.Format }

// HalDevice returns the underlying hal.Device, or nil after Release.
func (s *State) HalDevice() any {
	if s.dev == nil {
		return nil
	}
	return s.dev.Device
}

// HalQueue returns the underlying hal.Queue, or nil after Release.
func (s *State) HalQueue() any {
	if s.dev == nil {
		return nil
	}
	return s.dev.Queue
}
