// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/trishade/render"
	"github.com/gogpu/wgpu/hal"
)

// Errors reported by surfaces, wrapped in *render.FrameError where they
// come out of Acquire.
var (
	ErrNotConfigured = errors.New("surface: not configured")
	ErrDestroyed     = errors.New("surface: destroyed")
	ErrFrameInFlight = errors.New("surface: previous frame not presented")
	ErrForeignFrame  = errors.New("surface: frame was not acquired from this surface")
	ErrZeroSize      = errors.New("surface: zero width or height")
)

// TextureStats counts TextureSurface activity.
type TextureStats struct {
	Configures int
	Acquires   int
	Presents   int
	Discards   int
	Faults     int
}

// TextureSurface is a render.Surface backed by a single offscreen texture.
//
// Injected faults are returned by Acquire in FIFO order. A Lost or Outdated
// fault also marks the surface stale: further Acquire calls fail with
// Outdated until the next Configure, as a real swapchain would.
//
// TextureSurface is safe for concurrent use.
type TextureSurface struct {
	mu sync.Mutex

	device     hal.Device
	config     render.SurfaceConfig
	configured bool
	stale      bool
	destroyed  bool

	texture hal.Texture
	view    hal.TextureView
	frame   *render.Frame

	faults []render.SurfaceError
	stats  TextureStats
}

// NewTextureSurface returns an unconfigured texture surface.
func NewTextureSurface() *TextureSurface {
	return &TextureSurface{}
}

// Capabilities reports what a TextureSurface can be configured with.
func (s *TextureSurface) Capabilities() render.SurfaceCapabilities {
	return render.SurfaceCapabilities{
		Formats: []gputypes.TextureFormat{
			gputypes.TextureFormatRGBA8UnormSrgb,
			gputypes.TextureFormatRGBA8Unorm,
		},
		PresentModes: []render.PresentMode{render.PresentModeFifo},
		AlphaModes:   []render.AlphaMode{render.AlphaModeOpaque},
	}
}

// InjectFault queues acquisition failures.
func (s *TextureSurface) InjectFault(kinds ...render.SurfaceError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, kinds...)
}

// Configure (re)creates the backing texture at the configured size.
func (s *TextureSurface) Configure(device hal.Device, config *render.SurfaceConfig) error {
	if config.Width == 0 || config.Height == 0 {
		return ErrZeroSize
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return ErrDestroyed
	}
	if s.frame != nil {
		return ErrFrameInFlight
	}

	s.destroyTargetLocked()

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "offscreen_surface",
		Size:          hal.Extent3D{Width: config.Width, Height: config.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        config.Format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create surface texture: %w", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "offscreen_surface_view",
	})
	if err != nil {
		device.DestroyTexture(tex)
		return fmt.Errorf("create surface view: %w", err)
	}

	s.device = device
	s.texture = tex
	s.view = view
	s.config = *config
	s.configured = true
	s.stale = false
	s.stats.Configures++
	return nil
}

// Acquire returns the backing texture as the next frame.
func (s *TextureSurface) Acquire() (*render.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.destroyed:
		return nil, render.NewFrameError(render.SurfaceOther, ErrDestroyed)
	case !s.configured:
		return nil, render.NewFrameError(render.SurfaceOther, ErrNotConfigured)
	case s.frame != nil:
		return nil, render.NewFrameError(render.SurfaceOther, ErrFrameInFlight)
	}

	if len(s.faults) > 0 {
		kind := s.faults[0]
		s.faults = s.faults[1:]
		s.stats.Faults++
		if kind == render.SurfaceLost || kind == render.SurfaceOutdated {
			s.stale = true
		}
		return nil, render.NewFrameError(kind, nil)
	}
	if s.stale {
		return nil, render.NewFrameError(render.SurfaceOutdated, nil)
	}

	s.frame = &render.Frame{Texture: s.texture, View: s.view}
	s.stats.Acquires++
	return s.frame, nil
}

// Present completes the frame. Nothing is displayed.
func (s *TextureSurface) Present(_ hal.Queue, frame *render.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if frame == nil || frame != s.frame {
		return ErrForeignFrame
	}
	s.frame = nil
	s.stats.Presents++
	return nil
}

// Discard drops an acquired frame without presenting it.
func (s *TextureSurface) Discard(frame *render.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if frame != nil && frame == s.frame {
		s.frame = nil
		s.stats.Discards++
	}
}

// Destroy releases the backing texture. It is idempotent.
func (s *TextureSurface) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.destroyTargetLocked()
	s.frame = nil
	s.configured = false
	s.destroyed = true
}

// Config returns the last applied configuration.
func (s *TextureSurface) Config() render.SurfaceConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Stats returns a snapshot of the counters.
func (s *TextureSurface) Stats() TextureStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Texture returns the backing texture, or nil before Configure.
func (s *TextureSurface) Texture() hal.Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.texture
}

func (s *TextureSurface) destroyTargetLocked() {
	if s.device == nil {
		return
	}
	if s.view != nil {
		s.device.DestroyTextureView(s.view)
		s.view = nil
	}
	if s.texture != nil {
		s.device.DestroyTexture(s.texture)
		s.texture = nil
	}
}
