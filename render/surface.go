// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Window is the read-only view of the OS window that the render state needs.
// Implementations must make Size safe to call from any goroutine.
type Window interface {
	// Size returns the physical (framebuffer) size in pixels.
	Size() (width, height uint32)

	// RequestRedraw schedules a redraw event on the event loop.
	RequestRedraw()
}

// Platform opens a GPU device and a presentation surface for a window.
type Platform interface {
	Open(ctx context.Context, win Window) (*Device, error)
}

// Surface is a presentable render target.
//
// The call order is Configure, then any number of Acquire followed by
// either Present or Discard, then Destroy. Configure may be called again at
// any time between frames.
type Surface interface {
	// Configure (re)creates the swapchain for the given configuration.
	Configure(device hal.Device, config *SurfaceConfig) error

	// Acquire returns the next frame. Failures are *FrameError values.
	Acquire() (*Frame, error)

	// Present queues the frame for display.
	Present(queue hal.Queue, frame *Frame) error

	// Discard releases a frame that will not be presented.
	Discard(frame *Frame)

	// Destroy releases the surface. The surface must not be used after.
	Destroy()
}

// Frame is one acquired surface texture and the view rendered into.
type Frame struct {
	Texture hal.Texture
	View    hal.TextureView

	// Suboptimal is set when the frame can still be presented but the
	// surface should be reconfigured soon.
	Suboptimal bool
}

// PresentMode controls how frames are queued for display.
type PresentMode uint8

const (
	PresentModeFifo PresentMode = iota
	PresentModeFifoRelaxed
	PresentModeImmediate
	PresentModeMailbox
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeFifo:
		return "Fifo"
	case PresentModeFifoRelaxed:
		return "FifoRelaxed"
	case PresentModeImmediate:
		return "Immediate"
	case PresentModeMailbox:
		return "Mailbox"
	default:
		return fmt.Sprintf("PresentMode(%d)", uint8(m))
	}
}

// AlphaMode controls how the compositor blends the surface.
type AlphaMode uint8

const (
	AlphaModeOpaque AlphaMode = iota
	AlphaModePremultiplied
	AlphaModeUnpremultiplied
	AlphaModeInherit
)

func (m AlphaMode) String() string {
	switch m {
	case AlphaModeOpaque:
		return "Opaque"
	case AlphaModePremultiplied:
		return "Premultiplied"
	case AlphaModeUnpremultiplied:
		return "Unpremultiplied"
	case AlphaModeInherit:
		return "Inherit"
	default:
		return fmt.Sprintf("AlphaMode(%d)", uint8(m))
	}
}

// SurfaceConfig describes how the surface is configured. Width and Height
// mirror the physical window size.
type SurfaceConfig struct {
	Width       uint32
	Height      uint32
	Format      gputypes.TextureFormat
	PresentMode PresentMode
	AlphaMode   AlphaMode
}

// SurfaceCapabilities lists what a surface supports on the chosen adapter,
// in the adapter's order of preference.
type SurfaceCapabilities struct {
	Formats      []gputypes.TextureFormat
	PresentModes []PresentMode
	AlphaModes   []AlphaMode
}

// PreferredFormat returns the first sRGB format, or the first format if
// none is sRGB.
func (c SurfaceCapabilities) PreferredFormat() (gputypes.TextureFormat, error) {
	if len(c.Formats) == 0 {
		return 0, ErrNoSurfaceFormat
	}
	for _, f := range c.Formats {
		if isSRGB(f) {
			return f, nil
		}
	}
	return c.Formats[0], nil
}

// PreferredPresentMode returns the first listed present mode, or Fifo.
func (c SurfaceCapabilities) PreferredPresentMode() PresentMode {
	if len(c.PresentModes) == 0 {
		return PresentModeFifo
	}
	return c.PresentModes[0]
}

// PreferredAlphaMode returns the first listed alpha mode, or Opaque.
func (c SurfaceCapabilities) PreferredAlphaMode() AlphaMode {
	if len(c.AlphaModes) == 0 {
		return AlphaModeOpaque
	}
	return c.AlphaModes[0]
}

func isSRGB(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatRGBA8UnormSrgb, gputypes.TextureFormatBGRA8UnormSrgb:
		return true
	default:
		return false
	}
}
