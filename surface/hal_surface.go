// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/trishade/render"
	"github.com/gogpu/wgpu/hal"
)

// HALSurface adapts a window swapchain (hal.Surface) to render.Surface.
type HALSurface struct {
	surface hal.Surface
	device  hal.Device
	view    hal.TextureView
	current hal.SurfaceTexture
}

// NewHALSurface wraps s. The HALSurface takes ownership and destroys s in
// Destroy.
func NewHALSurface(s hal.Surface) *HALSurface {
	return &HALSurface{surface: s}
}

// Configure applies config to the swapchain.
func (h *HALSurface) Configure(device hal.Device, config *render.SurfaceConfig) error {
	if config.Width == 0 || config.Height == 0 {
		return ErrZeroSize
	}
	if h.current != nil {
		return ErrFrameInFlight
	}
	err := h.surface.Configure(device, &hal.SurfaceConfiguration{
		Width:       config.Width,
		Height:      config.Height,
		Format:      config.Format,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: halPresentMode(config.PresentMode),
		AlphaMode:   halAlphaMode(config.AlphaMode),
	})
	if err != nil {
		return fmt.Errorf("configure surface: %w", err)
	}
	h.device = device
	return nil
}

// Acquire takes the next swapchain texture and creates a view for it.
func (h *HALSurface) Acquire() (*render.Frame, error) {
	if h.device == nil {
		return nil, render.NewFrameError(render.SurfaceOther, ErrNotConfigured)
	}
	if h.current != nil {
		return nil, render.NewFrameError(render.SurfaceOther, ErrFrameInFlight)
	}

	acquired, err := h.surface.AcquireTexture(nil)
	if err != nil {
		return nil, render.NewFrameError(classify(err), err)
	}

	view, err := h.device.CreateTextureView(acquired.Texture, &hal.TextureViewDescriptor{
		Label: "swapchain_view",
	})
	if err != nil {
		h.surface.DiscardTexture(acquired.Texture)
		return nil, render.NewFrameError(render.SurfaceOther, fmt.Errorf("create swapchain view: %w", err))
	}

	h.current = acquired.Texture
	h.view = view
	return &render.Frame{
		Texture:    acquired.Texture,
		View:       view,
		Suboptimal: acquired.Suboptimal,
	}, nil
}

// Present queues the current frame for display.
func (h *HALSurface) Present(queue hal.Queue, frame *render.Frame) error {
	if frame == nil || h.current == nil || frame.View != h.view {
		return ErrForeignFrame
	}
	tex := h.current
	h.releaseView()
	if err := queue.Present(h.surface, tex, nil); err != nil {
		return render.NewFrameError(classify(err), err)
	}
	return nil
}

// Discard returns the current frame to the swapchain unpresented.
func (h *HALSurface) Discard(frame *render.Frame) {
	if frame == nil || h.current == nil || frame.View != h.view {
		return
	}
	tex := h.current
	h.releaseView()
	h.surface.DiscardTexture(tex)
}

// Destroy unconfigures and destroys the swapchain.
func (h *HALSurface) Destroy() {
	if h.surface == nil {
		return
	}
	if h.current != nil {
		tex := h.current
		h.releaseView()
		h.surface.DiscardTexture(tex)
	}
	if h.device != nil {
		h.surface.Unconfigure(h.device)
		h.device = nil
	}
	h.surface.Destroy()
	h.surface = nil
}

func (h *HALSurface) releaseView() {
	if h.view != nil && h.device != nil {
		h.device.DestroyTextureView(h.view)
	}
	h.view = nil
	h.current = nil
}

// classify maps HAL surface errors to render.SurfaceError kinds.
func classify(err error) render.SurfaceError {
	switch {
	case errors.Is(err, hal.ErrSurfaceLost):
		return render.SurfaceLost
	case errors.Is(err, hal.ErrSurfaceOutdated):
		return render.SurfaceOutdated
	case errors.Is(err, hal.ErrTimeout):
		return render.SurfaceTimeout
	case errors.Is(err, hal.ErrDeviceOutOfMemory):
		return render.SurfaceOutOfMemory
	default:
		return render.SurfaceOther
	}
}

// CapabilitiesFromHAL converts adapter surface capabilities.
func CapabilitiesFromHAL(caps *hal.SurfaceCapabilities) render.SurfaceCapabilities {
	if caps == nil {
		return render.SurfaceCapabilities{}
	}
	out := render.SurfaceCapabilities{
		Formats: append([]gputypes.TextureFormat(nil), caps.Formats...),
	}
	for _, m := range caps.PresentModes {
		if pm, ok := presentModeFromHAL(m); ok {
			out.PresentModes = append(out.PresentModes, pm)
		}
	}
	for _, m := range caps.AlphaModes {
		if am, ok := alphaModeFromHAL(m); ok {
			out.AlphaModes = append(out.AlphaModes, am)
		}
	}
	return out
}

var presentModes = []struct {
	r render.PresentMode
	h hal.PresentMode
}{
	{render.PresentModeFifo, hal.PresentModeFifo},
	{render.PresentModeFifoRelaxed, hal.PresentModeFifoRelaxed},
	{render.PresentModeImmediate, hal.PresentModeImmediate},
	{render.PresentModeMailbox, hal.PresentModeMailbox},
}

var alphaModes = []struct {
	r render.AlphaMode
	h hal.CompositeAlphaMode
}{
	{render.AlphaModeOpaque, hal.CompositeAlphaModeOpaque},
	{render.AlphaModePremultiplied, hal.CompositeAlphaModePremultiplied},
	{render.AlphaModeUnpremultiplied, hal.CompositeAlphaModeUnpremultiplied},
	{render.AlphaModeInherit, hal.CompositeAlphaModeInherit},
}

func halPresentMode(m render.PresentMode) hal.PresentMode {
	for _, p := range presentModes {
		if p.r == m {
			return p.h
		}
	}
	return hal.PresentModeFifo
}

func presentModeFromHAL(m hal.PresentMode) (render.PresentMode, bool) {
	for _, p := range presentModes {
		if p.h == m {
			return p.r, true
		}
	}
	return 0, false
}

func halAlphaMode(m render.AlphaMode) hal.CompositeAlphaMode {
	for _, a := range alphaModes {
		if a.r == m {
			return a.h
		}
	}
	return hal.CompositeAlphaModeOpaque
}

func alphaModeFromHAL(m hal.CompositeAlphaMode) (render.AlphaMode, bool) {
	for _, a := range alphaModes {
		if a.h == m {
			return a.r, true
		}
	}
	return 0, false
}
