package platform

import (
	"context"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/trishade"
	"github.com/gogpu/trishade/render"
	"github.com/gogpu/trishade/surface"
	"github.com/gogpu/wgpu/hal/noop"
)

// HeadlessName is the registry name of the headless platform.
const HeadlessName = "headless"

// Headless opens a noop HAL device and renders into a TextureSurface.
// Nothing is displayed; it exists for CI and tests.
type Headless struct {
	mu      sync.Mutex
	surface *surface.TextureSurface
}

// NewHeadless returns a headless platform.
func NewHeadless() *Headless {
	return &Headless{}
}

// Open implements render.Platform.
func (h *Headless) Open(ctx context.Context, _ render.Window) (*render.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, render.ErrNoAdapter
	}
	openDev, err := adapters[0].Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}

	ts := surface.NewTextureSurface()
	h.mu.Lock()
	h.surface = ts
	h.mu.Unlock()

	trishade.Logger().Debug("headless device opened", "adapter", adapters[0].Info.Name)
	return &render.Device{
		Name:         adapters[0].Info.Name,
		Device:       openDev.Device,
		Queue:        openDev.Queue,
		Surface:      ts,
		Capabilities: ts.Capabilities(),
		OnRelease:    instance.Destroy,
	}, nil
}

// Surface returns the surface created by the last Open, or nil.
func (h *Headless) Surface() *surface.TextureSurface {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.surface
}
