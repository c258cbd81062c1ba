package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/trishade"
	"github.com/gogpu/trishade/render"
	"github.com/gogpu/trishade/surface"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan HAL backend.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// VulkanName is the registry name of the Vulkan platform.
const VulkanName = "vulkan"

// ErrNotNative is returned when a window cannot provide native handles.
var ErrNotNative = errors.New("platform: window has no native handles")

// NativeWindow is a render.Window backed by an OS window.
type NativeWindow interface {
	render.Window

	// NativeHandles returns the display connection (0 where the OS has
	// none) and the window handle.
	NativeHandles() (display, window uintptr)
}

// Vulkan opens a hardware device through the Vulkan HAL backend and
// presents to the window's swapchain.
type Vulkan struct{}

// NewVulkan returns the Vulkan platform.
func NewVulkan() *Vulkan {
	return &Vulkan{}
}

func vulkanAvailable() bool {
	_, ok := hal.GetBackend(gputypes.BackendVulkan)
	return ok
}

// Open implements render.Platform. It prefers discrete and integrated GPUs
// that can present to the window, and falls back to any adapter that can.
func (v *Vulkan) Open(ctx context.Context, win render.Window) (*render.Device, error) {
	nw, ok := win.(NativeWindow)
	if !ok {
		return nil, ErrNotNative
	}

	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, &UnavailableError{Name: VulkanName}
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	display, handle := nw.NativeHandles()
	halSurface, err := instance.CreateSurface(display, handle)
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("create surface: %w", err)
	}
	fail := func(err error) (*render.Device, error) {
		halSurface.Destroy()
		instance.Destroy()
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	selected, caps := selectAdapter(instance.EnumerateAdapters(halSurface), halSurface)
	if selected == nil {
		return fail(render.ErrNoAdapter)
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fail(fmt.Errorf("open device: %w", err))
	}

	trishade.Logger().Info("vulkan device opened",
		"adapter", selected.Info.Name,
		"type", selected.Info.DeviceType,
	)
	return &render.Device{
		Name:         selected.Info.Name,
		Device:       openDev.Device,
		Queue:        openDev.Queue,
		Surface:      surface.NewHALSurface(halSurface),
		Capabilities: surface.CapabilitiesFromHAL(caps),
		OnRelease:    instance.Destroy,
	}, nil
}

// selectAdapter returns the first GPU-class adapter that supports the
// surface, or the first supporting adapter of any type.
func selectAdapter(adapters []hal.ExposedAdapter, s hal.Surface) (*hal.ExposedAdapter, *hal.SurfaceCapabilities) {
	var fallback *hal.ExposedAdapter
	var fallbackCaps *hal.SurfaceCapabilities
	for i := range adapters {
		caps := adapters[i].Adapter.SurfaceCapabilities(s)
		if caps == nil || len(caps.Formats) == 0 {
			continue
		}
		switch adapters[i].Info.DeviceType {
		case gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU:
			return &adapters[i], caps
		}
		if fallback == nil {
			fallback, fallbackCaps = &adapters[i], caps
		}
	}
	return fallback, fallbackCaps
}
