// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/wgpu/hal"

// Device is what a Platform hands to New: an open HAL device and queue, the
// window surface and what that surface supports.
type Device struct {
	// Name identifies the adapter, for logging.
	Name string

	Device  hal.Device
	Queue   hal.Queue
	Surface Surface

	Capabilities SurfaceCapabilities

	// OnRelease runs after the surface and device are destroyed. Platforms
	// use it to tear down the HAL instance.
	OnRelease func()
}

// Release destroys the surface and the device, then runs OnRelease.
// It is safe to call more than once.
func (d *Device) Release() {
	if d == nil {
		return
	}
	if d.Surface != nil {
		d.Surface.Destroy()
		d.Surface = nil
	}
	if d.Device != nil {
		d.Device.Destroy()
		d.Device = nil
	}
	d.Queue = nil
	if d.OnRelease != nil {
		d.OnRelease()
		d.OnRelease = nil
	}
}
