// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render owns the GPU side of the demo: device, queue, surface and
// the two triangle pipelines.
//
// # Lifecycle
//
// A State is created once, when a window first becomes available, and lives
// until process exit. It starts unconfigured: Render returns immediately
// without touching the GPU until Resize has been called with a non-zero
// size. After that every Render acquires a surface frame, clears it to the
// current clear color, draws three vertices with the active pipeline variant
// and presents.
//
// # Ports
//
// The package talks to the outside world through three small interfaces:
//
//   - Window: size queries and redraw scheduling, read-only
//   - Platform: opens a HAL device, queue and Surface for a Window
//   - Surface: configure, acquire, present
//
// Concrete platforms live in the platform package, surfaces in the surface
// package.
//
// # Errors
//
// Construction failures wrap ErrInit and are fatal. Frame acquisition
// failures are returned unchanged as *FrameError values; Recoverable reports
// whether a reconfiguration will fix them.
//
// # Thread Safety
//
// State is NOT safe for concurrent use. All methods must be called from the
// goroutine that drives the event loop.
package render
