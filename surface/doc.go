// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the render targets behind render.Surface.
//
//   - HALSurface presents to a window through a hal.Surface swapchain.
//   - TextureSurface renders into an offscreen texture. It backs the
//     headless platform and can inject acquisition failures, which makes
//     surface loss reproducible without a window system.
//
// Surfaces hold at most one acquired frame at a time. Acquire after an
// unpresented Acquire fails.
package surface
