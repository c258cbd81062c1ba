// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
)

// Construction errors.
var (
	// ErrInit wraps every failure of New. It is fatal: there is no state
	// to fall back to.
	ErrInit = errors.New("render: initialization failed")

	// ErrNoAdapter is returned by platforms that find no GPU compatible
	// with the window surface.
	ErrNoAdapter = errors.New("render: no compatible GPU adapter")

	// ErrNoSurfaceFormat is returned when the surface reports no formats.
	ErrNoSurfaceFormat = errors.New("render: surface reports no usable format")

	// ErrNilWindow is returned when New is called without a window.
	ErrNilWindow = errors.New("render: window is nil")

	// ErrNilPlatform is returned when New is called without a platform.
	ErrNilPlatform = errors.New("render: platform is nil")
)

// Surface acquisition errors. A *FrameError matches the sentinel for its
// kind with errors.Is.
var (
	ErrSurfaceTimeout     = errors.New("render: surface acquire timed out")
	ErrSurfaceOutdated    = errors.New("render: surface is outdated")
	ErrSurfaceLost        = errors.New("render: surface was lost")
	ErrSurfaceOutOfMemory = errors.New("render: out of memory acquiring surface texture")
)

// SurfaceError categorizes a failed frame acquisition.
type SurfaceError uint8

const (
	// SurfaceOther is any failure not covered by a specific kind.
	SurfaceOther SurfaceError = iota

	// SurfaceTimeout means no texture became available in time.
	SurfaceTimeout

	// SurfaceOutdated means the surface no longer matches the window and
	// must be reconfigured.
	SurfaceOutdated

	// SurfaceLost means the underlying swapchain is gone and must be
	// reconfigured.
	SurfaceLost

	// SurfaceOutOfMemory means the device could not allocate the texture.
	SurfaceOutOfMemory
)

// String returns the kind name.
func (k SurfaceError) String() string {
	switch k {
	case SurfaceTimeout:
		return "Timeout"
	case SurfaceOutdated:
		return "Outdated"
	case SurfaceLost:
		return "Lost"
	case SurfaceOutOfMemory:
		return "OutOfMemory"
	case SurfaceOther:
		return "Other"
	default:
		return fmt.Sprintf("SurfaceError(%d)", uint8(k))
	}
}

func (k SurfaceError) sentinel() error {
	switch k {
	case SurfaceTimeout:
		return ErrSurfaceTimeout
	case SurfaceOutdated:
		return ErrSurfaceOutdated
	case SurfaceLost:
		return ErrSurfaceLost
	case SurfaceOutOfMemory:
		return ErrSurfaceOutOfMemory
	default:
		return nil
	}
}

// FrameError is returned by Surface.Acquire and passed through Render
// unchanged.
type FrameError struct {
	Kind SurfaceError

	// Err is the backend error, if any.
	Err error
}

// NewFrameError returns a FrameError of the given kind wrapping err.
func NewFrameError(kind SurfaceError, err error) *FrameError {
	return &FrameError{Kind: kind, Err: err}
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render: surface %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("render: surface %s", e.Kind)
}

func (e *FrameError) Unwrap() error { return e.Err }

// Is matches the sentinel error for the kind.
func (e *FrameError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Recoverable reports whether err means the surface must be reconfigured
// (Lost or Outdated). Other errors only skip the frame.
func Recoverable(err error) bool {
	return errors.Is(err, ErrSurfaceLost) || errors.Is(err, ErrSurfaceOutdated)
}

// SurfaceErrorKind returns the kind of a frame error, or SurfaceOther if
// err is not a *FrameError.
func SurfaceErrorKind(err error) SurfaceError {
	var fe *FrameError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return SurfaceOther
}
