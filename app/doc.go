// Package app is the application shell: it relays window-system events to
// the render state and owns the state's lifecycle.
//
// The shell moves through three phases:
//
//	Uninitialized --Resumed--> Bootstrapping --Poll--> Ready
//
// Resumed creates the window and starts building the render state in a
// background goroutine; it never blocks the event loop. The loop calls Poll
// on every iteration; once the state has been delivered the shell becomes
// Ready, applies the window's current size and requests the first redraw.
// Events that arrive before Ready are dropped.
//
// If construction fails the shell enters the Failed phase and Poll returns
// the error on every call. The error wraps render.ErrInit and is fatal.
//
// A Shell must be driven from a single goroutine, the one running the
// event loop.
package app
