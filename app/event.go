package app

import (
	"fmt"

	"github.com/gogpu/gpucontext"
)

// Event is a window-system event relayed to the shell.
type Event interface {
	event()
}

// CloseRequested is sent when the user asks to close the window.
type CloseRequested struct{}

// Resized carries the new physical size of the window.
type Resized struct {
	Width, Height uint32
}

// RedrawRequested asks for one frame.
type RedrawRequested struct{}

// KeyInput reports a physical key press or release.
type KeyInput struct {
	Key     gpucontext.Key
	Pressed bool
}

// PointerMoved carries the pointer position in physical pixels relative to
// the window's top-left corner. It may lie outside the window.
type PointerMoved struct {
	X, Y float64
}

func (CloseRequested) event()  {}
func (Resized) event()         {}
func (RedrawRequested) event() {}
func (KeyInput) event()        {}
func (PointerMoved) event()    {}

func (CloseRequested) String() string  { return "CloseRequested" }
func (e Resized) String() string       { return fmt.Sprintf("Resized(%dx%d)", e.Width, e.Height) }
func (RedrawRequested) String() string { return "RedrawRequested" }
func (e KeyInput) String() string      { return fmt.Sprintf("KeyInput(%d, pressed=%t)", e.Key, e.Pressed) }
func (e PointerMoved) String() string  { return fmt.Sprintf("PointerMoved(%g, %g)", e.X, e.Y) }
