//go:build cgo && linux && !android

package window

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func nativeHandles(w *glfw.Window) (display, window uintptr) {
	return uintptr(unsafe.Pointer(glfw.GetX11Display())), uintptr(w.GetX11Window())
}
