//go:build cgo && darwin

package window

import "github.com/go-gl/glfw/v3.3/glfw"

func nativeHandles(w *glfw.Window) (display, window uintptr) {
	return 0, uintptr(w.GetCocoaWindow())
}
