//go:build cgo && windows

package window

import (
	"syscall"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

var procGetModuleHandle = syscall.NewLazyDLL("kernel32.dll").NewProc("GetModuleHandleW")

// nativeHandles returns the module instance and the HWND, which is what a
// Win32 Vulkan surface needs.
func nativeHandles(w *glfw.Window) (display, window uintptr) {
	hinstance, _, _ := procGetModuleHandle.Call(0)
	return hinstance, uintptr(unsafe.Pointer(w.GetWin32Window()))
}
