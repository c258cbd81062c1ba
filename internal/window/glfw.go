//go:build cgo && ((linux && !android) || windows || darwin)

package window

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/trishade"
	"github.com/gogpu/trishade/app"
	"github.com/gogpu/trishade/render"
)

// glfwWindow is the render.Window view of a glfw window. Size is cached
// from framebuffer callbacks so it can be read off the main thread.
type glfwWindow struct {
	glw    *glfw.Window
	width  atomic.Uint32
	height atomic.Uint32
	redraw atomic.Bool
}

func (w *glfwWindow) Size() (uint32, uint32) {
	return w.width.Load(), w.height.Load()
}

// RequestRedraw is safe from any goroutine.
func (w *glfwWindow) RequestRedraw() {
	if w.redraw.CompareAndSwap(false, true) {
		glfw.PostEmptyEvent()
	}
}

func (w *glfwWindow) setSize(width, height int) {
	w.width.Store(uint32(max(width, 0)))
	w.height.Store(uint32(max(height, 0)))
}

// GLFWLoop runs the glfw event loop. It must be created and run on the
// main OS thread; the caller locks it.
type GLFWLoop struct {
	Title         string
	Width, Height int

	win     *glfwWindow
	pending []app.Event
	exiting bool
	alive   atomic.Bool
}

// NewGLFWLoop returns a loop that will open one window of the given
// logical size.
func NewGLFWLoop(title string, width, height int) *GLFWLoop {
	return &GLFWLoop{Title: title, Width: width, Height: height}
}

// CreateWindow implements app.EventLoop.
func (l *GLFWLoop) CreateWindow() (render.Window, error) {
	if l.win != nil {
		return l.win, nil
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glw, err := glfw.CreateWindow(l.Width, l.Height, l.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("window: create: %w", err)
	}

	w := &glfwWindow{glw: glw}
	w.setSize(glw.GetFramebufferSize())
	l.win = w

	glw.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.setSize(width, height)
		l.pending = append(l.pending, app.Resized{Width: uint32(max(width, 0)), Height: uint32(max(height, 0))})
	})
	glw.SetCloseCallback(func(gw *glfw.Window) {
		// The shell decides whether to exit.
		gw.SetShouldClose(false)
		l.pending = append(l.pending, app.CloseRequested{})
	})
	glw.SetRefreshCallback(func(*glfw.Window) {
		w.RequestRedraw()
	})
	glw.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		k, ok := physicalKey(key)
		if !ok {
			return
		}
		l.pending = append(l.pending, app.KeyInput{Key: k, Pressed: action != glfw.Release})
	})
	glw.SetCursorPosCallback(func(gw *glfw.Window, x, y float64) {
		sx, sy := pixelScale(gw)
		l.pending = append(l.pending, app.PointerMoved{X: x * sx, Y: y * sy})
	})
	return w, nil
}

// Exit implements app.EventLoop.
func (l *GLFWLoop) Exit() { l.exiting = true }

// Wake implements app.EventLoop. It does nothing outside Run.
func (l *GLFWLoop) Wake() {
	if l.alive.Load() {
		glfw.PostEmptyEvent()
	}
}

// NativeHandles returns the handles of the window created by CreateWindow.
func (w *glfwWindow) NativeHandles() (display, window uintptr) {
	return nativeHandles(w.glw)
}

// Run initializes glfw, resumes h and pumps events until Exit or ctx is
// done. h.Exiting runs before the window is destroyed and glfw terminated.
func (l *GLFWLoop) Run(ctx context.Context, h app.Handler) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("window: glfw init: %w", err)
	}
	l.alive.Store(true)
	defer glfw.Terminate()
	defer func() {
		if l.win != nil {
			l.win.glw.Destroy()
		}
	}()
	defer l.alive.Store(false)
	defer h.Exiting()

	stop := context.AfterFunc(ctx, l.Wake)
	defer stop()

	if err := h.Resumed(ctx); err != nil {
		return err
	}

	for !l.exiting {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.Poll(); err != nil {
			return err
		}

		events := l.pending
		l.pending = nil
		for _, ev := range events {
			h.HandleEvent(ev)
		}
		if l.exiting {
			break
		}

		if l.win != nil && l.win.redraw.Swap(false) {
			h.HandleEvent(app.RedrawRequested{})
			glfw.PollEvents()
			continue
		}
		glfw.WaitEvents()
	}
	trishade.Logger().Debug("event loop exited")
	return nil
}

// pixelScale returns the factor from window coordinates to framebuffer
// pixels on each axis.
func pixelScale(gw *glfw.Window) (float64, float64) {
	ww, wh := gw.GetSize()
	fw, fh := gw.GetFramebufferSize()
	if ww == 0 || wh == 0 {
		return 1, 1
	}
	return float64(fw) / float64(ww), float64(fh) / float64(wh)
}

var keyMap = map[glfw.Key]gpucontext.Key{
	glfw.KeyEscape: gpucontext.KeyEscape,
	glfw.KeySpace:  gpucontext.KeySpace,
}

func physicalKey(k glfw.Key) (gpucontext.Key, bool) {
	key, ok := keyMap[k]
	return key, ok
}
