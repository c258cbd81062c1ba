package window

import (
	"context"
	"sync/atomic"

	"github.com/gogpu/trishade/app"
	"github.com/gogpu/trishade/render"
)

// headlessWindow is a fixed-size window with no OS backing.
type headlessWindow struct {
	width, height uint32
	redraw        atomic.Bool
	wake          func()
}

func (w *headlessWindow) Size() (uint32, uint32) { return w.width, w.height }

func (w *headlessWindow) RequestRedraw() {
	if w.redraw.CompareAndSwap(false, true) {
		w.wake()
	}
}

// HeadlessLoop drives a handler without a window system. Every redraw the
// renderer requests becomes a RedrawRequested event; after Frames of them
// the loop sends CloseRequested. With Frames == 0 it runs until the
// context is done.
type HeadlessLoop struct {
	Width, Height uint32
	Frames        int

	win     *headlessWindow
	wake    chan struct{}
	exiting atomic.Bool
	drawn   int
}

// NewHeadlessLoop returns a loop whose window has the given size.
func NewHeadlessLoop(width, height uint32, frames int) *HeadlessLoop {
	return &HeadlessLoop{
		Width:  width,
		Height: height,
		Frames: frames,
		wake:   make(chan struct{}, 1),
	}
}

// CreateWindow implements app.EventLoop.
func (l *HeadlessLoop) CreateWindow() (render.Window, error) {
	l.win = &headlessWindow{width: l.Width, height: l.Height, wake: l.Wake}
	return l.win, nil
}

// Exit implements app.EventLoop.
func (l *HeadlessLoop) Exit() { l.exiting.Store(true) }

// Wake implements app.EventLoop.
func (l *HeadlessLoop) Wake() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Drawn returns how many RedrawRequested events were delivered.
func (l *HeadlessLoop) Drawn() int { return l.drawn }

// Run resumes h and pumps events until Exit or ctx is done. h.Exiting is
// called before Run returns.
func (l *HeadlessLoop) Run(ctx context.Context, h app.Handler) error {
	defer h.Exiting()
	if err := h.Resumed(ctx); err != nil {
		return err
	}
	for !l.exiting.Load() {
		if err := h.Poll(); err != nil {
			return err
		}
		if l.win != nil && l.win.redraw.Swap(false) {
			if l.Frames > 0 && l.drawn >= l.Frames {
				h.HandleEvent(app.CloseRequested{})
				continue
			}
			l.drawn++
			h.HandleEvent(app.RedrawRequested{})
			continue
		}
		select {
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
