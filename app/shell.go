package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/trishade"
	"github.com/gogpu/trishade/render"
)

// Shell errors.
var (
	// ErrShellClosed is returned by Poll and AwaitReady after Close.
	ErrShellClosed = errors.New("app: shell closed")

	// ErrNotResumed is returned by AwaitReady before Resumed.
	ErrNotResumed = errors.New("app: shell not resumed")
)

// EventLoop is the part of the window system the shell drives.
type EventLoop interface {
	// CreateWindow opens the single application window.
	CreateWindow() (render.Window, error)

	// Exit asks the loop to stop after the current iteration.
	Exit()

	// Wake interrupts a loop blocked waiting for events so that it calls
	// Poll again. It is safe to call from any goroutine.
	Wake()
}

// Handler is what an event loop calls into.
type Handler interface {
	Resumed(ctx context.Context) error
	HandleEvent(ev Event)
	Poll() error

	// Exiting is called once when the loop stops, before the window
	// system is torn down.
	Exiting()
}

// Renderer is the render state as seen by the shell. *render.State
// implements it.
type Renderer interface {
	Resize(width, height uint32)
	TogglePipeline()
	UpdateClearColor(x, y float64)
	Update()
	Render() error
	Release()
}

// Factory builds a renderer for a window. It runs off the event-loop
// goroutine and must not call into the window system.
type Factory func(ctx context.Context, win render.Window) (Renderer, error)

// StateFactory returns a Factory that builds a *render.State on platform.
func StateFactory(platform render.Platform, opts ...render.Option) Factory {
	return func(ctx context.Context, win render.Window) (Renderer, error) {
		st, err := render.New(ctx, platform, win, opts...)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
}

// Option configures a Shell.
type Option func(*Shell)

// WithBlockingBootstrap builds the renderer inside Resumed instead of in
// the background.
func WithBlockingBootstrap() Option {
	return func(s *Shell) { s.blocking = true }
}

// Shell dispatches events to the renderer once it is ready.
type Shell struct {
	loop     EventLoop
	factory  Factory
	blocking bool

	life    lifecycle
	dropped int
}

// New returns a shell in the Uninitialized phase.
func New(loop EventLoop, factory Factory, opts ...Option) *Shell {
	s := &Shell{
		loop:    loop,
		factory: factory,
		life:    uninitialized{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phase returns the current lifecycle phase.
func (s *Shell) Phase() Phase { return s.life.phase() }

// Renderer returns the renderer, or nil before the shell is ready.
func (s *Shell) Renderer() Renderer {
	if r, ok := s.life.(*ready); ok {
		return r.renderer
	}
	return nil
}

// Dropped returns how many events arrived before the shell was ready.
func (s *Shell) Dropped() int { return s.dropped }

// Resumed creates the window and starts building the renderer. Calls after
// the first are no-ops.
func (s *Shell) Resumed(ctx context.Context) error {
	if _, ok := s.life.(uninitialized); !ok {
		return nil
	}

	win, err := s.loop.CreateWindow()
	if err != nil {
		err = fmt.Errorf("app: create window: %w", err)
		s.life = &failed{err: err}
		return err
	}

	if s.blocking {
		r, err := s.factory(ctx, win)
		if err != nil {
			s.life = &failed{err: err}
			return err
		}
		s.becomeReady(win, r)
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan bootstrapResult, 1)
	done := make(chan struct{})
	s.life = &bootstrapping{win: win, result: ch, cancel: cancel, done: done}
	trishade.Logger().Debug("bootstrapping render state")

	go func() {
		defer close(done)
		r, err := s.factory(ctx, win)
		ch <- bootstrapResult{renderer: r, err: err}
		s.loop.Wake()
	}()
	return nil
}

// Poll completes a pending bootstrap without blocking. It returns the
// construction error once bootstrap has failed.
func (s *Shell) Poll() error {
	switch l := s.life.(type) {
	case *bootstrapping:
		select {
		case res := <-l.result:
			return s.deliver(l, res)
		default:
			return nil
		}
	case *failed:
		return l.err
	default:
		return nil
	}
}

// AwaitReady blocks until bootstrap completes or ctx is done.
func (s *Shell) AwaitReady(ctx context.Context) error {
	switch l := s.life.(type) {
	case *bootstrapping:
		select {
		case res := <-l.result:
			return s.deliver(l, res)
		case <-ctx.Done():
			return ctx.Err()
		}
	case *failed:
		return l.err
	case *ready:
		return nil
	default:
		return ErrNotResumed
	}
}

func (s *Shell) deliver(b *bootstrapping, res bootstrapResult) error {
	b.cancel()
	if res.err != nil {
		s.life = &failed{err: res.err}
		return res.err
	}
	s.becomeReady(b.win, res.renderer)
	return nil
}

func (s *Shell) becomeReady(win render.Window, r Renderer) {
	s.life = &ready{win: win, renderer: r}
	w, h := win.Size()
	r.Resize(w, h)
	win.RequestRedraw()
	trishade.Logger().Info("render state ready", "width", w, "height", h, "dropped_events", s.dropped)
}

// HandleEvent dispatches ev to the renderer. Events before Ready are
// dropped.
func (s *Shell) HandleEvent(ev Event) {
	r, ok := s.life.(*ready)
	if !ok {
		s.dropped++
		return
	}

	switch e := ev.(type) {
	case CloseRequested:
		s.loop.Exit()
	case Resized:
		r.renderer.Resize(e.Width, e.Height)
	case RedrawRequested:
		s.redraw(r)
	case KeyInput:
		s.key(r, e)
	case PointerMoved:
		r.renderer.UpdateClearColor(e.X, e.Y)
	}
}

func (s *Shell) redraw(r *ready) {
	r.renderer.Update()
	err := r.renderer.Render()
	switch {
	case err == nil:
	case render.Recoverable(err):
		trishade.Logger().Debug("surface needs reconfiguration", "err", err)
		r.renderer.Resize(r.win.Size())
	default:
		trishade.Logger().Error("render failed", "err", err)
	}
}

func (s *Shell) key(r *ready, e KeyInput) {
	if !e.Pressed {
		return
	}
	switch e.Key {
	case gpucontext.KeyEscape:
		s.loop.Exit()
	case gpucontext.KeySpace:
		r.renderer.TogglePipeline()
	}
}

// Exiting implements Handler by closing the shell.
func (s *Shell) Exiting() { s.Close() }

// Close releases the renderer. A bootstrap still in flight is canceled and
// Close waits for it, so that no renderer or loop wakeup outlives the
// call. The shell cannot be reused; further calls are no-ops.
func (s *Shell) Close() {
	switch l := s.life.(type) {
	case *ready:
		l.renderer.Release()
	case *bootstrapping:
		l.cancel()
		res := <-l.result
		<-l.done
		if res.renderer != nil {
			res.renderer.Release()
		}
	}
	s.life = &failed{err: ErrShellClosed}
}
