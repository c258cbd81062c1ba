package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/trishade/render"
)

type fakeWindow struct {
	w, h    atomic.Uint32
	redraws atomic.Int32
}

func newFakeWindow(w, h uint32) *fakeWindow {
	win := &fakeWindow{}
	win.w.Store(w)
	win.h.Store(h)
	return win
}

func (f *fakeWindow) Size() (uint32, uint32) { return f.w.Load(), f.h.Load() }
func (f *fakeWindow) RequestRedraw()         { f.redraws.Add(1) }

type fakeLoop struct {
	win       *fakeWindow
	createErr error
	creates   int
	exits     int
	wakes     chan struct{}

	// torn marks the loop as shut down; wakes after that are counted.
	torn      atomic.Bool
	lateWakes atomic.Int32
}

func newFakeLoop(w, h uint32) *fakeLoop {
	return &fakeLoop{win: newFakeWindow(w, h), wakes: make(chan struct{}, 16)}
}

func (l *fakeLoop) CreateWindow() (render.Window, error) {
	l.creates++
	if l.createErr != nil {
		return nil, l.createErr
	}
	return l.win, nil
}
func (l *fakeLoop) Exit() { l.exits++ }
func (l *fakeLoop) Wake() {
	if l.torn.Load() {
		l.lateWakes.Add(1)
		return
	}
	l.wakes <- struct{}{}
}

type call struct {
	name string
	a, b float64
}

type fakeRenderer struct {
	calls      []call
	renderErrs []error
	released   bool
}

func (r *fakeRenderer) Resize(w, h uint32) {
	r.calls = append(r.calls, call{"Resize", float64(w), float64(h)})
}
func (r *fakeRenderer) TogglePipeline() { r.calls = append(r.calls, call{name: "Toggle"}) }
func (r *fakeRenderer) UpdateClearColor(x, y float64) {
	r.calls = append(r.calls, call{"UpdateClearColor", x, y})
}
func (r *fakeRenderer) Update() { r.calls = append(r.calls, call{name: "Update"}) }
func (r *fakeRenderer) Render() error {
	r.calls = append(r.calls, call{name: "Render"})
	if len(r.renderErrs) > 0 {
		err := r.renderErrs[0]
		r.renderErrs = r.renderErrs[1:]
		return err
	}
	return nil
}
func (r *fakeRenderer) Release() { r.released = true }

func (r *fakeRenderer) names() []string {
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.name
	}
	return out
}

func staticFactory(r Renderer) Factory {
	return func(context.Context, render.Window) (Renderer, error) { return r, nil }
}

func readyShell(t *testing.T, r *fakeRenderer) (*Shell, *fakeLoop) {
	t.Helper()
	loop := newFakeLoop(800, 600)
	s := New(loop, staticFactory(r), WithBlockingBootstrap())
	if err := s.Resumed(context.Background()); err != nil {
		t.Fatalf("Resumed: %v", err)
	}
	r.calls = nil
	return s, loop
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestShellNonBlockingBootstrap(t *testing.T) {
	loop := newFakeLoop(1024, 768)
	gate := make(chan struct{})
	r := &fakeRenderer{}
	factory := func(ctx context.Context, win render.Window) (Renderer, error) {
		<-gate
		return r, nil
	}
	s := New(loop, factory)

	if s.Phase() != PhaseUninitialized {
		t.Fatalf("phase = %v", s.Phase())
	}
	if err := s.Resumed(context.Background()); err != nil {
		t.Fatalf("Resumed: %v", err)
	}
	if s.Phase() != PhaseBootstrapping {
		t.Fatalf("phase after Resumed = %v, want Bootstrapping", s.Phase())
	}

	// Resumed is idempotent.
	if err := s.Resumed(context.Background()); err != nil {
		t.Fatalf("second Resumed: %v", err)
	}
	if loop.creates != 1 {
		t.Errorf("CreateWindow called %d times, want 1", loop.creates)
	}

	if err := s.Poll(); err != nil || s.Phase() != PhaseBootstrapping {
		t.Fatalf("Poll before delivery: err=%v phase=%v", err, s.Phase())
	}

	s.HandleEvent(Resized{Width: 1024, Height: 768})
	s.HandleEvent(RedrawRequested{})
	if s.Dropped() != 2 {
		t.Errorf("Dropped = %d, want 2", s.Dropped())
	}

	close(gate)
	select {
	case <-loop.wakes:
	case <-time.After(5 * time.Second):
		t.Fatal("bootstrap never woke the loop")
	}
	if err := s.Poll(); err != nil {
		t.Fatalf("Poll after delivery: %v", err)
	}
	if s.Phase() != PhaseReady || s.Renderer() != Renderer(r) {
		t.Fatalf("phase = %v, renderer = %v", s.Phase(), s.Renderer())
	}

	if len(r.calls) != 1 || r.calls[0] != (call{"Resize", 1024, 768}) {
		t.Errorf("ready transition calls = %+v, want Resize(1024,768)", r.calls)
	}
	if loop.win.redraws.Load() != 1 {
		t.Errorf("redraws = %d, want 1", loop.win.redraws.Load())
	}
}

func TestShellAwaitReady(t *testing.T) {
	loop := newFakeLoop(10, 10)
	r := &fakeRenderer{}
	s := New(loop, staticFactory(r))

	if err := s.AwaitReady(context.Background()); !errors.Is(err, ErrNotResumed) {
		t.Errorf("AwaitReady before Resumed: %v", err)
	}
	if err := s.Resumed(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.AwaitReady(ctx); err != nil {
		t.Fatalf("AwaitReady: %v", err)
	}
	if s.Phase() != PhaseReady {
		t.Errorf("phase = %v", s.Phase())
	}
	if err := s.AwaitReady(ctx); err != nil {
		t.Errorf("AwaitReady when ready: %v", err)
	}
}

func TestShellAwaitReadyContextDone(t *testing.T) {
	loop := newFakeLoop(10, 10)
	s := New(loop, func(ctx context.Context, _ render.Window) (Renderer, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	if err := s.Resumed(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.AwaitReady(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	s.Close()
}

func TestShellBootstrapFailure(t *testing.T) {
	loop := newFakeLoop(10, 10)
	initErr := errors.New("no GPU")
	s := New(loop, func(context.Context, render.Window) (Renderer, error) {
		return nil, initErr
	})
	if err := s.Resumed(context.Background()); err != nil {
		t.Fatal(err)
	}
	<-loop.wakes

	if err := s.Poll(); !errors.Is(err, initErr) {
		t.Fatalf("Poll = %v, want %v", err, initErr)
	}
	if s.Phase() != PhaseFailed {
		t.Errorf("phase = %v, want Failed", s.Phase())
	}
	if err := s.Poll(); !errors.Is(err, initErr) {
		t.Errorf("Poll must keep reporting the failure, got %v", err)
	}
	s.HandleEvent(RedrawRequested{})
	if s.Dropped() != 1 {
		t.Errorf("event after failure was not dropped")
	}
}

func TestShellCreateWindowFailure(t *testing.T) {
	loop := newFakeLoop(10, 10)
	loop.createErr = errors.New("no display")
	s := New(loop, staticFactory(&fakeRenderer{}))

	err := s.Resumed(context.Background())
	if !errors.Is(err, loop.createErr) {
		t.Fatalf("Resumed = %v", err)
	}
	if err := s.Poll(); !errors.Is(err, loop.createErr) {
		t.Errorf("Poll = %v", err)
	}
}

func TestShellBlockingBootstrapFailure(t *testing.T) {
	loop := newFakeLoop(10, 10)
	initErr := errors.New("boom")
	s := New(loop, func(context.Context, render.Window) (Renderer, error) {
		return nil, initErr
	}, WithBlockingBootstrap())

	if err := s.Resumed(context.Background()); !errors.Is(err, initErr) {
		t.Fatalf("Resumed = %v", err)
	}
	if s.Phase() != PhaseFailed {
		t.Errorf("phase = %v", s.Phase())
	}
}

func TestShellDispatch(t *testing.T) {
	tests := []struct {
		name      string
		event     Event
		wantCalls []string
		wantExits int
	}{
		{"close", CloseRequested{}, nil, 1},
		{"resize", Resized{Width: 300, Height: 200}, []string{"Resize"}, 0},
		{"redraw", RedrawRequested{}, []string{"Update", "Render"}, 0},
		{"escape press", KeyInput{Key: gpucontext.KeyEscape, Pressed: true}, nil, 1},
		{"escape release", KeyInput{Key: gpucontext.KeyEscape}, nil, 0},
		{"space press", KeyInput{Key: gpucontext.KeySpace, Pressed: true}, []string{"Toggle"}, 0},
		{"space release", KeyInput{Key: gpucontext.KeySpace}, nil, 0},
		{"pointer", PointerMoved{X: 1, Y: 2}, []string{"UpdateClearColor"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRenderer{}
			s, loop := readyShell(t, r)
			s.HandleEvent(tt.event)

			if !equalNames(r.names(), tt.wantCalls) {
				t.Errorf("calls = %v, want %v", r.names(), tt.wantCalls)
			}
			if loop.exits != tt.wantExits {
				t.Errorf("exits = %d, want %d", loop.exits, tt.wantExits)
			}
		})
	}
}

func TestShellRedrawRecovery(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCalls []string
	}{
		{"lost", render.NewFrameError(render.SurfaceLost, nil), []string{"Update", "Render", "Resize"}},
		{"outdated", render.NewFrameError(render.SurfaceOutdated, nil), []string{"Update", "Render", "Resize"}},
		{"timeout", render.NewFrameError(render.SurfaceTimeout, nil), []string{"Update", "Render"}},
		{"out of memory", render.NewFrameError(render.SurfaceOutOfMemory, nil), []string{"Update", "Render"}},
		{"other", errors.New("device lost"), []string{"Update", "Render"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRenderer{renderErrs: []error{tt.err}}
			s, loop := readyShell(t, r)
			loop.win.w.Store(640)
			loop.win.h.Store(480)

			s.HandleEvent(RedrawRequested{})
			if !equalNames(r.names(), tt.wantCalls) {
				t.Fatalf("calls = %v, want %v", r.names(), tt.wantCalls)
			}
			if last := r.calls[len(r.calls)-1]; last.name == "Resize" && (last.a != 640 || last.b != 480) {
				t.Errorf("recovery resized to %vx%v, want current window size 640x480", last.a, last.b)
			}
			if loop.exits != 0 {
				t.Error("render error must not exit the loop")
			}
		})
	}
}

func TestShellClose(t *testing.T) {
	r := &fakeRenderer{}
	s, _ := readyShell(t, r)
	s.Close()
	if !r.released {
		t.Error("renderer not released")
	}
	if err := s.Poll(); !errors.Is(err, ErrShellClosed) {
		t.Errorf("Poll after Close = %v", err)
	}
}

func TestShellCloseDuringBootstrap(t *testing.T) {
	loop := newFakeLoop(10, 10)
	started := make(chan struct{})
	r := &fakeRenderer{}
	s := New(loop, func(ctx context.Context, _ render.Window) (Renderer, error) {
		close(started)
		<-ctx.Done()
		// A device that finished opening just as the cancel arrived.
		return r, nil
	})
	if err := s.Resumed(context.Background()); err != nil {
		t.Fatal(err)
	}
	<-started

	s.Exiting()
	if !r.released {
		t.Error("renderer built during Close was not released")
	}
	if len(loop.wakes) != 1 {
		t.Errorf("wakes before Close returned = %d, want 1", len(loop.wakes))
	}

	// Tearing the loop down after Close must not see a late wakeup.
	loop.torn.Store(true)
	time.Sleep(10 * time.Millisecond)
	if n := loop.lateWakes.Load(); n != 0 {
		t.Errorf("bootstrap woke a torn-down loop %d times", n)
	}
	if s.Phase() != PhaseFailed {
		t.Errorf("phase = %v, want Failed", s.Phase())
	}
	s.Close()
}

func TestShellCloseAfterBootstrapFailure(t *testing.T) {
	loop := newFakeLoop(10, 10)
	s := New(loop, func(ctx context.Context, _ render.Window) (Renderer, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	if err := s.Resumed(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.Close()
	if err := s.Poll(); !errors.Is(err, ErrShellClosed) {
		t.Errorf("Poll after Close = %v, want ErrShellClosed", err)
	}
}

func TestPhaseString(t *testing.T) {
	for p, want := range map[Phase]string{
		PhaseUninitialized: "Uninitialized",
		PhaseBootstrapping: "Bootstrapping",
		PhaseReady:         "Ready",
		PhaseFailed:        "Failed",
		Phase(42):          "Unknown",
	} {
		if p.String() != want {
			t.Errorf("%d.String() = %q, want %q", p, p.String(), want)
		}
	}
}
