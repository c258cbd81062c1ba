package render

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

type fakeWindow struct {
	width, height uint32
	redraws       atomic.Int32
}

func (w *fakeWindow) Size() (uint32, uint32) { return w.width, w.height }
func (w *fakeWindow) RequestRedraw()         { w.redraws.Add(1) }

// fakeSurface renders into noop textures and returns queued acquire errors
// before producing frames.
type fakeSurface struct {
	device hal.Device

	configures   int
	configureErr error
	lastConfig   SurfaceConfig

	acquireErrs []error
	presented   int
	discarded   int
	destroyed   bool
}

func (s *fakeSurface) Configure(device hal.Device, config *SurfaceConfig) error {
	if s.configureErr != nil {
		return s.configureErr
	}
	s.device = device
	s.configures++
	s.lastConfig = *config
	return nil
}

func (s *fakeSurface) Acquire() (*Frame, error) {
	if len(s.acquireErrs) > 0 {
		err := s.acquireErrs[0]
		s.acquireErrs = s.acquireErrs[1:]
		return nil, err
	}
	tex, err := s.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "fake_surface_texture",
		Size:          hal.Extent3D{Width: s.lastConfig.Width, Height: s.lastConfig.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        s.lastConfig.Format,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, NewFrameError(SurfaceOther, err)
	}
	view, err := s.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "fake_surface_view"})
	if err != nil {
		s.device.DestroyTexture(tex)
		return nil, NewFrameError(SurfaceOther, err)
	}
	return &Frame{Texture: tex, View: view}, nil
}

func (s *fakeSurface) release(frame *Frame) {
	s.device.DestroyTextureView(frame.View)
	s.device.DestroyTexture(frame.Texture)
}

func (s *fakeSurface) Present(_ hal.Queue, frame *Frame) error {
	s.presented++
	s.release(frame)
	return nil
}

func (s *fakeSurface) Discard(frame *Frame) {
	s.discarded++
	s.release(frame)
}

func (s *fakeSurface) Destroy() { s.destroyed = true }

// recorder collects what the render state encodes and submits.
type recorder struct {
	passes    int
	loadOps   []gputypes.LoadOp
	clears    []gputypes.Color
	pipelines []string
	draws     [][4]uint32
	freed     int
	waitIdles int
}

type labeledPipeline struct {
	hal.RenderPipeline
	label string
}

// recordingDevice wraps a noop device so encoded passes can be inspected.
type recordingDevice struct {
	hal.Device
	rec   *recorder
	queue *stallQueue
}

func (d *recordingDevice) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	pipe, err := d.Device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, err
	}
	return &labeledPipeline{RenderPipeline: pipe, label: desc.Label}, nil
}

func (d *recordingDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &recordingEncoder{CommandEncoder: enc, rec: d.rec}, nil
}

func (d *recordingDevice) FreeCommandBuffer(cmd hal.CommandBuffer) {
	d.rec.freed++
	d.Device.FreeCommandBuffer(cmd)
}

func (d *recordingDevice) WaitIdle() error {
	d.rec.waitIdles++
	d.queue.hold = false
	return d.Device.WaitIdle()
}

type recordingEncoder struct {
	hal.CommandEncoder
	rec *recorder
}

func (e *recordingEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	e.rec.passes++
	for _, a := range desc.ColorAttachments {
		e.rec.loadOps = append(e.rec.loadOps, a.LoadOp)
		e.rec.clears = append(e.rec.clears, a.ClearValue)
	}
	return &recordingPass{RenderPassEncoder: e.CommandEncoder.BeginRenderPass(desc), rec: e.rec}
}

type recordingPass struct {
	hal.RenderPassEncoder
	rec *recorder
}

func (p *recordingPass) SetPipeline(pipeline hal.RenderPipeline) {
	if lp, ok := pipeline.(*labeledPipeline); ok {
		p.rec.pipelines = append(p.rec.pipelines, lp.label)
	}
	p.RenderPassEncoder.SetPipeline(pipeline)
}

func (p *recordingPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.rec.draws = append(p.rec.draws, [4]uint32{vertexCount, instanceCount, firstVertex, firstInstance})
	p.RenderPassEncoder.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

// stallQueue counts submissions and, while hold is set, reports nothing
// newer than what had completed when the hold began.
type stallQueue struct {
	hal.Queue
	submits   int
	hold      bool
	completed uint64
}

func (q *stallQueue) Submit(cmds []hal.CommandBuffer) (uint64, error) {
	q.submits++
	return q.Queue.Submit(cmds)
}

func (q *stallQueue) PollCompleted() uint64 {
	if q.hold {
		return q.completed
	}
	return q.Queue.PollCompleted()
}

func (q *stallQueue) stall() {
	q.completed = q.Queue.PollCompleted()
	q.hold = true
}

// fakePlatform opens a noop device paired with a fakeSurface. With record
// set, the device and queue are wrapped so encoding and submission can be
// observed.
type fakePlatform struct {
	caps    SurfaceCapabilities
	openErr error
	record  bool

	rec   *recorder
	queue *stallQueue

	surface  *fakeSurface
	released bool
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		caps: SurfaceCapabilities{
			Formats: []gputypes.TextureFormat{
				gputypes.TextureFormatBGRA8Unorm,
				gputypes.TextureFormatBGRA8UnormSrgb,
			},
			PresentModes: []PresentMode{PresentModeFifo},
			AlphaModes:   []AlphaMode{AlphaModeOpaque},
		},
	}
}

func (p *fakePlatform) Open(_ context.Context, _ Window) (*Device, error) {
	if p.openErr != nil {
		return nil, p.openErr
	}
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, err
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, err
	}
	device, queue := openDev.Device, openDev.Queue
	if p.record {
		p.rec = &recorder{}
		p.queue = &stallQueue{Queue: queue}
		device = &recordingDevice{Device: device, rec: p.rec, queue: p.queue}
		queue = p.queue
	}
	p.surface = &fakeSurface{}
	return &Device{
		Name:         adapters[0].Info.Name,
		Device:       device,
		Queue:        queue,
		Surface:      p.surface,
		Capabilities: p.caps,
		OnRelease: func() {
			instance.Destroy()
			p.released = true
		},
	}, nil
}

func newTestState(t *testing.T, win *fakeWindow, opts ...Option) (*State, *fakePlatform) {
	t.Helper()
	p := newFakePlatform()
	p.record = true
	s, err := New(context.Background(), p, win, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(s.Release)
	return s, p
}
