// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrFenceTimeout is returned when a submitted frame does not complete
// within the fence timeout, or when an earlier timed-out frame is still
// running.
var ErrFenceTimeout = errors.New("render: frame did not complete in time")

// triangleVertexCount is the number of vertices generated by the shaders
// from the vertex index. No vertex buffers are bound.
const triangleVertexCount = 3

// encodeFrame records one command buffer with a single render pass that
// clears view to clear and draws the triangle with pipeline.
func encodeFrame(
	device hal.Device,
	view hal.TextureView,
	pipeline hal.RenderPipeline,
	clear gputypes.Color,
) (hal.CommandBuffer, error) {
	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "triangle_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("triangle_frame"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "triangle_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clear,
		}},
	})
	rp.SetPipeline(pipeline)
	rp.Draw(triangleVertexCount, 1, 0, 0)
	rp.End()

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	return cmd, nil
}

// fencePollInterval is the sleep between completion checks while waiting
// for a submitted frame.
const fencePollInterval = 100 * time.Microsecond

// inflight is a submitted frame whose command buffer and surface texture
// may still be in use by the GPU.
type inflight struct {
	index uint64
	cmd   hal.CommandBuffer
	frame *Frame
}

func (f inflight) done(queue hal.Queue) bool {
	return queue.PollCompleted() >= f.index
}

// submitFrame submits cmd and waits until the queue reports the submission
// complete, so the surface texture is finished before presentation. On
// ErrFenceTimeout the returned submission is still owned by the GPU and
// must not be freed or discarded until it completes.
func submitFrame(queue hal.Queue, cmd hal.CommandBuffer, timeout time.Duration) (uint64, error) {
	index, err := queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		return 0, fmt.Errorf("submit: %w", err)
	}
	if !waitCompleted(queue, index, timeout) {
		return index, ErrFenceTimeout
	}
	return index, nil
}

// waitCompleted polls queue until index completes or timeout elapses.
func waitCompleted(queue hal.Queue, index uint64, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for queue.PollCompleted() < index {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(fencePollInterval)
	}
	return true
}
