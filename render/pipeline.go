// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/trishade/internal/shaders"
	"github.com/gogpu/wgpu/hal"
)

// pipelineSet holds both triangle pipelines and the resources they share.
// Both are built against the same surface format and never change.
type pipelineSet struct {
	layout  hal.PipelineLayout
	modules [2]hal.ShaderModule
	pipes   [2]hal.RenderPipeline
}

// variantSources maps each variant to its shader source.
var variantSources = [2]shaders.Source{
	VariantA: shaders.Flat,
	VariantB: shaders.Position,
}

// replaceBlend writes the fragment output as is.
func replaceBlend() gputypes.BlendState {
	replace := gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorOne,
		DstFactor: gputypes.BlendFactorZero,
		Operation: gputypes.BlendOperationAdd,
	}
	return gputypes.BlendState{Color: replace, Alpha: replace}
}

// createPipelines compiles both shader variants and builds one pipeline
// per variant. On failure everything created so far is destroyed.
func createPipelines(device hal.Device, format gputypes.TextureFormat) (*pipelineSet, error) {
	ps := &pipelineSet{}

	layout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "triangle_pipeline_layout",
	})
	if err != nil {
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	ps.layout = layout

	for _, v := range []Variant{VariantA, VariantB} {
		src := variantSources[v]
		module, err := shaders.CreateModule(device, src)
		if err != nil {
			ps.destroy(device)
			return nil, fmt.Errorf("variant %s: %w", v, err)
		}
		ps.modules[v] = module

		pipe, err := createTrianglePipeline(device, layout, module, format, src.Label)
		if err != nil {
			ps.destroy(device)
			return nil, fmt.Errorf("variant %s: %w", v, err)
		}
		ps.pipes[v] = pipe
	}
	return ps, nil
}

func createTrianglePipeline(
	device hal.Device,
	layout hal.PipelineLayout,
	module hal.ShaderModule,
	format gputypes.TextureFormat,
	label string,
) (hal.RenderPipeline, error) {
	blend := replaceBlend()
	pipe, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label + "_pipeline",
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: shaders.VertexEntry,
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: shaders.FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeBack,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create render pipeline %s: %w", label, err)
	}
	return pipe, nil
}

func (ps *pipelineSet) get(v Variant) hal.RenderPipeline {
	return ps.pipes[v]
}

func (ps *pipelineSet) destroy(device hal.Device) {
	if ps == nil || device == nil {
		return
	}
	for i := range ps.pipes {
		if ps.pipes[i] != nil {
			device.DestroyRenderPipeline(ps.pipes[i])
			ps.pipes[i] = nil
		}
	}
	if ps.layout != nil {
		device.DestroyPipelineLayout(ps.layout)
		ps.layout = nil
	}
	for i := range ps.modules {
		if ps.modules[i] != nil {
			device.DestroyShaderModule(ps.modules[i])
			ps.modules[i] = nil
		}
	}
}
