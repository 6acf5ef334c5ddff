package rhi

import (
	"fmt"

	"github.com/gogpu/rhi/gpucore"
)

// RenderPipelineDesc describes a render pipeline.
type RenderPipelineDesc struct {
	Label       string
	VertexInput *VertexInputState
	Shaders     *ShaderStages
	ColorFormat gpucore.TextureFormat
	DepthFormat gpucore.TextureFormat
	CullMode    gpucore.CullMode
	WindingMode gpucore.WindingMode

	// UniformSlots lists the uniform buffer slots read by the shaders.
	UniformSlots []uint32
}

// RenderPipelineState is an immutable bundle of shaders, vertex layout and
// fixed-function state. Pipelines are expensive; create them once per
// distinct format/cull/winding combination.
type RenderPipelineState struct {
	device      *Device
	id          gpucore.RenderPipelineID
	colorFormat gpucore.TextureFormat
	depthFormat gpucore.TextureFormat
	cullMode    gpucore.CullMode
	windingMode gpucore.WindingMode
	destroyed   bool
}

// CreateRenderPipeline creates a pipeline from a vertex layout, a program and
// the attachment formats it renders into.
func (d *Device) CreateRenderPipeline(desc RenderPipelineDesc) (*RenderPipelineState, error) {
	if desc.VertexInput.IsDestroyed() || desc.Shaders.IsDestroyed() {
		return nil, newResourceError(ResourceRenderPipeline, ErrResourceDestroyed)
	}
	if desc.VertexInput.device != d || desc.Shaders.device != d {
		return nil, newResourceError(ResourceRenderPipeline, ErrForeignResource)
	}
	if desc.ColorFormat.IsDepth() || desc.ColorFormat == gpucore.TextureFormatInvalid {
		return nil, newResourceError(ResourceRenderPipeline,
			fmt.Errorf("%w: color format %v", ErrUnsupportedFormat, desc.ColorFormat))
	}
	if !desc.DepthFormat.IsDepth() {
		return nil, newResourceError(ResourceRenderPipeline,
			fmt.Errorf("%w: depth format %v", ErrUnsupportedFormat, desc.DepthFormat))
	}

	id, err := d.adapter.CreateRenderPipeline(&gpucore.RenderPipelineDesc{
		Label:        d.debugLabel(desc.Label),
		VertexInput:  desc.VertexInput.id,
		Shaders:      desc.Shaders.id,
		ColorFormat:  desc.ColorFormat,
		DepthFormat:  desc.DepthFormat,
		CullMode:     desc.CullMode,
		WindingMode:  desc.WindingMode,
		UniformSlots: desc.UniformSlots,
	})
	if err != nil || id == gpucore.InvalidID {
		return nil, newResourceError(ResourceRenderPipeline, err)
	}
	d.acquired()

	Logger().Debug("rhi: render pipeline created",
		"color", desc.ColorFormat, "depth", desc.DepthFormat,
		"cull", desc.CullMode, "winding", desc.WindingMode)

	return &RenderPipelineState{
		device:      d,
		id:          id,
		colorFormat: desc.ColorFormat,
		depthFormat: desc.DepthFormat,
		cullMode:    desc.CullMode,
		windingMode: desc.WindingMode,
	}, nil
}

// ID returns the backend handle, or InvalidID once destroyed.
func (p *RenderPipelineState) ID() gpucore.RenderPipelineID {
	if p == nil || p.destroyed {
		return gpucore.InvalidID
	}
	return p.id
}

// ColorFormat returns the color attachment format the pipeline renders into.
func (p *RenderPipelineState) ColorFormat() gpucore.TextureFormat { return p.colorFormat }

// DepthFormat returns the depth attachment format.
func (p *RenderPipelineState) DepthFormat() gpucore.TextureFormat { return p.depthFormat }

// CullMode returns the face culling mode.
func (p *RenderPipelineState) CullMode() gpucore.CullMode { return p.cullMode }

// WindingMode returns the front face winding.
func (p *RenderPipelineState) WindingMode() gpucore.WindingMode { return p.windingMode }

// IsDestroyed returns true if the pipeline has been destroyed.
func (p *RenderPipelineState) IsDestroyed() bool {
	return p == nil || p.destroyed
}

// Destroy releases the pipeline. Safe to call multiple times.
func (p *RenderPipelineState) Destroy() {
	if p == nil || p.destroyed {
		return
	}
	p.destroyed = true
	p.device.adapter.DestroyRenderPipeline(p.id)
	p.device.released()
}
