package render

import (
	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/gpucore"
)

// Shader entry points and bindings of CubeShaderSource.
const (
	VertexEntry   = "vertexShader"
	FragmentEntry = "fragmentShader"

	// UniformSlot is the binding of the MVP matrix in bind group 0.
	UniformSlot = 1
)

// CubeShaderSource transforms each vertex by the MVP uniform and passes the
// vertex color through.
const CubeShaderSource = `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) color_in: vec3<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec3<f32>,
}

@group(0) @binding(1) var<uniform> mvp: mat4x4<f32>;

@vertex
fn vertexShader(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = mvp * vec4<f32>(in.position, 1.0);
    out.color = in.color_in;
    return out;
}

@fragment
fn fragmentShader(in: VertexOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(in.color, 1.0);
}
`

func cubeShaderDesc() rhi.ShaderStagesDesc {
	return rhi.ShaderStagesDesc{
		Label:         "cube",
		Source:        CubeShaderSource,
		VertexEntry:   VertexEntry,
		FragmentEntry: FragmentEntry,
	}
}

func cubeVertexInputDesc() rhi.VertexInputStateDesc {
	return rhi.VertexInputStateDesc{
		Attributes: []rhi.VertexAttribute{
			{BufferIndex: 0, Format: gpucore.VertexFormatFloat3, Offset: 0, Name: "position", Location: 0},
			{BufferIndex: 0, Format: gpucore.VertexFormatFloat3, Offset: 12, Name: "color_in", Location: 1},
		},
		Bindings: []rhi.VertexBinding{{Stride: VertexStride}},
	}
}
