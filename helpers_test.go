package rhi

import (
	"testing"

	"github.com/gogpu/rhi/gpucore"
	"github.com/gogpu/rhi/internal/gpumock"
)

// newMockDevice creates a Device over a fresh liveness-tracking mock and
// fails the test at cleanup if any handle was misused.
func newMockDevice(t *testing.T) (*Device, *gpumock.Adapter) {
	t.Helper()
	mock := gpumock.New(gpucore.BackendMetal)
	dev, err := NewDevice(mock)
	if err != nil {
		t.Fatalf("NewDevice() = %v", err)
	}
	t.Cleanup(func() {
		if err := mock.Verify(); err != nil {
			t.Errorf("backend violations:\n%v", err)
		}
	})
	return dev, mock
}

func mustBuffer(t *testing.T, dev *Device, typ gpucore.BufferType) *Buffer {
	t.Helper()
	buf, err := dev.CreateBuffer(BufferDesc{Type: typ, Data: make([]byte, 64)})
	if err != nil {
		t.Fatalf("CreateBuffer() = %v", err)
	}
	return buf
}

func mustDrawables(t *testing.T, dev *Device, mock *gpumock.Adapter, w, h uint32) (color, depth *Texture) {
	t.Helper()
	var err error
	color, err = dev.WrapDrawable(mock.NewDrawable(gpucore.TextureFormatBGRA8Unorm, w, h))
	if err != nil {
		t.Fatalf("WrapDrawable(color) = %v", err)
	}
	depth, err = dev.WrapDrawable(mock.NewDrawable(gpucore.TextureFormatDepth32Float, w, h))
	if err != nil {
		t.Fatalf("WrapDrawable(depth) = %v", err)
	}
	return color, depth
}

func testVertexInputDesc() VertexInputStateDesc {
	return VertexInputStateDesc{
		Attributes: []VertexAttribute{
			{BufferIndex: 0, Format: gpucore.VertexFormatFloat3, Offset: 0, Name: "position", Location: 0},
			{BufferIndex: 0, Format: gpucore.VertexFormatFloat3, Offset: 12, Name: "color_in", Location: 1},
		},
		Bindings: []VertexBinding{{Stride: 24}},
	}
}

func testShaderDesc() ShaderStagesDesc {
	return ShaderStagesDesc{Source: "shader", VertexEntry: "vertexShader", FragmentEntry: "fragmentShader"}
}

// mustPipeline creates a pipeline and its dependencies, destroying the
// dependencies at cleanup.
func mustPipeline(t *testing.T, dev *Device) *RenderPipelineState {
	t.Helper()
	vis, err := dev.CreateVertexInputState(testVertexInputDesc())
	if err != nil {
		t.Fatalf("CreateVertexInputState() = %v", err)
	}
	t.Cleanup(vis.Destroy)
	sh, err := dev.CreateShaderStages(testShaderDesc())
	if err != nil {
		t.Fatalf("CreateShaderStages() = %v", err)
	}
	t.Cleanup(sh.Destroy)
	p, err := dev.CreateRenderPipeline(RenderPipelineDesc{
		VertexInput: vis,
		Shaders:     sh,
		ColorFormat: gpucore.TextureFormatBGRA8Unorm,
		DepthFormat: gpucore.TextureFormatDepth32Float,
		CullMode:    gpucore.CullModeBack,
		WindingMode: gpucore.WindingModeClockwise,
	})
	if err != nil {
		t.Fatalf("CreateRenderPipeline() = %v", err)
	}
	return p
}

func defaultPass() RenderPassDesc {
	return RenderPassDesc{Color: DefaultColorAttachment(), Depth: DefaultDepthAttachment()}
}
