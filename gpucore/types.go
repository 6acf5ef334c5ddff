// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import "fmt"

// Resource IDs
//
// These opaque IDs represent GPU resources. Each adapter implementation
// maintains a mapping between IDs and actual backend resources.
// IDs are uint64 to accommodate various backend handle sizes.

// CommandQueueID is an opaque handle to a command queue.
type CommandQueueID uint64

// CommandBufferID is an opaque handle to a command buffer.
type CommandBufferID uint64

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// ShaderStagesID is an opaque handle to a vertex+fragment program pair.
type ShaderStagesID uint64

// VertexInputStateID is an opaque handle to a vertex layout description.
type VertexInputStateID uint64

// FramebufferID is an opaque handle to a framebuffer.
type FramebufferID uint64

// RenderPipelineID is an opaque handle to a render pipeline state.
type RenderPipelineID uint64

// EncoderID is an opaque handle to an active render command encoder.
type EncoderID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// BackendType identifies the native graphics API behind an adapter.
type BackendType uint32

// Backend types.
const (
	BackendInvalid BackendType = 0
	BackendOpenGL  BackendType = 1
	BackendMetal   BackendType = 2
	BackendVulkan  BackendType = 3
)

// String returns the string representation of BackendType.
func (b BackendType) String() string {
	switch b {
	case BackendInvalid:
		return "Invalid"
	case BackendOpenGL:
		return "OpenGL"
	case BackendMetal:
		return "Metal"
	case BackendVulkan:
		return "Vulkan"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(b))
	}
}

// BufferType is a bitmask specifying how a buffer will be used.
type BufferType uint32

// Buffer type flags.
const (
	// BufferTypeVertex indicates the buffer holds vertex data.
	BufferTypeVertex BufferType = 1 << 0

	// BufferTypeIndex indicates the buffer holds index data.
	BufferTypeIndex BufferType = 1 << 1

	// BufferTypeUniform indicates the buffer holds shader uniforms.
	BufferTypeUniform BufferType = 1 << 2
)

// String returns the string representation of BufferType.
func (t BufferType) String() string {
	switch t {
	case BufferTypeVertex:
		return "Vertex"
	case BufferTypeIndex:
		return "Index"
	case BufferTypeUniform:
		return "Uniform"
	default:
		return fmt.Sprintf("BufferType(%#x)", uint32(t))
	}
}

// VertexFormat is the numeric format of one vertex attribute.
type VertexFormat uint32

// Vertex formats.
const (
	VertexFormatFloat1 VertexFormat = 0
	VertexFormatFloat2 VertexFormat = 1
	VertexFormatFloat3 VertexFormat = 2
	VertexFormatFloat4 VertexFormat = 3
)

// Size returns the attribute size in bytes, or 0 for unknown formats.
func (f VertexFormat) Size() uint32 {
	switch f {
	case VertexFormatFloat1:
		return 4
	case VertexFormatFloat2:
		return 8
	case VertexFormatFloat3:
		return 12
	case VertexFormatFloat4:
		return 16
	default:
		return 0
	}
}

// IndexFormat is the element type of an index buffer.
type IndexFormat uint32

// Index formats.
const (
	IndexFormatUInt16 IndexFormat = 0
	IndexFormatUInt32 IndexFormat = 1
)

// CullMode selects which triangle faces are discarded.
type CullMode uint32

// Cull modes.
const (
	CullModeNone  CullMode = 0
	CullModeFront CullMode = 1
	CullModeBack  CullMode = 2
)

// String returns the string representation of CullMode.
func (m CullMode) String() string {
	switch m {
	case CullModeNone:
		return "None"
	case CullModeFront:
		return "Front"
	case CullModeBack:
		return "Back"
	default:
		return fmt.Sprintf("CullMode(%d)", uint32(m))
	}
}

// WindingMode selects the vertex order of front-facing triangles.
type WindingMode uint32

// Winding modes.
const (
	WindingModeClockwise        WindingMode = 0
	WindingModeCounterClockwise WindingMode = 1
)

// String returns the string representation of WindingMode.
func (m WindingMode) String() string {
	switch m {
	case WindingModeClockwise:
		return "Clockwise"
	case WindingModeCounterClockwise:
		return "CounterClockwise"
	default:
		return fmt.Sprintf("WindingMode(%d)", uint32(m))
	}
}

// LoadAction specifies what happens to an attachment at pass start.
type LoadAction uint32

// Load actions.
const (
	LoadActionDontCare LoadAction = 0
	LoadActionLoad     LoadAction = 1
	LoadActionClear    LoadAction = 2
)

// StoreAction specifies what happens to an attachment at pass end.
type StoreAction uint32

// Store actions.
const (
	StoreActionDontCare StoreAction = 0
	StoreActionStore    StoreAction = 1
)

// TextureFormat specifies the pixel format of a texture.
//
// Adapters report formats as raw uint32 values; convert them with an
// exhaustive switch rather than a cast, since a backend may return values
// outside this set.
type TextureFormat uint32

// Texture formats.
const (
	TextureFormatInvalid TextureFormat = 0

	// 32 bpp color
	TextureFormatRGBA8Unorm     TextureFormat = 9
	TextureFormatBGRA8Unorm     TextureFormat = 10
	TextureFormatRGBA8UnormSRGB TextureFormat = 11
	TextureFormatBGRA8UnormSRGB TextureFormat = 12
	TextureFormatRGB10A2Unorm   TextureFormat = 13

	// 64 bpp color
	TextureFormatRGBA16Float TextureFormat = 20

	// Depth and stencil
	TextureFormatDepth16Unorm         TextureFormat = 38
	TextureFormatDepth24Plus          TextureFormat = 39
	TextureFormatDepth24PlusStencil8  TextureFormat = 40
	TextureFormatDepth32Float         TextureFormat = 41
	TextureFormatDepth32FloatStencil8 TextureFormat = 42
)

// IsDepth reports whether the format has a depth aspect.
func (f TextureFormat) IsDepth() bool {
	switch f {
	case TextureFormatDepth16Unorm, TextureFormatDepth24Plus, TextureFormatDepth24PlusStencil8,
		TextureFormatDepth32Float, TextureFormatDepth32FloatStencil8:
		return true
	default:
		return false
	}
}

// String returns the string representation of TextureFormat.
func (f TextureFormat) String() string {
	switch f {
	case TextureFormatInvalid:
		return "Invalid"
	case TextureFormatRGBA8Unorm:
		return "RGBA8Unorm"
	case TextureFormatBGRA8Unorm:
		return "BGRA8Unorm"
	case TextureFormatRGBA8UnormSRGB:
		return "RGBA8UnormSRGB"
	case TextureFormatBGRA8UnormSRGB:
		return "BGRA8UnormSRGB"
	case TextureFormatRGB10A2Unorm:
		return "RGB10A2Unorm"
	case TextureFormatRGBA16Float:
		return "RGBA16Float"
	case TextureFormatDepth16Unorm:
		return "Depth16Unorm"
	case TextureFormatDepth24Plus:
		return "Depth24Plus"
	case TextureFormatDepth24PlusStencil8:
		return "Depth24PlusStencil8"
	case TextureFormatDepth32Float:
		return "Depth32Float"
	case TextureFormatDepth32FloatStencil8:
		return "Depth32FloatStencil8"
	default:
		return fmt.Sprintf("TextureFormat(%d)", uint32(f))
	}
}

// Color is a linear RGBA color with float components.
type Color struct {
	R, G, B, A float32
}

// BufferDesc describes a buffer created from a byte payload.
type BufferDesc struct {
	Label string
	Type  BufferType
	Data  []byte
}

// TextureDesc describes a texture allocated by the caller.
type TextureDesc struct {
	Label  string
	Width  uint32
	Height uint32
	Format TextureFormat
}

// ShaderStagesDesc describes a vertex+fragment program built from source text.
type ShaderStagesDesc struct {
	Label         string
	Source        string
	VertexEntry   string
	FragmentEntry string
}

// VertexAttribute describes one attribute in a vertex layout.
//
// Name is NUL-terminated and must remain valid for the lifetime of the
// vertex input state created from it; backends may retain the slice.
type VertexAttribute struct {
	BufferIndex uint32
	Format      VertexFormat
	Offset      uint32
	Name        []byte
	Location    uint32
}

// VertexBinding describes the stride of one vertex buffer.
type VertexBinding struct {
	Stride uint32
}

// VertexInputStateDesc describes a vertex buffer layout.
type VertexInputStateDesc struct {
	Attributes []VertexAttribute
	Bindings   []VertexBinding
}

// RenderPipelineDesc describes a render pipeline.
type RenderPipelineDesc struct {
	Label       string
	VertexInput VertexInputStateID
	Shaders     ShaderStagesID
	ColorFormat TextureFormat
	DepthFormat TextureFormat
	CullMode    CullMode
	WindingMode WindingMode

	// UniformSlots lists the uniform buffer slots the shaders read.
	UniformSlots []uint32
}

// ColorAttachmentDesc describes the color attachment of a render pass.
type ColorAttachmentDesc struct {
	LoadAction  LoadAction
	StoreAction StoreAction
	ClearColor  Color
}

// DepthAttachmentDesc describes the depth attachment of a render pass.
type DepthAttachmentDesc struct {
	LoadAction LoadAction
	ClearDepth float32
}

// RenderPassDesc describes a render pass begun on a framebuffer.
type RenderPassDesc struct {
	Color ColorAttachmentDesc
	Depth DepthAttachmentDesc
}
