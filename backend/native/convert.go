package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi/gpucore"
)

// Conversions between the native enums of gpucore and the WebGPU enums of
// gputypes. Every switch is exhaustive over the gpucore values and reports
// an error for anything else.

func textureFormatToHAL(f gpucore.TextureFormat) (gputypes.TextureFormat, error) {
	switch f {
	case gpucore.TextureFormatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm, nil
	case gpucore.TextureFormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm, nil
	case gpucore.TextureFormatRGBA8UnormSRGB:
		return gputypes.TextureFormatRGBA8UnormSrgb, nil
	case gpucore.TextureFormatBGRA8UnormSRGB:
		return gputypes.TextureFormatBGRA8UnormSrgb, nil
	case gpucore.TextureFormatRGB10A2Unorm:
		return gputypes.TextureFormatRGB10A2Unorm, nil
	case gpucore.TextureFormatRGBA16Float:
		return gputypes.TextureFormatRGBA16Float, nil
	case gpucore.TextureFormatDepth16Unorm:
		return gputypes.TextureFormatDepth16Unorm, nil
	case gpucore.TextureFormatDepth24Plus:
		return gputypes.TextureFormatDepth24Plus, nil
	case gpucore.TextureFormatDepth24PlusStencil8:
		return gputypes.TextureFormatDepth24PlusStencil8, nil
	case gpucore.TextureFormatDepth32Float:
		return gputypes.TextureFormatDepth32Float, nil
	case gpucore.TextureFormatDepth32FloatStencil8:
		return gputypes.TextureFormatDepth32FloatStencil8, nil
	default:
		return gputypes.TextureFormatUndefined, fmt.Errorf("%w: texture format %d", ErrUnsupported, f)
	}
}

func textureFormatFromHAL(f gputypes.TextureFormat) (gpucore.TextureFormat, error) {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm:
		return gpucore.TextureFormatRGBA8Unorm, nil
	case gputypes.TextureFormatBGRA8Unorm:
		return gpucore.TextureFormatBGRA8Unorm, nil
	case gputypes.TextureFormatRGBA8UnormSrgb:
		return gpucore.TextureFormatRGBA8UnormSRGB, nil
	case gputypes.TextureFormatBGRA8UnormSrgb:
		return gpucore.TextureFormatBGRA8UnormSRGB, nil
	case gputypes.TextureFormatRGB10A2Unorm:
		return gpucore.TextureFormatRGB10A2Unorm, nil
	case gputypes.TextureFormatRGBA16Float:
		return gpucore.TextureFormatRGBA16Float, nil
	case gputypes.TextureFormatDepth16Unorm:
		return gpucore.TextureFormatDepth16Unorm, nil
	case gputypes.TextureFormatDepth24Plus:
		return gpucore.TextureFormatDepth24Plus, nil
	case gputypes.TextureFormatDepth24PlusStencil8:
		return gpucore.TextureFormatDepth24PlusStencil8, nil
	case gputypes.TextureFormatDepth32Float:
		return gpucore.TextureFormatDepth32Float, nil
	case gputypes.TextureFormatDepth32FloatStencil8:
		return gpucore.TextureFormatDepth32FloatStencil8, nil
	default:
		return gpucore.TextureFormatInvalid, fmt.Errorf("%w: gputypes format %v", ErrUnsupported, f)
	}
}

func vertexFormatToHAL(f gpucore.VertexFormat) (gputypes.VertexFormat, error) {
	switch f {
	case gpucore.VertexFormatFloat1:
		return gputypes.VertexFormatFloat32, nil
	case gpucore.VertexFormatFloat2:
		return gputypes.VertexFormatFloat32x2, nil
	case gpucore.VertexFormatFloat3:
		return gputypes.VertexFormatFloat32x3, nil
	case gpucore.VertexFormatFloat4:
		return gputypes.VertexFormatFloat32x4, nil
	default:
		return 0, fmt.Errorf("%w: vertex format %d", ErrUnsupported, f)
	}
}

func indexFormatToHAL(f gpucore.IndexFormat) (gputypes.IndexFormat, error) {
	switch f {
	case gpucore.IndexFormatUInt16:
		return gputypes.IndexFormatUint16, nil
	case gpucore.IndexFormatUInt32:
		return gputypes.IndexFormatUint32, nil
	default:
		return 0, fmt.Errorf("%w: index format %d", ErrUnsupported, f)
	}
}

func cullModeToHAL(m gpucore.CullMode) (gputypes.CullMode, error) {
	switch m {
	case gpucore.CullModeNone:
		return gputypes.CullModeNone, nil
	case gpucore.CullModeFront:
		return gputypes.CullModeFront, nil
	case gpucore.CullModeBack:
		return gputypes.CullModeBack, nil
	default:
		return 0, fmt.Errorf("%w: cull mode %d", ErrUnsupported, m)
	}
}

func frontFaceToHAL(w gpucore.WindingMode) (gputypes.FrontFace, error) {
	switch w {
	case gpucore.WindingModeClockwise:
		return gputypes.FrontFaceCW, nil
	case gpucore.WindingModeCounterClockwise:
		return gputypes.FrontFaceCCW, nil
	default:
		return 0, fmt.Errorf("%w: winding mode %d", ErrUnsupported, w)
	}
}

// loadOpToHAL maps DontCare to Clear: WebGPU has no undefined load.
func loadOpToHAL(a gpucore.LoadAction) gputypes.LoadOp {
	if a == gpucore.LoadActionLoad {
		return gputypes.LoadOpLoad
	}
	return gputypes.LoadOpClear
}

func storeOpToHAL(a gpucore.StoreAction) gputypes.StoreOp {
	if a == gpucore.StoreActionStore {
		return gputypes.StoreOpStore
	}
	return gputypes.StoreOpDiscard
}

func bufferUsageToHAL(t gpucore.BufferType) (gputypes.BufferUsage, error) {
	var usage gputypes.BufferUsage
	if t&gpucore.BufferTypeVertex != 0 {
		usage |= gputypes.BufferUsageVertex
	}
	if t&gpucore.BufferTypeIndex != 0 {
		usage |= gputypes.BufferUsageIndex
	}
	if t&gpucore.BufferTypeUniform != 0 {
		usage |= gputypes.BufferUsageUniform
	}
	if usage == 0 {
		return 0, fmt.Errorf("%w: buffer type %d", ErrUnsupported, t)
	}
	return usage | gputypes.BufferUsageCopyDst, nil
}

func colorToHAL(c gpucore.Color) gputypes.Color {
	return gputypes.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)}
}

// backendFromHAL maps a HAL backend onto the three native APIs rhi knows.
// The empty backend (noop, software) reports Vulkan: both follow Vulkan
// clip-space and winding conventions.
func backendFromHAL(b gputypes.Backend) (gpucore.BackendType, error) {
	switch b {
	case gputypes.BackendVulkan, gputypes.BackendEmpty:
		return gpucore.BackendVulkan, nil
	case gputypes.BackendMetal:
		return gpucore.BackendMetal, nil
	case gputypes.BackendGL:
		return gpucore.BackendOpenGL, nil
	default:
		return gpucore.BackendInvalid, fmt.Errorf("%w: backend %v", ErrUnsupported, b)
	}
}
