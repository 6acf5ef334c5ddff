package rhi

import (
	"fmt"

	"github.com/gogpu/rhi/gpucore"
)

// TextureFormatFromNative converts a raw backend format value to a
// gpucore.TextureFormat. Unknown values, including TextureFormatInvalid,
// return ErrUnsupportedFormat.
func TextureFormatFromNative(v uint32) (gpucore.TextureFormat, error) {
	switch f := gpucore.TextureFormat(v); f {
	case gpucore.TextureFormatRGBA8Unorm,
		gpucore.TextureFormatBGRA8Unorm,
		gpucore.TextureFormatRGBA8UnormSRGB,
		gpucore.TextureFormatBGRA8UnormSRGB,
		gpucore.TextureFormatRGB10A2Unorm,
		gpucore.TextureFormatRGBA16Float,
		gpucore.TextureFormatDepth16Unorm,
		gpucore.TextureFormatDepth24Plus,
		gpucore.TextureFormatDepth24PlusStencil8,
		gpucore.TextureFormatDepth32Float,
		gpucore.TextureFormatDepth32FloatStencil8:
		return f, nil
	default:
		return gpucore.TextureFormatInvalid, fmt.Errorf("%w: %d", ErrUnsupportedFormat, v)
	}
}
