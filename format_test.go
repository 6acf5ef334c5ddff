package rhi

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/rhi/gpucore"
)

func TestTextureFormatFromNative(t *testing.T) {
	known := []gpucore.TextureFormat{
		gpucore.TextureFormatRGBA8Unorm,
		gpucore.TextureFormatBGRA8Unorm,
		gpucore.TextureFormatRGBA8UnormSRGB,
		gpucore.TextureFormatBGRA8UnormSRGB,
		gpucore.TextureFormatRGB10A2Unorm,
		gpucore.TextureFormatRGBA16Float,
		gpucore.TextureFormatDepth16Unorm,
		gpucore.TextureFormatDepth24Plus,
		gpucore.TextureFormatDepth24PlusStencil8,
		gpucore.TextureFormatDepth32Float,
		gpucore.TextureFormatDepth32FloatStencil8,
	}
	for _, f := range known {
		t.Run(f.String(), func(t *testing.T) {
			got, err := TextureFormatFromNative(uint32(f))
			if err != nil {
				t.Fatalf("TextureFormatFromNative(%d) = %v", f, err)
			}
			if got != f {
				t.Errorf("TextureFormatFromNative(%d) = %v, want %v", f, got, f)
			}
		})
	}
}

func TestTextureFormatFromNative_Unsupported(t *testing.T) {
	for _, v := range []uint32{0, 1, 8, 14, 37, 43, 255, 1 << 31} {
		got, err := TextureFormatFromNative(v)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("TextureFormatFromNative(%d) error = %v, want ErrUnsupportedFormat", v, err)
		}
		if got != gpucore.TextureFormatInvalid {
			t.Errorf("TextureFormatFromNative(%d) = %v, want Invalid", v, got)
		}
	}
}

func TestResourceError(t *testing.T) {
	err := newResourceError(ResourceRenderPipeline, nil)
	if !errors.Is(err, ErrNullHandle) || !errors.Is(err, ErrResourceCreationFailed) {
		t.Errorf("null-handle error %v does not match both sentinels", err)
	}
	if !strings.Contains(err.Error(), "render pipeline") {
		t.Errorf("Error() = %q, want it to name the resource kind", err.Error())
	}
	if errors.Is(err, ErrUnsupportedFormat) {
		t.Error("null-handle error unexpectedly matches ErrUnsupportedFormat")
	}

	wrapped := newResourceError(ResourceBuffer, ErrUnsupportedFormat)
	if !errors.Is(wrapped, ErrUnsupportedFormat) {
		t.Errorf("ResourceError does not unwrap to its cause: %v", wrapped)
	}
}

func TestResourceKind_String(t *testing.T) {
	tests := []struct {
		kind ResourceKind
		want string
	}{
		{ResourceBuffer, "buffer"},
		{ResourceShaderStages, "shader stages"},
		{ResourceVertexInputState, "vertex input state"},
		{ResourceFramebuffer, "framebuffer"},
		{ResourceRenderPipeline, "render pipeline"},
		{ResourceKind(42), "ResourceKind(42)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
