package rhi

import (
	"fmt"

	"github.com/gogpu/rhi/gpucore"
)

// TextureDesc describes a texture allocated by rhi.
type TextureDesc struct {
	Label  string
	Width  uint32
	Height uint32
	Format gpucore.TextureFormat
}

// Texture is a GPU image used as a color or depth render target.
//
// A Texture is either owned or borrowed. Drawable textures handed out by the
// platform each frame are borrowed: the swapchain owns them, and Destroy only
// releases the wrapper. Textures from Device.CreateTexture are owned and
// Destroy frees the backend object exactly once.
type Texture struct {
	device    *Device
	id        gpucore.TextureID
	owned     bool
	destroyed bool
}

// WrapDrawable wraps a backend-owned texture, such as the current swapchain
// image. The returned Texture never destroys the backend object.
func (d *Device) WrapDrawable(id gpucore.TextureID) (*Texture, error) {
	if id == gpucore.InvalidID {
		return nil, newResourceError(ResourceTexture, nil)
	}
	return &Texture{device: d, id: id}, nil
}

// CreateTexture allocates a texture owned by the returned wrapper.
func (d *Device) CreateTexture(desc TextureDesc) (*Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, newResourceError(ResourceTexture,
			fmt.Errorf("%w: texture size %dx%d", ErrInvalidDescriptor, desc.Width, desc.Height))
	}
	if _, err := TextureFormatFromNative(uint32(desc.Format)); err != nil {
		return nil, newResourceError(ResourceTexture, err)
	}

	id, err := d.adapter.CreateTexture(&gpucore.TextureDesc{
		Label:  d.debugLabel(desc.Label),
		Width:  desc.Width,
		Height: desc.Height,
		Format: desc.Format,
	})
	if err != nil || id == gpucore.InvalidID {
		return nil, newResourceError(ResourceTexture, err)
	}
	d.acquired()

	return &Texture{device: d, id: id, owned: true}, nil
}

// ID returns the backend handle, or InvalidID once destroyed.
func (t *Texture) ID() gpucore.TextureID {
	if t == nil || t.destroyed {
		return gpucore.InvalidID
	}
	return t.id
}

// Owned reports whether Destroy frees the backend object.
func (t *Texture) Owned() bool {
	return t.owned
}

// Format queries the pixel format from the backend.
func (t *Texture) Format() (gpucore.TextureFormat, error) {
	if t.IsDestroyed() {
		return gpucore.TextureFormatInvalid, ErrResourceDestroyed
	}
	return TextureFormatFromNative(t.device.adapter.TextureFormat(t.id))
}

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (width, height uint32) {
	if t.IsDestroyed() {
		return 0, 0
	}
	return t.device.adapter.TextureSize(t.id)
}

// AspectRatio returns width divided by height, or 1 for an empty texture.
func (t *Texture) AspectRatio() float32 {
	w, h := t.Size()
	if w == 0 || h == 0 {
		return 1
	}
	return float32(w) / float32(h)
}

// IsDestroyed returns true if the wrapper has been destroyed.
func (t *Texture) IsDestroyed() bool {
	return t == nil || t.destroyed
}

// Destroy releases the wrapper. Owned textures are freed on the backend;
// borrowed textures are left to their owner. Safe to call multiple times.
func (t *Texture) Destroy() {
	if t == nil || t.destroyed {
		return
	}
	t.destroyed = true
	if !t.owned {
		return
	}
	t.device.adapter.DestroyTexture(t.id)
	t.device.released()
}

func (t *Texture) handle(d *Device) (gpucore.TextureID, error) {
	if t.IsDestroyed() {
		return gpucore.InvalidID, fmt.Errorf("texture: %w", ErrResourceDestroyed)
	}
	if t.device != d {
		return gpucore.InvalidID, ErrForeignResource
	}
	return t.id, nil
}
