package rhi

import (
	"fmt"

	"github.com/gogpu/rhi/gpucore"
)

// Framebuffer binds a color and a depth texture as render targets.
//
// The framebuffer references its textures but does not own them. The color
// attachment is usually a per-frame drawable; swap it with UpdateDrawable
// instead of recreating the framebuffer. The depth attachment is rebound
// only when its handle changes, as after a resize.
type Framebuffer struct {
	device    *Device
	id        gpucore.FramebufferID
	color     *Texture
	depth     *Texture
	depthID   gpucore.TextureID
	destroyed bool
}

// CreateFramebuffer creates a framebuffer from a color and a depth texture.
// The color texture must have a color format and the depth texture a depth
// format.
func (d *Device) CreateFramebuffer(color, depth *Texture) (*Framebuffer, error) {
	colorID, err := attachmentHandle(d, color, false)
	if err != nil {
		return nil, newResourceError(ResourceFramebuffer, err)
	}
	depthID, err := attachmentHandle(d, depth, true)
	if err != nil {
		return nil, newResourceError(ResourceFramebuffer, err)
	}

	id, err := d.adapter.CreateFramebuffer(colorID, depthID)
	if err != nil || id == gpucore.InvalidID {
		return nil, newResourceError(ResourceFramebuffer, err)
	}
	d.acquired()

	Logger().Debug("rhi: framebuffer created", "color", colorID, "depth", depthID)
	return &Framebuffer{device: d, id: id, color: color, depth: depth, depthID: depthID}, nil
}

// UpdateDrawable replaces the color attachment with this frame's drawable.
// The depth attachment is left bound.
func (f *Framebuffer) UpdateDrawable(color *Texture) error {
	if f.IsDestroyed() {
		return ErrResourceDestroyed
	}
	colorID, err := attachmentHandle(f.device, color, false)
	if err != nil {
		return err
	}
	if err := f.device.adapter.UpdateFramebufferDrawable(f.id, colorID); err != nil {
		return err
	}
	f.color = color
	return nil
}

// UpdateDepth rebinds the depth attachment if depth refers to a different
// backend texture than the one bound. A wrapper around the same handle is
// adopted without a backend call.
func (f *Framebuffer) UpdateDepth(depth *Texture) error {
	if f.IsDestroyed() {
		return ErrResourceDestroyed
	}
	depthID, err := depth.handle(f.device)
	if err != nil {
		return err
	}
	if depthID != f.depthID {
		if _, err := attachmentHandle(f.device, depth, true); err != nil {
			return err
		}
		if err := f.device.adapter.UpdateFramebufferDepth(f.id, depthID); err != nil {
			return err
		}
		Logger().Debug("rhi: framebuffer depth rebound", "framebuffer", f.id, "depth", depthID)
		f.depthID = depthID
	}
	f.depth = depth
	return nil
}

// attachmentHandle returns the handle of t after checking that its format
// suits a color or depth attachment.
func attachmentHandle(d *Device, t *Texture, depth bool) (gpucore.TextureID, error) {
	id, err := t.handle(d)
	if err != nil {
		return gpucore.InvalidID, err
	}
	format, err := t.Format()
	if err != nil {
		return gpucore.InvalidID, err
	}
	if format.IsDepth() != depth {
		role := "color"
		if depth {
			role = "depth"
		}
		return gpucore.InvalidID, fmt.Errorf("%w: %v is not a %s format", ErrInvalidDescriptor, format, role)
	}
	return id, nil
}

// ColorAttachment returns the current color texture.
func (f *Framebuffer) ColorAttachment() *Texture {
	return f.color
}

// DepthAttachment returns the depth texture.
func (f *Framebuffer) DepthAttachment() *Texture {
	return f.depth
}

// ID returns the backend handle, or InvalidID once destroyed.
func (f *Framebuffer) ID() gpucore.FramebufferID {
	if f == nil || f.destroyed {
		return gpucore.InvalidID
	}
	return f.id
}

// IsDestroyed returns true if the framebuffer has been destroyed.
func (f *Framebuffer) IsDestroyed() bool {
	return f == nil || f.destroyed
}

// Destroy releases the framebuffer. Attached textures are not destroyed.
// Safe to call multiple times.
func (f *Framebuffer) Destroy() {
	if f == nil || f.destroyed {
		return
	}
	f.destroyed = true
	f.device.adapter.DestroyFramebuffer(f.id)
	f.device.released()
	f.color = nil
	f.depth = nil
}
