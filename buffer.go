package rhi

import (
	"fmt"

	"github.com/gogpu/rhi/gpucore"
)

// BufferDesc describes a buffer created from a byte payload.
type BufferDesc struct {
	// Label is an optional debug name.
	Label string

	// Type selects vertex, index or uniform usage.
	Type gpucore.BufferType

	// Data is copied into the buffer at creation. It must not be empty.
	Data []byte
}

// Buffer is a GPU memory region holding vertex, index or uniform data.
//
// Lifecycle:
//  1. Create via Device.CreateBuffer
//  2. Bind to a RenderCommandEncoder
//  3. Destroy once the command buffer referencing it has been submitted
//
// Destroy is idempotent. Uniform buffers are cheap to create and are
// typically made per draw and destroyed after submission.
type Buffer struct {
	device    *Device
	id        gpucore.BufferID
	typ       gpucore.BufferType
	length    int
	label     string
	destroyed bool
}

// CreateBuffer creates a buffer initialized with desc.Data.
func (d *Device) CreateBuffer(desc BufferDesc) (*Buffer, error) {
	if len(desc.Data) == 0 {
		return nil, newResourceError(ResourceBuffer, fmt.Errorf("%w: empty buffer data", ErrInvalidDescriptor))
	}
	switch desc.Type {
	case gpucore.BufferTypeVertex, gpucore.BufferTypeIndex, gpucore.BufferTypeUniform:
	default:
		return nil, newResourceError(ResourceBuffer, fmt.Errorf("%w: buffer type %v", ErrInvalidDescriptor, desc.Type))
	}

	label := d.debugLabel(desc.Label)
	id, err := d.adapter.CreateBuffer(&gpucore.BufferDesc{
		Label: label,
		Type:  desc.Type,
		Data:  desc.Data,
	})
	if err != nil || id == gpucore.InvalidID {
		return nil, newResourceError(ResourceBuffer, err)
	}
	d.acquired()

	return &Buffer{
		device: d,
		id:     id,
		typ:    desc.Type,
		length: len(desc.Data),
		label:  label,
	}, nil
}

// ID returns the backend handle, or InvalidID once destroyed.
func (b *Buffer) ID() gpucore.BufferID {
	if b == nil || b.destroyed {
		return gpucore.InvalidID
	}
	return b.id
}

// Type returns the buffer usage.
func (b *Buffer) Type() gpucore.BufferType {
	return b.typ
}

// Length returns the buffer size in bytes.
func (b *Buffer) Length() int {
	return b.length
}

// Label returns the backend debug name.
func (b *Buffer) Label() string {
	return b.label
}

// IsDestroyed returns true if the buffer has been destroyed.
func (b *Buffer) IsDestroyed() bool {
	return b == nil || b.destroyed
}

// Destroy releases the buffer. Safe to call multiple times.
func (b *Buffer) Destroy() {
	if b == nil || b.destroyed {
		return
	}
	b.destroyed = true
	b.device.adapter.DestroyBuffer(b.id)
	b.device.released()
}

// handle returns the live backend handle for use by d.
func (b *Buffer) handle(d *Device) (gpucore.BufferID, error) {
	if b.IsDestroyed() {
		return gpucore.InvalidID, fmt.Errorf("buffer %q: %w", b.labelOrEmpty(), ErrResourceDestroyed)
	}
	if b.device != d {
		return gpucore.InvalidID, ErrForeignResource
	}
	return b.id, nil
}

func (b *Buffer) labelOrEmpty() string {
	if b == nil {
		return ""
	}
	return b.label
}
