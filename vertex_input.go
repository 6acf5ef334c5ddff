package rhi

import (
	"fmt"
	"strings"

	"github.com/gogpu/rhi/gpucore"
)

// VertexAttribute describes one attribute of a vertex layout.
type VertexAttribute struct {
	BufferIndex uint32
	Format      gpucore.VertexFormat
	Offset      uint32
	Name        string
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

// VertexInputState is an immutable vertex buffer layout.
//
// Attribute names are handed to the backend as NUL-terminated byte slices.
// The backend may keep pointing at them, so the state holds every slice for
// as long as the handle lives.
type VertexInputState struct {
	device    *Device
	id        gpucore.VertexInputStateID
	names     [][]byte
	bindings  int
	destroyed bool
}

// CreateVertexInputState creates a vertex layout. Every attribute must refer
// to a declared binding, and names must not contain NUL bytes.
func (d *Device) CreateVertexInputState(desc VertexInputStateDesc) (*VertexInputState, error) {
	if len(desc.Attributes) == 0 || len(desc.Bindings) == 0 {
		return nil, newResourceError(ResourceVertexInputState,
			fmt.Errorf("%w: vertex layout needs attributes and bindings", ErrInvalidDescriptor))
	}

	names := make([][]byte, len(desc.Attributes))
	attrs := make([]gpucore.VertexAttribute, len(desc.Attributes))
	for i, a := range desc.Attributes {
		if strings.IndexByte(a.Name, 0) >= 0 {
			return nil, newResourceError(ResourceVertexInputState,
				fmt.Errorf("%w: attribute %d name contains NUL", ErrInvalidDescriptor, i))
		}
		if int(a.BufferIndex) >= len(desc.Bindings) {
			return nil, newResourceError(ResourceVertexInputState,
				fmt.Errorf("%w: attribute %q uses buffer %d of %d", ErrInvalidDescriptor, a.Name, a.BufferIndex, len(desc.Bindings)))
		}
		if a.Format.Size() == 0 {
			return nil, newResourceError(ResourceVertexInputState,
				fmt.Errorf("%w: attribute %q format %d", ErrInvalidDescriptor, a.Name, a.Format))
		}
		names[i] = append([]byte(a.Name), 0)
		attrs[i] = gpucore.VertexAttribute{
			BufferIndex: a.BufferIndex,
			Format:      a.Format,
			Offset:      a.Offset,
			Name:        names[i],
			Location:    a.Location,
		}
	}
	bindings := make([]gpucore.VertexBinding, len(desc.Bindings))
	for i, b := range desc.Bindings {
		bindings[i] = gpucore.VertexBinding{Stride: b.Stride}
	}

	id, err := d.adapter.CreateVertexInputState(&gpucore.VertexInputStateDesc{
		Attributes: attrs,
		Bindings:   bindings,
	})
	if err != nil || id == gpucore.InvalidID {
		return nil, newResourceError(ResourceVertexInputState, err)
	}
	d.acquired()

	return &VertexInputState{
		device:   d,
		id:       id,
		names:    names,
		bindings: len(bindings),
	}, nil
}

// ID returns the backend handle, or InvalidID once destroyed.
func (v *VertexInputState) ID() gpucore.VertexInputStateID {
	if v == nil || v.destroyed {
		return gpucore.InvalidID
	}
	return v.id
}

// Names returns the attribute names in declaration order.
func (v *VertexInputState) Names() []string {
	out := make([]string, len(v.names))
	for i, n := range v.names {
		out[i] = string(n[:len(n)-1])
	}
	return out
}

// IsDestroyed returns true if the state has been destroyed.
func (v *VertexInputState) IsDestroyed() bool {
	return v == nil || v.destroyed
}

// Destroy releases the state and its retained names. Safe to call multiple times.
func (v *VertexInputState) Destroy() {
	if v == nil || v.destroyed {
		return
	}
	v.destroyed = true
	v.device.adapter.DestroyVertexInputState(v.id)
	v.device.released()
	v.names = nil
}
