package rhi

import (
	"fmt"

	"github.com/gogpu/rhi/gpucore"
)

// ShaderStagesDesc describes a vertex+fragment program.
type ShaderStagesDesc struct {
	Label         string
	Source        string
	VertexEntry   string
	FragmentEntry string
}

// ShaderStages is a compiled vertex+fragment program pair. It is immutable
// after creation.
type ShaderStages struct {
	device        *Device
	id            gpucore.ShaderStagesID
	vertexEntry   string
	fragmentEntry string
	destroyed     bool
}

// CreateShaderStages compiles desc.Source into a program with the two named
// entry points.
func (d *Device) CreateShaderStages(desc ShaderStagesDesc) (*ShaderStages, error) {
	switch {
	case desc.Source == "":
		return nil, newResourceError(ResourceShaderStages, fmt.Errorf("%w: empty shader source", ErrInvalidDescriptor))
	case desc.VertexEntry == "" || desc.FragmentEntry == "":
		return nil, newResourceError(ResourceShaderStages, fmt.Errorf("%w: missing entry point", ErrInvalidDescriptor))
	}

	id, err := d.adapter.CreateShaderStages(&gpucore.ShaderStagesDesc{
		Label:         d.debugLabel(desc.Label),
		Source:        desc.Source,
		VertexEntry:   desc.VertexEntry,
		FragmentEntry: desc.FragmentEntry,
	})
	if err != nil || id == gpucore.InvalidID {
		return nil, newResourceError(ResourceShaderStages, err)
	}
	d.acquired()

	return &ShaderStages{
		device:        d,
		id:            id,
		vertexEntry:   desc.VertexEntry,
		fragmentEntry: desc.FragmentEntry,
	}, nil
}

// ID returns the backend handle, or InvalidID once destroyed.
func (s *ShaderStages) ID() gpucore.ShaderStagesID {
	if s == nil || s.destroyed {
		return gpucore.InvalidID
	}
	return s.id
}

// EntryPoints returns the vertex and fragment entry point names.
func (s *ShaderStages) EntryPoints() (vertex, fragment string) {
	return s.vertexEntry, s.fragmentEntry
}

// IsDestroyed returns true if the program has been destroyed.
func (s *ShaderStages) IsDestroyed() bool {
	return s == nil || s.destroyed
}

// Destroy releases the program. Safe to call multiple times.
func (s *ShaderStages) Destroy() {
	if s == nil || s.destroyed {
		return
	}
	s.destroyed = true
	s.device.adapter.DestroyShaderStages(s.id)
	s.device.released()
}
