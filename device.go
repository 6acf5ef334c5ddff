// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rhi

import (
	"github.com/gogpu/rhi/gpucore"
)

// Device is the factory and capability surface for every resource in rhi.
//
// A Device is a non-owning reference to the backend's device object: it is
// borrowed from the platform and never destroyed by rhi. Every wrapper it
// creates must be destroyed before the platform releases the backend device.
// This is a documented contract; rhi cannot enforce it against the backend.
//
// Device is not safe for concurrent use.
type Device struct {
	adapter gpucore.Adapter
	backend gpucore.BackendType
	label   string

	// live counts handles currently owned by wrappers from this device.
	live int
}

// NewDevice wraps a backend adapter. The adapter remains owned by the caller.
func NewDevice(adapter gpucore.Adapter, opts ...DeviceOption) (*Device, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}
	backend := adapter.BackendType()
	switch backend {
	case gpucore.BackendOpenGL, gpucore.BackendMetal, gpucore.BackendVulkan:
	default:
		return nil, ErrInvalidBackend
	}

	o := defaultDeviceOptions()
	for _, opt := range opts {
		opt(&o)
	}

	Logger().Info("rhi: device ready", "backend", backend, "label", o.label)
	return &Device{
		adapter: adapter,
		backend: backend,
		label:   o.label,
	}, nil
}

// BackendType returns the native graphics API of the device.
func (d *Device) BackendType() gpucore.BackendType {
	return d.backend
}

// Adapter returns the backend adapter the device forwards to.
func (d *Device) Adapter() gpucore.Adapter {
	return d.adapter
}

// Label returns the device label.
func (d *Device) Label() string {
	return d.label
}

// LiveResources returns the number of owned handles created by this device
// that have not been destroyed. Borrowed textures are not counted.
func (d *Device) LiveResources() int {
	return d.live
}

// debugLabel joins the device label and a resource name for backend debug names.
func (d *Device) debugLabel(name string) string {
	if name == "" {
		return d.label
	}
	return d.label + ":" + name
}

func (d *Device) acquired() { d.live++ }

func (d *Device) released() { d.live-- }
