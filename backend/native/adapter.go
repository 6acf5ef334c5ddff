// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native implements the rhi backend surface over gogpu/wgpu/hal.
package native

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/gpucore"
	"github.com/gogpu/rhi/internal/cache"
	"github.com/gogpu/wgpu/hal"
)

// slogger returns the shared rhi logger.
func slogger() *slog.Logger { return rhi.Logger() }

// HALAdapter implements gpucore.Adapter using gogpu/wgpu/hal directly.
//
// Objects referenced by a submitted command buffer stay alive until the
// queue reports the submission complete, even if their IDs were destroyed
// earlier. Destroying an ID only removes it from the lookup tables.
//
// Thread Safety: HALAdapter is safe for concurrent use from multiple goroutines.
// All resource operations are protected by a mutex.
type HALAdapter struct {
	mu      sync.Mutex
	device  hal.Device
	queue   hal.Queue
	backend gpucore.BackendType
	spirv   bool

	// ID generation
	nextID atomic.Uint64

	queues    map[gpucore.CommandQueueID]struct{}
	commands  map[gpucore.CommandBufferID]*halCommandBuffer
	buffers   map[gpucore.BufferID]*halBuffer
	textures  map[gpucore.TextureID]*halTexture
	shaders   map[gpucore.ShaderStagesID]*halShaderStages
	inputs    map[gpucore.VertexInputStateID]*halVertexInput
	fbs       map[gpucore.FramebufferID]*halFramebuffer
	pipelines map[gpucore.RenderPipelineID]*halPipeline
	passes    map[gpucore.EncoderID]*halPass

	shaderCache *cache.Cache[shaderKey, hal.ShaderSource]

	// inflight holds destroyed command buffers whose submission has not
	// completed yet.
	inflight []*halCommandBuffer
}

// NewHALAdapter creates a new HALAdapter wrapping the given device and queue.
// The device and queue remain owned by the caller.
func NewHALAdapter(device hal.Device, queue hal.Queue, backend gputypes.Backend) (*HALAdapter, error) {
	if device == nil || queue == nil {
		return nil, ErrNoHALDevice
	}
	bt, err := backendFromHAL(backend)
	if err != nil {
		return nil, err
	}
	a := &HALAdapter{
		device:    device,
		queue:     queue,
		backend:   bt,
		queues:    make(map[gpucore.CommandQueueID]struct{}),
		commands:  make(map[gpucore.CommandBufferID]*halCommandBuffer),
		buffers:   make(map[gpucore.BufferID]*halBuffer),
		textures:  make(map[gpucore.TextureID]*halTexture),
		shaders:   make(map[gpucore.ShaderStagesID]*halShaderStages),
		inputs:    make(map[gpucore.VertexInputStateID]*halVertexInput),
		fbs:       make(map[gpucore.FramebufferID]*halFramebuffer),
		pipelines: make(map[gpucore.RenderPipelineID]*halPipeline),
		passes:    make(map[gpucore.EncoderID]*halPass),

		shaderCache: cache.New[shaderKey, hal.ShaderSource](shaderCacheSize),
	}

	// Start ID generation at 1 (0 is invalid)
	a.nextID.Store(1)
	return a, nil
}

// BackendType implements gpucore.Adapter.
func (a *HALAdapter) BackendType() gpucore.BackendType {
	return a.backend
}

// Device returns the underlying HAL device.
func (a *HALAdapter) Device() hal.Device {
	return a.device
}

// Queue returns the underlying HAL queue.
func (a *HALAdapter) Queue() hal.Queue {
	return a.queue
}

func (a *HALAdapter) newID() uint64 {
	return a.nextID.Add(1) - 1
}

// LiveHandles returns the number of IDs that have not been destroyed.
func (a *HALAdapter) LiveHandles() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queues) + len(a.commands) + len(a.buffers) + len(a.textures) +
		len(a.shaders) + len(a.inputs) + len(a.fbs) + len(a.pipelines) + len(a.passes)
}

// InFlight returns the number of destroyed command buffers still waiting
// for their submission to complete.
func (a *HALAdapter) InFlight() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.inflight)
}

// Collect releases every in-flight command buffer whose submission the
// queue reports complete.
func (a *HALAdapter) Collect() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.collectLocked()
}

func (a *HALAdapter) collectLocked() {
	if len(a.inflight) == 0 {
		return
	}
	done := a.queue.PollCompleted()
	keep := a.inflight[:0]
	for _, cb := range a.inflight {
		if cb.submission <= done {
			cb.release(a.device)
			continue
		}
		keep = append(keep, cb)
	}
	clear(a.inflight[len(keep):])
	a.inflight = keep
}

// Close waits for the device to go idle and releases all in-flight work.
// Live IDs are reported at warn level; they are leaks in the caller.
// The HAL device and queue are not destroyed.
func (a *HALAdapter) Close() error {
	if err := a.device.WaitIdle(); err != nil {
		return fmt.Errorf("native: wait idle: %w", err)
	}
	a.mu.Lock()
	for _, cb := range a.inflight {
		cb.release(a.device)
	}
	a.inflight = nil
	a.mu.Unlock()

	if n := a.LiveHandles(); n > 0 {
		slogger().Warn("native: adapter closed with live handles", "count", n)
	}
	return nil
}

// tracked counts in-flight references to a HAL object. The object is freed
// once it is both destroyed and unreferenced.
type tracked struct {
	refs int
	dead bool
}

func (t *tracked) hold() { t.refs++ }

// drop releases one reference and reports whether the object must be freed.
func (t *tracked) drop() bool {
	t.refs--
	return t.dead && t.refs == 0
}

// kill marks the object destroyed and reports whether it can be freed now.
func (t *tracked) kill() bool {
	t.dead = true
	return t.refs == 0
}

// heldResource is a HAL object a command buffer keeps alive.
type heldResource interface {
	hold()
	drop() bool
	free(device hal.Device)
}
