package rhi

import (
	"errors"
	"fmt"

	"github.com/gogpu/rhi/gpucore"
)

// CommandQueue is an ordered submission channel to the backend.
//
// Command buffers submitted to one queue execute in submission order.
// A queue is created once per session and destroyed at teardown.
type CommandQueue struct {
	device    *Device
	id        gpucore.CommandQueueID
	submitted uint64
	destroyed bool
}

// CreateCommandQueue creates a command queue.
func (d *Device) CreateCommandQueue() (*CommandQueue, error) {
	id, err := d.adapter.CreateCommandQueue()
	if err != nil || id == gpucore.InvalidID {
		return nil, newResourceError(ResourceCommandQueue, err)
	}
	d.acquired()
	return &CommandQueue{device: d, id: id}, nil
}

// CreateCommandBuffer begins a new command buffer in the Recording state.
func (q *CommandQueue) CreateCommandBuffer() (*CommandBuffer, error) {
	if q.IsDestroyed() {
		return nil, newResourceError(ResourceCommandBuffer, ErrResourceDestroyed)
	}
	id, err := q.device.adapter.CreateCommandBuffer(q.id)
	if err != nil || id == gpucore.InvalidID {
		return nil, newResourceError(ResourceCommandBuffer, err)
	}
	q.device.acquired()
	return &CommandBuffer{queue: q, id: id}, nil
}

// Submit hands a recorded command buffer to the backend. A command buffer is
// submitted at most once, and only after its encoders have ended. If the
// backend queued the work but could not present, Submit returns an error
// matching ErrPresentFailed and the buffer is still Submitted.
func (q *CommandQueue) Submit(cb *CommandBuffer) error {
	if q.IsDestroyed() {
		return ErrResourceDestroyed
	}
	if cb.IsDestroyed() {
		return fmt.Errorf("submit: %w", ErrResourceDestroyed)
	}
	if cb.queue != q {
		return ErrForeignResource
	}
	if cb.state == CommandBufferSubmitted {
		return ErrAlreadySubmitted
	}
	if cb.active != nil {
		return ErrEncoderActive
	}

	err := q.device.adapter.Submit(q.id, cb.id)
	if err != nil && !errors.Is(err, ErrPresentFailed) {
		return fmt.Errorf("submit: %w", err)
	}
	// The backend has the work; a present failure does not undo that.
	cb.state = CommandBufferSubmitted
	q.submitted++
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return nil
}

// Submitted returns the number of command buffers submitted so far.
func (q *CommandQueue) Submitted() uint64 {
	return q.submitted
}

// ID returns the backend handle, or InvalidID once destroyed.
func (q *CommandQueue) ID() gpucore.CommandQueueID {
	if q == nil || q.destroyed {
		return gpucore.InvalidID
	}
	return q.id
}

// IsDestroyed returns true if the queue has been destroyed.
func (q *CommandQueue) IsDestroyed() bool {
	return q == nil || q.destroyed
}

// Destroy releases the queue. Safe to call multiple times.
func (q *CommandQueue) Destroy() {
	if q == nil || q.destroyed {
		return
	}
	q.destroyed = true
	q.device.adapter.DestroyCommandQueue(q.id)
	q.device.released()
}
