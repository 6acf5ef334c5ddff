// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rhi

import (
	"fmt"

	"github.com/gogpu/rhi/gpucore"
)

// CommandBufferState represents the lifecycle state of a command buffer.
type CommandBufferState int

const (
	// CommandBufferRecording means commands may still be recorded.
	CommandBufferRecording CommandBufferState = iota

	// CommandBufferSubmitted means the buffer has been handed to the queue.
	CommandBufferSubmitted
)

// String returns the string representation of CommandBufferState.
func (s CommandBufferState) String() string {
	switch s {
	case CommandBufferRecording:
		return "Recording"
	case CommandBufferSubmitted:
		return "Submitted"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// ColorAttachment configures the color target of a render pass.
type ColorAttachment struct {
	LoadAction  gpucore.LoadAction
	StoreAction gpucore.StoreAction
	ClearColor  Color
}

// DefaultColorAttachment clears to black and stores the result.
func DefaultColorAttachment() ColorAttachment {
	return ColorAttachment{
		LoadAction:  gpucore.LoadActionClear,
		StoreAction: gpucore.StoreActionStore,
		ClearColor:  Black,
	}
}

// DepthAttachment configures the depth target of a render pass.
type DepthAttachment struct {
	LoadAction gpucore.LoadAction
	ClearDepth float32
}

// DefaultDepthAttachment clears depth to 1.0.
func DefaultDepthAttachment() DepthAttachment {
	return DepthAttachment{
		LoadAction: gpucore.LoadActionClear,
		ClearDepth: 1.0,
	}
}

// RenderPassDesc configures the attachments of a render encoder.
type RenderPassDesc struct {
	Color ColorAttachment
	Depth DepthAttachment
}

// CommandBuffer holds one frame's recorded commands.
//
// A command buffer is created from a CommandQueue, records through at most
// one active RenderCommandEncoder at a time, and is submitted once. It is
// not reused; Destroy it after submission.
type CommandBuffer struct {
	queue     *CommandQueue
	id        gpucore.CommandBufferID
	state     CommandBufferState
	active    *RenderCommandEncoder
	presented *Texture
	destroyed bool
}

// CreateRenderEncoder begins a render pass into fb. The returned encoder is
// armed and must be ended with EndEncoding or Close.
func (c *CommandBuffer) CreateRenderEncoder(fb *Framebuffer, desc RenderPassDesc) (*RenderCommandEncoder, error) {
	if err := c.checkRecording(); err != nil {
		return nil, newResourceError(ResourceRenderEncoder, err)
	}
	if c.active != nil {
		return nil, newResourceError(ResourceRenderEncoder, ErrEncoderActive)
	}
	if fb.IsDestroyed() {
		return nil, newResourceError(ResourceRenderEncoder, ErrResourceDestroyed)
	}
	if fb.device != c.queue.device {
		return nil, newResourceError(ResourceRenderEncoder, ErrForeignResource)
	}

	id, err := c.queue.device.adapter.BeginRenderPass(c.id, fb.id, &gpucore.RenderPassDesc{
		Color: gpucore.ColorAttachmentDesc{
			LoadAction:  desc.Color.LoadAction,
			StoreAction: desc.Color.StoreAction,
			ClearColor:  desc.Color.ClearColor.native(),
		},
		Depth: gpucore.DepthAttachmentDesc{
			LoadAction: desc.Depth.LoadAction,
			ClearDepth: desc.Depth.ClearDepth,
		},
	})
	if err != nil || id == gpucore.InvalidID {
		return nil, newResourceError(ResourceRenderEncoder, err)
	}

	enc := &RenderCommandEncoder{cmd: c, id: id, state: EncoderArmed}
	c.active = enc
	return enc, nil
}

// Present schedules presentation of a drawable color texture after the
// command buffer executes.
func (c *CommandBuffer) Present(texture *Texture) error {
	if err := c.checkRecording(); err != nil {
		return err
	}
	id, err := texture.handle(c.queue.device)
	if err != nil {
		return err
	}
	if err := c.queue.device.adapter.PresentTexture(c.id, id); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	c.presented = texture
	return nil
}

// Presented returns the texture scheduled for presentation, if any.
func (c *CommandBuffer) Presented() *Texture {
	return c.presented
}

// State returns the lifecycle state.
func (c *CommandBuffer) State() CommandBufferState {
	return c.state
}

// ID returns the backend handle, or InvalidID once destroyed.
func (c *CommandBuffer) ID() gpucore.CommandBufferID {
	if c == nil || c.destroyed {
		return gpucore.InvalidID
	}
	return c.id
}

// IsDestroyed returns true if the command buffer has been destroyed.
func (c *CommandBuffer) IsDestroyed() bool {
	return c == nil || c.destroyed
}

// Destroy releases the command buffer. An encoder still armed is ended
// first. Safe to call multiple times.
func (c *CommandBuffer) Destroy() {
	if c == nil || c.destroyed {
		return
	}
	if c.active != nil {
		c.active.Close()
	}
	c.destroyed = true
	c.queue.device.adapter.DestroyCommandBuffer(c.id)
	c.queue.device.released()
	c.presented = nil
}

// checkRecording returns an error unless commands may be recorded.
func (c *CommandBuffer) checkRecording() error {
	if c.IsDestroyed() {
		return ErrResourceDestroyed
	}
	if c.state != CommandBufferRecording {
		return ErrAlreadySubmitted
	}
	return nil
}
