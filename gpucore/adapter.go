// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import "errors"

// ErrPresentFailed is wrapped by Submit errors raised after the command
// buffer was queued. The command buffer counts as submitted.
var ErrPresentFailed = errors.New("gpucore: present failed after submit")

// Adapter is the native backend surface. Implementations translate each call
// to a specific GPU API.
//
// Create calls return InvalidID with a nil error when the backend produced a
// null handle; callers must treat both outcomes as a failed creation. Destroy
// calls with an ID the adapter does not know are ignored.
//
// An Adapter is used from a single goroutine at a time.
type Adapter interface {
	// BackendType reports the native graphics API.
	BackendType() BackendType

	// === Command Submission ===

	CreateCommandQueue() (CommandQueueID, error)
	DestroyCommandQueue(id CommandQueueID)

	// CreateCommandBuffer begins a new command buffer on the queue.
	CreateCommandBuffer(queue CommandQueueID) (CommandBufferID, error)
	DestroyCommandBuffer(id CommandBufferID)

	// PresentTexture schedules presentation of a drawable texture once the
	// command buffer completes.
	PresentTexture(cmd CommandBufferID, texture TextureID) error

	// Submit hands a command buffer to the queue for execution. Submission
	// order on one queue is FIFO. An error matching ErrPresentFailed means
	// the work was queued and only presentation failed; any other error
	// means the queue did not take the command buffer.
	Submit(queue CommandQueueID, cmd CommandBufferID) error

	// === Resources ===

	CreateBuffer(desc *BufferDesc) (BufferID, error)
	DestroyBuffer(id BufferID)

	CreateTexture(desc *TextureDesc) (TextureID, error)
	DestroyTexture(id TextureID)

	// TextureFormat returns the raw numeric pixel format of a texture.
	TextureFormat(id TextureID) uint32

	// TextureSize returns the texture dimensions in pixels.
	TextureSize(id TextureID) (width, height uint32)

	CreateShaderStages(desc *ShaderStagesDesc) (ShaderStagesID, error)
	DestroyShaderStages(id ShaderStagesID)

	CreateVertexInputState(desc *VertexInputStateDesc) (VertexInputStateID, error)
	DestroyVertexInputState(id VertexInputStateID)

	CreateFramebuffer(color, depth TextureID) (FramebufferID, error)
	DestroyFramebuffer(id FramebufferID)

	// UpdateFramebufferDrawable replaces the color attachment.
	UpdateFramebufferDrawable(fb FramebufferID, color TextureID) error

	// UpdateFramebufferDepth replaces the depth attachment.
	UpdateFramebufferDepth(fb FramebufferID, depth TextureID) error

	CreateRenderPipeline(desc *RenderPipelineDesc) (RenderPipelineID, error)
	DestroyRenderPipeline(id RenderPipelineID)

	// === Render Encoding ===

	// BeginRenderPass opens an encoder recording into the command buffer.
	BeginRenderPass(cmd CommandBufferID, fb FramebufferID, desc *RenderPassDesc) (EncoderID, error)

	// EndEncoding closes the encoder. It must be called exactly once per
	// encoder.
	EndEncoding(enc EncoderID)

	BindVertexBuffer(enc EncoderID, buffer BufferID, index uint32)
	BindIndexBuffer(enc EncoderID, buffer BufferID, format IndexFormat)
	BindRenderPipeline(enc EncoderID, pipeline RenderPipelineID)
	BindUniformBuffer(enc EncoderID, buffer BufferID, slot uint32)
	DrawIndexed(enc EncoderID, indexCount uint32)
}
