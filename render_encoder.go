// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rhi

import (
	"fmt"

	"github.com/gogpu/rhi/gpucore"
)

// EncoderState tracks whether the backend still expects an end signal.
type EncoderState int

const (
	// EncoderArmed means the encoder is recording and has not been ended.
	EncoderArmed EncoderState = iota

	// EncoderDisarmed means the end signal has been sent.
	EncoderDisarmed
)

// String returns the string representation of EncoderState.
func (s EncoderState) String() string {
	switch s {
	case EncoderArmed:
		return "Armed"
	case EncoderDisarmed:
		return "Disarmed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// RenderCommandEncoder records binds and draws for one render pass.
//
// State machine:
//
//	Armed    -> EndEncoding() -> Disarmed
//	Armed    -> Close()       -> Disarmed
//	Disarmed -> EndEncoding() -> Disarmed (no backend call)
//	Disarmed -> Close()       -> Disarmed (no backend call)
//
// The backend receives exactly one end signal per encoder. Callers should
// defer Close right after creation so that error paths end the pass too.
//
// RenderCommandEncoder is NOT safe for concurrent use.
type RenderCommandEncoder struct {
	cmd   *CommandBuffer
	id    gpucore.EncoderID
	state EncoderState

	pipeline    *RenderPipelineState
	indexBuffer *Buffer
	draws       int
}

// State returns the encoder state.
// Returns EncoderDisarmed if the encoder is nil.
func (e *RenderCommandEncoder) State() EncoderState {
	if e == nil {
		return EncoderDisarmed
	}
	return e.state
}

// Draws returns the number of draw calls recorded.
func (e *RenderCommandEncoder) Draws() int {
	return e.draws
}

// BindVertexBuffer binds a vertex buffer at the given buffer index.
func (e *RenderCommandEncoder) BindVertexBuffer(buf *Buffer, index uint32) error {
	id, err := e.bufferHandle(buf)
	if err != nil {
		return err
	}
	e.adapter().BindVertexBuffer(e.id, id, index)
	return nil
}

// BindIndexBuffer binds the index buffer used by DrawIndexed.
func (e *RenderCommandEncoder) BindIndexBuffer(buf *Buffer, format gpucore.IndexFormat) error {
	id, err := e.bufferHandle(buf)
	if err != nil {
		return err
	}
	e.adapter().BindIndexBuffer(e.id, id, format)
	e.indexBuffer = buf
	return nil
}

// BindPipeline binds a render pipeline.
func (e *RenderCommandEncoder) BindPipeline(p *RenderPipelineState) error {
	if err := e.checkArmed(); err != nil {
		return err
	}
	if p.IsDestroyed() {
		return fmt.Errorf("bind pipeline: %w", ErrResourceDestroyed)
	}
	if p.device != e.cmd.queue.device {
		return ErrForeignResource
	}
	e.adapter().BindRenderPipeline(e.id, p.id)
	e.pipeline = p
	return nil
}

// BindUniformBuffer binds a uniform buffer at the given slot.
func (e *RenderCommandEncoder) BindUniformBuffer(buf *Buffer, slot uint32) error {
	id, err := e.bufferHandle(buf)
	if err != nil {
		return err
	}
	e.adapter().BindUniformBuffer(e.id, id, slot)
	return nil
}

// DrawIndexed draws indexCount indices from the bound index buffer.
func (e *RenderCommandEncoder) DrawIndexed(indexCount uint32) error {
	if err := e.checkArmed(); err != nil {
		return err
	}
	if e.pipeline.IsDestroyed() {
		return ErrNoPipeline
	}
	if e.indexBuffer.IsDestroyed() {
		return ErrNoIndexBuffer
	}
	e.adapter().DrawIndexed(e.id, indexCount)
	e.draws++
	return nil
}

// EndEncoding ends the render pass. It is terminal: the first call signals
// the backend and disarms the encoder; later calls do nothing.
func (e *RenderCommandEncoder) EndEncoding() {
	if e == nil || e.state == EncoderDisarmed {
		return
	}
	e.state = EncoderDisarmed
	e.adapter().EndEncoding(e.id)
	if e.cmd.active == e {
		e.cmd.active = nil
	}
	e.pipeline = nil
	e.indexBuffer = nil
}

// Close ends the encoder if it is still armed. It is meant for defer.
func (e *RenderCommandEncoder) Close() {
	if e.State() == EncoderArmed {
		Logger().Debug("rhi: render encoder closed without EndEncoding")
	}
	e.EndEncoding()
}

func (e *RenderCommandEncoder) adapter() gpucore.Adapter {
	return e.cmd.queue.device.adapter
}

func (e *RenderCommandEncoder) checkArmed() error {
	if e.State() != EncoderArmed {
		return ErrEncoderEnded
	}
	return nil
}

func (e *RenderCommandEncoder) bufferHandle(buf *Buffer) (gpucore.BufferID, error) {
	if err := e.checkArmed(); err != nil {
		return gpucore.InvalidID, err
	}
	return buf.handle(e.cmd.queue.device)
}
