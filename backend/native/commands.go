package native

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi/gpucore"
	"github.com/gogpu/wgpu/hal"
)

// halCommandBuffer is one HAL command encoder in the recording state, plus
// everything its commands reference.
type halCommandBuffer struct {
	encoder  hal.CommandEncoder
	recorded hal.CommandBuffer
	pass     *halPass

	groups   []hal.BindGroup
	held     []heldResource
	presents []*halTexture

	ended      bool
	submitted  bool
	submission uint64
}

func (cb *halCommandBuffer) hold(r heldResource) {
	r.hold()
	cb.held = append(cb.held, r)
}

// release frees the encoder, its transient bind groups and every reference
// it holds. The GPU must be done with the command buffer.
func (cb *halCommandBuffer) release(device hal.Device) {
	for _, g := range cb.groups {
		device.DestroyBindGroup(g)
	}
	cb.groups = nil
	if cb.recorded != nil {
		device.FreeCommandBuffer(cb.recorded)
		cb.recorded = nil
	}
	cb.encoder.Destroy()
	for _, r := range cb.held {
		if r.drop() {
			r.free(device)
		}
	}
	cb.held = nil
	cb.presents = nil
}

// halPass is an open render pass. Uniform bindings are collected and turned
// into a bind group at draw time, once the pipeline layout is known.
type halPass struct {
	id       gpucore.EncoderID
	cmd      *halCommandBuffer
	raw      hal.RenderPassEncoder
	pipeline *halPipeline
	uniforms map[uint32]*halBuffer
	dirty    bool
}

// CreateCommandQueue implements gpucore.Adapter. All queues share the
// device's single HAL queue; submission order across them is call order.
func (a *HALAdapter) CreateCommandQueue() (gpucore.CommandQueueID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := gpucore.CommandQueueID(a.newID())
	a.queues[id] = struct{}{}
	return id, nil
}

// DestroyCommandQueue implements gpucore.Adapter.
func (a *HALAdapter) DestroyCommandQueue(id gpucore.CommandQueueID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.queues, id)
	a.collectLocked()
}

// CreateCommandBuffer implements gpucore.Adapter.
func (a *HALAdapter) CreateCommandBuffer(queue gpucore.CommandQueueID) (gpucore.CommandBufferID, error) {
	a.mu.Lock()
	_, ok := a.queues[queue]
	a.mu.Unlock()
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: command queue %d", ErrUnknownHandle, queue)
	}

	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "rhi_frame"})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create command encoder: %w", err)
	}
	if encoder == nil {
		return gpucore.InvalidID, nil
	}
	if err := encoder.BeginEncoding("rhi_frame"); err != nil {
		encoder.Destroy()
		return gpucore.InvalidID, fmt.Errorf("begin encoding: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	id := gpucore.CommandBufferID(a.newID())
	a.commands[id] = &halCommandBuffer{encoder: encoder}
	return id, nil
}

// DestroyCommandBuffer implements gpucore.Adapter. A submitted command
// buffer is released once its submission completes.
func (a *HALAdapter) DestroyCommandBuffer(id gpucore.CommandBufferID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	cb, ok := a.commands[id]
	if !ok {
		return
	}
	delete(a.commands, id)
	if cb.pass != nil {
		a.endPassLocked(cb.pass)
	}
	switch {
	case !cb.submitted:
		if !cb.ended {
			cb.encoder.DiscardEncoding()
			cb.ended = true
		}
		cb.release(a.device)
	case cb.submission <= a.queue.PollCompleted():
		cb.release(a.device)
	default:
		a.inflight = append(a.inflight, cb)
	}
}

// PresentTexture implements gpucore.Adapter. Surface drawables are presented
// right after the command buffer is submitted; offscreen drawables are only
// marked presented.
func (a *HALAdapter) PresentTexture(cmd gpucore.CommandBufferID, texture gpucore.TextureID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	cb, ok := a.commands[cmd]
	if !ok {
		return fmt.Errorf("%w: command buffer %d", ErrUnknownHandle, cmd)
	}
	t, ok := a.textures[texture]
	if !ok {
		return fmt.Errorf("%w: texture %d", ErrUnknownHandle, texture)
	}
	cb.hold(t)
	cb.presents = append(cb.presents, t)
	return nil
}

// Submit implements gpucore.Adapter.
func (a *HALAdapter) Submit(queue gpucore.CommandQueueID, cmd gpucore.CommandBufferID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.queues[queue]; !ok {
		return fmt.Errorf("%w: command queue %d", ErrUnknownHandle, queue)
	}
	cb, ok := a.commands[cmd]
	if !ok {
		return fmt.Errorf("%w: command buffer %d", ErrUnknownHandle, cmd)
	}
	if cb.pass != nil {
		return ErrPassOpen
	}
	if cb.ended {
		return fmt.Errorf("native: command buffer %d already ended", cmd)
	}

	recorded, err := cb.encoder.EndEncoding()
	cb.ended = true
	if err != nil {
		cb.encoder.DiscardEncoding()
		return fmt.Errorf("end encoding: %w", err)
	}
	cb.recorded = recorded

	idx, err := a.queue.Submit([]hal.CommandBuffer{recorded})
	if err != nil {
		return fmt.Errorf("queue submit: %w", err)
	}
	cb.submitted = true
	cb.submission = idx

	var presentErrs []error
	for _, t := range cb.presents {
		t.presented = true
		if t.surface == nil {
			continue
		}
		st, ok := t.raw.(hal.SurfaceTexture)
		if !ok {
			continue
		}
		if err := a.queue.Present(t.surface, st, nil); err != nil {
			presentErrs = append(presentErrs, err)
		}
	}
	a.collectLocked()
	if len(presentErrs) > 0 {
		return fmt.Errorf("%w: %w", gpucore.ErrPresentFailed, errors.Join(presentErrs...))
	}
	return nil
}

// BeginRenderPass implements gpucore.Adapter. The viewport covers the color
// attachment.
func (a *HALAdapter) BeginRenderPass(cmd gpucore.CommandBufferID, fb gpucore.FramebufferID, desc *gpucore.RenderPassDesc) (gpucore.EncoderID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	cb, ok := a.commands[cmd]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: command buffer %d", ErrUnknownHandle, cmd)
	}
	if cb.ended {
		return gpucore.InvalidID, fmt.Errorf("native: command buffer %d already ended", cmd)
	}
	if cb.pass != nil {
		return gpucore.InvalidID, ErrPassOpen
	}
	f, ok := a.fbs[fb]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: framebuffer %d", ErrUnknownHandle, fb)
	}
	color, okColor := a.textures[f.color]
	depth, okDepth := a.textures[f.depth]
	if !okColor || !okDepth {
		return gpucore.InvalidID, fmt.Errorf("%w: framebuffer %d attachment", ErrUnknownHandle, fb)
	}

	depthAttachment := &hal.RenderPassDepthStencilAttachment{
		View:            depth.view,
		DepthLoadOp:     loadOpToHAL(desc.Depth.LoadAction),
		DepthStoreOp:    gputypes.StoreOpStore,
		DepthClearValue: desc.Depth.ClearDepth,
	}
	if hasStencil(depth.native) {
		depthAttachment.StencilLoadOp = gputypes.LoadOpClear
		depthAttachment.StencilStoreOp = gputypes.StoreOpDiscard
	}
	raw := cb.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "rhi_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       color.view,
			LoadOp:     loadOpToHAL(desc.Color.LoadAction),
			StoreOp:    storeOpToHAL(desc.Color.StoreAction),
			ClearValue: colorToHAL(desc.Color.ClearColor),
		}},
		DepthStencilAttachment: depthAttachment,
	})
	if raw == nil {
		return gpucore.InvalidID, nil
	}
	raw.SetViewport(0, 0, float32(color.width), float32(color.height), 0, 1)
	cb.hold(color)
	cb.hold(depth)

	p := &halPass{
		id:       gpucore.EncoderID(a.newID()),
		cmd:      cb,
		raw:      raw,
		uniforms: make(map[uint32]*halBuffer),
	}
	cb.pass = p
	a.passes[p.id] = p
	return p.id, nil
}

func hasStencil(f gpucore.TextureFormat) bool {
	return f == gpucore.TextureFormatDepth24PlusStencil8 || f == gpucore.TextureFormatDepth32FloatStencil8
}

// EndEncoding implements gpucore.Adapter.
func (a *HALAdapter) EndEncoding(enc gpucore.EncoderID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p, ok := a.passes[enc]; ok {
		a.endPassLocked(p)
	}
}

func (a *HALAdapter) endPassLocked(p *halPass) {
	p.raw.End()
	delete(a.passes, p.id)
	p.cmd.pass = nil
}

// passBuffer returns the open pass and the named buffer, logging unknown IDs.
func (a *HALAdapter) passBuffer(op string, enc gpucore.EncoderID, buffer gpucore.BufferID) (*halPass, *halBuffer) {
	p, ok := a.passes[enc]
	if !ok {
		slogger().Warn("native: command on unknown encoder", "op", op, "encoder", uint64(enc))
		return nil, nil
	}
	b, ok := a.buffers[buffer]
	if !ok {
		slogger().Warn("native: command on unknown buffer", "op", op, "buffer", uint64(buffer))
		return nil, nil
	}
	return p, b
}

// BindVertexBuffer implements gpucore.Adapter.
func (a *HALAdapter) BindVertexBuffer(enc gpucore.EncoderID, buffer gpucore.BufferID, index uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, b := a.passBuffer("BindVertexBuffer", enc, buffer)
	if p == nil {
		return
	}
	p.cmd.hold(b)
	p.raw.SetVertexBuffer(index, b.raw, 0)
}

// BindIndexBuffer implements gpucore.Adapter.
func (a *HALAdapter) BindIndexBuffer(enc gpucore.EncoderID, buffer gpucore.BufferID, format gpucore.IndexFormat) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, b := a.passBuffer("BindIndexBuffer", enc, buffer)
	if p == nil {
		return
	}
	f, err := indexFormatToHAL(format)
	if err != nil {
		slogger().Warn("native: index buffer not bound", "error", err)
		return
	}
	p.cmd.hold(b)
	p.raw.SetIndexBuffer(b.raw, f, 0)
}

// BindUniformBuffer implements gpucore.Adapter.
func (a *HALAdapter) BindUniformBuffer(enc gpucore.EncoderID, buffer gpucore.BufferID, slot uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, b := a.passBuffer("BindUniformBuffer", enc, buffer)
	if p == nil {
		return
	}
	p.cmd.hold(b)
	p.uniforms[slot] = b
	p.dirty = true
}

// BindRenderPipeline implements gpucore.Adapter.
func (a *HALAdapter) BindRenderPipeline(enc gpucore.EncoderID, pipeline gpucore.RenderPipelineID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.passes[enc]
	if !ok {
		slogger().Warn("native: command on unknown encoder", "op", "BindRenderPipeline", "encoder", uint64(enc))
		return
	}
	pl, ok := a.pipelines[pipeline]
	if !ok {
		slogger().Warn("native: bind of unknown pipeline", "pipeline", uint64(pipeline))
		return
	}
	p.cmd.hold(pl)
	p.raw.SetPipeline(pl.raw)
	p.pipeline = pl
	p.dirty = true
}

// DrawIndexed implements gpucore.Adapter. Pending uniform bindings are
// flushed into a transient bind group first.
func (a *HALAdapter) DrawIndexed(enc gpucore.EncoderID, indexCount uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.passes[enc]
	if !ok {
		slogger().Warn("native: command on unknown encoder", "op", "DrawIndexed", "encoder", uint64(enc))
		return
	}
	if p.pipeline == nil {
		slogger().Warn("native: draw skipped, no pipeline bound")
		return
	}
	if p.dirty && len(p.pipeline.slots) > 0 {
		if err := a.flushUniformsLocked(p); err != nil {
			slogger().Warn("native: draw skipped", "error", err)
			return
		}
	}
	p.dirty = false
	p.raw.DrawIndexed(indexCount, 1, 0, 0, 0)
}

func (a *HALAdapter) flushUniformsLocked(p *halPass) error {
	entries := make([]gputypes.BindGroupEntry, 0, len(p.pipeline.slots))
	for _, slot := range p.pipeline.slots {
		b, ok := p.uniforms[slot]
		if !ok {
			return fmt.Errorf("no uniform buffer bound at slot %d", slot)
		}
		entries = append(entries, gputypes.BindGroupEntry{
			Binding: slot,
			Resource: gputypes.BufferBinding{
				Buffer: b.raw.NativeHandle(), Offset: 0, Size: b.size,
			},
		})
	}
	group, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "rhi_uniforms",
		Layout:  p.pipeline.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	p.cmd.groups = append(p.cmd.groups, group)
	p.raw.SetBindGroup(0, group, nil)
	return nil
}
