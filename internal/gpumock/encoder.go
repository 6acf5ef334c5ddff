package gpumock

import (
	"errors"

	"github.com/gogpu/rhi/gpucore"
)

var (
	errNullUpdate = errors.New("gpumock: framebuffer update failed")
	errPresent    = errors.New("gpumock: present failed")
)

// BeginRenderPass implements gpucore.Adapter.
func (a *Adapter) BeginRenderPass(cmd gpucore.CommandBufferID, fb gpucore.FramebufferID, desc *gpucore.RenderPassDesc) (gpucore.EncoderID, error) {
	if failed, err := a.begin("BeginRenderPass"); failed {
		return gpucore.InvalidID, err
	}
	c := a.use("BeginRenderPass", uint64(cmd), KindCommandBuffer)
	f := a.use("BeginRenderPass", uint64(fb), KindFramebuffer)
	if c == nil || f == nil {
		return gpucore.InvalidID, nil
	}
	if c.open != gpucore.InvalidID {
		a.violate("BeginRenderPass: command buffer %d already has open encoder %d", cmd, c.open)
	}
	if c.submitted {
		a.violate("BeginRenderPass: command buffer %d already submitted", cmd)
	}
	if !a.IsLive(uint64(f.color)) || !a.IsLive(uint64(f.depth)) {
		a.violate("BeginRenderPass: framebuffer %d has a destroyed attachment", fb)
	}
	id := gpucore.EncoderID(a.alloc(&resource{kind: KindEncoder, cmd: cmd}))
	c.open = id
	a.passes = append(a.passes, *desc)
	a.record("BeginRenderPass", id, uint64(fb), uint64(desc.Color.LoadAction), uint64(desc.Depth.LoadAction))
	return id, nil
}

// EndEncoding implements gpucore.Adapter.
func (a *Adapter) EndEncoding(enc gpucore.EncoderID) {
	r := a.destroy("EndEncoding", uint64(enc), KindEncoder)
	if r == nil {
		return
	}
	if c, ok := a.resources[uint64(r.cmd)]; ok && c.open == enc {
		c.open = gpucore.InvalidID
	}
	a.record("EndEncoding", enc)
}

// encoderCmd returns the command buffer of a live encoder.
func (a *Adapter) encoderCmd(op string, enc gpucore.EncoderID) *resource {
	e := a.use(op, uint64(enc), KindEncoder)
	if e == nil {
		return nil
	}
	return a.resources[uint64(e.cmd)]
}

func (a *Adapter) bindBuffer(op string, enc gpucore.EncoderID, buffer gpucore.BufferID, arg uint64) {
	a.calls[op]++
	c := a.encoderCmd(op, enc)
	if a.use(op, uint64(buffer), KindBuffer) == nil || c == nil {
		return
	}
	c.buffers = append(c.buffers, buffer)
	a.record(op, enc, uint64(buffer), arg)
}

// BindVertexBuffer implements gpucore.Adapter.
func (a *Adapter) BindVertexBuffer(enc gpucore.EncoderID, buffer gpucore.BufferID, index uint32) {
	a.bindBuffer("BindVertexBuffer", enc, buffer, uint64(index))
}

// BindIndexBuffer implements gpucore.Adapter.
func (a *Adapter) BindIndexBuffer(enc gpucore.EncoderID, buffer gpucore.BufferID, format gpucore.IndexFormat) {
	a.bindBuffer("BindIndexBuffer", enc, buffer, uint64(format))
}

// BindUniformBuffer implements gpucore.Adapter.
func (a *Adapter) BindUniformBuffer(enc gpucore.EncoderID, buffer gpucore.BufferID, slot uint32) {
	a.bindBuffer("BindUniformBuffer", enc, buffer, uint64(slot))
}

// BindRenderPipeline implements gpucore.Adapter.
func (a *Adapter) BindRenderPipeline(enc gpucore.EncoderID, pipeline gpucore.RenderPipelineID) {
	a.calls["BindRenderPipeline"]++
	if a.encoderCmd("BindRenderPipeline", enc) == nil ||
		a.use("BindRenderPipeline", uint64(pipeline), KindRenderPipeline) == nil {
		return
	}
	a.record("BindRenderPipeline", enc, uint64(pipeline))
}

// DrawIndexed implements gpucore.Adapter.
func (a *Adapter) DrawIndexed(enc gpucore.EncoderID, indexCount uint32) {
	a.calls["DrawIndexed"]++
	if a.encoderCmd("DrawIndexed", enc) == nil {
		return
	}
	a.record("DrawIndexed", enc, uint64(indexCount))
}

// Draws returns the index counts of every DrawIndexed call in order.
func (a *Adapter) Draws() []uint32 {
	var out []uint32
	for _, c := range a.commands {
		if c.Op == "DrawIndexed" {
			out = append(out, uint32(c.Args[0]))
		}
	}
	return out
}
