package gpumock

import (
	"bytes"
	"fmt"

	"github.com/gogpu/rhi/gpucore"
)

func (a *Adapter) CreateCommandQueue() (gpucore.CommandQueueID, error) {
	if failed, err := a.begin("CreateCommandQueue"); failed {
		return gpucore.InvalidID, err
	}
	return gpucore.CommandQueueID(a.alloc(&resource{kind: KindCommandQueue})), nil
}

func (a *Adapter) DestroyCommandQueue(id gpucore.CommandQueueID) {
	a.destroy("DestroyCommandQueue", uint64(id), KindCommandQueue)
}

func (a *Adapter) CreateCommandBuffer(queue gpucore.CommandQueueID) (gpucore.CommandBufferID, error) {
	if failed, err := a.begin("CreateCommandBuffer"); failed {
		return gpucore.InvalidID, err
	}
	if a.use("CreateCommandBuffer", uint64(queue), KindCommandQueue) == nil {
		return gpucore.InvalidID, nil
	}
	return gpucore.CommandBufferID(a.alloc(&resource{kind: KindCommandBuffer})), nil
}

func (a *Adapter) DestroyCommandBuffer(id gpucore.CommandBufferID) {
	r := a.destroy("DestroyCommandBuffer", uint64(id), KindCommandBuffer)
	if r != nil && r.open != gpucore.InvalidID {
		a.violate("DestroyCommandBuffer: command buffer %d has open encoder %d", id, r.open)
	}
}

func (a *Adapter) PresentTexture(cmd gpucore.CommandBufferID, texture gpucore.TextureID) error {
	a.calls["PresentTexture"]++
	c := a.use("PresentTexture", uint64(cmd), KindCommandBuffer)
	if a.use("PresentTexture", uint64(texture), KindTexture) == nil || c == nil {
		return nil
	}
	if c.submitted {
		a.violate("PresentTexture: command buffer %d already submitted", cmd)
	}
	a.presented = append(a.presented, texture)
	a.record("PresentTexture", gpucore.InvalidID, uint64(cmd), uint64(texture))
	return nil
}

func (a *Adapter) Submit(queue gpucore.CommandQueueID, cmd gpucore.CommandBufferID) error {
	if failed, err := a.begin("Submit"); failed {
		return err
	}
	a.use("Submit", uint64(queue), KindCommandQueue)
	c := a.use("Submit", uint64(cmd), KindCommandBuffer)
	if c == nil {
		return nil
	}
	switch {
	case c.submitted:
		a.violate("Submit: command buffer %d submitted twice", cmd)
	case c.open != gpucore.InvalidID:
		a.violate("Submit: command buffer %d has open encoder %d", cmd, c.open)
	}
	for _, b := range c.buffers {
		if !a.IsLive(uint64(b)) {
			a.violate("Submit: command buffer %d references destroyed buffer %d", cmd, b)
		}
	}
	c.submitted = true
	a.submitted = append(a.submitted, cmd)
	a.record("Submit", gpucore.InvalidID, uint64(queue), uint64(cmd))
	// Failures injected for "QueuePresent" fire after the work is queued.
	if failed, err := a.begin("QueuePresent"); failed {
		if err == nil {
			err = errPresent
		}
		return fmt.Errorf("%w: %w", gpucore.ErrPresentFailed, err)
	}
	return nil
}

func (a *Adapter) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	if failed, err := a.begin("CreateBuffer"); failed {
		return gpucore.InvalidID, err
	}
	if len(desc.Data) == 0 {
		a.violate("CreateBuffer: empty payload for %q", desc.Label)
	}
	return gpucore.BufferID(a.alloc(&resource{kind: KindBuffer, data: bytes.Clone(desc.Data)})), nil
}

func (a *Adapter) DestroyBuffer(id gpucore.BufferID) {
	a.destroy("DestroyBuffer", uint64(id), KindBuffer)
}

func (a *Adapter) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if failed, err := a.begin("CreateTexture"); failed {
		return gpucore.InvalidID, err
	}
	id := a.alloc(&resource{kind: KindTexture, format: uint32(desc.Format), width: desc.Width, height: desc.Height})
	return gpucore.TextureID(id), nil
}

func (a *Adapter) DestroyTexture(id gpucore.TextureID) {
	a.destroy("DestroyTexture", uint64(id), KindTexture)
}

func (a *Adapter) TextureFormat(id gpucore.TextureID) uint32 {
	a.calls["TextureFormat"]++
	if r := a.use("TextureFormat", uint64(id), KindTexture); r != nil {
		return r.format
	}
	return 0
}

func (a *Adapter) TextureSize(id gpucore.TextureID) (width, height uint32) {
	a.calls["TextureSize"]++
	if r := a.use("TextureSize", uint64(id), KindTexture); r != nil {
		return r.width, r.height
	}
	return 0, 0
}

func (a *Adapter) CreateShaderStages(desc *gpucore.ShaderStagesDesc) (gpucore.ShaderStagesID, error) {
	if failed, err := a.begin("CreateShaderStages"); failed {
		return gpucore.InvalidID, err
	}
	if desc.Source == "" || desc.VertexEntry == "" || desc.FragmentEntry == "" {
		return gpucore.InvalidID, nil
	}
	return gpucore.ShaderStagesID(a.alloc(&resource{kind: KindShaderStages})), nil
}

func (a *Adapter) DestroyShaderStages(id gpucore.ShaderStagesID) {
	a.destroy("DestroyShaderStages", uint64(id), KindShaderStages)
}

func (a *Adapter) CreateVertexInputState(desc *gpucore.VertexInputStateDesc) (gpucore.VertexInputStateID, error) {
	if failed, err := a.begin("CreateVertexInputState"); failed {
		return gpucore.InvalidID, err
	}
	for i, attr := range desc.Attributes {
		if len(attr.Name) == 0 || attr.Name[len(attr.Name)-1] != 0 || bytes.IndexByte(attr.Name[:len(attr.Name)-1], 0) >= 0 {
			a.violate("CreateVertexInputState: attribute %d name is not NUL-terminated", i)
		}
	}
	// Retain the caller's slices as a native backend would.
	id := a.alloc(&resource{kind: KindVertexInputState, attrs: desc.Attributes})
	return gpucore.VertexInputStateID(id), nil
}

func (a *Adapter) DestroyVertexInputState(id gpucore.VertexInputStateID) {
	if r := a.destroy("DestroyVertexInputState", uint64(id), KindVertexInputState); r != nil {
		r.attrs = nil
	}
}

func (a *Adapter) CreateFramebuffer(color, depth gpucore.TextureID) (gpucore.FramebufferID, error) {
	if failed, err := a.begin("CreateFramebuffer"); failed {
		return gpucore.InvalidID, err
	}
	if a.use("CreateFramebuffer", uint64(color), KindTexture) == nil ||
		a.use("CreateFramebuffer", uint64(depth), KindTexture) == nil {
		return gpucore.InvalidID, nil
	}
	id := a.alloc(&resource{kind: KindFramebuffer, color: color, depth: depth})
	return gpucore.FramebufferID(id), nil
}

func (a *Adapter) DestroyFramebuffer(id gpucore.FramebufferID) {
	a.destroy("DestroyFramebuffer", uint64(id), KindFramebuffer)
}

func (a *Adapter) UpdateFramebufferDrawable(fb gpucore.FramebufferID, color gpucore.TextureID) error {
	if failed, err := a.begin("UpdateFramebufferDrawable"); failed {
		if err == nil {
			err = errNullUpdate
		}
		return err
	}
	r := a.use("UpdateFramebufferDrawable", uint64(fb), KindFramebuffer)
	if a.use("UpdateFramebufferDrawable", uint64(color), KindTexture) == nil || r == nil {
		return nil
	}
	r.color = color
	return nil
}

func (a *Adapter) UpdateFramebufferDepth(fb gpucore.FramebufferID, depth gpucore.TextureID) error {
	if failed, err := a.begin("UpdateFramebufferDepth"); failed {
		if err == nil {
			err = errNullUpdate
		}
		return err
	}
	r := a.use("UpdateFramebufferDepth", uint64(fb), KindFramebuffer)
	if a.use("UpdateFramebufferDepth", uint64(depth), KindTexture) == nil || r == nil {
		return nil
	}
	r.depth = depth
	return nil
}

func (a *Adapter) CreateRenderPipeline(desc *gpucore.RenderPipelineDesc) (gpucore.RenderPipelineID, error) {
	if failed, err := a.begin("CreateRenderPipeline"); failed {
		return gpucore.InvalidID, err
	}
	if a.use("CreateRenderPipeline", uint64(desc.VertexInput), KindVertexInputState) == nil ||
		a.use("CreateRenderPipeline", uint64(desc.Shaders), KindShaderStages) == nil {
		return gpucore.InvalidID, nil
	}
	return gpucore.RenderPipelineID(a.alloc(&resource{kind: KindRenderPipeline})), nil
}

func (a *Adapter) DestroyRenderPipeline(id gpucore.RenderPipelineID) {
	a.destroy("DestroyRenderPipeline", uint64(id), KindRenderPipeline)
}
