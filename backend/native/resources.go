package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi/gpucore"
	"github.com/gogpu/wgpu/hal"
)

type halBuffer struct {
	tracked
	raw  hal.Buffer
	size uint64
}

func (b *halBuffer) free(device hal.Device) { device.DestroyBuffer(b.raw) }

type halTexture struct {
	tracked
	raw    hal.Texture
	view   hal.TextureView
	format gputypes.TextureFormat
	native gpucore.TextureFormat
	width  uint32
	height uint32

	// owned textures were allocated by CreateTexture; borrowed drawables
	// belong to whoever registered them.
	owned bool

	// surface is set for drawables acquired from a window surface.
	surface   hal.Surface
	presented bool
}

func (t *halTexture) free(device hal.Device) {
	device.DestroyTextureView(t.view)
	if t.owned {
		device.DestroyTexture(t.raw)
	}
}

type halShaderStages struct {
	module        hal.ShaderModule
	vertexEntry   string
	fragmentEntry string
}

type halVertexInput struct {
	layouts []gputypes.VertexBufferLayout
	// names are the NUL-terminated attribute names supplied by the caller.
	names [][]byte
}

type halFramebuffer struct {
	color gpucore.TextureID
	depth gpucore.TextureID
}

type halPipeline struct {
	tracked
	raw        hal.RenderPipeline
	layout     hal.PipelineLayout
	bindLayout hal.BindGroupLayout
	slots      []uint32
}

func (p *halPipeline) free(device hal.Device) {
	device.DestroyRenderPipeline(p.raw)
	device.DestroyPipelineLayout(p.layout)
	device.DestroyBindGroupLayout(p.bindLayout)
}

// CreateBuffer implements gpucore.Adapter. The payload is uploaded through
// the queue; sizes are padded to the 4-byte copy alignment.
func (a *HALAdapter) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	usage, err := bufferUsageToHAL(desc.Type)
	if err != nil {
		return gpucore.InvalidID, err
	}
	data := desc.Data
	if pad := len(data) % 4; pad != 0 {
		data = append(append([]byte(nil), data...), make([]byte, 4-pad)...)
	}
	raw, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create buffer %q: %w", desc.Label, err)
	}
	if raw == nil {
		return gpucore.InvalidID, nil
	}
	if err := a.queue.WriteBuffer(raw, 0, data); err != nil {
		a.device.DestroyBuffer(raw)
		return gpucore.InvalidID, fmt.Errorf("upload buffer %q: %w", desc.Label, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	id := gpucore.BufferID(a.newID())
	a.buffers[id] = &halBuffer{raw: raw, size: uint64(len(data))}
	return id, nil
}

// DestroyBuffer implements gpucore.Adapter.
func (a *HALAdapter) DestroyBuffer(id gpucore.BufferID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.buffers[id]
	if !ok {
		return
	}
	delete(a.buffers, id)
	if b.kill() {
		b.free(a.device)
	}
}

// CreateTexture implements gpucore.Adapter. The texture is owned by the
// adapter and usable as a render attachment.
func (a *HALAdapter) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return gpucore.InvalidID, ErrInvalidDimensions
	}
	format, err := textureFormatToHAL(desc.Format)
	if err != nil {
		return gpucore.InvalidID, err
	}
	raw, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create texture %q: %w", desc.Label, err)
	}
	if raw == nil {
		return gpucore.InvalidID, nil
	}
	id, err := a.registerTexture(raw, nil, format, desc.Width, desc.Height, true)
	if err != nil {
		a.device.DestroyTexture(raw)
		return gpucore.InvalidID, err
	}
	return id, nil
}

// RegisterDrawable exposes a texture the caller owns as a borrowed drawable.
// The adapter creates a view but never destroys the texture itself.
// Call ReleaseDrawable when the frame is done with it.
func (a *HALAdapter) RegisterDrawable(tex hal.Texture, format gputypes.TextureFormat, width, height uint32) (gpucore.TextureID, error) {
	return a.registerTexture(tex, nil, format, width, height, false)
}

// registerSurfaceDrawable registers a surface texture. Submitting a command
// buffer that presents it calls Queue.Present on the surface.
func (a *HALAdapter) registerSurfaceDrawable(surface hal.Surface, tex hal.SurfaceTexture, format gputypes.TextureFormat, width, height uint32) (gpucore.TextureID, error) {
	return a.registerTexture(tex, surface, format, width, height, false)
}

func (a *HALAdapter) registerTexture(raw hal.Texture, surface hal.Surface, format gputypes.TextureFormat, width, height uint32, owned bool) (gpucore.TextureID, error) {
	if raw == nil {
		return gpucore.InvalidID, fmt.Errorf("%w: nil texture", ErrUnknownHandle)
	}
	nf, err := textureFormatFromHAL(format)
	if err != nil {
		return gpucore.InvalidID, err
	}
	aspect := gputypes.TextureAspectAll
	if nf.IsDepth() {
		aspect = gputypes.TextureAspectDepthOnly
	}
	view, err := a.device.CreateTextureView(raw, &hal.TextureViewDescriptor{
		Label:           "rhi_view",
		Format:          format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          aspect,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create texture view: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	id := gpucore.TextureID(a.newID())
	a.textures[id] = &halTexture{
		raw:     raw,
		view:    view,
		format:  format,
		native:  nf,
		width:   width,
		height:  height,
		owned:   owned,
		surface: surface,
	}
	return id, nil
}

// ReleaseDrawable unregisters a borrowed drawable and reports whether a
// submitted command buffer presented it.
func (a *HALAdapter) ReleaseDrawable(id gpucore.TextureID) (presented bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.textures[id]
	if !ok || t.owned {
		return false
	}
	delete(a.textures, id)
	if t.kill() {
		t.free(a.device)
	}
	return t.presented
}

// DestroyTexture implements gpucore.Adapter. Borrowed drawables are ignored.
func (a *HALAdapter) DestroyTexture(id gpucore.TextureID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.textures[id]
	if !ok {
		return
	}
	if !t.owned {
		slogger().Warn("native: destroy of borrowed texture ignored", "texture", uint64(id))
		return
	}
	delete(a.textures, id)
	if t.kill() {
		t.free(a.device)
	}
}

// TextureFormat implements gpucore.Adapter.
func (a *HALAdapter) TextureFormat(id gpucore.TextureID) uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t, ok := a.textures[id]; ok {
		return uint32(t.native)
	}
	return uint32(gpucore.TextureFormatInvalid)
}

// TextureSize implements gpucore.Adapter.
func (a *HALAdapter) TextureSize(id gpucore.TextureID) (width, height uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t, ok := a.textures[id]; ok {
		return t.width, t.height
	}
	return 0, 0
}

// CreateShaderStages implements gpucore.Adapter. The WGSL source is
// validated with naga before the HAL sees it.
func (a *HALAdapter) CreateShaderStages(desc *gpucore.ShaderStagesDesc) (gpucore.ShaderStagesID, error) {
	source, err := a.prepareShader(desc)
	if err != nil {
		return gpucore.InvalidID, err
	}
	module, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: source,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create shader module %q: %w", desc.Label, err)
	}
	if module == nil {
		return gpucore.InvalidID, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	id := gpucore.ShaderStagesID(a.newID())
	a.shaders[id] = &halShaderStages{
		module:        module,
		vertexEntry:   desc.VertexEntry,
		fragmentEntry: desc.FragmentEntry,
	}
	return id, nil
}

// DestroyShaderStages implements gpucore.Adapter.
func (a *HALAdapter) DestroyShaderStages(id gpucore.ShaderStagesID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.shaders[id]
	if !ok {
		return
	}
	delete(a.shaders, id)
	a.device.DestroyShaderModule(s.module)
}

// CreateVertexInputState implements gpucore.Adapter. Attributes are grouped
// into one HAL vertex buffer layout per binding.
func (a *HALAdapter) CreateVertexInputState(desc *gpucore.VertexInputStateDesc) (gpucore.VertexInputStateID, error) {
	layouts := make([]gputypes.VertexBufferLayout, len(desc.Bindings))
	for i, b := range desc.Bindings {
		layouts[i] = gputypes.VertexBufferLayout{
			ArrayStride: uint64(b.Stride),
			StepMode:    gputypes.VertexStepModeVertex,
		}
	}
	names := make([][]byte, 0, len(desc.Attributes))
	for _, attr := range desc.Attributes {
		if int(attr.BufferIndex) >= len(layouts) {
			return gpucore.InvalidID, fmt.Errorf("%w: attribute buffer index %d", ErrUnknownHandle, attr.BufferIndex)
		}
		format, err := vertexFormatToHAL(attr.Format)
		if err != nil {
			return gpucore.InvalidID, err
		}
		l := &layouts[attr.BufferIndex]
		l.Attributes = append(l.Attributes, gputypes.VertexAttribute{
			Format:         format,
			Offset:         uint64(attr.Offset),
			ShaderLocation: attr.Location,
		})
		names = append(names, attr.Name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	id := gpucore.VertexInputStateID(a.newID())
	a.inputs[id] = &halVertexInput{layouts: layouts, names: names}
	return id, nil
}

// DestroyVertexInputState implements gpucore.Adapter.
func (a *HALAdapter) DestroyVertexInputState(id gpucore.VertexInputStateID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.inputs, id)
}

// CreateFramebuffer implements gpucore.Adapter. Attachments are resolved to
// views when a render pass begins.
func (a *HALAdapter) CreateFramebuffer(color, depth gpucore.TextureID) (gpucore.FramebufferID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkAttachment(color, false); err != nil {
		return gpucore.InvalidID, err
	}
	if err := a.checkAttachment(depth, true); err != nil {
		return gpucore.InvalidID, err
	}
	id := gpucore.FramebufferID(a.newID())
	a.fbs[id] = &halFramebuffer{color: color, depth: depth}
	return id, nil
}

// DestroyFramebuffer implements gpucore.Adapter.
func (a *HALAdapter) DestroyFramebuffer(id gpucore.FramebufferID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.fbs, id)
}

// UpdateFramebufferDrawable implements gpucore.Adapter.
func (a *HALAdapter) UpdateFramebufferDrawable(fb gpucore.FramebufferID, color gpucore.TextureID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	f, ok := a.fbs[fb]
	if !ok {
		return fmt.Errorf("%w: framebuffer %d", ErrUnknownHandle, fb)
	}
	if err := a.checkAttachment(color, false); err != nil {
		return err
	}
	f.color = color
	return nil
}

// UpdateFramebufferDepth implements gpucore.Adapter.
func (a *HALAdapter) UpdateFramebufferDepth(fb gpucore.FramebufferID, depth gpucore.TextureID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	f, ok := a.fbs[fb]
	if !ok {
		return fmt.Errorf("%w: framebuffer %d", ErrUnknownHandle, fb)
	}
	if err := a.checkAttachment(depth, true); err != nil {
		return err
	}
	f.depth = depth
	return nil
}

// checkAttachment reports whether id names a texture with the right aspect
// for a color or depth attachment. Callers hold a.mu.
func (a *HALAdapter) checkAttachment(id gpucore.TextureID, depth bool) error {
	role := "color"
	if depth {
		role = "depth"
	}
	t, ok := a.textures[id]
	if !ok {
		return fmt.Errorf("%w: %s texture %d", ErrUnknownHandle, role, id)
	}
	if t.native.IsDepth() != depth {
		return fmt.Errorf("%w: texture %d (%v) is not a %s target", ErrUnsupported, id, t.native, role)
	}
	return nil
}

// CreateRenderPipeline implements gpucore.Adapter. Uniform slots become
// bindings of bind group 0, visible to both stages.
func (a *HALAdapter) CreateRenderPipeline(desc *gpucore.RenderPipelineDesc) (gpucore.RenderPipelineID, error) {
	a.mu.Lock()
	vis, okVis := a.inputs[desc.VertexInput]
	sh, okSh := a.shaders[desc.Shaders]
	a.mu.Unlock()
	if !okVis {
		return gpucore.InvalidID, fmt.Errorf("%w: vertex input state %d", ErrUnknownHandle, desc.VertexInput)
	}
	if !okSh {
		return gpucore.InvalidID, fmt.Errorf("%w: shader stages %d", ErrUnknownHandle, desc.Shaders)
	}

	colorFormat, err := textureFormatToHAL(desc.ColorFormat)
	if err != nil {
		return gpucore.InvalidID, err
	}
	depthFormat, err := textureFormatToHAL(desc.DepthFormat)
	if err != nil {
		return gpucore.InvalidID, err
	}
	cull, err := cullModeToHAL(desc.CullMode)
	if err != nil {
		return gpucore.InvalidID, err
	}
	front, err := frontFaceToHAL(desc.WindingMode)
	if err != nil {
		return gpucore.InvalidID, err
	}

	entries := make([]gputypes.BindGroupLayoutEntry, 0, len(desc.UniformSlots))
	for _, slot := range desc.UniformSlots {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    slot,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		})
	}
	bindLayout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label + "_uniforms",
		Entries: entries,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create bind group layout: %w", err)
	}
	layout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label + "_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		a.device.DestroyBindGroupLayout(bindLayout)
		return gpucore.InvalidID, fmt.Errorf("create pipeline layout: %w", err)
	}

	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	raw, err := a.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     sh.module,
			EntryPoint: sh.vertexEntry,
			Buffers:    vis.layouts,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: front,
			CullMode:  cull,
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionLess,
			StencilFront:      keep,
			StencilBack:       keep,
		},
		Multisample: gputypes.DefaultMultisampleState(),
		Fragment: &hal.FragmentState{
			Module:     sh.module,
			EntryPoint: sh.fragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{Format: colorFormat, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
	})
	if err != nil || raw == nil {
		a.device.DestroyPipelineLayout(layout)
		a.device.DestroyBindGroupLayout(bindLayout)
		if err != nil {
			return gpucore.InvalidID, fmt.Errorf("create render pipeline %q: %w", desc.Label, err)
		}
		return gpucore.InvalidID, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	id := gpucore.RenderPipelineID(a.newID())
	a.pipelines[id] = &halPipeline{
		raw:        raw,
		layout:     layout,
		bindLayout: bindLayout,
		slots:      append([]uint32(nil), desc.UniformSlots...),
	}
	slogger().Debug("native: render pipeline created",
		"pipeline", uint64(id), "color", colorFormat, "depth", depthFormat, "cull", cull, "front", front)
	return id, nil
}

// DestroyRenderPipeline implements gpucore.Adapter.
func (a *HALAdapter) DestroyRenderPipeline(id gpucore.RenderPipelineID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.pipelines[id]
	if !ok {
		return
	}
	delete(a.pipelines, id)
	if p.kill() {
		p.free(a.device)
	}
}
