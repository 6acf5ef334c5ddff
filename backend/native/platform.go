// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/gpucore"
	"github.com/gogpu/wgpu/hal"

	// Register the backends Platform can open.
	_ "github.com/gogpu/wgpu/hal/noop"
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Platform owns a HAL instance, device and queue together with the frame
// targets the render session draws into.
//
// Without surface handles the platform renders offscreen into two textures
// it owns. With them it acquires a surface image each frame and presents it
// when the frame's command buffer is submitted. In both modes the textures
// handed to the session are borrowed drawables.
//
// Lifecycle:
//
//	p, err := native.Open(native.WithBackend(gputypes.BackendEmpty))
//	defer p.Close()
//	color, depth, err := p.FrameTextures()
//	// ... encode and submit ...
//	err = p.PresentFrame()
type Platform struct {
	mu     sync.Mutex
	opts   options
	closed bool

	instance hal.Instance
	surface  hal.Surface
	device   hal.Device
	queue    hal.Queue
	info     gputypes.AdapterInfo

	adapter *HALAdapter
	dev     *rhi.Device

	width  uint32
	height uint32

	// Targets owned by the platform. color is nil in surface mode. The
	// depth target stays registered until the targets are recreated.
	color   hal.Texture
	depth   hal.Texture
	depthID gpucore.TextureID

	// Current frame, if acquired.
	acquired   hal.SurfaceTexture
	frameColor gpucore.TextureID
	colorTex   *rhi.Texture
	depthTex   *rhi.Texture
}

// Open creates a HAL instance for the selected backend, opens the best
// adapter and prepares the frame targets.
func Open(opts ...Option) (*Platform, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	width, height := o.frameSize()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	backend, ok := hal.GetBackend(o.backend)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotRegistered, o.backend)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}

	p := &Platform{opts: o, instance: instance, width: width, height: height}
	if err := p.init(backend.Variant()); err != nil {
		p.release()
		return nil, err
	}

	slogger().Info("native: platform ready",
		"backend", o.backend,
		"adapter", p.info.Name,
		"size", fmt.Sprintf("%dx%d", width, height),
		"surface", p.surface != nil)
	return p, nil
}

func (p *Platform) init(variant gputypes.Backend) error {
	if p.opts.handle != 0 {
		surface, err := p.instance.CreateSurface(p.opts.display, p.opts.handle)
		if err != nil {
			return fmt.Errorf("native: create surface: %w", err)
		}
		p.surface = surface
	}

	adapters := p.instance.EnumerateAdapters(p.surface)
	if len(adapters) == 0 {
		return ErrNoGPU
	}
	selected := selectAdapter(adapters)

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("native: open device: %w", err)
	}
	p.device = openDev.Device
	p.queue = openDev.Queue
	p.info = selected.Info

	adapter, err := NewHALAdapter(p.device, p.queue, variant)
	if err != nil {
		return err
	}
	adapter.SetSPIRV(p.opts.spirv)
	p.adapter = adapter

	dev, err := rhi.NewDevice(adapter, rhi.WithDeviceLabel(selected.Info.Name))
	if err != nil {
		return fmt.Errorf("native: %w", err)
	}
	p.dev = dev

	return p.createTargets()
}

// selectAdapter prefers a discrete or integrated GPU over software adapters.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for i := range adapters {
		switch adapters[i].Info.DeviceType {
		case gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU:
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// createTargets configures the surface or allocates the offscreen color
// target, then allocates the depth target.
func (p *Platform) createTargets() error {
	if p.surface != nil {
		err := p.surface.Configure(p.device, &hal.SurfaceConfiguration{
			Width:       p.width,
			Height:      p.height,
			Format:      p.opts.colorFormat,
			Usage:       gputypes.TextureUsageRenderAttachment,
			PresentMode: hal.PresentModeFifo,
			AlphaMode:   gputypes.CompositeAlphaModeOpaque,
		})
		if err != nil {
			return fmt.Errorf("native: configure surface: %w", err)
		}
	} else {
		color, err := p.createTarget("rhi_offscreen_color", p.opts.colorFormat,
			gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
		if err != nil {
			return err
		}
		p.color = color
	}

	depth, err := p.createTarget("rhi_depth", p.opts.depthFormat, gputypes.TextureUsageRenderAttachment)
	if err != nil {
		return err
	}
	p.depth = depth
	p.depthID, err = p.adapter.RegisterDrawable(depth, p.opts.depthFormat, p.width, p.height)
	if err != nil {
		return fmt.Errorf("native: register depth target: %w", err)
	}
	return nil
}

func (p *Platform) createTarget(label string, format gputypes.TextureFormat, usage gputypes.TextureUsage) (hal.Texture, error) {
	tex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: p.width, Height: p.height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create %s: %w", label, err)
	}
	return tex, nil
}

func (p *Platform) releaseDepth() {
	if p.depthID != gpucore.InvalidID {
		p.adapter.ReleaseDrawable(p.depthID)
		p.depthID = gpucore.InvalidID
	}
}

func (p *Platform) destroyTargets() {
	p.releaseDepth()
	if p.surface != nil && p.device != nil {
		p.surface.Unconfigure(p.device)
	}
	if p.color != nil {
		p.device.DestroyTexture(p.color)
		p.color = nil
	}
	if p.depth != nil {
		p.device.DestroyTexture(p.depth)
		p.depth = nil
	}
}

// Device returns the rhi device bound to the platform's HAL device.
func (p *Platform) Device() *rhi.Device {
	return p.dev
}

// Adapter returns the HAL adapter behind Device.
func (p *Platform) Adapter() *HALAdapter {
	return p.adapter
}

// Info returns metadata of the selected adapter.
func (p *Platform) Info() gputypes.AdapterInfo {
	return p.info
}

// Size returns the current frame size in pixels.
func (p *Platform) Size() (width, height uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// FrameTextures returns the color and depth textures of the current frame,
// acquiring a new frame if none is open. Both textures are borrowed and
// stay valid until PresentFrame. The depth texture keeps its ID across
// frames until Resize.
func (p *Platform) FrameTextures() (color, depth *rhi.Texture, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, nil, ErrClosed
	}
	if p.colorTex != nil {
		return p.colorTex, p.depthTex, nil
	}

	if err := p.acquireLocked(); err != nil {
		p.releaseFrameLocked()
		return nil, nil, err
	}
	return p.colorTex, p.depthTex, nil
}

func (p *Platform) acquireLocked() error {
	var err error
	if p.surface != nil {
		st, aerr := p.surface.AcquireTexture(nil)
		if aerr != nil {
			return fmt.Errorf("native: acquire surface texture: %w", aerr)
		}
		if st.Suboptimal {
			slogger().Debug("native: surface suboptimal")
		}
		p.acquired = st.Texture
		p.frameColor, err = p.adapter.registerSurfaceDrawable(p.surface, st.Texture, p.opts.colorFormat, p.width, p.height)
	} else {
		p.frameColor, err = p.adapter.RegisterDrawable(p.color, p.opts.colorFormat, p.width, p.height)
	}
	if err != nil {
		return fmt.Errorf("native: register color target: %w", err)
	}
	if p.colorTex, err = p.dev.WrapDrawable(p.frameColor); err != nil {
		return err
	}
	if p.depthTex, err = p.dev.WrapDrawable(p.depthID); err != nil {
		return err
	}
	return nil
}

// PresentFrame ends the current frame. A surface image that no submitted
// command buffer presented is discarded. Calling PresentFrame without an
// open frame is a no-op.
func (p *Platform) PresentFrame() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.releaseFrameLocked()
	p.adapter.Collect()
	return nil
}

func (p *Platform) releaseFrameLocked() {
	if p.colorTex != nil {
		p.colorTex.Destroy()
		p.colorTex = nil
	}
	if p.depthTex != nil {
		p.depthTex.Destroy()
		p.depthTex = nil
	}

	presented := false
	if p.frameColor != gpucore.InvalidID {
		presented = p.adapter.ReleaseDrawable(p.frameColor)
		p.frameColor = gpucore.InvalidID
	}
	if p.acquired != nil {
		if !presented {
			p.surface.DiscardTexture(p.acquired)
		}
		p.acquired = nil
	}
}

// Resize recreates the frame targets at the new size. An open frame is
// discarded first. The same size is a no-op.
func (p *Platform) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if width == p.width && height == p.height {
		return nil
	}

	p.releaseFrameLocked()
	if err := p.device.WaitIdle(); err != nil {
		return fmt.Errorf("native: wait idle: %w", err)
	}
	p.adapter.Collect()
	p.destroyTargets()

	p.width, p.height = width, height
	if err := p.createTargets(); err != nil {
		return err
	}
	slogger().Debug("native: resized", "width", width, "height", height)
	return nil
}

// Close releases the frame targets, the device and the instance.
// Every rhi wrapper created from Device must be destroyed first.
// Close is idempotent.
func (p *Platform) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.releaseFrameLocked()
	if p.adapter != nil {
		p.releaseDepth()
	}

	var err error
	if p.adapter != nil {
		err = p.adapter.Close()
	}
	p.release()
	return err
}

func (p *Platform) release() {
	if p.device != nil {
		p.destroyTargets()
	}
	if p.surface != nil {
		p.surface.Destroy()
		p.surface = nil
	}
	if p.device != nil {
		p.device.Destroy()
		p.device = nil
	}
	if p.instance != nil {
		p.instance.Destroy()
		p.instance = nil
	}
}

// Provider exposes the platform's device to gpucontext consumers.
func (p *Platform) Provider() gpucontext.DeviceProvider {
	return provider{p}
}

type provider struct{ p *Platform }

func (v provider) Device() gpucontext.Device { return v.p.device }
func (v provider) Queue() gpucontext.Queue { return v.p.queue }
func (v provider) Adapter() gpucontext.Adapter {
	return nil
}

// Backend lets NewHALAdapterFromProvider recover the HAL backend.
func (v provider) Backend() gputypes.Backend { return v.p.opts.backend }

func (v provider) SurfaceFormat() gputypes.TextureFormat {
	if v.p.surface == nil {
		return gputypes.TextureFormatUndefined
	}
	return v.p.opts.colorFormat
}

func (v provider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{
		Name: v.p.info.Name,
		Type: adapterType(v.p.info.DeviceType),
	}
}

func adapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}

// NewHALAdapterFromProvider borrows the HAL device and queue of a host
// application. The host keeps ownership of both.
func NewHALAdapterFromProvider(dp gpucontext.DeviceProvider) (*HALAdapter, error) {
	if dp == nil {
		return nil, ErrNoHALDevice
	}
	device, ok := dp.Device().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: Device is %T", ErrNoHALDevice, dp.Device())
	}
	queue, ok := dp.Queue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: Queue is %T", ErrNoHALDevice, dp.Queue())
	}
	backend := gputypes.BackendVulkan
	if ba, ok := dp.(interface{ Backend() gputypes.Backend }); ok {
		backend = ba.Backend()
	}
	return NewHALAdapter(device, queue, backend)
}
