package native

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/gpucore"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

const testWGSL = `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) color_in: vec3<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec3<f32>,
}

@group(0) @binding(1) var<uniform> mvp: mat4x4<f32>;

@vertex
fn vertexShader(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = mvp * vec4<f32>(in.position, 1.0);
    out.color = in.color_in;
    return out;
}

@fragment
fn fragmentShader(in: VertexOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(in.color, 1.0);
}
`

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

// laggingQueue reports only submissions up to done as complete.
type laggingQueue struct {
	hal.Queue
	done uint64
}

func (q *laggingQueue) PollCompleted() uint64 { return q.done }

// countingDevice counts destroy calls that reach the HAL.
type countingDevice struct {
	hal.Device
	buffers   int
	pipelines int
	views     int
	textures  int
}

func (d *countingDevice) DestroyBuffer(b hal.Buffer) {
	d.buffers++
	d.Device.DestroyBuffer(b)
}

func (d *countingDevice) DestroyRenderPipeline(p hal.RenderPipeline) {
	d.pipelines++
	d.Device.DestroyRenderPipeline(p)
}

func (d *countingDevice) DestroyTextureView(v hal.TextureView) {
	d.views++
	d.Device.DestroyTextureView(v)
}

func (d *countingDevice) DestroyTexture(t hal.Texture) {
	d.textures++
	d.Device.DestroyTexture(t)
}

func newDevice(t *testing.T, a *HALAdapter) *rhi.Device {
	t.Helper()
	dev, err := rhi.NewDevice(a)
	if err != nil {
		t.Fatalf("NewDevice() = %v", err)
	}
	return dev
}

func newTestAdapter(t *testing.T) *HALAdapter {
	t.Helper()
	device, queue := createNoopDevice(t)
	a, err := NewHALAdapter(device, queue, gputypes.BackendEmpty)
	if err != nil {
		t.Fatalf("NewHALAdapter() = %v", err)
	}
	return a
}

// frameObjects is everything one three-cube style frame needs.
type frameObjects struct {
	dev      *rhi.Device
	vertices *rhi.Buffer
	indices  *rhi.Buffer
	uniform  *rhi.Buffer
	pipeline *rhi.RenderPipelineState
	input    *rhi.VertexInputState
	shaders  *rhi.ShaderStages
	queue    *rhi.CommandQueue
}

func newFrameObjects(t *testing.T, dev *rhi.Device) *frameObjects {
	t.Helper()
	f := &frameObjects{dev: dev}
	var err error

	mustBuf := func(typ gpucore.BufferType, n int) *rhi.Buffer {
		b, err := dev.CreateBuffer(rhi.BufferDesc{Type: typ, Data: make([]byte, n)})
		if err != nil {
			t.Fatalf("CreateBuffer() = %v", err)
		}
		return b
	}
	f.vertices = mustBuf(gpucore.BufferTypeVertex, 8*24)
	f.indices = mustBuf(gpucore.BufferTypeIndex, 36*2)
	f.uniform = mustBuf(gpucore.BufferTypeUniform, 64)

	f.input, err = dev.CreateVertexInputState(rhi.VertexInputStateDesc{
		Attributes: []rhi.VertexAttribute{
			{Format: gpucore.VertexFormatFloat3, Offset: 0, Name: "position", Location: 0},
			{Format: gpucore.VertexFormatFloat3, Offset: 12, Name: "color_in", Location: 1},
		},
		Bindings: []rhi.VertexBinding{{Stride: 24}},
	})
	if err != nil {
		t.Fatalf("CreateVertexInputState() = %v", err)
	}
	f.shaders, err = dev.CreateShaderStages(rhi.ShaderStagesDesc{
		Source: testWGSL, VertexEntry: "vertexShader", FragmentEntry: "fragmentShader",
	})
	if err != nil {
		t.Fatalf("CreateShaderStages() = %v", err)
	}
	f.pipeline, err = dev.CreateRenderPipeline(rhi.RenderPipelineDesc{
		VertexInput:  f.input,
		Shaders:      f.shaders,
		ColorFormat:  gpucore.TextureFormatBGRA8Unorm,
		DepthFormat:  gpucore.TextureFormatDepth32Float,
		CullMode:     gpucore.CullModeBack,
		WindingMode:  gpucore.WindingModeClockwise,
		UniformSlots: []uint32{1},
	})
	if err != nil {
		t.Fatalf("CreateRenderPipeline() = %v", err)
	}
	f.queue, err = dev.CreateCommandQueue()
	if err != nil {
		t.Fatalf("CreateCommandQueue() = %v", err)
	}
	return f
}

func (f *frameObjects) destroy() {
	f.vertices.Destroy()
	f.indices.Destroy()
	f.uniform.Destroy()
	f.pipeline.Destroy()
	f.input.Destroy()
	f.shaders.Destroy()
	f.queue.Destroy()
}

// encode records one cube draw into a new command buffer and presents color.
func (f *frameObjects) encode(t *testing.T, color, depth *rhi.Texture) (*rhi.CommandBuffer, *rhi.Framebuffer) {
	t.Helper()
	fb, err := f.dev.CreateFramebuffer(color, depth)
	if err != nil {
		t.Fatalf("CreateFramebuffer() = %v", err)
	}
	cb, err := f.queue.CreateCommandBuffer()
	if err != nil {
		t.Fatalf("CreateCommandBuffer() = %v", err)
	}
	enc, err := cb.CreateRenderEncoder(fb, rhi.RenderPassDesc{
		Color: rhi.DefaultColorAttachment(),
		Depth: rhi.DefaultDepthAttachment(),
	})
	if err != nil {
		t.Fatalf("CreateRenderEncoder() = %v", err)
	}
	defer enc.Close()

	steps := []struct {
		name string
		err  error
	}{
		{"BindPipeline", enc.BindPipeline(f.pipeline)},
		{"BindVertexBuffer", enc.BindVertexBuffer(f.vertices, 0)},
		{"BindUniformBuffer", enc.BindUniformBuffer(f.uniform, 1)},
		{"BindIndexBuffer", enc.BindIndexBuffer(f.indices, gpucore.IndexFormatUInt16)},
		{"DrawIndexed", enc.DrawIndexed(36)},
	}
	for _, s := range steps {
		if s.err != nil {
			t.Fatalf("%s() = %v", s.name, s.err)
		}
	}
	enc.EndEncoding()

	if err := cb.Present(color); err != nil {
		t.Fatalf("Present() = %v", err)
	}
	return cb, fb
}

func TestNewHALAdapter(t *testing.T) {
	device, queue := createNoopDevice(t)

	tests := []struct {
		name    string
		device  hal.Device
		queue   hal.Queue
		backend gputypes.Backend
		want    gpucore.BackendType
		wantErr error
	}{
		{"noop", device, queue, gputypes.BackendEmpty, gpucore.BackendVulkan, nil},
		{"metal", device, queue, gputypes.BackendMetal, gpucore.BackendMetal, nil},
		{"gl", device, queue, gputypes.BackendGL, gpucore.BackendOpenGL, nil},
		{"dx12", device, queue, gputypes.BackendDX12, 0, ErrUnsupported},
		{"nil device", nil, queue, gputypes.BackendVulkan, 0, ErrNoHALDevice},
		{"nil queue", device, nil, gputypes.BackendVulkan, 0, ErrNoHALDevice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewHALAdapter(tt.device, tt.queue, tt.backend)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewHALAdapter() = %v", err)
			}
			if a.BackendType() != tt.want {
				t.Errorf("BackendType() = %v, want %v", a.BackendType(), tt.want)
			}
		})
	}
}

func TestHALAdapterFrame(t *testing.T) {
	device, queue := createNoopDevice(t)
	a, err := NewHALAdapter(device, queue, gputypes.BackendEmpty)
	if err != nil {
		t.Fatal(err)
	}
	f := newFrameObjects(t, newDevice(t, a))

	colorRaw, _ := device.CreateTexture(&hal.TextureDescriptor{Format: gputypes.TextureFormatBGRA8Unorm})
	depthRaw, _ := device.CreateTexture(&hal.TextureDescriptor{Format: gputypes.TextureFormatDepth32Float})
	colorID, err := a.RegisterDrawable(colorRaw, gputypes.TextureFormatBGRA8Unorm, 640, 480)
	if err != nil {
		t.Fatalf("RegisterDrawable(color) = %v", err)
	}
	depthID, err := a.RegisterDrawable(depthRaw, gputypes.TextureFormatDepth32Float, 640, 480)
	if err != nil {
		t.Fatalf("RegisterDrawable(depth) = %v", err)
	}
	color, _ := f.dev.WrapDrawable(colorID)
	depth, _ := f.dev.WrapDrawable(depthID)

	if got, err := color.Format(); err != nil || got != gpucore.TextureFormatBGRA8Unorm {
		t.Errorf("color.Format() = %v, %v", got, err)
	}
	if w, h := depth.Size(); w != 640 || h != 480 {
		t.Errorf("depth.Size() = %dx%d", w, h)
	}

	cb, fb := f.encode(t, color, depth)
	if err := f.queue.Submit(cb); err != nil {
		t.Fatalf("Submit() = %v", err)
	}
	cb.Destroy()
	fb.Destroy()

	if !a.ReleaseDrawable(colorID) {
		t.Error("color drawable should report presented")
	}
	if a.ReleaseDrawable(depthID) {
		t.Error("depth drawable was never presented")
	}

	f.destroy()
	if n := a.LiveHandles(); n != 0 {
		t.Errorf("LiveHandles() = %d after destroying everything", n)
	}
	if n := a.InFlight(); n != 0 {
		t.Errorf("InFlight() = %d on a synchronous queue", n)
	}
	if n := f.dev.LiveResources(); n != 0 {
		t.Errorf("LiveResources() = %d", n)
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestHALAdapterDeferredRelease(t *testing.T) {
	device, queue := createNoopDevice(t)
	counting := &countingDevice{Device: device}
	lagging := &laggingQueue{Queue: queue}
	a, err := NewHALAdapter(counting, lagging, gputypes.BackendVulkan)
	if err != nil {
		t.Fatal(err)
	}
	f := newFrameObjects(t, newDevice(t, a))

	colorID, _ := a.CreateTexture(&gpucore.TextureDesc{Width: 4, Height: 4, Format: gpucore.TextureFormatBGRA8Unorm})
	depthID, _ := a.CreateTexture(&gpucore.TextureDesc{Width: 4, Height: 4, Format: gpucore.TextureFormatDepth32Float})
	color, _ := f.dev.WrapDrawable(colorID)
	depth, _ := f.dev.WrapDrawable(depthID)

	cb, fb := f.encode(t, color, depth)
	if err := f.queue.Submit(cb); err != nil {
		t.Fatalf("Submit() = %v", err)
	}
	cb.Destroy()
	fb.Destroy()
	f.destroy()

	if got := a.InFlight(); got != 1 {
		t.Fatalf("InFlight() = %d, want 1", got)
	}
	if counting.buffers != 0 || counting.pipelines != 0 {
		t.Fatalf("freed %d buffers and %d pipelines while in flight", counting.buffers, counting.pipelines)
	}

	lagging.done = 1
	a.Collect()
	if got := a.InFlight(); got != 0 {
		t.Errorf("InFlight() = %d after completion", got)
	}
	if counting.buffers != 3 {
		t.Errorf("freed %d buffers, want 3", counting.buffers)
	}
	if counting.pipelines != 1 {
		t.Errorf("freed %d pipelines, want 1", counting.pipelines)
	}

	a.DestroyTexture(colorID)
	a.DestroyTexture(depthID)
	if counting.textures != 2 {
		t.Errorf("freed %d owned textures, want 2", counting.textures)
	}
	if n := a.LiveHandles(); n != 0 {
		t.Errorf("LiveHandles() = %d", n)
	}
}

func TestHALAdapterBorrowedTexture(t *testing.T) {
	device, queue := createNoopDevice(t)
	counting := &countingDevice{Device: device}
	a, err := NewHALAdapter(counting, queue, gputypes.BackendVulkan)
	if err != nil {
		t.Fatal(err)
	}

	raw, _ := device.CreateTexture(&hal.TextureDescriptor{Format: gputypes.TextureFormatRGBA8Unorm})
	id, err := a.RegisterDrawable(raw, gputypes.TextureFormatRGBA8Unorm, 8, 8)
	if err != nil {
		t.Fatal(err)
	}

	a.DestroyTexture(id)
	if w, _ := a.TextureSize(id); w != 8 {
		t.Fatal("DestroyTexture removed a borrowed drawable")
	}
	if a.ReleaseDrawable(id) {
		t.Error("ReleaseDrawable() = true for an unpresented drawable")
	}
	if counting.textures != 0 {
		t.Errorf("borrowed texture destroyed %d times", counting.textures)
	}
	if counting.views != 1 {
		t.Errorf("view destroyed %d times, want 1", counting.views)
	}
	if got := a.TextureFormat(id); got != uint32(gpucore.TextureFormatInvalid) {
		t.Errorf("TextureFormat() after release = %d", got)
	}
}

func TestHALAdapterCreateErrors(t *testing.T) {
	a := newTestAdapter(t)

	tests := []struct {
		name    string
		fn      func() error
		wantErr error
	}{
		{"buffer without type", func() error {
			_, err := a.CreateBuffer(&gpucore.BufferDesc{Data: []byte{1, 2, 3, 4}})
			return err
		}, ErrUnsupported},
		{"texture zero size", func() error {
			_, err := a.CreateTexture(&gpucore.TextureDesc{Format: gpucore.TextureFormatBGRA8Unorm})
			return err
		}, ErrInvalidDimensions},
		{"texture bad format", func() error {
			_, err := a.CreateTexture(&gpucore.TextureDesc{Width: 1, Height: 1, Format: 77})
			return err
		}, ErrUnsupported},
		{"framebuffer unknown texture", func() error {
			_, err := a.CreateFramebuffer(12345, 0)
			return err
		}, ErrUnknownHandle},
		{"command buffer unknown queue", func() error {
			_, err := a.CreateCommandBuffer(999)
			return err
		}, ErrUnknownHandle},
		{"shader bad source", func() error {
			_, err := a.CreateShaderStages(&gpucore.ShaderStagesDesc{
				Source: "fn broken(", VertexEntry: "vertexShader", FragmentEntry: "fragmentShader",
			})
			return err
		}, ErrShaderValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHALAdapterFramebufferAttachments(t *testing.T) {
	a := newTestAdapter(t)
	color, _ := a.CreateTexture(&gpucore.TextureDesc{Width: 2, Height: 2, Format: gpucore.TextureFormatBGRA8Unorm})
	depth, _ := a.CreateTexture(&gpucore.TextureDesc{Width: 2, Height: 2, Format: gpucore.TextureFormatDepth32Float})
	defer a.DestroyTexture(color)
	defer a.DestroyTexture(depth)

	tests := []struct {
		name         string
		color, depth gpucore.TextureID
	}{
		{"swapped", depth, color},
		{"color twice", color, color},
		{"depth twice", depth, depth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.CreateFramebuffer(tt.color, tt.depth); !errors.Is(err, ErrUnsupported) {
				t.Errorf("CreateFramebuffer() = %v, want ErrUnsupported", err)
			}
		})
	}

	fb, err := a.CreateFramebuffer(color, depth)
	if err != nil {
		t.Fatalf("CreateFramebuffer() = %v", err)
	}
	defer a.DestroyFramebuffer(fb)
	if err := a.UpdateFramebufferDrawable(fb, depth); !errors.Is(err, ErrUnsupported) {
		t.Errorf("UpdateFramebufferDrawable(depth) = %v, want ErrUnsupported", err)
	}
	if err := a.UpdateFramebufferDepth(fb, color); !errors.Is(err, ErrUnsupported) {
		t.Errorf("UpdateFramebufferDepth(color) = %v, want ErrUnsupported", err)
	}
}

// failingPresentQueue queues work normally and fails every present.
type failingPresentQueue struct {
	hal.Queue
	err error
}

func (q failingPresentQueue) Present(hal.Surface, hal.SurfaceTexture, []image.Rectangle) error {
	return q.err
}

func TestHALAdapterSubmitPresentError(t *testing.T) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer instance.Destroy()
	surface, err := instance.CreateSurface(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer surface.Destroy()
	openDev, err := instance.EnumerateAdapters(nil)[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	defer openDev.Device.Destroy()

	if err := surface.Configure(openDev.Device, &hal.SurfaceConfiguration{
		Width:  4,
		Height: 4,
		Format: gputypes.TextureFormatBGRA8Unorm,
		Usage:  gputypes.TextureUsageRenderAttachment,
	}); err != nil {
		t.Fatal(err)
	}
	defer surface.Unconfigure(openDev.Device)
	acquired, err := surface.AcquireTexture(nil)
	if err != nil {
		t.Fatal(err)
	}

	cause := errors.New("surface lost")
	a, err := NewHALAdapter(openDev.Device, failingPresentQueue{Queue: openDev.Queue, err: cause}, gputypes.BackendEmpty)
	if err != nil {
		t.Fatal(err)
	}
	color, err := a.registerSurfaceDrawable(surface, acquired.Texture, gputypes.TextureFormatBGRA8Unorm, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	q, _ := a.CreateCommandQueue()
	cmd, _ := a.CreateCommandBuffer(q)
	if err := a.PresentTexture(cmd, color); err != nil {
		t.Fatal(err)
	}

	err = a.Submit(q, cmd)
	if !errors.Is(err, gpucore.ErrPresentFailed) || !errors.Is(err, cause) {
		t.Fatalf("Submit() = %v, want ErrPresentFailed wrapping %v", err, cause)
	}
	if err := a.Submit(q, cmd); err == nil || errors.Is(err, gpucore.ErrPresentFailed) {
		t.Errorf("second Submit() = %v, want an already-ended error", err)
	}

	a.DestroyCommandBuffer(cmd)
	a.DestroyTexture(color)
	a.DestroyCommandQueue(q)
	a.Close()
}

func TestHALAdapterSubmitOpenPass(t *testing.T) {
	a := newTestAdapter(t)

	color, _ := a.CreateTexture(&gpucore.TextureDesc{Width: 2, Height: 2, Format: gpucore.TextureFormatBGRA8Unorm})
	depth, _ := a.CreateTexture(&gpucore.TextureDesc{Width: 2, Height: 2, Format: gpucore.TextureFormatDepth24PlusStencil8})
	fb, err := a.CreateFramebuffer(color, depth)
	if err != nil {
		t.Fatal(err)
	}
	q, _ := a.CreateCommandQueue()
	cmd, _ := a.CreateCommandBuffer(q)
	enc, err := a.BeginRenderPass(cmd, fb, &gpucore.RenderPassDesc{})
	if err != nil {
		t.Fatalf("BeginRenderPass() = %v", err)
	}

	if err := a.Submit(q, cmd); !errors.Is(err, ErrPassOpen) {
		t.Fatalf("Submit() with open pass = %v, want ErrPassOpen", err)
	}
	a.EndEncoding(enc)
	if err := a.Submit(q, cmd); err != nil {
		t.Fatalf("Submit() = %v", err)
	}
	if err := a.Submit(q, cmd); err == nil {
		t.Error("second Submit() should fail")
	}

	a.DestroyCommandBuffer(cmd)
	a.DestroyFramebuffer(fb)
	a.DestroyTexture(color)
	a.DestroyTexture(depth)
	a.DestroyCommandQueue(q)
	if n := a.LiveHandles(); n != 0 {
		t.Errorf("LiveHandles() = %d", n)
	}
}

func TestHALAdapterDiscardUnsubmitted(t *testing.T) {
	a := newTestAdapter(t)
	q, _ := a.CreateCommandQueue()
	cmd, err := a.CreateCommandBuffer(q)
	if err != nil {
		t.Fatal(err)
	}
	a.DestroyCommandBuffer(cmd)
	a.DestroyCommandBuffer(cmd)
	if a.InFlight() != 0 {
		t.Error("unsubmitted command buffer went in flight")
	}
	a.DestroyCommandQueue(q)
}

func TestHALAdapterDrawWithoutPipeline(t *testing.T) {
	a := newTestAdapter(t)
	color, _ := a.CreateTexture(&gpucore.TextureDesc{Width: 2, Height: 2, Format: gpucore.TextureFormatRGBA8Unorm})
	depth, _ := a.CreateTexture(&gpucore.TextureDesc{Width: 2, Height: 2, Format: gpucore.TextureFormatDepth16Unorm})
	fb, err := a.CreateFramebuffer(color, depth)
	if err != nil {
		t.Fatal(err)
	}
	q, _ := a.CreateCommandQueue()
	cmd, _ := a.CreateCommandBuffer(q)
	enc, err := a.BeginRenderPass(cmd, fb, &gpucore.RenderPassDesc{})
	if err != nil {
		t.Fatal(err)
	}
	// Skipped with a warning; must not panic.
	a.DrawIndexed(enc, 3)
	a.BindVertexBuffer(enc, 4242, 0)
	a.EndEncoding(enc)
	a.EndEncoding(enc)

	a.DestroyCommandBuffer(cmd)
	a.DestroyFramebuffer(fb)
	a.DestroyTexture(color)
	a.DestroyTexture(depth)
	a.DestroyCommandQueue(q)
	if n := a.LiveHandles(); n != 0 {
		t.Errorf("LiveHandles() = %d", n)
	}
}
