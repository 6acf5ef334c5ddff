package native

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi/backend"
	"github.com/gogpu/rhi/gpucore"
)

type fakeWindow struct{ w, h int }

func (f fakeWindow) Size() (int, int) { return f.w, f.h }
func (f fakeWindow) ScaleFactor() float64 { return 1 }
func (f fakeWindow) RequestRedraw() {}

func openNoop(t *testing.T, opts ...Option) *Platform {
	t.Helper()
	p, err := Open(append([]Option{WithBackend(gputypes.BackendEmpty)}, opts...)...)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestOpenNoop(t *testing.T) {
	p := openNoop(t, WithSize(320, 240))

	if p.Device() == nil {
		t.Fatal("Device() = nil")
	}
	if got := p.Device().BackendType(); got != gpucore.BackendVulkan {
		t.Errorf("BackendType() = %v, want Vulkan", got)
	}
	if p.Info().Name == "" {
		t.Error("Info().Name is empty")
	}
	if w, h := p.Size(); w != 320 || h != 240 {
		t.Errorf("Size() = %dx%d", w, h)
	}
}

func TestOpenErrors(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{"zero size", []Option{WithBackend(gputypes.BackendEmpty), WithSize(0, 10)}, ErrInvalidDimensions},
		{"unregistered backend", []Option{WithBackend(gputypes.BackendDX12)}, ErrBackendNotRegistered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Open(tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				if p != nil {
					_ = p.Close()
				}
				t.Fatalf("Open() err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlatformWindowSize(t *testing.T) {
	p := openNoop(t, WithSize(1, 1), WithWindow(fakeWindow{w: 1024, h: 768}))
	if w, h := p.Size(); w != 1024 || h != 768 {
		t.Errorf("Size() = %dx%d, want window size 1024x768", w, h)
	}
}

func TestPlatformFrame(t *testing.T) {
	p := openNoop(t, WithSize(64, 32))
	a := p.Adapter()

	var depthID gpucore.TextureID
	for frame := range 3 {
		color, depth, err := p.FrameTextures()
		if err != nil {
			t.Fatalf("frame %d: FrameTextures() = %v", frame, err)
		}
		again, _, _ := p.FrameTextures()
		if again != color {
			t.Errorf("frame %d: FrameTextures() acquired twice", frame)
		}
		if color.Owned() || depth.Owned() {
			t.Errorf("frame %d: frame textures must be borrowed", frame)
		}
		if w, h := color.Size(); w != 64 || h != 32 {
			t.Errorf("frame %d: color size %dx%d", frame, w, h)
		}
		if f, _ := depth.Format(); f != gpucore.TextureFormatDepth32Float {
			t.Errorf("frame %d: depth format %v", frame, f)
		}
		if frame == 0 {
			depthID = depth.ID()
		} else if depth.ID() != depthID {
			t.Errorf("frame %d: depth ID changed from %d to %d", frame, depthID, depth.ID())
		}

		f := newFrameObjects(t, p.Device())
		cb, fb := f.encode(t, color, depth)
		if err := f.queue.Submit(cb); err != nil {
			t.Fatalf("frame %d: Submit() = %v", frame, err)
		}
		cb.Destroy()
		fb.Destroy()
		f.destroy()

		if err := p.PresentFrame(); err != nil {
			t.Fatalf("frame %d: PresentFrame() = %v", frame, err)
		}
		if !color.IsDestroyed() {
			t.Errorf("frame %d: color wrapper still live after PresentFrame", frame)
		}
		// Only the depth target stays registered between frames.
		if n := a.LiveHandles(); n != 1 {
			t.Errorf("frame %d: LiveHandles() = %d, want 1", frame, n)
		}
	}

	if err := p.PresentFrame(); err != nil {
		t.Errorf("PresentFrame() without a frame = %v", err)
	}
}

func TestPlatformResize(t *testing.T) {
	p := openNoop(t, WithSize(100, 100))

	_, first, err := p.FrameTextures()
	if err != nil {
		t.Fatal(err)
	}
	oldDepth := first.ID()
	if err := p.Resize(200, 50); err != nil {
		t.Fatalf("Resize() = %v", err)
	}
	if n := p.Adapter().LiveHandles(); n != 1 {
		t.Errorf("open frame not released on resize: %d live handles", n)
	}

	color, depth, err := p.FrameTextures()
	if err != nil {
		t.Fatal(err)
	}
	if w, h := color.Size(); w != 200 || h != 50 {
		t.Errorf("color size after resize = %dx%d", w, h)
	}
	if w, h := depth.Size(); w != 200 || h != 50 {
		t.Errorf("depth size after resize = %dx%d", w, h)
	}
	if depth.ID() == oldDepth {
		t.Error("depth target not re-registered on resize")
	}
	if err := p.Resize(200, 50); err != nil {
		t.Errorf("same-size Resize() = %v", err)
	}
	if err := p.Resize(0, 50); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Resize(0, 50) = %v, want ErrInvalidDimensions", err)
	}
}

func TestPlatformClose(t *testing.T) {
	p, err := Open(WithBackend(gputypes.BackendEmpty))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := p.FrameTextures(); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}

	if _, _, err := p.FrameTextures(); !errors.Is(err, ErrClosed) {
		t.Errorf("FrameTextures() after Close = %v, want ErrClosed", err)
	}
	if err := p.PresentFrame(); !errors.Is(err, ErrClosed) {
		t.Errorf("PresentFrame() after Close = %v, want ErrClosed", err)
	}
	if err := p.Resize(10, 10); !errors.Is(err, ErrClosed) {
		t.Errorf("Resize() after Close = %v, want ErrClosed", err)
	}
}

func TestPlatformProvider(t *testing.T) {
	p := openNoop(t)
	dp := p.Provider()

	if dp.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Errorf("offscreen SurfaceFormat() = %v, want Undefined", dp.SurfaceFormat())
	}
	info := dp.AdapterInfo()
	if info.Name != p.Info().Name {
		t.Errorf("AdapterInfo().Name = %q, want %q", info.Name, p.Info().Name)
	}

	borrowed, err := NewHALAdapterFromProvider(dp)
	if err != nil {
		t.Fatalf("NewHALAdapterFromProvider() = %v", err)
	}
	if borrowed.Device() != p.Adapter().Device() {
		t.Error("borrowed adapter uses a different device")
	}
	if borrowed.BackendType() != gpucore.BackendVulkan {
		t.Errorf("BackendType() = %v", borrowed.BackendType())
	}
}

type emptyProvider struct{}

func (emptyProvider) Device() gpucontext.Device { return "not a device" }
func (emptyProvider) Queue() gpucontext.Queue { return nil }
func (emptyProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }
func (emptyProvider) Adapter() gpucontext.Adapter { return nil }
func (emptyProvider) AdapterInfo() gpucontext.AdapterInfo { return gpucontext.AdapterInfo{} }

func TestNewHALAdapterFromProviderRejects(t *testing.T) {
	if _, err := NewHALAdapterFromProvider(nil); !errors.Is(err, ErrNoHALDevice) {
		t.Errorf("nil provider: %v", err)
	}
	if _, err := NewHALAdapterFromProvider(emptyProvider{}); !errors.Is(err, ErrNoHALDevice) {
		t.Errorf("foreign provider: %v", err)
	}
}

func TestAdapterType(t *testing.T) {
	tests := []struct {
		in   gputypes.DeviceType
		want gpucontext.AdapterType
	}{
		{gputypes.DeviceTypeDiscreteGPU, gpucontext.AdapterTypeDiscrete},
		{gputypes.DeviceTypeIntegratedGPU, gpucontext.AdapterTypeIntegrated},
		{gputypes.DeviceTypeCPU, gpucontext.AdapterTypeSoftware},
		{gputypes.DeviceTypeOther, gpucontext.AdapterTypeUnknown},
	}
	for _, tt := range tests {
		if got := adapterType(tt.in); got != tt.want {
			t.Errorf("adapterType(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRegisteredPlatforms(t *testing.T) {
	for _, name := range []string{backend.NameNoop, backend.NameVulkan} {
		if !backend.IsRegistered(name) {
			t.Errorf("%s platform not registered", name)
		}
	}

	p, err := backend.Open(backend.NameNoop, backend.Config{Width: 48, Height: 16})
	if err != nil {
		t.Fatalf("Open(noop) = %v", err)
	}
	defer p.Close()

	color, _, err := p.FrameTextures()
	if err != nil {
		t.Fatal(err)
	}
	if w, h := color.Size(); w != 48 || h != 16 {
		t.Errorf("color size = %dx%d, want 48x16", w, h)
	}
	if err := p.PresentFrame(); err != nil {
		t.Errorf("PresentFrame() = %v", err)
	}
}
