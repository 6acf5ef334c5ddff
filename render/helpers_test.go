package render

import (
	"testing"
	"time"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/gpucore"
	"github.com/gogpu/rhi/internal/gpumock"
)

func newMockDevice(t *testing.T) (*rhi.Device, *gpumock.Adapter) {
	t.Helper()
	mock := gpumock.New(gpucore.BackendMetal)
	dev, err := rhi.NewDevice(mock)
	if err != nil {
		t.Fatalf("NewDevice() = %v", err)
	}
	t.Cleanup(func() {
		if err := mock.Verify(); err != nil {
			t.Errorf("backend violations:\n%v", err)
		}
	})
	return dev, mock
}

func wrap(t *testing.T, dev *rhi.Device, id gpucore.TextureID) *rhi.Texture {
	t.Helper()
	tex, err := dev.WrapDrawable(id)
	if err != nil {
		t.Fatalf("WrapDrawable() = %v", err)
	}
	return tex
}

// frameTextures returns a BGRA8 drawable and a Depth32Float texture.
func frameTextures(t *testing.T, dev *rhi.Device, mock *gpumock.Adapter, w, h uint32) (color, depth *rhi.Texture) {
	t.Helper()
	color = wrap(t, dev, mock.NewDrawable(gpucore.TextureFormatBGRA8Unorm, w, h))
	depth = wrap(t, dev, mock.NewDrawable(gpucore.TextureFormatDepth32Float, w, h))
	return color, depth
}

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// newReadySession returns an initialized session on a mock device driven by
// a fake clock. It is torn down at cleanup.
func newReadySession(t *testing.T, opts ...Option) (*Session, *gpumock.Adapter, *fakeClock) {
	t.Helper()
	dev, mock := newMockDevice(t)
	clock := newFakeClock()
	s, err := NewSession(dev, append([]Option{WithClock(clock.Now)}, opts...)...)
	if err != nil {
		t.Fatalf("NewSession() = %v", err)
	}
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize() = %v", err)
	}
	t.Cleanup(s.Teardown)
	return s, mock, clock
}
