package native

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Option configures a Platform.
type Option func(*options)

type options struct {
	backend     gputypes.Backend
	width       uint32
	height      uint32
	colorFormat gputypes.TextureFormat
	depthFormat gputypes.TextureFormat
	window      gpucontext.WindowProvider
	display     uintptr
	handle      uintptr
	spirv       bool
}

func defaultOptions() options {
	return options{
		backend:     gputypes.BackendVulkan,
		width:       800,
		height:      600,
		colorFormat: gputypes.TextureFormatBGRA8Unorm,
		depthFormat: gputypes.TextureFormatDepth32Float,
	}
}

// WithBackend selects the HAL backend. The default is Vulkan.
// gputypes.BackendEmpty selects the headless noop backend.
func WithBackend(b gputypes.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithSize sets the initial frame size in pixels.
// Ignored when a window provider is set.
func WithSize(width, height uint32) Option {
	return func(o *options) {
		o.width = width
		o.height = height
	}
}

// WithColorFormat sets the color target format.
func WithColorFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.colorFormat = f
	}
}

// WithDepthFormat sets the depth target format.
func WithDepthFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.depthFormat = f
	}
}

// WithWindow takes the frame size from a host window.
func WithWindow(w gpucontext.WindowProvider) Option {
	return func(o *options) {
		o.window = w
	}
}

// WithSurfaceHandles renders to a window surface created from native
// display and window handles. Without it the platform renders offscreen.
func WithSurfaceHandles(display, window uintptr) Option {
	return func(o *options) {
		o.display = display
		o.handle = window
	}
}

// WithSPIRV hands precompiled SPIR-V to the HAL instead of WGSL.
func WithSPIRV(on bool) Option {
	return func(o *options) {
		o.spirv = on
	}
}

// frameSize returns the configured frame size, preferring the window's.
func (o *options) frameSize() (uint32, uint32) {
	if o.window != nil {
		w, h := o.window.Size()
		if w > 0 && h > 0 {
			return uint32(w), uint32(h) //nolint:gosec // checked positive above
		}
	}
	return o.width, o.height
}
