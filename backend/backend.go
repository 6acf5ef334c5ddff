package backend

import (
	"errors"

	"github.com/gogpu/rhi"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Platform is an opened native GPU backend. It owns the backend device and
// hands out the textures of each frame.
//
// Platforms are registered via Register() and opened via Open() or
// Default().
type Platform interface {
	// Device returns the rhi device bound to the backend device.
	Device() *rhi.Device

	// FrameTextures returns the borrowed color and depth targets of the
	// current frame. They stay valid until PresentFrame.
	FrameTextures() (color, depth *rhi.Texture, err error)

	// PresentFrame ends the current frame.
	PresentFrame() error

	// Resize recreates the frame targets at the given size in pixels.
	Resize(width, height uint32) error

	// Close releases the backend. Every wrapper created from Device must
	// be destroyed first.
	Close() error
}

// Config holds the settings shared by every platform.
type Config struct {
	// Width and Height are the initial frame size in pixels.
	Width  uint32
	Height uint32
}
