// Package backend provides a pluggable registry of native GPU platforms.
//
// A platform owns a backend device and the frame targets a render session
// draws into. Platforms are registered by name and selected at runtime.
//
// # Platform Registration
//
// Platforms are registered via init() functions. Importing the native
// package registers the Vulkan and noop HAL platforms:
//
//	import _ "github.com/gogpu/rhi/backend/native"
//
// # Platform Selection
//
// Use Default() to open the best available platform, or Open() to request
// a specific one by name:
//
//	// Open the default (best available) platform
//	p, err := backend.Default(backend.Config{Width: 800, Height: 600})
//
//	// Or request a specific platform
//	p, err := backend.Open(backend.NameNoop, backend.Config{Width: 800, Height: 600})
//
// # Frame Loop
//
//	color, depth, err := p.FrameTextures()
//	// ... encode into color and depth, present color, submit ...
//	err = p.PresentFrame()
//
// Close the platform after destroying every wrapper created from its
// Device.
package backend
