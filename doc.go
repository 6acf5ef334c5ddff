// Package rhi provides a small render hardware interface for real-time 3D.
//
// # Overview
//
// rhi exposes a backend-agnostic set of primitives (device, command queue,
// buffers, shader stages, pipeline state, framebuffers, render encoders)
// that map onto a native GPU API through the [gpucore.Adapter] interface.
// The backend/native package implements that interface on gogpu/wgpu.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/rhi"
//	    "github.com/gogpu/rhi/backend"
//	    _ "github.com/gogpu/rhi/backend/native"
//	)
//
//	p, err := backend.Open("")
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	dev := p.Device()
//	queue, _ := dev.CreateCommandQueue()
//	defer queue.Destroy()
//
// # Ownership
//
// Every wrapper exclusively owns its backend handle and destroys it at most
// once; Destroy is idempotent on all types. Two things are borrowed and
// never destroyed by rhi:
//   - the [Device], which belongs to the platform
//   - drawable textures from [Device.WrapDrawable], which belong to the swapchain
//
// A wrapper must not outlive the Device that created it.
//
// # Command Recording
//
// Recording is a linear, single-use state machine:
//
//	CommandQueue -> CreateCommandBuffer -> CommandBuffer (Recording)
//	CommandBuffer -> CreateRenderEncoder -> RenderCommandEncoder (Armed)
//	RenderCommandEncoder -> Bind*/DrawIndexed ... -> EndEncoding (Disarmed)
//	CommandBuffer -> Present -> CommandQueue.Submit (Submitted)
//
// # Errors
//
// Factories return a [*ResourceError] when the backend reports a failure or
// a null handle. It matches [ErrResourceCreationFailed] and [ErrNullHandle]
// with errors.Is.
package rhi

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
