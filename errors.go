package rhi

import (
	"errors"
	"fmt"

	"github.com/gogpu/rhi/gpucore"
)

// Backend handle errors.
var (
	// ErrNullHandle is returned when a backend factory call returns an invalid handle.
	ErrNullHandle = errors.New("rhi: backend returned a null handle")

	// ErrResourceCreationFailed is matched by every *ResourceError.
	ErrResourceCreationFailed = errors.New("rhi: resource creation failed")

	// ErrUnsupportedFormat is returned when a backend reports a texture format
	// outside the known set.
	ErrUnsupportedFormat = errors.New("rhi: unsupported texture format")

	// ErrInvalidDescriptor is returned when a creation descriptor fails validation.
	ErrInvalidDescriptor = errors.New("rhi: invalid descriptor")

	// ErrResourceDestroyed is returned when operating on a destroyed wrapper.
	ErrResourceDestroyed = errors.New("rhi: resource has been destroyed")

	// ErrNilAdapter is returned when creating a device without an adapter.
	ErrNilAdapter = errors.New("rhi: adapter is nil")

	// ErrInvalidBackend is returned when an adapter reports BackendInvalid.
	ErrInvalidBackend = errors.New("rhi: invalid backend type")
)

// Command submission errors.
var (
	// ErrEncoderEnded is returned when recording into an encoder after EndEncoding.
	ErrEncoderEnded = errors.New("rhi: render encoder has ended")

	// ErrEncoderActive is returned when submitting a command buffer whose
	// encoder has not ended.
	ErrEncoderActive = errors.New("rhi: command buffer has an active render encoder")

	// ErrAlreadySubmitted is returned when a command buffer is submitted twice
	// or recorded into after submission.
	ErrAlreadySubmitted = errors.New("rhi: command buffer already submitted")

	// ErrNoPipeline is returned when drawing without a bound pipeline.
	ErrNoPipeline = errors.New("rhi: no render pipeline bound")

	// ErrNoIndexBuffer is returned when issuing an indexed draw without an index buffer.
	ErrNoIndexBuffer = errors.New("rhi: no index buffer bound")

	// ErrForeignResource is returned when a resource from another device is used.
	ErrForeignResource = errors.New("rhi: resource belongs to a different device")

	// ErrPresentFailed is returned by Submit when the command buffer was
	// queued but presenting its drawable failed. The buffer is Submitted.
	ErrPresentFailed = gpucore.ErrPresentFailed
)

// Session errors. These are returned by the render package; they live here
// so that callers can match them without importing a particular session.
var (
	// ErrSessionCreationFailed is returned when a session cannot be constructed.
	ErrSessionCreationFailed = errors.New("rhi: session creation failed")

	// ErrSessionInitializationFailed is returned when a session's fixed
	// resources cannot be created.
	ErrSessionInitializationFailed = errors.New("rhi: session initialization failed")

	// ErrFrameUpdateFailed is returned when one frame cannot be rendered.
	ErrFrameUpdateFailed = errors.New("rhi: frame update failed")
)

// ResourceKind identifies the type of resource a factory creates.
type ResourceKind int

const (
	ResourceBuffer ResourceKind = iota
	ResourceTexture
	ResourceShaderStages
	ResourceVertexInputState
	ResourceFramebuffer
	ResourceRenderPipeline
	ResourceCommandQueue
	ResourceCommandBuffer
	ResourceRenderEncoder
)

// String returns the string representation of ResourceKind.
func (k ResourceKind) String() string {
	switch k {
	case ResourceBuffer:
		return "buffer"
	case ResourceTexture:
		return "texture"
	case ResourceShaderStages:
		return "shader stages"
	case ResourceVertexInputState:
		return "vertex input state"
	case ResourceFramebuffer:
		return "framebuffer"
	case ResourceRenderPipeline:
		return "render pipeline"
	case ResourceCommandQueue:
		return "command queue"
	case ResourceCommandBuffer:
		return "command buffer"
	case ResourceRenderEncoder:
		return "render encoder"
	default:
		return fmt.Sprintf("ResourceKind(%d)", int(k))
	}
}

// ResourceError reports a failed factory call for one kind of resource.
//
// It matches both ErrResourceCreationFailed and ErrNullHandle with errors.Is,
// and unwraps to the backend's cause.
type ResourceError struct {
	Kind ResourceKind
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("rhi: create %s: %v", e.Kind, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// Is reports whether target is ErrResourceCreationFailed or ErrNullHandle.
func (e *ResourceError) Is(target error) bool {
	return target == ErrResourceCreationFailed || target == ErrNullHandle
}

// newResourceError builds a ResourceError, substituting ErrNullHandle when
// the backend returned an invalid handle without an error.
func newResourceError(kind ResourceKind, err error) error {
	if err == nil {
		err = ErrNullHandle
	}
	return &ResourceError{Kind: kind, Err: err}
}
