package native

import "errors"

// Package errors for the native backend.
var (
	// ErrNoGPU is returned when no HAL adapter is available.
	ErrNoGPU = errors.New("native: no GPU adapter available")

	// ErrBackendNotRegistered is returned when the requested HAL backend was
	// not compiled in.
	ErrBackendNotRegistered = errors.New("native: HAL backend not registered")

	// ErrUnsupported is returned for enum values the HAL cannot express.
	ErrUnsupported = errors.New("native: unsupported value")

	// ErrUnknownHandle is returned when an ID does not name a live object.
	ErrUnknownHandle = errors.New("native: unknown handle")

	// ErrInvalidDimensions is returned when width or height is zero.
	ErrInvalidDimensions = errors.New("native: invalid dimensions")

	// ErrShaderValidation is returned when WGSL source fails to compile.
	ErrShaderValidation = errors.New("native: shader validation failed")

	// ErrPassOpen is returned when submitting a command buffer whose render
	// pass has not ended.
	ErrPassOpen = errors.New("native: render pass still open")

	// ErrClosed is returned by a Platform after Close.
	ErrClosed = errors.New("native: platform closed")

	// ErrNoHALDevice is returned when a gpucontext provider does not expose
	// HAL device and queue handles.
	ErrNoHALDevice = errors.New("native: provider has no HAL device")
)
