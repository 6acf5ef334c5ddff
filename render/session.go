// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/gpucore"
)

// Session errors.
var (
	// ErrNilDevice is returned by NewSession without a device.
	ErrNilDevice = errors.New("render: device is nil")

	// ErrNotInitialized is returned by Render before Initialize.
	ErrNotInitialized = errors.New("render: session not initialized")

	// ErrTornDown is returned when using a session after Teardown.
	ErrTornDown = errors.New("render: session torn down")

	// ErrNoFrameTextures is returned when Render gets a nil or destroyed
	// color or depth texture.
	ErrNoFrameTextures = errors.New("render: missing frame textures")
)

// State is the lifecycle state of a Session.
type State int

const (
	// StateUninitialized means the fixed resources have not been created.
	StateUninitialized State = iota

	// StateReady means Render may be called.
	StateReady

	// StateTornDown means every session resource has been released.
	StateTornDown
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateReady:
		return "Ready"
	case StateTornDown:
		return "TornDown"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session renders the rotating cubes scene, one frame per Render call.
//
// A session owns its vertex and index buffers, vertex layout, shaders,
// command queue, framebuffer and pipeline. It never owns the Device or the
// frame textures passed to Render.
//
// Session is not safe for concurrent use.
type Session struct {
	device *rhi.Device
	opts   options
	log    *slog.Logger
	state  State

	// Fixed resources, created by Initialize in this order.
	vertices *rhi.Buffer
	indices  *rhi.Buffer
	input    *rhi.VertexInputState
	shaders  *rhi.ShaderStages
	queue    *rhi.CommandQueue

	// Created lazily by the first Render.
	framebuffer *rhi.Framebuffer
	pipelines   pipelineCache

	cubes      []Cube
	lastFrame  time.Time
	frameIndex uint64
}

// NewSession creates an uninitialized session rendering on device.
func NewSession(device *rhi.Device, opts ...Option) (*Session, error) {
	if device == nil {
		return nil, fmt.Errorf("%w: %w", rhi.ErrSessionCreationFailed, ErrNilDevice)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = rhi.Logger()
	}
	return &Session{
		device: device,
		opts:   o,
		log:    log,
		cubes:  o.cubes,
	}, nil
}

// Initialize creates the fixed resources. On failure every resource created
// so far is destroyed and the session stays uninitialized. Calling
// Initialize on a ready session is a no-op.
func (s *Session) Initialize() error {
	switch s.state {
	case StateReady:
		return nil
	case StateTornDown:
		return fmt.Errorf("%w: %w", rhi.ErrSessionInitializationFailed, ErrTornDown)
	}

	if err := s.createFixed(); err != nil {
		s.destroyFixed()
		return fmt.Errorf("%w: %w", rhi.ErrSessionInitializationFailed, err)
	}
	s.lastFrame = s.opts.clock()
	s.state = StateReady
	s.log.Debug("render: session initialized", "cubes", len(s.cubes), "backend", s.device.BackendType())
	return nil
}

func (s *Session) createFixed() error {
	var err error
	s.vertices, err = s.device.CreateBuffer(rhi.BufferDesc{
		Label: "cube vertices",
		Type:  gpucore.BufferTypeVertex,
		Data:  vertexBytes(cubeVertices[:]),
	})
	if err != nil {
		return fmt.Errorf("vertex buffer: %w", err)
	}
	s.indices, err = s.device.CreateBuffer(rhi.BufferDesc{
		Label: "cube indices",
		Type:  gpucore.BufferTypeIndex,
		Data:  indexBytes(cubeIndices[:]),
	})
	if err != nil {
		return fmt.Errorf("index buffer: %w", err)
	}
	s.input, err = s.device.CreateVertexInputState(cubeVertexInputDesc())
	if err != nil {
		return fmt.Errorf("vertex input: %w", err)
	}
	s.shaders, err = s.device.CreateShaderStages(cubeShaderDesc())
	if err != nil {
		return fmt.Errorf("shaders: %w", err)
	}
	s.queue, err = s.device.CreateCommandQueue()
	if err != nil {
		return fmt.Errorf("command queue: %w", err)
	}
	return nil
}

// destroyFixed releases the fixed resources in reverse creation order.
// Destroy on a nil wrapper is a no-op.
func (s *Session) destroyFixed() {
	s.queue.Destroy()
	s.shaders.Destroy()
	s.input.Destroy()
	s.indices.Destroy()
	s.vertices.Destroy()
	s.queue, s.shaders, s.input, s.indices, s.vertices = nil, nil, nil, nil, nil
}

// Render advances the animation and draws one frame into color, using
// depth as the depth buffer, then presents color and submits.
//
// The framebuffer is created on the first call; later calls rebind its
// color attachment, and its depth attachment when depth is a different
// texture. The pipeline is rebuilt only when the texture formats or the
// session's cull and winding modes change.
//
// Errors match rhi.ErrFrameUpdateFailed. A failed frame leaves the
// session usable; with angle rollback enabled the cube angles are
// unchanged too.
func (s *Session) Render(color, depth *rhi.Texture) error {
	switch s.state {
	case StateUninitialized:
		return frameError(ErrNotInitialized)
	case StateTornDown:
		return frameError(ErrTornDown)
	}
	if color.IsDestroyed() || depth.IsDestroyed() {
		return frameError(ErrNoFrameTextures)
	}

	now := s.opts.clock()
	dt := float32(now.Sub(s.lastFrame).Seconds())
	s.lastFrame = now
	if dt < 0 {
		dt = 0
	}

	angles := s.angles()
	s.advance(dt)

	if err := s.encodeFrame(color, depth); err != nil {
		if s.opts.angleRollback {
			s.restore(angles)
		}
		return frameError(err)
	}
	s.frameIndex++
	return nil
}

func frameError(err error) error {
	return fmt.Errorf("%w: %w", rhi.ErrFrameUpdateFailed, err)
}

func (s *Session) advance(dt float32) {
	for i := range s.cubes {
		s.cubes[i].Angle += s.cubes[i].Speed * dt
	}
}

func (s *Session) angles() []float32 {
	out := make([]float32, len(s.cubes))
	for i := range s.cubes {
		out[i] = s.cubes[i].Angle
	}
	return out
}

func (s *Session) restore(angles []float32) {
	for i := range s.cubes {
		s.cubes[i].Angle = angles[i]
	}
}

func (s *Session) encodeFrame(color, depth *rhi.Texture) error {
	if err := s.bindTargets(color, depth); err != nil {
		return err
	}
	pipeline, err := s.pipelineFor(color, depth)
	if err != nil {
		return err
	}

	cb, err := s.queue.CreateCommandBuffer()
	if err != nil {
		return fmt.Errorf("command buffer: %w", err)
	}
	defer cb.Destroy()

	// Uniform buffers only need to outlive Submit.
	var uniforms []*rhi.Buffer
	defer func() {
		for _, u := range uniforms {
			u.Destroy()
		}
	}()

	enc, err := cb.CreateRenderEncoder(s.framebuffer, rhi.RenderPassDesc{
		Color: rhi.ColorAttachment{
			LoadAction:  gpucore.LoadActionClear,
			StoreAction: gpucore.StoreActionStore,
			ClearColor:  s.opts.clearColor,
		},
		Depth: rhi.DefaultDepthAttachment(),
	})
	if err != nil {
		return fmt.Errorf("render encoder: %w", err)
	}
	defer enc.Close()

	if err := enc.BindVertexBuffer(s.vertices, 0); err != nil {
		return err
	}
	if err := enc.BindIndexBuffer(s.indices, gpucore.IndexFormatUInt16); err != nil {
		return err
	}
	if err := enc.BindPipeline(pipeline); err != nil {
		return err
	}

	aspect := color.AspectRatio()
	for i := range s.cubes {
		c := &s.cubes[i]
		mvp := MVP(c.Position, c.Axis, c.Angle, aspect)
		if i == 0 && s.frameIndex == 0 {
			s.log.Debug("render: first frame MVP", "aspect", aspect, "angle", c.Angle, "mvp", mvp.String())
		}

		u, err := s.device.CreateBuffer(rhi.BufferDesc{
			Label: "mvp",
			Type:  gpucore.BufferTypeUniform,
			Data:  matrixBytes(mvp),
		})
		if err != nil {
			return fmt.Errorf("cube %d uniforms: %w", i, err)
		}
		uniforms = append(uniforms, u)

		if err := enc.BindUniformBuffer(u, UniformSlot); err != nil {
			return err
		}
		if err := enc.DrawIndexed(CubeIndexCount); err != nil {
			return fmt.Errorf("cube %d: %w", i, err)
		}
	}
	enc.EndEncoding()

	if err := cb.Present(color); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	if err := s.queue.Submit(cb); err != nil {
		return err
	}
	return nil
}

// bindTargets creates the framebuffer on first use and otherwise points it
// at this frame's textures.
func (s *Session) bindTargets(color, depth *rhi.Texture) error {
	if s.framebuffer == nil {
		fb, err := s.device.CreateFramebuffer(color, depth)
		if err != nil {
			return err
		}
		s.framebuffer = fb
		return nil
	}
	if err := s.framebuffer.UpdateDrawable(color); err != nil {
		return fmt.Errorf("update color attachment: %w", err)
	}
	if err := s.framebuffer.UpdateDepth(depth); err != nil {
		return fmt.Errorf("update depth attachment: %w", err)
	}
	return nil
}

func (s *Session) pipelineFor(color, depth *rhi.Texture) (*rhi.RenderPipelineState, error) {
	colorFormat, err := color.Format()
	if err != nil {
		return nil, fmt.Errorf("color format: %w", err)
	}
	depthFormat, err := depth.Format()
	if err != nil {
		return nil, fmt.Errorf("depth format: %w", err)
	}
	key := PipelineKey{
		ColorFormat: colorFormat,
		DepthFormat: depthFormat,
		Cull:        s.opts.cullMode,
		Winding:     s.opts.windingMode,
	}
	return s.pipelines.get(s.log, key, s.buildPipeline)
}

func (s *Session) buildPipeline(key PipelineKey) (*rhi.RenderPipelineState, error) {
	return s.device.CreateRenderPipeline(rhi.RenderPipelineDesc{
		Label:        "cubes",
		VertexInput:  s.input,
		Shaders:      s.shaders,
		ColorFormat:  key.ColorFormat,
		DepthFormat:  key.DepthFormat,
		CullMode:     key.Cull,
		WindingMode:  key.Winding,
		UniformSlots: []uint32{UniformSlot},
	})
}

// Teardown releases every session resource in reverse creation order.
// The device and the frame textures are left alone. Teardown is
// idempotent.
func (s *Session) Teardown() {
	if s.state == StateTornDown {
		return
	}
	s.pipelines.destroy()
	if s.framebuffer != nil {
		s.framebuffer.Destroy()
		s.framebuffer = nil
	}
	s.destroyFixed()
	s.state = StateTornDown
	s.log.Debug("render: session torn down", "frames", s.frameIndex)
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.state
}

// FrameIndex returns the number of frames rendered successfully.
func (s *Session) FrameIndex() uint64 {
	return s.frameIndex
}

// Cubes returns a copy of the scene.
func (s *Session) Cubes() []Cube {
	return append([]Cube(nil), s.cubes...)
}

// Pipeline returns the cached pipeline, or nil before the first frame.
func (s *Session) Pipeline() *rhi.RenderPipelineState {
	return s.pipelines.current()
}

// PipelineKey returns the key of the cached pipeline.
func (s *Session) PipelineKey() PipelineKey {
	return s.pipelines.key
}

// Framebuffer returns the session framebuffer, or nil before the first
// frame.
func (s *Session) Framebuffer() *rhi.Framebuffer {
	return s.framebuffer
}
