// Package gpumock provides an in-memory gpucore.Adapter for tests.
//
// The mock tracks the liveness of every handle it hands out and records a
// violation whenever a handle is destroyed twice, used after destruction,
// or otherwise misused. Tests call Verify to assert a clean run.
package gpumock

import (
	"errors"
	"fmt"

	"github.com/gogpu/rhi/gpucore"
)

// Kind names the resource type behind a handle.
type Kind string

// Resource kinds.
const (
	KindCommandQueue     Kind = "command queue"
	KindCommandBuffer    Kind = "command buffer"
	KindBuffer           Kind = "buffer"
	KindTexture          Kind = "texture"
	KindShaderStages     Kind = "shader stages"
	KindVertexInputState Kind = "vertex input state"
	KindFramebuffer      Kind = "framebuffer"
	KindRenderPipeline   Kind = "render pipeline"
	KindEncoder          Kind = "encoder"
)

// Command is one recorded command in call order. Encoder commands carry
// their encoder; PresentTexture and Submit carry InvalidID.
type Command struct {
	Op      string
	Encoder gpucore.EncoderID
	Args    []uint64
}

type resource struct {
	kind     Kind
	live     bool
	borrowed bool

	// buffer
	data []byte

	// texture
	format        uint32
	width, height uint32

	// command buffer
	submitted bool
	open      gpucore.EncoderID
	buffers   []gpucore.BufferID

	// encoder
	cmd gpucore.CommandBufferID

	// framebuffer
	color, depth gpucore.TextureID

	// vertex input state
	attrs []gpucore.VertexAttribute
}

type failure struct {
	err       error
	remaining int // <0 fails forever
}

// Adapter is a liveness-tracking gpucore.Adapter.
type Adapter struct {
	backend gpucore.BackendType

	nextID    uint64
	resources map[uint64]*resource
	calls     map[string]int
	failures  map[string]*failure

	commands   []Command
	passes     []gpucore.RenderPassDesc
	submitted  []gpucore.CommandBufferID
	presented  []gpucore.TextureID
	violations []error
}

// New creates a mock adapter reporting the given backend type.
func New(backend gpucore.BackendType) *Adapter {
	return &Adapter{
		backend:   backend,
		nextID:    1,
		resources: make(map[uint64]*resource),
		calls:     make(map[string]int),
		failures:  make(map[string]*failure),
	}
}

// NewDrawable registers a backend-owned texture, such as a swapchain image.
// Destroying it through the adapter is a violation.
func (a *Adapter) NewDrawable(format gpucore.TextureFormat, width, height uint32) gpucore.TextureID {
	return a.NewDrawableRaw(uint32(format), width, height)
}

// NewDrawableRaw is NewDrawable with an arbitrary numeric format, for
// exercising unknown backend values.
func (a *Adapter) NewDrawableRaw(format, width, height uint32) gpucore.TextureID {
	id := a.alloc(&resource{kind: KindTexture, borrowed: true, format: format, width: width, height: height})
	return gpucore.TextureID(id)
}

// FailNext makes the next n calls to op return a null handle.
func (a *Adapter) FailNext(op string, n int) {
	a.failures[op] = &failure{remaining: n}
}

// FailWith makes every call to op fail with err until ClearFailures.
func (a *Adapter) FailWith(op string, err error) {
	a.failures[op] = &failure{err: err, remaining: -1}
}

// ClearFailures removes all injected failures.
func (a *Adapter) ClearFailures() {
	a.failures = make(map[string]*failure)
}

// Calls returns how many times op was called, including failed calls.
func (a *Adapter) Calls(op string) int {
	return a.calls[op]
}

// Commands returns the commands recorded so far.
func (a *Adapter) Commands() []Command {
	return append([]Command(nil), a.commands...)
}

// CommandOps returns the op names of the recorded commands.
func (a *Adapter) CommandOps() []string {
	ops := make([]string, len(a.commands))
	for i, c := range a.commands {
		ops[i] = c.Op
	}
	return ops
}

// RenderPasses returns the descriptor of every render pass begun, in order.
func (a *Adapter) RenderPasses() []gpucore.RenderPassDesc {
	return append([]gpucore.RenderPassDesc(nil), a.passes...)
}

// Submitted returns the submitted command buffers in order.
func (a *Adapter) Submitted() []gpucore.CommandBufferID {
	return append([]gpucore.CommandBufferID(nil), a.submitted...)
}

// Presented returns the textures scheduled for presentation in order.
func (a *Adapter) Presented() []gpucore.TextureID {
	return append([]gpucore.TextureID(nil), a.presented...)
}

// Live returns the number of live, adapter-owned handles of the given kind.
func (a *Adapter) Live(kind Kind) int {
	n := 0
	for _, r := range a.resources {
		if r.kind == kind && r.live && !r.borrowed {
			n++
		}
	}
	return n
}

// IsLive reports whether the handle exists and has not been destroyed.
func (a *Adapter) IsLive(id uint64) bool {
	r, ok := a.resources[id]
	return ok && r.live
}

// VertexAttributes returns the attributes retained for a vertex input state.
func (a *Adapter) VertexAttributes(id gpucore.VertexInputStateID) []gpucore.VertexAttribute {
	if r, ok := a.resources[uint64(id)]; ok {
		return r.attrs
	}
	return nil
}

// FramebufferColor returns the current color attachment of a framebuffer.
func (a *Adapter) FramebufferColor(id gpucore.FramebufferID) gpucore.TextureID {
	if r, ok := a.resources[uint64(id)]; ok {
		return r.color
	}
	return gpucore.InvalidID
}

// BufferData returns the contents a buffer was created with.
func (a *Adapter) BufferData(id gpucore.BufferID) []byte {
	if r, ok := a.resources[uint64(id)]; ok && r.kind == KindBuffer {
		return r.data
	}
	return nil
}

// FramebufferDepth returns the current depth attachment of a framebuffer.
func (a *Adapter) FramebufferDepth(id gpucore.FramebufferID) gpucore.TextureID {
	if r, ok := a.resources[uint64(id)]; ok {
		return r.depth
	}
	return gpucore.InvalidID
}

// Violations returns every lifetime violation recorded so far.
func (a *Adapter) Violations() []error {
	return append([]error(nil), a.violations...)
}

// Verify returns all violations joined, or nil for a clean run.
func (a *Adapter) Verify() error {
	return errors.Join(a.violations...)
}

func (a *Adapter) violate(format string, args ...any) {
	a.violations = append(a.violations, fmt.Errorf("gpumock: "+format, args...))
}

func (a *Adapter) alloc(r *resource) uint64 {
	id := a.nextID
	a.nextID++
	r.live = true
	a.resources[id] = r
	return id
}

// begin counts a call and reports an injected failure for op.
func (a *Adapter) begin(op string) (failed bool, err error) {
	a.calls[op]++
	f, ok := a.failures[op]
	if !ok || f.remaining == 0 {
		return false, nil
	}
	if f.remaining > 0 {
		f.remaining--
	}
	return true, f.err
}

// use checks that id is a live handle of the given kind.
func (a *Adapter) use(op string, id uint64, kind Kind) *resource {
	r, ok := a.resources[id]
	switch {
	case id == gpucore.InvalidID:
		a.violate("%s: invalid %s handle", op, kind)
		return nil
	case !ok:
		a.violate("%s: unknown %s handle %d", op, kind, id)
		return nil
	case r.kind != kind:
		a.violate("%s: handle %d is a %s, want %s", op, id, r.kind, kind)
		return nil
	case !r.live:
		a.violate("%s: use after free of %s %d", op, kind, id)
		return nil
	}
	return r
}

// destroy marks id dead, recording double frees and frees of borrowed handles.
func (a *Adapter) destroy(op string, id uint64, kind Kind) *resource {
	a.calls[op]++
	r, ok := a.resources[id]
	switch {
	case id == gpucore.InvalidID:
		a.violate("%s: destroy of invalid %s handle", op, kind)
		return nil
	case !ok:
		a.violate("%s: destroy of unknown %s handle %d", op, kind, id)
		return nil
	case r.kind != kind:
		a.violate("%s: handle %d is a %s, want %s", op, id, r.kind, kind)
		return nil
	case !r.live:
		a.violate("%s: double free of %s %d", op, kind, id)
		return nil
	case r.borrowed:
		a.violate("%s: destroy of borrowed %s %d", op, kind, id)
		return nil
	}
	r.live = false
	return r
}

func (a *Adapter) record(op string, enc gpucore.EncoderID, args ...uint64) {
	a.commands = append(a.commands, Command{Op: op, Encoder: enc, Args: args})
}

// BackendType implements gpucore.Adapter.
func (a *Adapter) BackendType() gpucore.BackendType {
	a.calls["BackendType"]++
	return a.backend
}
