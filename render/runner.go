package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/rhi"
)

// Platform supplies a device and per-frame textures. backend.Platform
// satisfies it.
type Platform interface {
	Device() *rhi.Device
	FrameTextures() (color, depth *rhi.Texture, err error)
	PresentFrame() error
}

// Runner drives a Session from a Platform with an initialize, update,
// teardown contract. Each Update renders one frame.
type Runner struct {
	platform Platform
	session  *Session
	skipped  uint64
}

// NewRunner creates a runner and its session on the platform's device.
func NewRunner(p Platform, opts ...Option) (*Runner, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: platform is nil", rhi.ErrSessionCreationFailed)
	}
	s, err := NewSession(p.Device(), opts...)
	if err != nil {
		return nil, err
	}
	return &Runner{platform: p, session: s}, nil
}

// Initialize creates the session's fixed resources.
func (r *Runner) Initialize() error {
	return r.session.Initialize()
}

// Update acquires the frame textures, renders and presents one frame.
// A failed frame is logged and returned; the runner stays usable and the
// caller decides whether to continue.
func (r *Runner) Update() error {
	color, depth, err := r.platform.FrameTextures()
	if err != nil {
		return r.skip(fmt.Errorf("%w: acquire frame: %w", rhi.ErrFrameUpdateFailed, err))
	}

	renderErr := r.session.Render(color, depth)
	// The frame is released even when rendering failed.
	presentErr := r.platform.PresentFrame()

	if renderErr != nil {
		return r.skip(errors.Join(renderErr, presentErr))
	}
	if presentErr != nil {
		return r.skip(fmt.Errorf("%w: present: %w", rhi.ErrFrameUpdateFailed, presentErr))
	}
	return nil
}

func (r *Runner) skip(err error) error {
	r.skipped++
	r.session.log.Warn("render: frame skipped", "frame", r.session.FrameIndex(), "skipped", r.skipped, "err", err)
	return err
}

// Teardown releases the session. The platform is not closed. Teardown is
// idempotent.
func (r *Runner) Teardown() {
	r.session.Teardown()
}

// Session returns the driven session.
func (r *Runner) Session() *Session {
	return r.session
}

// Skipped returns the number of frames that failed.
func (r *Runner) Skipped() uint64 {
	return r.skipped
}
