package render

import (
	"log/slog"
	"time"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/gpucore"
)

// Option configures a Session.
type Option func(*options)

type options struct {
	clock         func() time.Time
	clearColor    rhi.Color
	cubes         []Cube
	cullMode      gpucore.CullMode
	windingMode   gpucore.WindingMode
	angleRollback bool
	logger        *slog.Logger
}

func defaultOptions() options {
	return options{
		clock:         time.Now,
		clearColor:    rhi.RGBA(0.1, 0.1, 0.15, 1),
		cubes:         DefaultCubes(),
		cullMode:      gpucore.CullModeBack,
		windingMode:   gpucore.WindingModeClockwise,
	}
}

// WithClock sets the time source used for animation deltas.
// Tests pass a fake clock for deterministic angles.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithClearColor sets the background color.
func WithClearColor(c rhi.Color) Option {
	return func(o *options) {
		o.clearColor = c
	}
}

// WithCubes replaces the scene. The slice is copied.
func WithCubes(cubes []Cube) Option {
	return func(o *options) {
		o.cubes = append([]Cube(nil), cubes...)
	}
}

// WithCullMode sets the pipeline cull mode. Default: CullModeBack.
func WithCullMode(m gpucore.CullMode) Option {
	return func(o *options) {
		o.cullMode = m
	}
}

// WithWindingMode sets the front-face winding. Default: clockwise.
func WithWindingMode(m gpucore.WindingMode) Option {
	return func(o *options) {
		o.windingMode = m
	}
}

// WithAngleRollback controls whether a failed frame keeps its animation
// advance. By default angles advance before any GPU work and a failed frame
// keeps the advance. When enabled, angles move only on frames that were
// submitted.
func WithAngleRollback(enabled bool) Option {
	return func(o *options) {
		o.angleRollback = enabled
	}
}

// WithLogger sets the session logger. By default the session logs through
// rhi.Logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
