package render

import (
	"log/slog"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/gpucore"
)

// PipelineKey identifies the fixed-function state a render pipeline was
// built for. A frame whose textures or options produce a different key
// gets a new pipeline.
type PipelineKey struct {
	ColorFormat gpucore.TextureFormat
	DepthFormat gpucore.TextureFormat
	Cull        gpucore.CullMode
	Winding     gpucore.WindingMode
}

// pipelineCache holds the pipeline for the most recent key.
type pipelineCache struct {
	key      PipelineKey
	pipeline *rhi.RenderPipelineState
}

// get returns the cached pipeline if key matches, otherwise builds a new
// one and destroys the stale pipeline. A failed build leaves the cache as
// it was.
func (c *pipelineCache) get(log *slog.Logger, key PipelineKey, build func(PipelineKey) (*rhi.RenderPipelineState, error)) (*rhi.RenderPipelineState, error) {
	if c.pipeline != nil && c.key == key {
		return c.pipeline, nil
	}

	p, err := build(key)
	if err != nil {
		return nil, err
	}
	if c.pipeline != nil {
		log.Debug("render: pipeline key changed, rebuilding",
			"old_color", c.key.ColorFormat, "new_color", key.ColorFormat,
			"old_depth", c.key.DepthFormat, "new_depth", key.DepthFormat)
		c.pipeline.Destroy()
	} else {
		log.Debug("render: pipeline created", "color", key.ColorFormat, "depth", key.DepthFormat)
	}
	c.key, c.pipeline = key, p
	return p, nil
}

func (c *pipelineCache) current() *rhi.RenderPipelineState {
	return c.pipeline
}

func (c *pipelineCache) destroy() {
	if c.pipeline != nil {
		c.pipeline.Destroy()
		c.pipeline = nil
	}
	c.key = PipelineKey{}
}
