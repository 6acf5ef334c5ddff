package native

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi/backend"
)

func init() {
	backend.Register(backend.NameVulkan, factory(gputypes.BackendVulkan))
	backend.Register(backend.NameNoop, factory(gputypes.BackendEmpty))
}

func factory(b gputypes.Backend) backend.Factory {
	return func(cfg backend.Config) (backend.Platform, error) {
		opts := []Option{WithBackend(b)}
		if cfg.Width > 0 && cfg.Height > 0 {
			opts = append(opts, WithSize(cfg.Width, cfg.Height))
		}
		p, err := Open(opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

var _ backend.Platform = (*Platform)(nil)
