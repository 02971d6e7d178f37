package embedcache

import (
	"context"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/blocksearch/v1/embedding"
	"github.com/Aleph-Alpha/blocksearch/v1/logger"
)

// FXModule provides the cache and decorates embedding.Embedder with it.
// It is a plain option group rather than an fx.Module so the decoration
// applies to the whole application.
//
// Dependencies required by this module:
// - embedding.Embedder and logger.Logger
var FXModule = fx.Options(
	fx.Provide(
		NewConfig,
		NewCache,
	),
	fx.Decorate(Wrap),
	fx.Invoke(RegisterLifecycle),
)

// NewConfig reads the cache settings from the environment.
func NewConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RegisterLifecycle closes the Redis connection on shutdown.
func RegisterLifecycle(lc fx.Lifecycle, cache *Cache, log logger.Logger) {
	if cache == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := cache.Close(); err != nil {
				log.Warn("failed to close embedding cache", err, nil)
			}
			return nil
		},
	})
}

var _ embedding.Embedder = (*Embedder)(nil)
