package qdrant

import (
	"context"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/blocksearch/v1/logger"
	"github.com/Aleph-Alpha/blocksearch/v1/vectordb"
)

// FXModule provides the Qdrant Config, *QdrantClient and vectordb.Service,
// and closes the client when the application stops.
//
// Dependencies required by this module:
// - a logger.Logger
var FXModule = fx.Module("qdrant",
	fx.Provide(
		NewConfig,
		NewQdrantClient,
		func(c *QdrantClient) vectordb.Service { return c },
	),
	fx.Invoke(RegisterLifecycle),
)

// NewConfig reads the Qdrant configuration from the environment.
func NewConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RegisterLifecycle closes the client on shutdown.
func RegisterLifecycle(lc fx.Lifecycle, client *QdrantClient, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := client.Close(); err != nil {
				log.Warn("failed to close qdrant client", err, nil)
			}
			return nil
		},
	})
}
