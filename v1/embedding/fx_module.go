package embedding

import (
	"context"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
)

// FXModule wires the embedding client into Fx.
//
// It provides:
//   - Config    (NewConfig)
//   - *Client   (NewClientFromParams)
//   - Embedder  (backed by *Client)
//   - Lifecycle hook (RegisterEmbeddingLifecycle)
var FXModule = fx.Module(
	"embedding",

	fx.Provide(
		NewConfig,
		NewClientFromParams,
		func(c *Client) Embedder { return c },
	),

	fx.Invoke(RegisterEmbeddingLifecycle),
)

// NewConfig reads the embedding configuration from the environment.
func NewConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RegisterEmbeddingLifecycle closes the client on application shutdown.
func RegisterEmbeddingLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
