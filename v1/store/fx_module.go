package store

import (
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
)

// FXModule provides the store Config and *Loader.
//
// Dependencies required by this module:
// - vectordb.Service, embedding.Embedder and logger.Logger
// - optionally metrics.MetricsCollector and *tracer.Tracer
var FXModule = fx.Module("store",
	fx.Provide(
		NewConfig,
		NewLoaderFromParams,
	),
)

// NewConfig reads the loader settings from the environment.
func NewConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}
