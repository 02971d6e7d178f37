package objectstore

import (
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
)

// FXModule provides the object store Config and *Store.
var FXModule = fx.Module("objectstore",
	fx.Provide(
		NewConfig,
		NewStore,
	),
)

// NewConfig reads the MinIO settings from the environment.
func NewConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
