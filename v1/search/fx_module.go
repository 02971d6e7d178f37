package search

import (
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
)

// FXModule provides the search Config and *Searcher.
var FXModule = fx.Module("search",
	fx.Provide(
		NewConfig,
		NewSearcherFromParams,
	),
)

// NewConfig reads the search defaults from the environment.
func NewConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
