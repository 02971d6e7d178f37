package mcpserver

import (
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
)

// FXModule provides the tool server Config and *Server. The caller runs
// Server.Serve; the module registers no lifecycle hook of its own because
// the stdio transport owns the process's stdin and stdout.
//
// Dependencies required by this module:
// - vectordb.Service, embedding.Embedder, *search.Searcher and logger.Logger
var FXModule = fx.Module("mcpserver",
	fx.Provide(
		NewConfig,
		NewServerFromParams,
	),
)

// NewConfig reads the tool server settings from the environment.
func NewConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}
