package tracer

import (
	"context"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/blocksearch/v1/logger"
)

// FXModule provides a Uber FX module that configures distributed tracing for your application.
//
// The module:
// 1. Provides the tracer Config from the environment and the *Tracer client
// 2. Registers shutdown hooks to flush spans on application termination
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewConfig,
		NewClient,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// NewConfig reads the tracer configuration from the environment.
func NewConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RegisterTracerLifecycle registers shutdown hooks for the tracer with the FX lifecycle.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Debug("shutting down tracer", nil, nil)
			return tracer.Shutdown(ctx)
		},
	})
}
