// Package logger provides structured logging for the block pipeline.
//
// It wraps go.uber.org/zap behind a small interface so packages log with a
// message, an optional error, and optional field maps:
//
//	log := logger.NewLoggerClient(logger.Config{Level: logger.Info, ServiceName: "store"})
//	log.Info("Stored batch", nil, map[string]interface{}{"size": 10})
//
// Entries are JSON on stderr. Commands keep stdout for human-readable output,
// so the two streams can be redirected independently.
//
// With tracing enabled, the *WithContext variants add trace_id and span_id
// from the active OpenTelemetry span.
//
// # FX Module Integration
//
//	app := fx.New(
//	    logger.FXModule, // Provides Config, *LoggerClient and Logger
//	)
//
// The level is read from ZAP_LOGGER_LEVEL (debug, info, warning, error).
package logger
