package qdrant

import (
	"context"
	"fmt"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/blocksearch/v1/logger"
	"github.com/Aleph-Alpha/blocksearch/v1/vectordb"
)

// QdrantClient wraps the official Qdrant Go client and implements
// vectordb.Service for the rest of the pipeline.
type QdrantClient struct {
	api *qdrant.Client
	cfg Config
	log logger.Logger
}

const (
	defaultBatchSize = 200 // chunk size for batch upserts
	scrollPageSize   = 256
	healthTimeout    = 5 * time.Second
)

var _ vectordb.Service = (*QdrantClient)(nil)

// NewQdrantClient constructs a new QdrantClient and validates connectivity
// via a health check, so an unreachable server fails fast.
//
// Example:
//
//	client, err := qdrant.NewQdrantClient(cfg, log)
func NewQdrantClient(cfg Config, log logger.Logger) (*QdrantClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug("Connecting to Qdrant", nil, map[string]interface{}{
		"endpoint": cfg.Endpoint(),
		"tls":      cfg.UseTLS,
	})

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   cfg.Host,
		Port:                   cfg.Port,
		APIKey:                 cfg.APIKey,
		UseTLS:                 cfg.UseTLS,
		SkipCompatibilityCheck: !cfg.CheckCompatibility,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize qdrant client: %w", err)
	}

	qc := &QdrantClient{
		api: client,
		cfg: cfg,
		log: log,
	}

	if err := qc.healthCheck(context.Background()); err != nil {
		_ = client.Close()
		return nil, err
	}

	return qc, nil
}

// healthCheck verifies the availability of the Qdrant service.
func (c *QdrantClient) healthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	resp, err := c.api.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("cannot reach qdrant at %s: %w", c.cfg.Endpoint(), err)
	}

	c.log.Debug("Qdrant health check passed", nil, map[string]interface{}{
		"title":    resp.GetTitle(),
		"version":  resp.GetVersion(),
		"endpoint": c.cfg.Endpoint(),
	})
	return nil
}

// withTimeout bounds a single request by the configured timeout.
func (c *QdrantClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

// Close closes the underlying gRPC connection.
func (c *QdrantClient) Close() error {
	if c.api == nil {
		return nil
	}
	c.log.Debug("Closing Qdrant client", nil, nil)
	return c.api.Close()
}
