package embedcache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Aleph-Alpha/blocksearch/v1/logger"
)

// vectorStore is the key/value surface the cached embedder needs.
type vectorStore interface {
	// get returns one entry per key, nil for a miss.
	get(ctx context.Context, keys []string) ([][]float32, error)
	set(ctx context.Context, entries map[string][]float32) error
}

// Cache stores embedding vectors in Redis.
type Cache struct {
	client redis.UniversalClient
	cfg    Config
	log    logger.Logger
}

// NewCache connects to Redis and pings it. It returns a nil *Cache when the
// cache is disabled.
func NewCache(cfg Config, log logger.Logger) (*Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	cfg.applyDefaults()

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout+cfg.ReadTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("embedcache: ping %s: %w", cfg.Addr(), err)
	}

	log.Info("Embedding cache connected", nil, map[string]interface{}{
		"address": cfg.Addr(),
		"db":      cfg.DB,
		"ttl":     cfg.TTL.String(),
	})
	return &Cache{client: client, cfg: cfg, log: log}, nil
}

func (c *Cache) get(ctx context.Context, keys []string) ([][]float32, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(keys))
	for i, raw := range values {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		v, err := decodeVector([]byte(s))
		if err != nil {
			c.log.Warn("Dropping corrupt cache entry", err, map[string]interface{}{"key": keys[i]})
			continue
		}
		out[i] = v
	}
	return out, nil
}

func (c *Cache) set(ctx context.Context, entries map[string][]float32) error {
	if len(entries) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for k, v := range entries {
		pipe.Set(ctx, k, encodeVector(v), c.cfg.TTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Close closes the Redis connection. Safe on a nil *Cache.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
