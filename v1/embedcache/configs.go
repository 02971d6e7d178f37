package embedcache

import (
	"fmt"
	"time"
)

const (
	DefaultHost      = "localhost"
	DefaultPort      = 6379
	DefaultKeyPrefix = "blocksearch:emb:"
)

// Config controls the Redis-backed embedding cache.
type Config struct {
	// Enabled turns the cache on. When false the embedder is used as is.
	Enabled bool `yaml:"enabled" envconfig:"EMBEDDING_CACHE_ENABLED" default:"false"`

	// Host is the Redis server hostname or IP address
	Host string `yaml:"host" envconfig:"REDIS_HOST" default:"localhost"`

	// Port is the Redis server port
	Port int `yaml:"port" envconfig:"REDIS_PORT" default:"6379"`

	// Username is the Redis username for ACL authentication (Redis 6.0+)
	Username string `yaml:"username" envconfig:"REDIS_USERNAME"`

	// Password is the Redis password for authentication
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`

	// DB is the Redis database number to use
	DB int `yaml:"db" envconfig:"REDIS_DB" default:"0"`

	// TTL is how long a cached vector lives. Zero keeps it forever.
	TTL time.Duration `yaml:"ttl" envconfig:"EMBEDDING_CACHE_TTL" default:"168h"`

	// KeyPrefix namespaces cache keys.
	KeyPrefix string `yaml:"key_prefix" envconfig:"EMBEDDING_CACHE_PREFIX" default:"blocksearch:emb:"`

	// DialTimeout is the timeout for establishing new connections
	DialTimeout time.Duration `yaml:"dial_timeout" envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`

	// ReadTimeout is the timeout for socket reads
	ReadTimeout time.Duration `yaml:"read_timeout" envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
}

// Addr returns host:port.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
}
