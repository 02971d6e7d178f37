package embedding

import (
	"fmt"
	"time"
)

// DefaultModel is used when EMBEDDING_MODEL is not set.
const DefaultModel = "intfloat/multilingual-e5-large"

// Config holds the settings of the embedding client.
//
// EMBEDDING_ENDPOINT must point to the root of an OpenAI-compatible inference
// service, including the version segment (for example http://localhost:8080/v1).
// The client appends /embeddings itself.
type Config struct {
	// Inference endpoint and auth
	Endpoint string `yaml:"endpoint" envconfig:"EMBEDDING_ENDPOINT" default:"http://localhost:8080/v1"`
	APIKey   string `yaml:"api_key" envconfig:"EMBEDDING_API_KEY"`
	Model    string `yaml:"model" envconfig:"EMBEDDING_MODEL" default:"intfloat/multilingual-e5-large"`

	// Dimension skips the sample request when set. Zero means ask the model.
	Dimension int `yaml:"dimension" envconfig:"EMBEDDING_DIMENSION" default:"0"`

	// Prefixes prepended to queries and documents for asymmetric models (e5: "query: ", "passage: ").
	QueryPrefix    string `yaml:"query_prefix" envconfig:"EMBEDDING_QUERY_PREFIX"`
	DocumentPrefix string `yaml:"document_prefix" envconfig:"EMBEDDING_DOCUMENT_PREFIX"`

	// Normalize scales every vector to unit length.
	Normalize bool `yaml:"normalize" envconfig:"EMBEDDING_NORMALIZE" default:"false"`

	// BatchSize is the maximum number of inputs per request.
	BatchSize int `yaml:"batch_size" envconfig:"EMBEDDING_BATCH_SIZE" default:"32"`

	// RequestsPerSecond limits outgoing requests. Zero disables the limit.
	RequestsPerSecond float64 `yaml:"requests_per_second" envconfig:"EMBEDDING_REQUESTS_PER_SECOND" default:"0"`

	HTTPTimeoutS int `yaml:"http_timeout_seconds" envconfig:"EMBEDDING_HTTP_TIMEOUT_SECONDS" default:"30"`
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("embedding: missing EMBEDDING_ENDPOINT")
	}
	if c.Model == "" {
		return fmt.Errorf("embedding: missing EMBEDDING_MODEL")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("embedding: EMBEDDING_BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.Dimension < 0 {
		return fmt.Errorf("embedding: EMBEDDING_DIMENSION must not be negative")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("embedding: EMBEDDING_REQUESTS_PER_SECOND must not be negative")
	}
	return nil
}

func (c *Config) httpTimeout() time.Duration {
	if c.HTTPTimeoutS <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.HTTPTimeoutS) * time.Second
}
