package store

import "fmt"

// Config controls how records are loaded into the vector store.
type Config struct {
	// BatchSize is the number of records embedded and upserted together.
	BatchSize int `yaml:"batch_size" envconfig:"STORE_BATCH_SIZE" default:"10"`

	// ProgressEvery reports progress after this many records.
	ProgressEvery int `yaml:"progress_every" envconfig:"STORE_PROGRESS_EVERY" default:"10"`

	// Concurrency is the number of batches in flight. 1 is sequential.
	Concurrency int `yaml:"concurrency" envconfig:"STORE_CONCURRENCY" default:"1"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{BatchSize: 10, ProgressEvery: 10, Concurrency: 1}
}

// Validate checks that all values are positive.
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("store: STORE_BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.ProgressEvery <= 0 {
		return fmt.Errorf("store: STORE_PROGRESS_EVERY must be positive, got %d", c.ProgressEvery)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("store: STORE_CONCURRENCY must be positive, got %d", c.Concurrency)
	}
	return nil
}
