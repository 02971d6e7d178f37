package search

// Config holds search defaults.
type Config struct {
	// Limit is used when a query asks for no explicit count.
	Limit int `yaml:"limit" envconfig:"QDRANT_SEARCH_LIMIT" default:"10"`
}
