package vectordb

import "context"

// Service is the common interface for the vector store behind the pipeline.
// It keeps the store, search and tool-server code independent of the
// Qdrant SDK, and lets tests substitute an in-memory implementation.
//
//go:generate mockgen -source=interface.go -destination=mock_service.go -package=vectordb
type Service interface {
	// EnsureCollection creates a collection if it doesn't exist.
	// Safe to call multiple times; a no-op if the collection already exists.
	EnsureCollection(ctx context.Context, name string, vectorSize uint64) error

	// CollectionExists reports whether the collection is present.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// Insert upserts embeddings into a collection. Existing IDs are overwritten.
	Insert(ctx context.Context, collectionName string, inputs []EmbeddingInput) error

	// Search performs a similarity search. Results are ordered by descending score.
	Search(ctx context.Context, req SearchRequest) ([]SearchResult, error)

	// Scroll returns every point of a collection without a query vector.
	Scroll(ctx context.Context, collectionName string) ([]SearchResult, error)

	// GetCollection retrieves metadata about a collection.
	GetCollection(ctx context.Context, name string) (*Collection, error)
}
