package embedding

import (
	"context"
	"errors"
)

// ErrEmptyInput is returned when a text to embed is empty.
var ErrEmptyInput = errors.New("embedding: empty input")

// Embedder computes dense vectors for text. The same model must be used for
// stored documents and for queries against them.
//
//go:generate mockgen -source=interface.go -destination=mock_embedder.go -package=embedding
type Embedder interface {
	// EmbedDocuments returns one vector per text, in input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery returns the vector of a search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the vector size produced by the model.
	Dimension(ctx context.Context) (int, error)

	// Model returns the model name.
	Model() string
}
