package search

import (
	"errors"
	"time"
)

var (
	// ErrEmptyQuery is returned for a blank query text.
	ErrEmptyQuery = errors.New("search: empty query")

	// ErrInvalidWordRange is returned for negative or crossed word-count bounds.
	ErrInvalidWordRange = errors.New("search: invalid word count range")
)

// Query is a similarity search request.
type Query struct {
	Text       string
	Collection string

	// Limit is the maximum number of results. Zero or less uses Config.Limit.
	Limit int

	// Filters are exact matches on metadata fields, e.g.
	// {"block_id": {"64f1"}}. Several values for one key match any of them.
	Filters map[string][]string

	// MinWords and MaxWords bound metadata.word_count inclusively. Zero
	// leaves that side open.
	MinWords int
	MaxWords int

	// CreatedAfter and CreatedBefore bound metadata.created_at when set.
	CreatedAfter  time.Time
	CreatedBefore time.Time

	// ScoreThreshold drops results scoring below it when set.
	ScoreThreshold *float32
}

// Result is one ranked hit.
type Result struct {
	ID       string
	Score    float32
	Content  string
	Metadata map[string]any
}
