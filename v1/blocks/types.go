package blocks

import (
	"errors"
	"time"
)

// DefaultField is the source field holding the block text.
const DefaultField = "LLMOutput"

// DefaultOutputFile is the file the preprocess command writes when no output is given.
const DefaultOutputFile = "block_data_preprocessed.json"

// ErrUnsupportedShape is returned when the source document is neither a bare
// array nor a {"data":{"data":[...]}} envelope.
var ErrUnsupportedShape = errors.New("blocks: unsupported JSON structure")

// Record is one preprocessed block.
type Record struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Metadata is the minimal metadata kept for every block.
type Metadata struct {
	BlockID   string `json:"block_id"`
	WordCount int    `json:"word_count"`
	CreatedAt string `json:"created_at"`
}

// Map returns the metadata as a payload object.
func (m Metadata) Map() map[string]any {
	return map[string]any{
		"block_id":   m.BlockID,
		"word_count": m.WordCount,
		"created_at": m.CreatedAt,
	}
}

// Options controls Preprocess.
type Options struct {
	// Field is the source field holding the text. Defaults to DefaultField.
	Field string

	// Now is the run timestamp used for records without createdAt.
	// Defaults to time.Now.
	Now func() time.Time
}

// Stats summarizes a Preprocess run.
type Stats struct {
	// Total is the number of source items.
	Total int
	// Kept is the number of records produced.
	Kept int
	// Skipped is the number of items without usable text.
	Skipped int
}
