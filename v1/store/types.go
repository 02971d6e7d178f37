package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Aleph-Alpha/blocksearch/v1/blocks"
	"github.com/Aleph-Alpha/blocksearch/v1/vectordb"
)

// pointNamespace maps block ids onto Qdrant point ids.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("blocksearch/block"))

// ErrDimensionMismatch is returned when an existing collection was created for
// a different embedding size.
var ErrDimensionMismatch = errors.New("vector size mismatch")

// Failure is a record that could not be stored.
type Failure struct {
	// Index is the position of the record in the input.
	Index   int
	BlockID string
	Err     error
}

func (f Failure) Error() string {
	return fmt.Sprintf("block %s: %v", f.BlockID, f.Err)
}

// Report summarizes a Load run.
type Report struct {
	Collection string
	Total      int
	Stored     int
	Failures   []Failure
	Duration   time.Duration
}

// Progress is called with the number of processed records and the total.
type Progress func(done, total int)

// PointID returns the deterministic point id of a block, so storing the same
// block again overwrites it.
func PointID(blockID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(blockID)).String()
}

// Payload builds the stored payload of a record.
func Payload(r blocks.Record) map[string]any {
	return map[string]any{
		vectordb.PayloadDocument: r.Content,
		vectordb.PayloadMetadata: r.Metadata.Map(),
	}
}
