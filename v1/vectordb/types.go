package vectordb

// Payload keys shared by every writer and reader of the collection.
const (
	// PayloadDocument holds the text the vector was computed from.
	PayloadDocument = "document"

	// PayloadMetadata holds the record metadata object.
	PayloadMetadata = "metadata"
)

// SearchRequest represents a single similarity search query.
type SearchRequest struct {
	// CollectionName is the target collection to search in
	CollectionName string `json:"collectionName"`

	// Vector is the query embedding to find similar vectors for
	Vector []float32 `json:"vector"`

	// TopK is the maximum number of results to return
	TopK int `json:"maxResults"`

	// ScoreThreshold drops results scoring below it when set
	ScoreThreshold *float32 `json:"scoreThreshold,omitempty"`

	// Filters is optional metadata filtering (AND/OR/NOT logic)
	Filters *FilterSet `json:"filters,omitempty"`
}

// SearchResult represents a single search result with its similarity score.
// Payload is converted to plain Go values (map[string]any, []any, string, ...).
type SearchResult struct {
	// ID is the unique identifier of the matched point
	ID string `json:"id"`

	// Score is the similarity score (higher = more similar for cosine)
	Score float32 `json:"score"`

	// Payload contains the metadata stored with the vector
	Payload map[string]any `json:"payload"`
}

// Document returns the stored text of a result, or "" if absent.
func (r SearchResult) Document() string {
	s, _ := r.Payload[PayloadDocument].(string)
	return s
}

// Metadata returns the stored metadata object of a result, or nil if absent.
func (r SearchResult) Metadata() map[string]any {
	m, _ := r.Payload[PayloadMetadata].(map[string]any)
	return m
}

// EmbeddingInput is the input for inserting vectors into a collection.
type EmbeddingInput struct {
	// ID is the unique identifier for this embedding (UUID or unsigned integer)
	ID string `json:"id"`

	// Vector is the dense embedding representation
	Vector []float32 `json:"vector"`

	// Payload is optional metadata to store with the vector
	Payload map[string]any `json:"payload,omitempty"`
}

// Collection contains metadata about a vector collection.
type Collection struct {
	// Name is the unique identifier of the collection
	Name string `json:"name"`

	// Status indicates the operational state (e.g., "Green", "Yellow")
	Status string `json:"status"`

	// VectorSize is the dimension of vectors in this collection
	VectorSize int `json:"vectorSize"`

	// Distance is the similarity metric (e.g., "Cosine", "Dot", "Euclid")
	Distance string `json:"distance"`

	// VectorCount is the number of indexed vectors
	VectorCount uint64 `json:"vectorCount"`

	// PointCount is the number of stored points/documents
	PointCount uint64 `json:"pointCount"`
}
