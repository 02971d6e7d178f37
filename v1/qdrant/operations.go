package qdrant

import (
	"context"
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/blocksearch/v1/vectordb"
)

// EnsureCollection creates the collection with cosine distance if it is missing.
//
// It's safe to call this multiple times. If the collection already exists
// the function exits early without checking its vector size; callers that
// care compare GetCollection's VectorSize with their model.
//
// With QDRANT_VECTOR_NAME set the collection gets a single named vector of
// that name instead of the default unnamed one.
//
// Example:
//
//	dim, err := embedder.Dimension(ctx)
//	if err != nil {
//	    return err
//	}
//	if err := client.EnsureCollection(ctx, "novel_blocks", uint64(dim)); err != nil {
//	    return err
//	}
func (c *QdrantClient) EnsureCollection(ctx context.Context, name string, vectorSize uint64) error {
	if name == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if vectorSize == 0 {
		return fmt.Errorf("vector size must be greater than 0")
	}

	exists, err := c.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		c.log.Debug("Collection already exists", nil, map[string]interface{}{"collection": name})
		return nil
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req := &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig:  c.vectorsConfig(vectorSize),
	}
	if err := c.api.CreateCollection(ctx, req); err != nil {
		return fmt.Errorf("failed to create collection '%s': %w", name, err)
	}

	c.log.Info("Created collection", nil, map[string]interface{}{
		"collection":  name,
		"vector_size": vectorSize,
		"vector_name": c.cfg.VectorName,
	})
	return nil
}

func (c *QdrantClient) vectorsConfig(size uint64) *qdrant.VectorsConfig {
	params := &qdrant.VectorParams{
		Size:     size,
		Distance: qdrant.Distance_Cosine,
	}
	if c.cfg.VectorName == "" {
		return qdrant.NewVectorsConfig(params)
	}
	return qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
		c.cfg.VectorName: params,
	})
}

// CollectionExists reports whether the collection is present.
//
// Example:
//
//	ok, err := client.CollectionExists(ctx, "novel_blocks")
//	if err == nil && !ok {
//	    fmt.Println("run store first")
//	}
func (c *QdrantClient) CollectionExists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	exists, err := c.api.CollectionExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check collection '%s': %w", name, err)
	}
	return exists, nil
}

// Insert upserts embeddings in chunks of defaultBatchSize.
//
// Each chunk is sent with Wait=true so the points are persisted before the
// call returns. A point whose ID already exists is replaced, vector and
// payload alike. The first failing chunk stops the call; chunks before it
// stay written.
//
// Example:
//
//	err := client.Insert(ctx, "novel_blocks", []vectordb.EmbeddingInput{{
//	    ID:      store.PointID(record.Metadata.BlockID),
//	    Vector:  vec,
//	    Payload: store.Payload(record),
//	}})
func (c *QdrantClient) Insert(ctx context.Context, collectionName string, inputs []vectordb.EmbeddingInput) error {
	if collectionName == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if len(inputs) == 0 {
		return nil
	}

	for start := 0; start < len(inputs); start += defaultBatchSize {
		end := min(start+defaultBatchSize, len(inputs))

		points, err := c.toPoints(inputs[start:end])
		if err != nil {
			return err
		}
		if err := c.upsertBatch(ctx, collectionName, points); err != nil {
			return fmt.Errorf("batch upsert failed at [%d:%d]: %w", start, end, err)
		}
		c.log.Debug("Upserted batch", nil, map[string]interface{}{
			"collection": collectionName,
			"from":       start,
			"to":         end,
		})
	}

	return nil
}

func (c *QdrantClient) toPoints(inputs []vectordb.EmbeddingInput) ([]*qdrant.PointStruct, error) {
	points := make([]*qdrant.PointStruct, 0, len(inputs))
	for _, in := range inputs {
		if in.ID == "" {
			return nil, fmt.Errorf("point id cannot be empty")
		}
		if len(in.Vector) == 0 {
			return nil, fmt.Errorf("point %s has an empty vector", in.ID)
		}
		payload, err := qdrant.TryValueMap(in.Payload)
		if err != nil {
			return nil, fmt.Errorf("point %s has an unsupported payload: %w", in.ID, err)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      toPointID(in.ID),
			Vectors: c.vectors(in.Vector),
			Payload: payload,
		})
	}
	return points, nil
}

func (c *QdrantClient) vectors(v []float32) *qdrant.Vectors {
	if c.cfg.VectorName == "" {
		return qdrant.NewVectors(v...)
	}
	return qdrant.NewVectorsMap(map[string]*qdrant.Vector{
		c.cfg.VectorName: qdrant.NewVector(v...),
	})
}

func (c *QdrantClient) upsertBatch(ctx context.Context, collectionName string, points []*qdrant.PointStruct) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	wait := true
	req := &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         points,
		Wait:           &wait,
	}
	if _, err := c.api.Upsert(ctx, req); err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}
	return nil
}

// Search performs a similarity search ordered by descending score.
//
// Searching a collection that does not exist returns no results and no error.
// ScoreThreshold, when set, drops hits below it on the server side.
//
// Example:
//
//	min := float32(0.8)
//	results, err := client.Search(ctx, vectordb.SearchRequest{
//	    CollectionName: "novel_blocks",
//	    Vector:         queryVec,
//	    TopK:           5,
//	    ScoreThreshold: &min,
//	    Filters: vectordb.NewFilterSet(
//	        vectordb.Must(vectordb.NewMetadataMatch("block_id", "64f1")),
//	    ),
//	})
//	if err != nil {
//	    return err
//	}
//	for _, r := range results {
//	    fmt.Println(r.Score, r.Metadata()["block_id"], r.Document())
//	}
func (c *QdrantClient) Search(ctx context.Context, req vectordb.SearchRequest) ([]vectordb.SearchResult, error) {
	if err := validateSearchInput(req.CollectionName, req.Vector, req.TopK); err != nil {
		return nil, err
	}

	exists, err := c.CollectionExists(ctx, req.CollectionName)
	if err != nil {
		return nil, err
	}
	if !exists {
		c.log.Warn("Search on missing collection", nil, map[string]interface{}{
			"collection": req.CollectionName,
		})
		return []vectordb.SearchResult{}, nil
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	limit := uint64(req.TopK)
	query := &qdrant.QueryPoints{
		CollectionName: req.CollectionName,
		Query:          qdrant.NewQuery(req.Vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         convertVectorDBFilterSet(req.Filters),
		ScoreThreshold: req.ScoreThreshold,
	}
	if c.cfg.VectorName != "" {
		query.Using = qdrant.PtrOf(c.cfg.VectorName)
	}

	resp, err := c.api.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search in '%s' failed: %w", req.CollectionName, err)
	}

	return parseVectorDBSearchResults(resp)
}

// Scroll pages through every point of a collection. A missing collection
// yields no points.
//
// Points come back with their payload but without vectors, in Qdrant's ID
// order. The tool server uses it to list the collection descriptions it
// keeps in its own metadata collection.
//
// Example:
//
//	entries, err := client.Scroll(ctx, "__mcp_metadata__")
//	for _, e := range entries {
//	    fmt.Println(e.Document(), e.Metadata()["description"])
//	}
func (c *QdrantClient) Scroll(ctx context.Context, collectionName string) ([]vectordb.SearchResult, error) {
	exists, err := c.CollectionExists(ctx, collectionName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []vectordb.SearchResult{}, nil
	}

	var (
		results []vectordb.SearchResult
		offset  *qdrant.PointId
		limit   = uint32(scrollPageSize)
	)
	for {
		page, next, err := c.scrollPage(ctx, collectionName, offset, limit)
		if err != nil {
			return nil, err
		}
		results = append(results, page...)
		if next == nil {
			return results, nil
		}
		offset = next
	}
}

func (c *QdrantClient) scrollPage(ctx context.Context, collectionName string, offset *qdrant.PointId, limit uint32) ([]vectordb.SearchResult, *qdrant.PointId, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.GetPointsClient().Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: collectionName,
		Offset:         offset,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scroll of '%s' failed: %w", collectionName, err)
	}

	page, err := parseVectorDBRetrievedPoints(resp.GetResult())
	if err != nil {
		return nil, nil, err
	}
	return page, resp.GetNextPageOffset(), nil
}

// GetCollection retrieves metadata about a specific collection.
//
// It returns a decoupled vectordb.Collection with the status, point and
// indexed vector counts, vector size and distance metric. For named vectors,
// size and distance describe QDRANT_VECTOR_NAME, or the first named vector when
// that one is absent. They are zero and empty when no vector config is found.
//
// Example:
//
//	info, err := client.GetCollection(ctx, "novel_blocks")
//	if err != nil {
//	    return err
//	}
//	if info.VectorSize != dim {
//	    return fmt.Errorf("collection holds %d dimensions, model produces %d", info.VectorSize, dim)
//	}
func (c *QdrantClient) GetCollection(ctx context.Context, name string) (*vectordb.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	info, err := c.api.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection '%s': %w", name, err)
	}

	size, distance := extractVectorDetails(info, c.cfg.VectorName)

	return &vectordb.Collection{
		Name:        name,
		Status:      info.GetStatus().String(),
		VectorCount: derefUint64(info.IndexedVectorsCount),
		PointCount:  derefUint64(info.PointsCount),
		VectorSize:  size,
		Distance:    distance,
	}, nil
}
