// Package qdrant implements vectordb.Service on top of the official Qdrant
// Go client (gRPC).
//
// The store, search and tool-server packages only ever see [vectordb.Service];
// this package is the one place that knows about Qdrant points, payload keys
// and the gRPC client. It is wired through Fx and reads its settings from the
// environment.
//
// # Core Features
//
//   - Managed client lifecycle with Fx integration (closed on stop)
//   - URL based configuration: scheme selects TLS, REST port 6333 maps to gRPC 6334
//   - Health check on construction, so an unreachable server fails fast
//   - Idempotent collection creation with cosine distance
//   - Chunked upserts that wait for persistence
//   - Similarity search and full-collection scroll that treat a missing
//     collection as empty
//   - Metadata filters (exact, any-of, numeric range, datetime range, OR groups)
//     converted from [vectordb.FilterSet]
//   - Optional named vectors for collections shared with other tools
//
// # Configuration
//
// Configuration comes from the environment:
//
//	QDRANT_URL                  http://localhost:6334 (https enables TLS, 6333 maps to 6334)
//	QDRANT_API_KEY              optional
//	QDRANT_VECTOR_NAME          optional named vector
//	QDRANT_TIMEOUT              per-request timeout, default 30s
//	QDRANT_CHECK_COMPATIBILITY  client/server version check, default false
//
// Every request is bounded by QDRANT_TIMEOUT; a paged operation such as Scroll
// applies it per page.
//
// # Basic Usage
//
//	cfg, err := qdrant.NewConfig()
//	if err != nil {
//	    return err
//	}
//	client, err := qdrant.NewQdrantClient(cfg, log)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	// Create the collection on first use
//	if err := client.EnsureCollection(ctx, "novel_blocks", 1024); err != nil {
//	    return err
//	}
//
//	// Upsert points; an existing ID is overwritten
//	err = client.Insert(ctx, "novel_blocks", []vectordb.EmbeddingInput{{
//	    ID:     store.PointID("64f1"),
//	    Vector: vec,
//	    Payload: map[string]any{
//	        vectordb.PayloadDocument: "The keeper climbed the stairs.",
//	        vectordb.PayloadMetadata: map[string]any{"block_id": "64f1", "word_count": 5},
//	    },
//	}})
//
//	// Search
//	results, err := client.Search(ctx, vectordb.SearchRequest{
//	    CollectionName: "novel_blocks",
//	    Vector:         queryVec,
//	    TopK:           5,
//	})
//	for _, r := range results {
//	    fmt.Printf("%s %.4f %s\n", r.ID, r.Score, r.Document())
//	}
//
// # FX Module Integration
//
// FXModule provides Config, *QdrantClient and vectordb.Service and needs a
// logger.Logger:
//
//	app := fx.New(
//	    logger.FXModule,
//	    qdrant.FXModule,
//	    fx.Invoke(func(db vectordb.Service) { ... }),
//	)
//
// # Payload Layout
//
// The pipeline writes points whose payload holds the text under "document"
// and the record metadata under "metadata". Numeric IDs are sent as integer
// point IDs and everything else as a UUID, which Qdrant validates. An empty ID
// or vector fails before any request is sent.
//
// # Filtering
//
// Filters are built with the [vectordb] constructors and converted to native
// Qdrant filters. Metadata fields are addressed under the "metadata." payload
// prefix, so vectordb.NewMetadataMatch("block_id", ...) becomes a condition on
// "metadata.block_id". None of the fields needs a payload index.
//
// Exact match:
//
//	filters := vectordb.NewFilterSet(
//	    vectordb.Must(vectordb.NewMetadataMatch("block_id", "64f1")),
//	)
//
// Any of several values (IN):
//
//	filters := vectordb.NewFilterSet(
//	    vectordb.Must(vectordb.NewMetadataMatchAny("block_id", "64f1", "64f2")),
//	)
//
// Numeric range, e.g. blocks of 20 to 200 words:
//
//	lo, hi := 20.0, 200.0
//	filters := vectordb.NewFilterSet(
//	    vectordb.Must(vectordb.NewMetadataNumericRange("word_count", vectordb.NumericRange{
//	        Gte: &lo,
//	        Lte: &hi,
//	    })),
//	)
//
// Datetime range on RFC 3339 strings such as metadata.created_at:
//
//	filters := vectordb.NewFilterSet(
//	    vectordb.Must(vectordb.NewMetadataTimeRange("created_at",
//	        vectordb.TimeRangeBetween(from, to))),
//	)
//
// A value that may be stored either as a string or as an integer is matched
// with an OR group:
//
//	vectordb.AnyOf(
//	    vectordb.NewMetadataMatch("word_count", "42"),
//	    vectordb.NewMetadataMatch("word_count", int64(42)),
//	)
//
// Conditions that cannot be converted (an empty range, an empty value list)
// are dropped, and a filter set left without conditions is sent as no filter.
//
// # Missing Collections
//
// Search and Scroll return an empty result for a collection that does not
// exist instead of an error, so a fresh deployment answers queries with
// "nothing found". GetCollection and Insert still fail for it.
//
// # Performance Considerations
//
// Insert splits its input into upserts of 200 points, each sent with
// Wait=true. Scroll fetches pages of 256 points until Qdrant reports no next
// offset.
//
// # Thread Safety
//
// A *QdrantClient is safe for concurrent use; the loader calls Insert from
// several goroutines at once.
//
// # Package Layout
//
//	qdrant/
//	├── client.go      // client construction, health check, Close
//	├── configs.go     // Config and URL parsing
//	├── operations.go  // vectordb.Service implementation
//	├── converter.go   // vectordb filters and results <-> Qdrant types
//	├── utils.go       // point ID and collection info helpers
//	└── fx_module.go   // Fx module and lifecycle
package qdrant
