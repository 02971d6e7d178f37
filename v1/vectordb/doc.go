// Package vectordb defines the database-agnostic contract the pipeline uses
// to talk to its vector store.
//
// The qdrant package implements [Service]; tests use the generated
// [MockService] or a small in-memory fake. Nothing outside the qdrant package
// imports the Qdrant SDK.
//
// # Payload Layout
//
// Every point written by the pipeline has the payload
//
//	{"document": "<text>", "metadata": {"block_id": "...", "word_count": 42, "created_at": "..."}}
//
// [SearchResult.Document] and [SearchResult.Metadata] read the two halves
// back without type assertions at every call site.
//
// # Filtering
//
// A [FilterSet] has three clauses: Must (AND), Should (OR) and MustNot (NOT).
// Conditions on record metadata use the NewMetadata* constructors, which mark
// the field as a [MetadataField] so the adapter prefixes it with "metadata.":
//
//	filters := vectordb.NewFilterSet(
//	    vectordb.Must(vectordb.NewMetadataMatch("block_id", "64f1")),
//	)
//
// Conditions compose; this one keeps blocks of 20 words or more created in
// 2024 whose block_id is one of two values:
//
//	lo := 20.0
//	filters := vectordb.NewFilterSet(vectordb.Must(
//	    vectordb.NewMetadataMatchAny("block_id", "64f1", "64f2"),
//	    vectordb.NewMetadataNumericRange("word_count", vectordb.NumericRange{Gte: &lo}),
//	    vectordb.NewMetadataTimeRange("created_at", vectordb.TimeRangeBetween(
//	        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
//	        time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
//	    )),
//	))
//
// A nil or empty FilterSet means no filtering; see [FilterSet.IsEmpty].
//
// # Testing
//
// Depend on [Service] and substitute the mock:
//
//	ctrl := gomock.NewController(t)
//	db := vectordb.NewMockService(ctrl)
//	db.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]vectordb.SearchResult{
//	    {ID: "p1", Score: 0.9, Payload: map[string]any{"document": "the keeper"}},
//	}, nil)
package vectordb
