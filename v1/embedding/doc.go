// Package embedding computes text embeddings through an OpenAI-compatible
// inference endpoint.
//
// # Overview
//
// Client implements Embedder. Documents and queries go through the same model;
// asymmetric models such as intfloat/multilingual-e5-large can be given
// separate prefixes:
//
//	EMBEDDING_QUERY_PREFIX="query: "
//	EMBEDDING_DOCUMENT_PREFIX="passage: "
//
// # Configuration
//
//	EMBEDDING_ENDPOINT              base URL, default http://localhost:8080/v1
//	EMBEDDING_API_KEY               bearer token, optional
//	EMBEDDING_MODEL                 default intfloat/multilingual-e5-large
//	EMBEDDING_DIMENSION             vector size; 0 asks the model once
//	EMBEDDING_NORMALIZE             L2-normalize vectors
//	EMBEDDING_BATCH_SIZE            inputs per request, default 32
//	EMBEDDING_REQUESTS_PER_SECOND   client-side rate limit, 0 disables it
//	EMBEDDING_HTTP_TIMEOUT_SECONDS  default 30
//
// # Usage
//
//	client, err := embedding.NewClient(cfg, log)
//	vecs, err := client.EmbedDocuments(ctx, []string{"a", "b"})
//	q, err := client.EmbedQuery(ctx, "lighthouse")
//
// With Fx, include embedding.FXModule and depend on embedding.Embedder.
package embedding
