// Package embedcache puts a Redis cache in front of an embedding.Embedder.
//
// Re-running the store command over the same blocks, or repeating a query,
// then costs one MGET instead of a round trip to the embedding endpoint.
// Keys are derived from the model name, the purpose (query or document) and
// a SHA-256 of the text, so switching models never serves stale vectors.
//
// The cache is off unless EMBEDDING_CACHE_ENABLED=true. Redis errors are
// logged and the wrapped embedder answers instead.
package embedcache
