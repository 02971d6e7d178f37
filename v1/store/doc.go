// Package store loads preprocessed block records into a vector collection.
//
// Each record is embedded with the document prefix of the embedding model and
// upserted with the payload
//
//	{"document": "<content>", "metadata": {"block_id": ..., "word_count": ..., "created_at": ...}}
//
// under a point id derived from its block_id, so loading the same file twice
// leaves one point per block.
//
// Records are processed in batches of STORE_BATCH_SIZE. When a batch fails the
// loader retries its records one by one and reports the ones that still fail
// in Report.Failures. STORE_CONCURRENCY > 1 keeps several batches in flight.
package store
