package metrics

import "time"

// MetricsCollector provides an interface for collecting pipeline metrics.
//
// This interface is implemented by the concrete *Metrics type.
type MetricsCollector interface {
	// IncrementBlocks counts a processed block with a status label
	// ("stored", "failed", "skipped").
	IncrementBlocks(status string)

	// IncrementEmbeddingRequests counts calls to the embedding endpoint.
	IncrementEmbeddingRequests(status string)

	// RecordOperationDuration records the duration (in seconds) of a pipeline operation.
	RecordOperationDuration(start time.Time, operation string)

	// ObserveSearchResults records how many results a search returned.
	ObserveSearchResults(count int)
}
