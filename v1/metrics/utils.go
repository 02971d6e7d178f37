package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IncrementBlocks increments the block counter with a given status label.
// Example: metrics.IncrementBlocks("stored")
func (m *Metrics) IncrementBlocks(status string) {
	m.blocksTotal.WithLabelValues(status).Inc()
}

// IncrementEmbeddingRequests increments the embedding request counter.
func (m *Metrics) IncrementEmbeddingRequests(status string) {
	m.embeddingRequests.WithLabelValues(status).Inc()
}

// RecordOperationDuration records the duration (in seconds) for an operation.
// Example: defer metrics.RecordOperationDuration(time.Now(), "search")
func (m *Metrics) RecordOperationDuration(start time.Time, operation string) {
	m.operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveSearchResults records the size of a search result set.
func (m *Metrics) ObserveSearchResults(count int) {
	m.searchResults.Observe(float64(count))
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}
