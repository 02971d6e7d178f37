// Package metrics exposes pipeline metrics through Prometheus.
//
// Every service gets its own registry wrapped with a constant service label.
// The built-in collectors cover the pipeline: processed blocks by status,
// embedding requests, operation latency, and search result counts.
//
//	m := metrics.NewMetrics(metrics.Config{ServiceName: "search"})
//	defer m.RecordOperationDuration(time.Now(), "search")
//
// The /metrics HTTP server only runs when METRICS_ENABLED is true, which is
// useful for the long-running tool server. The one-shot commands keep it off.
package metrics
