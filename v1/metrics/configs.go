package metrics

// DefaultMetricsAddress is used when Address is empty.
const DefaultMetricsAddress = ":9090"

// Config defines the configuration structure for the Prometheus metrics server.
type Config struct {
	// Enabled starts the /metrics HTTP server. Short-lived commands leave it off;
	// the registry is populated either way.
	Enabled bool `yaml:"enabled" envconfig:"METRICS_ENABLED" default:"false"`

	// Address determines the network address where the Prometheus
	// metrics HTTP server listens.
	//
	// Example values:
	//   - ":9090"   → Listen on all interfaces, port 9090
	//   - "127.0.0.1:9100" → Listen only on localhost, port 9100
	Address string `yaml:"address" envconfig:"METRICS_ADDRESS" default:":9090"`

	// EnableDefaultCollectors controls whether the built-in Go runtime
	// and process metrics are automatically registered.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"METRICS_ENABLE_DEFAULT_COLLECTORS" default:"true"`

	// Namespace sets a global prefix for all metrics registered by this service.
	Namespace string `yaml:"namespace" envconfig:"METRICS_NAMESPACE" default:"blocksearch"`

	// ServiceName identifies the service exposing metrics.
	// It is added as the constant label service="<ServiceName>".
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME" default:"blocksearch"`
}
