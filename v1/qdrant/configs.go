package qdrant

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultGRPCPort = 6334
	restPort        = 6333
)

// Config holds connection and behavior settings for the Qdrant client.
//
// Values are read from the environment by NewConfig. Validate resolves URL
// into Host, Port and UseTLS.
//
// Example:
//
//	cfg := qdrant.Config{URL: "https://xyz.cloud.qdrant.io:6333", APIKey: key}
//	if err := cfg.Validate(); err != nil { ... }
//	// cfg.Host == "xyz.cloud.qdrant.io", cfg.Port == 6334, cfg.UseTLS == true
type Config struct {
	// URL of the Qdrant server. The REST port 6333 is mapped to the gRPC port 6334.
	URL string `yaml:"url" envconfig:"QDRANT_URL" default:"http://localhost:6334"`

	// Optional authentication token for secured deployments.
	APIKey string `yaml:"api_key" envconfig:"QDRANT_API_KEY"`

	// VectorName selects a named vector. Empty means the unnamed default vector.
	VectorName string `yaml:"vector_name" envconfig:"QDRANT_VECTOR_NAME"`

	// Maximum duration of a single request.
	Timeout time.Duration `yaml:"timeout" envconfig:"QDRANT_TIMEOUT" default:"30s"`

	// Whether to perform version compatibility checks between client and server.
	CheckCompatibility bool `yaml:"check_compatibility" envconfig:"QDRANT_CHECK_COMPATIBILITY" default:"false"`

	Host   string `ignored:"true"`
	Port   int    `ignored:"true"`
	UseTLS bool   `ignored:"true"`
}

// Validate parses URL and fills Host, Port and UseTLS.
func (c *Config) Validate() error {
	host, port, useTLS, err := parseURL(c.URL)
	if err != nil {
		return err
	}
	c.Host, c.Port, c.UseTLS = host, port, useTLS
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

// Endpoint returns host:port for log output.
func (c *Config) Endpoint() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func parseURL(raw string) (string, int, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", 0, false, fmt.Errorf("qdrant url cannot be empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid qdrant url %q: %w", raw, err)
	}

	var useTLS bool
	switch u.Scheme {
	case "http", "grpc":
	case "https", "grpcs":
		useTLS = true
	default:
		return "", 0, false, fmt.Errorf("unsupported qdrant url scheme %q", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return "", 0, false, fmt.Errorf("qdrant url %q has no host", raw)
	}

	port := defaultGRPCPort
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return "", 0, false, fmt.Errorf("invalid qdrant port %q", p)
		}
	}
	if port == restPort {
		port = defaultGRPCPort
	}

	return host, port, useTLS, nil
}
