package metrics

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the settings for the metrics registry and HTTP server.
type Config struct {
	// Address is the listen address of the /metrics HTTP server.
	Address string `yaml:"address" env:"METRICS_ADDRESS"`

	// ServiceName is added as a constant `service` label to every metric.
	ServiceName string `yaml:"service_name" env:"METRICS_SERVICE_NAME"`

	// EnableDefaultCollectors registers the Go runtime, process and build
	// info collectors alongside the application metrics.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" env:"METRICS_DEFAULT_COLLECTORS"`
}

// DefaultConfig provides sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Address:                 ":9090",
		ServiceName:             "ragcore",
		EnableDefaultCollectors: true,
	}
}

// NewConfig reads the metrics configuration from environment variables on
// top of the package defaults.
func NewConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := os.Getenv("METRICS_SERVICE_NAME"); v != "" {
		cfg.ServiceName = v
	}
	if v := os.Getenv("METRICS_DEFAULT_COLLECTORS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EnableDefaultCollectors = b
		}
	}

	return cfg
}

// Validate checks internal consistency of the configuration.
func (c Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("metrics: address cannot be empty")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("metrics: service name cannot be empty")
	}
	return nil
}
