package tracer

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the settings for the OTLP trace exporter and provider.
type Config struct {
	// Enabled turns tracing on. When false NewClient returns an inert
	// tracer and no exporter is dialed.
	Enabled bool `yaml:"enabled" env:"TRACER_ENABLED"`

	// Endpoint is the OTLP/HTTP collector endpoint, host:port.
	Endpoint string `yaml:"endpoint" env:"TRACER_ENDPOINT"`

	// ServiceName is attached to every span as the service resource.
	ServiceName string `yaml:"service_name" env:"TRACER_SERVICE_NAME"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" env:"TRACER_INSECURE"`

	// SampleRatio is the fraction of root traces to sample, in [0, 1].
	SampleRatio float64 `yaml:"sample_ratio" env:"TRACER_SAMPLE_RATIO"`
}

// DefaultConfig provides sensible defaults for most use cases. Tracing is
// off until explicitly enabled.
func DefaultConfig() Config {
	return Config{
		Enabled:     false,
		Endpoint:    "localhost:4318",
		ServiceName: "ragcore",
		Insecure:    true,
		SampleRatio: 1.0,
	}
}

// NewConfig reads the tracer configuration from environment variables on
// top of the package defaults.
func NewConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("TRACER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = b
		}
	}
	if v := os.Getenv("TRACER_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("TRACER_SERVICE_NAME"); v != "" {
		cfg.ServiceName = v
	}
	if v := os.Getenv("TRACER_INSECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Insecure = b
		}
	}
	if v := os.Getenv("TRACER_SAMPLE_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SampleRatio = f
		}
	}

	return cfg
}

// Validate checks internal consistency of the configuration.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return fmt.Errorf("tracer: endpoint cannot be empty")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("tracer: service name cannot be empty")
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("tracer: sample ratio must be in [0, 1], got %f", c.SampleRatio)
	}
	return nil
}
