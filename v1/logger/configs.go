package logger

import "os"

// Log levels accepted by Config.Level.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config controls the behavior of the zap-backed logger.
type Config struct {
	// Level is the minimum level that will be emitted.
	// One of the constants above; anything else falls back to info.
	Level string `yaml:"level" env:"LOG_LEVEL"`

	// ServiceName is attached to every log entry as the "service" field.
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`

	// EnableTracing controls whether trace/span IDs are extracted from the
	// context and attached to log entries.
	EnableTracing bool `yaml:"enable_tracing" env:"LOG_ENABLE_TRACING"`
}

// NewConfig reads the logger configuration from environment variables.
func NewConfig() Config {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = Info
	}

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "ragcore"
	}

	return Config{
		Level:         level,
		ServiceName:   service,
		EnableTracing: os.Getenv("LOG_ENABLE_TRACING") == "true",
	}
}
