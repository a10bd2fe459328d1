package redis

import (
	"os"
	"strconv"
	"time"
)

// Config defines the configuration for a standalone Redis connection.
// The retrieval pipeline uses Redis as a read-through cache for embedding
// vectors, so a single instance (or a managed equivalent) is sufficient.
type Config struct {
	// Host is the Redis server hostname or IP address.
	// Default: "localhost"
	Host string `yaml:"host" env:"REDIS_HOST"`

	// Port is the Redis server port.
	// Default: 6379
	Port int `yaml:"port" env:"REDIS_PORT"`

	// Username is the Redis username for ACL authentication (Redis 6.0+).
	// Leave empty for no username-based authentication.
	Username string `yaml:"username" env:"REDIS_USERNAME"`

	// Password is the Redis password for authentication.
	// Leave empty for no authentication.
	Password string `yaml:"password" env:"REDIS_PASSWORD"`

	// DB is the Redis database number to use.
	// Default: 0
	DB int `yaml:"db" env:"REDIS_DB"`

	// PoolSize is the maximum number of socket connections.
	// Default: 10 per CPU (set by the redis client)
	PoolSize int `yaml:"pool_size" env:"REDIS_POOL_SIZE"`

	// MinIdleConns is the minimum number of idle connections to maintain.
	MinIdleConns int `yaml:"min_idle_conns"`

	// MaxRetries is the maximum number of retries before giving up.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// DialTimeout is the timeout for establishing new connections.
	// Default: 5 seconds
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// ReadTimeout is the timeout for socket reads.
	// Default: 3 seconds
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the timeout for socket writes.
	// Default: ReadTimeout
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the amount of time after which idle connections are closed.
	// Default: 5 minutes
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// TLS contains TLS/SSL configuration.
	TLS TLSConfig `yaml:"tls"`

	// Logger is an optional logger used for error logging.
	Logger Logger `yaml:"-"`
}

// TLSConfig contains TLS/SSL configuration parameters.
type TLSConfig struct {
	// Enabled determines whether to use TLS/SSL for the connection.
	Enabled bool `yaml:"enabled" env:"REDIS_TLS_ENABLED"`

	// CACertPath is the file path to the CA certificate for verifying the server.
	CACertPath string `yaml:"ca_cert_path" env:"REDIS_TLS_CA_CERT"`

	// ClientCertPath is the file path to the client certificate.
	ClientCertPath string `yaml:"client_cert_path" env:"REDIS_TLS_CLIENT_CERT"`

	// ClientKeyPath is the file path to the client certificate's private key.
	ClientKeyPath string `yaml:"client_key_path" env:"REDIS_TLS_CLIENT_KEY"`

	// InsecureSkipVerify controls whether to skip verification of the server's
	// certificate. Only for testing.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// ServerName is used to verify the hostname on the returned certificates.
	// If empty, the Host from the main config is used.
	ServerName string `yaml:"server_name"`
}

// Logger matches the logger.Logger surface this package needs.
type Logger interface {
	Error(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

// Default values for configuration
const (
	DefaultHost        = "localhost"
	DefaultPort        = 6379
	DefaultDB          = 0
	DefaultMaxRetries  = 3
	DefaultDialTimeout = 5 * time.Second
	DefaultReadTimeout = 3 * time.Second
	DefaultIdleTimeout = 5 * time.Minute
)

// DefaultConfig provides sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Host:        DefaultHost,
		Port:        DefaultPort,
		DB:          DefaultDB,
		MaxRetries:  DefaultMaxRetries,
		DialTimeout: DefaultDialTimeout,
		ReadTimeout: DefaultReadTimeout,
		IdleTimeout: DefaultIdleTimeout,
	}
}

// NewConfig reads the Redis configuration from environment variables on top
// of the package defaults.
func NewConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Port = n
		}
	}
	if v := os.Getenv("REDIS_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.DB = n
		}
	}
	if v := os.Getenv("REDIS_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PoolSize = n
		}
	}
	if v := os.Getenv("REDIS_TLS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.TLS.Enabled = b
		}
	}

	return cfg
}
