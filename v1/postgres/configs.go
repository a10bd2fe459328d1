package postgres

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config defines the configuration for the PostgreSQL connection.
type Config struct {
	Connection        Connection
	ConnectionDetails ConnectionDetails
}

// Connection holds the parameters of the database endpoint.
type Connection struct {
	// Host is the database hostname or IP address.
	Host string `yaml:"host" env:"POSTGRES_HOST"`

	// Port is the database port.
	Port string `yaml:"port" env:"POSTGRES_PORT"`

	// User is the database user.
	User string `yaml:"user" env:"POSTGRES_USER"`

	// Password is the database password.
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`

	// DbName is the database name.
	DbName string `yaml:"db_name" env:"POSTGRES_DB"`

	// SSLMode is the libpq sslmode setting (disable, require, ...).
	SSLMode string `yaml:"ssl_mode" env:"POSTGRES_SSL_MODE"`
}

// ConnectionDetails tunes the connection pool.
type ConnectionDetails struct {
	// MaxOpenConns is the maximum number of open connections.
	// Default: 50
	MaxOpenConns int `yaml:"max_open_conns" env:"POSTGRES_MAX_OPEN_CONNS"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 25
	MaxIdleConns int `yaml:"max_idle_conns" env:"POSTGRES_MAX_IDLE_CONNS"`

	// ConnMaxLifetime is the maximum lifetime of a pooled connection.
	// Default: 1 minute
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"POSTGRES_CONN_MAX_LIFETIME"`
}

// DefaultConfig provides sensible defaults for local development.
func DefaultConfig() Config {
	return Config{
		Connection: Connection{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			DbName:  "ragcore",
			SSLMode: "disable",
		},
		ConnectionDetails: ConnectionDetails{
			MaxOpenConns:    50,
			MaxIdleConns:    25,
			ConnMaxLifetime: time.Minute,
		},
	}
}

// NewConfig reads the PostgreSQL configuration from environment variables on
// top of the package defaults.
func NewConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		cfg.Connection.Host = v
	}
	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		cfg.Connection.Port = v
	}
	if v := os.Getenv("POSTGRES_USER"); v != "" {
		cfg.Connection.User = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		cfg.Connection.Password = v
	}
	if v := os.Getenv("POSTGRES_DB"); v != "" {
		cfg.Connection.DbName = v
	}
	if v := os.Getenv("POSTGRES_SSL_MODE"); v != "" {
		cfg.Connection.SSLMode = v
	}
	if v := os.Getenv("POSTGRES_MAX_OPEN_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ConnectionDetails.MaxOpenConns = n
		}
	}
	if v := os.Getenv("POSTGRES_MAX_IDLE_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ConnectionDetails.MaxIdleConns = n
		}
	}
	if v := os.Getenv("POSTGRES_CONN_MAX_LIFETIME"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ConnectionDetails.ConnMaxLifetime = d
		}
	}

	return cfg
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if c.Connection.Host == "" {
		return fmt.Errorf("postgres: missing host")
	}
	if c.Connection.User == "" {
		return fmt.Errorf("postgres: missing user")
	}
	if c.Connection.DbName == "" {
		return fmt.Errorf("postgres: missing database name")
	}
	return nil
}
