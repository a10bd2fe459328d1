package rabbit

import (
	"context"
	"os"
	"strconv"
)

// Config defines the configuration for the RabbitMQ client used to queue
// document ingestion jobs.
type Config struct {
	// Connection contains the settings needed to reach the RabbitMQ server.
	Connection Connection

	// Channel contains exchange, queue and routing configuration.
	Channel Channel

	// DeadLetter configures the dead-letter exchange and queue that receive
	// ingestion jobs which exhausted their delivery attempts.
	DeadLetter DeadLetter
}

// Connection contains the parameters needed to establish a connection to a
// RabbitMQ server, including authentication and TLS settings.
type Connection struct {
	// Host is the RabbitMQ server hostname or IP address.
	Host string

	// Port is the RabbitMQ server port (5672 for plain AMQP, 5671 for TLS).
	Port uint

	// User is the RabbitMQ username.
	User string

	// Password is the RabbitMQ password.
	Password string

	// IsSSLEnabled switches the connection to the amqps protocol.
	IsSSLEnabled bool

	// UseCert enables mutual TLS with a client certificate.
	UseCert bool

	// CACertPath is the CA certificate used to verify the server.
	CACertPath string

	// ClientCertPath is the client certificate for mutual TLS.
	ClientCertPath string

	// ClientKeyPath is the private key of the client certificate.
	ClientKeyPath string

	// ServerName must match a CN or SAN in the server certificate.
	ServerName string
}

// Channel contains configuration for the AMQP channel, exchange, queue and
// binding used by the ingestion pipeline.
type Channel struct {
	// ExchangeName is the exchange ingestion jobs are published to.
	ExchangeName string

	// ExchangeType defines the routing behavior of the exchange.
	ExchangeType string

	// RoutingKey routes jobs from the exchange to the ingestion queue.
	RoutingKey string

	// QueueName is the queue the ingestion worker consumes from.
	QueueName string

	// PrefetchCount limits unacknowledged deliveries per consumer. Ingestion
	// jobs are heavyweight, so the default keeps this low.
	PrefetchCount int

	// IsConsumer determines whether this client declares the exchange and
	// queues. Publishers that rely on existing topology leave it false.
	IsConsumer bool

	// ContentType is the MIME type of published messages.
	ContentType string
}

// DeadLetter contains configuration for dead-letter handling. Jobs that are
// rejected or exceed the queue TTL land on the dead-letter queue for
// inspection.
type DeadLetter struct {
	// ExchangeName is the dead-letter exchange.
	ExchangeName string

	// QueueName is the queue bound to the dead-letter exchange.
	QueueName string

	// RoutingKey is used when dead-lettering jobs.
	RoutingKey string

	// Ttl is the time-to-live of queued jobs in seconds. Zero disables the
	// TTL and with it the dead-letter topology.
	Ttl int
}

// Logger is an interface that matches the v1/logger.Logger interface.
type Logger interface {
	// InfoWithContext logs an informational message with trace context.
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// WarnWithContext logs a warning message with trace context.
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// ErrorWithContext logs an error message with trace context.
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// DefaultConfig returns a Config preconfigured for the document ingestion
// pipeline.
func DefaultConfig() Config {
	return Config{
		Connection: Connection{
			Host: "localhost",
			Port: 5672,
			User: "guest",
		},
		Channel: Channel{
			ExchangeName:  "documents",
			ExchangeType:  "direct",
			RoutingKey:    "document.uploaded",
			QueueName:     "document-ingest",
			PrefetchCount: 4,
			ContentType:   "application/json",
		},
		DeadLetter: DeadLetter{
			ExchangeName: "documents.dlx",
			QueueName:    "document-ingest-dlq",
			RoutingKey:   "document.failed",
			Ttl:          86400,
		},
	}
}

// NewConfig creates a Config from environment variables, falling back to
// defaults for unset values:
//   - RABBIT_HOST
//   - RABBIT_PORT
//   - RABBIT_USER
//   - RABBIT_PASSWORD
//   - RABBIT_EXCHANGE_NAME
//   - RABBIT_ROUTING_KEY
//   - RABBIT_QUEUE_NAME
//   - RABBIT_PREFETCH_COUNT
//   - RABBIT_IS_CONSUMER
//   - RABBIT_SSL_ENABLED
func NewConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("RABBIT_HOST"); v != "" {
		cfg.Connection.Host = v
	}
	if v := os.Getenv("RABBIT_PORT"); v != "" {
		if p, err := strconv.ParseUint(v, 10, 16); err == nil {
			cfg.Connection.Port = uint(p)
		}
	}
	if v := os.Getenv("RABBIT_USER"); v != "" {
		cfg.Connection.User = v
	}
	if v := os.Getenv("RABBIT_PASSWORD"); v != "" {
		cfg.Connection.Password = v
	}
	if v := os.Getenv("RABBIT_EXCHANGE_NAME"); v != "" {
		cfg.Channel.ExchangeName = v
	}
	if v := os.Getenv("RABBIT_ROUTING_KEY"); v != "" {
		cfg.Channel.RoutingKey = v
	}
	if v := os.Getenv("RABBIT_QUEUE_NAME"); v != "" {
		cfg.Channel.QueueName = v
	}
	if v := os.Getenv("RABBIT_PREFETCH_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Channel.PrefetchCount = n
		}
	}
	if v := os.Getenv("RABBIT_IS_CONSUMER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Channel.IsConsumer = b
		}
	}
	if v := os.Getenv("RABBIT_SSL_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Connection.IsSSLEnabled = b
		}
	}

	return cfg
}
