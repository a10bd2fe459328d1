package rabbit

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/contextra/ragcore/v1/observability"
)

// RabbitClient is the queue client for document ingestion jobs. It manages
// the connection and channel, declares the ingestion topology and provides
// publishing and consuming with automatic reconnection.
type RabbitClient struct {
	// cfg stores the configuration for this client.
	cfg Config

	// Channel is the main AMQP channel used for publishing and consuming.
	Channel *amqp.Channel

	// conn is the underlying AMQP connection.
	conn *amqp.Connection

	// mu protects concurrent access to connection and channel.
	mu sync.RWMutex

	observer observability.Observer
	logger   Logger

	// shutdownSignal is closed when the client is being shut down.
	shutdownSignal chan struct{}

	closeShutdownOnce sync.Once
}

// NewClient creates and initializes a new RabbitMQ client. It establishes
// the connection and, for consumers, declares the exchange, the ingestion
// queue and the dead-letter topology.
//
// Example:
//
//	client, err := rabbit.NewClient(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.GracefulShutdown()
func NewClient(config Config) (*RabbitClient, error) {
	con, err := newConnection(config)
	if err != nil {
		log.Printf("ERROR: error in connecting to rabbit: %v", err)
		return nil, err
	}

	ch, err := connectToChannel(con, config)
	if ch == nil || err != nil {
		log.Printf("ERROR: error in declaring channel: %v", err)
		return nil, err
	}

	return &RabbitClient{
		cfg:            config,
		conn:           con,
		Channel:        ch,
		shutdownSignal: make(chan struct{}),
	}, nil
}

// connectToChannel creates and configures an AMQP channel. Consumers get the
// full topology: main exchange, ingestion queue bound to it, and the
// dead-letter exchange and queue when configured.
func connectToChannel(rb *amqp.Connection, cfg Config) (*amqp.Channel, error) {
	ch, err := rb.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	if err = ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	if !cfg.Channel.IsConsumer {
		return ch, nil
	}

	err = ch.ExchangeDeclare(
		cfg.Channel.ExchangeName,
		cfg.Channel.ExchangeType,
		true,  // Durable
		false, // AutoDelete
		false, // Internal
		false, // NoWait
		nil,   // Arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queueArgs := amqp.Table{}
	if cfg.DeadLetter.ExchangeName != "" && cfg.DeadLetter.Ttl > 0 {
		err = ch.ExchangeDeclare(
			cfg.DeadLetter.ExchangeName,
			"direct",
			true,  // Durable
			false, // AutoDelete
			false, // Internal
			false, // NoWait
			nil,   // Arguments
		)
		if err != nil {
			return nil, fmt.Errorf("failed to declare dead letter exchange: %w", err)
		}

		_, err = ch.QueueDeclare(
			cfg.DeadLetter.QueueName,
			true,  // Durable
			false, // AutoDelete
			false, // Exclusive
			false, // NoWait
			nil,   // Arguments
		)
		if err != nil {
			return nil, fmt.Errorf("failed to declare dead letter queue: %w", err)
		}

		err = ch.QueueBind(
			cfg.DeadLetter.QueueName,
			cfg.DeadLetter.RoutingKey,
			cfg.DeadLetter.ExchangeName,
			false, // NoWait
			nil,   // Arguments
		)
		if err != nil {
			return nil, fmt.Errorf("failed to bind dead letter queue: %w", err)
		}

		queueArgs = amqp.Table{
			"x-dead-letter-exchange":    cfg.DeadLetter.ExchangeName,
			"x-dead-letter-routing-key": cfg.DeadLetter.RoutingKey,
			"x-message-ttl":             cfg.DeadLetter.Ttl * 1000, // Convert to milliseconds
		}
	}

	_, err = ch.QueueDeclare(
		cfg.Channel.QueueName,
		true,      // Durable
		false,     // AutoDelete
		false,     // Exclusive
		false,     // NoWait
		queueArgs, // Arguments including dead letter config
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = ch.QueueBind(
		cfg.Channel.QueueName,
		cfg.Channel.RoutingKey,
		cfg.Channel.ExchangeName,
		false, // NoWait
		nil,   // Arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	if cfg.Channel.PrefetchCount > 0 {
		err = ch.Qos(cfg.Channel.PrefetchCount, 0, false)
		if err != nil {
			return nil, fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	return ch, nil
}

// RetryConnection monitors the connection and re-establishes it when it
// drops, including the channel and its topology. Typically run in a
// goroutine; returns when the client shuts down.
func (rb *RabbitClient) RetryConnection(cfg Config) {
	defer rb.closeShutdownOnce.Do(func() {
		close(rb.shutdownSignal)
	})
outerLoop:
	for {
		errChan := make(chan *amqp.Error, 1)
		rb.conn.NotifyClose(errChan)

		select {
		case <-rb.shutdownSignal:
			log.Println("INFO: Stopping RetryConnection loop due to shutdown signal")
			return

		case err := <-errChan:
			log.Printf("WARNING: RabbitMQ connection closed, retrying... %v", err)
		reconnectLoop:
			for {
				select {
				case <-rb.shutdownSignal:
					log.Println("INFO: Stopping RetryConnection loop due to shutdown signal")
					return
				default:
					newConn, err := newConnection(cfg)
					if err != nil {
						log.Printf("ERROR: RabbitMQ reconnection failed: %v", err)
						time.Sleep(time.Second)
						continue reconnectLoop
					}

					rb.mu.Lock()
					rb.conn = newConn
					if rb.Channel != nil {
						_ = rb.Channel.Close()
					}
					rb.Channel, err = connectToChannel(newConn, cfg)
					rb.mu.Unlock()

					if err != nil {
						log.Printf("ERROR: Failed to re-establish RabbitMQ channel: %v", err)
						continue reconnectLoop
					}

					log.Println("INFO: Successfully reconnected to RabbitMQ")
					continue outerLoop
				}
			}
		}
	}
}

// newConnection establishes a connection to the RabbitMQ server. It supports
// mutual TLS, server-only TLS and plain AMQP depending on the configuration.
// All connections use a 2-second heartbeat to detect disconnections quickly.
func newConnection(cfg Config) (*amqp.Connection, error) {
	if cfg.Connection.IsSSLEnabled && cfg.Connection.UseCert {
		hostURL := fmt.Sprintf("amqps://%v:%v@%v:%v", cfg.Connection.User, cfg.Connection.Password, cfg.Connection.Host, cfg.Connection.Port)
		caCert, err := os.ReadFile(cfg.Connection.CACertPath)
		if err != nil {
			log.Printf("ERROR: failed to read CA cert: %v", err)
			return nil, err
		}
		caCertPool := x509.NewCertPool()
		caCertPool.AppendCertsFromPEM(caCert)

		cert, err := tls.LoadX509KeyPair(cfg.Connection.ClientCertPath, cfg.Connection.ClientKeyPath)
		if err != nil {
			log.Printf("ERROR: failed to load client cert: %v", err)
			return nil, err
		}

		tlsConfig := &tls.Config{
			RootCAs:      caCertPool,
			Certificates: []tls.Certificate{cert},
			ServerName:   cfg.Connection.ServerName,
		}
		conn, err := amqp.DialConfig(hostURL, amqp.Config{
			Heartbeat:       2 * time.Second,
			TLSClientConfig: tlsConfig,
		})
		if err == nil {
			log.Println("INFO: Connected to Rabbit")
			return conn, nil
		}
		log.Printf("ERROR: error in connecting to rabbit: %v", err)
	} else {
		scheme := "amqp"
		if cfg.Connection.IsSSLEnabled {
			scheme = "amqps"
		}
		hostURL := fmt.Sprintf("%v://%v:%v@%v:%v", scheme, cfg.Connection.User, cfg.Connection.Password, cfg.Connection.Host, cfg.Connection.Port)
		conn, err := amqp.DialConfig(hostURL, amqp.Config{
			Heartbeat: 2 * time.Second,
		})
		if err == nil {
			log.Println("INFO: Connected to Rabbit")
			return conn, nil
		}
		log.Printf("ERROR: error in connecting to rabbit: %v", err)
	}
	return nil, fmt.Errorf("failed to connect to Rabbit")
}

// GracefulShutdown closes the client's channel and connection cleanly. Safe
// to call more than once.
func (rb *RabbitClient) GracefulShutdown() {
	rb.closeShutdownOnce.Do(func() {
		close(rb.shutdownSignal)
	})
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.logInfo(context.Background(), "Shutting down RabbitMQ client", nil)

	if rb.Channel != nil {
		if err := rb.Channel.Close(); err != nil {
			rb.logWarn(context.Background(), "Failed to close rabbit channel", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
	}
	if rb.conn != nil && !rb.conn.IsClosed() {
		if err := rb.conn.Close(); err != nil {
			rb.logWarn(context.Background(), "Failed to close rabbit connection", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

// GetChannel returns the underlying AMQP channel for direct operations.
func (rb *RabbitClient) GetChannel() *amqp.Channel {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.Channel
}

// WithObserver attaches an observer for publish and consume tracking.
// Returns the client for chaining.
func (rb *RabbitClient) WithObserver(observer observability.Observer) *RabbitClient {
	rb.observer = observer
	return rb
}

// WithLogger attaches a logger for lifecycle logging. Returns the client for
// chaining.
func (rb *RabbitClient) WithLogger(logger Logger) *RabbitClient {
	rb.logger = logger
	return rb
}

func (rb *RabbitClient) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if rb.logger != nil {
		rb.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (rb *RabbitClient) logWarn(ctx context.Context, msg string, fields map[string]interface{}) {
	if rb.logger != nil {
		rb.logger.WarnWithContext(ctx, msg, nil, fields)
	}
}

func (rb *RabbitClient) logError(ctx context.Context, msg string, fields map[string]interface{}) {
	if rb.logger != nil {
		rb.logger.ErrorWithContext(ctx, msg, nil, fields)
	}
}
