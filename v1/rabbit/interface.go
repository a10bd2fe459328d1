package rabbit

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client is the queue surface used by the ingestion pipeline: publishers
// enqueue document jobs, the worker consumes them.
//
// This interface is implemented by the concrete *RabbitClient type.
type Client interface {
	// Publish sends a message using the configured exchange and routing key.
	Publish(ctx context.Context, msg []byte, headers ...map[string]interface{}) error

	// Consume starts consuming messages from the main queue.
	Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message

	// ConsumeDLQ starts consuming messages from the dead-letter queue.
	ConsumeDLQ(ctx context.Context, wg *sync.WaitGroup) <-chan Message

	// RetryConnection monitors the connection and reconnects on failure.
	// Run in a goroutine.
	RetryConnection(cfg Config)

	// GracefulShutdown closes connections and channels cleanly.
	GracefulShutdown()

	// GetChannel returns the underlying AMQP channel for direct operations.
	GetChannel() *amqp.Channel
}

// Message represents a consumed message.
type Message interface {
	// AckMsg acknowledges the message, removing it from the queue.
	AckMsg() error

	// NackMsg rejects the message. If requeue is true the message is
	// requeued; otherwise it goes to the dead-letter queue.
	NackMsg(requeue bool) error

	// Body returns the message payload.
	Body() []byte

	// Header returns the message headers.
	Header() map[string]interface{}
}
