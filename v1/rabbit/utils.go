package rabbit

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerMessage implements the Message interface and wraps an AMQP
// delivery.
type ConsumerMessage struct {
	body     []byte
	delivery *amqp.Delivery
}

// consumeQueue consumes messages from the given queue and sends them to the
// returned channel. The channel is closed when consumption stops due to
// context cancellation, shutdown, or errors. The consumer re-establishes
// itself when the underlying channel closes.
func (rb *RabbitClient) consumeQueue(ctx context.Context, wg *sync.WaitGroup, queueName string) <-chan Message {
	outChan := make(chan Message, 100)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(outChan)
	outerLoop:
		for {
			select {
			case <-rb.shutdownSignal:
				rb.logInfo(ctx, "Stopping consumer due to shutdown signal", map[string]interface{}{
					"queue": queueName,
				})
				return
			case <-ctx.Done():
				rb.logInfo(ctx, "Stopping consumer due to context cancellation", map[string]interface{}{
					"queue": queueName,
					"error": ctx.Err().Error(),
				})
				return
			default:
				rb.mu.RLock()
				msgs, err := rb.Channel.Consume(
					queueName,
					"",    // consumer
					false, // autoAck
					false, // exclusive
					false, // noLocal
					false, // noWait
					nil,   // args
				)
				rb.mu.RUnlock()

				if err != nil {
					rb.logError(ctx, "Failed to establish consumer", map[string]interface{}{
						"queue": queueName,
						"error": err.Error(),
					})
					time.Sleep(100 * time.Millisecond)
					continue
				}

				for {
					select {
					case <-ctx.Done():
						rb.logInfo(ctx, "Stopping consumer due to context cancellation", map[string]interface{}{
							"queue": queueName,
							"error": ctx.Err().Error(),
						})
						return
					case <-rb.shutdownSignal:
						rb.logInfo(ctx, "Stopping consumer due to shutdown signal", map[string]interface{}{
							"queue": queueName,
						})
						return
					case msg, ok := <-msgs:
						if !ok {
							continue outerLoop
						}

						rb.observeOperation("consume", queueName, "", 0, nil, int64(len(msg.Body)))

						outChan <- &ConsumerMessage{
							body:     msg.Body,
							delivery: &msg,
						}
					}
				}
			}
		}
	}()
	return outChan
}

// Consume starts consuming ingestion jobs from the configured queue.
//
// Example:
//
//	wg := &sync.WaitGroup{}
//	msgChan := rabbitClient.Consume(ctx, wg)
//	for msg := range msgChan {
//	    if err := handle(msg.Body()); err != nil {
//	        _ = msg.NackMsg(false)
//	        continue
//	    }
//	    _ = msg.AckMsg()
//	}
func (rb *RabbitClient) Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message {
	return rb.consumeQueue(ctx, wg, rb.cfg.Channel.QueueName)
}

// ConsumeDLQ starts consuming jobs from the dead-letter queue. Useful for
// inspecting or replaying ingestion jobs that exhausted their deliveries.
func (rb *RabbitClient) ConsumeDLQ(ctx context.Context, wg *sync.WaitGroup) <-chan Message {
	return rb.consumeQueue(ctx, wg, rb.cfg.DeadLetter.QueueName)
}

// Publish sends a message to the configured exchange with the configured
// routing key. Thread-safe and respects context cancellation. Optional
// headers carry metadata such as trace context across the queue boundary.
func (rb *RabbitClient) Publish(ctx context.Context, msg []byte, headers ...map[string]interface{}) error {
	start := time.Now()
	var publishErr error
	msgSize := int64(len(msg))

	defer func() {
		rb.observeOperation("produce", rb.cfg.Channel.ExchangeName, rb.cfg.Channel.RoutingKey, time.Since(start), publishErr, msgSize)
	}()

	select {
	case <-ctx.Done():
		publishErr = ctx.Err()
		return publishErr
	default:
		var header map[string]interface{}
		if len(headers) > 0 {
			header = headers[0]
		}

		rb.mu.RLock()
		publishErr = rb.Channel.Publish(rb.cfg.Channel.ExchangeName,
			rb.cfg.Channel.RoutingKey,
			false,
			false,
			amqp.Publishing{
				Headers:      header,
				ContentType:  rb.cfg.Channel.ContentType,
				DeliveryMode: amqp.Persistent,
				Body:         msg,
			},
		)
		rb.mu.RUnlock()

		return publishErr
	}
}

// AckMsg acknowledges the message, removing it from the queue.
func (rb *ConsumerMessage) AckMsg() error {
	return rb.delivery.Ack(false)
}

// NackMsg rejects the message. If requeue is true the message returns to the
// queue for redelivery; otherwise it is dead-lettered or discarded.
func (rb *ConsumerMessage) NackMsg(requeue bool) error {
	return rb.delivery.Nack(false, requeue)
}

// Body returns the message payload.
func (rb *ConsumerMessage) Body() []byte {
	return rb.body
}

// Header returns the headers associated with the message.
func (rb *ConsumerMessage) Header() map[string]interface{} {
	return rb.delivery.Headers
}
