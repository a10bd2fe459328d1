package rabbit

import (
	"errors"
	"net"
	"strings"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Standardized errors that abstract away AMQP-specific details.
var (
	// ErrConnectionFailed is returned when connection to RabbitMQ cannot be
	// established.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrConnectionLost is returned when the connection is lost.
	ErrConnectionLost = errors.New("connection lost")

	// ErrConnectionClosed is returned when the connection is closed.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrChannelClosed is returned when the channel is closed.
	ErrChannelClosed = errors.New("channel closed")

	// ErrAuthenticationFailed is returned when authentication fails.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrAccessDenied is returned when access to a resource is denied.
	ErrAccessDenied = errors.New("access denied")

	// ErrQueueNotFound is returned when the queue does not exist.
	ErrQueueNotFound = errors.New("queue not found")

	// ErrExchangeNotFound is returned when the exchange does not exist.
	ErrExchangeNotFound = errors.New("exchange not found")

	// ErrPreconditionFailed is returned when a declare conflicts with
	// existing topology.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrMessageTooLarge is returned when a message exceeds size limits.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrPublishFailed is returned when a publish cannot be routed.
	ErrPublishFailed = errors.New("publish failed")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("timeout")

	// ErrNetworkError is returned for network-related failures.
	ErrNetworkError = errors.New("network error")

	// ErrInternalError is returned for broker-side errors.
	ErrInternalError = errors.New("internal error")

	// ErrShutdown is returned when the client is shutting down.
	ErrShutdown = errors.New("shutdown")
)

// TranslateError converts AMQP-specific errors into the standardized errors
// above so application code never needs to inspect AMQP error codes. Errors
// that match no known pattern are returned unchanged.
func (rb *RabbitClient) TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		return translateAMQPError(amqpErr)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkError
	}

	var syscallErr syscall.Errno
	if errors.As(err, &syscallErr) {
		return translateSyscallError(syscallErr)
	}

	return translateByErrorMessage(err)
}

func translateAMQPError(amqpErr *amqp.Error) error {
	switch amqpErr.Code {
	case amqp.ConnectionForced:
		return ErrConnectionClosed
	case amqp.AccessRefused:
		return ErrAccessDenied
	case amqp.NotFound:
		return ErrQueueNotFound
	case amqp.PreconditionFailed:
		return ErrPreconditionFailed
	case amqp.ContentTooLarge:
		return ErrMessageTooLarge
	case amqp.NoRoute, amqp.NoConsumers:
		return ErrPublishFailed
	case amqp.ChannelError:
		return ErrChannelClosed
	case amqp.InternalError:
		return ErrInternalError
	default:
		reason := strings.ToLower(amqpErr.Reason)
		switch {
		case strings.Contains(reason, "access refused"), strings.Contains(reason, "login refused"):
			return ErrAuthenticationFailed
		case strings.Contains(reason, "exchange") && strings.Contains(reason, "not found"):
			return ErrExchangeNotFound
		case strings.Contains(reason, "queue") && strings.Contains(reason, "not found"):
			return ErrQueueNotFound
		default:
			return amqpErr
		}
	}
}

func translateSyscallError(syscallErr syscall.Errno) error {
	switch syscallErr {
	case syscall.ECONNREFUSED:
		return ErrConnectionFailed
	case syscall.ECONNRESET, syscall.ECONNABORTED, syscall.EPIPE, syscall.ENOTCONN:
		return ErrConnectionLost
	case syscall.ETIMEDOUT:
		return ErrTimeout
	case syscall.EACCES, syscall.EPERM:
		return ErrAccessDenied
	default:
		return ErrNetworkError
	}
}

// translateByErrorMessage is the string-matching fallback for errors that
// carry no typed cause.
func translateByErrorMessage(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return ErrConnectionFailed
	case strings.Contains(msg, "connection reset"), strings.Contains(msg, "connection lost"):
		return ErrConnectionLost
	case strings.Contains(msg, "connection closed"):
		return ErrConnectionClosed
	case strings.Contains(msg, "channel closed"), strings.Contains(msg, "channel/connection is not open"):
		return ErrChannelClosed
	case strings.Contains(msg, "authentication failed"), strings.Contains(msg, "invalid credentials"):
		return ErrAuthenticationFailed
	case strings.Contains(msg, "access denied"), strings.Contains(msg, "access refused"):
		return ErrAccessDenied
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return ErrTimeout
	case strings.Contains(msg, "shutdown"):
		return ErrShutdown
	default:
		return err
	}
}

// IsRetryableError returns true if the error is transient and the operation
// can be retried.
func (rb *RabbitClient) IsRetryableError(err error) bool {
	switch {
	case errors.Is(err, ErrConnectionFailed),
		errors.Is(err, ErrConnectionLost),
		errors.Is(err, ErrChannelClosed),
		errors.Is(err, ErrTimeout),
		errors.Is(err, ErrNetworkError),
		errors.Is(err, ErrInternalError):
		return true
	default:
		return false
	}
}

// IsConnectionError returns true if the error is connection-related.
func (rb *RabbitClient) IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnectionFailed) ||
		errors.Is(err, ErrConnectionLost) ||
		errors.Is(err, ErrConnectionClosed)
}
