// Package faults defines the error taxonomy shared by the retrieval
// pipeline. Backend packages wrap their transport errors into these
// sentinels so that the chat orchestrator can decide between "retry later",
// "retry without retrieval" and "fatal" without inspecting backend details.
package faults

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable is returned when an external backend (embedding
	// service, vector index, LLM) is unreachable, times out, or answers with
	// a server-side error. Transient by definition: the caller may retry
	// later or, for retrieval failures, retry the turn without RAG.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrBudgetExceeded is returned when context assembly cannot fit even
	// the minimum required content into the configured budget. This is a
	// configuration problem, not a transient condition.
	ErrBudgetExceeded = errors.New("context budget exceeded")

	// ErrPermanent marks backend failures that must not be retried:
	// authentication failures, exhausted quotas, malformed requests the
	// backend rejected.
	ErrPermanent = errors.New("permanent backend failure")
)

// ValidationError reports malformed input parameters. It is raised before
// any external call is made and reported to the caller synchronously.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given parameter.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a parameter validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsBackendUnavailable reports whether err is a transient backend failure.
func IsBackendUnavailable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable)
}

// IsRetryable reports whether the operation that produced err may be retried.
// Context cancellation is not retryable: the caller has already given up.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrPermanent) {
		return false
	}
	return errors.Is(err, ErrBackendUnavailable) || errors.Is(err, context.DeadlineExceeded)
}
