// Package observability defines the seam between backend clients and the
// metrics/tracing layer.
//
// Backend packages (embedding, qdrant, llm, redis, minio, rabbit) accept an
// optional Observer and report every external operation through it. The
// metrics package provides the production implementation; tests typically
// pass nil or a recording fake.
package observability

import "time"

// OperationContext describes a single observed operation against an external
// backend. It is intentionally flat so that implementations can map it onto
// metric labels without digging through nested structures.
type OperationContext struct {
	// Component identifies the client reporting the operation,
	// e.g. "qdrant", "embedding", "llm", "redis".
	Component string

	// Operation is the action performed, e.g. "search", "upsert", "embed".
	Operation string

	// Resource is the primary target of the operation: a collection name,
	// a model name, a queue name.
	Resource string

	// SubResource carries additional context such as a document id.
	SubResource string

	// Duration is how long the operation took, including retries.
	Duration time.Duration

	// Error is the operation's terminal error, or nil on success.
	Error error

	// Size is an operation-specific magnitude: texts embedded, points
	// upserted, results returned. Negative when not applicable.
	Size int64

	// Metadata holds anything else worth recording.
	Metadata map[string]interface{}
}

// Observer receives operation reports from backend clients.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveOperation(op OperationContext)
}
