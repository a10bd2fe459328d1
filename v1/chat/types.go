package chat

import (
	"context"

	"github.com/contextra/ragcore/v1/llm"
	"github.com/contextra/ragcore/v1/retriever"
	"github.com/contextra/ragcore/v1/store"
)

// Turn states. A turn moves Received -> Retrieving -> Assembling ->
// Generating -> Completed; any stage failure ends it in Failed. Turns
// without retrieval skip Retrieving.
const (
	StateReceived   = "received"
	StateRetrieving = "retrieving"
	StateAssembling = "assembling"
	StateGenerating = "generating"
	StateCompleted  = "completed"
	StateFailed     = "failed"
)

// Request is one chat turn.
type Request struct {
	// SessionID identifies the conversation. The session must exist.
	SessionID string `json:"sessionId"`

	// OwnerID scopes the session and the retrieval corpus.
	OwnerID string `json:"ownerId"`

	// Message is the user's message for this turn.
	Message string `json:"message"`

	// UseRAG controls whether the turn retrieves document context. Unset
	// means retrieval on; turns with retrieval explicitly disabled go
	// straight to generation with empty provenance.
	UseRAG *bool `json:"useRag,omitempty"`

	// K overrides the retriever's result count when positive.
	K int `json:"k,omitempty"`

	// MinScore overrides the retriever's similarity floor when non-zero.
	MinScore float32 `json:"minScore,omitempty"`

	// MaxTokens caps the generated answer length when positive; zero uses
	// the configured default.
	MaxTokens int `json:"maxTokens,omitempty"`
}

// WithRetrieval reports whether this turn retrieves document context.
func (r Request) WithRetrieval() bool {
	return r.UseRAG == nil || *r.UseRAG
}

// Response is the outcome of one chat turn.
type Response struct {
	SessionID string `json:"sessionId"`

	// State is the final turn state, StateCompleted or StateFailed.
	State string `json:"state"`

	// Answer is the generated assistant message.
	Answer string `json:"answer,omitempty"`

	// Provenance lists the chunk ids whose text backed the answer, in rank
	// order. Empty for turns without retrieval.
	Provenance []string `json:"provenance,omitempty"`

	// Chunks carries the retrieved chunks for callers that surface sources.
	Chunks []retriever.RetrievedChunk `json:"chunks,omitempty"`
}

// Retriever fetches scored document chunks for a query.
type Retriever interface {
	Retrieve(ctx context.Context, req retriever.Request) ([]retriever.RetrievedChunk, error)
}

// Generator produces the assistant answer from the assembled messages.
type Generator interface {
	Generate(ctx context.Context, messages []llm.Message, maxTokens int) (string, error)
}

// SessionStore is the slice of the session repository the orchestrator
// uses.
type SessionStore interface {
	Create(ctx context.Context, session *store.ChatSession) error
	GetOwned(ctx context.Context, id, ownerID string) (*store.ChatSession, error)
	Delete(ctx context.Context, id string) error
	AppendMessages(ctx context.Context, sessionID string, messages ...store.ChatMessage) error
	History(ctx context.Context, sessionID string, limit int) ([]store.ChatMessage, error)
}
