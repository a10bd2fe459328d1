package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/contextra/ragcore/v1/assembler"
	"github.com/contextra/ragcore/v1/faults"
	"github.com/contextra/ragcore/v1/llm"
	"github.com/contextra/ragcore/v1/observability"
	"github.com/contextra/ragcore/v1/retriever"
	"github.com/contextra/ragcore/v1/store"
	"github.com/contextra/ragcore/v1/tracer"
)

// Service orchestrates chat turns: retrieval, context assembly, generation
// and history persistence. Turns of the same session are serialized; the
// session log is only appended once a turn completes, so a failed turn
// leaves the history exactly as it was.
type Service struct {
	cfg       Config
	sessions  SessionStore
	retriever Retriever
	assembler *assembler.Assembler
	generator Generator
	locks     *lockArena
	observer  observability.Observer
	tracer    *tracer.Tracer
}

// NewService validates the configuration and returns a chat Service.
func NewService(
	cfg Config,
	sessions SessionStore,
	ret Retriever,
	asm *assembler.Assembler,
	generator Generator,
) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		cfg:       cfg,
		sessions:  sessions,
		retriever: ret,
		assembler: asm,
		generator: generator,
		locks:     newLockArena(),
	}, nil
}

// WithObserver attaches an observer. Returns the service for chaining.
func (s *Service) WithObserver(observer observability.Observer) *Service {
	s.observer = observer
	return s
}

// WithTracer attaches a tracer; each turn runs inside its own span.
func (s *Service) WithTracer(t *tracer.Tracer) *Service {
	s.tracer = t
	return s
}

// CreateSession starts a new conversation for an owner.
func (s *Service) CreateSession(ctx context.Context, ownerID, title string) (*store.ChatSession, error) {
	if ownerID == "" {
		return nil, faults.NewValidationError("ownerId", "cannot be empty")
	}
	session := &store.ChatSession{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Title:   title,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession removes a session, its messages and its serialization lock.
func (s *Service) DeleteSession(ctx context.Context, sessionID, ownerID string) error {
	session, err := s.sessions.GetOwned(ctx, sessionID, ownerID)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return err
	}
	s.locks.remove(session.ID)
	return nil
}

// History returns the last limit messages of an owner's session in
// chronological order.
func (s *Service) History(ctx context.Context, sessionID, ownerID string, limit int) ([]store.ChatMessage, error) {
	session, err := s.sessions.GetOwned(ctx, sessionID, ownerID)
	if err != nil {
		return nil, err
	}
	return s.sessions.History(ctx, session.ID, limit)
}

// Chat runs one turn. On success the user and assistant messages are
// appended to the session log, the assistant message carrying the chunk ids
// used as context. On failure the returned Response has StateFailed, the
// error explains the stage that broke, and the session log is untouched.
func (s *Service) Chat(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	session, err := s.sessions.GetOwned(ctx, req.SessionID, req.OwnerID)
	if err != nil {
		return nil, err
	}

	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, "chat.turn",
			attribute.String("session_id", session.ID),
			attribute.Bool("use_rag", req.WithRetrieval()),
		)
		defer span.End()
	}

	// One turn at a time per session. Interleaved turns would race on the
	// history window and produce nondeterministic prompts.
	lock := s.locks.get(session.ID)
	lock.Lock()
	defer lock.Unlock()

	resp, err := s.runTurn(ctx, session, req)
	s.observe("chat", session.ID, time.Since(start), err, map[string]interface{}{
		"state":   resp.State,
		"use_rag": req.WithRetrieval(),
	})
	return resp, err
}

func (s *Service) runTurn(ctx context.Context, session *store.ChatSession, req Request) (*Response, error) {
	failed := &Response{SessionID: session.ID, State: StateFailed}

	history, err := s.sessions.History(ctx, session.ID, s.cfg.HistoryWindow)
	if err != nil {
		return failed, err
	}

	var chunks []retriever.RetrievedChunk
	if req.WithRetrieval() {
		chunks, err = s.retriever.Retrieve(ctx, retriever.Request{
			Query:    req.Message,
			OwnerID:  req.OwnerID,
			K:        req.K,
			MinScore: req.MinScore,
		})
		if err != nil {
			return failed, fmt.Errorf("chat: retrieval: %w", err)
		}
	}

	result, err := s.assembler.Assemble(assembler.Input{
		CurrentMessage: req.Message,
		History:        toTurns(history),
		Chunks:         chunks,
	})
	if err != nil {
		return failed, fmt.Errorf("chat: assembly: %w", err)
	}

	maxTokens := s.cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	// Transient failures are retried inside the generator client; a second
	// retry layer here would multiply the backend calls.
	answer, err := s.generator.Generate(ctx, toMessages(result), maxTokens)
	if err != nil {
		return failed, fmt.Errorf("chat: generation: %w", err)
	}

	err = s.sessions.AppendMessages(ctx, session.ID,
		store.ChatMessage{Role: store.RoleUser, Content: req.Message},
		store.ChatMessage{Role: store.RoleAssistant, Content: answer, Provenance: result.ChunkIDs},
	)
	if err != nil {
		return failed, fmt.Errorf("chat: persist turn: %w", err)
	}

	return &Response{
		SessionID:  session.ID,
		State:      StateCompleted,
		Answer:     answer,
		Provenance: result.ChunkIDs,
		Chunks:     chunks,
	}, nil
}

func validateRequest(req Request) error {
	if req.SessionID == "" {
		return faults.NewValidationError("sessionId", "cannot be empty")
	}
	if req.OwnerID == "" {
		return faults.NewValidationError("ownerId", "cannot be empty")
	}
	if req.Message == "" {
		return faults.NewValidationError("message", "cannot be empty")
	}
	if req.MaxTokens < 0 {
		return faults.NewValidationError("maxTokens", "cannot be negative")
	}
	return nil
}

func toTurns(messages []store.ChatMessage) []assembler.Turn {
	if len(messages) == 0 {
		return nil
	}
	turns := make([]assembler.Turn, len(messages))
	for i, m := range messages {
		turns[i] = assembler.Turn{Role: m.Role, Content: m.Content}
	}
	return turns
}

// toMessages renders the assembled prompt as the LLM message sequence:
// system, kept history, current user message.
func toMessages(result *assembler.Result) []llm.Message {
	messages := make([]llm.Message, 0, len(result.History)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: result.System})
	for _, turn := range result.History {
		role := llm.RoleUser
		if turn.Role == store.RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Content})
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: result.CurrentMessage})
}

func (s *Service) observe(operation, resource string, duration time.Duration, err error, metadata map[string]interface{}) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveOperation(observability.OperationContext{
		Component: "chat",
		Operation: operation,
		Resource:  resource,
		Duration:  duration,
		Error:     err,
		Metadata:  metadata,
	})
}
