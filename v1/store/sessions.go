package store

import (
	"context"
	"fmt"
	"time"

	"github.com/contextra/ragcore/v1/postgres"
)

// SessionRepository persists chat sessions and their append-only message log.
type SessionRepository struct {
	db *postgres.Postgres
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *postgres.Postgres) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session row.
func (r *SessionRepository) Create(ctx context.Context, session *ChatSession) error {
	if err := r.db.Create(ctx, session); err != nil {
		return fmt.Errorf("store: create session: %w", err)
	}
	return nil
}

// Get fetches a session by id.
func (r *SessionRepository) Get(ctx context.Context, id string) (*ChatSession, error) {
	var session ChatSession
	if err := r.db.First(ctx, &session, "id = ?", id); err != nil {
		return nil, fmt.Errorf("store: get session %s: %w", id, err)
	}
	return &session, nil
}

// GetOwned fetches a session by id, scoped to its owner.
func (r *SessionRepository) GetOwned(ctx context.Context, id, ownerID string) (*ChatSession, error) {
	var session ChatSession
	if err := r.db.First(ctx, &session, "id = ? AND owner_id = ?", id, ownerID); err != nil {
		return nil, fmt.Errorf("store: get session %s: %w", id, err)
	}
	return &session, nil
}

// ListByOwner returns all sessions of one owner, most recently active first.
func (r *SessionRepository) ListByOwner(ctx context.Context, ownerID string) ([]ChatSession, error) {
	var sessions []ChatSession
	err := r.db.DB().WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("store: list sessions: %w", err)
	}
	return sessions, nil
}

// Delete removes a session and its messages.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.Transaction(ctx, func(tx *postgres.Postgres) error {
		if _, err := tx.Delete(ctx, &ChatMessage{}, "session_id = ?", id); err != nil {
			return fmt.Errorf("store: delete messages of session %s: %w", id, err)
		}
		if _, err := tx.Delete(ctx, &ChatSession{}, "id = ?", id); err != nil {
			return fmt.Errorf("store: delete session %s: %w", id, err)
		}
		return nil
	})
}

// AppendMessages adds messages to a session's log and bumps the session's
// activity timestamp. All messages land or none do.
func (r *SessionRepository) AppendMessages(ctx context.Context, sessionID string, messages ...ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	for i := range messages {
		messages[i].SessionID = sessionID
	}
	return r.db.Transaction(ctx, func(tx *postgres.Postgres) error {
		if err := tx.Create(ctx, &messages); err != nil {
			return fmt.Errorf("store: append messages to session %s: %w", sessionID, err)
		}
		_, err := tx.UpdateWhere(ctx, &ChatSession{},
			map[string]interface{}{"updated_at": time.Now().UTC()},
			"id = ?", sessionID)
		if err != nil {
			return fmt.Errorf("store: touch session %s: %w", sessionID, err)
		}
		return nil
	})
}

// History returns the last limit messages of a session in chronological
// order. A non-positive limit returns the full log.
func (r *SessionRepository) History(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error) {
	var messages []ChatMessage
	q := r.db.DB().WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("store: load history of session %s: %w", sessionID, err)
	}
	// Reverse the newest-first page back to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
