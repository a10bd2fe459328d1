package store

import (
	"time"
)

// Document processing states.
const (
	DocumentStatusPending    = "pending"
	DocumentStatusProcessing = "processing"
	DocumentStatusProcessed  = "processed"
	DocumentStatusFailed     = "failed"
)

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User owns documents and chat sessions.
type User struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"uniqueIndex;size:255"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Document is one uploaded text. Raw uploads live in object storage under
// ObjectKey; the normalized text is chunked into DocumentChunk rows.
// A document is immutable once chunked; re-upload replaces its chunk set.
type Document struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	OwnerID    string    `gorm:"type:uuid;index;not null"`
	Title      string    `gorm:"size:512"`
	ObjectKey  string    `gorm:"size:512"`
	Status     string    `gorm:"size:32;default:pending;index"`
	ChunkCount int       `gorm:"default:0"`
	Error      string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`

	Chunks []DocumentChunk `gorm:"constraint:OnDelete:CASCADE"`
}

// DocumentChunk is the atomic retrieval unit: a contiguous slice of the
// normalized document text. The id doubles as the vector point id in the
// index, derived deterministically from (document id, ordinal) so
// re-ingestion replaces instead of duplicating.
type DocumentChunk struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	DocumentID  string    `gorm:"type:uuid;index;not null"`
	OwnerID     string    `gorm:"type:uuid;index;not null"`
	Ordinal     int       `gorm:"not null"`
	StartOffset int       `gorm:"not null"`
	EndOffset   int       `gorm:"not null"`
	Text        string    `gorm:"type:text;not null"`
	Indexed     bool      `gorm:"default:false"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// ChatSession groups an append-only sequence of chat messages.
type ChatSession struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	OwnerID   string    `gorm:"type:uuid;index;not null"`
	Title     string    `gorm:"size:512"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Messages []ChatMessage `gorm:"constraint:OnDelete:CASCADE"`
}

// ChatMessage is one turn of a session. Assistant turns carry the chunk ids
// used as context (provenance); user turns leave it empty.
type ChatMessage struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	SessionID  string    `gorm:"type:uuid;index;not null"`
	Role       string    `gorm:"size:16;not null"`
	Content    string    `gorm:"type:text;not null"`
	Provenance []string  `gorm:"serializer:json"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// Models lists every persisted type for schema migration.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Document{},
		&DocumentChunk{},
		&ChatSession{},
		&ChatMessage{},
	}
}
