package store

import (
	"context"
	"fmt"

	"github.com/contextra/ragcore/v1/postgres"
)

// DocumentRepository persists documents and their processing state.
type DocumentRepository struct {
	db *postgres.Postgres
}

// NewDocumentRepository constructs a DocumentRepository.
func NewDocumentRepository(db *postgres.Postgres) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a new document row.
func (r *DocumentRepository) Create(ctx context.Context, doc *Document) error {
	if err := r.db.Create(ctx, doc); err != nil {
		return fmt.Errorf("store: create document: %w", err)
	}
	return nil
}

// Get fetches a document by id.
func (r *DocumentRepository) Get(ctx context.Context, id string) (*Document, error) {
	var doc Document
	if err := r.db.First(ctx, &doc, "id = ?", id); err != nil {
		return nil, fmt.Errorf("store: get document %s: %w", id, err)
	}
	return &doc, nil
}

// GetOwned fetches a document by id, scoped to its owner.
func (r *DocumentRepository) GetOwned(ctx context.Context, id, ownerID string) (*Document, error) {
	var doc Document
	if err := r.db.First(ctx, &doc, "id = ? AND owner_id = ?", id, ownerID); err != nil {
		return nil, fmt.Errorf("store: get document %s: %w", id, err)
	}
	return &doc, nil
}

// ListByOwner returns all documents of one owner, newest first.
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	var docs []Document
	err := r.db.DB().WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("store: list documents: %w", err)
	}
	return docs, nil
}

// SetStatus transitions a document's processing state. The error message is
// cleared on non-failed states.
func (r *DocumentRepository) SetStatus(ctx context.Context, id, status, errMsg string) error {
	_, err := r.db.UpdateWhere(ctx, &Document{},
		map[string]interface{}{"status": status, "error": errMsg},
		"id = ?", id)
	if err != nil {
		return fmt.Errorf("store: set document %s status: %w", id, err)
	}
	return nil
}

// SetProcessed marks a document fully indexed with its final chunk count.
func (r *DocumentRepository) SetProcessed(ctx context.Context, id string, chunkCount int) error {
	_, err := r.db.UpdateWhere(ctx, &Document{},
		map[string]interface{}{"status": DocumentStatusProcessed, "chunk_count": chunkCount, "error": ""},
		"id = ?", id)
	if err != nil {
		return fmt.Errorf("store: mark document %s processed: %w", id, err)
	}
	return nil
}

// Delete removes a document and its chunks.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	return r.db.Transaction(ctx, func(tx *postgres.Postgres) error {
		if _, err := tx.Delete(ctx, &DocumentChunk{}, "document_id = ?", id); err != nil {
			return fmt.Errorf("store: delete chunks of document %s: %w", id, err)
		}
		if _, err := tx.Delete(ctx, &Document{}, "id = ?", id); err != nil {
			return fmt.Errorf("store: delete document %s: %w", id, err)
		}
		return nil
	})
}

// CountByOwner returns total and processed document counts for one owner.
func (r *DocumentRepository) CountByOwner(ctx context.Context, ownerID string) (total, processed int64, err error) {
	if err = r.db.Count(ctx, &Document{}, &total, "owner_id = ?", ownerID); err != nil {
		return 0, 0, fmt.Errorf("store: count documents: %w", err)
	}
	if err = r.db.Count(ctx, &Document{}, &processed, "owner_id = ? AND status = ?", ownerID, DocumentStatusProcessed); err != nil {
		return 0, 0, fmt.Errorf("store: count processed documents: %w", err)
	}
	return total, processed, nil
}
