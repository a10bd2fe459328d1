package store

import (
	"context"
	"fmt"

	"github.com/contextra/ragcore/v1/postgres"
)

// ChunkRepository persists document chunks. Chunk rows are the source of
// truth for chunk text; the vector index only carries ids and payload.
type ChunkRepository struct {
	db *postgres.Postgres
}

// NewChunkRepository constructs a ChunkRepository.
func NewChunkRepository(db *postgres.Postgres) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// ReplaceForDocument atomically swaps the chunk set of one document. Used by
// ingestion so a re-ingested document never holds a mix of old and new chunks.
func (r *ChunkRepository) ReplaceForDocument(ctx context.Context, documentID string, chunks []DocumentChunk) error {
	return r.db.Transaction(ctx, func(tx *postgres.Postgres) error {
		if _, err := tx.Delete(ctx, &DocumentChunk{}, "document_id = ?", documentID); err != nil {
			return fmt.Errorf("store: clear chunks of document %s: %w", documentID, err)
		}
		if len(chunks) == 0 {
			return nil
		}
		if err := tx.Create(ctx, &chunks); err != nil {
			return fmt.Errorf("store: insert chunks of document %s: %w", documentID, err)
		}
		return nil
	})
}

// ByDocument returns the chunks of one document in ordinal order.
func (r *ChunkRepository) ByDocument(ctx context.Context, documentID string) ([]DocumentChunk, error) {
	var chunks []DocumentChunk
	err := r.db.DB().WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("ordinal ASC").
		Find(&chunks).Error
	if err != nil {
		return nil, fmt.Errorf("store: list chunks of document %s: %w", documentID, err)
	}
	return chunks, nil
}

// DeleteByDocument removes all chunk rows of one document.
func (r *ChunkRepository) DeleteByDocument(ctx context.Context, documentID string) (int64, error) {
	n, err := r.db.Delete(ctx, &DocumentChunk{}, "document_id = ?", documentID)
	if err != nil {
		return 0, fmt.Errorf("store: delete chunks of document %s: %w", documentID, err)
	}
	return n, nil
}

// MarkIndexed flags the given chunks as present in the vector index.
func (r *ChunkRepository) MarkIndexed(ctx context.Context, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}
	_, err := r.db.UpdateWhere(ctx, &DocumentChunk{},
		map[string]interface{}{"indexed": true},
		"id IN ?", chunkIDs)
	if err != nil {
		return fmt.Errorf("store: mark chunks indexed: %w", err)
	}
	return nil
}

// ChunkTexts resolves chunk ids to their stored text. Ids that match no row
// are silently absent from the result.
func (r *ChunkRepository) ChunkTexts(ctx context.Context, chunkIDs []string) (map[string]string, error) {
	texts := make(map[string]string, len(chunkIDs))
	if len(chunkIDs) == 0 {
		return texts, nil
	}
	var chunks []DocumentChunk
	err := r.db.DB().WithContext(ctx).
		Select("id", "text").
		Where("id IN ?", chunkIDs).
		Find(&chunks).Error
	if err != nil {
		return nil, fmt.Errorf("store: resolve chunk texts: %w", err)
	}
	for _, c := range chunks {
		texts[c.ID] = c.Text
	}
	return texts, nil
}

// CountByOwner returns the number of chunk rows belonging to one owner.
func (r *ChunkRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	if err := r.db.Count(ctx, &DocumentChunk{}, &n, "owner_id = ?", ownerID); err != nil {
		return 0, fmt.Errorf("store: count chunks: %w", err)
	}
	return n, nil
}
