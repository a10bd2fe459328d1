package vectordb

import "time"

// IndexEntry is the persisted unit inside the vector index: a chunk
// identifier, its embedding and the minimal metadata needed for filtering.
type IndexEntry struct {
	// ChunkID uniquely identifies the chunk; re-upserting the same id
	// replaces the stored vector and metadata.
	ChunkID string `json:"chunkId"`

	// Vector is the dense embedding of the chunk text.
	Vector []float32 `json:"vector"`

	// DocumentID references the parent document.
	DocumentID string `json:"documentId"`

	// OwnerID scopes the entry to its owning user.
	OwnerID string `json:"ownerId"`

	// Ordinal is the chunk's position within its document, used for stable
	// tie-breaking on equal scores.
	Ordinal int `json:"ordinal"`

	// CreatedAt is when the entry was indexed.
	CreatedAt time.Time `json:"createdAt"`
}

// Filter restricts a search to an owner/document subset. A zero filter
// matches everything in the collection.
type Filter struct {
	// OwnerID limits results to entries owned by this user.
	OwnerID string `json:"ownerId,omitempty"`

	// DocumentIDs limits results to entries from these documents.
	DocumentIDs []string `json:"documentIds,omitempty"`

	// IngestedAfter / IngestedBefore bound the indexing time of matching
	// entries.
	IngestedAfter  *time.Time `json:"ingestedAfter,omitempty"`
	IngestedBefore *time.Time `json:"ingestedBefore,omitempty"`
}

// IsZero reports whether the filter restricts anything at all.
func (f *Filter) IsZero() bool {
	return f == nil ||
		(f.OwnerID == "" && len(f.DocumentIDs) == 0 && f.IngestedAfter == nil && f.IngestedBefore == nil)
}

// SearchRequest represents a single similarity search query.
type SearchRequest struct {
	// CollectionName is the target collection to search in.
	CollectionName string `json:"collectionName"`

	// Vector is the query embedding to find similar entries for.
	Vector []float32 `json:"vector"`

	// TopK is the maximum number of results to return.
	TopK int `json:"topK"`

	// Filter optionally restricts the search to an owner/document subset.
	Filter *Filter `json:"filter,omitempty"`

	// MinScore drops results scoring below it. Zero disables the floor.
	MinScore float32 `json:"minScore,omitempty"`
}

// SearchResult is a single matched entry with its similarity score.
type SearchResult struct {
	// ChunkID identifies the matched chunk.
	ChunkID string `json:"chunkId"`

	// Score is the similarity score; higher is more similar for cosine.
	Score float32 `json:"score"`

	// DocumentID, OwnerID and Ordinal echo the stored metadata.
	DocumentID string `json:"documentId"`
	OwnerID    string `json:"ownerId"`
	Ordinal    int    `json:"ordinal"`
}

// Collection contains metadata about a vector collection.
type Collection struct {
	// Name is the unique identifier of the collection.
	Name string `json:"name"`

	// Status indicates the operational state (e.g., "Green", "Yellow").
	Status string `json:"status"`

	// VectorSize is the dimension of vectors in this collection.
	VectorSize int `json:"vectorSize"`

	// Distance is the similarity metric (e.g., "Cosine").
	Distance string `json:"distance"`

	// Points is the number of stored entries.
	Points uint64 `json:"points"`
}
