package retriever

import "context"

// RetrievedChunk is one ranked retrieval result. It is ephemeral: produced
// per query, handed to the assembler, never persisted.
type RetrievedChunk struct {
	// ChunkID identifies the chunk in both the vector index and the
	// relational store.
	ChunkID string `json:"chunkId"`

	// DocumentID references the chunk's parent document.
	DocumentID string `json:"documentId"`

	// Ordinal is the chunk's position within its document.
	Ordinal int `json:"ordinal"`

	// Score is the cosine similarity against the query vector.
	Score float32 `json:"score"`

	// Rank is the zero-based position in the final ranking.
	Rank int `json:"rank"`

	// Text is the chunk content, resolved from the relational store.
	Text string `json:"text"`

	// Query echoes the query this chunk was retrieved for.
	Query string `json:"query"`
}

// Request carries the parameters of one retrieval.
type Request struct {
	// Query is the user message to search with.
	Query string

	// OwnerID scopes the search to one user's corpus.
	OwnerID string

	// K is the requested number of chunks. Zero means the configured
	// default; other values are clamped to [1, KMax].
	K int

	// MinScore overrides the configured similarity floor when positive.
	// Zero means the configured floor; negative disables the floor.
	MinScore float32
}

// Embedder is the narrow embedding surface the retriever needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChunkLookup resolves chunk identifiers to their stored text. Chunk text
// lives in the relational store, not in the vector index.
type ChunkLookup interface {
	// ChunkTexts returns the text for each known id. Unknown ids are
	// simply absent from the result, not an error.
	ChunkTexts(ctx context.Context, chunkIDs []string) (map[string]string, error)
}
