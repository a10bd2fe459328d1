// Package chunker splits document text into overlapping chunks suitable for
// embedding and similarity search.
//
// Splitting operates on the whitespace-normalized text and prefers breaking
// at sentence boundaries (".", "!", "?") or word boundaries when one exists
// inside the chunk window, falling back to a hard cut at the configured
// size. Each chunk after the first starts Overlap runes before the end of
// its predecessor so adjacent chunks share context.
//
// Offsets are rune offsets into the normalized text, not byte offsets into
// the raw input: the corpus is largely non-ASCII and byte positions would
// land mid-character.
package chunker

import (
	"fmt"
	"strings"
	"unicode"
)

// Chunk is one contiguous slice of a document's normalized text.
type Chunk struct {
	// Ordinal is the zero-based position of the chunk within its document.
	Ordinal int

	// Start and End are rune offsets into the normalized text, half-open.
	Start int
	End   int

	// Text is the chunk content with surrounding spaces trimmed.
	Text string
}

// Splitter produces deterministic overlapping chunks.
type Splitter struct {
	cfg Config
}

// NewSplitter validates the configuration and returns a Splitter.
func NewSplitter(cfg Config) (*Splitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Splitter{cfg: cfg}, nil
}

// Normalize collapses all whitespace runs into single spaces and trims the
// ends. Chunk offsets refer to the text this function returns.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Split breaks text into chunks. Empty (or all-whitespace) input yields no
// chunks; input no longer than the chunk size yields exactly one chunk
// spanning the whole text.
func (s *Splitter) Split(text string) []Chunk {
	runes := []rune(Normalize(text))
	if len(runes) == 0 {
		return nil
	}

	size := s.cfg.ChunkSize
	overlap := s.cfg.Overlap

	if len(runes) <= size {
		return []Chunk{{Ordinal: 0, Start: 0, End: len(runes), Text: string(runes)}}
	}

	var chunks []Chunk
	start := 0
	for start < len(runes) {
		end := start + size

		if end < len(runes) {
			end = breakPoint(runes, start, end)
		} else {
			end = len(runes)
		}

		if text := strings.TrimSpace(string(runes[start:end])); text != "" {
			chunks = append(chunks, Chunk{
				Ordinal: len(chunks),
				Start:   start,
				End:     end,
				Text:    text,
			})
		}

		if end >= len(runes) {
			break
		}

		next := end - overlap
		if next <= start {
			// Boundary search shrank the window below the overlap step.
			// Advance past the current end so splitting always terminates.
			next = end
		}
		start = next
	}

	return chunks
}

// SplitWithSize splits using explicit parameters instead of the configured
// defaults, as documents may carry their own chunking settings.
func (s *Splitter) SplitWithSize(text string, chunkSize, overlap int) ([]Chunk, error) {
	override := Config{ChunkSize: chunkSize, Overlap: overlap}
	if err := override.Validate(); err != nil {
		return nil, fmt.Errorf("chunker: invalid split parameters: %w", err)
	}
	return (&Splitter{cfg: override}).Split(text), nil
}

// breakPoint finds the best cut position in (start, limit]. Sentence-ending
// punctuation wins over a plain space; with neither present the hard limit
// stands.
func breakPoint(runes []rune, start, limit int) int {
	lastSpace := -1
	lastPunct := -1
	for i := start; i < limit; i++ {
		switch {
		case unicode.IsSpace(runes[i]):
			lastSpace = i
		case runes[i] == '.' || runes[i] == '!' || runes[i] == '?':
			lastPunct = i
		}
	}

	if lastPunct > lastSpace && lastPunct > start {
		return lastPunct + 1
	}
	if lastSpace > start {
		return lastSpace + 1
	}
	return limit
}
