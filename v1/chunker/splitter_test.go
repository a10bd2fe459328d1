package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSplitter(t *testing.T, size, overlap int) *Splitter {
	t.Helper()
	s, err := NewSplitter(Config{ChunkSize: size, Overlap: overlap})
	require.NoError(t, err)
	return s
}

func TestNewSplitter_RejectsInvalidConfig(t *testing.T) {
	_, err := NewSplitter(Config{ChunkSize: 0, Overlap: 0})
	assert.Error(t, err)

	_, err = NewSplitter(Config{ChunkSize: 10, Overlap: 10})
	assert.Error(t, err)

	_, err = NewSplitter(Config{ChunkSize: 10, Overlap: -1})
	assert.Error(t, err)
}

func TestSplit_EmptyText(t *testing.T) {
	s := newSplitter(t, 20, 5)

	assert.Empty(t, s.Split(""))
	assert.Empty(t, s.Split("   \n\t  "))
}

func TestSplit_ShortTextYieldsSingleChunk(t *testing.T) {
	s := newSplitter(t, 100, 10)

	chunks := s.Split("a short document")
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Ordinal)
	assert.Equal(t, "a short document", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len([]rune("a short document")), chunks[0].End)
}

func TestSplit_NormalizesWhitespace(t *testing.T) {
	s := newSplitter(t, 100, 10)

	chunks := s.Split("  hello\n\n  world\t again ")
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world again", chunks[0].Text)
}

func TestSplit_Deterministic(t *testing.T) {
	s := newSplitter(t, 50, 10)
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)

	first := s.Split(text)
	second := s.Split(text)
	assert.Equal(t, first, second)
}

func TestSplit_OrdinalsContiguous(t *testing.T) {
	s := newSplitter(t, 40, 8)
	text := strings.Repeat("Sentence one here. Sentence two follows! ", 15)

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		assert.Equal(t, i, c.Ordinal)
	}
}

func TestSplit_CoversWholeTextWithOverlap(t *testing.T) {
	s := newSplitter(t, 40, 8)
	text := strings.Repeat("Sentence one here. Sentence two follows! ", 15)
	normalized := []rune(Normalize(text))

	chunks := s.Split(text)
	require.NotEmpty(t, chunks)

	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len(normalized), chunks[len(chunks)-1].End)

	for i := 1; i < len(chunks); i++ {
		// No gaps: each chunk starts at or before its predecessor's end.
		assert.LessOrEqual(t, chunks[i].Start, chunks[i-1].End,
			"gap between chunk %d and %d", i-1, i)
		// The overlap step: each chunk begins exactly Overlap runes before
		// the previous chunk's end.
		assert.Equal(t, chunks[i-1].End-8, chunks[i].Start)
	}
}

func TestSplit_PrefersSentenceBoundary(t *testing.T) {
	s := newSplitter(t, 30, 5)

	chunks := s.Split("First sentence ends here. Second sentence is much longer than that.")
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, "First sentence ends here.", chunks[0].Text)
}

func TestSplit_HardCutWithoutBoundaries(t *testing.T) {
	s := newSplitter(t, 10, 2)

	chunks := s.Split(strings.Repeat("x", 25))
	require.NotEmpty(t, chunks)
	assert.Equal(t, 10, chunks[0].End)
	for _, c := range chunks {
		assert.LessOrEqual(t, c.End-c.Start, 10)
	}
}

func TestSplit_RussianTwoChunkScenario(t *testing.T) {
	s := newSplitter(t, 20, 5)

	chunks := s.Split("Кот сидит на окне. Окно открыто.")
	require.Len(t, chunks, 2)

	// The second chunk must begin within the last 5 runes of the first.
	assert.GreaterOrEqual(t, chunks[1].Start, chunks[0].End-5)
	assert.Less(t, chunks[1].Start, chunks[0].End)
	assert.Equal(t, "Кот сидит на окне.", chunks[0].Text)
	assert.Equal(t, "кне. Окно открыто.", chunks[1].Text)
}

func TestSplitWithSize_OverridesConfig(t *testing.T) {
	s := newSplitter(t, 1000, 200)

	chunks, err := s.SplitWithSize("Кот сидит на окне. Окно открыто.", 20, 5)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)

	_, err = s.SplitWithSize("text", 10, 10)
	assert.Error(t, err)
}
