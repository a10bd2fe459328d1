package assembler

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contextra/ragcore/v1/faults"
	"github.com/contextra/ragcore/v1/retriever"
)

func newTestAssembler(t *testing.T, budget int) *Assembler {
	t.Helper()

	a, err := New(&Config{Budget: budget, SystemPrompt: "sys"})
	require.NoError(t, err)
	return a
}

func chunk(id string, rank int, text string) retriever.RetrievedChunk {
	return retriever.RetrievedChunk{ChunkID: id, Rank: rank, Text: text, Score: 1 - float32(rank)/10}
}

func TestAssemble_AllContentFits(t *testing.T) {
	a := newTestAssembler(t, 1000)

	result, err := a.Assemble(Input{
		CurrentMessage: "question",
		History: []Turn{
			{Role: "user", Content: "earlier question"},
			{Role: "assistant", Content: "earlier answer"},
		},
		Chunks: []retriever.RetrievedChunk{
			chunk("c1", 0, "first chunk"),
			chunk("c2", 1, "second chunk"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"c1", "c2"}, result.ChunkIDs)
	assert.Len(t, result.History, 2)
	assert.Contains(t, result.System, "[1] first chunk")
	assert.Contains(t, result.System, "[2] second chunk")
	assert.Equal(t, "question", result.CurrentMessage)
}

func TestAssemble_NoChunksOmitsContextSection(t *testing.T) {
	a := newTestAssembler(t, 1000)

	result, err := a.Assemble(Input{CurrentMessage: "question"})
	require.NoError(t, err)

	assert.Equal(t, "sys", result.System)
	assert.Empty(t, result.ChunkIDs)
}

func TestAssemble_DropsLowestRankedChunksFirst(t *testing.T) {
	// Budget fits the mandatory parts plus roughly one chunk.
	a := newTestAssembler(t, 100)

	longText := strings.Repeat("x", 40)
	result, err := a.Assemble(Input{
		CurrentMessage: "q",
		Chunks: []retriever.RetrievedChunk{
			chunk("c1", 0, longText),
			chunk("c2", 1, longText),
			chunk("c3", 2, longText),
		},
	})
	require.NoError(t, err)

	// Included chunks are always a prefix of the ranking.
	assert.Equal(t, []string{"c1"}, result.ChunkIDs)
	assert.Contains(t, result.System, "[1] "+longText)
	assert.NotContains(t, result.System, "[2]")
}

func TestAssemble_DropsOldestHistoryFirst(t *testing.T) {
	a := newTestAssembler(t, 40)

	result, err := a.Assemble(Input{
		CurrentMessage: "q",
		History: []Turn{
			{Role: "user", Content: strings.Repeat("a", 20)},
			{Role: "assistant", Content: strings.Repeat("b", 15)},
			{Role: "user", Content: strings.Repeat("c", 10)},
		},
	})
	require.NoError(t, err)

	// Budget after "sys"+"q" is 36: keeps the two newest turns (10+15),
	// drops the oldest.
	require.Len(t, result.History, 2)
	assert.Equal(t, strings.Repeat("b", 15), result.History[0].Content)
	assert.Equal(t, strings.Repeat("c", 10), result.History[1].Content)
}

func TestAssemble_HistoryOutranksChunks(t *testing.T) {
	a := newTestAssembler(t, 60)

	result, err := a.Assemble(Input{
		CurrentMessage: "q",
		History: []Turn{
			{Role: "user", Content: strings.Repeat("h", 50)},
		},
		Chunks: []retriever.RetrievedChunk{
			chunk("c1", 0, strings.Repeat("x", 30)),
		},
	})
	require.NoError(t, err)

	// The recent turn consumes the budget; the chunk is dropped.
	assert.Len(t, result.History, 1)
	assert.Empty(t, result.ChunkIDs)
}

func TestAssemble_BudgetRespected(t *testing.T) {
	a := newTestAssembler(t, 200)

	result, err := a.Assemble(Input{
		CurrentMessage: "what do my documents say",
		History: []Turn{
			{Role: "user", Content: strings.Repeat("h", 80)},
			{Role: "assistant", Content: strings.Repeat("i", 80)},
		},
		Chunks: []retriever.RetrievedChunk{
			chunk("c1", 0, strings.Repeat("x", 60)),
			chunk("c2", 1, strings.Repeat("y", 60)),
		},
	})
	require.NoError(t, err)

	total := utf8.RuneCountInString(result.System) + utf8.RuneCountInString(result.CurrentMessage)
	for _, turn := range result.History {
		total += utf8.RuneCountInString(turn.Content)
	}
	assert.LessOrEqual(t, total, 200)
}

func TestAssemble_WholeChunkOrNothing(t *testing.T) {
	a := newTestAssembler(t, 60)

	text := strings.Repeat("x", 500)
	result, err := a.Assemble(Input{
		CurrentMessage: "q",
		Chunks:         []retriever.RetrievedChunk{chunk("c1", 0, text)},
	})
	require.NoError(t, err)

	// The chunk cannot fit, so nothing of it appears.
	assert.Empty(t, result.ChunkIDs)
	assert.NotContains(t, result.System, "x")
}

func TestAssemble_SkipsUnresolvedChunkText(t *testing.T) {
	a := newTestAssembler(t, 1000)

	result, err := a.Assemble(Input{
		CurrentMessage: "q",
		Chunks: []retriever.RetrievedChunk{
			chunk("gone", 0, ""),
			chunk("kept", 1, "still stored"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"kept"}, result.ChunkIDs)
}

func TestAssemble_BudgetExceeded(t *testing.T) {
	a := newTestAssembler(t, 10)

	_, err := a.Assemble(Input{
		CurrentMessage: "this message alone is longer than the whole budget",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, faults.ErrBudgetExceeded)
}

func TestAssemble_Deterministic(t *testing.T) {
	a := newTestAssembler(t, 150)

	in := Input{
		CurrentMessage: "q",
		History: []Turn{
			{Role: "user", Content: "one"},
			{Role: "assistant", Content: "two"},
		},
		Chunks: []retriever.RetrievedChunk{
			chunk("c1", 0, "alpha"),
			chunk("c2", 1, "beta"),
		},
	}

	first, err := a.Assemble(in)
	require.NoError(t, err)
	second, err := a.Assemble(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
