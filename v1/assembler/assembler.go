package assembler

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/contextra/ragcore/v1/faults"
	"github.com/contextra/ragcore/v1/retriever"
)

// Turn is one prior conversation turn handed to the assembler.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Input carries everything one assembly needs.
type Input struct {
	// SystemPrompt overrides the configured prompt when non-empty.
	SystemPrompt string

	// CurrentMessage is the user message of this turn. Always included.
	CurrentMessage string

	// History is the session's trailing history, oldest first.
	History []Turn

	// Chunks are retrieval results in rank order.
	Chunks []retriever.RetrievedChunk

	// Budget overrides the configured character budget when positive.
	Budget int
}

// Result is a fully assembled prompt.
type Result struct {
	// System is the system message content, including the context section
	// built from the included chunks.
	System string

	// History is the subset of input history that fit the budget, oldest
	// first, always a contiguous suffix of the input.
	History []Turn

	// CurrentMessage echoes the user message of this turn.
	CurrentMessage string

	// ChunkIDs lists the chunks whose text made it into the context, in
	// rank order. This becomes the provenance of the assistant turn.
	ChunkIDs []string
}

// Assembler packs system instructions, trailing history and retrieved chunks
// into a character-bounded prompt.
//
// When the budget is tight, content is dropped in reverse priority: chunks
// lowest rank first, then history oldest first. The system instructions and
// the current message are never dropped; if even those two cannot fit, the
// assembly fails with faults.ErrBudgetExceeded since that is a configuration
// problem, not a data problem.
type Assembler struct {
	cfg *Config
}

// New constructs an Assembler.
func New(cfg *Config) (*Assembler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("assembler: invalid config: %w", err)
	}
	return &Assembler{cfg: cfg}, nil
}

const contextHeader = "Context from the user's documents:"

// Assemble builds the prompt for one chat turn. Deterministic: identical
// input always yields an identical result.
//
// A chunk is included whole or not at all; a chunk that does not fit ends
// chunk inclusion so the included set is always a prefix of the ranking.
// Chunks with no resolved text are skipped without consuming budget.
func (a *Assembler) Assemble(in Input) (*Result, error) {
	budget := in.Budget
	if budget <= 0 {
		budget = a.cfg.Budget
	}
	systemPrompt := in.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = a.cfg.SystemPrompt
	}

	// The system instructions and the current message are mandatory.
	remaining := budget - runeLen(systemPrompt) - runeLen(in.CurrentMessage)
	if remaining < 0 {
		return nil, fmt.Errorf("assembler: system prompt and message need %d characters, budget is %d: %w",
			budget-remaining, budget, faults.ErrBudgetExceeded)
	}

	history, remaining := fitHistory(in.History, remaining)
	included := fitChunks(in.Chunks, remaining)

	return &Result{
		System:         buildSystem(systemPrompt, included),
		History:        history,
		CurrentMessage: in.CurrentMessage,
		ChunkIDs:       chunkIDs(included),
	}, nil
}

// fitHistory keeps the most recent turns that fit, dropping oldest first.
// The kept turns stay in chronological order.
func fitHistory(history []Turn, budget int) ([]Turn, int) {
	cut := len(history)
	for cut > 0 {
		cost := runeLen(history[cut-1].Content)
		if cost > budget {
			break
		}
		budget -= cost
		cut--
	}
	kept := history[cut:]
	if len(kept) == 0 {
		return nil, budget
	}
	return kept, budget
}

// fitChunks includes chunks in rank order until one no longer fits. Costs
// cover the chunk text plus its context-section markup so the rendered
// system message stays within budget.
func fitChunks(chunks []retriever.RetrievedChunk, budget int) []retriever.RetrievedChunk {
	var included []retriever.RetrievedChunk
	for _, c := range chunks {
		if c.Text == "" {
			continue
		}
		cost := runeLen(c.Text) + runeLen(fmt.Sprintf("\n\n[%d] ", len(included)+1))
		if len(included) == 0 {
			cost += runeLen("\n\n" + contextHeader)
		}
		if cost > budget {
			break
		}
		budget -= cost
		included = append(included, c)
	}
	return included
}

// buildSystem renders the system message: the instructions plus a numbered
// context section when any chunks were included.
func buildSystem(systemPrompt string, chunks []retriever.RetrievedChunk) string {
	if len(chunks) == 0 {
		return systemPrompt
	}

	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")
	b.WriteString(contextHeader)
	for i, c := range chunks {
		b.WriteString(fmt.Sprintf("\n\n[%d] %s", i+1, c.Text))
	}
	return b.String()
}

func chunkIDs(chunks []retriever.RetrievedChunk) []string {
	if len(chunks) == 0 {
		return nil
	}
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ChunkID
	}
	return ids
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
