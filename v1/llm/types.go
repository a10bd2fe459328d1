package llm

import "context"

// Message roles understood by chat-completion backends.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat-completion prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider contract
type Provider interface {
	// Complete generates an assistant reply for the given messages.
	// maxTokens bounds the completion length; zero means the provider default.
	Complete(ctx context.Context, model string, messages []Message, maxTokens int) (string, error)
}
