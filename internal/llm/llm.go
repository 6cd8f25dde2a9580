// Package llm talks to the chat-completion backends that write answers.
package llm

import "context"

// Provider generates a completion for a conversation.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	Name() string
}

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest contains the parameters for an LLM completion request.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// CompletionResponse contains the result of an LLM completion request.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}

// Cost estimates the USD cost of the response using the price table.
func (r *CompletionResponse) Cost() float64 {
	if r == nil {
		return 0
	}
	return EstimateCost(r.Model, r.InputTokens, r.OutputTokens)
}
