// Package llm wraps the text-generation collaborators: an AWS Bedrock
// Converse client, a Gemini fallback, and the prompt-level services built on
// them (structured triage classification and grounded instruction
// generation). Every caller treats these as fallible, time-bounded calls and
// keeps a rule-based fallback ready.
package llm

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is a provider-neutral message representation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type Request struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type Response struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// Client is the completion capability the triage services depend on.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
