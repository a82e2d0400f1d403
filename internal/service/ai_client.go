package service

import (
	"context"
	"fmt"
)

// Completer is the external LLM boundary. The core only depends on this
// contract: ordered messages in, assistant text out, classified errors.
type Completer interface {
	// Complete performs a chat completion and returns the assistant text
	Complete(ctx context.Context, messages []ChatMessage, model string) (string, error)

	// CompleteStream performs a streaming chat completion; the callback
	// receives each chunk and the full assistant text is returned at the end
	CompleteStream(ctx context.Context, messages []ChatMessage, model string, callback StreamCallback) (string, error)

	// IsEnabled returns whether the client is configured and ready
	IsEnabled() bool
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamChunk represents a generic streaming response chunk
type StreamChunk struct {
	// Regular content
	Content string

	// Thinking/reasoning content (provider-specific, e.g. DeepSeek)
	ThinkingContent string

	// Role (assistant, user, system)
	Role string

	// Whether this is the final chunk
	Done bool
}

// StreamCallback is called for each chunk in streaming mode
type StreamCallback func(chunk *StreamChunk) error

// API error kinds the fallback path distinguishes
type ErrorKind string

const (
	ErrQuotaExceeded  ErrorKind = "quota_exceeded"
	ErrRateLimited    ErrorKind = "rate_limited"
	ErrInvalidRequest ErrorKind = "invalid_request"
	ErrOther          ErrorKind = "other"
)

// APIError is a classified failure from the external completion API. Any kind
// triggers the same local-fallback behavior; the kind is kept for logging.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm api error (%s, status %d): %s", e.Kind, e.Status, e.Message)
}
