// Package llm abstracts chat-completion providers behind a single Generate
// call so that the rest of the service never depends on a concrete vendor
// SDK.
package llm

import (
	"context"

	"github.com/jurisol/jurisol/internal/domain"
)

// Response is the answer produced by a completion call.
type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client generates a completion for a conversation.
type Client interface {
	Generate(ctx context.Context, messages []domain.Message) (Response, error)
}
