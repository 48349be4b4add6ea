package llm

import (
	"context"
	"fmt"

	"github.com/jurisol/jurisol/internal/domain"
)

// MockClient is a mock implementation of Client for testing and offline
// development.
type MockClient struct{}

// NewMockClient creates a new mock LLM client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Ensure MockClient implements Client interface.
var _ Client = (*MockClient)(nil)

// Generate returns a mock response echoing the last user message.
func (m *MockClient) Generate(_ context.Context, messages []domain.Message) (Response, error) {
	content := m.generateMockResponse(messages)
	prompt := m.estimateTokens(messages)
	completion := len(content) / 4
	return Response{
		Content:          content,
		Model:            "mock",
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}, nil
}

// generateMockResponse generates a mock response based on the conversation.
func (m *MockClient) generateMockResponse(messages []domain.Message) string {
	var lastUserMessage string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			lastUserMessage = messages[i].Content
			break
		}
	}
	if lastUserMessage == "" {
		return "[MOCK] This is a mock response from the LLM client."
	}
	return fmt.Sprintf("[MOCK] Received your message: %q. This is a mock response.", truncate(lastUserMessage, 100))
}

// estimateTokens provides a rough token count estimate.
func (m *MockClient) estimateTokens(messages []domain.Message) int {
	total := 0
	for _, msg := range messages {
		total += len(msg.Content) / 4
	}
	return total
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
