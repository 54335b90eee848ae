package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmad123576/History-Chatbot/internal/conversation"
	"github.com/ahmad123576/History-Chatbot/internal/domain"
)

// MockClient is a mock implementation of Invoker for offline use and tests.
type MockClient struct {
	model string
}

// NewMockClient creates a new mock client.
func NewMockClient(model string) *MockClient {
	return &MockClient{model: model}
}

// WithModel returns a mock client reporting model.
func (m *MockClient) WithModel(model string) conversation.ModelInvoker {
	return NewMockClient(model)
}

// Invoke returns a canned reply that echoes the latest user question.
func (m *MockClient) Invoke(ctx context.Context, prompt []domain.Turn, temperature float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var lastUserMessage string
	for i := len(prompt) - 1; i >= 0; i-- {
		if prompt[i].Role == domain.RoleUser {
			lastUserMessage = prompt[i].Content
			break
		}
	}

	if lastUserMessage == "" {
		return "[MOCK] This is a mock response from the history teacher.", nil
	}

	return fmt.Sprintf("[MOCK] You asked: %q. That is a great history question! (%d earlier messages)",
		truncate(lastUserMessage, 100), max(0, len(prompt)-2)), nil
}

// ListModels returns the configured model as the only mock model.
func (m *MockClient) ListModels(ctx context.Context) ([]Model, error) {
	return []Model{
		{
			ID:      m.model,
			Object:  "model",
			Created: time.Now().Unix(),
			OwnedBy: "mock",
		},
	}, nil
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
