// Package llm provides the model clients that turn an assembled prompt into a reply.
package llm

import (
	"context"
	"errors"

	"github.com/ahmad123576/History-Chatbot/internal/conversation"
	"github.com/ahmad123576/History-Chatbot/internal/domain"
)

// ErrEmptyResponse is returned when the provider answers without any choices.
var ErrEmptyResponse = errors.New("model returned no choices")

// Invoker defines the interface for model invocation.
type Invoker interface {
	// Invoke sends the prompt and returns the generated text.
	Invoke(ctx context.Context, prompt []domain.Turn, temperature float64) (string, error)
}

// ModelLister is implemented by clients that can enumerate available models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]Model, error)
}

// Model represents a model from the models list.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// Ensure implementations satisfy the interfaces.
var (
	_ Invoker     = (*Client)(nil)
	_ Invoker     = (*GoogleAI)(nil)
	_ Invoker     = (*MockClient)(nil)
	_ ModelLister = (*Client)(nil)
	_ ModelLister = (*MockClient)(nil)

	_ conversation.ModelSelector = (*Client)(nil)
	_ conversation.ModelSelector = (*GoogleAI)(nil)
	_ conversation.ModelSelector = (*MockClient)(nil)
)
