package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/schema"

	"github.com/ahmad123576/History-Chatbot/internal/conversation"
	"github.com/ahmad123576/History-Chatbot/internal/domain"
)

// contentGenerator is the part of a langchaingo model the adapter relies on.
type contentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// GoogleAI invokes Gemini models through langchaingo.
type GoogleAI struct {
	model     string
	generator contentGenerator
}

// NewGoogleAI creates a Gemini client for the given model.
func NewGoogleAI(ctx context.Context, apiKey, model string) (*GoogleAI, error) {
	gen, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create googleai client: %w", err)
	}
	return &GoogleAI{model: model, generator: gen}, nil
}

// WithModel returns a client for another Gemini model sharing the same connection.
func (g *GoogleAI) WithModel(model string) conversation.ModelInvoker {
	return &GoogleAI{model: model, generator: g.generator}
}

// Invoke sends the prompt to Gemini and joins the text of the first candidate.
func (g *GoogleAI) Invoke(ctx context.Context, prompt []domain.Turn, temperature float64) (string, error) {
	messages := make([]llms.MessageContent, 0, len(prompt))
	for _, turn := range prompt {
		messages = append(messages, llms.TextParts(messageType(turn.Role), turn.Content))
	}

	resp, err := g.generator.GenerateContent(ctx, messages,
		llms.WithModel(g.model),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

func messageType(role domain.Role) schema.ChatMessageType {
	switch role {
	case domain.RoleSystem:
		return schema.ChatMessageTypeSystem
	case domain.RoleAssistant:
		return schema.ChatMessageTypeAI
	default:
		return schema.ChatMessageTypeHuman
	}
}
