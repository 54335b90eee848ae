package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/ahmad123576/History-Chatbot/internal/domain"
)

type fakeGenerator struct {
	messages []llms.MessageContent
	opts     llms.CallOptions
	resp     *llms.ContentResponse
	err      error
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, opt := range options {
		opt(&f.opts)
	}
	return f.resp, f.err
}

func TestGoogleAIInvokeMapsRoles(t *testing.T) {
	gen := &fakeGenerator{resp: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "  Ashoka was an emperor of the Maurya dynasty.\n"}},
	}}
	g := &GoogleAI{model: "gemini-1.5-flash", generator: gen}

	reply, err := g.Invoke(context.Background(), []domain.Turn{
		domain.SystemTurn("teacher"),
		domain.UserTurn("Who was Akbar?"),
		domain.AssistantTurn("A Mughal emperor."),
		domain.UserTurn("Who was Ashoka?"),
	}, 0.4)
	require.NoError(t, err)
	assert.Equal(t, "Ashoka was an emperor of the Maurya dynasty.", reply)

	require.Len(t, gen.messages, 4)
	wantRoles := []schema.ChatMessageType{
		schema.ChatMessageTypeSystem,
		schema.ChatMessageTypeHuman,
		schema.ChatMessageTypeAI,
		schema.ChatMessageTypeHuman,
	}
	for i, m := range gen.messages {
		assert.Equal(t, wantRoles[i], m.Role)
	}
	part, ok := gen.messages[3].Parts[0].(llms.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Who was Ashoka?", part.Text)

	assert.Equal(t, "gemini-1.5-flash", gen.opts.Model)
	assert.Equal(t, 0.4, gen.opts.Temperature)
}

func TestGoogleAIInvokeError(t *testing.T) {
	cause := errors.New("googleapi: Error 403: API key not valid")
	g := &GoogleAI{model: "gemini-1.5-flash", generator: &fakeGenerator{err: cause}}

	_, err := g.Invoke(context.Background(), []domain.Turn{domain.UserTurn("q")}, 0.7)
	assert.ErrorIs(t, err, cause)
}

func TestGoogleAIInvokeNoChoices(t *testing.T) {
	g := &GoogleAI{model: "gemini-1.5-flash", generator: &fakeGenerator{resp: &llms.ContentResponse{}}}

	_, err := g.Invoke(context.Background(), []domain.Turn{domain.UserTurn("q")}, 0.7)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGoogleAIWithModelSharesGenerator(t *testing.T) {
	gen := &fakeGenerator{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "ok"}}}}
	g := &GoogleAI{model: "gemini-1.5-flash", generator: gen}

	_, err := g.WithModel("gemini-1.5-pro").Invoke(context.Background(), []domain.Turn{domain.UserTurn("q")}, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro", gen.opts.Model)
	assert.Equal(t, "gemini-1.5-flash", g.model)
}
