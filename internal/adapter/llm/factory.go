package llm

import (
	"context"
	"fmt"
	"log"

	"github.com/ahmad123576/History-Chatbot/internal/config"
)

// NewInvoker creates a model client based on the configured provider.
// HISTORYBOT_MODE=MOCK overrides the provider with a MockClient.
func NewInvoker(ctx context.Context, cfg *config.Config) (Invoker, error) {
	if cfg.UseMock() {
		log.Println("HISTORYBOT_MODE=MOCK or provider mock detected, using mock LLM client")
		return NewMockClient(cfg.Model), nil
	}

	switch cfg.Provider {
	case config.ProviderGoogleAI:
		return NewGoogleAI(ctx, cfg.APIKey, cfg.Model)
	case config.ProviderOpenAI:
		// The runner applies its own deadline; the HTTP timeout is a backstop.
		return NewClient(cfg.BaseURL, cfg.APIKey, cfg.Model, 2*cfg.ModelTimeout), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
