package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmad123576/History-Chatbot/internal/conversation"
	"github.com/ahmad123576/History-Chatbot/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LLM_PROVIDER", "LLM_MODEL", "LLM_MODELS", "LLM_BASE_URL", "LLM_API_KEY", "GOOGLE_API_KEY",
		"LLM_TEMPERATURE", "MODEL_TIMEOUT_MS", "SYSTEM_INSTRUCTION", "HISTORY_WINDOW",
		"HISTORYBOT_MODE", "HTTP_PORT", "TRANSCRIPT_DSN",
		"WS_PING_INTERVAL_MS", "WS_WRITE_TIMEOUT_MS", "WS_READ_TIMEOUT_MS", "WS_MAX_MESSAGE_SIZE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, ProviderGoogleAI, cfg.Provider)
	assert.Equal(t, "gemini-1.5-flash", cfg.Model)
	assert.Equal(t, []string{"gemini-1.5-flash"}, cfg.Models)
	assert.Equal(t, conversation.DefaultTemperature, cfg.Temperature)
	assert.Equal(t, 60*time.Second, cfg.ModelTimeout)
	assert.Equal(t, conversation.DefaultSystemInstruction, cfg.SystemInstruction)
	assert.Equal(t, 0, cfg.HistoryWindow)
	assert.Equal(t, 8501, cfg.HTTPPort)
	assert.Empty(t, cfg.TranscriptDSN)
	assert.False(t, cfg.UseMock())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("LLM_API_KEY", "secret")
	t.Setenv("LLM_MODEL", "gpt-4o-mini")
	t.Setenv("LLM_MODELS", "gpt-4o, gpt-4o-mini ,")
	t.Setenv("LLM_TEMPERATURE", "0.3")
	t.Setenv("MODEL_TIMEOUT_MS", "1500")
	t.Setenv("HISTORY_WINDOW", "20")
	t.Setenv("HTTP_PORT", "9000")

	cfg := Load()
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, cfg.Models)
	assert.Equal(t, 0.3, cfg.Temperature)
	assert.Equal(t, 1500*time.Millisecond, cfg.ModelTimeout)
	assert.Equal(t, 20, cfg.HistoryWindow)
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.NoError(t, cfg.Validate())

	rc := cfg.RunnerConfig()
	assert.Equal(t, "gpt-4o-mini", rc.Model)
	assert.Equal(t, 20, rc.HistoryWindow)
}

func TestLoadAddsConfiguredModelToList(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_MODEL", "gemini-2.0-flash")
	t.Setenv("LLM_MODELS", "gemini-1.5-flash")

	cfg := Load()
	assert.Equal(t, []string{"gemini-2.0-flash", "gemini-1.5-flash"}, cfg.Models)
}

func TestGoogleKeyPreferredForGoogleAI(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "google")
	t.Setenv("LLM_API_KEY", "generic")

	assert.Equal(t, "google", Load().APIKey)

	t.Setenv("LLM_PROVIDER", "openai")
	assert.Equal(t, "generic", Load().APIKey)
}

func TestSetProviderPicksMatchingKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "google")
	t.Setenv("LLM_API_KEY", "generic")

	cfg := Load()
	cfg.SetProvider("OpenAI")
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "generic", cfg.APIKey)
}

func TestValidateMissingKey(t *testing.T) {
	clearEnv(t)

	err := Load().Validate()
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "GOOGLE_API_KEY", cfgErr.Field)
}

func TestValidateMockNeedsNoKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("HISTORYBOT_MODE", "mock")

	cfg := Load()
	assert.True(t, cfg.UseMock())
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		field string
	}{
		{"temperature too high", "LLM_TEMPERATURE", "1.5", "LLM_TEMPERATURE"},
		{"temperature negative", "LLM_TEMPERATURE", "-0.1", "LLM_TEMPERATURE"},
		{"temperature garbage", "LLM_TEMPERATURE", "warm", "LLM_TEMPERATURE"},
		{"timeout zero", "MODEL_TIMEOUT_MS", "0", "MODEL_TIMEOUT_MS"},
		{"history window negative", "HISTORY_WINDOW", "-3", "HISTORY_WINDOW"},
		{"unknown provider", "LLM_PROVIDER", "bard", "LLM_PROVIDER"},
		{"bad port", "HTTP_PORT", "70000", "HTTP_PORT"},
		{"ping interval zero", "WS_PING_INTERVAL_MS", "0", "WS_PING_INTERVAL_MS"},
		{"ping interval negative", "WS_PING_INTERVAL_MS", "-5", "WS_PING_INTERVAL_MS"},
		{"ping interval beyond read timeout", "WS_PING_INTERVAL_MS", "90000", "WS_PING_INTERVAL_MS"},
		{"write timeout zero", "WS_WRITE_TIMEOUT_MS", "0", "WS_WRITE_TIMEOUT_MS"},
		{"read timeout negative", "WS_READ_TIMEOUT_MS", "-1", "WS_READ_TIMEOUT_MS"},
		{"max message size zero", "WS_MAX_MESSAGE_SIZE", "0", "WS_MAX_MESSAGE_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("GOOGLE_API_KEY", "key")
			t.Setenv(tt.key, tt.value)

			err := Load().Validate()
			var cfgErr *domain.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GOOGLE_API_KEY=from-dotenv\nLLM_MODEL=gemini-pro\n"), 0o600))
	t.Setenv("LLM_MODEL", "already-set")
	// godotenv only fills unset variables; clearEnv set GOOGLE_API_KEY to "".
	require.NoError(t, os.Unsetenv("GOOGLE_API_KEY"))

	require.NoError(t, LoadDotEnv(path))

	cfg := Load()
	assert.Equal(t, "from-dotenv", cfg.APIKey)
	assert.Equal(t, "already-set", cfg.Model)
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}
