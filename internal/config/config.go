// Package config provides configuration for the history chatbot.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ahmad123576/History-Chatbot/internal/conversation"
	"github.com/ahmad123576/History-Chatbot/internal/domain"
)

// Supported model providers.
const (
	ProviderGoogleAI = "googleai"
	ProviderOpenAI   = "openai"
	ProviderMock     = "mock"
)

// ModeMock forces the mock model client regardless of provider.
const ModeMock = "MOCK"

// Config holds the chatbot configuration.
type Config struct {
	// Model settings
	Provider          string
	APIKey            string
	Model             string
	Models            []string
	BaseURL           string
	Temperature       float64
	ModelTimeout      time.Duration
	SystemInstruction string
	HistoryWindow     int
	Mode              string

	// Server settings
	HTTPPort int

	// Transcript archive; empty disables it
	TranscriptDSN string

	// WebSocket settings
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64

	// Logging
	LogLevel string
}

// LoadDotEnv loads variables from the given .env files (default ".env") without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load loads configuration from environment variables.
func Load() *Config {
	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderGoogleAI))
	model := getEnv("LLM_MODEL", "gemini-1.5-flash")

	cfg := &Config{
		Provider:          provider,
		APIKey:            apiKeyFor(provider),
		Model:             model,
		Models:            getEnvList("LLM_MODELS", []string{model}),
		BaseURL:           getEnv("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
		Temperature:       getEnvFloat("LLM_TEMPERATURE", conversation.DefaultTemperature),
		ModelTimeout:      time.Duration(getEnvInt("MODEL_TIMEOUT_MS", 60000)) * time.Millisecond,
		SystemInstruction: getEnv("SYSTEM_INSTRUCTION", conversation.DefaultSystemInstruction),
		HistoryWindow:     getEnvInt("HISTORY_WINDOW", 0),
		Mode:              strings.ToUpper(getEnv("HISTORYBOT_MODE", "")),
		HTTPPort:          getEnvInt("HTTP_PORT", 8501),
		TranscriptDSN:     getEnv("TRANSCRIPT_DSN", ""),
		PingInterval:      time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WriteTimeout:      time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ReadTimeout:       time.Duration(getEnvInt("WS_READ_TIMEOUT_MS", 60000)) * time.Millisecond,
		MaxMessageSize:    int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 65536)),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
	if !slices.Contains(cfg.Models, cfg.Model) {
		cfg.Models = append([]string{cfg.Model}, cfg.Models...)
	}
	return cfg
}

// SetProvider switches provider and picks up the matching API key.
func (c *Config) SetProvider(provider string) {
	c.Provider = strings.ToLower(provider)
	c.APIKey = apiKeyFor(c.Provider)
}

// UseMock reports whether the mock model client should be used.
func (c *Config) UseMock() bool {
	return c.Mode == ModeMock || c.Provider == ProviderMock
}

// Validate checks the configuration and returns a *domain.ConfigurationError
// describing the first problem found.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGoogleAI, ProviderOpenAI, ProviderMock:
	default:
		return &domain.ConfigurationError{Field: "LLM_PROVIDER", Reason: fmt.Sprintf("unknown provider %q", c.Provider)}
	}
	if c.APIKey == "" && !c.UseMock() {
		field := "LLM_API_KEY"
		if c.Provider == ProviderGoogleAI {
			field = "GOOGLE_API_KEY"
		}
		return &domain.ConfigurationError{
			Field:  field,
			Reason: "is not set; export it or add it to a .env file",
		}
	}
	if strings.TrimSpace(c.Model) == "" {
		return &domain.ConfigurationError{Field: "LLM_MODEL", Reason: "must not be empty"}
	}
	if c.Provider == ProviderOpenAI && c.BaseURL == "" && !c.UseMock() {
		return &domain.ConfigurationError{Field: "LLM_BASE_URL", Reason: "is required for the openai provider"}
	}
	if !conversation.ValidTemperature(c.Temperature) {
		return &domain.ConfigurationError{Field: "LLM_TEMPERATURE", Reason: fmt.Sprintf("%v must be between 0 and 1", c.Temperature)}
	}
	if c.ModelTimeout <= 0 {
		return &domain.ConfigurationError{Field: "MODEL_TIMEOUT_MS", Reason: "must be positive"}
	}
	if c.HistoryWindow < 0 {
		return &domain.ConfigurationError{Field: "HISTORY_WINDOW", Reason: "must not be negative"}
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return &domain.ConfigurationError{Field: "HTTP_PORT", Reason: fmt.Sprintf("%d is not a valid port", c.HTTPPort)}
	}
	if c.PingInterval <= 0 {
		return &domain.ConfigurationError{Field: "WS_PING_INTERVAL_MS", Reason: "must be positive"}
	}
	if c.WriteTimeout <= 0 {
		return &domain.ConfigurationError{Field: "WS_WRITE_TIMEOUT_MS", Reason: "must be positive"}
	}
	if c.ReadTimeout <= 0 {
		return &domain.ConfigurationError{Field: "WS_READ_TIMEOUT_MS", Reason: "must be positive"}
	}
	// Clients answer pings; without one inside the read timeout the server drops them.
	if c.PingInterval >= c.ReadTimeout {
		return &domain.ConfigurationError{Field: "WS_PING_INTERVAL_MS", Reason: "must be shorter than WS_READ_TIMEOUT_MS"}
	}
	if c.MaxMessageSize <= 0 {
		return &domain.ConfigurationError{Field: "WS_MAX_MESSAGE_SIZE", Reason: "must be positive"}
	}
	return nil
}

// RunnerConfig returns the subset of the configuration used by the conversation runner.
func (c *Config) RunnerConfig() conversation.RunnerConfig {
	return conversation.RunnerConfig{
		SystemInstruction: c.SystemInstruction,
		Model:             c.Model,
		Models:            c.Models,
		Temperature:       c.Temperature,
		Timeout:           c.ModelTimeout,
		HistoryWindow:     c.HistoryWindow,
	}
}

func apiKeyFor(provider string) string {
	if provider == ProviderGoogleAI {
		return getEnv("GOOGLE_API_KEY", getEnv("LLM_API_KEY", ""))
	}
	return getEnv("LLM_API_KEY", getEnv("GOOGLE_API_KEY", ""))
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// getEnvFloat maps an unparsable value to -1 so Validate rejects it
// instead of silently falling back to the default.
func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return -1
	}
	return f
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
