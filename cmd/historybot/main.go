// Command historybot is a history-teacher chatbot with a terminal and a browser front end.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ahmad123576/History-Chatbot/internal/adapter/llm"
	"github.com/ahmad123576/History-Chatbot/internal/config"
	"github.com/ahmad123576/History-Chatbot/internal/conversation"
	"github.com/ahmad123576/History-Chatbot/internal/domain"
	"github.com/ahmad123576/History-Chatbot/internal/transcript"
)

type rootOptions struct {
	envFile     string
	provider    string
	model       string
	temperature float64
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var cfgErr *domain.ConfigurationError
		if errors.As(err, &cfgErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "historybot",
		Short:         "Ask a friendly history teacher anything",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().StringVar(&opts.provider, "provider", "", "model provider: googleai, openai or mock (overrides LLM_PROVIDER)")
	cmd.PersistentFlags().StringVar(&opts.model, "model", "", "model identifier (overrides LLM_MODEL)")
	cmd.PersistentFlags().Float64Var(&opts.temperature, "temperature", conversation.DefaultTemperature, "sampling temperature in [0, 1] (overrides LLM_TEMPERATURE)")

	cmd.AddCommand(
		newChatCommand(opts),
		newServeCommand(opts),
		newModelsCommand(opts),
		newTranscriptCommand(opts),
	)
	return cmd
}

// loadConfig reads .env and the environment, applies the root flag overrides and any
// command-specific ones, then validates the result.
func loadConfig(cmd *cobra.Command, opts *rootOptions, overrides ...func(*config.Config)) (*config.Config, error) {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return nil, err
	}
	cfg := config.Load()

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.SetProvider(opts.provider)
	}
	if flags.Changed("model") {
		cfg.Model = opts.model
		if !slices.Contains(cfg.Models, opts.model) {
			cfg.Models = append([]string{opts.model}, cfg.Models...)
		}
	}
	if flags.Changed("temperature") {
		cfg.Temperature = opts.temperature
	}
	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app bundles the wired components shared by the front ends.
type app struct {
	cfg     *config.Config
	invoker llm.Invoker
	runner  *conversation.Runner
	archive *transcript.SQLiteStore
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	invoker, err := llm.NewInvoker(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, invoker: invoker}

	var observers []conversation.Observer
	if cfg.TranscriptDSN != "" {
		a.archive, err = transcript.NewSQLiteStore(cfg.TranscriptDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open transcript archive: %w", err)
		}
		observers = append(observers, a.archive)
		log.Printf("Archiving exchanges to %s", cfg.TranscriptDSN)
	}

	a.runner, err = conversation.NewRunner(conversation.NewStore(), invoker, cfg.RunnerConfig(), observers...)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() error {
	if a.archive != nil {
		return a.archive.Close()
	}
	return nil
}
