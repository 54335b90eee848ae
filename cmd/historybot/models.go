package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahmad123576/History-Chatbot/internal/adapter/llm"
	"github.com/ahmad123576/History-Chatbot/internal/config"
)

func newModelsCommand(opts *rootOptions) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the models offered in the chat UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			var invoker llm.Invoker
			if remote {
				invoker, err = llm.NewInvoker(cmd.Context(), cfg)
				if err != nil {
					return err
				}
			}
			return printModels(cmd.Context(), cmd.OutOrStdout(), cfg, invoker)
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "also ask the provider which models it serves")
	return cmd
}

// printModels prints the configured models, marking the default, followed by the
// provider's own list when invoker can enumerate it.
func printModels(ctx context.Context, out io.Writer, cfg *config.Config, invoker llm.Invoker) error {
	for _, m := range cfg.Models {
		marker := " "
		if m == cfg.Model {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s\n", marker, m)
	}

	lister, ok := invoker.(llm.ModelLister)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	models, err := lister.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list provider models: %w", err)
	}

	fmt.Fprintf(out, "\nProvider %s serves:\n", cfg.Provider)
	for _, m := range models {
		fmt.Fprintf(out, "  %s\n", m.ID)
	}
	return nil
}
