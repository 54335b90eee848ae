package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ahmad123576/History-Chatbot/internal/config"
	"github.com/ahmad123576/History-Chatbot/internal/domain"
	"github.com/ahmad123576/History-Chatbot/internal/transcript"
)

func newTranscriptCommand(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "transcript <session-id>",
		Short: "Show archived exchanges for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(opts.envFile); err != nil {
				return err
			}
			cfg := config.Load()
			if cfg.TranscriptDSN == "" {
				return &domain.ConfigurationError{Field: "TRANSCRIPT_DSN", Reason: "is not set, nothing has been archived"}
			}

			store, err := transcript.NewSQLiteStore(cfg.TranscriptDSN)
			if err != nil {
				return fmt.Errorf("failed to open transcript archive: %w", err)
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return printTranscript(cmd.OutOrStdout(), args[0], entries)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of exchanges to show (0 shows all)")
	return cmd
}

func printTranscript(out io.Writer, sessionID string, entries []transcript.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintf(out, "No archived exchanges for session %s\n", sessionID)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%dms\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Model, e.LatencyMs)
		fmt.Fprintf(w, "  You:\t%s\n", e.Question)
		fmt.Fprintf(w, "  AI:\t%s\n", e.Reply)
	}
	return w.Flush()
}
