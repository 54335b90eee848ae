package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ahmad123576/History-Chatbot/internal/domain"
)

const (
	welcomeBanner  = "Welcome to the history chatbot! Type 'exit' to end the conversation."
	questionPrompt = "Your question: "
)

// askFunc answers one question.
type askFunc func(ctx context.Context, question string) (string, error)

func newChatCommand(opts *rootOptions) *cobra.Command {
	var sessionID, addr string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the history teacher in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if addr != "" {
				client, err := DialRemote(addr, sessionID)
				if err != nil {
					return err
				}
				defer client.Close()
				fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s (session %s)\n", addr, client.SessionID())
				return runChat(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), client.Ask)
			}

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			return runChat(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, q string) (string, error) {
				return a.runner.HandleQuestion(ctx, sessionID, q)
			})
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "default", "conversation session id")
	cmd.Flags().StringVar(&addr, "addr", "", "chat through a running server's WebSocket endpoint, e.g. ws://localhost:8501/ws")
	return cmd
}

// runChat is the interactive loop. It returns nil on "exit", end of input or interrupt.
func runChat(ctx context.Context, in io.Reader, out io.Writer, ask askFunc) error {
	fmt.Fprintln(out, welcomeBanner)

	// Questions have no line length limit.
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, questionPrompt)
		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			fmt.Fprintln(out)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

		input = strings.TrimRight(input, "\r\n")
		if strings.EqualFold(strings.TrimSpace(input), "exit") {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		reply, err := ask(ctx, input)
		switch {
		case err == nil:
			fmt.Fprintln(out, "AI: ", reply)
		case errors.Is(err, domain.ErrInvalidInput):
			fmt.Fprintf(out, "Error: %v\n", err)
		default:
			log.Printf("Exchange failed: %v", err)
			fmt.Fprintf(out, "Error: %v, please check your API key and try again\n", err)
		}
	}
}
