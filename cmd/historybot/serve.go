package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ahmad123576/History-Chatbot/internal/config"
	"github.com/ahmad123576/History-Chatbot/internal/hub"
	handler "github.com/ahmad123576/History-Chatbot/internal/transport/http"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser chat UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, func(cfg *config.Config) {
				if cmd.Flags().Changed("port") {
					cfg.HTTPPort = port
				}
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			log.Printf("Starting history chatbot...")
			log.Printf("HTTP Port: %d", cfg.HTTPPort)
			log.Printf("Provider: %s, Model: %s, Temperature: %.2f", cfg.Provider, cfg.Model, cfg.Temperature)

			connectionHub := hub.NewHub()
			server := handler.NewServer(cfg, a.runner, connectionHub)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				connectionHub.Run(gctx)
				return nil
			})
			g.Go(func() error {
				addr := fmt.Sprintf(":%d", cfg.HTTPPort)
				if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("failed to start HTTP server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				log.Println("Shutting down history chatbot...")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					log.Printf("Failed to shutdown HTTP server gracefully: %v", err)
				}
				return nil
			})

			log.Printf("Chat UI available at http://localhost:%d/", cfg.HTTPPort)

			err = g.Wait()
			log.Println("History chatbot stopped")
			return err
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides HTTP_PORT)")
	return cmd
}
