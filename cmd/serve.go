package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/supportkb/supportkb/api"
	"github.com/supportkb/supportkb/internal/feedback"
	"github.com/supportkb/supportkb/internal/rag"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the JSON API exposing search, answer generation and feedback
endpoints. The server shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	answerer := rag.New(rag.Config{
		APIKey:      a.cfg.GroqAPIKey,
		Model:       a.cfg.GroqModel,
		Temperature: 0.2,
	}, a.logger)

	sink := feedback.NewLogger(a.cfg.FeedbackLog)

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.HTTPAddr
	}

	server := api.NewServer(a.pool, a.retriever, answerer, sink, a.logger)
	if err := server.Run(ctx, addr); err != nil {
		return fmt.Errorf("HTTP server: %w", err)
	}
	return nil
}
