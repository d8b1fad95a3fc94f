package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/supportkb/supportkb/internal/knowledge"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the knowledge base schema and indexes",
	Long: `Creates the pgvector extension, the entries table sized to the
configured embedding dimension, and the vector and full-text indexes.
Safe to run repeatedly.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	metric := knowledge.ParseMetric(a.cfg.DefaultMetric)
	if err := a.store.EnsureSchema(ctx, metric); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	fmt.Printf("Schema ready (dimension %d, %s metric)\n", a.cfg.EmbeddingDim, metric)
	return nil
}
