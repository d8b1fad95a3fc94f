package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/supportkb/supportkb/internal/ingest"
)

var ingestClear bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Load a CSV dataset into the knowledge base",
	Long: `Reads a CSV file (one document per row), cleans the text, infers
category and tags for rows that lack them, embeds all documents and
upserts them. Re-running appends; use --clear to replace the existing
contents first.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "delete existing entries before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if ingestClear {
		if err := a.store.ClearAll(ctx); err != nil {
			return fmt.Errorf("clearing knowledge base: %w", err)
		}
		fmt.Println("Cleared existing entries")
	}

	pipeline := ingest.NewPipeline(a.store, a.embedder, a.cfg.EmbedBatchSize, a.logger)
	n, err := pipeline.IngestCSV(ctx, args[0])
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", args[0], err)
	}

	fmt.Printf("Ingested %d entries\n", n)
	return nil
}
