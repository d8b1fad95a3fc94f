package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/supportkb/supportkb/internal/config"
)

// Version information (injected at build time via ldflags)
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and configuration information",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(_ *cobra.Command, _ []string) error {
	fmt.Printf("supportkb %s\n", AppVersion)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Println("Configuration:")
	fmt.Printf("  Database: %s:%d/%s\n", cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDBName)
	fmt.Printf("  Embedding model: %s (dim %d)\n", cfg.EmbeddingModel, cfg.EmbeddingDim)
	fmt.Printf("  Distance metric: %s\n", cfg.DefaultMetric)
	fmt.Printf("  Weights: semantic %.2f / lexical %.2f\n", cfg.SemanticWeight, cfg.LexicalWeight)

	groqKey := os.Getenv("GROQ_API_KEY")
	if groqKey != "" && len(groqKey) > 8 {
		fmt.Printf("  GROQ_API_KEY: %s...%s (configured)\n", groqKey[:4], groqKey[len(groqKey)-4:])
	} else if groqKey != "" {
		fmt.Println("  GROQ_API_KEY: configured")
	} else {
		fmt.Println("  GROQ_API_KEY: not set (answer generation disabled)")
	}

	return nil
}
