// Package cmd contains the supportkb CLI commands.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "supportkb",
	Short: "Hybrid-search customer support knowledge base",
	Long: `supportkb manages a customer support knowledge base backed by
PostgreSQL with pgvector. It combines semantic (vector) and lexical
(full-text) ranking to retrieve answers and can generate grounded
responses through an LLM provider.

Typical workflow:

  supportkb init                 # create schema and indexes
  supportkb ingest data/kb.csv   # embed and load documents
  supportkb query "refund"       # ranked hybrid search
  supportkb ask "how do refunds work?"
  supportkb serve                # HTTP API`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
