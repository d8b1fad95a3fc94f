package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/supportkb/supportkb/internal/knowledge"
	"github.com/supportkb/supportkb/internal/retrieval"
)

var (
	queryTopK      int
	queryCategory  string
	queryMetric    string
	queryThreshold float64
	queryJSON      bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Run a hybrid search against the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVar(&queryTopK, "top-k", 0, "number of results (0 = configured default)")
	queryCmd.Flags().StringVar(&queryCategory, "category", "", "restrict results to a category")
	queryCmd.Flags().StringVar(&queryMetric, "metric", "", "distance metric: cosine, euclidean or ip")
	queryCmd.Flags().Float64Var(&queryThreshold, "threshold", math.NaN(), "drop results ranked below this cutoff")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "emit results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	var opts []retrieval.Option
	if queryTopK > 0 {
		opts = append(opts, retrieval.WithTopK(queryTopK))
	}
	if queryCategory != "" {
		opts = append(opts, retrieval.WithCategory(queryCategory))
	}
	if queryMetric != "" {
		opts = append(opts, retrieval.WithMetric(knowledge.ParseMetric(queryMetric)))
	}
	if !math.IsNaN(queryThreshold) {
		opts = append(opts, retrieval.WithThreshold(queryThreshold))
	}

	results, err := a.retriever.Query(ctx, strings.Join(args, " "), opts...)
	if err != nil {
		return fmt.Errorf("querying: %w", err)
	}

	if queryJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%d. [%s] %s\n", i+1, r.Category, r.Content)
		fmt.Printf("   rank=%.4f semantic=%.4f lexical=%.4f tags=%s\n",
			r.Rank, r.SemanticScore, r.LexicalScore, strings.Join(r.Tags, ","))
	}
	return nil
}
