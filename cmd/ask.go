package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/supportkb/supportkb/internal/rag"
	"github.com/supportkb/supportkb/internal/retrieval"
)

var (
	askTopK     int
	askCategory string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question and get an answer grounded in the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().IntVar(&askTopK, "top-k", 0, "number of sources to retrieve (0 = configured default)")
	askCmd.Flags().StringVar(&askCategory, "category", "", "restrict sources to a category")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	var opts []retrieval.Option
	if askTopK > 0 {
		opts = append(opts, retrieval.WithTopK(askTopK))
	}
	if askCategory != "" {
		opts = append(opts, retrieval.WithCategory(askCategory))
	}

	question := strings.Join(args, " ")
	sources, err := a.retriever.Query(ctx, question, opts...)
	if err != nil {
		return fmt.Errorf("retrieving sources: %w", err)
	}

	answerer := rag.New(rag.Config{
		APIKey:      a.cfg.GroqAPIKey,
		Model:       a.cfg.GroqModel,
		Temperature: 0.2,
	}, a.logger)

	answer, err := answerer.Answer(ctx, question, sources, nil)
	if err != nil {
		return fmt.Errorf("generating answer: %w", err)
	}

	fmt.Println(answer)
	if len(sources) > 0 {
		fmt.Println("\nSources:")
		for i, s := range sources {
			fmt.Printf("  %d. [%s] %s\n", i+1, s.Category, s.Content)
		}
	}
	return nil
}
