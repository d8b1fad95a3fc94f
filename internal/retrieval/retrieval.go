// Package retrieval exposes the single entry point callers use to turn a
// natural-language query into ranked knowledge entries. It embeds the query,
// delegates to the hybrid store search and applies configured defaults.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/supportkb/supportkb/internal/knowledge"
)

// ErrEmptyQuery is returned when the query text is blank.
var ErrEmptyQuery = errors.New("query text is empty")

// Embedder produces the query vector. Query embeddings are normalized so
// cosine rank stays stable regardless of provider output scale.
type Embedder interface {
	EmbedOne(ctx context.Context, text string, normalize bool) ([]float32, error)
}

// Searcher is the hybrid search capability of the knowledge store.
type Searcher interface {
	Search(ctx context.Context, params knowledge.SearchParams) ([]knowledge.SearchResult, error)
}

// Defaults hold the configured fallbacks applied when a query does not
// override them.
type Defaults struct {
	TopK           int
	Metric         knowledge.Metric
	SemanticWeight float64
	LexicalWeight  float64
}

// Service is the retrieval façade.
type Service struct {
	embedder Embedder
	searcher Searcher
	defaults Defaults
	logger   *slog.Logger
}

// New creates a retrieval service. logger may be nil.
func New(embedder Embedder, searcher Searcher, defaults Defaults, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		embedder: embedder,
		searcher: searcher,
		defaults: defaults,
		logger:   logger,
	}
}

type queryOptions struct {
	topK      int
	category  string
	metric    knowledge.Metric
	threshold *float64
}

// Option overrides a configured default for a single query.
type Option func(*queryOptions)

// WithTopK overrides the number of results returned.
func WithTopK(k int) Option {
	return func(o *queryOptions) { o.topK = k }
}

// WithCategory restricts results to an exact category.
func WithCategory(category string) Option {
	return func(o *queryOptions) { o.category = category }
}

// WithMetric overrides the distance metric for this query.
func WithMetric(metric knowledge.Metric) Option {
	return func(o *queryOptions) { o.metric = metric }
}

// WithThreshold drops results whose combined rank falls below the cutoff.
// The cutoff applies after the top-k limit, so it can only shrink the
// result set, never pull in lower-ranked rows.
func WithThreshold(min float64) Option {
	return func(o *queryOptions) { o.threshold = &min }
}

// Query embeds text and runs a hybrid search, returning results ordered by
// descending combined rank.
func (s *Service) Query(ctx context.Context, text string, opts ...Option) ([]knowledge.SearchResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}

	o := queryOptions{
		topK:   s.defaults.TopK,
		metric: s.defaults.Metric,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.topK <= 0 {
		o.topK = s.defaults.TopK
	}

	vector, err := s.embedder.EmbedOne(ctx, text, true)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	params := knowledge.SearchParams{
		Vector:         vector,
		Text:           text,
		TopK:           o.topK,
		Category:       o.category,
		Metric:         o.metric,
		SemanticWeight: s.defaults.SemanticWeight,
		LexicalWeight:  s.defaults.LexicalWeight,
		Threshold:      o.threshold,
	}

	results, err := s.searcher.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("searching knowledge store: %w", err)
	}

	s.logger.Debug("query answered",
		"results", len(results), "top_k", o.topK, "metric", string(o.metric))
	return results, nil
}
