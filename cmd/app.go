package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supportkb/supportkb/internal/config"
	"github.com/supportkb/supportkb/internal/database"
	"github.com/supportkb/supportkb/internal/embedding"
	"github.com/supportkb/supportkb/internal/knowledge"
	"github.com/supportkb/supportkb/internal/log"
	"github.com/supportkb/supportkb/internal/retrieval"
)

// app bundles the wired components shared by the CLI commands.
type app struct {
	cfg       *config.Config
	logger    log.Logger
	pool      *pgxpool.Pool
	store     *knowledge.Store
	embedder  *embedding.Client
	retriever *retrieval.Service
}

// newApp loads configuration and connects all components.
// Callers must call close when done.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{})

	pool, err := database.Open(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	store := knowledge.New(pool, cfg.EmbeddingDim, logger)

	embedder := embedding.NewClient(embedding.Config{
		BaseURL: cfg.EmbeddingBaseURL,
		APIKey:  cfg.EmbeddingAPIKey,
		Model:   cfg.EmbeddingModel,
		Dim:     cfg.EmbeddingDim,
	}, logger)

	retriever := retrieval.New(embedder, store, retrieval.Defaults{
		TopK:           cfg.DefaultTopK,
		Metric:         knowledge.ParseMetric(cfg.DefaultMetric),
		SemanticWeight: cfg.SemanticWeight,
		LexicalWeight:  cfg.LexicalWeight,
	}, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		store:     store,
		embedder:  embedder,
		retriever: retriever,
	}, nil
}

func (a *app) close() {
	a.pool.Close()
}
