package knowledge

import (
	"context"
	"fmt"
)

// EnsureSchema creates the knowledge-base schema if it does not exist:
// the pgvector extension, the kb_entries table with the store's embedding
// dimension, the lexical GIN index, and the ANN indexes for the given metric.
//
// The call is idempotent and safe to repeat; it should be run once by the
// owning process before the store is used.
//
// The embedding dimension and operator class are interpolated into the DDL
// because PostgreSQL does not accept bind parameters there; both values come
// from validated configuration and the fixed metric mapping, never from
// request input.
func (s *Store) EnsureSchema(ctx context.Context, metric Metric) error {
	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("enabling pgvector extension: %w", classify(err))
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS kb_entries (
			id SERIAL PRIMARY KEY,
			category TEXT,
			tags TEXT[],
			content TEXT NOT NULL,
			content_tsv tsvector GENERATED ALWAYS AS (to_tsvector('english', content)) STORED,
			embedding vector(%d)
		)`, s.dim)
	if _, err := s.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("creating kb_entries table: %w", classify(err))
	}

	if _, err := s.pool.Exec(ctx,
		"CREATE INDEX IF NOT EXISTS kb_content_tsv_idx ON kb_entries USING GIN (content_tsv)"); err != nil {
		return fmt.Errorf("creating lexical index: %w", classify(err))
	}

	ops := metric.opClass()

	ivf := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS kb_embedding_ivf_idx ON kb_entries USING ivfflat (embedding %s) WITH (lists = 100)", ops)
	if _, err := s.pool.Exec(ctx, ivf); err != nil {
		return fmt.Errorf("creating ivfflat index: %w", classify(err))
	}

	// HNSW offers better recall but is not available on every backend
	// version. Probe for it; absence is logged, never fatal.
	if s.createHNSWIndex(ctx, ops) {
		s.logger.Debug("hnsw index ready", "ops", ops)
	}

	s.logger.Info("knowledge schema ready", "dimension", s.dim, "metric", string(metric))
	return nil
}

// createHNSWIndex attempts to create the graph-based ANN index and reports
// whether the backend supports it.
func (s *Store) createHNSWIndex(ctx context.Context, ops string) bool {
	hnsw := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS kb_embedding_hnsw_idx ON kb_entries USING hnsw (embedding %s) WITH (m = 16, ef_construction = 64)", ops)
	if _, err := s.pool.Exec(ctx, hnsw); err != nil {
		s.logger.Info("hnsw index not available, skipping", "error", err)
		return false
	}
	return true
}
