package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// upsertPageSize bounds memory and round-trips for bulk writes. Each page is
// sent as one batch and commits independently.
const upsertPageSize = 500

const insertEntrySQL = `
	INSERT INTO kb_entries (category, tags, content, embedding)
	VALUES ($1, $2, $3, $4)`

// Store manages knowledge entries with hybrid vector + full-text search over
// PostgreSQL with the pgvector extension.
//
// Store is safe for concurrent use by multiple goroutines; it issues no
// client-side locking and relies on the backend's transaction isolation.
type Store struct {
	pool   *pgxpool.Pool
	dim    int
	logger *slog.Logger
}

// New creates a Store bound to a connection pool.
//
// dim is the embedding dimensionality for this store instance; it is fixed
// for the lifetime of the schema and every vector written or queried is
// validated against it. logger may be nil to use slog.Default().
func New(pool *pgxpool.Pool, dim int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		pool:   pool,
		dim:    dim,
		logger: logger,
	}
}

// Dim returns the embedding dimensionality the store was initialized with.
func (s *Store) Dim() int {
	return s.dim
}

// UpsertEntries bulk-inserts entries in pages of upsertPageSize rows.
//
// Despite the name there is no conflict target: every call inserts new rows
// with fresh sequential ids. Rows are validated up front: empty content or a
// wrong-length embedding rejects the whole call before anything is sent.
// A backend failure mid-call leaves previously sent pages committed; there is
// no transaction wrapping the full batch.
func (s *Store) UpsertEntries(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	for i, e := range entries {
		if e.Content == "" {
			return fmt.Errorf("%w: entry %d has empty content", ErrMalformedRow, i)
		}
		if len(e.Embedding) != s.dim {
			return fmt.Errorf("%w: entry %d has dimension %d, store expects %d",
				ErrDimensionMismatch, i, len(e.Embedding), s.dim)
		}
	}

	for start := 0; start < len(entries); start += upsertPageSize {
		end := min(start+upsertPageSize, len(entries))

		batch := &pgx.Batch{}
		for _, e := range entries[start:end] {
			batch.Queue(insertEntrySQL,
				textOrNil(e.Category),
				e.Tags,
				e.Content,
				pgvector.NewVector(e.Embedding),
			)
		}

		br := s.pool.SendBatch(ctx, batch)
		for i := start; i < end; i++ {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("inserting entry %d: %w", i, classify(err))
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("closing batch: %w", classify(err))
		}
	}

	s.logger.Debug("upserted entries", "count", len(entries))
	return nil
}

// ClearAll removes every entry and resets the id sequence to 1.
// Irreversible; intended for re-ingestion workflows.
func (s *Store) ClearAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "TRUNCATE kb_entries RESTART IDENTITY"); err != nil {
		return fmt.Errorf("clearing kb_entries: %w", classify(err))
	}
	s.logger.Info("cleared all knowledge entries")
	return nil
}

// Search executes the hybrid ranked query.
//
// Each candidate row gets a semantic score from vector distance and a lexical
// score from ts_rank over the generated tsvector; the fused rank is their
// weighted sum. Rows are ordered by rank descending and limited to TopK
// before the optional threshold is applied, so a threshold can only shrink
// the already-limited set.
func (s *Store) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	if len(p.Vector) != s.dim {
		return nil, fmt.Errorf("%w: query vector has dimension %d, store expects %d",
			ErrDimensionMismatch, len(p.Vector), s.dim)
	}
	if p.TopK < 1 {
		return nil, fmt.Errorf("top_k must be >= 1, got %d", p.TopK)
	}

	// Weights are bound values, not interpolated text; only the fixed
	// per-metric score expression varies.
	semExpr := p.Metric.semanticScoreExpr()
	query := fmt.Sprintf(`
		SELECT id, category, tags, content,
		       (%[1]s)::float8 AS semantic_score,
		       ts_rank(content_tsv, plainto_tsquery('english', $2))::float8 AS lexical_score,
		       ($3 * (%[1]s) + $4 * ts_rank(content_tsv, plainto_tsquery('english', $2)))::float8 AS rank
		FROM kb_entries
		WHERE $5::text IS NULL OR category = $5
		ORDER BY rank DESC
		LIMIT $6`, semExpr)

	rows, err := s.pool.Query(ctx, query,
		pgvector.NewVector(p.Vector),
		p.Text,
		p.SemanticWeight,
		p.LexicalWeight,
		textOrNil(p.Category),
		p.TopK,
	)
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", classify(err))
	}
	defer rows.Close()

	results := make([]SearchResult, 0, p.TopK)
	for rows.Next() {
		var (
			r        SearchResult
			category pgtype.Text
		)
		if err := rows.Scan(&r.ID, &category, &r.Tags, &r.Content,
			&r.SemanticScore, &r.LexicalScore, &r.Rank); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		r.Category = category.String
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search rows: %w", classify(err))
	}

	return applyThreshold(results, p.Threshold), nil
}

// applyThreshold drops results whose fused rank falls below the threshold.
// It runs on the already-limited result set; see SearchParams.Threshold.
func applyThreshold(results []SearchResult, threshold *float64) []SearchResult {
	if threshold == nil {
		return results
	}
	kept := results[:0]
	for _, r := range results {
		if r.Rank >= *threshold {
			kept = append(kept, r)
		}
	}
	return kept
}

// Count returns the total number of stored entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM kb_entries").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting entries: %w", classify(err))
	}
	return count, nil
}

// EntryByID reads a single entry back, including its persisted embedding.
func (s *Store) EntryByID(ctx context.Context, id int64) (*StoredEntry, error) {
	var (
		e         StoredEntry
		category  pgtype.Text
		embedding pgvector.Vector
	)
	err := s.pool.QueryRow(ctx,
		"SELECT id, category, tags, content, embedding FROM kb_entries WHERE id = $1", id).
		Scan(&e.ID, &category, &e.Tags, &e.Content, &embedding)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("reading entry %d: %w", id, classify(err))
	}
	e.Category = category.String
	e.Embedding = embedding.Slice()
	return &e, nil
}

// textOrNil maps the empty string to SQL NULL.
func textOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
