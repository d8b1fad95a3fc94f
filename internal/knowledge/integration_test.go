package knowledge_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supportkb/supportkb/internal/knowledge"
	"github.com/supportkb/supportkb/internal/log"
	"github.com/supportkb/supportkb/internal/testutil"
)

const testDim = 3

func setupStore(t *testing.T) (*knowledge.Store, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db, cleanup := testutil.SetupTestDB(t)

	store := knowledge.New(db.Pool, testDim, log.NewNop())
	if err := store.EnsureSchema(context.Background(), knowledge.MetricCosine); err != nil {
		cleanup()
		t.Fatalf("EnsureSchema: %v", err)
	}

	return store, cleanup
}

func sampleEntries() []knowledge.Entry {
	return []knowledge.Entry{
		{
			Category:  "policy",
			Tags:      []string{"policy", "refund"},
			Content:   "Refund policy applies within 30 days of purchase",
			Embedding: []float32{1, 0, 0},
		},
		{
			Category:  "troubleshooting",
			Tags:      []string{"error", "login"},
			Content:   "Troubleshoot login errors by resetting your password",
			Embedding: []float32{0, 1, 0},
		},
		{
			Category:  "contact",
			Tags:      []string{"support"},
			Content:   "Contact support by email or live chat",
			Embedding: []float32{0, 0, 1},
		},
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()

	// A second run must be a no-op, not an error.
	err := store.EnsureSchema(context.Background(), knowledge.MetricCosine)
	require.NoError(t, err)
}

func TestUpsertEntries_AssignsIncreasingIDs(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.UpsertEntries(ctx, sampleEntries()))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	results, err := store.Search(ctx, knowledge.SearchParams{
		Vector:         []float32{1, 0, 0},
		Text:           "",
		TopK:           10,
		Metric:         knowledge.MetricCosine,
		SemanticWeight: 1,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	seen := map[int64]bool{}
	for _, r := range results {
		assert.False(t, seen[r.ID], "duplicate id %d", r.ID)
		seen[r.ID] = true
		assert.GreaterOrEqual(t, r.ID, int64(1))
		assert.LessOrEqual(t, r.ID, int64(3))
	}
}

func TestClearAll_RestartsIdentity(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.UpsertEntries(ctx, sampleEntries()))
	require.NoError(t, store.ClearAll(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Fresh ingest starts numbering from 1 again.
	require.NoError(t, store.UpsertEntries(ctx, sampleEntries()[:1]))
	entry, err := store.EntryByID(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, entry.ID)
}

func TestSearch_RankOrderingAndLimit(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.UpsertEntries(ctx, sampleEntries()))

	results, err := store.Search(ctx, knowledge.SearchParams{
		Vector:         []float32{1, 0, 0},
		Text:           "refund policy",
		TopK:           2,
		Metric:         knowledge.MetricCosine,
		SemanticWeight: 0.7,
		LexicalWeight:  0.3,
	})
	require.NoError(t, err)
	require.Len(t, results, 2, "never more than top-k rows")

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Rank, results[i].Rank,
			"results must be sorted by rank descending")
	}

	// The refund entry matches both semantically and lexically.
	assert.Equal(t, "policy", results[0].Category)
	assert.Greater(t, results[0].LexicalScore, 0.0)
	assert.Greater(t, results[0].SemanticScore, 0.9)
}

func TestSearch_CategoryFilter(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.UpsertEntries(ctx, sampleEntries()))

	results, err := store.Search(ctx, knowledge.SearchParams{
		Vector:         []float32{1, 0, 0},
		Text:           "help",
		TopK:           10,
		Category:       "contact",
		Metric:         knowledge.MetricCosine,
		SemanticWeight: 0.7,
		LexicalWeight:  0.3,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "contact", results[0].Category)
}

func TestSearch_ThresholdAfterLimit(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.UpsertEntries(ctx, sampleEntries()))

	// With a threshold above every attainable rank the limited set empties
	// out entirely, even though unthresholded matches exist.
	threshold := 10.0
	results, err := store.Search(ctx, knowledge.SearchParams{
		Vector:         []float32{1, 0, 0},
		Text:           "refund",
		TopK:           2,
		Metric:         knowledge.MetricCosine,
		SemanticWeight: 0.7,
		LexicalWeight:  0.3,
		Threshold:      &threshold,
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_EuclideanMetric(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.UpsertEntries(ctx, sampleEntries()))

	results, err := store.Search(ctx, knowledge.SearchParams{
		Vector:         []float32{1, 0, 0},
		Text:           "refund",
		TopK:           3,
		Metric:         knowledge.MetricEuclidean,
		SemanticWeight: 1,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Distance 0 maps to score 1; the exact-match row must score highest.
	assert.InDelta(t, 1.0, results[0].SemanticScore, 1e-6)
	for _, r := range results {
		assert.Greater(t, r.SemanticScore, 0.0)
		assert.LessOrEqual(t, r.SemanticScore, 1.0)
	}
}

func TestSearch_InnerProductMetric(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.UpsertEntries(ctx, sampleEntries()))

	// An exact normalized match must not error and must score 1; unit
	// vectors at maximal inner product sit at L2 distance 0.
	results, err := store.Search(ctx, knowledge.SearchParams{
		Vector:         []float32{1, 0, 0},
		Text:           "refund",
		TopK:           3,
		Metric:         knowledge.MetricInnerProduct,
		SemanticWeight: 1,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "policy", results[0].Category)
	assert.InDelta(t, 1.0, results[0].SemanticScore, 1e-6)
	for _, r := range results {
		assert.Greater(t, r.SemanticScore, 0.0)
		assert.LessOrEqual(t, r.SemanticScore, 1.0)
	}
}

func TestEntryByID_EmbeddingRoundTrip(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	want := []float32{0.1, 0.2, 0.3}
	require.NoError(t, store.UpsertEntries(ctx, []knowledge.Entry{
		{Category: "faq", Tags: []string{"general"}, Content: "Billing questions", Embedding: want},
	}))

	entry, err := store.EntryByID(ctx, 1)
	require.NoError(t, err)

	require.Len(t, entry.Embedding, testDim)
	for i := range want {
		assert.True(t, math.Abs(float64(entry.Embedding[i]-want[i])) < 1e-6,
			"component %d: got %f want %f", i, entry.Embedding[i], want[i])
	}
	assert.Equal(t, "faq", entry.Category)
	assert.Equal(t, []string{"general"}, entry.Tags)
}

func TestEntryByID_NotFound(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()

	_, err := store.EntryByID(context.Background(), 999)
	require.ErrorIs(t, err, knowledge.ErrNotFound)
}
