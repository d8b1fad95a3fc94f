// Package knowledge owns the knowledge-base schema and its hybrid search.
//
// The store keeps customer-support entries in a single PostgreSQL table with
// two derived search representations per row: a pgvector embedding for
// semantic similarity and a generated tsvector for lexical relevance. One
// query ranks candidates by a weighted fusion of both signals.
//
// # Write path
//
//	Entry (category, tags, content, embedding)
//	     |
//	     v
//	UpsertEntries (validated, page-batched inserts)
//	     |
//	     v
//	kb_entries (SERIAL id, tsvector generated from content)
//
// # Read path
//
//	Search(SearchParams)
//	     |
//	     v
//	one parameterized query:
//	  semantic_score  from vector distance (metric-dependent)
//	  lexical_score   from ts_rank over the generated tsvector
//	  rank            = semantic_weight*semantic + lexical_weight*lexical
//	     |
//	     v
//	top-k rows ordered by rank, optional threshold applied afterwards
//
// # Schema ownership
//
// EnsureSchema is idempotent and must be invoked once by the owning process
// (the init command, or test setup) before any store operation. Components
// receive an already-initialized store; they never run schema setup
// themselves. The embedding dimension is fixed at table creation and every
// write or query vector is validated against it.
//
// # Indexes
//
//   - GIN over the generated tsvector column
//   - IVFFlat over the embedding, using the operator class of the configured
//     metric
//   - HNSW over the embedding, created opportunistically: backends without
//     HNSW support log the probe failure and continue
//
// # Concurrency
//
// The store issues no client-side locking; it is safe for concurrent use and
// relies on PostgreSQL's default isolation for read-during-write behavior.
// Bulk writes are paged and auto-committed per page, so a failure mid-ingest
// leaves earlier pages committed.
package knowledge
