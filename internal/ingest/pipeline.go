// Package ingest populates the knowledge store from tabular source data.
//
// The pipeline reads one logical document per CSV row, normalizes the text,
// infers category and tags when the source lacks them, embeds all texts in
// one batched call, and bulk-upserts the result.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/supportkb/supportkb/internal/knowledge"
)

// ErrNotFound is returned when the ingestion input path does not exist.
var ErrNotFound = errors.New("dataset not found")

// minRecommendedRows is a quality signal only; smaller datasets ingest fine
// but retrieval quality suffers.
const minRecommendedRows = 50

// textColumnNames are matched case-insensitively, in column order, to pick
// the content column. Falls back to the first column.
var textColumnNames = map[string]struct{}{
	"text": {}, "content": {}, "question": {}, "answer": {}, "kb": {},
}

// Store is the subset of the knowledge store the pipeline writes through.
type Store interface {
	UpsertEntries(ctx context.Context, entries []knowledge.Entry) error
}

// Embedder is the batch embedding capability the pipeline consumes.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string, normalize bool, batchSize int) ([][]float32, error)
}

// Pipeline wires CSV parsing, inference and embedding into the store.
type Pipeline struct {
	store     Store
	embedder  Embedder
	batchSize int
	logger    *slog.Logger
}

// NewPipeline creates an ingestion pipeline. batchSize is the embedding batch
// size (distinct from the store's write page size). logger may be nil.
func NewPipeline(store Store, embedder Embedder, batchSize int, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		store:     store,
		embedder:  embedder,
		batchSize: batchSize,
		logger:    logger,
	}
}

// IngestCSV reads the dataset at path and loads it into the knowledge store.
// Returns the number of ingested entries.
func (p *Pipeline) IngestCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return 0, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	docs, err := readDocuments(f)
	if err != nil {
		return 0, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	if len(docs) < minRecommendedRows {
		p.logger.Warn("small dataset ingested, retrieval quality may suffer",
			"rows", len(docs), "recommended", minRecommendedRows)
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.content
	}

	p.logger.Info("computing embeddings", "texts", len(texts), "batch_size", p.batchSize)
	vectors, err := p.embedder.EmbedBatch(ctx, texts, true, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("embedding dataset: %w", err)
	}
	if len(vectors) != len(docs) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}

	entries := make([]knowledge.Entry, len(docs))
	for i, d := range docs {
		entries[i] = knowledge.Entry{
			Category:  d.category,
			Tags:      d.tags,
			Content:   d.content,
			Embedding: vectors[i],
		}
	}

	p.logger.Info("upserting entries", "count", len(entries))
	if err := p.store.UpsertEntries(ctx, entries); err != nil {
		return 0, fmt.Errorf("upserting entries: %w", err)
	}

	return len(entries), nil
}

// document is one cleaned, categorized row ready for embedding.
type document struct {
	content  string
	category string
	tags     []string
}

// readDocuments parses the CSV, selects columns and applies cleaning and
// inference. The first record is the header.
func readDocuments(r io.Reader) ([]document, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	textCol := 0
	for i, name := range header {
		if _, ok := textColumnNames[strings.ToLower(name)]; ok {
			textCol = i
			break
		}
	}

	categoryCol := -1
	tagsCol := -1
	for i, name := range header {
		switch strings.ToLower(name) {
		case "category":
			if categoryCol < 0 {
				categoryCol = i
			}
		case "tags":
			if tagsCol < 0 {
				tagsCol = i
			}
		}
	}

	var docs []document
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(docs)+2, err)
		}

		content := CleanText(record[textCol])
		if content == "" {
			continue
		}

		var category string
		if categoryCol >= 0 {
			category = CleanText(record[categoryCol])
		} else {
			category = GuessCategory(content)
		}
		if category == "" {
			category = "general"
		}

		var tags []string
		if tagsCol >= 0 {
			tags = splitTags(record[tagsCol])
		} else {
			tags = ExtractTags(content)
		}

		docs = append(docs, document{
			content:  content,
			category: category,
			tags:     tags,
		})
	}

	return docs, nil
}
