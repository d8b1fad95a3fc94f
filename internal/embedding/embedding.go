// Package embedding wraps a text-embedding model behind an OpenAI-compatible
// HTTP endpoint. The model is a black box: deterministic for a given model
// version, texts in, fixed-length float vectors out.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultBatchSize bounds peak memory for batch embedding requests.
const DefaultBatchSize = 32

// sharedHTTPClient reuses the connection pool across all embedding calls.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

type embeddingRequest struct {
	Input    []string `json:"input"`
	Model    string   `json:"model"`
	Encoding string   `json:"encoding_format"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
}

// Config holds embedding client settings.
type Config struct {
	// BaseURL of the OpenAI-compatible API, without the /embeddings suffix.
	BaseURL string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// Model is the embedding model identifier.
	Model string

	// Dim is the model's output dimensionality; every returned vector is
	// validated against it.
	Dim int
}

// Client calls an OpenAI-compatible /embeddings endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an embedding client. logger may be nil to use
// slog.Default().
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: sharedHTTPClient,
		logger:     logger,
	}
}

// Dim returns the configured output dimensionality. It must match the
// knowledge store's dimension for the lifetime of a store instance.
func (c *Client) Dim() int {
	return c.cfg.Dim
}

// EmbedBatch embeds texts in chunks of batchSize to bound peak memory.
// When normalize is true every vector is scaled to unit L2 norm.
func (c *Client) EmbedBatch(ctx context.Context, texts []string, normalize bool, batchSize int) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))

		chunk, err := c.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, chunk...)
	}

	if normalize {
		for i, v := range vectors {
			vectors[i] = Normalize(v)
		}
	}

	return vectors, nil
}

// EmbedOne embeds a single text, wrapping EmbedBatch.
func (c *Client) EmbedOne(ctx context.Context, text string, normalize bool) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text}, normalize, 1)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vectors[0], nil
}

// embedChunk issues one API call for up to batchSize texts and reassembles
// vectors in input order.
func (c *Client) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := embeddingRequest{
		Input:    texts,
		Model:    c.cfg.Model,
		Encoding: "float",
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/embeddings", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending embedding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding API returned status %d: %s", resp.StatusCode, string(body))
	}

	var embResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("decoding embedding response: %w", err)
	}
	if len(embResp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding API returned %d vectors for %d texts", len(embResp.Data), len(texts))
	}

	vectors := make([][]float32, len(embResp.Data))
	for _, data := range embResp.Data {
		if data.Index < 0 || data.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding API returned out-of-range index %d", data.Index)
		}
		if len(data.Embedding) != c.cfg.Dim {
			return nil, fmt.Errorf("embedding has dimension %d, expected %d", len(data.Embedding), c.cfg.Dim)
		}
		vectors[data.Index] = data.Embedding
	}

	return vectors, nil
}
