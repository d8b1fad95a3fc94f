package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/supportkb/supportkb/internal/knowledge"
	"github.com/supportkb/supportkb/internal/retrieval"
)

// maxBodyBytes bounds request bodies for all JSON endpoints.
const maxBodyBytes = 1 << 20

// Retriever is the query capability the API exposes.
type Retriever interface {
	Query(ctx context.Context, text string, opts ...retrieval.Option) ([]knowledge.SearchResult, error)
}

// SearchHandler handles hybrid search requests.
type SearchHandler struct {
	retriever Retriever
	logger    *slog.Logger
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(retriever Retriever, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{retriever: retriever, logger: logger}
}

// RegisterRoutes registers search routes on the given mux.
func (h *SearchHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/search", h.search)
}

type searchRequest struct {
	Query     string   `json:"query"`
	TopK      int      `json:"top_k,omitempty"`
	Category  string   `json:"category,omitempty"`
	Metric    string   `json:"metric,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

type searchResponse struct {
	Results []knowledge.SearchResult `json:"results"`
}

func (h *SearchHandler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "missing_query", "query is required")
		return
	}

	opts := requestOptions(req.TopK, req.Category, req.Metric, req.Threshold)
	results, err := h.retriever.Query(r.Context(), req.Query, opts...)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	if results == nil {
		results = []knowledge.SearchResult{}
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

func (h *SearchHandler) writeQueryError(w http.ResponseWriter, err error) {
	h.logger.Error("search failed", "error", err)
	switch {
	case errors.Is(err, retrieval.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, "missing_query", "query is required")
	case errors.Is(err, knowledge.ErrConnection):
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "knowledge store unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "search_failed", "search failed")
	}
}

// requestOptions converts optional request fields to retrieval options.
func requestOptions(topK int, category, metric string, threshold *float64) []retrieval.Option {
	var opts []retrieval.Option
	if topK > 0 {
		opts = append(opts, retrieval.WithTopK(topK))
	}
	if category != "" {
		opts = append(opts, retrieval.WithCategory(category))
	}
	if metric != "" {
		opts = append(opts, retrieval.WithMetric(knowledge.ParseMetric(metric)))
	}
	if threshold != nil {
		opts = append(opts, retrieval.WithThreshold(*threshold))
	}
	return opts
}

// decodeJSON decodes a bounded JSON body, rejecting unknown noise leniently
// but malformed JSON with an error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}
