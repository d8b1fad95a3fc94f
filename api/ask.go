package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/supportkb/supportkb/internal/knowledge"
	"github.com/supportkb/supportkb/internal/rag"
	"github.com/supportkb/supportkb/internal/retrieval"
)

// Answerer generates an answer grounded in retrieved sources.
type Answerer interface {
	Answer(ctx context.Context, question string, sources []knowledge.SearchResult, previous *rag.Turn) (string, error)
}

// AskHandler handles retrieval-augmented answer requests.
type AskHandler struct {
	retriever Retriever
	answerer  Answerer
	logger    *slog.Logger
}

// NewAskHandler creates a new ask handler. answerer may be nil, which
// disables the endpoint with a 503.
func NewAskHandler(retriever Retriever, answerer Answerer, logger *slog.Logger) *AskHandler {
	return &AskHandler{retriever: retriever, answerer: answerer, logger: logger}
}

// RegisterRoutes registers ask routes on the given mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ask", h.ask)
}

type askRequest struct {
	Question         string `json:"question"`
	TopK             int    `json:"top_k,omitempty"`
	Category         string `json:"category,omitempty"`
	PreviousQuestion string `json:"previous_question,omitempty"`
	PreviousAnswer   string `json:"previous_answer,omitempty"`
}

type askResponse struct {
	Answer  string                   `json:"answer"`
	Sources []knowledge.SearchResult `json:"sources"`
}

func (h *AskHandler) ask(w http.ResponseWriter, r *http.Request) {
	if h.answerer == nil {
		writeError(w, http.StatusServiceUnavailable, "ask_disabled", "answer generation not configured")
		return
	}

	var req askRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "missing_question", "question is required")
		return
	}

	var opts []retrieval.Option
	if req.TopK > 0 {
		opts = append(opts, retrieval.WithTopK(req.TopK))
	}
	if req.Category != "" {
		opts = append(opts, retrieval.WithCategory(req.Category))
	}

	sources, err := h.retriever.Query(r.Context(), req.Question, opts...)
	if err != nil {
		h.logger.Error("retrieval for ask failed", "error", err)
		if errors.Is(err, knowledge.ErrConnection) {
			writeError(w, http.StatusServiceUnavailable, "store_unavailable", "knowledge store unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "retrieval_failed", "retrieval failed")
		return
	}

	var previous *rag.Turn
	if req.PreviousQuestion != "" || req.PreviousAnswer != "" {
		previous = &rag.Turn{Question: req.PreviousQuestion, Answer: req.PreviousAnswer}
	}

	answer, err := h.answerer.Answer(r.Context(), req.Question, sources, previous)
	if err != nil {
		h.logger.Error("answer generation failed", "error", err)
		writeError(w, http.StatusBadGateway, "generation_failed", "answer generation failed")
		return
	}
	if sources == nil {
		sources = []knowledge.SearchResult{}
	}

	writeJSON(w, http.StatusOK, askResponse{Answer: answer, Sources: sources})
}
