package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/supportkb/supportkb/internal/feedback"
	"github.com/supportkb/supportkb/internal/knowledge"
)

// FeedbackSink records feedback on a retrieved source.
type FeedbackSink interface {
	Log(entry feedback.Entry) error
}

// FeedbackHandler handles feedback logging requests.
type FeedbackHandler struct {
	sink   FeedbackSink
	logger *slog.Logger
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(sink FeedbackSink, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{sink: sink, logger: logger}
}

// RegisterRoutes registers feedback routes on the given mux.
func (h *FeedbackHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/feedback", h.log)
}

type feedbackRequest struct {
	Query   string                 `json:"query"`
	Source  knowledge.SearchResult `json:"source"`
	Action  string                 `json:"action"`
	Rating  *int                   `json:"rating,omitempty"`
	Comment string                 `json:"comment,omitempty"`
}

func (h *FeedbackHandler) log(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "missing_query", "query is required")
		return
	}
	if strings.TrimSpace(req.Action) == "" {
		writeError(w, http.StatusBadRequest, "missing_action", "action is required")
		return
	}

	entry := feedback.Entry{
		Query:   req.Query,
		Source:  req.Source,
		Action:  req.Action,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := h.sink.Log(entry); err != nil {
		h.logger.Error("logging feedback failed", "error", err)
		writeError(w, http.StatusInternalServerError, "feedback_failed", "failed to record feedback")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
