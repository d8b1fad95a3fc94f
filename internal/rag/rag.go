// Package rag turns retrieved knowledge entries into a generated answer via
// an OpenAI-compatible chat completions endpoint. Retrieval itself stays in
// the retrieval package; this package only builds the prompt and calls the
// model.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/supportkb/supportkb/internal/knowledge"
)

// DefaultEndpoint is the Groq OpenAI-compatible chat completions URL.
const DefaultEndpoint = "https://api.groq.com/openai/v1/chat/completions"

// requestTimeout bounds the completion call. Everything else in the system
// is bounded by the caller's context.
const requestTimeout = 30 * time.Second

const systemPrompt = "You are a company customer support assistant. Answer politely, " +
	"concisely and accurately. Use the provided context. If the information is " +
	"not available, say so honestly and suggest a next step."

// MissingKeyNotice is returned as the answer when no API key is configured.
// Retrieval still works, so callers get ranked sources either way.
const MissingKeyNotice = "Answer generation is not configured. Set GROQ_API_KEY " +
	"to enable generated answers; the ranked sources below are still valid."

// Config holds the answer generation settings.
type Config struct {
	Endpoint    string
	APIKey      string
	Model       string
	Temperature float64
}

// Answerer generates answers grounded in retrieved entries.
type Answerer struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// New creates an Answerer. Empty Endpoint falls back to the Groq URL.
// logger may be nil.
func New(cfg Config, logger *slog.Logger) *Answerer {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Answerer{
		cfg:    cfg,
		client: &http.Client{Timeout: requestTimeout},
		logger: logger,
	}
}

// Turn carries one prior exchange so follow-up questions stay consistent.
type Turn struct {
	Question string
	Answer   string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Answer generates an answer to question grounded in sources. previous may
// be nil for single-turn questions. Without an API key it returns the
// missing-key notice instead of an error.
func (a *Answerer) Answer(ctx context.Context, question string, sources []knowledge.SearchResult, previous *Turn) (string, error) {
	if a.cfg.APIKey == "" {
		return MissingKeyNotice, nil
	}

	messages := []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "system", Content: "Context:\n" + buildContext(sources)},
	}
	if previous != nil {
		if previous.Question != "" {
			messages = append(messages, chatMessage{
				Role:    "user",
				Content: "Previous question: " + previous.Question,
			})
		}
		if previous.Answer != "" {
			messages = append(messages, chatMessage{
				Role:    "assistant",
				Content: "Previous answer: " + previous.Answer,
			})
		}
	}
	messages = append(messages, chatMessage{
		Role:    "user",
		Content: "Question: " + question + ". Please stay consistent with the previous answer where relevant.",
	})

	body, err := json.Marshal(chatRequest{
		Model:       a.cfg.Model,
		Temperature: a.cfg.Temperature,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("encoding completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling completion endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		a.logger.Error("completion endpoint error",
			"status", resp.StatusCode, "body", string(payload))
		return "", fmt.Errorf("completion endpoint returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response contains no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// buildContext joins source contents, one per line, in rank order.
func buildContext(sources []knowledge.SearchResult) string {
	lines := make([]string, len(sources))
	for i, s := range sources {
		lines[i] = s.Content
	}
	return strings.Join(lines, "\n")
}
