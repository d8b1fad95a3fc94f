package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/supportkb/supportkb/internal/knowledge"
)

func testSources() []knowledge.SearchResult {
	return []knowledge.SearchResult{
		{ID: 1, Content: "Refunds are processed within 30 days."},
		{ID: 2, Content: "Contact support via the help center."},
	}
}

func TestAnswerWithoutAPIKey(t *testing.T) {
	a := New(Config{Model: "llama-3.1-8b-instant"}, nil)

	answer, err := a.Answer(context.Background(), "How do refunds work?", testSources(), nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer != MissingKeyNotice {
		t.Errorf("answer = %q, want missing-key notice", answer)
	}
}

func TestAnswerBuildsPrompt(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Refunds take 30 days."}},
			},
		})
	}))
	defer srv.Close()

	a := New(Config{
		Endpoint:    srv.URL,
		APIKey:      "test-key",
		Model:       "llama-3.1-8b-instant",
		Temperature: 0.2,
	}, nil)

	answer, err := a.Answer(context.Background(), "How do refunds work?", testSources(), nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer != "Refunds take 30 days." {
		t.Errorf("answer = %q", answer)
	}

	if got.Model != "llama-3.1-8b-instant" {
		t.Errorf("model = %q", got.Model)
	}
	if got.Temperature != 0.2 {
		t.Errorf("temperature = %v", got.Temperature)
	}
	if len(got.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(got.Messages))
	}
	if got.Messages[0].Role != "system" {
		t.Errorf("first message role = %q", got.Messages[0].Role)
	}
	ctxMsg := got.Messages[1]
	if ctxMsg.Role != "system" || !strings.Contains(ctxMsg.Content, "Refunds are processed within 30 days.") {
		t.Errorf("context message = %+v", ctxMsg)
	}
	if !strings.Contains(ctxMsg.Content, "Contact support via the help center.") {
		t.Error("context message missing second source")
	}
	last := got.Messages[len(got.Messages)-1]
	if last.Role != "user" || !strings.Contains(last.Content, "How do refunds work?") {
		t.Errorf("final message = %+v", last)
	}
}

func TestAnswerThreadsPreviousTurn(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	a := New(Config{Endpoint: srv.URL, APIKey: "k", Model: "m"}, nil)

	prev := &Turn{Question: "What is the refund window?", Answer: "30 days."}
	if _, err := a.Answer(context.Background(), "Does that include shipping?", testSources(), prev); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if len(got.Messages) != 5 {
		t.Fatalf("got %d messages, want 5", len(got.Messages))
	}
	if got.Messages[2].Role != "user" || !strings.Contains(got.Messages[2].Content, "What is the refund window?") {
		t.Errorf("previous question message = %+v", got.Messages[2])
	}
	if got.Messages[3].Role != "assistant" || !strings.Contains(got.Messages[3].Content, "30 days.") {
		t.Errorf("previous answer message = %+v", got.Messages[3])
	}
}

func TestAnswerServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := New(Config{Endpoint: srv.URL, APIKey: "k", Model: "m"}, nil)

	if _, err := a.Answer(context.Background(), "q", nil, nil); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestAnswerEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	a := New(Config{Endpoint: srv.URL, APIKey: "k", Model: "m"}, nil)

	if _, err := a.Answer(context.Background(), "q", nil, nil); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestBuildContext(t *testing.T) {
	got := buildContext(testSources())
	want := "Refunds are processed within 30 days.\nContact support via the help center."
	if got != want {
		t.Errorf("buildContext = %q, want %q", got, want)
	}
	if buildContext(nil) != "" {
		t.Error("buildContext(nil) should be empty")
	}
}
