package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/infrastructure/resilience"
)

func TestChatCompleterSendsMessagesAndOptions(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":" {\"ok\":true} "}}`))
	}))
	defer server.Close()

	completer := NewChatCompleter(New(server.URL, "gen", "embed"))
	out, err := completer.Complete(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "sys"},
		{Role: domain.RoleUser, Content: "hello"},
	}, domain.CompletionOptions{MaxTokens: 500, Temperature: 0, JSON: true})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != `{"ok":true}` {
		t.Fatalf("unexpected completion %q", out)
	}
	if captured["format"] != "json" || captured["model"] != "gen" || captured["stream"] != false {
		t.Fatalf("unexpected request %v", captured)
	}
	options, _ := captured["options"].(map[string]any)
	if options["num_predict"] != float64(500) || options["temperature"] != float64(0) {
		t.Fatalf("unexpected options %v", options)
	}
	messages, _ := captured["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected two messages, got %v", messages)
	}
}

func TestEmbedIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen", "embed"))
	_, err := embedder.Embed(context.Background(), []string{"hello"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected 502 to be temporary, got %v", err)
	}
}

func TestEmbedQueryReturnsFirstVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2,0.3]]}`))
	}))
	defer server.Close()

	vector, err := NewEmbedder(New(server.URL, "gen", "embed")).EmbedQuery(context.Background(), "fries")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if len(vector) != 3 {
		t.Fatalf("unexpected vector %v", vector)
	}
}

func TestExecutorRetriesWhenConfigured(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"embeddings":[[1]]}`))
	}))
	defer server.Close()

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
	})
	embedder := NewEmbedder(New(server.URL, "gen", "embed", WithExecutor(executor)))
	if _, err := embedder.EmbedQuery(context.Background(), "x"); err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestClassifyOllamaErrorLoadingModel(t *testing.T) {
	class := classifyOllamaError(&resilience.HTTPStatusError{StatusCode: http.StatusBadRequest, Body: "error loading model"})
	if !class.Retryable {
		t.Fatalf("expected loading model to be retryable")
	}
}

func TestEmbedRejectsVectorCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[1,0]]}`))
	}))
	defer server.Close()

	_, err := NewEmbedder(New(server.URL, "gen", "embed")).Embed(context.Background(), []string{"fries", "shake"})
	if err == nil || !strings.Contains(err.Error(), "1 vectors for 2 inputs") {
		t.Fatalf("expected count mismatch error, got %v", err)
	}
}
