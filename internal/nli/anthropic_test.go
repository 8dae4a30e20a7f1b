package nli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropicBackend_Classify_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("Expected anthropic-version header")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-20241022",
			"content": [{"type": "text", "text": "Here you go: {\"ENTAILMENT\": 0.1, \"contradiction\": 0.7, \"neutral\": 0.2}"}]
		}`))
	}))
	defer server.Close()

	backend, err := NewAnthropicBackend(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	scores, err := backend.Classify(context.Background(), "premise", "hypothesis")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if scores.Contradiction < 0.69 || scores.Contradiction > 0.71 {
		t.Errorf("Expected contradiction 0.7, got %v", scores.Contradiction)
	}
	if scores.Entailment < 0.09 || scores.Entailment > 0.11 {
		t.Errorf("Expected entailment 0.1, got %v", scores.Entailment)
	}
}

func TestAnthropicBackend_Classify_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "authentication_error", "message": "invalid x-api-key"}}`))
	}))
	defer server.Close()

	backend, err := NewAnthropicBackend(Config{APIKey: "bad", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	if _, err := backend.Classify(context.Background(), "p", "h"); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestAnthropicBackend_Classify_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "msg_1", "content": []}`))
	}))
	defer server.Close()

	backend, err := NewAnthropicBackend(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	if _, err := backend.Classify(context.Background(), "p", "h"); err == nil {
		t.Fatal("Expected error for empty content, got nil")
	}
}

func TestAnthropicBackend_Load(t *testing.T) {
	backend, err := NewAnthropicBackend(Config{})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}
	if err := backend.Load(context.Background()); err == nil {
		t.Error("Expected load to fail without API key")
	}

	backend, _ = NewAnthropicBackend(Config{APIKey: "test-key"})
	if err := backend.Load(context.Background()); err != nil {
		t.Errorf("Expected load to succeed, got %v", err)
	}
}
