package nli

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaBackend_Classify_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Format != "json" {
			t.Errorf("Expected format json, got %q", req.Format)
		}
		if req.Stream {
			t.Error("Expected non-streaming request")
		}

		resp := ollamaResponse{
			Model: "llama3.1",
			// Unnormalised values are rescaled to sum to 1
			Response: `{"entailment": 2, "contradiction": 1, "neutral": 1}`,
			Done:     true,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	backend, err := NewOllamaBackend(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	scores, err := backend.Classify(context.Background(), "premise", "hypothesis")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if math.Abs(scores.Entailment-0.5) > 1e-9 {
		t.Errorf("Expected entailment 0.5, got %v", scores.Entailment)
	}
	if math.Abs(scores.Neutral-0.25) > 1e-9 {
		t.Errorf("Expected neutral 0.25, got %v", scores.Neutral)
	}
}

func TestOllamaBackend_RequiresModel(t *testing.T) {
	if _, err := NewOllamaBackend(Config{}); err == nil {
		t.Fatal("Expected error without model")
	}
}

func TestOllamaBackend_Classify_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "model not found"}`))
	}))
	defer server.Close()

	backend, err := NewOllamaBackend(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	if _, err := backend.Classify(context.Background(), "p", "h"); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOllamaBackend_Load(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"models": []}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	backend, err := NewOllamaBackend(Config{BaseURL: server.URL, Model: "llama3.1"})
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	if err := backend.Load(context.Background()); err != nil {
		t.Errorf("Expected load to succeed, got %v", err)
	}

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if err := backend.Load(context.Background()); err == nil {
		t.Error("Expected load to fail on error")
	}
}
