package nli

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/lihivismel/Fact-Check/internal/model"
)

type countingBackend struct {
	loads   atomic.Int32
	loadErr error
	scores  model.EntailmentScores
}

func (b *countingBackend) Name() string { return "fake" }

func (b *countingBackend) Load(ctx context.Context) error {
	b.loads.Add(1)
	return b.loadErr
}

func (b *countingBackend) Classify(ctx context.Context, premise, hypothesis string) (model.EntailmentScores, error) {
	return b.scores, nil
}

func TestService_EnsureLoadedOnceUnderConcurrency(t *testing.T) {
	backend := &countingBackend{}
	svc := NewService(backend, "test-model", nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.EnsureLoaded(context.Background()); err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		}()
	}
	wg.Wait()

	if got := backend.loads.Load(); got != 1 {
		t.Errorf("Expected exactly 1 load, got %d", got)
	}
	if !svc.Loaded() {
		t.Error("Expected service to report loaded")
	}
}

func TestService_LoadFailureIsSticky(t *testing.T) {
	backend := &countingBackend{loadErr: errors.New("connection refused")}
	svc := NewService(backend, "test-model", nil)

	for i := 0; i < 3; i++ {
		err := svc.EnsureLoaded(context.Background())
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("Expected ErrUnavailable, got %v", err)
		}
	}

	if _, err := svc.Classify(context.Background(), "p", "h"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected Classify to fail with ErrUnavailable, got %v", err)
	}
	if got := backend.loads.Load(); got != 1 {
		t.Errorf("Expected a single load attempt, got %d", got)
	}
	if svc.Loaded() {
		t.Error("Expected service to report not loaded")
	}
}

func TestService_ClassifyLoadsLazily(t *testing.T) {
	backend := &countingBackend{scores: model.EntailmentScores{Entailment: 0.7, Contradiction: 0.2, Neutral: 0.1}}
	svc := NewService(backend, "test-model", nil)

	scores, err := svc.Classify(context.Background(), "p", "h")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if scores.Entailment != 0.7 {
		t.Errorf("Expected entailment 0.7, got %v", scores.Entailment)
	}
	if backend.loads.Load() != 1 {
		t.Errorf("Expected lazy load on first Classify")
	}
	if svc.ModelName() != "test-model" {
		t.Errorf("Expected configured model name, got %s", svc.ModelName())
	}
}

func TestService_CancelledCallerDoesNotPoisonLoad(t *testing.T) {
	backend := &countingBackend{}
	svc := NewService(backend, "test-model", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := svc.EnsureLoaded(ctx); err != nil {
		t.Errorf("Expected load to ignore caller cancellation, got %v", err)
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		provider, configured, score, want string
	}{
		{"tei", "", "custom/nli", "custom/nli"},
		{"tei", "app/model", "", "app/model"},
		{"", "", "", model.DefaultNLIModel},
		{"openai", "", "custom/nli", ""},
		{"ollama", "llama3.1", "custom/nli", "llama3.1"},
	}

	for _, tt := range tests {
		if got := ResolveModel(tt.provider, tt.configured, tt.score); got != tt.want {
			t.Errorf("ResolveModel(%q, %q, %q) = %q, want %q", tt.provider, tt.configured, tt.score, got, tt.want)
		}
	}
}

func TestNewBackend_UnknownProvider(t *testing.T) {
	if _, err := NewBackend(Config{Provider: "bogus"}); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
	b, err := NewBackend(Config{Provider: "TEI"})
	if err != nil || b.Name() != "tei" {
		t.Errorf("Expected tei backend, got %v, %v", b, err)
	}
}
