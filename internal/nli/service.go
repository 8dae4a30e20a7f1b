package nli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lihivismel/Fact-Check/internal/model"
)

// ErrUnavailable is returned when the NLI backend could not be loaded
var ErrUnavailable = errors.New("nli model unavailable")

// LoadTimeout bounds the one-time backend load
const LoadTimeout = 2 * time.Minute

// Service is the process-wide NLI handle.
// The backend is loaded exactly once, on first use or explicitly at startup;
// a load failure is remembered and returned to every later caller.
type Service struct {
	backend   Backend
	modelName string
	logger    *slog.Logger

	once   sync.Once
	err    error
	loaded atomic.Bool
}

// NewService wraps a backend
func NewService(backend Backend, modelName string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		backend:   backend,
		modelName: modelName,
		logger:    logger,
	}
}

// EnsureLoaded loads the backend once. Concurrent first callers block until
// the single load attempt finishes and all observe its result.
func (s *Service) EnsureLoaded(ctx context.Context) error {
	s.once.Do(func() {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()

		start := time.Now()
		if err := s.backend.Load(loadCtx); err != nil {
			s.err = fmt.Errorf("%w: %s: %v", ErrUnavailable, s.backend.Name(), err)
			s.logger.Error("nli load failed", "provider", s.backend.Name(), "model", s.modelName, "error", err)
			return
		}
		s.loaded.Store(true)
		s.logger.Info("nli loaded", "provider", s.backend.Name(), "model", s.ModelName(), "elapsed", time.Since(start))
	})
	return s.err
}

// Loaded reports whether the backend loaded successfully
func (s *Service) Loaded() bool {
	return s.loaded.Load()
}

// Classify loads the backend if needed and classifies one pair
func (s *Service) Classify(ctx context.Context, premise, hypothesis string) (model.EntailmentScores, error) {
	if err := s.EnsureLoaded(ctx); err != nil {
		return model.EntailmentScores{}, err
	}
	return s.backend.Classify(ctx, premise, hypothesis)
}

// ModelName returns the served model when the backend reports one, else the configured name
func (s *Service) ModelName() string {
	if r, ok := s.backend.(interface{ ModelID() string }); ok && s.Loaded() {
		if id := r.ModelID(); id != "" {
			return id
		}
	}
	return s.modelName
}

// Provider returns the backend name
func (s *Service) Provider() string {
	return s.backend.Name()
}
