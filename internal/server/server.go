// Package server exposes the verification pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lihivismel/Fact-Check/internal/model"
	"github.com/lihivismel/Fact-Check/internal/pipeline"
	"github.com/lihivismel/Fact-Check/internal/search"
)

const (
	searchK       = 20
	searchResults = 12
	maxBodyBytes  = 1 << 20
)

// Verifier scores a claim end to end
type Verifier interface {
	Verify(ctx context.Context, claim string) (*model.VerifyResult, error)
}

// Server holds the HTTP routes and their collaborators
type Server struct {
	verifier Verifier
	searcher search.Searcher
	fetcher  pipeline.PageFetcher
	logger   *slog.Logger
	router   *chi.Mux
}

// NewServer creates a server and registers its routes
func NewServer(verifier Verifier, searcher search.Searcher, fetcher pipeline.PageFetcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		verifier: verifier,
		searcher: searcher,
		fetcher:  fetcher,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	s.RegisterHTTP(r)

	s.router = r
	return s
}

// RegisterHTTP mounts the API routes on r
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/fetch", s.handleFetch)
		r.Post("/verify", s.handleVerify)
	})
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests for up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type searchRequest struct {
	Q string `json:"q"`
}

type searchResponse struct {
	Query   string            `json:"query"`
	Results []model.SearchHit `json:"results"`
}

type fetchRequest struct {
	URL string `json:"url"`
}

type verifyRequest struct {
	Claim string `json:"claim"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Message: "Server is running!"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	query := strings.TrimSpace(req.Q)
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	hits, err := s.searcher.Search(r.Context(), query, searchK)
	if err != nil {
		s.logger.Error("Search failed", "query", query, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if len(hits) > searchResults {
		hits = hits[:searchResults]
	}
	if hits == nil {
		hits = []model.SearchHit{}
	}

	writeJSON(w, http.StatusOK, searchResponse{Query: query, Results: hits})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if !s.decode(w, r, &req) {
		return
	}
	url := strings.TrimSpace(req.URL)
	if url == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	writeJSON(w, http.StatusOK, s.fetcher.Fetch(r.Context(), url))
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.verifier.Verify(r.Context(), req.Claim)
	switch {
	case errors.Is(err, pipeline.ErrEmptyClaim):
		writeError(w, http.StatusBadRequest, "claim is required")
		return
	case err != nil:
		s.logger.Error("Verify failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote", r.RemoteAddr,
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// writeJSON encodes before writing the status so an unencodable value becomes a 500
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(errorResponse{Detail: fmt.Sprintf("encode response: %v", err)})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
