// Package pipeline runs one claim through search, fetch, chunk selection,
// NLI aggregation and scoring.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lihivismel/Fact-Check/internal/chunk"
	"github.com/lihivismel/Fact-Check/internal/config"
	"github.com/lihivismel/Fact-Check/internal/model"
	"github.com/lihivismel/Fact-Check/internal/nli"
	"github.com/lihivismel/Fact-Check/internal/score"
	"github.com/lihivismel/Fact-Check/internal/scrape"
	"github.com/lihivismel/Fact-Check/internal/search"
	"github.com/lihivismel/Fact-Check/internal/worker"
)

// ErrEmptyClaim is returned when the claim is blank
var ErrEmptyClaim = errors.New("claim is empty")

// PageFetcher turns a URL into a page record; failures are reported on the record
type PageFetcher interface {
	Fetch(ctx context.Context, url string) model.PageRecord
}

// NLI is the entailment model handle used by a run
type NLI interface {
	nli.Classifier
	EnsureLoaded(ctx context.Context) error
}

// Pipeline orchestrates the complete verification of one claim
type Pipeline struct {
	searcher   search.Searcher
	fetcher    PageFetcher
	classifier NLI
	configs    config.Source
	opts       model.PipelineConfig
	now        func() time.Time
	logger     *slog.Logger
}

// Option customises a Pipeline
type Option func(*Pipeline)

// WithClock overrides the clock used for recency weighting
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a pipeline from its collaborators
func New(searcher search.Searcher, fetcher PageFetcher, classifier NLI, configs config.Source, opts model.PipelineConfig, options ...Option) *Pipeline {
	p := &Pipeline{
		searcher:   searcher,
		fetcher:    fetcher,
		classifier: classifier,
		configs:    configs,
		opts:       opts,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// Components are the long-lived collaborators built from the application config
type Components struct {
	Pipeline *Pipeline
	Searcher search.Searcher
	Fetcher  *scrape.Fetcher
	NLI      *nli.Service
	Configs  *config.Loader
}

// Build wires the production collaborators: Serper search, the polite
// fetcher and the configured NLI backend.
func Build(cfg *model.Config, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}

	searcher, err := search.NewSearcher(cfg.Search, cfg.HTTP, logger)
	if err != nil {
		return nil, fmt.Errorf("create searcher: %w", err)
	}

	limiter := worker.NewLimiterFromConfig(cfg.RateLimiting)
	fetcher := scrape.NewFetcher(cfg.HTTP, limiter, logger)

	loader := config.NewLoader(config.ResolvePath(cfg.Pipeline.ScoreConfigPath), logger)
	scoreCfg, _ := loader.Load()

	backendCfg := nli.ConfigFromModel(cfg.NLI, cfg.HTTP)
	backendCfg.Model = nli.ResolveModel(cfg.NLI.Provider, cfg.NLI.Model, scoreCfg.NLIModelName)
	backend, err := nli.NewBackend(backendCfg)
	if err != nil {
		return nil, fmt.Errorf("create nli backend: %w", err)
	}
	service := nli.NewService(backend, backendCfg.Model, logger)

	return &Components{
		Pipeline: New(searcher, fetcher, service, loader, cfg.Pipeline, WithLogger(logger)),
		Searcher: searcher,
		Fetcher:  fetcher,
		NLI:      service,
		Configs:  loader,
	}, nil
}

// Verify scores one claim. Search failure and an unavailable NLI model abort
// the run; individual page failures only shrink the evidence.
func (p *Pipeline) Verify(ctx context.Context, claim string) (*model.VerifyResult, error) {
	claim = strings.TrimSpace(claim)
	if claim == "" {
		return nil, ErrEmptyClaim
	}

	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	// Fresh per run so operators can tune scoring live
	cfg, _ := p.configs.Load()
	trace := p.tracer(cfg)
	trace("[CLAIM]", "claim", claim)

	hits, err := p.searcher.Search(ctx, claim, p.opts.SearchK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	picked := hits
	if p.opts.FetchK >= 0 && len(picked) > p.opts.FetchK {
		picked = picked[:p.opts.FetchK]
	}
	trace("[SEARCH]", "total", len(hits), "picked", len(picked))

	keywords := chunk.Keywords(claim)
	trace("[KWS]", "keywords", keywords, "min_match", cfg.NLIMinKeywordMatch)

	evidence, sources, err := p.collect(ctx, keywords, picked)
	if err != nil {
		return nil, err
	}

	gate := chunk.Gate{MinMatch: cfg.NLIMinKeywordMatch, MaxTotal: cfg.NLIMaxChunksTotal}
	candidates, dropped := gate.Collect(sources, keywords)
	trace("[CHUNKS]", "eligible_for_nli", len(candidates)+dropped)
	if dropped > 0 {
		trace("[LIMIT]", "chunks", len(candidates)+dropped, "kept", len(candidates))
	}

	if len(candidates) > 0 {
		if err := p.classifier.EnsureLoaded(ctx); err != nil {
			return nil, fmt.Errorf("load nli: %w", err)
		}
	}

	agg, err := score.NewAggregator(cfg, p.classifier, p.logger).Aggregate(ctx, claim, evidence, candidates)
	if err != nil {
		return nil, err
	}

	heur, signals := score.NewScorer(cfg, p.now).Calculate(evidence)
	trace("[HEUR]", "domains", heur.UniqueDomains, "bucket", heur.CoverageBucket, "factor", heur.CoverageFactor,
		"base", score.Round(heur.Base, 1), "bonus", score.Round(heur.Bonus, 1), "total", score.Round(heur.Score, 1))

	final := score.Blend(heur.Score, agg.Score, cfg.FinalBlendAlpha)
	trace("[NLI_SUM]", "n", agg.Included, "mean", score.Round(agg.Score, 1))
	trace("[FINAL]", "alpha", cfg.FinalBlendAlpha, "heuristic", score.Round(heur.Score, 1),
		"nli", score.Round(agg.Score, 1), "score", score.Round(final, 1))

	signals = append(signals, agg.Signals(cfg)...)
	signals = append(signals, score.BlendSignal(heur.Score, agg.Score, cfg.FinalBlendAlpha, final))

	return &model.VerifyResult{
		Claim:          claim,
		Score:          score.Round(final, 1),
		ScoreHeuristic: score.Round(heur.Score, 1),
		ScoreNLI:       score.Round(agg.Score, 1),
		UniqueDomains:  heur.UniqueDomains,
		CoverageBucket: heur.CoverageBucket,
		CoverageFactor: heur.CoverageFactor,
		Sources:        score.Rank(cfg, evidence, agg, score.TopSources),
		Notes:          model.DefaultNotes,
		Signals:        signals,
	}, nil
}

// collect fetches the picked hits in rank order and selects chunks from every
// accepted page. Pages with OK=false are dropped here and never seen again.
func (p *Pipeline) collect(ctx context.Context, keywords []string, hits []model.SearchHit) ([]model.Evidence, []chunk.Source, error) {
	evidence := make([]model.Evidence, 0, len(hits))
	sources := make([]chunk.Source, 0, len(hits))

	for _, hit := range hits {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("fetch: %w", err)
		}

		page := p.fetcher.Fetch(ctx, hit.Link)
		if !page.OK {
			reason := ""
			if page.Reason != nil {
				reason = *page.Reason
			}
			p.logger.Debug("page excluded", "url", hit.Link, "reason", reason)
			continue
		}

		chunks := chunk.SelectWithKeywords(page.Text, keywords, p.opts.ChunksPerPage)
		ev := model.EvidenceFromPage(page, chunks)
		for _, c := range chunks {
			if r := chunk.Relevance(c, keywords); r > ev.Relevance {
				ev.Relevance = r
			}
		}

		evidence = append(evidence, ev)
		sources = append(sources, chunk.Source{URL: page.URL, Domain: page.Domain, Chunks: chunks})
	}

	return evidence, sources, nil
}

// tracer logs numeric trace lines at Info when DEBUG_NUMERIC_ONLY is set, else at Debug
func (p *Pipeline) tracer(cfg model.ScoreConfig) func(msg string, args ...any) {
	level := slog.LevelDebug
	if cfg.DebugNumericOnly {
		level = slog.LevelInfo
	}
	return func(msg string, args ...any) {
		p.logger.Log(context.Background(), level, msg, args...)
	}
}
