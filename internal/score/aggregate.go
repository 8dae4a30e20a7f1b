package score

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/lihivismel/Fact-Check/internal/chunk"
	"github.com/lihivismel/Fact-Check/internal/model"
	"github.com/lihivismel/Fact-Check/internal/nli"
)

// AggregateResult holds per-source NLI evidence and the resulting NLI score
type AggregateResult struct {
	Sources   map[string]*model.SourceAggregate // Keyed by URL
	Order     []string                          // URLs in evidence order
	Score     float64                           // Mean of included components, clamped to [0,100]
	Included  int
	Evaluated int // Chunks classified successfully
	Failed    int // Chunks whose classification failed and were skipped
}

// Aggregator runs NLI over gated chunks and keeps the strongest evidence per source
type Aggregator struct {
	cfg        model.ScoreConfig
	classifier nli.Classifier
	logger     *slog.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(cfg model.ScoreConfig, classifier nli.Classifier, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{cfg: cfg, classifier: classifier, logger: logger}
}

// Aggregate classifies every candidate against the claim.
// Every accepted page gets an aggregate, evaluated or not. A failing
// classification is skipped; an unavailable model or a cancelled context
// aborts the whole run.
func (a *Aggregator) Aggregate(ctx context.Context, claim string, evidence []model.Evidence, candidates []chunk.Candidate) (AggregateResult, error) {
	res := AggregateResult{Sources: make(map[string]*model.SourceAggregate, len(evidence))}
	for _, ev := range evidence {
		if _, ok := res.Sources[ev.URL]; ok {
			continue
		}
		res.Sources[ev.URL] = &model.SourceAggregate{Domain: ev.Domain, URL: ev.URL}
		res.Order = append(res.Order, ev.URL)
	}

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("nli aggregate: %w", err)
		}

		agg, ok := res.Sources[c.URL]
		if !ok {
			continue
		}

		scores, err := a.classifier.Classify(ctx, c.Text, claim)
		if err != nil {
			if errors.Is(err, nli.ErrUnavailable) || ctx.Err() != nil {
				return res, fmt.Errorf("nli aggregate: %w", err)
			}
			agg.Failed++
			res.Failed++
			a.logger.Debug("nli classify failed, skipping chunk", "url", c.URL, "error", err)
			continue
		}

		res.Evaluated++
		observe(agg, c.Text, scores)
		if a.cfg.DebugNumericOnly {
			a.logger.Info("[NLI]", "domain", c.Domain, "e", Round(scores.Entailment, 3), "c", Round(scores.Contradiction, 3), "n", Round(scores.Neutral, 3))
		}
	}

	var sum float64
	for _, url := range res.Order {
		agg := res.Sources[url]
		if !agg.Evaluated {
			continue
		}
		if a.include(agg) {
			res.Included++
			sum += agg.ScoreComponent
		}
		if a.cfg.DebugNumericOnly {
			a.logger.Info("[SRC]", "domain", agg.Domain, "max_e", Round(agg.MaxEntail, 3), "max_c", Round(agg.MaxContra, 3), "included", agg.Included, "comp", Round(agg.ScoreComponent, 1))
		}
	}

	if res.Included > 0 {
		res.Score = Clamp(sum/float64(res.Included), 0, 100)
	}
	return res, nil
}

// observe folds one classification into the running maxima.
// Best chunks are only replaced on a strictly greater score.
func observe(agg *model.SourceAggregate, text string, s model.EntailmentScores) {
	e := Clamp(s.Entailment, 0, 1)
	c := Clamp(s.Contradiction, 0, 1)
	n := Clamp(s.Neutral, 0, 1)

	if e > agg.MaxEntail {
		agg.MaxEntail = e
		agg.BestEntailChunk = text
	}
	if c > agg.MaxContra {
		agg.MaxContra = c
		agg.BestContraChunk = text
	}
	agg.MaxNeutral = math.Max(agg.MaxNeutral, n)

	agg.Evaluated = true
	agg.Chunks++
}

// include applies the confidence and importance gates and sets the score component
func (a *Aggregator) include(agg *model.SourceAggregate) bool {
	e, c := agg.MaxEntail, agg.MaxContra

	if math.Max(e, c) < a.cfg.NLIMinSourceConf {
		return false
	}
	if e+c < a.cfg.NLISourceMinImportance {
		return false
	}

	comp := a.cfg.NLISupportScale*e - a.cfg.NLIContradictPenalty*c
	if a.cfg.NLINeutralWeight != 0 {
		comp += a.cfg.NLINeutralWeight * agg.MaxNeutral
	}

	agg.Included = true
	agg.ScoreComponent = Finite(comp)
	return true
}

// Signals describes the NLI stage and any skipped chunks
func (r AggregateResult) Signals(cfg model.ScoreConfig) []model.Signal {
	evaluatedSources := 0
	for _, agg := range r.Sources {
		if agg.Evaluated {
			evaluatedSources++
		}
	}

	severity := model.SeverityInfo
	if r.Included == 0 {
		severity = model.SeverityWarning
	}

	signals := []model.Signal{{
		Type:        model.SignalNLI,
		Severity:    severity,
		Description: fmt.Sprintf("NLI %.1f from %d/%d evaluated sources", r.Score, r.Included, evaluatedSources),
		Data: map[string]any{
			"chunks_evaluated":  r.Evaluated,
			"sources_evaluated": evaluatedSources,
			"sources_included":  r.Included,
			"score":             r.Score,
			"min_source_conf":   Finite(cfg.NLIMinSourceConf),
			"min_importance":    Finite(cfg.NLISourceMinImportance),
			"formula":           "mean(SUPPORT_SCALE*max_e - CONTRADICT_PENALTY*max_c) over sources with max(e,c) >= MIN_SOURCE_CONF and e+c >= MIN_IMPORTANCE",
		},
	}}

	if r.Failed > 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalNLIFailures,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("%d chunks skipped after classifier errors", r.Failed),
			Data:        map[string]any{"failed": r.Failed},
		})
	}
	return signals
}
