package score

import (
	"fmt"
	"time"

	"github.com/lihivismel/Fact-Check/internal/model"
)

// SourceBonus is the heuristic contribution of one accepted page
type SourceBonus struct {
	Domain        string  `json:"domain"`
	DomainWeight  float64 `json:"domain_weight"`
	RecencyWeight float64 `json:"recency_weight"`
	Relevance     float64 `json:"relevance"`
	Bonus         float64 `json:"bonus"`
}

// HeuristicResult is the breakdown behind the heuristic score
type HeuristicResult struct {
	Score          float64
	Base           float64
	Bonus          float64
	UniqueDomains  int
	CoverageFactor float64
	CoverageBucket string
	Sources        []SourceBonus
}

// Scorer calculates the source/recency/coverage heuristic and generates signals
type Scorer struct {
	cfg model.ScoreConfig
	now func() time.Time
}

// NewScorer creates a new heuristic scorer. A nil clock uses time.Now.
func NewScorer(cfg model.ScoreConfig, now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	return &Scorer{cfg: cfg, now: now}
}

// Calculate scores the accepted evidence and returns the coverage and heuristic signals
func (s *Scorer) Calculate(evidence []model.Evidence) (HeuristicResult, []model.Signal) {
	domains := make(map[string]bool)
	for _, ev := range evidence {
		domains[NormalizeDomain(ev.Domain)] = true
	}

	factor, bucket := CoverageFactor(s.cfg, len(domains))
	factor = Finite(factor)
	res := HeuristicResult{
		Base:           Finite(s.cfg.BaseScore * factor),
		UniqueDomains:  len(domains),
		CoverageFactor: factor,
		CoverageBucket: bucket,
		Sources:        make([]SourceBonus, 0, len(evidence)),
	}

	now := s.now().UTC()
	for _, ev := range evidence {
		sb := SourceBonus{
			Domain:        ev.Domain,
			DomainWeight:  Finite(DomainWeight(s.cfg, ev.Domain)),
			RecencyWeight: Finite(RecencyWeight(s.cfg, ev.Published(), now)),
			Relevance:     Finite(ev.Relevance),
		}
		sb.Bonus = Finite(s.cfg.BonusDomainScale*(sb.DomainWeight-1.0) +
			s.cfg.BonusRecencyScale*(sb.RecencyWeight-1.0) +
			s.cfg.BonusRelevanceScale*sb.Relevance)
		res.Bonus += sb.Bonus
		res.Sources = append(res.Sources, sb)
	}

	res.Bonus = Finite(res.Bonus)
	res.Score = Clamp(res.Base+res.Bonus, 0, 100)

	return res, []model.Signal{s.coverageSignal(res), s.heuristicSignal(res)}
}

// coverageSignal describes distinct-domain breadth
func (s *Scorer) coverageSignal(res HeuristicResult) model.Signal {
	severity := model.SeverityInfo
	if res.UniqueDomains == 0 {
		severity = model.SeverityCritical
	} else if res.CoverageBucket == "low" || res.CoverageFactor < 1.0 {
		severity = model.SeverityWarning
	}

	formula := "COVERAGE_LOW_FACTOR if d < LOW_THRESHOLD, MID_FACTOR if d <= HIGH_THRESHOLD, else HIGH_FACTOR"
	if s.cfg.CoverageMode == model.CoverageLinear {
		formula = "MIN_FACTOR + min(d / TARGET_DOMAINS, 1) * (MAX_FACTOR - MIN_FACTOR)"
	}

	return model.Signal{
		Type:        model.SignalCoverage,
		Severity:    severity,
		Description: fmt.Sprintf("%d distinct domains, %s coverage (factor %.2f)", res.UniqueDomains, res.CoverageBucket, res.CoverageFactor),
		Data: map[string]any{
			"mode":           s.cfg.CoverageMode,
			"unique_domains": res.UniqueDomains,
			"bucket":         res.CoverageBucket,
			"factor":         res.CoverageFactor,
			"formula":        formula,
		},
	}
}

// heuristicSignal describes base plus per-source bonus
func (s *Scorer) heuristicSignal(res HeuristicResult) model.Signal {
	return model.Signal{
		Type:        model.SignalHeuristic,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("Heuristic %.1f (base %.1f + bonus %.1f)", res.Score, res.Base, res.Bonus),
		Data: map[string]any{
			"base_score": Finite(s.cfg.BaseScore),
			"base":       res.Base,
			"bonus":      res.Bonus,
			"score":      res.Score,
			"sources":    res.Sources,
			"formula":    "clamp(BASE_SCORE*factor + sum(DOMAIN_SCALE*(w-1) + RECENCY_SCALE*(r-1) + RELEVANCE_SCALE*rel), 0, 100)",
		},
	}
}
