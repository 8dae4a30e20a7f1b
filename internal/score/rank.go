package score

import (
	"sort"

	"github.com/lihivismel/Fact-Check/internal/model"
)

// TopSources caps the caller-visible evidence list
const TopSources = 5

// Rank builds the presentation list: included sources only, ordered by
// domain bonus then score component (both descending, ties keep evidence
// order), truncated to limit. It never changes the score.
func Rank(cfg model.ScoreConfig, evidence []model.Evidence, res AggregateResult, limit int) []model.EvidenceItem {
	items := make([]model.EvidenceItem, 0, len(evidence))
	seen := make(map[string]bool, len(evidence))

	for _, ev := range evidence {
		if seen[ev.URL] {
			continue
		}
		seen[ev.URL] = true

		agg, ok := res.Sources[ev.URL]
		if !ok || !agg.Included {
			continue
		}

		item := model.EvidenceItem{
			URL:               ev.URL,
			Domain:            ev.Domain,
			Title:             ev.Title,
			PublishedAt:       ev.PublishedAt,
			Language:          ev.Language,
			Chunks:            ev.Chunks,
			NLIEvaluated:      agg.Evaluated,
			NLIIncluded:       agg.Included,
			NLIMaxEntail:      agg.MaxEntail,
			NLIMaxContra:      agg.MaxContra,
			NLIScoreComponent: Finite(agg.ScoreComponent),
			DomainBonus:       Finite(DomainBonus(cfg, ev.Domain)),
		}
		if agg.MaxEntail >= cfg.NLIExcerptThreshold {
			item.NLIBestEntailChunk = agg.BestEntailChunk
		}
		if agg.MaxContra >= cfg.NLIExcerptThreshold {
			item.NLIBestContraChunk = agg.BestContraChunk
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].DomainBonus != items[j].DomainBonus {
			return items[i].DomainBonus > items[j].DomainBonus
		}
		return items[i].NLIScoreComponent > items[j].NLIScoreComponent
	})

	if limit >= 0 && len(items) > limit {
		items = items[:limit]
	}

	for i := range items {
		items[i].NLIMaxEntail = Round(items[i].NLIMaxEntail, 3)
		items[i].NLIMaxContra = Round(items[i].NLIMaxContra, 3)
		items[i].NLIScoreComponent = Round(items[i].NLIScoreComponent, 1)
	}
	return items
}
