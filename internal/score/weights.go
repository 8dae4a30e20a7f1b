package score

import (
	"math"
	"strings"
	"time"

	"github.com/lihivismel/Fact-Check/internal/model"
)

// NormalizeDomain lower-cases a host and strips any port
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	if idx := strings.LastIndex(d, ":"); idx > 0 && !strings.Contains(d[idx:], "]") {
		d = d[:idx]
	}
	return strings.TrimSuffix(d, ".")
}

// DomainWeight returns the authority weight of a domain.
// Exact DOMAIN_WEIGHTS entries win, then the longest matching SUFFIX_DEFAULTS
// entry, then 1.0.
func DomainWeight(cfg model.ScoreConfig, domain string) float64 {
	d := NormalizeDomain(domain)
	if d == "" {
		return 1.0
	}

	if w, ok := cfg.DomainWeights[d]; ok {
		return w
	}

	best := ""
	weight := 1.0
	for suffix, w := range cfg.SuffixDefaults {
		if strings.HasSuffix(d, suffix) && len(suffix) > len(best) {
			best = suffix
			weight = w
		}
	}
	return weight
}

// DomainBonus is the ranking bonus of a domain from BONUS_DOMAINS, 1.0 when
// the domain is not listed. It never feeds the score.
func DomainBonus(cfg model.ScoreConfig, domain string) float64 {
	if b, ok := cfg.BonusDomains[NormalizeDomain(domain)]; ok {
		return b
	}
	return 1.0
}

// dateLayouts are tried in order by ParseDate
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
}

// ParseDate parses the publish date formats found in page metadata
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// AgeDays returns whole days between published and now, negative for future dates
func AgeDays(published, now time.Time) int {
	return int(math.Floor(now.Sub(published).Hours() / 24))
}

// RecencyWeight maps a publish date to a recency weight.
// Buckets are scanned in ascending age order and the first bucket whose
// ceiling is not exceeded wins; older pages take the last bucket's weight.
// A missing or unparseable date is neutral (1.0).
func RecencyWeight(cfg model.ScoreConfig, published string, now time.Time) float64 {
	t, ok := ParseDate(published)
	if !ok || len(cfg.RecencyBuckets) == 0 {
		return 1.0
	}

	days := AgeDays(t, now)
	for _, b := range cfg.RecencyBuckets {
		if days <= b.MaxAgeDays {
			return b.Weight
		}
	}
	return cfg.RecencyBuckets[len(cfg.RecencyBuckets)-1].Weight
}

// CoverageFactor maps the number of distinct domains to a multiplier and bucket label
func CoverageFactor(cfg model.ScoreConfig, uniqueDomains int) (float64, string) {
	if cfg.CoverageMode == model.CoverageLinear {
		ratio := 0.0
		if cfg.CoverageTargetDomains > 0 {
			ratio = math.Min(float64(uniqueDomains)/float64(cfg.CoverageTargetDomains), 1.0)
		}
		return cfg.CoverageMinFactor + ratio*(cfg.CoverageMaxFactor-cfg.CoverageMinFactor), "linear"
	}

	switch {
	case uniqueDomains < cfg.CoverageLowThreshold:
		return cfg.CoverageLowFactor, "low"
	case uniqueDomains <= cfg.CoverageHighThreshold:
		return cfg.CoverageMidFactor, "mid"
	default:
		return cfg.CoverageHighFactor, "high"
	}
}

// Clamp bounds v to [lo, hi]; NaN maps to lo
func Clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return lo
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

// Finite returns v, or 0 when v is NaN or infinite. Values that reach a
// JSON response pass through it since encoding/json rejects non-finite numbers.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Round rounds to the given number of decimal places
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
