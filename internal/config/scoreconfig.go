// Package config loads the scoring configuration that operators tune live.
//
// The file is JSON and is read again on every pipeline run, so edits take
// effect on the next claim without a restart. A missing or malformed file is
// never fatal: the compiled-in defaults are used and the error is reported
// to the caller for logging.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/lihivismel/Fact-Check/internal/model"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPath names the environment variable that overrides the score config location
const EnvPath = "FACTCHECK_CONFIG"

// DefaultPath is used when neither the environment nor the app config names a file
const DefaultPath = "config.json"

// ResolvePath picks the score config location: env override, then fallback, then DefaultPath
func ResolvePath(fallback string) string {
	if p := strings.TrimSpace(os.Getenv(EnvPath)); p != "" {
		return p
	}
	if fallback != "" {
		return fallback
	}
	return DefaultPath
}

// Source yields a fresh ScoreConfig for each pipeline run
type Source interface {
	Load() (model.ScoreConfig, error)
}

// Loader reads the score config from disk on every call
type Loader struct {
	path   string
	logger *slog.Logger
}

// NewLoader creates a loader for the given JSON file
func NewLoader(path string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{path: path, logger: logger}
}

// Path returns the file this loader reads
func (l *Loader) Path() string {
	return l.path
}

// Load reads the file. Keys that fail keep their defaults and the error is returned.
func (l *Loader) Load() (model.ScoreConfig, error) {
	cfg, err := Load(l.path)
	if err != nil {
		l.logger.Warn("score config: falling back to defaults", "path", l.path, "error", err)
	}
	return cfg, err
}

// Static always returns the same configuration
type Static model.ScoreConfig

// Load returns the wrapped configuration
func (s Static) Load() (model.ScoreConfig, error) {
	return model.ScoreConfig(s), nil
}

// Load reads a score config file, layering recognised keys over the defaults.
// Scalar keys may also be overridden with FACTCHECK_<KEY> environment variables.
// Keys holding a value of the wrong type keep their default and are reported
// in the returned error, as do non-finite numbers. A file that cannot be read
// or parsed contributes nothing, but environment overrides still apply.
func Load(path string) (model.ScoreConfig, error) {
	cfg := model.DefaultScoreConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("FACTCHECK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		readErr := fmt.Errorf("read score config %s: %w", path, err)
		return cfg, errors.Join(readErr, apply(v, &cfg))
	}

	return cfg, apply(v, &cfg)
}

// apply copies every set key from v into cfg
func apply(v *viper.Viper, cfg *model.ScoreConfig) error {
	var errs []error

	floats := []struct {
		key string
		dst *float64
	}{
		{"BASE_SCORE", &cfg.BaseScore},
		{"COVERAGE_LOW_FACTOR", &cfg.CoverageLowFactor},
		{"COVERAGE_MID_FACTOR", &cfg.CoverageMidFactor},
		{"COVERAGE_HIGH_FACTOR", &cfg.CoverageHighFactor},
		{"COVERAGE_MIN_FACTOR", &cfg.CoverageMinFactor},
		{"COVERAGE_MAX_FACTOR", &cfg.CoverageMaxFactor},
		{"BONUS_DOMAIN_SCALE", &cfg.BonusDomainScale},
		{"BONUS_RECENCY_SCALE", &cfg.BonusRecencyScale},
		{"BONUS_RELEVANCE_SCALE", &cfg.BonusRelevanceScale},
		{"NLI_SUPPORT_SCALE", &cfg.NLISupportScale},
		{"NLI_CONTRADICT_PENALTY", &cfg.NLIContradictPenalty},
		{"INCLUDE_NEUTRAL_AS", &cfg.NLINeutralWeight},
		{"NLI_MIN_SOURCE_CONF", &cfg.NLIMinSourceConf},
		{"NLI_SOURCE_MIN_IMPORTANCE", &cfg.NLISourceMinImportance},
		{"NLI_EXCERPT_THRESHOLD", &cfg.NLIExcerptThreshold},
		{"FINAL_BLEND_ALPHA", &cfg.FinalBlendAlpha},
	}
	for _, f := range floats {
		if !v.IsSet(f.key) {
			continue
		}
		val, err := cast.ToFloat64E(v.Get(f.key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.key, err))
			continue
		}
		if math.IsNaN(val) || math.IsInf(val, 0) {
			errs = append(errs, fmt.Errorf("%s: %v is not a finite number", f.key, val))
			continue
		}
		*f.dst = val
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"COVERAGE_LOW_THRESHOLD", &cfg.CoverageLowThreshold},
		{"COVERAGE_HIGH_THRESHOLD", &cfg.CoverageHighThreshold},
		{"COVERAGE_TARGET_DOMAINS", &cfg.CoverageTargetDomains},
		{"NLI_MIN_KEYWORD_MATCH", &cfg.NLIMinKeywordMatch},
		{"NLI_MAX_CHUNKS_TOTAL", &cfg.NLIMaxChunksTotal},
	}
	for _, i := range ints {
		if !v.IsSet(i.key) {
			continue
		}
		val, err := cast.ToIntE(v.Get(i.key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", i.key, err))
			continue
		}
		*i.dst = val
	}

	if v.IsSet("NLI_MODEL_NAME") {
		if name := strings.TrimSpace(v.GetString("NLI_MODEL_NAME")); name != "" {
			cfg.NLIModelName = name
		}
	}

	if v.IsSet("DEBUG_NUMERIC_ONLY") {
		val, err := cast.ToBoolE(v.Get("DEBUG_NUMERIC_ONLY"))
		if err != nil {
			errs = append(errs, fmt.Errorf("DEBUG_NUMERIC_ONLY: %w", err))
		} else {
			cfg.DebugNumericOnly = val
		}
	}

	if v.IsSet("COVERAGE_MODE") {
		mode := strings.ToLower(strings.TrimSpace(v.GetString("COVERAGE_MODE")))
		switch mode {
		case model.CoverageBucketed, model.CoverageLinear:
			cfg.CoverageMode = mode
		default:
			errs = append(errs, fmt.Errorf("COVERAGE_MODE: unknown policy %q (supported: bucketed, linear)", mode))
		}
	}

	weightMaps := []struct {
		key string
		dst *map[string]float64
	}{
		{"DOMAIN_WEIGHTS", &cfg.DomainWeights},
		{"SUFFIX_DEFAULTS", &cfg.SuffixDefaults},
		{"BONUS_DOMAINS", &cfg.BonusDomains},
	}
	for _, m := range weightMaps {
		if !v.IsSet(m.key) {
			continue
		}
		val, err := toWeightMap(v.Get(m.key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.key, err))
			continue
		}
		*m.dst = val
	}

	if v.IsSet("RECENCY_BUCKETS") {
		buckets, err := toBuckets(v.Get("RECENCY_BUCKETS"))
		if err != nil {
			errs = append(errs, fmt.Errorf("RECENCY_BUCKETS: %w", err))
		} else {
			cfg.RecencyBuckets = buckets
		}
	}

	return errors.Join(errs...)
}

// toWeightMap coerces a JSON object of domain -> weight
func toWeightMap(raw any) (map[string]float64, error) {
	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(m))
	for k, val := range m {
		f, err := cast.ToFloat64E(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%s: %v is not a finite number", k, f)
		}
		out[strings.ToLower(strings.TrimSpace(k))] = f
	}
	return out, nil
}

// toBuckets coerces [[max_age_days, weight], ...] and orders it by age ascending
func toBuckets(raw any) ([]model.RecencyBucket, error) {
	items, err := cast.ToSliceE(raw)
	if err != nil {
		return nil, err
	}
	buckets := make([]model.RecencyBucket, 0, len(items))
	for i, item := range items {
		pair, err := cast.ToSliceE(item)
		if err != nil || len(pair) != 2 {
			return nil, fmt.Errorf("bucket %d: want [max_age_days, weight]", i)
		}
		age, err := cast.ToIntE(pair[0])
		if err != nil {
			return nil, fmt.Errorf("bucket %d age: %w", i, err)
		}
		weight, err := cast.ToFloat64E(pair[1])
		if err != nil {
			return nil, fmt.Errorf("bucket %d weight: %w", i, err)
		}
		if math.IsNaN(weight) || math.IsInf(weight, 0) {
			return nil, fmt.Errorf("bucket %d weight: %v is not a finite number", i, weight)
		}
		buckets = append(buckets, model.RecencyBucket{MaxAgeDays: age, Weight: weight})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].MaxAgeDays < buckets[j].MaxAgeDays
	})
	return buckets, nil
}
