package model

import (
	"encoding/json"
	"fmt"
)

// Coverage policies selectable through COVERAGE_MODE
const (
	CoverageBucketed = "bucketed"
	CoverageLinear   = "linear"
)

// DefaultNLIModel is used when neither the score config nor the app config names one
const DefaultNLIModel = "MoritzLaurer/mDeBERTa-v3-base-mnli-xnli"

// ScoreConfig holds every scoring constant for one pipeline run.
// It is built fresh per run and treated as read-only afterwards.
type ScoreConfig struct {
	BaseScore float64 `json:"BASE_SCORE"`

	CoverageMode          string  `json:"COVERAGE_MODE"`
	CoverageLowThreshold  int     `json:"COVERAGE_LOW_THRESHOLD"`
	CoverageHighThreshold int     `json:"COVERAGE_HIGH_THRESHOLD"`
	CoverageLowFactor     float64 `json:"COVERAGE_LOW_FACTOR"`
	CoverageMidFactor     float64 `json:"COVERAGE_MID_FACTOR"`
	CoverageHighFactor    float64 `json:"COVERAGE_HIGH_FACTOR"`
	CoverageTargetDomains int     `json:"COVERAGE_TARGET_DOMAINS"`
	CoverageMinFactor     float64 `json:"COVERAGE_MIN_FACTOR"`
	CoverageMaxFactor     float64 `json:"COVERAGE_MAX_FACTOR"`

	BonusDomainScale    float64 `json:"BONUS_DOMAIN_SCALE"`
	BonusRecencyScale   float64 `json:"BONUS_RECENCY_SCALE"`
	BonusRelevanceScale float64 `json:"BONUS_RELEVANCE_SCALE"`

	RecencyBuckets []RecencyBucket     `json:"RECENCY_BUCKETS"`
	DomainWeights  map[string]float64 `json:"DOMAIN_WEIGHTS"`
	SuffixDefaults map[string]float64 `json:"SUFFIX_DEFAULTS"`
	BonusDomains   map[string]float64 `json:"BONUS_DOMAINS"`

	NLIModelName           string  `json:"NLI_MODEL_NAME"`
	NLIMinKeywordMatch     int     `json:"NLI_MIN_KEYWORD_MATCH"`
	NLIMaxChunksTotal      int     `json:"NLI_MAX_CHUNKS_TOTAL"`
	NLISupportScale        float64 `json:"NLI_SUPPORT_SCALE"`
	NLIContradictPenalty   float64 `json:"NLI_CONTRADICT_PENALTY"`
	NLINeutralWeight       float64 `json:"INCLUDE_NEUTRAL_AS"`
	NLIMinSourceConf       float64 `json:"NLI_MIN_SOURCE_CONF"`
	NLISourceMinImportance float64 `json:"NLI_SOURCE_MIN_IMPORTANCE"`
	NLIExcerptThreshold    float64 `json:"NLI_EXCERPT_THRESHOLD"`

	FinalBlendAlpha  float64 `json:"FINAL_BLEND_ALPHA"`
	DebugNumericOnly bool    `json:"DEBUG_NUMERIC_ONLY"`
}

// RecencyBucket maps an age ceiling in days to a recency weight.
// It is encoded as a two element array: [max_age_days, weight].
type RecencyBucket struct {
	MaxAgeDays int
	Weight     float64
}

// MarshalJSON encodes the bucket as [max_age_days, weight]
func (b RecencyBucket) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{float64(b.MaxAgeDays), b.Weight})
}

// UnmarshalJSON decodes a [max_age_days, weight] pair
func (b *RecencyBucket) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("recency bucket: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("recency bucket: want 2 values, got %d", len(pair))
	}
	b.MaxAgeDays = int(pair[0])
	b.Weight = pair[1]
	return nil
}

// DefaultScoreConfig returns the compiled-in scoring defaults
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		BaseScore: 60.0,

		CoverageMode:          CoverageBucketed,
		CoverageLowThreshold:  4,
		CoverageHighThreshold: 8,
		CoverageLowFactor:     0.5,
		CoverageMidFactor:     1.0,
		CoverageHighFactor:    1.1,
		CoverageTargetDomains: 10,
		CoverageMinFactor:     0.6,
		CoverageMaxFactor:     1.0,

		BonusDomainScale:    6.0,
		BonusRecencyScale:   5.0,
		BonusRelevanceScale: 0.0,

		RecencyBuckets: []RecencyBucket{
			{MaxAgeDays: 90, Weight: 1.15},
			{MaxAgeDays: 365, Weight: 1.10},
			{MaxAgeDays: 1095, Weight: 1.00},
			{MaxAgeDays: 3650, Weight: 0.95},
		},
		DomainWeights:  map[string]float64{},
		SuffixDefaults: map[string]float64{},
		BonusDomains:   map[string]float64{},

		NLIModelName:           DefaultNLIModel,
		NLIMinKeywordMatch:     2,
		NLIMaxChunksTotal:      30,
		NLISupportScale:        80.0,
		NLIContradictPenalty:   50.0,
		NLINeutralWeight:       0.0,
		NLIMinSourceConf:       0.20,
		NLISourceMinImportance: 0.4,
		NLIExcerptThreshold:    0.65,

		FinalBlendAlpha: 0.75,
	}
}
