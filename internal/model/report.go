package model

// VerifyResult is the complete outcome of one claim verification run
type VerifyResult struct {
	Claim          string         `json:"claim"`
	Score          float64        `json:"score"`           // Blended final score (0-100)
	ScoreHeuristic float64        `json:"score_heuristic"` // Source/recency/coverage heuristic (0-100)
	ScoreNLI       float64        `json:"score_nli"`       // Mean of included NLI components (0-100)
	UniqueDomains  int            `json:"unique_domains"`
	CoverageBucket string         `json:"coverage_bucket"`
	CoverageFactor float64        `json:"coverage_factor"`
	Sources        []EvidenceItem `json:"sources"` // Ranked, truncated presentation list
	Notes          string         `json:"notes,omitempty"`
	Signals        []Signal       `json:"signals,omitempty"` // Transparent per-stage breakdown
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType     `json:"type"`
	Severity    SignalSeverity `json:"severity"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data,omitempty"` // Formula and inputs behind the number
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalCoverage    SignalType = "coverage"     // Distinct-domain breadth
	SignalHeuristic   SignalType = "heuristic"    // Base plus per-source bonus
	SignalNLI         SignalType = "nli"          // Gated entailment evidence
	SignalNLIFailures SignalType = "nli_failures" // Chunks skipped after classifier errors
	SignalBlend       SignalType = "blend"        // Final heuristic/NLI mix
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// DefaultNotes explains why fewer sources are shown than were scored
const DefaultNotes = "Only top sources shown (ranked by domain authority + evidence strength). " +
	"Full set used internally for scoring."
