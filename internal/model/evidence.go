package model

// Evidence is an accepted page (OK=true) together with its claim-relevant chunks
type Evidence struct {
	URL         string   `json:"url"`
	Domain      string   `json:"domain"`
	Title       string   `json:"title"`
	PublishedAt *string  `json:"published_at,omitempty"`
	Language    *string  `json:"language,omitempty"`
	Chunks      []string `json:"chunks"`
	Relevance   float64  `json:"relevance"` // Best keyword-hit fraction among Chunks (0-1)
}

// EvidenceFromPage copies the identifying fields of an accepted page
func EvidenceFromPage(p PageRecord, chunks []string) Evidence {
	return Evidence{
		URL:         p.URL,
		Domain:      p.Domain,
		Title:       p.Title,
		PublishedAt: p.PublishedAt,
		Language:    p.Language,
		Chunks:      chunks,
	}
}

// Published returns the raw publish date or "" when unknown
func (e Evidence) Published() string {
	if e.PublishedAt == nil {
		return ""
	}
	return *e.PublishedAt
}

// EntailmentScores are the three NLI class probabilities for one premise/hypothesis pair
type EntailmentScores struct {
	Entailment    float64 `json:"entailment"`
	Contradiction float64 `json:"contradiction"`
	Neutral       float64 `json:"neutral"`
}

// SourceAggregate holds the strongest NLI evidence seen for one source URL.
// MaxEntail and MaxContra are running maxima across evaluated chunks, never averages.
type SourceAggregate struct {
	Domain          string  `json:"domain"`
	URL             string  `json:"url"`
	MaxEntail       float64 `json:"max_entail"`
	MaxContra       float64 `json:"max_contra"`
	MaxNeutral      float64 `json:"max_neutral"`
	BestEntailChunk string  `json:"best_entail_chunk"`
	BestContraChunk string  `json:"best_contra_chunk"`
	Evaluated       bool    `json:"evaluated"`       // At least one chunk was classified
	Included        bool    `json:"included"`        // Passed both inclusion gates
	ScoreComponent  float64 `json:"score_component"` // Signed contribution, only set when Included
	Chunks          int     `json:"chunks"`          // Chunks classified successfully
	Failed          int     `json:"failed"`          // Chunks whose classification failed
}

// EvidenceItem is the caller-visible presentation of one included source
type EvidenceItem struct {
	URL                string   `json:"url"`
	Domain             string   `json:"domain"`
	Title              string   `json:"title"`
	PublishedAt        *string  `json:"published_at"`
	Language           *string  `json:"language"`
	Chunks             []string `json:"chunks"`
	NLIEvaluated       bool     `json:"nli_evaluated"`
	NLIIncluded        bool     `json:"nli_included"`
	NLIMaxEntail       float64  `json:"nli_max_entail"`
	NLIMaxContra       float64  `json:"nli_max_contra"`
	NLIBestEntailChunk string   `json:"nli_best_ent_chunk"`    // Redacted below the excerpt threshold
	NLIBestContraChunk string   `json:"nli_best_contra_chunk"` // Redacted below the excerpt threshold
	NLIScoreComponent  float64  `json:"nli_score_component"`
	DomainBonus        float64  `json:"domain_bonus"`
}
