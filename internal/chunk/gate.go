package chunk

// Candidate is one passage that passed the keyword gate and awaits classification
type Candidate struct {
	URL    string
	Domain string
	Text   string
	Hits   int
}

// Gate filters passages by keyword overlap and caps the total sent to NLI
type Gate struct {
	MinMatch int // Minimum distinct keyword hits
	MaxTotal int // Global cap across all sources; negative disables the cap
}

// Eligible reports whether a passage with the given hit count passes the gate
func (g Gate) Eligible(hits int) bool {
	return hits >= g.MinMatch
}

// Source holds the selected passages of one page
type Source struct {
	URL    string
	Domain string
	Chunks []string
}

// Collect gathers eligible passages across sources in source order, then
// chunk order, and truncates to MaxTotal. It returns the kept candidates and
// the number of eligible passages dropped by the cap.
func (g Gate) Collect(sources []Source, keywords []string) ([]Candidate, int) {
	var out []Candidate
	for _, src := range sources {
		for _, text := range src.Chunks {
			hits := Hits(text, keywords)
			if !g.Eligible(hits) {
				continue
			}
			out = append(out, Candidate{
				URL:    src.URL,
				Domain: src.Domain,
				Text:   text,
				Hits:   hits,
			})
		}
	}

	if g.MaxTotal >= 0 && len(out) > g.MaxTotal {
		dropped := len(out) - g.MaxTotal
		return out[:g.MaxTotal], dropped
	}
	return out, 0
}
