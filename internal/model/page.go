package model

// Fetch failure reasons reported on PageRecord.Reason
const (
	ReasonNetworkError     = "network_error"
	ReasonBadStatus        = "bad_status"
	ReasonTooShort         = "too_short"
	ReasonRobotsDisallowed = "robots_disallowed"
)

// PageRecord is the fetched and extracted representation of one search hit.
// A record with OK=false must never contribute to evidence or scoring.
type PageRecord struct {
	URL         string   `json:"url"`
	Domain      string   `json:"domain"`
	Title       string   `json:"title"`
	PublishedAt *string  `json:"published_at"`
	Language    *string  `json:"language"`
	Text        string   `json:"text"`
	OK          bool     `json:"ok"`
	Reason      *string  `json:"reason"`
	ElapsedSec  *float64 `json:"elapsed_sec,omitempty"`
}

// Failed builds a record for a page that could not be used
func Failed(url, domain, reason string) PageRecord {
	return PageRecord{
		URL:    url,
		Domain: domain,
		OK:     false,
		Reason: &reason,
	}
}

// Published returns the raw publish date or "" when unknown
func (p PageRecord) Published() string {
	if p.PublishedAt == nil {
		return ""
	}
	return *p.PublishedAt
}
