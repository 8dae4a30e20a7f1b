package model

// SearchHit is a single ranked result returned by the search collaborator
type SearchHit struct {
	Title   string  `json:"title"`
	Link    string  `json:"link"`
	Snippet string  `json:"snippet"`
	Date    *string `json:"date,omitempty"`   // Provider-reported date, free-form
	Source  *string `json:"source,omitempty"` // Publisher name, falls back to domain
	Domain  string  `json:"domain"`
	Rank    int     `json:"rank"` // 1-based, unique per domain after dedupe
}
