// Package search queries a web search provider for candidate evidence pages.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/lihivismel/Fact-Check/internal/model"
	"github.com/lihivismel/Fact-Check/internal/util"
)

// ErrUpstream wraps every failure to obtain results from the provider
var ErrUpstream = errors.New("search upstream error")

// Searcher returns up to k ranked hits, at most one per domain
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]model.SearchHit, error)
}

// NewSearcher creates a searcher for the configured provider
func NewSearcher(cfg model.SearchConfig, httpCfg model.HTTPConfig, logger *slog.Logger) (Searcher, error) {
	switch strings.ToLower(cfg.Provider) {
	case "serper", "":
		return NewSerperClient(cfg, httpCfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown search provider: %s (supported: serper)", cfg.Provider)
	}
}

// SerperClient queries the Serper Google search API
type SerperClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Serper API structures
type serperRequest struct {
	Q string `json:"q"`
}

type serperOrganic struct {
	Title    string  `json:"title"`
	Link     string  `json:"link"`
	Snippet  string  `json:"snippet"`
	Date     *string `json:"date,omitempty"`
	Source   *string `json:"source,omitempty"`
	Position int     `json:"position"`
}

type serperResponse struct {
	Organic []serperOrganic `json:"organic"`
}

// NewSerperClient creates a new Serper client
func NewSerperClient(cfg model.SearchConfig, httpCfg model.HTTPConfig, logger *slog.Logger) *SerperClient {
	if logger == nil {
		logger = slog.Default()
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://google.serper.dev/search"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &SerperClient{
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
		},
		logger: logger,
	}
}

// Search posts the query and returns deduplicated hits ordered by rank.
// Up to 2k organic results are read so deduplication can still fill k.
func (c *SerperClient) Search(ctx context.Context, query string, k int) ([]model.SearchHit, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: missing SERPER_API_KEY", ErrUpstream)
	}
	if k <= 0 {
		return []model.SearchHit{}, nil
	}

	body, err := json.Marshal(serperRequest{Q: query})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: network error: %v", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: serper error %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed serperResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}

	hits := Dedupe(toHits(parsed.Organic, 2*k), k)
	c.logger.Debug("search done", "query", query, "organic", len(parsed.Organic), "hits", len(hits), "elapsed", time.Since(start))
	return hits, nil
}

// toHits converts the first limit organic results into 1-ranked hits
func toHits(organic []serperOrganic, limit int) []model.SearchHit {
	if len(organic) > limit {
		organic = organic[:limit]
	}

	hits := make([]model.SearchHit, 0, len(organic))
	for i, item := range organic {
		domain := DomainOf(item.Link)
		source := item.Source
		if source == nil {
			d := domain
			source = &d
		}
		hits = append(hits, model.SearchHit{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
			Date:    item.Date,
			Source:  source,
			Domain:  domain,
			Rank:    i + 1,
		})
	}
	return hits
}

// Dedupe keeps the best-ranked hit per non-empty domain, ordered by rank, truncated to k
func Dedupe(hits []model.SearchHit, k int) []model.SearchHit {
	seen := make(map[string]bool, len(hits))
	out := make([]model.SearchHit, 0, len(hits))

	sorted := make([]model.SearchHit, len(hits))
	copy(sorted, hits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })

	for _, h := range sorted {
		if h.Domain == "" || seen[h.Domain] {
			continue
		}
		seen[h.Domain] = true
		out = append(out, h)
	}

	if len(out) > k {
		out = out[:k]
	}
	return out
}

// DomainOf returns the lower-cased host[:port] of a link, or "" when unparseable
func DomainOf(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
