package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lihivismel/Fact-Check/internal/cache"
	"github.com/temoto/robotstxt"
)

// RobotsTTL is how long a host's robots.txt stays cached
const RobotsTTL = time.Hour

// maxRobotsBytes caps the robots.txt body read
const maxRobotsBytes = 512 << 10

// RobotsChecker checks robots.txt compliance.
// Parsed files are cached per host and shared across pipeline runs.
type RobotsChecker struct {
	cache      cache.Cache[*robotstxt.RobotsData]
	httpClient *http.Client
	userAgent  string
}

// NewRobotsChecker creates a new robots.txt checker. A nil store uses an in-memory TTL cache.
func NewRobotsChecker(userAgent string, timeout time.Duration, store cache.Cache[*robotstxt.RobotsData]) *RobotsChecker {
	if store == nil {
		store = cache.NewTTLCache[*robotstxt.RobotsData](RobotsTTL, 10*time.Minute)
	}
	return &RobotsChecker{
		cache: store,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// CanFetch checks if the URL can be fetched according to robots.txt.
// Returns (allowed, crawlDelay, error). An unreachable robots.txt allows the fetch.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Host == "" {
		return false, 0, fmt.Errorf("parse URL: missing host in %q", rawURL)
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", parsed.Scheme, parsed.Host)

	// Get or fetch robots.txt data
	data, err := r.getRobotsData(ctx, strings.ToLower(parsed.Host), robotsURL)
	if err != nil {
		// If we can't fetch robots.txt, allow by default
		return true, 0, nil
	}

	// Check if path is allowed
	agent := NormalizeUserAgent(r.userAgent)
	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	allowed := data.TestAgent(path, agent)

	// Get crawl delay
	crawlDelay := time.Duration(0)
	if group := data.FindGroup(agent); group != nil {
		crawlDelay = group.CrawlDelay
	}

	return allowed, crawlDelay, nil
}

// getRobotsData fetches and caches robots.txt data
func (r *RobotsChecker) getRobotsData(ctx context.Context, host string, robotsURL string) (*robotstxt.RobotsData, error) {
	// Check cache first
	key := cache.Key("robots", host)
	if data, ok := r.cache.Get(key); ok {
		return data, nil
	}

	// Fetch robots.txt
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	// Parse robots.txt; 4xx allows everything, 5xx disallows everything
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	// Cache the data
	r.cache.Set(key, data, 0)
	return data, nil
}

// Clear clears the robots.txt cache
func (r *RobotsChecker) Clear() {
	r.cache.Clear()
}

// IsAllowed is a convenience method that returns only the allowed status
func (r *RobotsChecker) IsAllowed(ctx context.Context, rawURL string) bool {
	allowed, _, _ := r.CanFetch(ctx, rawURL)
	return allowed
}

// NormalizeUserAgent extracts the product token used for robots.txt group matching.
// "Mozilla/5.0 (compatible; FactCheck/1.0; ...)" yields "FactCheck".
func NormalizeUserAgent(ua string) string {
	if i := strings.Index(ua, "compatible;"); i >= 0 {
		rest := strings.TrimSpace(ua[i+len("compatible;"):])
		if fields := strings.FieldsFunc(rest, func(r rune) bool { return r == ';' || r == ' ' || r == ')' }); len(fields) > 0 {
			return strings.Split(fields[0], "/")[0]
		}
	}

	parts := strings.Fields(ua)
	if len(parts) > 0 {
		return strings.Split(parts[0], "/")[0]
	}
	return ua
}
