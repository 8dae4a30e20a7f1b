package worker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/lihivismel/Fact-Check/internal/model"
)

// Limiter implements per-host rate limiting for page fetches
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter. A non-positive rate disables limiting.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait waits for rate limit clearance for the given URL
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	host, err := HostOf(rawURL)
	if err != nil {
		return err
	}

	return l.getLimiter(host).Wait(ctx)
}

// Allow checks if a request is allowed without waiting
func (l *Limiter) Allow(rawURL string) bool {
	host, err := HostOf(rawURL)
	if err != nil {
		return false
	}

	return l.getLimiter(host).Allow()
}

func (l *Limiter) getLimiter(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[host]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[host]; exists {
		return limiter
	}

	// Create new limiter for this host
	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[host] = limiter

	return limiter
}

// SetDomainRate sets a custom rate limit for a specific host
func (l *Limiter) SetDomainRate(host string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[normalizeHost(host)] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// ApplyCrawlDelay slows a host down to one request per delay when that is
// stricter than its current rate. Used with robots.txt Crawl-delay.
func (l *Limiter) ApplyCrawlDelay(rawURL string, delay time.Duration) {
	if delay <= 0 {
		return
	}
	host, err := HostOf(rawURL)
	if err != nil {
		return
	}

	limiter := l.getLimiter(host)
	if every := rate.Every(delay); every < limiter.Limit() {
		limiter.SetLimit(every)
		limiter.SetBurst(1)
	}
}

// NewLimiterFromConfig builds a limiter with the default rate and any per-host overrides
func NewLimiterFromConfig(cfg model.RateLimitConfig) *Limiter {
	l := NewLimiter(cfg.RequestsPerSecond, cfg.BurstSize)
	for host, rps := range cfg.Domains {
		l.SetDomainRate(host, rps, 1)
	}
	return l
}

// HostOf returns the normalised host of a URL used as the limiter key
func HostOf(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("parse URL: missing host in %q", rawURL)
	}
	return normalizeHost(parsed.Hostname()), nil
}

func normalizeHost(host string) string {
	return strings.TrimSuffix(strings.ToLower(host), ".")
}
