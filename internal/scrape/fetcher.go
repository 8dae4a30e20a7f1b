// Package scrape fetches search hits and turns them into page records.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/lihivismel/Fact-Check/internal/model"
	"github.com/lihivismel/Fact-Check/internal/search"
	"github.com/lihivismel/Fact-Check/internal/util"
	"github.com/lihivismel/Fact-Check/internal/worker"
)

// MinTextChars is the shortest readable text accepted as evidence
const MinTextChars = 400

// maxRedirects bounds redirect chains per fetch
const maxRedirects = 5

// Fetcher downloads pages and extracts their readable content
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher. A nil limiter disables rate limiting and
// robots.txt is only consulted when cfg.RespectRobots is set.
func NewFetcher(cfg model.HTTPConfig, limiter *worker.Limiter, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = model.DefaultUserAgent
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 4_000_000
	}

	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: ua,
		maxBytes:  maxBytes,
		limiter:   limiter,
		logger:    logger,
	}
	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(ua, timeout, nil)
	}
	return f
}

// Fetch retrieves rawURL and extracts a PageRecord. Failures are reported
// on the record (OK=false with a reason code), never as an error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) model.PageRecord {
	start := time.Now()
	domain := search.DomainOf(rawURL)

	fail := func(reason string, err error) model.PageRecord {
		f.logger.Debug("page skipped", "url", rawURL, "reason", reason, "error", err)
		return model.Failed(rawURL, domain, reason)
	}

	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return fail(model.ReasonNetworkError, err)
		}
		if !allowed {
			return fail(model.ReasonRobotsDisallowed, nil)
		}
		if f.limiter != nil {
			f.limiter.ApplyCrawlDelay(rawURL, delay)
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return fail(model.ReasonNetworkError, err)
		}
	}

	body, contentType, err := f.download(ctx, rawURL)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return fail(model.ReasonBadStatus, se)
		}
		return fail(model.ReasonNetworkError, err)
	}

	reader, err := charset.NewReader(strings.NewReader(body), contentType)
	if err != nil {
		return fail(model.ReasonNetworkError, fmt.Errorf("decode charset: %w", err))
	}
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return fail(model.ReasonNetworkError, fmt.Errorf("parse HTML: %w", err))
	}

	page := Extract(doc, MinTextChars)

	record := model.PageRecord{
		URL:    rawURL,
		Domain: domain,
		Title:  page.Title,
	}
	if page.PublishedAt != "" {
		record.PublishedAt = &page.PublishedAt
	}

	if utf8.RuneCountInString(page.Text) < MinTextChars {
		reason := model.ReasonTooShort
		record.Reason = &reason
		f.logger.Debug("page skipped", "url", rawURL, "reason", reason, "chars", utf8.RuneCountInString(page.Text))
		return record
	}

	record.Text = page.Text
	record.OK = true
	if lang := DetectLanguage(page.Text); lang != "" {
		record.Language = &lang
	}

	elapsed := math.Round(time.Since(start).Seconds()*100) / 100
	record.ElapsedSec = &elapsed

	f.logger.Debug("page fetched", "url", rawURL, "domain", domain, "chars", utf8.RuneCountInString(page.Text), "elapsed_sec", elapsed)
	return record
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.code, http.StatusText(e.code))
}

// download performs the GET and returns the size-limited body
func (f *Fetcher) download(ctx context.Context, rawURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "he,en-US;q=0.9,en;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", "", fmt.Errorf("read body: %w", err)
	}

	return string(body), resp.Header.Get("Content-Type"), nil
}

