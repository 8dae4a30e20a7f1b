package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const testUA = "Mozilla/5.0 (compatible; FactCheck/1.0; +https://example.org)"

func TestRobotsChecker_DisallowAndDelay(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		hits.Add(1)
		_, _ = w.Write([]byte("User-agent: FactCheck\nDisallow: /private\nCrawl-delay: 2\n\nUser-agent: *\nDisallow:\n"))
	}))
	defer server.Close()

	checker := NewRobotsChecker(testUA, 5*time.Second, nil)

	allowed, delay, err := checker.CanFetch(context.Background(), server.URL+"/private/page")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if allowed {
		t.Error("Expected /private to be disallowed")
	}
	if delay != 2*time.Second {
		t.Errorf("Expected crawl delay 2s, got %v", delay)
	}

	if !checker.IsAllowed(context.Background(), server.URL+"/public") {
		t.Error("Expected /public to be allowed")
	}

	if hits.Load() != 1 {
		t.Errorf("Expected robots.txt to be fetched once and cached, got %d fetches", hits.Load())
	}

	checker.Clear()
	checker.IsAllowed(context.Background(), server.URL+"/public")
	if hits.Load() != 2 {
		t.Errorf("Expected refetch after Clear, got %d fetches", hits.Load())
	}
}

func TestRobotsChecker_MissingFileAllows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewRobotsChecker(testUA, 5*time.Second, nil)
	if !checker.IsAllowed(context.Background(), server.URL+"/anything") {
		t.Error("Expected missing robots.txt to allow everything")
	}
}

func TestRobotsChecker_UnreachableAllows(t *testing.T) {
	checker := NewRobotsChecker(testUA, time.Second, nil)
	if !checker.IsAllowed(context.Background(), "http://127.0.0.1:1/page") {
		t.Error("Expected unreachable robots.txt to allow the fetch")
	}
}

func TestRobotsChecker_BadURL(t *testing.T) {
	checker := NewRobotsChecker(testUA, time.Second, nil)
	if _, _, err := checker.CanFetch(context.Background(), "::not a url"); err == nil {
		t.Error("Expected parse error")
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		testUA:               "FactCheck",
		"FactCheck/2.0":      "FactCheck",
		"curl/8.0 extra":     "curl",
		"":                   "",
		"Googlebot/2.1 (+x)": "Googlebot",
	}
	for in, want := range tests {
		if got := NormalizeUserAgent(in); got != want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", in, got, want)
		}
	}
}
