// Package util holds outbound HTTP helpers shared by the search, fetch and NLI clients.
package util

import (
	"net/http"
	"net/url"
	"strings"
)

// NewProxyFunc creates a proxy function based on configuration.
// If no proxy URLs are provided, falls back to environment variables.
// Hosts listed in noProxy (comma separated, suffix match) bypass the proxy.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	bypass := splitNoProxy(noProxy)

	return func(req *http.Request) (*url.URL, error) {
		if bypassed(req.URL.Hostname(), bypass) {
			return nil, nil
		}
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

func splitNoProxy(noProxy string) []string {
	var out []string
	for _, h := range strings.Split(noProxy, ",") {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			out = append(out, strings.TrimPrefix(h, "*"))
		}
	}
	return out
}

func bypassed(host string, bypass []string) bool {
	host = strings.ToLower(host)
	for _, b := range bypass {
		if b == "*" || host == strings.TrimPrefix(b, ".") || strings.HasSuffix(host, "."+strings.TrimPrefix(b, ".")) {
			return true
		}
	}
	return false
}
