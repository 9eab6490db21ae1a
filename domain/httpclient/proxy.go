// Package httpclient builds HTTP clients that honour the usual proxy
// environment variables.
package httpclient

import (
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"
)

// ProxyEnvironmentVariables lists proxy variables in order of preference,
// following curl and wget conventions.
var ProxyEnvironmentVariables = []string{
	"HTTPS_PROXY",
	"https_proxy",
	"HTTP_PROXY",
	"http_proxy",
}

// New creates an HTTP client with optional proxy support. Loopback hosts are
// always reached directly since inpainting servers usually run locally.
// A zero timeout means no client-side limit.
func New(timeout time.Duration, logger *slog.Logger) *http.Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL := getProxyURL(); proxyURL != "" {
		if parsed, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = bypassLoopback(http.ProxyURL(parsed))
			logger.Debug("HTTP client configured with proxy", "proxy_url", redactProxyCredentials(proxyURL))
		} else {
			logger.Warn("Failed to parse proxy URL, using direct connection", "proxy_url", redactProxyCredentials(proxyURL), "error", err)
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

func bypassLoopback(next func(*http.Request) (*url.URL, error)) func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		if isLoopback(req.URL.Hostname()) {
			return nil, nil
		}
		return next(req)
	}
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// getProxyURL returns the first proxy URL from the environment, or "".
func getProxyURL() string {
	for _, envVar := range ProxyEnvironmentVariables {
		if proxyURL := os.Getenv(envVar); proxyURL != "" {
			// skip unexpanded placeholders some tools leave behind
			if proxyURL != "$HTTPS_PROXY" && proxyURL != "$HTTP_PROXY" {
				return proxyURL
			}
		}
	}
	return ""
}

// redactProxyCredentials removes credentials from a proxy URL for logging.
func redactProxyCredentials(proxyURL string) string {
	if parsed, err := url.Parse(proxyURL); err == nil {
		if parsed.User != nil {
			parsed.User = url.UserPassword("***", "***")
		}
		return parsed.String()
	}
	return "[invalid-url]"
}

// IsProxyConfigured reports whether any proxy environment variable is set.
func IsProxyConfigured() bool {
	return getProxyURL() != ""
}
