package utils

import (
	"net/http"
	"net/url"
	"strings"
)

// Hostname extracts the lowercase host, without port, from an origin or URL.
// Bare hosts such as "example.com" are accepted.
func Hostname(origin string) string {
	if origin == "" {
		return ""
	}
	if !strings.Contains(origin, "://") {
		origin = "https://" + origin
	}
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// WithinDomain reports whether host is domain or one of its subdomains.
func WithinDomain(host, domain string) bool {
	domain = strings.ToLower(strings.TrimPrefix(domain, "."))
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// AllowedOrigin returns the request's Origin when it belongs to domain.
// Referer is not consulted; browsers always send Origin on CORS requests.
func AllowedOrigin(r *http.Request, domain string) (string, bool) {
	origin := r.Header.Get("Origin")
	if origin == "" || !WithinDomain(Hostname(origin), domain) {
		return "", false
	}
	return origin, true
}
