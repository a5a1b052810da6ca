package utils

import (
	"fmt"
	"net/http"
)

// BaseURL returns scheme://host for the request as the client saw it,
// honoring proxy forwarding headers.
func BaseURL(r *http.Request) string {
	// Default to the original scheme
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	host := r.Host

	// Trust X-Forwarded-Proto if set (e.g., behind Vercel or Nginx)
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// Use X-Forwarded-Host if available
	if fwdHost := r.Header.Get("X-Forwarded-Host"); fwdHost != "" {
		host = fwdHost
		if r.Header.Get("X-Forwarded-Proto") == "" {
			scheme = "https"
		}
	}

	return fmt.Sprintf("%s://%s", scheme, host)
}
