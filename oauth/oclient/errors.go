package oclient

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

// ErrTokensNotFound is returned by a TokenVault with nothing stored for a provider.
var ErrTokensNotFound = errors.New("tokens not found")

// ConfigError reports credentials missing from configuration. It is raised
// before any request leaves the process.
type ConfigError struct {
	Service string
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: missing configuration: %s", e.Service, strings.Join(e.Missing, ", "))
}

// TokenRefreshError reports a failed refresh-token grant. Status is the
// upstream HTTP status, or 0 when no response was received.
type TokenRefreshError struct {
	Service string
	Status  int
	Body    string
	Err     error
}

func (e *TokenRefreshError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: token refresh failed with status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s: token refresh failed: %v", e.Service, e.Err)
}

func (e *TokenRefreshError) Unwrap() error { return e.Err }

func refreshError(service string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return &TokenRefreshError{
			Service: service,
			Status:  re.Response.StatusCode,
			Body:    string(re.Body),
			Err:     err,
		}
	}
	return &TokenRefreshError{Service: service, Err: err}
}

// IsConfigError reports whether err is, or wraps, a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
