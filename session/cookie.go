package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

var (
	ErrNoState          = errors.New("no oauth state cookie")
	ErrInvalidFormat    = errors.New("invalid oauth state cookie format")
	ErrInvalidSignature = errors.New("invalid oauth state signature")
	ErrStateExpired     = errors.New("oauth state expired")
	ErrProviderMismatch = errors.New("oauth state issued for another provider")
)

// StateFromRequest reads and verifies the state cookie for provider.
func StateFromRequest(r *http.Request, provider string, secret []byte) (*OAuthState, error) {
	c, err := r.Cookie(CookieName(provider))
	if err != nil {
		return nil, ErrNoState
	}
	s, err := decode(c, secret, time.Now())
	if err != nil {
		return nil, err
	}
	if s.Provider != provider {
		return nil, ErrProviderMismatch
	}
	return s, nil
}

func decode(c *http.Cookie, secret []byte, now time.Time) (*OAuthState, error) {
	parts := strings.Split(c.Value, "|")
	if len(parts) != 2 {
		return nil, ErrInvalidFormat
	}
	value, sig := parts[0], parts[1]
	if !validateHMAC(value, sig, secret) {
		return nil, ErrInvalidSignature
	}
	jsonData, err := base64.URLEncoding.DecodeString(value)
	if err != nil {
		return nil, err
	}
	var s OAuthState
	if err := json.Unmarshal(jsonData, &s); err != nil {
		return nil, err
	}
	if s.Expired(now) {
		return nil, ErrStateExpired
	}
	return &s, nil
}
