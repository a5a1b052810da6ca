package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SameSite must allow the cookie on the top-level redirect back from the provider.
var SameSite = http.SameSiteLaxMode

// Path scopes the cookie to the API routes.
var Path = "/api"

// Compute HMAC-SHA256 signature of a message using secret
func computeHMAC(message string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}

// Validate HMAC signature
func validateHMAC(message, sig string, secret []byte) bool {
	expected := computeHMAC(message, secret)
	return hmac.Equal([]byte(sig), []byte(expected))
}

// NewStateCookie serializes the state, signs it and returns the cookie to set.
func NewStateCookie(s *OAuthState, secret []byte, secure bool) (*http.Cookie, error) {
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	value := base64.URLEncoding.EncodeToString(jsonData)
	sig := computeHMAC(value, secret)
	return &http.Cookie{
		Name:     CookieName(s.Provider),
		Value:    fmt.Sprintf("%s|%s", value, sig),
		Path:     Path,
		Expires:  time.Unix(s.ExpiresAt, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: SameSite,
	}, nil
}

// ClearStateCookie expires the provider's state cookie.
func ClearStateCookie(provider string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName(provider),
		Value:    "",
		Path:     Path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: SameSite,
	}
}
