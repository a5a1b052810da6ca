package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHMAC(t *testing.T) {
	secret := []byte("mysecret")
	msg := "hello"
	sig := computeHMAC(msg, secret)
	if !validateHMAC(msg, sig, secret) {
		t.Errorf("validateHMAC failed for valid signature")
	}
	if validateHMAC(msg, sig+"bad", secret) {
		t.Errorf("validateHMAC passed for invalid signature")
	}
	if validateHMAC(msg, sig, []byte("other")) {
		t.Errorf("validateHMAC passed with the wrong secret")
	}
}

func newState(provider string, ttl time.Duration) *OAuthState {
	return &OAuthState{
		Provider:  provider,
		State:     "state-123",
		Verifier:  "verifier-abc",
		ExpiresAt: time.Now().Add(ttl).Unix(),
	}
}

func TestCookieRoundTrip(t *testing.T) {
	secret := []byte("mysessionsecret")
	s := newState("google", time.Hour)

	c, err := NewStateCookie(s, secret, true)
	if err != nil {
		t.Fatalf("NewStateCookie error: %v", err)
	}
	if c.Name != "oauth_state_google" {
		t.Errorf("unexpected cookie name %q", c.Name)
	}
	if !c.HttpOnly || !c.Secure || c.Path != "/api" {
		t.Errorf("unexpected cookie attributes: %+v", c)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/google-callback", nil)
	req.AddCookie(c)
	got, err := StateFromRequest(req, "google", secret)
	if err != nil {
		t.Fatalf("StateFromRequest error: %v", err)
	}
	if got.State != s.State || got.Verifier != s.Verifier {
		t.Errorf("expected %+v, got %+v", s, got)
	}
}

func TestStateFromRequest_Errors(t *testing.T) {
	secret := []byte("secret")

	valid, err := NewStateCookie(newState("spotify", time.Hour), secret, false)
	if err != nil {
		t.Fatal(err)
	}
	expired, err := NewStateCookie(newState("spotify", -time.Minute), secret, false)
	if err != nil {
		t.Fatal(err)
	}
	tampered := *valid
	tampered.Value = strings.Replace(valid.Value, "|", "x|", 1)

	tests := []struct {
		name   string
		cookie *http.Cookie
		secret []byte
		want   error
	}{
		{"missing", nil, secret, ErrNoState},
		{"bad format", &http.Cookie{Name: CookieName("spotify"), Value: "nopipe"}, secret, ErrInvalidFormat},
		{"tampered", &tampered, secret, ErrInvalidSignature},
		{"wrong secret", valid, []byte("other"), ErrInvalidSignature},
		{"expired", expired, secret, ErrStateExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			_, err := StateFromRequest(req, "spotify", tt.secret)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestStateFromRequest_ProviderMismatch(t *testing.T) {
	secret := []byte("secret")
	c, err := NewStateCookie(newState("google", time.Hour), secret, false)
	if err != nil {
		t.Fatal(err)
	}
	// Same signed payload under the other provider's cookie name.
	c.Name = CookieName("spotify")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	if _, err := StateFromRequest(req, "spotify", secret); !errors.Is(err, ErrProviderMismatch) {
		t.Errorf("expected ErrProviderMismatch, got %v", err)
	}
}

func TestClearStateCookie(t *testing.T) {
	c := ClearStateCookie("google", true)
	if c.Name != "oauth_state_google" || c.Value != "" || c.MaxAge >= 0 {
		t.Errorf("unexpected clear cookie: %+v", c)
	}
}
