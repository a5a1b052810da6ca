package session

import "time"

const cookiePrefix = "oauth_state_"

// DefaultTTL bounds how long a login round trip may take.
const DefaultTTL = 10 * time.Minute

// OAuthState is carried in a signed cookie between the login redirect and
// the provider callback.
type OAuthState struct {
	Provider  string `json:"provider"`
	State     string `json:"state"`
	Verifier  string `json:"verifier,omitempty"`
	ExpiresAt int64  `json:"expires_at"`
}

// CookieName is the per-provider cookie name so parallel logins do not collide.
func CookieName(provider string) string {
	return cookiePrefix + provider
}

func (s *OAuthState) Expired(now time.Time) bool {
	return now.Unix() > s.ExpiresAt
}
