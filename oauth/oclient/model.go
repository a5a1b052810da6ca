package oclient

import (
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Service describes one upstream OAuth2 provider
type Service struct {
	Name     string // e.g. "google", "spotify"
	EnvKey   string // environment prefix, e.g. "GOOGLE"
	Title    string
	Endpoint oauth2.Endpoint
	Scopes   []string
	// Extra consent parameters sent on the authorization URL only.
	AuthParams []oauth2.AuthCodeOption
}

var (
	Google = Service{
		Name:     "google",
		EnvKey:   "GOOGLE",
		Title:    "Google",
		Endpoint: withAuthStyle(google.Endpoint, oauth2.AuthStyleInParams),
		Scopes:   []string{"https://www.googleapis.com/auth/calendar.readonly"},
		AuthParams: []oauth2.AuthCodeOption{
			oauth2.AccessTypeOffline,
			oauth2.SetAuthURLParam("prompt", "consent"),
		},
	}

	Spotify = Service{
		Name:   "spotify",
		EnvKey: "SPOTIFY",
		Title:  "Spotify",
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://accounts.spotify.com/authorize",
			TokenURL:  "https://accounts.spotify.com/api/token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		Scopes: []string{
			"user-read-currently-playing",
			"user-read-recently-played",
			"user-read-playback-state",
		},
	}
)

func withAuthStyle(e oauth2.Endpoint, style oauth2.AuthStyle) oauth2.Endpoint {
	e.AuthStyle = style
	return e
}

// RefreshTokenKey is the configuration key the operator stores the refresh token under.
func (s Service) RefreshTokenKey() string {
	return s.EnvKey + "_REFRESH_TOKEN"
}

// Credentials holds the client credentials and the long-lived refresh token
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// CredentialSource is evaluated on every call, never captured once.
type CredentialSource func() Credentials

// Missing returns the configuration keys that are empty, in a stable order.
func (c Credentials) Missing(s Service) []string {
	var out []string
	if c.ClientID == "" {
		out = append(out, s.EnvKey+"_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		out = append(out, s.EnvKey+"_CLIENT_SECRET")
	}
	if c.RefreshToken == "" {
		out = append(out, s.RefreshTokenKey())
	}
	return out
}

// TokenPair holds an access + refresh token for a provider
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	IssuedAt     time.Time
}
