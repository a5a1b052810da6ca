// Package portfolio assembles the API handlers into one http.Handler.
package portfolio

import (
	"fmt"
	"net/http"

	"github.com/Misiix9/portfolio-api/activity"
	"github.com/Misiix9/portfolio-api/api"
	"github.com/Misiix9/portfolio-api/calendar"
	"github.com/Misiix9/portfolio-api/config"
	"github.com/Misiix9/portfolio-api/metrics"
	"github.com/Misiix9/portfolio-api/oauth/callback"
	"github.com/Misiix9/portfolio-api/oauth/oclient"
	"github.com/Misiix9/portfolio-api/spotify"
)

const (
	RouteCalendar        = "/api/calendar"
	RouteGitHub          = "/api/github"
	RouteSpotify         = "/api/spotify"
	RouteGoogleCallback  = "/api/google-callback"
	RouteSpotifyCallback = "/api/spotify-callback"
	RouteGoogleLogin     = "/api/google-login"
	RouteSpotifyLogin    = "/api/spotify-login"
	RouteHealth          = "/healthz"
	RouteMetrics         = "/metrics"

	googleRevokeURL = "https://myaccount.google.com/permissions"
)

// Deps are the optional shared pieces. Nil Cache or Vault disables them.
type Deps struct {
	Config  *config.Config
	Metrics *metrics.Metrics
	Cache   oclient.TokenCache
	Vault   oclient.TokenVault

	// Transport overrides the round tripper for every upstream call.
	Transport http.RoundTripper
	// Services overrides the OAuth2 endpoints, keyed by service name.
	Services map[string]oclient.Service
	// CalendarEndpoint, GitHubBaseURL and SpotifyBaseURL override upstream roots.
	CalendarEndpoint string
	GitHubBaseURL    string
	SpotifyBaseURL   string
}

type Portfolio struct {
	mux     *http.ServeMux
	Google  *oclient.Provider
	Spotify *oclient.Provider
}

func New(d Deps) (*Portfolio, error) {
	if d.Config == nil {
		d.Config = config.New()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	cfg := d.Config
	timeout := cfg.UpstreamTimeout()
	client := &http.Client{Timeout: timeout, Transport: d.Transport}

	p := &Portfolio{mux: http.NewServeMux()}
	p.Google = d.provider(oclient.Google, client)
	p.Spotify = d.provider(oclient.Spotify, client)

	gh, err := activity.NewHandler(activity.Options{
		Username:   cfg.GitHubUsername(),
		Token:      cfg.GitHubToken(),
		BaseURL:    d.GitHubBaseURL,
		HTTPClient: client,
	})
	if err != nil {
		return nil, fmt.Errorf("github handler: %w", err)
	}
	cal := calendar.NewHandler(p.Google, calendar.Options{
		CalendarID: cfg.CalendarID(),
		Location:   cfg.CalendarLocation(),
		Endpoint:   d.CalendarEndpoint,
		Transport:  d.Transport,
		Timeout:    timeout,
	})
	sp := spotify.NewHandler(p.Spotify, spotify.Options{
		BaseURL:   d.SpotifyBaseURL,
		Transport: d.Transport,
		Timeout:   timeout,
	})

	secret := cfg.SessionSecret()
	// Login routes exist only with a session secret; the guidance page
	// must not link to a 404.
	var googleLogin, spotifyLogin string
	if len(secret) > 0 {
		googleLogin, spotifyLogin = RouteGoogleLogin, RouteSpotifyLogin
	}
	googleFlow := callback.NewFlow(p.Google, callback.Options{
		CallbackPath:        RouteGoogleCallback,
		LoginPath:           googleLogin,
		RedirectBaseURL:     cfg.RedirectBaseURL(),
		StateSecret:         secret,
		Vault:               d.Vault,
		RequireRefreshToken: true,
		RevokeURL:           googleRevokeURL,
	})
	spotifyFlow := callback.NewFlow(p.Spotify, callback.Options{
		CallbackPath:    RouteSpotifyCallback,
		LoginPath:       spotifyLogin,
		RedirectBaseURL: cfg.RedirectBaseURL(),
		StateSecret:     secret,
		Vault:           d.Vault,
	})

	opts := []api.EndpointOption{api.WithMetrics(d.Metrics), api.WithAllowedDomain(cfg.AllowedDomain())}
	handle := func(route, name string, fn api.HandlerFunc) {
		p.mux.Handle(route, api.NewEndpoint(name, fn, opts...))
	}
	handle(RouteCalendar, "calendar", cal.Serve)
	handle(RouteGitHub, "github", gh.Serve)
	handle(RouteSpotify, "spotify", sp.Serve)
	handle(RouteGoogleCallback, "google-callback", googleFlow.Callback)
	handle(RouteSpotifyCallback, "spotify-callback", spotifyFlow.Callback)
	if len(secret) > 0 {
		handle(RouteGoogleLogin, "google-login", googleFlow.Login)
		handle(RouteSpotifyLogin, "spotify-login", spotifyFlow.Login)
	}
	handle(RouteHealth, "health", func(*http.Request) api.Result {
		return api.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	p.mux.Handle(RouteMetrics, d.Metrics.Handler())

	return p, nil
}

func (d Deps) provider(service oclient.Service, client *http.Client) *oclient.Provider {
	if s, ok := d.Services[service.Name]; ok {
		service = s
	}
	opts := []oclient.Option{
		oclient.WithHTTPClient(client),
		oclient.WithMetrics(d.Metrics),
	}
	if d.Cache != nil {
		opts = append(opts, oclient.WithCache(d.Cache))
	}
	if d.Vault != nil {
		opts = append(opts, oclient.WithVault(d.Vault))
	}
	return oclient.NewProvider(service, d.Config.CredentialSource(service), opts...)
}

func (p *Portfolio) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mux.ServeHTTP(w, r)
}
