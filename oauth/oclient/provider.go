package oclient

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Misiix9/portfolio-api/metrics"
	"golang.org/x/oauth2"
)

// cacheSafetyWindow is subtracted from the token lifetime before caching.
const cacheSafetyWindow = time.Minute

var (
	_ AccessTokenProvider = &Provider{}
	_ TokenInvalidator    = &Provider{}
)

// Provider exchanges the configured refresh token for an access token.
type Provider struct {
	service    Service
	source     CredentialSource
	cache      TokenCache
	vault      TokenVault
	httpClient *http.Client
	metrics    *metrics.Metrics
}

type Option func(*Provider)

// WithCache reuses access tokens across requests until shortly before expiry.
func WithCache(c TokenCache) Option {
	return func(p *Provider) { p.cache = c }
}

// WithVault falls back to a stored refresh token when configuration has none.
func WithVault(v TokenVault) Option {
	return func(p *Provider) { p.vault = v }
}

func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Provider) { p.metrics = m }
}

// WithEndpoint overrides the service's OAuth2 endpoint.
func WithEndpoint(e oauth2.Endpoint) Option {
	return func(p *Provider) { p.service.Endpoint = e }
}

func NewProvider(service Service, source CredentialSource, opts ...Option) *Provider {
	p := &Provider{service: service, source: source}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Provider) Service() Service { return p.service }

// Credentials resolves the credential set for this call. Missing values are
// reported as a *ConfigError.
func (p *Provider) Credentials(ctx context.Context) (Credentials, error) {
	var creds Credentials
	if p.source != nil {
		creds = p.source()
	}
	if creds.RefreshToken == "" && p.vault != nil {
		pair, err := p.vault.GetTokens(ctx, p.service.Name)
		switch {
		case err == nil:
			creds.RefreshToken = pair.RefreshToken
		case !errors.Is(err, ErrTokensNotFound):
			slog.WarnContext(ctx, "refresh token vault lookup failed", "service", p.service.Name, "err", err)
		}
	}
	if missing := creds.Missing(p.service); len(missing) > 0 {
		return creds, &ConfigError{Service: p.service.Name, Missing: missing}
	}
	return creds, nil
}

// ClientCredentials returns the client id and secret only. The authorization
// code flow runs before a refresh token exists.
func (p *Provider) ClientCredentials() (Credentials, error) {
	var creds Credentials
	if p.source != nil {
		creds = p.source()
	}
	creds.RefreshToken = ""
	var missing []string
	for _, k := range creds.Missing(p.service) {
		if k != p.service.RefreshTokenKey() {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return creds, &ConfigError{Service: p.service.Name, Missing: missing}
	}
	return creds, nil
}

// Config builds the oauth2 configuration for the given credentials.
func (p *Provider) Config(creds Credentials, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     p.service.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       p.service.Scopes,
	}
}

// Context attaches the provider's HTTP client for use by the oauth2 package.
func (p *Provider) Context(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

// AccessToken performs a single refresh-token grant. No retries.
func (p *Provider) AccessToken(ctx context.Context) (string, error) {
	creds, err := p.Credentials(ctx)
	if err != nil {
		return "", err
	}

	key := p.cacheKey(creds)
	if p.cache != nil {
		tok, ok, err := p.cache.Get(ctx, key)
		if err != nil {
			slog.WarnContext(ctx, "token cache read failed", "service", p.service.Name, "err", err)
		} else if ok {
			p.metrics.ObserveTokenRefresh(p.service.Name, "cached")
			return tok, nil
		}
	}

	ts := p.Config(creds, "").TokenSource(p.Context(ctx), &oauth2.Token{RefreshToken: creds.RefreshToken})
	tok, err := ts.Token()
	if err != nil {
		p.metrics.ObserveTokenRefresh(p.service.Name, "error")
		return "", refreshError(p.service.Name, err)
	}
	p.metrics.ObserveTokenRefresh(p.service.Name, "refreshed")

	if p.cache != nil && !tok.Expiry.IsZero() {
		if ttl := time.Until(tok.Expiry) - cacheSafetyWindow; ttl > 0 {
			if err := p.cache.Set(ctx, key, tok.AccessToken, ttl); err != nil {
				slog.WarnContext(ctx, "token cache write failed", "service", p.service.Name, "err", err)
			}
		}
	}
	return tok.AccessToken, nil
}

// Invalidate drops the cached access token for the current credentials so the
// next call refreshes. It is a no-op without a cache.
func (p *Provider) Invalidate(ctx context.Context) error {
	if p.cache == nil {
		return nil
	}
	creds, err := p.Credentials(ctx)
	if err != nil {
		return err
	}
	if err := p.cache.Delete(ctx, p.cacheKey(creds)); err != nil {
		return fmt.Errorf("%s: drop cached token: %w", p.service.Name, err)
	}
	p.metrics.ObserveTokenRefresh(p.service.Name, "invalidated")
	return nil
}

// cacheKey ties a cached token to the client and refresh token that minted it,
// so rotating either one misses the cache.
func (p *Provider) cacheKey(creds Credentials) string {
	sum := sha256.Sum256([]byte(creds.ClientID + "\x00" + creds.RefreshToken))
	return p.service.Name + ":" + hex.EncodeToString(sum[:8])
}
