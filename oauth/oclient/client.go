package oclient

import (
	"context"
	"time"
)

// AccessTokenProvider hands out a bearer token for one upstream service.
type AccessTokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// TokenInvalidator is implemented by providers that cache access tokens.
// Callers invalidate after an upstream rejects a token with 401.
type TokenInvalidator interface {
	Invalidate(ctx context.Context) error
}

// TokenCache stores short-lived access tokens between requests.
type TokenCache interface {
	// Get returns the cached token and whether one was found.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a token that expires after ttl.
	Set(ctx context.Context, key, token string, ttl time.Duration) error

	// Delete drops the cached token.
	Delete(ctx context.Context, key string) error
}

// TokenVault persists tokens obtained through the consent flow.
type TokenVault interface {
	// StoreTokens upserts the token pair for a provider.
	StoreTokens(ctx context.Context, provider string, tokens TokenPair) error

	// GetTokens retrieves the last-stored tokens, or ErrTokensNotFound.
	GetTokens(ctx context.Context, provider string) (TokenPair, error)

	// DeleteTokens removes any stored token pair.
	DeleteTokens(ctx context.Context, provider string) error
}
