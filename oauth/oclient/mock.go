package oclient

import "context"

// MockTokenProvider provides a customizable hook for testing handlers.
type MockTokenProvider struct {
	AccessTokenFunc func(ctx context.Context) (string, error)
	Calls           int
	Invalidations   int
}

var (
	_ AccessTokenProvider = (*MockTokenProvider)(nil)
	_ TokenInvalidator    = (*MockTokenProvider)(nil)
)

// AccessToken calls AccessTokenFunc if set, otherwise returns "mock-token", nil
func (m *MockTokenProvider) AccessToken(ctx context.Context) (string, error) {
	m.Calls++
	if m.AccessTokenFunc != nil {
		return m.AccessTokenFunc(ctx)
	}
	return "mock-token", nil
}

// Invalidate counts the call.
func (m *MockTokenProvider) Invalidate(context.Context) error {
	m.Invalidations++
	return nil
}
