package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Misiix9/portfolio-api/oauth/oclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{KeyPort, KeyGitHubUsername, KeyCalendarID, KeyCalendarTimezone, KeyMongoDatabase, KeyUpstreamTimeout, KeyLogLevel} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	c := New()

	assert.Equal(t, "3000", c.Port())
	assert.Equal(t, "Misiix9", c.GitHubUsername())
	assert.Equal(t, "primary", c.CalendarID())
	assert.Equal(t, time.UTC, c.CalendarLocation())
	assert.Equal(t, "portfolio", c.MongoDatabase())
	assert.Equal(t, 10*time.Second, c.UpstreamTimeout())
	assert.Equal(t, slog.LevelInfo, c.LogLevel())
}

func TestOverrides(t *testing.T) {
	t.Setenv(KeyPort, "8080")
	t.Setenv(KeyCalendarTimezone, "Europe/Warsaw")
	t.Setenv(KeyUpstreamTimeout, "3")
	t.Setenv(KeyLogLevel, "debug")
	t.Setenv(KeyRedirectBaseURL, "https://example.dev/")
	c := New()

	assert.Equal(t, "8080", c.Port())
	assert.Equal(t, "Europe/Warsaw", c.CalendarLocation().String())
	assert.Equal(t, 3*time.Second, c.UpstreamTimeout())
	assert.Equal(t, slog.LevelDebug, c.LogLevel())
	assert.Equal(t, "https://example.dev", c.RedirectBaseURL())
}

func TestBadValuesFallBack(t *testing.T) {
	t.Setenv(KeyCalendarTimezone, "Mars/Olympus")
	t.Setenv(KeyUpstreamTimeout, "soon")
	t.Setenv(KeyLogLevel, "loud")
	c := New()

	assert.Equal(t, time.UTC, c.CalendarLocation())
	assert.Equal(t, 10*time.Second, c.UpstreamTimeout())
	assert.Equal(t, slog.LevelInfo, c.LogLevel())
}

func TestCredentialsReadPerCall(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")
	t.Setenv("SPOTIFY_REFRESH_TOKEN", "")
	c := New()
	source := c.CredentialSource(oclient.Spotify)

	assert.Equal(t, []string{"SPOTIFY_REFRESH_TOKEN"}, source().Missing(oclient.Spotify))

	t.Setenv("SPOTIFY_REFRESH_TOKEN", "rotated")
	assert.Equal(t, oclient.Credentials{ClientID: "id", ClientSecret: "secret", RefreshToken: "rotated"}, source())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GITHUB_USERNAME=octocat\n"), 0o600))
	t.Setenv(KeyGitHubUsername, "")
	require.NoError(t, os.Unsetenv(KeyGitHubUsername))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	assert.Equal(t, "octocat", New().GitHubUsername())
}
