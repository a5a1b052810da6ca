// Package config reads settings from the environment through viper.
//
// Credential getters are evaluated on every call so a rotated refresh token
// is picked up without a restart.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/Misiix9/portfolio-api/oauth/oclient"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	KeyPort              = "PORT"
	KeyGitHubUsername    = "GITHUB_USERNAME"
	KeyGitHubToken       = "GITHUB_TOKEN"
	KeyCalendarID        = "CALENDAR_ID"
	KeyCalendarTimezone  = "CALENDAR_TIMEZONE"
	KeyRedirectBaseURL   = "OAUTH_REDIRECT_BASE_URL"
	KeySessionSecret     = "SESSION_SECRET"
	KeyCORSAllowedDomain = "CORS_ALLOWED_DOMAIN"
	KeyRedisURL          = "REDIS_URL"
	KeyMongoURI          = "MONGO_URI"
	KeyMongoDatabase     = "MONGO_DATABASE"
	KeyUpstreamTimeout   = "UPSTREAM_TIMEOUT"
	KeyLogLevel          = "LOG_LEVEL"
)

type Config struct {
	v *viper.Viper
}

// LoadDotEnv seeds the process environment from the given files. Missing
// files are not an error; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

func New() *Config {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return &Config{v: v}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "3000")
	v.SetDefault(KeyGitHubUsername, "Misiix9")
	v.SetDefault(KeyCalendarID, "primary")
	v.SetDefault(KeyCalendarTimezone, "UTC")
	v.SetDefault(KeyMongoDatabase, "portfolio")
	v.SetDefault(KeyUpstreamTimeout, "10s")
	v.SetDefault(KeyLogLevel, "info")
}

func (c *Config) Port() string            { return c.v.GetString(KeyPort) }
func (c *Config) GitHubUsername() string  { return c.v.GetString(KeyGitHubUsername) }
func (c *Config) GitHubToken() string     { return c.v.GetString(KeyGitHubToken) }
func (c *Config) CalendarID() string      { return c.v.GetString(KeyCalendarID) }
func (c *Config) RedirectBaseURL() string { return strings.TrimSuffix(c.v.GetString(KeyRedirectBaseURL), "/") }
func (c *Config) AllowedDomain() string   { return c.v.GetString(KeyCORSAllowedDomain) }
func (c *Config) RedisURL() string        { return c.v.GetString(KeyRedisURL) }
func (c *Config) MongoURI() string        { return c.v.GetString(KeyMongoURI) }
func (c *Config) MongoDatabase() string   { return c.v.GetString(KeyMongoDatabase) }

// SessionSecret signs OAuth state cookies. Empty disables the login routes.
func (c *Config) SessionSecret() []byte { return []byte(c.v.GetString(KeySessionSecret)) }

// CalendarLocation resolves CALENDAR_TIMEZONE, falling back to UTC.
func (c *Config) CalendarLocation() *time.Location {
	name := c.v.GetString(KeyCalendarTimezone)
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("unknown calendar timezone, using UTC", "timezone", name, "err", err)
		return time.UTC
	}
	return loc
}

// UpstreamTimeout accepts Go durations ("10s") or plain seconds ("10").
func (c *Config) UpstreamTimeout() time.Duration {
	raw := c.v.GetString(KeyUpstreamTimeout)
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs := c.v.GetInt(KeyUpstreamTimeout); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 10 * time.Second
}

func (c *Config) LogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.v.GetString(KeyLogLevel))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Credentials returns the credential set for service, read now.
func (c *Config) Credentials(service oclient.Service) oclient.Credentials {
	return oclient.Credentials{
		ClientID:     c.v.GetString(service.EnvKey + "_CLIENT_ID"),
		ClientSecret: c.v.GetString(service.EnvKey + "_CLIENT_SECRET"),
		RefreshToken: c.v.GetString(service.RefreshTokenKey()),
	}
}

// CredentialSource binds Credentials to a service for a Provider.
func (c *Config) CredentialSource(service oclient.Service) oclient.CredentialSource {
	return func() oclient.Credentials { return c.Credentials(service) }
}
