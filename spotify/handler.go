// Package spotify serves the currently (or most recently) played track.
package spotify

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Misiix9/portfolio-api/api"
	"github.com/Misiix9/portfolio-api/oauth/oclient"
	spotifyapi "github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

const DefaultBaseURL = "https://api.spotify.com/v1/"

// ErrUnauthorized is returned by Playback when Spotify rejects the access token.
var ErrUnauthorized = errors.New("spotify rejected the access token")

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeEmpty
	outcomeFailure
)

type attemptResult struct {
	outcome outcome
	resp    Response
	err     error
}

// attempt is one step of the playback lookup chain.
type attempt struct {
	name string
	run  func(ctx context.Context, client *spotifyapi.Client) attemptResult
}

type Options struct {
	BaseURL   string
	Transport http.RoundTripper
	Timeout   time.Duration
	Now       func() time.Time
}

type Handler struct {
	tokens oclient.AccessTokenProvider
	opts   Options
}

func NewHandler(tokens oclient.AccessTokenProvider, opts Options) *Handler {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{tokens: tokens, opts: opts}
}

func (h *Handler) Serve(r *http.Request) api.Result {
	ctx := r.Context()
	now := h.opts.Now()

	token, err := h.tokens.AccessToken(ctx)
	if err != nil {
		if oclient.IsConfigError(err) {
			api.Logger(ctx).Error("spotify credentials missing", "err", err)
		} else {
			api.Logger(ctx).Error("spotify token refresh failed", "err", err)
		}
		return failed(now)
	}

	resp, err := h.Playback(ctx, token, now)
	if errors.Is(err, ErrUnauthorized) {
		api.Logger(ctx).Warn("spotify rejected cached access token", "err", err)
		if inv, ok := h.tokens.(oclient.TokenInvalidator); ok {
			if err := inv.Invalidate(ctx); err != nil {
				api.Logger(ctx).Warn("spotify token invalidation failed", "err", err)
			}
		}
		return failed(now)
	}
	return api.JSON(http.StatusOK, resp)
}

func failed(now time.Time) api.Result {
	resp := Idle(now)
	resp.Error = "Failed to fetch Spotify data"
	return api.JSON(http.StatusInternalServerError, resp)
}

// Playback walks the lookup chain and stops at the first success. Empty and
// failed steps fall through; when every step does, the idle shape is returned.
// A 401 from any step aborts the chain with ErrUnauthorized.
func (h *Handler) Playback(ctx context.Context, token string, now time.Time) (Response, error) {
	client := spotifyapi.New(&http.Client{
		Timeout: h.opts.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   h.opts.Transport,
		},
	}, spotifyapi.WithBaseURL(h.opts.BaseURL))

	for _, a := range h.chain() {
		res := a.run(ctx, client)
		switch res.outcome {
		case outcomeSuccess:
			res.resp.LastUpdated = now.UTC().Format(time.RFC3339)
			return res.resp, nil
		case outcomeFailure:
			if unauthorized(res.err) {
				return Idle(now), ErrUnauthorized
			}
			api.Logger(ctx).Warn("spotify lookup failed", "step", a.name, "err", res.err)
		}
	}
	return Idle(now), nil
}

func (h *Handler) chain() []attempt {
	return []attempt{
		{name: "currently-playing", run: currentlyPlaying},
		{name: "recently-played", run: recentlyPlayed},
	}
}

func currentlyPlaying(ctx context.Context, client *spotifyapi.Client) attemptResult {
	cp, err := client.PlayerCurrentlyPlaying(ctx)
	if err != nil {
		return attemptResult{outcome: outcomeFailure, err: err}
	}
	// 204 decodes to an empty value.
	if cp == nil || cp.Item == nil || cp.Item.Name == "" {
		return attemptResult{outcome: outcomeEmpty}
	}
	resp := fromTrack(cp.Item.SimpleTrack, cp.Item.Album)
	resp.IsPlaying = cp.Playing
	progress := int(cp.Progress)
	resp.ProgressMs = &progress
	return attemptResult{outcome: outcomeSuccess, resp: resp}
}

func recentlyPlayed(ctx context.Context, client *spotifyapi.Client) attemptResult {
	items, err := client.PlayerRecentlyPlayedOpt(ctx, &spotifyapi.RecentlyPlayedOptions{Limit: 1})
	if err != nil {
		return attemptResult{outcome: outcomeFailure, err: err}
	}
	if len(items) == 0 || items[0].Track.Name == "" {
		return attemptResult{outcome: outcomeEmpty}
	}
	t := items[0].Track
	resp := fromTrack(t, t.Album)
	zero := 0
	resp.ProgressMs = &zero
	return attemptResult{outcome: outcomeSuccess, resp: resp}
}

func unauthorized(err error) bool {
	var se spotifyapi.Error
	if errors.As(err, &se) {
		return se.Status == http.StatusUnauthorized
	}
	var sp *spotifyapi.Error
	return errors.As(err, &sp) && sp.Status == http.StatusUnauthorized
}

func fromTrack(t spotifyapi.SimpleTrack, album spotifyapi.SimpleAlbum) Response {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	duration := int(t.Duration)
	resp := Response{
		Track:      strPtr(t.Name),
		Artist:     strPtr(strings.Join(names, ", ")),
		Album:      strPtr(album.Name),
		URL:        strPtr(t.ExternalURLs["spotify"]),
		URI:        strPtr(string(t.URI)),
		DurationMs: &duration,
	}
	if len(album.Images) > 0 {
		resp.AlbumArt = strPtr(album.Images[0].URL)
	}
	return resp
}

// Idle is the shape returned when nothing has been played.
func Idle(now time.Time) Response {
	return Response{LastUpdated: now.UTC().Format(time.RFC3339)}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
