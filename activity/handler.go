// Package activity serves a week of GitHub commit activity for one user.
package activity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Misiix9/portfolio-api/api"
	"github.com/google/go-github/v57/github"
)

const (
	DefaultUsername = "Misiix9"
	perPage         = 100
)

type Response struct {
	Username     string    `json:"username"`
	TotalCommits int       `json:"totalCommits"`
	Levels       [Days]int `json:"levels"`
	LastUpdated  string    `json:"lastUpdated"`
}

type ErrorResponse struct {
	Error    string   `json:"error"`
	Fallback Response `json:"fallback"`
}

type Options struct {
	Username string
	// Token is optional; unauthenticated requests are rate limited harder.
	Token string
	// BaseURL overrides the GitHub REST API root.
	BaseURL    string
	HTTPClient *http.Client
	Now        func() time.Time
}

type Handler struct {
	client   *github.Client
	username string
	now      func() time.Time
}

func NewHandler(opts Options) (*Handler, error) {
	if opts.Username == "" {
		opts.Username = DefaultUsername
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	client := github.NewClient(opts.HTTPClient)
	if opts.Token != "" {
		client = client.WithAuthToken(opts.Token)
	}
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid github base url: %w", err)
		}
		client.BaseURL = u
	}

	return &Handler{client: client, username: opts.Username, now: opts.Now}, nil
}

func (h *Handler) Serve(r *http.Request) api.Result {
	ctx := r.Context()
	now := h.now()

	resp, err := h.Summary(ctx, now)
	if err != nil {
		api.Logger(ctx).Error("github fetch failed", "username", h.username, "err", err)
		return api.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to fetch GitHub activity",
			Fallback: Response{
				Username:    h.username,
				LastUpdated: now.UTC().Format(time.RFC3339),
			},
		})
	}
	return api.JSON(http.StatusOK, resp)
}

// Summary fetches the user's recent events and reduces them to the weekly shape.
func (h *Handler) Summary(ctx context.Context, now time.Time) (Response, error) {
	events, _, err := h.client.Activity.ListEventsPerformedByUser(ctx, h.username, false, &github.ListOptions{PerPage: perPage})
	if err != nil {
		return Response{}, fmt.Errorf("list events for %s: %w", h.username, err)
	}

	counts := DailyCommits(events, now)
	return Response{
		Username:     h.username,
		TotalCommits: total(counts),
		Levels:       Levels(counts),
		LastUpdated:  now.UTC().Format(time.RFC3339),
	}, nil
}
