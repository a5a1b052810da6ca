// Package calendar serves the next upcoming Google Calendar event.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Misiix9/portfolio-api/api"
	"github.com/Misiix9/portfolio-api/oauth/oclient"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const maxResults = 5

// Response is the normalized payload. Pointer fields are null when there is
// no upcoming event.
type Response struct {
	HasEvent    bool    `json:"hasEvent"`
	Title       *string `json:"title"`
	Time        *string `json:"time"`
	RawStart    *string `json:"rawStart"`
	URL         *string `json:"url"`
	LastUpdated string  `json:"lastUpdated"`
	Error       string  `json:"error,omitempty"`
}

type Options struct {
	CalendarID string
	Location   *time.Location
	// Endpoint overrides the Calendar API base URL.
	Endpoint  string
	Transport http.RoundTripper
	Timeout   time.Duration
	Now       func() time.Time
}

type Handler struct {
	tokens oclient.AccessTokenProvider
	opts   Options
}

func NewHandler(tokens oclient.AccessTokenProvider, opts Options) *Handler {
	if opts.CalendarID == "" {
		opts.CalendarID = "primary"
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{tokens: tokens, opts: opts}
}

func (h *Handler) Serve(r *http.Request) api.Result {
	ctx := r.Context()
	now := h.opts.Now().In(h.opts.Location)

	resp, err := h.upcoming(ctx, now)
	if err != nil {
		switch {
		case oclient.IsConfigError(err):
			api.Logger(ctx).Error("calendar credentials missing", "err", err)
		case unauthorized(err):
			api.Logger(ctx).Warn("calendar rejected cached access token", "err", err)
			if inv, ok := h.tokens.(oclient.TokenInvalidator); ok {
				if err := inv.Invalidate(ctx); err != nil {
					api.Logger(ctx).Warn("calendar token invalidation failed", "err", err)
				}
			}
		default:
			api.Logger(ctx).Error("calendar fetch failed", "err", err)
		}
		return api.JSON(http.StatusInternalServerError, Response{
			Error:       "Failed to fetch calendar data",
			LastUpdated: now.UTC().Format(time.RFC3339),
		})
	}
	return api.JSON(http.StatusOK, resp)
}

func (h *Handler) upcoming(ctx context.Context, now time.Time) (Response, error) {
	token, err := h.tokens.AccessToken(ctx)
	if err != nil {
		return Response{}, err
	}

	event, err := h.NextEvent(ctx, token, now)
	if err != nil {
		return Response{}, err
	}
	return Normalize(event, now)
}

func unauthorized(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusUnauthorized
}

// NextEvent returns the first event ending after now, or nil.
func (h *Handler) NextEvent(ctx context.Context, token string, now time.Time) (*gcal.Event, error) {
	client := &http.Client{
		Timeout: h.opts.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   h.opts.Transport,
		},
	}
	svcOpts := []option.ClientOption{option.WithHTTPClient(client)}
	if h.opts.Endpoint != "" {
		svcOpts = append(svcOpts, option.WithEndpoint(h.opts.Endpoint))
	}
	svc, err := gcal.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	events, err := svc.Events.List(h.opts.CalendarID).
		TimeMin(now.Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if len(events.Items) == 0 {
		return nil, nil
	}
	return events.Items[0], nil
}

// Normalize maps an upstream event to the response shape. An event whose
// start cannot be parsed is an upstream data error.
func Normalize(event *gcal.Event, now time.Time) (Response, error) {
	resp := Response{LastUpdated: now.UTC().Format(time.RFC3339)}
	if event == nil || event.Start == nil {
		return resp, nil
	}

	start, raw, allDay, err := eventStart(event.Start, now.Location())
	if err != nil {
		return resp, fmt.Errorf("event %q: unparseable start: %w", event.Id, err)
	}
	label := RelativeLabel(start, now, allDay)
	title := event.Summary
	if title == "" {
		title = "Busy"
	}

	resp.HasEvent = true
	resp.Title = &title
	resp.Time = &label
	resp.RawStart = &raw
	if event.HtmlLink != "" {
		link := event.HtmlLink
		resp.URL = &link
	}
	return resp, nil
}

func eventStart(s *gcal.EventDateTime, loc *time.Location) (time.Time, string, bool, error) {
	if s.DateTime != "" {
		t, err := time.Parse(time.RFC3339, s.DateTime)
		return t, s.DateTime, false, err
	}
	t, err := time.ParseInLocation("2006-01-02", s.Date, loc)
	return t, s.Date, true, err
}
