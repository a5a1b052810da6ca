package api

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	requestIDKey contextKey = "REQUEST_ID"
	endpointKey  contextKey = "ENDPOINT"
)

// WithRequestID attaches the request ID to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func withEndpoint(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, endpointKey, name)
}

// Logger returns the default logger tagged with the request ID and endpoint.
func Logger(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if id := RequestID(ctx); id != "" {
		l = l.With("request_id", id)
	}
	if name, _ := ctx.Value(endpointKey).(string); name != "" {
		l = l.With("endpoint", name)
	}
	return l
}
