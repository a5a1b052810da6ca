package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Misiix9/portfolio-api/metrics"
	"github.com/Misiix9/portfolio-api/utils"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// HandlerFunc turns a GET request into a Result. Errors are expected to be
// folded into the Result by the handler itself.
type HandlerFunc func(r *http.Request) Result

// Endpoint wraps a HandlerFunc with the behavior every route shares:
// request IDs, CORS, the OPTIONS/GET method gate, panic recovery, access
// logging and request metrics.
type Endpoint struct {
	name          string
	fn            HandlerFunc
	metrics       *metrics.Metrics
	allowedDomain string
}

type EndpointOption func(*Endpoint)

func WithMetrics(m *metrics.Metrics) EndpointOption {
	return func(e *Endpoint) { e.metrics = m }
}

// WithAllowedDomain restricts CORS to origins under domain (e.g. "example.com").
// Without it every origin is allowed.
func WithAllowedDomain(domain string) EndpointOption {
	return func(e *Endpoint) { e.allowedDomain = domain }
}

func NewEndpoint(name string, fn HandlerFunc, opts ...EndpointOption) *Endpoint {
	e := &Endpoint{name: name, fn: fn}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := r.Header.Get(requestIDHeader)
	if id == "" {
		id = uuid.New().String()
	}
	r = r.WithContext(withEndpoint(WithRequestID(r.Context(), id), e.name))
	w.Header().Set(requestIDHeader, id)
	e.setCORS(w, r)

	res := e.dispatch(r)
	status := res.StatusCode()
	if status == http.StatusMethodNotAllowed {
		w.Header().Set("Allow", "GET, OPTIONS")
	}
	if err := res.Write(w); err != nil {
		Logger(r.Context()).Error("writing response failed", "err", err)
		status = http.StatusInternalServerError
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
	}

	e.metrics.ObserveRequest(e.name, status, time.Since(start))
	Logger(r.Context()).Info("request",
		"method", r.Method,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (e *Endpoint) dispatch(r *http.Request) (res Result) {
	switch r.Method {
	case http.MethodOptions:
		return Empty(http.StatusOK)
	case http.MethodGet:
	default:
		return Error(http.StatusMethodNotAllowed, "Method not allowed")
	}

	defer func() {
		if p := recover(); p != nil {
			Logger(r.Context()).Error("handler panicked", "err", fmt.Sprint(p))
			res = Error(http.StatusInternalServerError, "Internal server error")
		}
	}()
	return e.fn(r)
}

func (e *Endpoint) setCORS(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	if e.allowedDomain == "" {
		h.Set("Access-Control-Allow-Origin", "*")
	} else if origin, ok := utils.AllowedOrigin(r, e.allowedDomain); ok {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
	}
	h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}
