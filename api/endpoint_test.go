package api

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Misiix9/portfolio-api/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingHandler(calls *int, res Result) HandlerFunc {
	return func(r *http.Request) Result {
		*calls++
		return res
	}
}

func TestEndpoint_OptionsIsEmpty200(t *testing.T) {
	calls := 0
	e := NewEndpoint("test", countingHandler(&calls, JSON(http.StatusOK, map[string]int{"a": 1})))

	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/test", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String())
	assert.Equal(t, 0, calls)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestEndpoint_NonGetIs405(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			calls := 0
			e := NewEndpoint("test", countingHandler(&calls, Empty(http.StatusOK)))

			rr := httptest.NewRecorder()
			e.ServeHTTP(rr, httptest.NewRequest(method, "/api/test", nil))

			require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, map[string]string{"error": "Method not allowed"}, body)
			assert.Equal(t, "GET, OPTIONS", rr.Header().Get("Allow"))
			assert.Equal(t, 0, calls)
		})
	}
}

func TestEndpoint_GetRunsHandler(t *testing.T) {
	calls := 0
	m := metrics.New()
	e := NewEndpoint("test", countingHandler(&calls, JSON(http.StatusTeapot, map[string]bool{"ok": true})), WithMetrics(m))

	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/test", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("test", "418")))
}

func TestEndpoint_KeepsIncomingRequestID(t *testing.T) {
	var seen string
	e := NewEndpoint("test", func(r *http.Request) Result {
		seen = RequestID(r.Context())
		return Empty(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-Id"))
}

func TestEndpoint_RecoversPanics(t *testing.T) {
	e := NewEndpoint("test", func(r *http.Request) Result {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/test", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
}

func TestEndpoint_AllowedDomain(t *testing.T) {
	e := NewEndpoint("test", func(r *http.Request) Result { return Empty(http.StatusOK) }, WithAllowedDomain("example.com"))

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{"matching subdomain", "https://www.example.com", "https://www.example.com"},
		{"apex", "https://example.com", "https://example.com"},
		{"other domain", "https://evil.dev", ""},
		{"suffix lookalike", "https://notexample.com", ""},
		{"no origin", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			e.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestResults(t *testing.T) {
	tmpl := template.Must(template.New("page").Parse(`<p>{{.}}</p>`))

	t.Run("html escapes data", func(t *testing.T) {
		rr := httptest.NewRecorder()
		require.NoError(t, HTML(http.StatusBadRequest, tmpl, "page", "<b>").Write(rr))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "<p>&lt;b&gt;</p>", rr.Body.String())
		assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	})

	t.Run("html unknown template fails before writing", func(t *testing.T) {
		rr := httptest.NewRecorder()
		require.Error(t, HTML(http.StatusOK, tmpl, "missing", nil).Write(rr))
		assert.Empty(t, rr.Body.String())
	})

	t.Run("redirect with cookie", func(t *testing.T) {
		rr := httptest.NewRecorder()
		res := WithCookies(Redirect("https://accounts.example/auth"), &http.Cookie{Name: "c", Value: "v"})
		require.NoError(t, res.Write(rr))
		assert.Equal(t, http.StatusFound, res.StatusCode())
		assert.Equal(t, "https://accounts.example/auth", rr.Header().Get("Location"))
		require.Len(t, rr.Result().Cookies(), 1)
		assert.Equal(t, "v", rr.Result().Cookies()[0].Value)
	})
}
