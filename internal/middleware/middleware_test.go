package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftfolio.dev/internal/auth"
	"craftfolio.dev/internal/models"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

// ============================================================================
// RequireAuth
// ============================================================================

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := auth.NewTokenIssuer([]byte("secret"), time.Hour, "craftfolio").
		WithClock(func() time.Time { return issued })
	token, _, err := issuer.Issue(models.Identity{AccountID: 1, Username: "admin"})
	require.NoError(t, err)

	later := issuer.WithClock(func() time.Time { return issued.Add(2 * time.Hour) })
	other := auth.NewTokenIssuer([]byte("other"), time.Hour, "craftfolio").
		WithClock(func() time.Time { return issued })

	tests := []struct {
		name    string
		parser  TokenParser
		header  string
		status  int
		message string
	}{
		{"valid token", issuer, "Bearer " + token, http.StatusNoContent, ""},
		{"no header", issuer, "", http.StatusUnauthorized, "No token provided"},
		{"wrong scheme", issuer, "Basic " + token, http.StatusUnauthorized, "No token provided"},
		{"lowercase scheme", issuer, "bearer " + token, http.StatusUnauthorized, "No token provided"},
		{"bare token", issuer, token, http.StatusUnauthorized, "No token provided"},
		{"empty token", issuer, "Bearer ", http.StatusUnauthorized, "No token provided"},
		{"garbage token", issuer, "Bearer not.a.jwt", http.StatusUnauthorized, "Invalid token"},
		{"expired token", later, "Bearer " + token, http.StatusUnauthorized, "Invalid token"},
		{"foreign signature", other, "Bearer " + token, http.StatusUnauthorized, "Invalid token"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen models.Identity
			handler := RequireAuth(tt.parser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, ok := IdentityFromContext(r.Context())
				require.True(t, ok)
				seen = id
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/projects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decodeError(t, rec))
				return
			}
			assert.Equal(t, "admin", seen.Username)
			assert.Equal(t, 1, seen.AccountID)
		})
	}
}

type failingParser struct{}

func (failingParser) Parse(string) (models.Identity, error) {
	return models.Identity{}, errors.New("boom")
}

func TestRequireAuth_DoesNotCallNextOnFailure(t *testing.T) {
	t.Parallel()

	called := false
	handler := RequireAuth(failingParser{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodDelete, "/api/projects/1", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestIdentityFromContext_Missing(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := IdentityFromContext(req.Context())
	assert.False(t, ok)
}

// ============================================================================
// Recovery
// ============================================================================

func TestRecovery(t *testing.T) {
	t.Parallel()

	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/about", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Internal server error", decodeError(t, rec))
}

func TestRecovery_PassesThrough(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	Recovery(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// ============================================================================
// Logger
// ============================================================================

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nope"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects/x", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/api/projects/x", entry["path"])
	assert.EqualValues(t, 404, entry["status"])
	assert.EqualValues(t, 4, entry["bytes"])
}

// ============================================================================
// Rate limiting
// ============================================================================

func TestIPRateLimiter_Handler(t *testing.T) {
	t.Parallel()

	limiter := NewIPRateLimiter(1, 2, 0)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	handler := limiter.Handler(okHandler)

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:2222").Code)

	blocked := send("10.0.0.1:3333")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "1", blocked.Header().Get("Retry-After"))
	assert.NotEmpty(t, decodeError(t, blocked))

	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:1111").Code, "other clients have their own bucket")

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:4444").Code, "bucket refills over time")
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	t.Parallel()

	limiter := NewIPRateLimiter(1, 1, 0)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("10.0.0.1")
	now = now.Add(30 * time.Minute)
	limiter.Allow("10.0.0.2")
	now = now.Add(45 * time.Minute)

	assert.Equal(t, 1, limiter.Sweep(time.Hour))
	assert.Len(t, limiter.visitors, 1)
	assert.Contains(t, limiter.visitors, "10.0.0.2")
}

func TestIPRateLimiter_BoundedVisitors(t *testing.T) {
	t.Parallel()

	limiter := NewIPRateLimiter(1, 1, 3)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := 1; i <= 5; i++ {
		now = now.Add(time.Second)
		assert.True(t, limiter.Allow(fmt.Sprintf("10.0.0.%d", i)))
	}

	assert.Len(t, limiter.visitors, 3)
	assert.NotContains(t, limiter.visitors, "10.0.0.1")
	assert.NotContains(t, limiter.visitors, "10.0.0.2")
	assert.Contains(t, limiter.visitors, "10.0.0.5")
}

func TestIPRateLimiter_IgnoresForwardingHeaders(t *testing.T) {
	t.Parallel()

	handler := NewIPRateLimiter(0.001, 1, 0).Handler(okHandler)

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{
		http.StatusNoContent,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)
}
