package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"craftfolio.dev/internal/models"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenParser validates a bearer token and returns who it was issued to
type TokenParser interface {
	Parse(token string) (models.Identity, error)
}

// RequireAuth rejects requests without a valid bearer token.
// The decoded identity is available downstream through IdentityFromContext.
func RequireAuth(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			identity, err := parser.Parse(token)
			if err != nil {
				slog.DebugContext(r.Context(), "rejected bearer token", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.Contains(token, " ") {
		return "", false
	}
	return token, true
}

// WithIdentity attaches an authenticated identity to ctx
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity set by RequireAuth
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}
