package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-analytics-bff/internal/errors"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyAccessToken stores the caller's access token
	ContextKeyAccessToken ContextKey = "access_token"
)

// RequireAccessToken is middleware for the proxy routes. It rejects requests without
// an access_token cookie before any parameter validation or upstream call, and
// injects the token into the request context.
func (s *Server) RequireAccessToken() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := cookieValue(r, accessTokenCookie)
			if token == "" {
				writeError(w, r, errors.ErrMissingAccessToken)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeyAccessToken, token)
			next(w, r.WithContext(ctx))
		}
	}
}

// accessTokenFrom returns the token injected by RequireAccessToken.
func accessTokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(ContextKeyAccessToken).(string)
	return token
}
