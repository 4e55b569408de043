package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/pkg/response"
	"github.com/rsmnext/assistant-backend/internal/session"
)

// SessionResolver maps a bearer token to a live session.
type SessionResolver interface {
	Resolve(token string) (*session.Session, error)
}

type sessionContextKey struct{}

// Auth rejects requests without a valid session token and attaches the
// session to the request context.
func Auth(resolver SessionResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := resolver.Resolve(extractToken(r))
			if err != nil {
				ctxzap.Warn(r.Context(), "unauthenticated request",
					zap.String("path", r.URL.Path),
				)
				response.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session attached by Auth.
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*session.Session)
	return sess, ok
}

// extractToken prefers the Authorization header, falling back to the
// session cookie set for direct browser downloads.
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie("session_token"); err == nil {
		return cookie.Value
	}
	return ""
}
