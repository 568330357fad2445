package http

import (
	"context"
	"net/http"
	"strings"

	"savesmart/internal/core"
)

// contextKey keeps request-context values private to this package.
type contextKey int

const userContextKey contextKey = iota

func withUser(ctx context.Context, user core.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// userFromContext returns the authenticated user attached by requireAuth.
func userFromContext(ctx context.Context) (core.User, bool) {
	user, ok := ctx.Value(userContextKey).(core.User)
	return user, ok
}

// requireAuth verifies the bearer token, loads its user and attaches it
// to the request context. Any failure is a 401, never a 500.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, r, core.Unauthorized("missing bearer token"))
			return
		}

		user, err := s.auth.VerifyToken(r.Context(), token)
		if err != nil {
			respondError(w, r, err)
			return
		}
		if !user.IsActive {
			respondError(w, r, core.Unauthorized("account is deactivated"))
			return
		}

		next(w, r.WithContext(withUser(r.Context(), user)))
	}
}

// securityHeaders sets the baseline response headers on every route.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
