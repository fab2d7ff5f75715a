package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const SubjectKey contextKey = "subject"

// TokenVerifier resolves a bearer token to its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Auth returns middleware that validates the Bearer token and injects its subject into context.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header", "invalid_token")
				return
			}
			tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			subject, err := verifier.Verify(tokenStr)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token", "invalid_token")
				return
			}
			ctx := context.WithValue(r.Context(), SubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubjectFromContext extracts the authenticated username from the request context.
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(SubjectKey).(string)
	return s, ok && s != ""
}

// WithSubject returns ctx carrying subject as if Auth had run.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, SubjectKey, subject)
}
