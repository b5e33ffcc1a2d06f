package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// Verifier checks a bearer token and returns its subject.
type Verifier interface {
	Verify(raw string) (string, error)
}

type contextKey string

const subjectKey contextKey = "auth_subject"

// Bearer rejects requests without a valid "Authorization: Bearer" token.
func Bearer(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			subject, err := v.Verify(raw)
			if err != nil {
				slog.Warn("invalid bearer token",
					"error", err,
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
				)
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)

				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey, subject)))
		})
	}
}

// Subject returns the authenticated subject of a request, if any.
func Subject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey).(string)
	return s, ok
}
