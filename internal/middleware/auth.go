package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gatekeep/gatekeep/internal/auth"
	"github.com/gatekeep/gatekeep/internal/model"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

// SessionResolver resolves an opaque token to a live session.
type SessionResolver interface {
	Get(ctx context.Context, token string) (*model.Session, error)
}

// AuthConfig holds configuration for the session middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Sessions SessionResolver
}

// RequireSession returns middleware that authenticates requests by session
// token, taken from the session cookie or an Authorization bearer header.
// The session is injected into the request context; requests without a
// live session get a generic 401.
func RequireSession(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractSessionToken(r)
			if token == "" {
				writeAuthError(w)
				return
			}

			sess, err := cfg.Sessions.Get(r.Context(), token)
			if err != nil {
				cfg.Logger.Warn("session rejected",
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractSessionToken extracts the session token from the request.
// The session cookie wins; "Authorization: Bearer <token>" is the fallback
// for non-browser clients.
func ExtractSessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent probing.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"authentication required","code":"UNAUTHORIZED"}`))
}
