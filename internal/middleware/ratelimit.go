package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gatekeep/gatekeep/internal/cache"
)

// Rate limited operations.
const (
	OpLogin  = "login"
	OpSignup = "signup"
)

// RateLimiter counts a request against a per-client per-operation window.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, op, clientID string, limit int, window time.Duration) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter RateLimiter
	Enabled bool

	LoginMax     int
	LoginWindow  time.Duration
	SignupMax    int
	SignupWindow time.Duration
}

// RateLimitLogin returns middleware that limits login attempts per client.
func RateLimitLogin(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return rateLimit(cfg, OpLogin, cfg.LoginMax, cfg.LoginWindow)
}

// RateLimitSignup returns middleware that limits signup attempts per client.
func RateLimitSignup(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return rateLimit(cfg, OpSignup, cfg.SignupMax, cfg.SignupWindow)
}

// rateLimit rejects over-limit requests before the handler body runs, so a
// blocked request never reaches validation or the identity service. Every
// request through here consumes a window slot, including requests that
// later fail validation: malformed floods are still floods.
func rateLimit(cfg RateLimitConfig, op string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			clientID := getClientIP(r)

			result, err := cfg.Limiter.CheckRateLimit(r.Context(), op, clientID, limit, window)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("operation", op),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				// Fail open - allow the request
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, limit, result.Remaining, result.ResetAt)

			if !result.Allowed {
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("operation", op),
					slog.String("ip", clientID),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				writeRateLimitError(w, result.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	if limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	}
}

// writeRateLimitError writes a 429 Too Many Requests response.
func writeRateLimitError(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(retryAfter.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	msg := fmt.Sprintf(`{"error":"too many attempts, please try again later","code":"RATE_LIMITED","retry_after":%d}`, seconds)
	_, _ = w.Write([]byte(msg))
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers for proxied requests.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For first (may contain multiple IPs)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// Take the first IP (client IP)
		for i := range xff {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	// Check X-Real-IP
	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	return r.RemoteAddr
}
