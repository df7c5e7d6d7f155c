package middleware

import (
	"net/http"
	"strings"
	"time"

	"authgate/internal/adapters/http/response"
	"authgate/internal/domain"
	"authgate/internal/logger"
)

// RateLimit caps attempts per client IP for one endpoint class within a
// sliding window. Limiter outages fail closed.
func RateLimit(limiter domain.RateLimiter, log logger.Logger, class string, limit int, window time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r) + ":" + class

			allowed, retryAfter, err := limiter.Allow(r.Context(), key, limit, window)
			if err != nil {
				log.Error("rate limiter failed", "class", class, "error", err)
				response.InternalError(w)
				return
			}

			if !allowed {
				response.RateLimitError(w, retryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	xForwardedFor := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xForwardedFor != "" {
		parts := strings.Split(xForwardedFor, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	if host := r.RemoteAddr; host != "" {
		if idx := strings.LastIndex(host, ":"); idx > 0 {
			return host[:idx]
		}
		return host
	}

	return "unknown"
}
