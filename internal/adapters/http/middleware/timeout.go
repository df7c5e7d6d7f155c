package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout bounds every collaborator call made during the request. Handlers
// see the deadline through the request context and fail closed on expiry.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
