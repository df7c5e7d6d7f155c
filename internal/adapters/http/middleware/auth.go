package middleware

import (
	"context"
	"net/http"
	"strings"

	"authgate/internal/adapters/http/response"
	"authgate/internal/domain"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// Bearer authenticates the request with the Authorization header and stores
// the verified claims in the request context.
func Bearer(svc domain.AuthService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				response.AuthError(w, "Authentication credentials were not provided.", "not_authenticated", nil)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.AuthError(w, "Authorization header must be of the form: Bearer <token>.", "not_authenticated", nil)
				return
			}

			claims, err := svc.Authenticate(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				response.AuthError(w, "Given token not valid for any token type", "token_not_valid",
					[]string{"Token is invalid or expired"})
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by Bearer.
func ClaimsFromContext(ctx context.Context) (*domain.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*domain.TokenClaims)
	return claims, ok
}
