// Package middleware holds the request-pipeline filters: bearer token
// authentication, role gating and rate limiting.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jobboardhq/job-board-api/internal/auth"
	"github.com/jobboardhq/job-board-api/internal/model"
	"github.com/jobboardhq/job-board-api/internal/payload"
)

type contextKey struct{}

var claimsKey contextKey

var (
	errMissingHeader = errors.New("missing authorization header")
	errInvalidHeader = errors.New("invalid authorization header format")
)

// Authenticate verifies the bearer access token and stores its claims in
// the request context. It has no side effects beyond the context value.
func Authenticate(jwtAuth auth.JWTAuthenticator, accessSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := jwtAuth.ValidateToken(token, accessSecret, auth.TokenTypeAccess)
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated requests whose role claim does not
// match. It composes after Authenticate.
func RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeDetail(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if claims.Role != role {
				writeDetail(w, http.StatusForbidden, "you do not have permission to perform this action")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext extracts the verified token claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errMissingHeader
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errInvalidHeader
	}

	return parts[1], nil
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload.DetailResponse{Detail: detail})
}
