package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/alikamatu/medi-rides-sub003/internal/common/jwt"
	"github.com/alikamatu/medi-rides-sub003/internal/common/response"
	"github.com/alikamatu/medi-rides-sub003/internal/metrics"
	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

type contextKey string

const claimsKey contextKey = "claims"

// AuthRequired validates the bearer token and puts the claims in the
// request context.
func (app *Config) AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := jwt.ValidateToken(parts[1], app.JWTSecret)
		if err != nil {
			metrics.AuthFailures.Inc()
			if errors.Is(err, jwt.ErrExpiredToken) {
				response.Unauthorized(w, "Token has expired")
				return
			}
			response.Unauthorized(w, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles allows only the named roles past. Unauthenticated
// requests get 401; authenticated ones with the wrong role get 403.
func (app *Config) RequireRoles(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			if claims == nil {
				response.Unauthorized(w, "Authentication required")
				return
			}

			for _, role := range roles {
				if models.UserRole(claims.Role) == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "Insufficient permissions")
		})
	}
}

// GetClaims returns the authenticated claims, or nil outside
// AuthRequired.
func GetClaims(ctx context.Context) *jwt.Claims {
	claims, _ := ctx.Value(claimsKey).(*jwt.Claims)
	return claims
}
