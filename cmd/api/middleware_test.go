package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alikamatu/medi-rides-sub003/internal/common/jwt"
	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

const testSecret = "test-secret"

func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetClaims(r.Context()) == nil {
			t.Error("handler reached without claims in context")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRequired(t *testing.T) {
	app := &Config{JWTSecret: testSecret}

	validToken, err := jwt.GenerateToken("u1", "rider@example.com", "CUSTOMER", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	expiredToken, err := jwt.GenerateToken("u1", "rider@example.com", "CUSTOMER", testSecret, -time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer scheme", "Basic abc123", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"expired token", "Bearer " + expiredToken, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + mustToken(t, "other-secret"), http.StatusUnauthorized},
		{"valid token", "Bearer " + validToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/rides", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			app.AuthRequired(okHandler(t)).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	app := &Config{JWTSecret: testSecret}
	protected := app.AuthRequired(
		app.RequireRoles(models.RoleDispatcher, models.RoleAdmin)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
		),
	)

	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"customer is forbidden", "CUSTOMER", http.StatusForbidden},
		{"driver is forbidden", "DRIVER", http.StatusForbidden},
		{"dispatcher is allowed", "DISPATCHER", http.StatusOK},
		{"admin is allowed", "ADMIN", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwt.GenerateToken("u1", "user@example.com", tt.role, testSecret, time.Hour)
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}

			req := httptest.NewRequest(http.MethodGet, "/drivers", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("role %s: status = %d, want %d", tt.role, rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireRolesWithoutAuthIs401(t *testing.T) {
	app := &Config{JWTSecret: testSecret}

	// RequireRoles without AuthRequired in front sees no claims and
	// must answer 401, not 403.
	handler := app.RequireRoles(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/drivers", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func mustToken(t *testing.T, secret string) string {
	t.Helper()
	token, err := jwt.GenerateToken("u1", "user@example.com", "CUSTOMER", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return token
}
