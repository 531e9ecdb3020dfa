package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":false,"message":"ok","data":[]}`))
	}))
	defer srv.Close()

	session := NewSession()
	session.Set("test-token", "test-refresh")
	c := New(srv.URL, session)

	if _, err := c.ListRides(context.Background(), ListOptions{}); err != nil {
		t.Fatalf("ListRides() error = %v", err)
	}

	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer test-token")
	}
}

func TestNoTokenFailsWithoutNetworkCall(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := New(srv.URL, NewSession())

	_, err := c.CreateRide(context.Background(), CreateRideInput{})
	if KindOf(err) != Unauthenticated {
		t.Fatalf("error kind = %q, want %q", KindOf(err), Unauthenticated)
	}
	if calls.Load() != 0 {
		t.Errorf("server received %d calls, want 0", calls.Load())
	}
}

func TestUnauthorizedResponseClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":true,"message":"Token has expired"}`))
	}))
	defer srv.Close()

	session := NewSession()
	session.Set("stale-token", "stale-refresh")
	c := New(srv.URL, session)

	_, err := c.GetRide(context.Background(), "ride-1")

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if apiErr.Kind != Unauthenticated {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, Unauthenticated)
	}
	if apiErr.Message != "Token has expired" {
		t.Errorf("Message = %q, want server message", apiErr.Message)
	}
	if session.IsAuthenticated() {
		t.Error("session still holds a token after 401")
	}
}

func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{"403 is unauthorized, not unauthenticated", http.StatusForbidden, `{"error":true,"message":"Insufficient permissions"}`, Unauthorized},
		{"404 is not found", http.StatusNotFound, `{"error":true,"message":"Ride not found"}`, NotFound},
		{"422 is validation failed", http.StatusUnprocessableEntity, `{"error":true,"message":"invalid ride status transition"}`, ValidationFailed},
		{"400 is validation failed", http.StatusBadRequest, `{"error":true,"message":"malformed JSON"}`, ValidationFailed},
		{"500 is a server fault", http.StatusInternalServerError, `{"error":true,"message":"Something went wrong"}`, ServerFault},
		{"empty body falls back to a status message", http.StatusInternalServerError, ``, ServerFault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			session := NewSession()
			session.Set("token", "refresh")
			c := New(srv.URL, session)

			_, err := c.GetRide(context.Background(), "ride-1")
			if KindOf(err) != tt.want {
				t.Errorf("error kind = %q, want %q", KindOf(err), tt.want)
			}

			var apiErr *Error
			if errors.As(err, &apiErr) && apiErr.Message == "" {
				t.Error("error has no message, want server message or fallback")
			}
		})
	}
}

func TestNetworkFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	session := NewSession()
	session.Set("token", "refresh")
	c := New(srv.URL, session)

	_, err := c.ListRides(context.Background(), ListOptions{})
	if KindOf(err) != TransientNetworkFailure {
		t.Errorf("error kind = %q, want %q", KindOf(err), TransientNetworkFailure)
	}
}

func TestLoginStoresTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/login" {
			t.Errorf("path = %q, want /api/v1/auth/login", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":false,"message":"Login successful","data":{
			"user":{"id":"u1","email":"rider@example.com","role":"CUSTOMER"},
			"tokens":{"access_token":"access-1","refresh_token":"refresh-1"}
		}}`))
	}))
	defer srv.Close()

	session := NewSession()
	c := New(srv.URL, session)

	result, err := c.Login(context.Background(), LoginInput{Email: "rider@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if result.User.Role != models.RoleCustomer {
		t.Errorf("User.Role = %q, want CUSTOMER", result.User.Role)
	}
	if session.AccessToken() != "access-1" {
		t.Errorf("AccessToken() = %q, want %q", session.AccessToken(), "access-1")
	}
	if session.RefreshToken() != "refresh-1" {
		t.Errorf("RefreshToken() = %q, want %q", session.RefreshToken(), "refresh-1")
	}
}

func TestLogoutClearsSessionEvenOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	session := NewSession()
	session.Set("token", "refresh")
	c := New(srv.URL, session)

	if err := c.Logout(context.Background()); err == nil {
		t.Fatal("Logout() error = nil, want server fault")
	}
	if session.IsAuthenticated() {
		t.Error("session still authenticated after logout")
	}
}

func TestListOptionsQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":false,"message":"ok","data":[]}`))
	}))
	defer srv.Close()

	session := NewSession()
	session.Set("token", "refresh")
	c := New(srv.URL, session)

	_, err := c.ListDrivers(context.Background(), ListOptions{Page: 2, Limit: 50, Search: "smith"})
	if err != nil {
		t.Fatalf("ListDrivers() error = %v", err)
	}

	want := "limit=50&page=2&search=smith"
	if gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
}

func TestNextStatusesMatchesLifecycle(t *testing.T) {
	next := NextStatuses(models.StatusPending)
	if len(next) != 3 || next[0] != models.StatusAssigned {
		t.Errorf("NextStatuses(PENDING) = %v, want ASSIGNED first", next)
	}

	if got := NextStatuses(models.StatusCompleted); got != nil {
		t.Errorf("NextStatuses(COMPLETED) = %v, want nil", got)
	}
}
