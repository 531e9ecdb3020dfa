package client

import (
	"testing"

	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

func TestDecide(t *testing.T) {
	staff := []models.UserRole{models.RoleDispatcher, models.RoleAdmin}

	tests := []struct {
		name            string
		isAuthenticated bool
		isLoading       bool
		role            models.UserRole
		allowedRoles    []models.UserRole
		want            Decision
	}{
		{"loading wins over everything", false, true, "", staff, ShowLoading},
		{"loading even when authenticated", true, true, models.RoleAdmin, staff, ShowLoading},
		{"unauthenticated redirects to login", false, false, "", staff, RedirectToLogin},
		{"unauthenticated redirects even with empty role set", false, false, "", nil, RedirectToLogin},
		{"authenticated wrong role is denied, not redirected", true, false, models.RoleCustomer, staff, AccessDenied},
		{"driver denied on staff-only view", true, false, models.RoleDriver, staff, AccessDenied},
		{"allowed role renders", true, false, models.RoleDispatcher, staff, Render},
		{"empty allowed set admits any authenticated role", true, false, models.RoleCustomer, nil, Render},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.isAuthenticated, tt.isLoading, tt.role, tt.allowedRoles)
			if got != tt.want {
				t.Errorf("Decide() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLandingRouteIsTotal(t *testing.T) {
	tests := []struct {
		role models.UserRole
		want string
	}{
		{models.RoleCustomer, "/dashboard"},
		{models.RoleDriver, "/driver"},
		{models.RoleDispatcher, "/dispatch"},
		{models.RoleAdmin, "/admin"},
		{"SOMETHING_ELSE", "/dashboard"},
		{"", "/dashboard"},
	}

	for _, tt := range tests {
		if got := LandingRoute(tt.role); got != tt.want {
			t.Errorf("LandingRoute(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}
