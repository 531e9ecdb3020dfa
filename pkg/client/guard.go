package client

import "github.com/alikamatu/medi-rides-sub003/pkg/models"

// Decision is the outcome of the access guard for a protected view.
type Decision int

const (
	// ShowLoading means the auth state is still resolving; render a
	// neutral loading view and make no redirect decision yet.
	ShowLoading Decision = iota
	// RedirectToLogin means no authenticated identity is present.
	RedirectToLogin
	// AccessDenied means the identity is valid but its role is not in
	// the allowed set. This is not a login problem; do not redirect.
	AccessDenied
	// Render means the protected content may be shown.
	Render
)

func (d Decision) String() string {
	switch d {
	case ShowLoading:
		return "show_loading"
	case RedirectToLogin:
		return "redirect_to_login"
	case AccessDenied:
		return "access_denied"
	case Render:
		return "render"
	}
	return "unknown"
}

// Decide applies the access guard. An empty allowedRoles set admits
// any authenticated role.
func Decide(isAuthenticated, isLoading bool, role models.UserRole, allowedRoles []models.UserRole) Decision {
	if isLoading {
		return ShowLoading
	}
	if !isAuthenticated {
		return RedirectToLogin
	}
	if len(allowedRoles) == 0 {
		return Render
	}

	for _, allowed := range allowedRoles {
		if role == allowed {
			return Render
		}
	}
	return AccessDenied
}

// defaultRoute is the landing route for unknown roles.
const defaultRoute = "/dashboard"

// LandingRoute maps a role to its default landing route. Total over
// all inputs; unknown roles get the generic dashboard.
func LandingRoute(role models.UserRole) string {
	switch role {
	case models.RoleCustomer:
		return "/dashboard"
	case models.RoleDriver:
		return "/driver"
	case models.RoleDispatcher:
		return "/dispatch"
	case models.RoleAdmin:
		return "/admin"
	}
	return defaultRoute
}
