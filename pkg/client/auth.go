package client

import (
	"context"
	"net/http"

	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

// TokenPair is the access/refresh pair issued by the API.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResult is returned by Login, Register and Refresh.
type AuthResult struct {
	User   models.User `json:"user"`
	Tokens TokenPair   `json:"tokens"`
}

// LoginInput are the credentials for Login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput creates a customer account.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Login authenticates and stores the issued tokens in the session.
func (c *Client) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", input, &result, false); err != nil {
		return AuthResult{}, err
	}

	c.session.Set(result.Tokens.AccessToken, result.Tokens.RefreshToken)
	return result, nil
}

// Register creates a customer account and stores the issued tokens.
func (c *Client) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", input, &result, false); err != nil {
		return AuthResult{}, err
	}

	c.session.Set(result.Tokens.AccessToken, result.Tokens.RefreshToken)
	return result, nil
}

// Refresh exchanges the stored refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context) (AuthResult, error) {
	refresh := c.session.RefreshToken()
	if refresh == "" {
		return AuthResult{}, &Error{
			Kind:    Unauthenticated,
			Message: "no refresh token, please log in",
		}
	}

	body := map[string]string{"refresh_token": refresh}

	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", body, &result, false); err != nil {
		return AuthResult{}, err
	}

	c.session.Set(result.Tokens.AccessToken, result.Tokens.RefreshToken)
	return result, nil
}

// Logout revokes the server session and clears local tokens. The
// session is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil, true)
	c.session.Clear()
	return err
}

// Profile returns the authenticated user's record.
func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodGet, "/api/v1/auth/profile", nil, &user, true)
	return user, err
}

// UpdateProfileInput changes the caller's name fields.
type UpdateProfileInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UpdateProfile updates the authenticated user's name.
func (c *Client) UpdateProfile(ctx context.Context, input UpdateProfileInput) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/profile", input, &user, true)
	return user, err
}
