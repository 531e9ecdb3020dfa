package main

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/alikamatu/medi-rides-sub003/internal/common/jwt"
	"github.com/alikamatu/medi-rides-sub003/internal/common/logger"
	"github.com/alikamatu/medi-rides-sub003/internal/common/request"
	"github.com/alikamatu/medi-rides-sub003/internal/common/response"
	"github.com/alikamatu/medi-rides-sub003/internal/events"
	"github.com/alikamatu/medi-rides-sub003/internal/metrics"
	"github.com/alikamatu/medi-rides-sub003/internal/repository"
	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type authResponse struct {
	User   models.User   `json:"user"`
	Tokens jwt.TokenPair `json:"tokens"`
}

// Register creates a CUSTOMER account. Driver accounts are provisioned
// by admins through the fleet endpoints.
func (app *Config) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := request.ReadAndValidate(w, r, &req); err != nil {
		request.HandleError(w, err)
		return
	}

	if _, err := app.DB.GetUserByEmail(r.Context(), req.Email); err == nil {
		response.BadRequest(w, "Email is already registered")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		logger.ErrorCtx(r.Context(), "Failed to check email", "error", err)
		response.InternalServerError(w, "Failed to create account")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		response.InternalServerError(w, "Failed to create account")
		return
	}

	user, err := app.DB.CreateUser(r.Context(), models.User{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleCustomer,
		IsActive:     true,
		PasswordHash: string(hash),
	})
	if err != nil {
		logger.ErrorCtx(r.Context(), "Failed to create user", "email", req.Email, "error", err)
		response.InternalServerError(w, "Failed to create account")
		return
	}

	tokens, err := app.issueTokens(r, user)
	if err != nil {
		response.InternalServerError(w, "Failed to issue tokens")
		return
	}

	app.publishAuthEvent(r, "user.registered", events.Event{
		Name:     "USER_REGISTERED",
		ActorID:  user.ID,
		EntityID: user.ID,
	})

	logger.InfoCtx(r.Context(), "User registered", "user_id", user.ID, "email", user.Email)

	response.Created(w, "Account created", authResponse{User: user, Tokens: *tokens})
}

// Login verifies credentials and issues a token pair. Failures are
// deliberately indistinguishable between unknown email and bad
// password.
func (app *Config) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := request.ReadAndValidate(w, r, &req); err != nil {
		request.HandleError(w, err)
		return
	}

	user, err := app.DB.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		metrics.AuthFailures.Inc()
		response.Unauthorized(w, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		metrics.AuthFailures.Inc()
		logger.WarnCtx(r.Context(), "Failed login attempt", "email", req.Email)
		response.Unauthorized(w, "Invalid email or password")
		return
	}

	if !user.IsActive {
		response.Forbidden(w, "Account is deactivated")
		return
	}

	tokens, err := app.issueTokens(r, user)
	if err != nil {
		response.InternalServerError(w, "Failed to issue tokens")
		return
	}

	app.publishAuthEvent(r, "user.logged_in", events.Event{
		Name:     "USER_LOGGED_IN",
		ActorID:  user.ID,
		EntityID: user.ID,
	})

	logger.InfoCtx(r.Context(), "User logged in", "user_id", user.ID, "role", user.Role)

	response.Success(w, "Login successful", authResponse{User: user, Tokens: *tokens})
}

// Refresh rotates the token pair. The presented refresh token must
// match the one held in the session store; rotation invalidates it.
func (app *Config) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := request.ReadAndValidate(w, r, &req); err != nil {
		request.HandleError(w, err)
		return
	}

	claims, err := jwt.ValidateToken(req.RefreshToken, app.JWTSecret)
	if err != nil {
		metrics.AuthFailures.Inc()
		response.Unauthorized(w, "Invalid refresh token")
		return
	}

	if err := app.Sessions.ValidateRefreshToken(r.Context(), claims.UserID, req.RefreshToken); err != nil {
		metrics.AuthFailures.Inc()
		response.Unauthorized(w, "Session expired, please log in again")
		return
	}

	user, err := app.DB.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		response.Unauthorized(w, "Invalid refresh token")
		return
	}

	tokens, err := app.issueTokens(r, user)
	if err != nil {
		response.InternalServerError(w, "Failed to issue tokens")
		return
	}

	response.Success(w, "Token refreshed", authResponse{User: user, Tokens: *tokens})
}

// Logout revokes the server-side session. The access token simply
// ages out.
func (app *Config) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := app.Sessions.Revoke(r.Context(), claims.UserID); err != nil {
		logger.ErrorCtx(r.Context(), "Failed to revoke session", "user_id", claims.UserID, "error", err)
		response.InternalServerError(w, "Failed to log out")
		return
	}

	app.publishAuthEvent(r, "user.logged_out", events.Event{
		Name:     "USER_LOGGED_OUT",
		ActorID:  claims.UserID,
		EntityID: claims.UserID,
	})

	response.Success(w, "Logged out", nil)
}

// GetProfile returns the authenticated user's record.
func (app *Config) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	user, err := app.DB.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		response.NotFound(w, "User not found")
		return
	}

	response.Success(w, "Profile retrieved", user)
}

type updateProfileRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// UpdateProfile changes name fields only. Email and role are fixed.
func (app *Config) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req updateProfileRequest
	if err := request.ReadAndValidate(w, r, &req); err != nil {
		request.HandleError(w, err)
		return
	}

	user, err := app.DB.UpdateProfile(r.Context(), claims.UserID, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		logger.ErrorCtx(r.Context(), "Failed to update profile", "user_id", claims.UserID, "error", err)
		response.InternalServerError(w, "Failed to update profile")
		return
	}

	response.Success(w, "Profile updated", user)
}

func (app *Config) issueTokens(r *http.Request, user models.User) (*jwt.TokenPair, error) {
	tokens, err := jwt.GenerateTokenPair(
		user.ID, user.Email, string(user.Role),
		app.JWTSecret, app.JWTExpiry, app.RefreshExpiry,
	)
	if err != nil {
		logger.ErrorCtx(r.Context(), "Failed to generate tokens", "user_id", user.ID, "error", err)
		return nil, err
	}

	if err := app.Sessions.SaveRefreshToken(r.Context(), user.ID, tokens.RefreshToken); err != nil {
		logger.ErrorCtx(r.Context(), "Failed to save session", "user_id", user.ID, "error", err)
		return nil, err
	}

	return tokens, nil
}

func (app *Config) publishAuthEvent(r *http.Request, routingKey string, event events.Event) {
	if app.Events == nil {
		return
	}

	go func() {
		if err := app.Events.Publish(context.Background(), routingKey, event); err != nil {
			logger.Error("Failed to publish auth event", "event", event.Name, "error", err)
		}
	}()
}
