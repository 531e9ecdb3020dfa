package main

import (
	"context"
	"net/http"
	"time"

	"github.com/alikamatu/medi-rides-sub003/internal/common/response"
)

// Liveness reports only that the process is up.
func (app *Config) Liveness(w http.ResponseWriter, r *http.Request) {
	response.Success(w, "alive", map[string]string{"status": "up"})
}

// Readiness checks the dependencies a request actually needs.
func (app *Config) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{
		"database": "up",
		"redis":    "up",
	}
	healthy := true

	if err := app.DB.PingContext(ctx); err != nil {
		checks["database"] = "down"
		healthy = false
	}
	if err := app.Sessions.Ping(ctx); err != nil {
		checks["redis"] = "down"
		healthy = false
	}

	if !healthy {
		response.WriteJSON(w, http.StatusServiceUnavailable, response.Response{
			Error:   true,
			Message: "not ready",
			Data:    checks,
		})
		return
	}

	response.Success(w, "ready", checks)
}
