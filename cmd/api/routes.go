package main

import (
	"net/http"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/alikamatu/medi-rides-sub003/internal/common/middleware"
	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

func (app *Config) routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recovery)
	mux.Use(middleware.Logger)
	mux.Use(middleware.HTTPMetrics(serviceName))

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	lmt := tollbooth.NewLimiter(20, &limiter.ExpirableOptions{})
	lmt.SetIPLookups([]string{"X-Forwarded-For", "RemoteAddr", "X-Real-IP"})
	mux.Use(func(next http.Handler) http.Handler {
		return tollbooth.LimitHandler(lmt, next)
	})

	mux.Use(chimiddleware.Heartbeat("/ping"))

	mux.Get("/health/live", app.Liveness)
	mux.Get("/health/ready", app.Readiness)
	mux.Handle("/metrics", promhttp.Handler())

	mux.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", app.Register)
		r.Post("/auth/login", app.Login)
		r.Post("/auth/refresh", app.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(app.AuthRequired)

			r.Post("/auth/logout", app.Logout)
			r.Get("/auth/profile", app.GetProfile)
			r.Post("/auth/profile", app.UpdateProfile)

			r.Route("/rides", func(r chi.Router) {
				r.Post("/", app.CreateRide)
				r.Get("/", app.ListRides)
				r.Get("/upcoming", app.ListUpcomingRides)
				r.Get("/{id}", app.GetRide)
				r.Patch("/{id}/cancel", app.CancelRide)

				r.With(app.RequireRoles(models.RoleDriver, models.RoleDispatcher, models.RoleAdmin)).
					Patch("/{id}/status", app.UpdateRideStatus)

				r.With(app.RequireRoles(models.RoleDispatcher, models.RoleAdmin)).
					Post("/{id}/assign", app.AssignRide)
				r.With(app.RequireRoles(models.RoleDispatcher, models.RoleAdmin)).
					Delete("/{id}/assign", app.UnassignRide)
			})

			r.Route("/admin/drivers", func(r chi.Router) {
				r.Use(app.RequireRoles(models.RoleDispatcher, models.RoleAdmin))

				r.Get("/", app.ListDrivers)
				r.Get("/available", app.ListAvailableDrivers)
				r.Get("/stats", app.DriverStats)
				r.Get("/{id}", app.GetDriver)

				r.Group(func(r chi.Router) {
					r.Use(app.RequireRoles(models.RoleAdmin))

					r.Post("/", app.CreateDriver)
					r.Put("/{id}", app.UpdateDriver)
					r.Delete("/{id}", app.DeleteDriver)
					r.Put("/{id}/status", app.SetDriverAvailability)
					r.Post("/{id}/vehicles", app.AddDriverVehicle)
					r.Delete("/{id}/vehicles/{vehicleID}", app.RemoveDriverVehicle)
				})
			})

			r.With(app.RequireRoles(models.RoleDispatcher, models.RoleAdmin)).
				Get("/ws/dispatch", app.Feed.ServeWS)
		})
	})

	return otelhttp.NewHandler(mux, "medirides-api",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return !middleware.ShouldSkipTrace(r.URL.Path)
		}),
	)
}
