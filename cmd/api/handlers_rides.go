package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alikamatu/medi-rides-sub003/internal/common/logger"
	"github.com/alikamatu/medi-rides-sub003/internal/common/request"
	"github.com/alikamatu/medi-rides-sub003/internal/common/response"
	"github.com/alikamatu/medi-rides-sub003/internal/lifecycle"
	"github.com/alikamatu/medi-rides-sub003/internal/repository"
	"github.com/alikamatu/medi-rides-sub003/internal/rides"
	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

type locationRequest struct {
	Address string  `json:"address" validate:"required"`
	Lat     float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng     float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type createRideRequest struct {
	CustomerID    string          `json:"customer_id,omitempty"`
	Pickup        locationRequest `json:"pickup" validate:"required"`
	Dropoff       locationRequest `json:"dropoff" validate:"required"`
	ScheduledTime time.Time       `json:"scheduled_time" validate:"required"`
	ServiceType   string          `json:"service_type" validate:"required,oneof=MEDICAL GENERAL"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=PRIVATE_PAY WAIVER"`
}

type updateStatusRequest struct {
	Status     string   `json:"status" validate:"required"`
	FinalPrice *float64 `json:"final_price,omitempty" validate:"omitempty,gte=0"`
}

type assignRideRequest struct {
	DriverID  string `json:"driver_id" validate:"required"`
	VehicleID string `json:"vehicle_id" validate:"required"`
}

// CreateRide books a ride. Customers book for themselves; dispatchers
// and admins may book on behalf of a customer.
func (app *Config) CreateRide(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createRideRequest
	if err := request.ReadAndValidate(w, r, &req); err != nil {
		request.HandleError(w, err)
		return
	}

	customerID := claims.UserID
	switch models.UserRole(claims.Role) {
	case models.RoleAdmin, models.RoleDispatcher:
		if req.CustomerID != "" {
			customerID = req.CustomerID
		}
	default:
		if req.CustomerID != "" && req.CustomerID != claims.UserID {
			response.Forbidden(w, "Cannot book rides for another customer")
			return
		}
	}

	ride, err := app.Rides.Create(r.Context(), models.Ride{
		CustomerID:    customerID,
		Pickup:        models.Location(req.Pickup),
		Dropoff:       models.Location(req.Dropoff),
		ScheduledTime: req.ScheduledTime,
		ServiceType:   models.ServiceType(req.ServiceType),
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		response.InternalServerError(w, "Failed to create ride")
		return
	}

	response.Created(w, "Ride booked", ride)
}

// ListRides returns rides scoped to the caller: customers see their
// own, drivers see rides assigned to them, staff see everything.
func (app *Config) ListRides(w http.ResponseWriter, r *http.Request) {
	app.listRides(w, r, false)
}

// ListUpcomingRides returns future, non-terminal rides with the same
// role scoping as ListRides.
func (app *Config) ListUpcomingRides(w http.ResponseWriter, r *http.Request) {
	app.listRides(w, r, true)
}

func (app *Config) listRides(w http.ResponseWriter, r *http.Request, upcoming bool) {
	claims := GetClaims(r.Context())
	p := request.ReadPagination(r)

	var (
		list []models.Ride
		err  error
	)

	switch models.UserRole(claims.Role) {
	case models.RoleDriver:
		driver, derr := app.DB.GetDriverByUserID(r.Context(), claims.UserID)
		if derr != nil {
			response.NotFound(w, "Driver profile not found")
			return
		}
		list, err = app.DB.ListRidesByDriver(r.Context(), driver.ID, p)
	case models.RoleAdmin, models.RoleDispatcher:
		if upcoming {
			list, err = app.DB.ListUpcomingRides(r.Context(), "", p)
		} else {
			list, err = app.DB.ListRides(r.Context(), "", p)
		}
	default:
		if upcoming {
			list, err = app.DB.ListUpcomingRides(r.Context(), claims.UserID, p)
		} else {
			list, err = app.DB.ListRides(r.Context(), claims.UserID, p)
		}
	}

	if err != nil {
		logger.ErrorCtx(r.Context(), "Failed to list rides", "error", err)
		response.InternalServerError(w, "Failed to list rides")
		return
	}

	response.Success(w, "Rides retrieved", list)
}

// GetRide returns one ride if the caller is allowed to see it.
func (app *Config) GetRide(w http.ResponseWriter, r *http.Request) {
	ride, ok := app.loadRideForCaller(w, r)
	if !ok {
		return
	}

	response.Success(w, "Ride retrieved", ride)
}

// UpdateRideStatus applies one lifecycle transition to the ride.
// Drivers may only move their own rides.
func (app *Config) UpdateRideStatus(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	current, ok := app.loadRideForCaller(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := request.ReadAndValidate(w, r, &req); err != nil {
		request.HandleError(w, err)
		return
	}

	status := models.RideStatus(req.Status)
	if !lifecycle.Known(status) {
		response.BadRequest(w, "Unknown ride status: "+req.Status)
		return
	}

	ride, err := app.Rides.UpdateStatus(r.Context(), current.ID, claims.UserID, lifecycle.Change{
		To:         status,
		FinalPrice: req.FinalPrice,
	})
	if err != nil {
		app.writeRideError(w, err)
		return
	}

	response.Success(w, "Ride status updated", ride)
}

// CancelRide is the customer-facing shortcut for the CANCELLED
// transition.
func (app *Config) CancelRide(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	ride, ok := app.loadRideForCaller(w, r)
	if !ok {
		return
	}

	updated, err := app.Rides.UpdateStatus(r.Context(), ride.ID, claims.UserID, lifecycle.Change{
		To: models.StatusCancelled,
	})
	if err != nil {
		app.writeRideError(w, err)
		return
	}

	response.Success(w, "Ride cancelled", updated)
}

// AssignRide places a driver and vehicle on a pending ride.
func (app *Config) AssignRide(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	rideID := chi.URLParam(r, "id")

	var req assignRideRequest
	if err := request.ReadAndValidate(w, r, &req); err != nil {
		request.HandleError(w, err)
		return
	}

	ride, err := app.Rides.Assign(r.Context(), rideID, req.DriverID, req.VehicleID, claims.UserID)
	if err != nil {
		app.writeRideError(w, err)
		return
	}

	response.Success(w, "Ride assigned", ride)
}

// UnassignRide removes the driver/vehicle pair and reverts the ride
// to pending.
func (app *Config) UnassignRide(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	rideID := chi.URLParam(r, "id")

	ride, err := app.Rides.Unassign(r.Context(), rideID, claims.UserID)
	if err != nil {
		app.writeRideError(w, err)
		return
	}

	response.Success(w, "Ride unassigned", ride)
}

// loadRideForCaller fetches the ride and enforces visibility: the
// booking customer, the assigned driver, and staff may see it.
func (app *Config) loadRideForCaller(w http.ResponseWriter, r *http.Request) (models.Ride, bool) {
	claims := GetClaims(r.Context())
	rideID := chi.URLParam(r, "id")

	ride, err := app.DB.GetRide(r.Context(), rideID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, "Ride not found")
		} else {
			logger.ErrorCtx(r.Context(), "Failed to load ride", "ride_id", rideID, "error", err)
			response.InternalServerError(w, "Failed to load ride")
		}
		return models.Ride{}, false
	}

	switch models.UserRole(claims.Role) {
	case models.RoleAdmin, models.RoleDispatcher:
		return ride, true
	case models.RoleDriver:
		driver, err := app.DB.GetDriverByUserID(r.Context(), claims.UserID)
		if err == nil && ride.DriverID != nil && *ride.DriverID == driver.ID {
			return ride, true
		}
	default:
		if ride.CustomerID == claims.UserID {
			return ride, true
		}
	}

	response.Forbidden(w, "You do not have access to this ride")
	return models.Ride{}, false
}

// writeRideError maps service errors onto the REST error taxonomy.
// Lifecycle violations are 422 so clients can distinguish them from
// malformed requests.
func (app *Config) writeRideError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		response.NotFound(w, "Record not found")
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		response.UnprocessableEntity(w, err.Error(), response.ErrorDetail{
			Field:   "status",
			Message: err.Error(),
			Code:    "INVALID_TRANSITION",
		})
	case errors.Is(err, lifecycle.ErrMissingAssignment):
		response.UnprocessableEntity(w, err.Error(), response.ErrorDetail{
			Field:   "status",
			Message: err.Error(),
			Code:    "MISSING_ASSIGNMENT",
		})
	case errors.Is(err, lifecycle.ErrFinalPriceNotAllowed):
		response.UnprocessableEntity(w, err.Error(), response.ErrorDetail{
			Field:   "final_price",
			Message: err.Error(),
			Code:    "FINAL_PRICE_NOT_ALLOWED",
		})
	case errors.Is(err, rides.ErrDriverUnavailable),
		errors.Is(err, rides.ErrVehicleUnavailable):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, "Something went wrong")
	}
}
