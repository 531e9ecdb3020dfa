package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alikamatu/medi-rides-sub003/internal/common/logger"
	"github.com/alikamatu/medi-rides-sub003/internal/common/request"
	"github.com/alikamatu/medi-rides-sub003/internal/common/response"
	"github.com/alikamatu/medi-rides-sub003/internal/drivers"
	"github.com/alikamatu/medi-rides-sub003/internal/repository"
	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

type createDriverRequest struct {
	Email         string    `json:"email" validate:"required,email"`
	Password      string    `json:"password" validate:"required,min=8"`
	FirstName     string    `json:"first_name" validate:"required"`
	LastName      string    `json:"last_name" validate:"required"`
	LicenseNumber string    `json:"license_number" validate:"required"`
	LicenseState  string    `json:"license_state" validate:"required,len=2"`
	LicenseExpiry time.Time `json:"license_expiry" validate:"required"`
}

type updateDriverRequest struct {
	LicenseNumber string    `json:"license_number" validate:"required"`
	LicenseState  string    `json:"license_state" validate:"required,len=2"`
	LicenseExpiry time.Time `json:"license_expiry" validate:"required"`
}

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

type addVehicleRequest struct {
	Make                 string    `json:"make" validate:"required"`
	Model                string    `json:"model" validate:"required"`
	Year                 int       `json:"year" validate:"required,gte=1990"`
	Color                string    `json:"color"`
	LicensePlate         string    `json:"license_plate" validate:"required"`
	VIN                  string    `json:"vin" validate:"required,len=17"`
	Capacity             int       `json:"capacity" validate:"required,gte=1"`
	WheelchairAccessible bool      `json:"wheelchair_accessible"`
	OxygenEquipped       bool      `json:"oxygen_equipped"`
	InsuranceExpiry      time.Time `json:"insurance_expiry" validate:"required"`
	RegistrationExpiry   time.Time `json:"registration_expiry" validate:"required"`
}

// CreateDriver onboards a driver account with its license profile.
func (app *Config) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var req createDriverRequest
	if err := request.ReadAndValidate(w, r, &req); err != nil {
		request.HandleError(w, err)
		return
	}

	driver, err := app.Drivers.Create(r.Context(), drivers.NewDriverInput{
		Email:         req.Email,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Password:      req.Password,
		LicenseNumber: req.LicenseNumber,
		LicenseState:  req.LicenseState,
		LicenseExpiry: req.LicenseExpiry,
	})
	if err != nil {
		if errors.Is(err, drivers.ErrEmailTaken) {
			response.BadRequest(w, "Email is already registered")
			return
		}
		response.InternalServerError(w, "Failed to create driver")
		return
	}

	response.Created(w, "Driver created", driver)
}

// ListDrivers returns the driver roster with optional search.
func (app *Config) ListDrivers(w http.ResponseWriter, r *http.Request) {
	list, err := app.Drivers.List(r.Context(), request.ReadPagination(r))
	if err != nil {
		logger.ErrorCtx(r.Context(), "Failed to list drivers", "error", err)
		response.InternalServerError(w, "Failed to list drivers")
		return
	}

	response.Success(w, "Drivers retrieved", list)
}

// ListAvailableDrivers returns drivers eligible for new assignments.
func (app *Config) ListAvailableDrivers(w http.ResponseWriter, r *http.Request) {
	list, err := app.Drivers.ListAvailable(r.Context())
	if err != nil {
		logger.ErrorCtx(r.Context(), "Failed to list available drivers", "error", err)
		response.InternalServerError(w, "Failed to list drivers")
		return
	}

	response.Success(w, "Available drivers retrieved", list)
}

// DriverStats returns fleet-level counters for the dispatch dashboard.
func (app *Config) DriverStats(w http.ResponseWriter, r *http.Request) {
	stats, err := app.Drivers.Stats(r.Context())
	if err != nil {
		logger.ErrorCtx(r.Context(), "Failed to compute driver stats", "error", err)
		response.InternalServerError(w, "Failed to compute stats")
		return
	}

	response.Success(w, "Stats retrieved", stats)
}

// GetDriver returns one driver with their vehicles.
func (app *Config) GetDriver(w http.ResponseWriter, r *http.Request) {
	driver, err := app.Drivers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, "Driver not found")
			return
		}
		response.InternalServerError(w, "Failed to load driver")
		return
	}

	response.Success(w, "Driver retrieved", driver)
}

// UpdateDriver changes license details.
func (app *Config) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	var req updateDriverRequest
	if err := request.ReadAndValidate(w, r, &req); err != nil {
		request.HandleError(w, err)
		return
	}

	driver, err := app.Drivers.Update(r.Context(), models.Driver{
		ID:            chi.URLParam(r, "id"),
		LicenseNumber: req.LicenseNumber,
		LicenseState:  req.LicenseState,
		LicenseExpiry: req.LicenseExpiry,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, "Driver not found")
			return
		}
		response.InternalServerError(w, "Failed to update driver")
		return
	}

	response.Success(w, "Driver updated", driver)
}

// DeleteDriver removes a driver and detaches their vehicles.
func (app *Config) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	err := app.Drivers.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.NotFound(w, "Driver not found")
		case errors.Is(err, drivers.ErrVehicleInUse):
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to delete driver")
		}
		return
	}

	response.Success(w, "Driver deleted", nil)
}

// SetDriverAvailability flips the availability flag.
func (app *Config) SetDriverAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := request.ReadAndValidate(w, r, &req); err != nil {
		request.HandleError(w, err)
		return
	}

	driver, err := app.Drivers.SetAvailability(r.Context(), chi.URLParam(r, "id"), *req.IsAvailable)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, "Driver not found")
			return
		}
		response.InternalServerError(w, "Failed to update availability")
		return
	}

	response.Success(w, "Availability updated", driver)
}

// AddDriverVehicle registers a vehicle under the driver.
func (app *Config) AddDriverVehicle(w http.ResponseWriter, r *http.Request) {
	var req addVehicleRequest
	if err := request.ReadAndValidate(w, r, &req); err != nil {
		request.HandleError(w, err)
		return
	}

	vehicle, err := app.Drivers.AssignVehicle(r.Context(), chi.URLParam(r, "id"), models.Vehicle{
		Make:                 req.Make,
		Model:                req.Model,
		Year:                 req.Year,
		Color:                req.Color,
		LicensePlate:         req.LicensePlate,
		VIN:                  req.VIN,
		Capacity:             req.Capacity,
		WheelchairAccessible: req.WheelchairAccessible,
		OxygenEquipped:       req.OxygenEquipped,
		InsuranceExpiry:      req.InsuranceExpiry,
		RegistrationExpiry:   req.RegistrationExpiry,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(w, "Driver not found")
			return
		}
		response.InternalServerError(w, "Failed to add vehicle")
		return
	}

	response.Created(w, "Vehicle added", vehicle)
}

// RemoveDriverVehicle detaches a vehicle from the driver.
func (app *Config) RemoveDriverVehicle(w http.ResponseWriter, r *http.Request) {
	err := app.Drivers.UnassignVehicle(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "vehicleID"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.NotFound(w, "Vehicle not found")
		case errors.Is(err, drivers.ErrVehicleNotOwned),
			errors.Is(err, drivers.ErrVehicleInUse):
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to remove vehicle")
		}
		return
	}

	response.Success(w, "Vehicle removed", nil)
}
