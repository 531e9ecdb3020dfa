package client

import (
	"context"
	"net/http"
	"time"

	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

// CreateDriverInput onboards a driver account (admin only).
type CreateDriverInput struct {
	Email         string    `json:"email"`
	Password      string    `json:"password"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	LicenseNumber string    `json:"license_number"`
	LicenseState  string    `json:"license_state"`
	LicenseExpiry time.Time `json:"license_expiry"`
}

// CreateDriver onboards a driver.
func (c *Client) CreateDriver(ctx context.Context, input CreateDriverInput) (models.Driver, error) {
	var driver models.Driver
	err := c.do(ctx, http.MethodPost, "/api/v1/admin/drivers", input, &driver, true)
	return driver, err
}

// ListDrivers returns the roster with optional search.
func (c *Client) ListDrivers(ctx context.Context, opts ListOptions) ([]models.Driver, error) {
	var drivers []models.Driver
	err := c.do(ctx, http.MethodGet, "/api/v1/admin/drivers"+opts.query(), nil, &drivers, true)
	return drivers, err
}

// AvailableDrivers returns drivers eligible for new assignment. The
// availability filter is server-enforced; do not locally re-include
// drivers a previous query returned.
func (c *Client) AvailableDrivers(ctx context.Context) ([]models.Driver, error) {
	var drivers []models.Driver
	err := c.do(ctx, http.MethodGet, "/api/v1/admin/drivers/available", nil, &drivers, true)
	return drivers, err
}

// DriverStats returns fleet-level counters.
func (c *Client) DriverStats(ctx context.Context) (models.DriverStats, error) {
	var stats models.DriverStats
	err := c.do(ctx, http.MethodGet, "/api/v1/admin/drivers/stats", nil, &stats, true)
	return stats, err
}

// GetDriver returns one driver with vehicles.
func (c *Client) GetDriver(ctx context.Context, id string) (models.Driver, error) {
	var driver models.Driver
	err := c.do(ctx, http.MethodGet, "/api/v1/admin/drivers/"+id, nil, &driver, true)
	return driver, err
}

// UpdateDriverInput changes license details.
type UpdateDriverInput struct {
	LicenseNumber string    `json:"license_number"`
	LicenseState  string    `json:"license_state"`
	LicenseExpiry time.Time `json:"license_expiry"`
}

// UpdateDriver updates license details.
func (c *Client) UpdateDriver(ctx context.Context, id string, input UpdateDriverInput) (models.Driver, error) {
	var driver models.Driver
	err := c.do(ctx, http.MethodPut, "/api/v1/admin/drivers/"+id, input, &driver, true)
	return driver, err
}

// DeleteDriver removes a driver.
func (c *Client) DeleteDriver(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/admin/drivers/"+id, nil, nil, true)
}

// SetDriverAvailability flips the availability flag.
func (c *Client) SetDriverAvailability(ctx context.Context, id string, available bool) (models.Driver, error) {
	body := map[string]bool{"is_available": available}

	var driver models.Driver
	err := c.do(ctx, http.MethodPut, "/api/v1/admin/drivers/"+id+"/status", body, &driver, true)
	return driver, err
}

// AddVehicleInput registers a vehicle under a driver.
type AddVehicleInput struct {
	Make                 string    `json:"make"`
	Model                string    `json:"model"`
	Year                 int       `json:"year"`
	Color                string    `json:"color,omitempty"`
	LicensePlate         string    `json:"license_plate"`
	VIN                  string    `json:"vin"`
	Capacity             int       `json:"capacity"`
	WheelchairAccessible bool      `json:"wheelchair_accessible"`
	OxygenEquipped       bool      `json:"oxygen_equipped"`
	InsuranceExpiry      time.Time `json:"insurance_expiry"`
	RegistrationExpiry   time.Time `json:"registration_expiry"`
}

// AddDriverVehicle registers a vehicle under the driver.
func (c *Client) AddDriverVehicle(ctx context.Context, driverID string, input AddVehicleInput) (models.Vehicle, error) {
	var vehicle models.Vehicle
	err := c.do(ctx, http.MethodPost, "/api/v1/admin/drivers/"+driverID+"/vehicles", input, &vehicle, true)
	return vehicle, err
}

// RemoveDriverVehicle detaches a vehicle from the driver.
func (c *Client) RemoveDriverVehicle(ctx context.Context, driverID, vehicleID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/admin/drivers/"+driverID+"/vehicles/"+vehicleID, nil, nil, true)
}
