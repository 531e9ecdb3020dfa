package models

import "time"

// VehicleStatus is the closed set of vehicle states. IN_USE implies
// an assigned driver and an active ride referencing the vehicle;
// MAINTENANCE implies no active ride assignment.
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "AVAILABLE"
	VehicleInUse       VehicleStatus = "IN_USE"
	VehicleMaintenance VehicleStatus = "MAINTENANCE"
)

// Vehicle is a fleet vehicle with its accessibility equipment and
// paperwork expiry dates.
type Vehicle struct {
	ID                   string        `json:"id"`
	Make                 string        `json:"make"`
	Model                string        `json:"model"`
	Year                 int           `json:"year"`
	Color                string        `json:"color"`
	LicensePlate         string        `json:"license_plate"`
	VIN                  string        `json:"vin"`
	Capacity             int           `json:"capacity"`
	WheelchairAccessible bool          `json:"wheelchair_accessible"`
	OxygenEquipped       bool          `json:"oxygen_equipped"`
	InsuranceExpiry      time.Time     `json:"insurance_expiry"`
	RegistrationExpiry   time.Time     `json:"registration_expiry"`
	Status               VehicleStatus `json:"status"`
	DriverID             *string       `json:"driver_id,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}
