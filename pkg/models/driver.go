package models

import "time"

// Driver is a user with a driver profile. A driver with
// IsAvailable=false must never be offered for new assignment.
type Driver struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	LicenseNumber string    `json:"license_number"`
	LicenseState  string    `json:"license_state"`
	LicenseExpiry time.Time `json:"license_expiry"`
	IsAvailable   bool      `json:"is_available"`
	Rating        float64   `json:"rating"`
	TotalTrips    int       `json:"total_trips"`
	Vehicles      []Vehicle `json:"vehicles,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DriverStats is the aggregate view served to the admin dashboard.
type DriverStats struct {
	TotalDrivers     int     `json:"total_drivers"`
	AvailableDrivers int     `json:"available_drivers"`
	ActiveRides      int     `json:"active_rides"`
	AverageRating    float64 `json:"average_rating"`
}
