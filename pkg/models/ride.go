package models

import "time"

// RideStatus is the closed set of ride lifecycle states.
type RideStatus string

const (
	StatusPending       RideStatus = "PENDING"
	StatusAssigned      RideStatus = "ASSIGNED"
	StatusConfirmed     RideStatus = "CONFIRMED"
	StatusDriverEnRoute RideStatus = "DRIVER_EN_ROUTE"
	StatusPickupArrived RideStatus = "PICKUP_ARRIVED"
	StatusInProgress    RideStatus = "IN_PROGRESS"
	StatusCompleted     RideStatus = "COMPLETED"
	StatusCancelled     RideStatus = "CANCELLED"
	StatusNoShow        RideStatus = "NO_SHOW"
)

// ServiceType categorizes a ride as clinical or non-medical transport.
type ServiceType string

const (
	ServiceMedical ServiceType = "MEDICAL"
	ServiceGeneral ServiceType = "GENERAL"
)

// PaymentMethod distinguishes private pay from waiver-authorized rides.
type PaymentMethod string

const (
	PaymentPrivatePay PaymentMethod = "PRIVATE_PAY"
	PaymentWaiver     PaymentMethod = "WAIVER"
)

// Location is a pickup or dropoff point.
type Location struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Ride is a single transportation request. Driver and vehicle stay
// nil until the ride reaches ASSIGNED; FinalPrice is written exactly
// once, on the transition into COMPLETED.
type Ride struct {
	ID            string        `json:"id"`
	CustomerID    string        `json:"customer_id"`
	Pickup        Location      `json:"pickup"`
	Dropoff       Location      `json:"dropoff"`
	ScheduledTime time.Time     `json:"scheduled_time"`
	Status        RideStatus    `json:"status"`
	ServiceType   ServiceType   `json:"service_type"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	DistanceKm    *float64      `json:"distance_km,omitempty"`
	DurationMin   *float64      `json:"duration_min,omitempty"`
	BasePrice     float64       `json:"base_price"`
	FinalPrice    *float64      `json:"final_price,omitempty"`
	DriverID      *string       `json:"driver_id,omitempty"`
	VehicleID     *string       `json:"vehicle_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
