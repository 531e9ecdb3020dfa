package client

import (
	"context"
	"net/http"
	"time"

	"github.com/alikamatu/medi-rides-sub003/internal/lifecycle"
	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

// CreateRideInput is the booking form payload. CustomerID is only
// honored for dispatcher and admin callers.
type CreateRideInput struct {
	CustomerID    string               `json:"customer_id,omitempty"`
	Pickup        models.Location      `json:"pickup"`
	Dropoff       models.Location      `json:"dropoff"`
	ScheduledTime time.Time            `json:"scheduled_time"`
	ServiceType   models.ServiceType   `json:"service_type"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
}

// CreateRide books a new ride.
func (c *Client) CreateRide(ctx context.Context, input CreateRideInput) (models.Ride, error) {
	var ride models.Ride
	err := c.do(ctx, http.MethodPost, "/api/v1/rides", input, &ride, true)
	return ride, err
}

// ListRides returns the caller's rides, role-scoped by the server.
func (c *Client) ListRides(ctx context.Context, opts ListOptions) ([]models.Ride, error) {
	var rides []models.Ride
	err := c.do(ctx, http.MethodGet, "/api/v1/rides"+opts.query(), nil, &rides, true)
	return rides, err
}

// UpcomingRides returns future, non-terminal rides.
func (c *Client) UpcomingRides(ctx context.Context, opts ListOptions) ([]models.Ride, error) {
	var rides []models.Ride
	err := c.do(ctx, http.MethodGet, "/api/v1/rides/upcoming"+opts.query(), nil, &rides, true)
	return rides, err
}

// GetRide returns one ride.
func (c *Client) GetRide(ctx context.Context, id string) (models.Ride, error) {
	var ride models.Ride
	err := c.do(ctx, http.MethodGet, "/api/v1/rides/"+id, nil, &ride, true)
	return ride, err
}

// CancelRide moves the ride to CANCELLED.
func (c *Client) CancelRide(ctx context.Context, id string) (models.Ride, error) {
	var ride models.Ride
	err := c.do(ctx, http.MethodPatch, "/api/v1/rides/"+id+"/cancel", nil, &ride, true)
	return ride, err
}

// UpdateRideStatusInput requests one lifecycle transition. FinalPrice
// is only accepted on the transition into COMPLETED.
type UpdateRideStatusInput struct {
	Status     models.RideStatus `json:"status"`
	FinalPrice *float64          `json:"final_price,omitempty"`
}

// UpdateRideStatus applies a lifecycle transition. An illegal
// transition comes back as ValidationFailed with transition detail.
func (c *Client) UpdateRideStatus(ctx context.Context, id string, input UpdateRideStatusInput) (models.Ride, error) {
	var ride models.Ride
	err := c.do(ctx, http.MethodPatch, "/api/v1/rides/"+id+"/status", input, &ride, true)
	return ride, err
}

// AssignRide places a driver/vehicle pair on a pending ride.
func (c *Client) AssignRide(ctx context.Context, id, driverID, vehicleID string) (models.Ride, error) {
	body := map[string]string{"driver_id": driverID, "vehicle_id": vehicleID}

	var ride models.Ride
	err := c.do(ctx, http.MethodPost, "/api/v1/rides/"+id+"/assign", body, &ride, true)
	return ride, err
}

// UnassignRide removes the assignment and reverts the ride to PENDING.
func (c *Client) UnassignRide(ctx context.Context, id string) (models.Ride, error) {
	var ride models.Ride
	err := c.do(ctx, http.MethodDelete, "/api/v1/rides/"+id+"/assign", nil, &ride, true)
	return ride, err
}

// NextStatuses returns the legal next statuses for a ride so UIs can
// offer only valid actions. Derived from the transition table, never
// hardcoded per screen.
func NextStatuses(current models.RideStatus) []models.RideStatus {
	return lifecycle.NextStatuses(current)
}
