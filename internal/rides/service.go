// Package rides owns ride booking and the lifecycle side effects:
// pricing, vehicle state, driver counters, events and the dispatch
// feed.
package rides

import (
	"context"
	"errors"
	"fmt"

	"github.com/alikamatu/medi-rides-sub003/internal/common/logger"
	"github.com/alikamatu/medi-rides-sub003/internal/events"
	"github.com/alikamatu/medi-rides-sub003/internal/lifecycle"
	"github.com/alikamatu/medi-rides-sub003/internal/metrics"
	"github.com/alikamatu/medi-rides-sub003/internal/repository"
	"github.com/alikamatu/medi-rides-sub003/internal/routing"
	"github.com/alikamatu/medi-rides-sub003/internal/ws"
	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

var (
	// ErrDriverUnavailable is returned when assignment targets a
	// driver whose availability flag is off.
	ErrDriverUnavailable = errors.New("driver is not available for assignment")
	// ErrVehicleUnavailable is returned when the vehicle is in
	// maintenance, already on a ride, or not owned by the driver.
	ErrVehicleUnavailable = errors.New("vehicle is not available for assignment")
)

// minimumFare is charged when the routing provider gave no distance.
const minimumFare = 15.0

// perKmRate mirrors the provisional rate used at booking time.
const perKmRate = 2.25

// Service coordinates ride state. Events and Feed may be nil; rides
// still work without the broker or any connected dashboard.
type Service struct {
	DB      repository.DatabaseRepo
	Routing *routing.Loader
	Events  *events.Publisher
	Feed    *ws.Hub
}

// statusEvent is what the dispatch feed receives on every change.
type statusEvent struct {
	Type      string            `json:"type"`
	RideID    string            `json:"ride_id"`
	Status    models.RideStatus `json:"status"`
	DriverID  *string           `json:"driver_id,omitempty"`
	VehicleID *string           `json:"vehicle_id,omitempty"`
}

// Create books a new ride. Distance, duration and the base price come
// from the routing provider; a provider outage degrades to the
// minimum fare rather than blocking the booking.
func (s *Service) Create(ctx context.Context, ride models.Ride) (models.Ride, error) {
	ride.BasePrice = minimumFare

	if s.Routing != nil {
		provider, err := s.Routing.Load(ctx)
		if err != nil {
			logger.WarnCtx(ctx, "Routing provider unavailable, using minimum fare", "error", err)
		} else {
			summary, err := provider.GetRouteSummary(ctx, ride.Pickup, ride.Dropoff)
			if err != nil {
				logger.WarnCtx(ctx, "Failed to get route summary, using minimum fare", "error", err)
			} else if summary.DistanceKm > 0 {
				ride.DistanceKm = &summary.DistanceKm
				ride.DurationMin = &summary.DurationMin
				if summary.FareEstimate > minimumFare {
					ride.BasePrice = summary.FareEstimate
				}
			}
		}
	}

	created, err := s.DB.CreateRide(ctx, ride)
	if err != nil {
		logger.ErrorCtx(ctx, "Failed to create ride", "error", err)
		return models.Ride{}, err
	}

	metrics.RidesCreated.Inc()
	s.publish(ctx, "ride.created", events.Event{
		Name:     "RIDE_CREATED",
		ActorID:  created.CustomerID,
		EntityID: created.ID,
		Status:   string(created.Status),
	})

	logger.InfoCtx(ctx, "Ride created",
		"ride_id", created.ID,
		"customer_id", created.CustomerID,
		"service_type", created.ServiceType,
	)

	return created, nil
}

// UpdateStatus applies one lifecycle transition. Validation errors
// wrap the lifecycle sentinels so handlers can map them to 422.
func (s *Service) UpdateStatus(ctx context.Context, rideID, actorID string, change lifecycle.Change) (models.Ride, error) {
	ride, err := s.DB.GetRide(ctx, rideID)
	if err != nil {
		return models.Ride{}, err
	}

	if err := lifecycle.Validate(&ride, change); err != nil {
		metrics.RejectedTransitions.Inc()
		logger.WarnCtx(ctx, "Rejected ride transition",
			"ride_id", rideID,
			"from", ride.Status,
			"to", change.To,
			"error", err,
		)
		return models.Ride{}, err
	}

	finalPrice := change.FinalPrice
	if change.To == models.StatusCompleted && finalPrice == nil {
		price := s.computeFinalPrice(&ride)
		finalPrice = &price
	}

	from := ride.Status
	updated, err := s.DB.UpdateRideStatus(ctx, rideID, change.To, finalPrice)
	if err != nil {
		logger.ErrorCtx(ctx, "Failed to update ride status", "ride_id", rideID, "error", err)
		return models.Ride{}, err
	}

	s.applyTransitionEffects(ctx, &updated, from)

	metrics.RideTransitions.WithLabelValues(string(from), string(change.To)).Inc()
	s.publish(ctx, "ride.status_changed", events.Event{
		Name:     "RIDE_STATUS_CHANGED",
		ActorID:  actorID,
		EntityID: updated.ID,
		Status:   string(updated.Status),
		Metadata: map[string]string{"previous_status": string(from)},
	})
	s.broadcast(updated)

	logger.InfoCtx(ctx, "Ride status updated",
		"ride_id", updated.ID,
		"from", from,
		"to", updated.Status,
	)

	return updated, nil
}

// Assign puts a driver/vehicle pair on a PENDING ride.
func (s *Service) Assign(ctx context.Context, rideID, driverID, vehicleID, actorID string) (models.Ride, error) {
	ride, err := s.DB.GetRide(ctx, rideID)
	if err != nil {
		return models.Ride{}, err
	}

	if !lifecycle.CanTransition(ride.Status, models.StatusAssigned) {
		metrics.RejectedTransitions.Inc()
		return models.Ride{}, fmt.Errorf("%w: %s -> %s", lifecycle.ErrInvalidTransition, ride.Status, models.StatusAssigned)
	}

	driver, err := s.DB.GetDriver(ctx, driverID)
	if err != nil {
		return models.Ride{}, err
	}
	if !driver.IsAvailable {
		return models.Ride{}, fmt.Errorf("%w: driver %s", ErrDriverUnavailable, driverID)
	}

	vehicle, err := s.DB.GetVehicle(ctx, vehicleID)
	if err != nil {
		return models.Ride{}, err
	}
	if vehicle.Status != models.VehicleAvailable {
		return models.Ride{}, fmt.Errorf("%w: vehicle %s is %s", ErrVehicleUnavailable, vehicleID, vehicle.Status)
	}
	if vehicle.DriverID == nil || *vehicle.DriverID != driverID {
		return models.Ride{}, fmt.Errorf("%w: vehicle %s is not assigned to driver %s", ErrVehicleUnavailable, vehicleID, driverID)
	}

	// the repository flips the vehicle to IN_USE in the same
	// transaction, so the two records cannot drift apart
	updated, err := s.DB.AssignRide(ctx, rideID, driverID, vehicleID)
	if err != nil {
		logger.ErrorCtx(ctx, "Failed to assign ride", "ride_id", rideID, "error", err)
		return models.Ride{}, err
	}

	metrics.RideTransitions.WithLabelValues(string(models.StatusPending), string(models.StatusAssigned)).Inc()
	s.publish(ctx, "ride.assigned", events.Event{
		Name:     "RIDE_ASSIGNED",
		ActorID:  actorID,
		EntityID: updated.ID,
		Status:   string(updated.Status),
		Metadata: map[string]string{"driver_id": driverID, "vehicle_id": vehicleID},
	})
	s.broadcast(updated)

	return updated, nil
}

// Unassign removes the driver/vehicle pair from a ride that has not
// started yet and reverts it to PENDING.
func (s *Service) Unassign(ctx context.Context, rideID, actorID string) (models.Ride, error) {
	ride, err := s.DB.GetRide(ctx, rideID)
	if err != nil {
		return models.Ride{}, err
	}

	if lifecycle.IsTerminal(ride.Status) || ride.Status == models.StatusInProgress {
		return models.Ride{}, fmt.Errorf("%w: cannot unassign a ride in %s", lifecycle.ErrInvalidTransition, ride.Status)
	}
	if ride.DriverID == nil {
		return ride, nil
	}

	// vehicle release happens inside the repository transaction
	updated, err := s.DB.UnassignRide(ctx, rideID)
	if err != nil {
		return models.Ride{}, err
	}

	s.publish(ctx, "ride.unassigned", events.Event{
		Name:     "RIDE_UNASSIGNED",
		ActorID:  actorID,
		EntityID: updated.ID,
		Status:   string(updated.Status),
	})
	s.broadcast(updated)

	return updated, nil
}

// applyTransitionEffects runs the vehicle and driver side effects of
// a committed transition.
func (s *Service) applyTransitionEffects(ctx context.Context, ride *models.Ride, from models.RideStatus) {
	if !lifecycle.IsTerminal(ride.Status) {
		return
	}

	if ride.VehicleID != nil {
		if err := s.DB.SetVehicleStatus(ctx, *ride.VehicleID, models.VehicleAvailable); err != nil {
			logger.ErrorCtx(ctx, "Failed to release vehicle", "vehicle_id", *ride.VehicleID, "error", err)
		}
	}

	if ride.Status == models.StatusCompleted && ride.DriverID != nil {
		if err := s.DB.IncrementDriverTrips(ctx, *ride.DriverID); err != nil {
			logger.ErrorCtx(ctx, "Failed to increment driver trips", "driver_id", *ride.DriverID, "error", err)
		}
	}
}

func (s *Service) computeFinalPrice(ride *models.Ride) float64 {
	if ride.DistanceKm != nil {
		if price := perKmRate * *ride.DistanceKm; price > ride.BasePrice {
			return price
		}
	}
	return ride.BasePrice
}

func (s *Service) publish(ctx context.Context, routingKey string, event events.Event) {
	if s.Events == nil {
		return
	}

	// fire and forget; the request must not wait on the broker
	go func() {
		if err := s.Events.Publish(context.Background(), routingKey, event); err != nil {
			logger.Error("Failed to publish event",
				"routing_key", routingKey,
				"event", event.Name,
				"error", err,
			)
		}
	}()
}

func (s *Service) broadcast(ride models.Ride) {
	if s.Feed == nil {
		return
	}
	s.Feed.Broadcast(statusEvent{
		Type:      "ride_status",
		RideID:    ride.ID,
		Status:    ride.Status,
		DriverID:  ride.DriverID,
		VehicleID: ride.VehicleID,
	})
}
