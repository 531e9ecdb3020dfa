// Package lifecycle owns the ride status state machine. Every status
// mutation in the system goes through Validate; handlers and services
// never compare status strings ad hoc.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

var (
	// ErrInvalidTransition is returned for any transition not present
	// in the table, including every transition out of a terminal state.
	ErrInvalidTransition = errors.New("invalid ride status transition")
	// ErrMissingAssignment is returned when a ride tries to move to
	// CONFIRMED or later without both a driver and a vehicle.
	ErrMissingAssignment = errors.New("ride has no driver/vehicle assignment")
	// ErrFinalPriceNotAllowed is returned when a final price is
	// supplied on any transition other than into COMPLETED.
	ErrFinalPriceNotAllowed = errors.New("final price may only be set on completion")
)

// forward is the strict forward chain. Each state advances only to
// the next entry; CANCELLED and NO_SHOW are handled separately.
var forward = []models.RideStatus{
	models.StatusPending,
	models.StatusAssigned,
	models.StatusConfirmed,
	models.StatusDriverEnRoute,
	models.StatusPickupArrived,
	models.StatusInProgress,
	models.StatusCompleted,
}

var forwardNext = buildForwardNext()

func buildForwardNext() map[models.RideStatus]models.RideStatus {
	next := make(map[models.RideStatus]models.RideStatus, len(forward)-1)
	for i := 0; i < len(forward)-1; i++ {
		next[forward[i]] = forward[i+1]
	}
	return next
}

// IsTerminal reports whether the status accepts no further transition.
func IsTerminal(s models.RideStatus) bool {
	switch s {
	case models.StatusCompleted, models.StatusCancelled, models.StatusNoShow:
		return true
	}
	return false
}

// Known reports whether s is a member of the status set.
func Known(s models.RideStatus) bool {
	if IsTerminal(s) {
		return true
	}
	_, ok := forwardNext[s]
	return ok
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to models.RideStatus) bool {
	if !Known(from) || !Known(to) || IsTerminal(from) {
		return false
	}
	if to == models.StatusCancelled || to == models.StatusNoShow {
		return true
	}
	return forwardNext[from] == to
}

// NextStatuses returns the legal next statuses for the current one,
// forward step first. Dashboards derive their action buttons from
// this instead of hardcoding per page.
func NextStatuses(from models.RideStatus) []models.RideStatus {
	if !Known(from) || IsTerminal(from) {
		return nil
	}
	return []models.RideStatus{
		forwardNext[from],
		models.StatusCancelled,
		models.StatusNoShow,
	}
}

// Change is a requested status mutation.
type Change struct {
	To         models.RideStatus
	FinalPrice *float64
}

// Validate checks a requested change against the ride's current state.
// The returned error wraps one of the package sentinels so callers can
// branch with errors.Is.
func Validate(ride *models.Ride, change Change) error {
	if !CanTransition(ride.Status, change.To) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, ride.Status, change.To)
	}

	// Assignment is required to move past ASSIGNED on the forward
	// chain. Cancelling or no-showing an unassigned ride stays legal.
	if change.To != models.StatusCancelled && change.To != models.StatusNoShow {
		if rank(change.To) >= rank(models.StatusConfirmed) && (ride.DriverID == nil || ride.VehicleID == nil) {
			return fmt.Errorf("%w: cannot reach %s", ErrMissingAssignment, change.To)
		}
	}

	if change.FinalPrice != nil && change.To != models.StatusCompleted {
		return fmt.Errorf("%w: attempted on transition to %s", ErrFinalPriceNotAllowed, change.To)
	}

	return nil
}

// rank returns the position of a status on the forward chain, or -1
// for the side terminal states.
func rank(s models.RideStatus) int {
	for i, status := range forward {
		if status == s {
			return i
		}
	}
	return -1
}
