package lifecycle

import (
	"errors"
	"testing"

	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

func assignedRide(status models.RideStatus) *models.Ride {
	driverID := "d-1"
	vehicleID := "v-1"
	return &models.Ride{
		ID:        "r-1",
		Status:    status,
		DriverID:  &driverID,
		VehicleID: &vehicleID,
	}
}

func TestForwardChainAdvancesInOrder(t *testing.T) {
	steps := []struct {
		from models.RideStatus
		to   models.RideStatus
	}{
		{models.StatusPending, models.StatusAssigned},
		{models.StatusAssigned, models.StatusConfirmed},
		{models.StatusConfirmed, models.StatusDriverEnRoute},
		{models.StatusDriverEnRoute, models.StatusPickupArrived},
		{models.StatusPickupArrived, models.StatusInProgress},
	}

	for _, step := range steps {
		t.Run(string(step.from)+"_to_"+string(step.to), func(t *testing.T) {
			if err := Validate(assignedRide(step.from), Change{To: step.to}); err != nil {
				t.Fatalf("expected legal transition, got %v", err)
			}
		})
	}
}

func TestCompletionAcceptsFinalPrice(t *testing.T) {
	price := 42.50
	err := Validate(assignedRide(models.StatusInProgress), Change{To: models.StatusCompleted, FinalPrice: &price})
	if err != nil {
		t.Fatalf("expected completion with final price to be legal, got %v", err)
	}
}

func TestSkippingStatesIsRejected(t *testing.T) {
	cases := []struct {
		from models.RideStatus
		to   models.RideStatus
	}{
		{models.StatusPending, models.StatusConfirmed},
		{models.StatusPending, models.StatusInProgress},
		{models.StatusPending, models.StatusCompleted},
		{models.StatusAssigned, models.StatusDriverEnRoute},
		{models.StatusConfirmed, models.StatusInProgress},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			err := Validate(assignedRide(tc.from), Change{To: tc.to})
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition, got %v", err)
			}
		})
	}
}

func TestBackwardTransitionsAreRejected(t *testing.T) {
	err := Validate(assignedRide(models.StatusInProgress), Change{To: models.StatusConfirmed})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTerminalStatesAbsorb(t *testing.T) {
	terminals := []models.RideStatus{
		models.StatusCompleted,
		models.StatusCancelled,
		models.StatusNoShow,
	}
	targets := []models.RideStatus{
		models.StatusPending,
		models.StatusAssigned,
		models.StatusInProgress,
		models.StatusCancelled,
		models.StatusCompleted,
	}

	for _, from := range terminals {
		for _, to := range targets {
			if from == to {
				continue
			}
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				err := Validate(assignedRide(from), Change{To: to})
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got %v", err)
				}
			})
		}
	}
}

func TestCancelAndNoShowFromEveryNonTerminalState(t *testing.T) {
	nonTerminal := []models.RideStatus{
		models.StatusPending,
		models.StatusAssigned,
		models.StatusConfirmed,
		models.StatusDriverEnRoute,
		models.StatusPickupArrived,
		models.StatusInProgress,
	}

	for _, from := range nonTerminal {
		for _, to := range []models.RideStatus{models.StatusCancelled, models.StatusNoShow} {
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				if err := Validate(assignedRide(from), Change{To: to}); err != nil {
					t.Fatalf("expected legal transition, got %v", err)
				}
			})
		}
	}
}

func TestCancelUnassignedRideIsLegal(t *testing.T) {
	ride := &models.Ride{ID: "r-2", Status: models.StatusPending}
	if err := Validate(ride, Change{To: models.StatusCancelled}); err != nil {
		t.Fatalf("expected legal cancellation of unassigned ride, got %v", err)
	}
}

func TestMissingAssignmentBlocksConfirmation(t *testing.T) {
	ride := &models.Ride{ID: "r-3", Status: models.StatusAssigned}

	err := Validate(ride, Change{To: models.StatusConfirmed})
	if !errors.Is(err, ErrMissingAssignment) {
		t.Fatalf("expected ErrMissingAssignment, got %v", err)
	}

	// only a driver, no vehicle
	driverID := "d-9"
	ride.DriverID = &driverID
	err = Validate(ride, Change{To: models.StatusConfirmed})
	if !errors.Is(err, ErrMissingAssignment) {
		t.Fatalf("expected ErrMissingAssignment with vehicle missing, got %v", err)
	}
}

func TestFinalPriceRejectedBeforeCompletion(t *testing.T) {
	price := 10.0
	cases := []struct {
		from models.RideStatus
		to   models.RideStatus
	}{
		{models.StatusPending, models.StatusAssigned},
		{models.StatusAssigned, models.StatusConfirmed},
		{models.StatusPickupArrived, models.StatusInProgress},
		{models.StatusInProgress, models.StatusCancelled},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			err := Validate(assignedRide(tc.from), Change{To: tc.to, FinalPrice: &price})
			if !errors.Is(err, ErrFinalPriceNotAllowed) {
				t.Fatalf("expected ErrFinalPriceNotAllowed, got %v", err)
			}
		})
	}
}

func TestUnknownStatusIsRejected(t *testing.T) {
	ride := assignedRide(models.StatusPending)
	err := Validate(ride, Change{To: models.RideStatus("TELEPORTED")})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for unknown status, got %v", err)
	}

	ride.Status = models.RideStatus("LIMBO")
	err = Validate(ride, Change{To: models.StatusAssigned})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for unknown current status, got %v", err)
	}
}

func TestNextStatuses(t *testing.T) {
	next := NextStatuses(models.StatusConfirmed)
	want := []models.RideStatus{
		models.StatusDriverEnRoute,
		models.StatusCancelled,
		models.StatusNoShow,
	}
	if len(next) != len(want) {
		t.Fatalf("expected %d next statuses, got %d", len(want), len(next))
	}
	for i := range want {
		if next[i] != want[i] {
			t.Fatalf("expected %s at position %d, got %s", want[i], i, next[i])
		}
	}

	if got := NextStatuses(models.StatusCompleted); got != nil {
		t.Fatalf("expected no next statuses for terminal state, got %v", got)
	}
}
