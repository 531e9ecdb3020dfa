package rides

import (
	"context"
	"errors"
	"testing"

	"github.com/alikamatu/medi-rides-sub003/internal/lifecycle"
	"github.com/alikamatu/medi-rides-sub003/internal/repository"
	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

// fakeDB backs the service with in-memory records. Assignment mutates
// ride and vehicle together or not at all, like the SQL transaction.
type fakeDB struct {
	repository.DatabaseRepo

	ride    models.Ride
	driver  models.Driver
	vehicle models.Vehicle

	assignErr error
}

func (f *fakeDB) GetRide(ctx context.Context, id string) (models.Ride, error) {
	if id != f.ride.ID {
		return models.Ride{}, repository.ErrNotFound
	}
	return f.ride, nil
}

func (f *fakeDB) GetDriver(ctx context.Context, id string) (models.Driver, error) {
	if id != f.driver.ID {
		return models.Driver{}, repository.ErrNotFound
	}
	return f.driver, nil
}

func (f *fakeDB) GetVehicle(ctx context.Context, id string) (models.Vehicle, error) {
	if id != f.vehicle.ID {
		return models.Vehicle{}, repository.ErrNotFound
	}
	return f.vehicle, nil
}

func (f *fakeDB) AssignRide(ctx context.Context, id, driverID, vehicleID string) (models.Ride, error) {
	if f.assignErr != nil {
		return models.Ride{}, f.assignErr
	}
	f.ride.DriverID = &driverID
	f.ride.VehicleID = &vehicleID
	f.ride.Status = models.StatusAssigned
	f.vehicle.Status = models.VehicleInUse
	return f.ride, nil
}

func (f *fakeDB) UnassignRide(ctx context.Context, id string) (models.Ride, error) {
	f.ride.DriverID = nil
	f.ride.VehicleID = nil
	f.ride.Status = models.StatusPending
	f.vehicle.Status = models.VehicleAvailable
	return f.ride, nil
}

func newAssignFixture() *fakeDB {
	driverID := "d1"
	return &fakeDB{
		ride: models.Ride{ID: "r1", CustomerID: "c1", Status: models.StatusPending},
		driver: models.Driver{
			ID:          driverID,
			IsAvailable: true,
		},
		vehicle: models.Vehicle{
			ID:       "v1",
			Status:   models.VehicleAvailable,
			DriverID: &driverID,
		},
	}
}

func TestAssignMarksVehicleInUse(t *testing.T) {
	db := newAssignFixture()
	svc := &Service{DB: db}

	ride, err := svc.Assign(context.Background(), "r1", "d1", "v1", "dispatcher-1")
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	if ride.Status != models.StatusAssigned {
		t.Errorf("ride status = %s, want ASSIGNED", ride.Status)
	}
	if db.vehicle.Status != models.VehicleInUse {
		t.Errorf("vehicle status = %s, want IN_USE", db.vehicle.Status)
	}
}

func TestAssignFailureLeavesVehicleAvailable(t *testing.T) {
	db := newAssignFixture()
	db.assignErr = errors.New("deadlock detected")
	svc := &Service{DB: db}

	_, err := svc.Assign(context.Background(), "r1", "d1", "v1", "dispatcher-1")
	if err == nil {
		t.Fatal("Assign() error = nil, want failure")
	}

	// the ride and vehicle move together or not at all
	if db.ride.Status != models.StatusPending {
		t.Errorf("ride status = %s, want PENDING after failed assignment", db.ride.Status)
	}
	if db.ride.DriverID != nil {
		t.Error("ride still references a driver after failed assignment")
	}
	if db.vehicle.Status != models.VehicleAvailable {
		t.Errorf("vehicle status = %s, want AVAILABLE after failed assignment", db.vehicle.Status)
	}
}

func TestAssignRejectsUnavailableDriver(t *testing.T) {
	db := newAssignFixture()
	db.driver.IsAvailable = false
	svc := &Service{DB: db}

	_, err := svc.Assign(context.Background(), "r1", "d1", "v1", "dispatcher-1")
	if !errors.Is(err, ErrDriverUnavailable) {
		t.Errorf("Assign() error = %v, want ErrDriverUnavailable", err)
	}
	if db.vehicle.Status != models.VehicleAvailable {
		t.Errorf("vehicle status = %s, want AVAILABLE", db.vehicle.Status)
	}
}

func TestAssignRejectsVehicleNotOwnedByDriver(t *testing.T) {
	db := newAssignFixture()
	other := "d2"
	db.vehicle.DriverID = &other
	svc := &Service{DB: db}

	_, err := svc.Assign(context.Background(), "r1", "d1", "v1", "dispatcher-1")
	if !errors.Is(err, ErrVehicleUnavailable) {
		t.Errorf("Assign() error = %v, want ErrVehicleUnavailable", err)
	}
}

func TestAssignRejectsNonPendingRide(t *testing.T) {
	db := newAssignFixture()
	db.ride.Status = models.StatusCompleted
	svc := &Service{DB: db}

	_, err := svc.Assign(context.Background(), "r1", "d1", "v1", "dispatcher-1")
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Errorf("Assign() error = %v, want ErrInvalidTransition", err)
	}
}

func TestUnassignRevertsRideAndReleasesVehicle(t *testing.T) {
	db := newAssignFixture()
	svc := &Service{DB: db}

	if _, err := svc.Assign(context.Background(), "r1", "d1", "v1", "dispatcher-1"); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	ride, err := svc.Unassign(context.Background(), "r1", "dispatcher-1")
	if err != nil {
		t.Fatalf("Unassign() error = %v", err)
	}

	if ride.Status != models.StatusPending {
		t.Errorf("ride status = %s, want PENDING", ride.Status)
	}
	if db.vehicle.Status != models.VehicleAvailable {
		t.Errorf("vehicle status = %s, want AVAILABLE", db.vehicle.Status)
	}
}

func TestUnassignRejectsRideInProgress(t *testing.T) {
	db := newAssignFixture()
	svc := &Service{DB: db}

	if _, err := svc.Assign(context.Background(), "r1", "d1", "v1", "dispatcher-1"); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	db.ride.Status = models.StatusInProgress

	_, err := svc.Unassign(context.Background(), "r1", "dispatcher-1")
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Errorf("Unassign() error = %v, want ErrInvalidTransition", err)
	}
	if db.vehicle.Status != models.VehicleInUse {
		t.Errorf("vehicle status = %s, want IN_USE while the ride runs", db.vehicle.Status)
	}
}
