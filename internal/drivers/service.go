// Package drivers owns the admin fleet surface: driver profiles,
// availability and vehicle assignment.
package drivers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/alikamatu/medi-rides-sub003/internal/common/logger"
	"github.com/alikamatu/medi-rides-sub003/internal/common/request"
	"github.com/alikamatu/medi-rides-sub003/internal/events"
	"github.com/alikamatu/medi-rides-sub003/internal/repository"
	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

var (
	// ErrEmailTaken is returned when driver creation reuses an email.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrVehicleInUse blocks unassigning a vehicle that is on a ride.
	ErrVehicleInUse = errors.New("vehicle is on an active ride")
	// ErrVehicleNotOwned is returned when the vehicle does not belong
	// to the driver named in the request.
	ErrVehicleNotOwned = errors.New("vehicle is not assigned to this driver")
)

// Service coordinates driver and vehicle records.
type Service struct {
	DB     repository.DatabaseRepo
	Events *events.Publisher
}

// NewDriverInput is everything needed to onboard a driver: the user
// account and the license details.
type NewDriverInput struct {
	Email         string
	FirstName     string
	LastName      string
	Password      string
	LicenseNumber string
	LicenseState  string
	LicenseExpiry time.Time
}

// Create onboards a driver: a DRIVER-role user plus the profile.
func (s *Service) Create(ctx context.Context, input NewDriverInput) (models.Driver, error) {
	if _, err := s.DB.GetUserByEmail(ctx, input.Email); err == nil {
		return models.Driver{}, fmt.Errorf("%w: %s", ErrEmailTaken, input.Email)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return models.Driver{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Driver{}, err
	}

	user, err := s.DB.CreateUser(ctx, models.User{
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         models.RoleDriver,
		IsActive:     true,
		PasswordHash: string(hash),
	})
	if err != nil {
		logger.ErrorCtx(ctx, "Failed to create driver user", "email", input.Email, "error", err)
		return models.Driver{}, err
	}

	driver, err := s.DB.CreateDriver(ctx, models.Driver{
		UserID:        user.ID,
		LicenseNumber: input.LicenseNumber,
		LicenseState:  input.LicenseState,
		LicenseExpiry: input.LicenseExpiry,
		IsAvailable:   false, // drivers go available explicitly
	})
	if err != nil {
		logger.ErrorCtx(ctx, "Failed to create driver profile", "user_id", user.ID, "error", err)
		return models.Driver{}, err
	}

	s.publish(ctx, "driver.created", events.Event{
		Name:     "DRIVER_CREATED",
		EntityID: driver.ID,
		Metadata: map[string]string{"email": input.Email},
	})

	logger.InfoCtx(ctx, "Driver onboarded", "driver_id", driver.ID, "email", input.Email)

	return driver, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Driver, error) {
	return s.DB.GetDriver(ctx, id)
}

func (s *Service) List(ctx context.Context, p request.Pagination) ([]models.Driver, error) {
	return s.DB.ListDrivers(ctx, p)
}

// ListAvailable returns drivers offered for new assignment. The
// availability filter stays server-side.
func (s *Service) ListAvailable(ctx context.Context) ([]models.Driver, error) {
	return s.DB.ListAvailableDrivers(ctx)
}

func (s *Service) Stats(ctx context.Context) (models.DriverStats, error) {
	return s.DB.DriverStats(ctx)
}

func (s *Service) Update(ctx context.Context, driver models.Driver) (models.Driver, error) {
	return s.DB.UpdateDriver(ctx, driver)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	driver, err := s.DB.GetDriver(ctx, id)
	if err != nil {
		return err
	}

	// release the fleet before dropping the profile
	for _, vehicle := range driver.Vehicles {
		if vehicle.Status == models.VehicleInUse {
			return fmt.Errorf("%w: vehicle %s", ErrVehicleInUse, vehicle.ID)
		}
		if err := s.DB.SetVehicleDriver(ctx, vehicle.ID, nil); err != nil {
			return err
		}
	}

	if err := s.DB.DeleteDriver(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, "driver.deleted", events.Event{
		Name:     "DRIVER_DELETED",
		EntityID: id,
	})

	return nil
}

func (s *Service) SetAvailability(ctx context.Context, id string, available bool) (models.Driver, error) {
	driver, err := s.DB.SetDriverAvailability(ctx, id, available)
	if err != nil {
		return models.Driver{}, err
	}

	s.publish(ctx, "driver.availability_changed", events.Event{
		Name:     "DRIVER_AVAILABILITY_CHANGED",
		EntityID: id,
		Metadata: map[string]string{"available": fmt.Sprintf("%t", available)},
	})

	return driver, nil
}

// AssignVehicle registers a vehicle under the driver.
func (s *Service) AssignVehicle(ctx context.Context, driverID string, vehicle models.Vehicle) (models.Vehicle, error) {
	if _, err := s.DB.GetDriver(ctx, driverID); err != nil {
		return models.Vehicle{}, err
	}

	vehicle.DriverID = &driverID
	vehicle.Status = models.VehicleAvailable

	created, err := s.DB.CreateVehicle(ctx, vehicle)
	if err != nil {
		logger.ErrorCtx(ctx, "Failed to create vehicle", "driver_id", driverID, "error", err)
		return models.Vehicle{}, err
	}

	s.publish(ctx, "driver.vehicle_assigned", events.Event{
		Name:     "VEHICLE_ASSIGNED",
		EntityID: created.ID,
		Metadata: map[string]string{"driver_id": driverID},
	})

	return created, nil
}

// UnassignVehicle detaches a vehicle from the driver. A vehicle on an
// active ride cannot be detached.
func (s *Service) UnassignVehicle(ctx context.Context, driverID, vehicleID string) error {
	vehicle, err := s.DB.GetVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}

	if vehicle.DriverID == nil || *vehicle.DriverID != driverID {
		return fmt.Errorf("%w: vehicle %s", ErrVehicleNotOwned, vehicleID)
	}
	if vehicle.Status == models.VehicleInUse {
		return fmt.Errorf("%w: vehicle %s", ErrVehicleInUse, vehicleID)
	}

	if err := s.DB.SetVehicleDriver(ctx, vehicleID, nil); err != nil {
		return err
	}

	s.publish(ctx, "driver.vehicle_unassigned", events.Event{
		Name:     "VEHICLE_UNASSIGNED",
		EntityID: vehicleID,
		Metadata: map[string]string{"driver_id": driverID},
	})

	return nil
}

func (s *Service) publish(ctx context.Context, routingKey string, event events.Event) {
	if s.Events == nil {
		return
	}

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
