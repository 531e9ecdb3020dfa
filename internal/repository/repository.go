// Package repository holds the Postgres persistence layer. All
// queries run through database/sql with the pgx stdlib driver.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/alikamatu/medi-rides-sub003/internal/common/request"
	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

const dbTimeout = 3 * time.Second

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// UserRepo persists platform identities.
type UserRepo interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, id, firstName, lastName string) (models.User, error)
}

// RideRepo persists rides. Status writes happen only through
// UpdateRideStatus / AssignRide so the lifecycle stays authoritative.
type RideRepo interface {
	CreateRide(ctx context.Context, ride models.Ride) (models.Ride, error)
	GetRide(ctx context.Context, id string) (models.Ride, error)
	ListRides(ctx context.Context, customerID string, p request.Pagination) ([]models.Ride, error)
	ListUpcomingRides(ctx context.Context, customerID string, p request.Pagination) ([]models.Ride, error)
	ListRidesByDriver(ctx context.Context, driverID string, p request.Pagination) ([]models.Ride, error)
	UpdateRideStatus(ctx context.Context, id string, status models.RideStatus, finalPrice *float64) (models.Ride, error)
	AssignRide(ctx context.Context, id, driverID, vehicleID string) (models.Ride, error)
	UnassignRide(ctx context.Context, id string) (models.Ride, error)
	CountActiveRides(ctx context.Context) (int, error)
}

// DriverRepo persists driver profiles and their vehicle assignments.
type DriverRepo interface {
	CreateDriver(ctx context.Context, driver models.Driver) (models.Driver, error)
	GetDriver(ctx context.Context, id string) (models.Driver, error)
	GetDriverByUserID(ctx context.Context, userID string) (models.Driver, error)
	ListDrivers(ctx context.Context, p request.Pagination) ([]models.Driver, error)
	ListAvailableDrivers(ctx context.Context) ([]models.Driver, error)
	UpdateDriver(ctx context.Context, driver models.Driver) (models.Driver, error)
	DeleteDriver(ctx context.Context, id string) error
	SetDriverAvailability(ctx context.Context, id string, available bool) (models.Driver, error)
	IncrementDriverTrips(ctx context.Context, id string) error
	DriverStats(ctx context.Context) (models.DriverStats, error)
}

// VehicleRepo persists fleet vehicles.
type VehicleRepo interface {
	CreateVehicle(ctx context.Context, vehicle models.Vehicle) (models.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (models.Vehicle, error)
	ListVehiclesByDriver(ctx context.Context, driverID string) ([]models.Vehicle, error)
	SetVehicleStatus(ctx context.Context, id string, status models.VehicleStatus) error
	SetVehicleDriver(ctx context.Context, id string, driverID *string) error
}

// DatabaseRepo is the full persistence surface used by the API server.
type DatabaseRepo interface {
	UserRepo
	RideRepo
	DriverRepo
	VehicleRepo

	Connection() *sql.DB
	PingContext(ctx context.Context) error
}

// PostgresRepo implements DatabaseRepo on a Postgres connection pool.
type PostgresRepo struct {
	DB *sql.DB
}

func New(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

func (m *PostgresRepo) Connection() *sql.DB {
	return m.DB
}

func (m *PostgresRepo) PingContext(ctx context.Context) error {
	return m.DB.PingContext(ctx)
}
