package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alikamatu/medi-rides-sub003/internal/common/request"
	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

const rideColumns = `id, customer_id, pickup_address, pickup_lat, pickup_lng,
			dropoff_address, dropoff_lat, dropoff_lng, scheduled_time, status,
			service_type, payment_method, distance_km, duration_min, base_price,
			final_price, driver_id, vehicle_id, created_at, updated_at`

func scanRide(row interface{ Scan(...any) error }) (models.Ride, error) {
	var r models.Ride
	var distance, duration, finalPrice sql.NullFloat64
	var driverID, vehicleID sql.NullString

	err := row.Scan(
		&r.ID,
		&r.CustomerID,
		&r.Pickup.Address,
		&r.Pickup.Lat,
		&r.Pickup.Lng,
		&r.Dropoff.Address,
		&r.Dropoff.Lat,
		&r.Dropoff.Lng,
		&r.ScheduledTime,
		&r.Status,
		&r.ServiceType,
		&r.PaymentMethod,
		&distance,
		&duration,
		&r.BasePrice,
		&finalPrice,
		&driverID,
		&vehicleID,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	if err != nil {
		return r, err
	}

	if distance.Valid {
		r.DistanceKm = &distance.Float64
	}
	if duration.Valid {
		r.DurationMin = &duration.Float64
	}
	if finalPrice.Valid {
		r.FinalPrice = &finalPrice.Float64
	}
	if driverID.Valid {
		r.DriverID = &driverID.String
	}
	if vehicleID.Valid {
		r.VehicleID = &vehicleID.String
	}

	return r, nil
}

func (m *PostgresRepo) CreateRide(ctx context.Context, ride models.Ride) (models.Ride, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if ride.ID == "" {
		ride.ID = uuid.New().String()
	}

	query := `insert into rides (id, customer_id, pickup_address, pickup_lat, pickup_lng,
				dropoff_address, dropoff_lat, dropoff_lng, scheduled_time, status, service_type,
				payment_method, distance_km, duration_min, base_price, created_at, updated_at)
				values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
				returning ` + rideColumns

	now := time.Now()
	row := m.DB.QueryRowContext(ctx, query,
		ride.ID,
		ride.CustomerID,
		ride.Pickup.Address,
		ride.Pickup.Lat,
		ride.Pickup.Lng,
		ride.Dropoff.Address,
		ride.Dropoff.Lat,
		ride.Dropoff.Lng,
		ride.ScheduledTime,
		models.StatusPending,
		ride.ServiceType,
		ride.PaymentMethod,
		ride.DistanceKm,
		ride.DurationMin,
		ride.BasePrice,
		now,
		now,
	)
	return scanRide(row)
}

func (m *PostgresRepo) GetRide(ctx context.Context, id string) (models.Ride, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `select ` + rideColumns + ` from rides where id = $1`
	return scanRide(m.DB.QueryRowContext(ctx, query, id))
}

// ListRides returns rides newest first. customerID narrows the list
// to one customer; empty means all (dispatcher/admin views). search
// matches pickup or dropoff address.
func (m *PostgresRepo) ListRides(ctx context.Context, customerID string, p request.Pagination) ([]models.Ride, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `select ` + rideColumns + ` from rides
				where ($1 = '' or customer_id = $1)
				and ($2 = '' or pickup_address ilike '%' || $2 || '%' or dropoff_address ilike '%' || $2 || '%')
				order by scheduled_time desc
				limit $3 offset $4`

	rows, err := m.DB.QueryContext(ctx, query, customerID, p.Search, p.Limit, p.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRides(rows)
}

// ListUpcomingRides returns non-terminal rides scheduled from now on,
// soonest first.
func (m *PostgresRepo) ListUpcomingRides(ctx context.Context, customerID string, p request.Pagination) ([]models.Ride, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `select ` + rideColumns + ` from rides
				where ($1 = '' or customer_id = $1)
				and scheduled_time >= now()
				and status not in ($2, $3, $4)
				order by scheduled_time asc
				limit $5 offset $6`

	rows, err := m.DB.QueryContext(ctx, query,
		customerID,
		models.StatusCompleted,
		models.StatusCancelled,
		models.StatusNoShow,
		p.Limit,
		p.Offset(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRides(rows)
}

func (m *PostgresRepo) ListRidesByDriver(ctx context.Context, driverID string, p request.Pagination) ([]models.Ride, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `select ` + rideColumns + ` from rides
				where driver_id = $1
				order by scheduled_time desc
				limit $2 offset $3`

	rows, err := m.DB.QueryContext(ctx, query, driverID, p.Limit, p.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRides(rows)
}

func (m *PostgresRepo) UpdateRideStatus(ctx context.Context, id string, status models.RideStatus, finalPrice *float64) (models.Ride, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `update rides set status = $1, final_price = coalesce($2, final_price), updated_at = $3
				where id = $4
				returning ` + rideColumns

	row := m.DB.QueryRowContext(ctx, query, status, finalPrice, time.Now(), id)
	return scanRide(row)
}

// AssignRide puts the driver/vehicle pair on the ride and marks the
// vehicle IN_USE in the same transaction, so a ride never references
// a vehicle that still reads AVAILABLE.
func (m *PostgresRepo) AssignRide(ctx context.Context, id, driverID, vehicleID string) (models.Ride, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Ride{}, err
	}
	defer tx.Rollback()

	now := time.Now()

	query := `update rides set driver_id = $1, vehicle_id = $2, status = $3, updated_at = $4
				where id = $5
				returning ` + rideColumns

	ride, err := scanRide(tx.QueryRowContext(ctx, query, driverID, vehicleID, models.StatusAssigned, now, id))
	if err != nil {
		return models.Ride{}, err
	}

	result, err := tx.ExecContext(ctx,
		`update vehicles set status = $1, updated_at = $2 where id = $3`,
		models.VehicleInUse, now, vehicleID)
	if err != nil {
		return models.Ride{}, err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return models.Ride{}, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return models.Ride{}, err
	}
	return ride, nil
}

// UnassignRide removes the driver/vehicle pair, reverts the ride to
// PENDING and releases the vehicle, all in one transaction.
func (m *PostgresRepo) UnassignRide(ctx context.Context, id string) (models.Ride, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Ride{}, err
	}
	defer tx.Rollback()

	now := time.Now()

	var vehicleID sql.NullString
	err = tx.QueryRowContext(ctx, `select vehicle_id from rides where id = $1`, id).Scan(&vehicleID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Ride{}, ErrNotFound
	}
	if err != nil {
		return models.Ride{}, err
	}

	query := `update rides set driver_id = null, vehicle_id = null, status = $1, updated_at = $2
				where id = $3
				returning ` + rideColumns

	ride, err := scanRide(tx.QueryRowContext(ctx, query, models.StatusPending, now, id))
	if err != nil {
		return models.Ride{}, err
	}

	if vehicleID.Valid {
		_, err = tx.ExecContext(ctx,
			`update vehicles set status = $1, updated_at = $2 where id = $3`,
			models.VehicleAvailable, now, vehicleID.String)
		if err != nil {
			return models.Ride{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Ride{}, err
	}
	return ride, nil
}

func (m *PostgresRepo) CountActiveRides(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `select count(*) from rides where status not in ($1, $2, $3)`

	var count int
	err := m.DB.QueryRowContext(ctx, query,
		models.StatusCompleted,
		models.StatusCancelled,
		models.StatusNoShow,
	).Scan(&count)
	return count, err
}

func collectRides(rows *sql.Rows) ([]models.Ride, error) {
	var rides []models.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}
