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

const driverColumns = `d.id, d.user_id, u.first_name, u.last_name, u.email,
			d.license_number, d.license_state, d.license_expiry, d.is_available,
			d.rating, d.total_trips, d.created_at, d.updated_at`

func scanDriver(row interface{ Scan(...any) error }) (models.Driver, error) {
	var d models.Driver
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.FirstName,
		&d.LastName,
		&d.Email,
		&d.LicenseNumber,
		&d.LicenseState,
		&d.LicenseExpiry,
		&d.IsAvailable,
		&d.Rating,
		&d.TotalTrips,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrNotFound
	}
	return d, err
}

func (m *PostgresRepo) CreateDriver(ctx context.Context, driver models.Driver) (models.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if driver.ID == "" {
		driver.ID = uuid.New().String()
	}

	query := `insert into drivers (id, user_id, license_number, license_state, license_expiry,
				is_available, rating, total_trips, created_at, updated_at)
				values ($1, $2, $3, $4, $5, $6, 0, 0, $7, $8)
				returning id`

	now := time.Now()
	err := m.DB.QueryRowContext(ctx, query,
		driver.ID,
		driver.UserID,
		driver.LicenseNumber,
		driver.LicenseState,
		driver.LicenseExpiry,
		driver.IsAvailable,
		now,
		now,
	).Scan(&driver.ID)
	if err != nil {
		return driver, err
	}

	return m.GetDriver(ctx, driver.ID)
}

func (m *PostgresRepo) GetDriver(ctx context.Context, id string) (models.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `select ` + driverColumns + ` from drivers d
				join users u on u.id = d.user_id
				where d.id = $1`

	driver, err := scanDriver(m.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return driver, err
	}

	driver.Vehicles, err = m.ListVehiclesByDriver(ctx, driver.ID)
	return driver, err
}

// GetDriverByUserID resolves the driver profile behind a user
// identity, used when a DRIVER-role token acts on rides.
func (m *PostgresRepo) GetDriverByUserID(ctx context.Context, userID string) (models.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `select ` + driverColumns + ` from drivers d
				join users u on u.id = d.user_id
				where d.user_id = $1`

	driver, err := scanDriver(m.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		return driver, err
	}

	driver.Vehicles, err = m.ListVehiclesByDriver(ctx, driver.ID)
	return driver, err
}

func (m *PostgresRepo) ListDrivers(ctx context.Context, p request.Pagination) ([]models.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `select ` + driverColumns + ` from drivers d
				join users u on u.id = d.user_id
				where ($1 = '' or u.first_name ilike '%' || $1 || '%'
					or u.last_name ilike '%' || $1 || '%'
					or u.email ilike '%' || $1 || '%'
					or d.license_number ilike '%' || $1 || '%')
				order by u.last_name, u.first_name
				limit $2 offset $3`

	rows, err := m.DB.QueryContext(ctx, query, p.Search, p.Limit, p.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDrivers(rows)
}

// ListAvailableDrivers returns only drivers flagged available. The
// availability filter is server-enforced; clients never re-include
// unavailable drivers.
func (m *PostgresRepo) ListAvailableDrivers(ctx context.Context) ([]models.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `select ` + driverColumns + ` from drivers d
				join users u on u.id = d.user_id
				where d.is_available = true
				order by d.rating desc`

	rows, err := m.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDrivers(rows)
}

func (m *PostgresRepo) UpdateDriver(ctx context.Context, driver models.Driver) (models.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `update drivers set license_number = $1, license_state = $2, license_expiry = $3, updated_at = $4
				where id = $5`

	result, err := m.DB.ExecContext(ctx, query,
		driver.LicenseNumber,
		driver.LicenseState,
		driver.LicenseExpiry,
		time.Now(),
		driver.ID,
	)
	if err != nil {
		return driver, err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return driver, ErrNotFound
	}

	return m.GetDriver(ctx, driver.ID)
}

func (m *PostgresRepo) DeleteDriver(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, `delete from drivers where id = $1`, id)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *PostgresRepo) SetDriverAvailability(ctx context.Context, id string, available bool) (models.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `update drivers set is_available = $1, updated_at = $2 where id = $3`

	result, err := m.DB.ExecContext(ctx, query, available, time.Now(), id)
	if err != nil {
		return models.Driver{}, err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return models.Driver{}, ErrNotFound
	}

	return m.GetDriver(ctx, id)
}

func (m *PostgresRepo) IncrementDriverTrips(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := m.DB.ExecContext(ctx,
		`update drivers set total_trips = total_trips + 1, updated_at = $1 where id = $2`,
		time.Now(), id)
	return err
}

func (m *PostgresRepo) DriverStats(ctx context.Context) (models.DriverStats, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `select count(*),
				count(*) filter (where is_available),
				coalesce(avg(rating) filter (where total_trips > 0), 0)
				from drivers`

	var stats models.DriverStats
	err := m.DB.QueryRowContext(ctx, query).Scan(
		&stats.TotalDrivers,
		&stats.AvailableDrivers,
		&stats.AverageRating,
	)
	if err != nil {
		return stats, err
	}

	stats.ActiveRides, err = m.CountActiveRides(ctx)
	return stats, err
}

func collectDrivers(rows *sql.Rows) ([]models.Driver, error) {
	var drivers []models.Driver
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	return drivers, rows.Err()
}
