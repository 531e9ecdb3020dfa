package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

const vehicleColumns = `id, make, model, year, color, license_plate, vin, capacity,
			wheelchair_accessible, oxygen_equipped, insurance_expiry, registration_expiry,
			status, driver_id, created_at, updated_at`

func scanVehicle(row interface{ Scan(...any) error }) (models.Vehicle, error) {
	var v models.Vehicle
	var driverID sql.NullString

	err := row.Scan(
		&v.ID,
		&v.Make,
		&v.Model,
		&v.Year,
		&v.Color,
		&v.LicensePlate,
		&v.VIN,
		&v.Capacity,
		&v.WheelchairAccessible,
		&v.OxygenEquipped,
		&v.InsuranceExpiry,
		&v.RegistrationExpiry,
		&v.Status,
		&driverID,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	if err != nil {
		return v, err
	}

	if driverID.Valid {
		v.DriverID = &driverID.String
	}
	return v, nil
}

func (m *PostgresRepo) CreateVehicle(ctx context.Context, vehicle models.Vehicle) (models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if vehicle.ID == "" {
		vehicle.ID = uuid.New().String()
	}
	if vehicle.Status == "" {
		vehicle.Status = models.VehicleAvailable
	}

	query := `insert into vehicles (id, make, model, year, color, license_plate, vin, capacity,
				wheelchair_accessible, oxygen_equipped, insurance_expiry, registration_expiry,
				status, driver_id, created_at, updated_at)
				values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
				returning ` + vehicleColumns

	now := time.Now()
	row := m.DB.QueryRowContext(ctx, query,
		vehicle.ID,
		vehicle.Make,
		vehicle.Model,
		vehicle.Year,
		vehicle.Color,
		vehicle.LicensePlate,
		vehicle.VIN,
		vehicle.Capacity,
		vehicle.WheelchairAccessible,
		vehicle.OxygenEquipped,
		vehicle.InsuranceExpiry,
		vehicle.RegistrationExpiry,
		vehicle.Status,
		vehicle.DriverID,
		now,
		now,
	)
	return scanVehicle(row)
}

func (m *PostgresRepo) GetVehicle(ctx context.Context, id string) (models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `select ` + vehicleColumns + ` from vehicles where id = $1`
	return scanVehicle(m.DB.QueryRowContext(ctx, query, id))
}

func (m *PostgresRepo) ListVehiclesByDriver(ctx context.Context, driverID string) ([]models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `select ` + vehicleColumns + ` from vehicles where driver_id = $1 order by created_at`

	rows, err := m.DB.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, rows.Err()
}

func (m *PostgresRepo) SetVehicleStatus(ctx context.Context, id string, status models.VehicleStatus) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx,
		`update vehicles set status = $1, updated_at = $2 where id = $3`,
		status, time.Now(), id)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *PostgresRepo) SetVehicleDriver(ctx context.Context, id string, driverID *string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx,
		`update vehicles set driver_id = $1, updated_at = $2 where id = $3`,
		driverID, time.Now(), id)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}
