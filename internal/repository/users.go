package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

const userColumns = `id, email, first_name, last_name, role, is_verified, is_active, password_hash, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.Role,
		&u.IsVerified,
		&u.IsActive,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

func (m *PostgresRepo) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	query := `insert into users (id, email, first_name, last_name, role, is_verified, is_active, password_hash, created_at, updated_at)
				values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				returning ` + userColumns

	now := time.Now()
	row := m.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Role,
		user.IsVerified,
		user.IsActive,
		user.PasswordHash,
		now,
		now,
	)
	return scanUser(row)
}

func (m *PostgresRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `select ` + userColumns + ` from users where email = $1`
	return scanUser(m.DB.QueryRowContext(ctx, query, email))
}

func (m *PostgresRepo) GetUserByID(ctx context.Context, id string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `select ` + userColumns + ` from users where id = $1`
	return scanUser(m.DB.QueryRowContext(ctx, query, id))
}

func (m *PostgresRepo) UpdateProfile(ctx context.Context, id, firstName, lastName string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `update users set first_name = $1, last_name = $2, updated_at = $3
				where id = $4
				returning ` + userColumns

	row := m.DB.QueryRowContext(ctx, query, firstName, lastName, time.Now(), id)
	return scanUser(row)
}
