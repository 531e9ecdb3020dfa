// Package models holds the domain types shared by the API server and
// the client SDK: users, rides, drivers, vehicles and their status
// sets.
package models

import "time"

// UserRole is the closed set of platform roles.
type UserRole string

const (
	RoleCustomer   UserRole = "CUSTOMER"
	RoleDriver     UserRole = "DRIVER"
	RoleAdmin      UserRole = "ADMIN"
	RoleDispatcher UserRole = "DISPATCHER"
)

// Valid reports whether the role is one of the four known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleDriver, RoleAdmin, RoleDispatcher:
		return true
	}
	return false
}

// User is a platform identity. Role changes are an admin-only
// operation; nothing else may mutate Role after creation.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         UserRole  `json:"role"`
	IsVerified   bool      `json:"is_verified"`
	IsActive     bool      `json:"is_active"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
