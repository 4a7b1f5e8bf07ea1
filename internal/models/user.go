// Package models defines the core domain models for the application:
// users and their linked identity accounts and profiles, plus the
// fitness-tracking entities (exercises, workouts, sets, measurements).
//
// All models include JSON and database struct tags for serialization
// and row scanning. Sensitive fields are marked with `json:"-"` to
// prevent accidental exposure in API responses.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the access level assigned to a user. The string values are
// an external contract (they appear in session tokens and in the
// roles enum in Postgres) and must remain stable.
type Role string

const (
	RoleUser     Role = "USER"
	RoleCustomer Role = "CUSTOMER"
	RoleEmployee Role = "EMPLOYEE"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleCustomer, RoleEmployee, RoleAdmin:
		return true
	}
	return false
}

// AccountType identifies the identity provider an account row links to.
type AccountType string

const (
	AccountTypeEmail  AccountType = "email"
	AccountTypeGoogle AccountType = "google"
)

// User represents an identity record. Users are created on their first
// successful OAuth login (or directly, for email accounts) and are
// never hard-deleted.
//
// Email is nullable at the storage layer: an account created directly
// from a provider profile may lack one.
//
// JSON example:
//
//	{
//	  "id": "550e8400-e29b-41d4-a716-446655440000",
//	  "email": "user@example.com",
//	  "is_active": true,
//	  "is_new_user": false,
//	  "role": "USER"
//	}
type User struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Email           *string    `json:"email,omitempty" db:"email"` // Unique, nullable
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty" db:"email_verified_at"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	IsNewUser       bool       `json:"is_new_user" db:"is_new_user"`
	Role            Role       `json:"role" db:"role"`
}

// Account links a User to an external identity provider. One user owns
// at most one account row per provider; the google_id column carries a
// unique constraint so two local users can never claim the same
// external identity.
type Account struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      uuid.UUID   `json:"user_id" db:"user_id"`
	AccountType AccountType `json:"account_type" db:"account_type"`
	GoogleID    *string     `json:"google_id,omitempty" db:"google_id"`
	Password    *string     `json:"-" db:"password"` // Email accounts only
	Salt        *string     `json:"-" db:"salt"`
}

// Profile holds supplementary user metadata, one-to-one with User.
// Created alongside the first account linkage.
type Profile struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	UserID             uuid.UUID `json:"user_id" db:"user_id"`
	DisplayName        *string   `json:"display_name,omitempty" db:"display_name"`
	ImageID            *string   `json:"image_id,omitempty" db:"image_id"`
	Image              *string   `json:"image,omitempty" db:"image"`
	Phone              *string   `json:"phone,omitempty" db:"phone"`
	IdentificationCard *string   `json:"identification_card,omitempty" db:"identification_card"`
	RUC                *string   `json:"ruc,omitempty" db:"ruc"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}
