// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// Login is email-only: the first login with an unknown email auto-creates the
// account, with the local part of the address as the display name. Email has a
// UNIQUE constraint in the DB so one address maps to exactly one account.
type User struct {
	ID        string    `json:"id"        db:"id"`
	Email     string    `json:"email"     db:"email"`
	Name      string    `json:"name"      db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
