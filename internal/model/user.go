// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account.
// Email is nil once the account's email has been removed; the row itself
// is kept and only the password hash remains.
type User struct {
	ID           string    `json:"id"`
	Email        *string   `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"created_at"`
}

// EmailOrEmpty returns the user's email, or "" if it was removed.
func (u *User) EmailOrEmpty() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// AuthContext holds authenticated request context.
// This is injected into the request context by auth middleware.
// It identifies the caller but grants no per-user scoping.
type AuthContext struct {
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
