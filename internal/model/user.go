// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// IDs are assigned by the store in registration order and are unique for the
// lifetime of the data set. Email is the login identifier and is unique
// case-sensitively: the store compares the stored bytes, so "A@b.c" and
// "a@b.c" are two different accounts.
//
// PasswordHash holds the bcrypt hash of the user's password. The `json:"-"`
// tag keeps it out of every API response; storage adapters that need to
// persist it serialize their own record types instead of this struct.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the safe-to-expose view of a User, returned by list and
// profile endpoints and embedded in the login response.
type PublicUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns the user's API-facing view.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
