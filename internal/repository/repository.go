// Package repository defines the storage contract for user records. Concrete
// adapters live in sub-packages, one per storage technology, so the backing
// store can be swapped without touching the service layer.
package repository

import (
	"context"

	"github.com/farhan/userauth/internal/model"
)

// UserRepository is the contract every user store satisfies.
//
// Stores own ID assignment and email uniqueness. Email comparison is
// case-sensitive: the stored bytes are compared, so "A@b.c" and "a@b.c"
// are distinct accounts.
type UserRepository interface {
	// Create assigns the next ID and CreatedAt on the given user and
	// persists it. Insertion order is registration order. Returns an
	// error wrapping apperror.ErrConflict if the email is already taken;
	// the uniqueness check and the insert happen under the store's own
	// serialization, so two concurrent registrations of one email cannot
	// both succeed.
	Create(ctx context.Context, user *model.User) error

	// GetByEmail returns the user with exactly the given email, or an
	// error wrapping apperror.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID returns the user with the given ID, or an error wrapping
	// apperror.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// List returns all users in registration order, password hashes
	// stripped. The hash never leaves the store through this method.
	List(ctx context.Context) ([]model.PublicUser, error)
}
