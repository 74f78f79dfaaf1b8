// Package auth provides password hashing, token issuance/verification, and
// the request-gate middleware for protected routes.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when no override is configured.
// Cost 12 takes roughly 250ms per hash on current server hardware.
const DefaultCost = 12

// PasswordService provides bcrypt hashing and verification.
//
// The work factor is process-wide configuration, injected at construction so
// tests can run at the bcrypt minimum (cost 4) instead of paying 250ms per
// hash.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the given bcrypt cost.
// A cost of 0 selects DefaultCost. Callers are expected to pass a value
// inside bcrypt's valid range; config validation enforces this at startup.
func NewPasswordService(cost int) *PasswordService {
	if cost == 0 {
		cost = DefaultCost
	}
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext password with bcrypt.
//
// The output is a self-contained string that embeds the salt and cost; store
// it directly. Returns an error if the plaintext exceeds 72 bytes, which
// bcrypt would otherwise silently truncate.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt hash.
// Returns nil on match. A malformed stored hash reports a mismatch, never a
// success. bcrypt's comparison is constant-time, so response timing does not
// reveal how close a guess was.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
