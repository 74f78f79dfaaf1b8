// Package service implements the authentication use cases. It sits between
// the HTTP handlers and the storage/auth packages:
//
//	handler (HTTP) → service (business rules) → repository (credential store)
//	               ↘ auth (bcrypt, JWT)
//
// Methods accept primitives and return domain errors from apperror; the
// handler layer translates those into HTTP status codes. The service holds
// no state of its own, so every call is independent of the previous one.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/farhan/userauth/internal/apperror"
	"github.com/farhan/userauth/internal/auth"
	"github.com/farhan/userauth/internal/model"
	"github.com/farhan/userauth/internal/repository"
)

// errInvalidCredentials is the one error every caller-caused login failure
// maps to. Unknown email and wrong password must stay indistinguishable, or
// the login endpoint becomes an oracle for which emails are registered.
var errInvalidCredentials = apperror.Unauthorized("Invalid email or password")

// AuthService handles the authentication business logic.
//
// Dependencies (injected via NewAuthService):
//   - users      repository.UserRepository → read/write user records
//   - tokens     *auth.TokenService        → issue bearer tokens on login
//   - passwords  *auth.PasswordService     → bcrypt hashing and verification
//   - logger     *slog.Logger              → structured business-event logs
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued token so the login
// handler can build its response in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new user account.
//
// The sequence per request: validate that all three fields are present,
// check that the email is free, hash the password, append to the store.
// The uniqueness check runs before hashing so a duplicate registration does
// not pay bcrypt's cost; the store re-checks inside its own critical
// section, so a concurrent duplicate that slips past this first check still
// loses, with the same conflict error.
//
// A persistence failure comes back to the caller (the handler maps it to a
// 500) even though the store may keep the record in memory; see the store's
// Create contract.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperror.Conflict("Email already registered")
	case !errors.Is(err, apperror.ErrNotFound):
		s.logger.Error("register: email lookup failed",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		s.logger.Error("register: password hashing failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			// Lost the race against a concurrent registration of the
			// same email between our check and the store's.
			return nil, err
		}
		s.logger.Error("register: storing user failed",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: storing user: %w", err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login checks credentials and issues a bearer token carrying the user's
// identity.
//
// Every failure the caller can cause returns errInvalidCredentials: unknown
// email, wrong password, and even a corrupt stored hash, which is logged
// because it means the data set is damaged but is never reported
// differently to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)

	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		s.logger.Error("login: email lookup failed",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Warn("login: password verification failed",
			slog.Int64("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, errInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Username)
	if err != nil {
		s.logger.Error("login: issuing token failed",
			slog.Int64("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: issuing token: %w", err)
	}

	s.logger.Info("user logged in",
		slog.Int64("userID", user.ID),
		slog.String("email", user.Email),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// Profile returns the user record behind a verified token's identity.
//
// The request gate trusts token claims without consulting the store, so
// this is the first lookup on the request path. A token can outlive its
// user, for example when the users file was reset after issuance, and
// that case legitimately reports not found.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("profile: user lookup failed",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: fetching user %d: %w", userID, err)
	}

	return user, nil
}

// ListUsers returns every user's public view in registration order. The
// store strips password hashes before the records get here.
func (s *AuthService) ListUsers(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("listing users failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/auth: listing users: %w", err)
	}

	return users, nil
}
