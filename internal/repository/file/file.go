// Package file implements the user repository as an in-memory list mirrored
// to a flat JSON file.
//
// The store owns the authoritative copy of the user list in memory and
// rewrites the whole file after every mutation. On startup the file is read
// back if present; a missing or unreadable file yields an empty store rather
// than an error. The on-disk shape is:
//
//	{
//	  "users": [
//	    {"id": 1, "username": "...", "email": "...", "passwordHash": "...", "createdAt": "..."}
//	  ]
//	}
//
// All operations take a single RWMutex. The write lock spans the uniqueness
// check, the ID assignment, the append, and the flush, so concurrent
// registrations of the same email cannot both succeed and flushes never
// interleave. Flushes write a temp file and rename it over the target, so a
// crash mid-write leaves the previous file intact.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/farhan/userauth/internal/apperror"
	"github.com/farhan/userauth/internal/model"
	"github.com/farhan/userauth/internal/repository"
)

// compile-time check that *Store implements repository.UserRepository
var _ repository.UserRepository = (*Store)(nil)

// userRecord is the on-disk form of a user. It exists so the password hash
// can be persisted while model.User keeps its hash out of JSON entirely.
type userRecord struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// document is the top-level file shape.
type document struct {
	Users []userRecord `json:"users"`
}

// Store keeps users in memory and mirrors them to path after every mutation.
type Store struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	users  []model.User
	nextID int64
}

// New creates a Store backed by the file at path, loading any existing
// records. A missing file starts an empty store; an unreadable or corrupt
// file is logged and also starts an empty store, matching startup behavior
// where the file is a mirror, not a source of truth the process refuses to
// run without.
func New(path string, logger *slog.Logger) *Store {
	s := &Store{
		path:   path,
		logger: logger,
		nextID: 1,
	}
	s.load()
	return s
}

// load reads the file into memory and seeds the ID counter past the highest
// existing ID.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("users file not found, starting empty",
				slog.String("path", s.path))
			return
		}
		s.logger.Error("users file unreadable, starting empty",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Error("users file corrupt, starting empty",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return
	}

	s.users = make([]model.User, 0, len(doc.Users))
	for _, rec := range doc.Users {
		s.users = append(s.users, model.User{
			ID:           rec.ID,
			Username:     rec.Username,
			Email:        rec.Email,
			PasswordHash: rec.PasswordHash,
			CreatedAt:    rec.CreatedAt,
		})
		if rec.ID >= s.nextID {
			s.nextID = rec.ID + 1
		}
	}

	s.logger.Info("loaded users from file",
		slog.String("path", s.path),
		slog.Int("count", len(s.users)))
}

// Create assigns the next ID, appends the user, and flushes to disk. The
// whole sequence holds the write lock, so the uniqueness re-check here is
// race-free even though the service layer already checked once before
// hashing.
//
// A flush failure is returned to the caller, but the in-memory record is
// kept: memory runs ahead of disk until the next successful flush. Callers
// see the error; the appended user still exists for this process's lifetime.
func (s *Store) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].Email == user.Email {
			return apperror.Conflict("Email already registered")
		}
	}

	user.ID = s.nextID
	s.nextID++
	user.CreatedAt = time.Now().UTC()
	s.users = append(s.users, *user)

	if err := s.flush(); err != nil {
		return fmt.Errorf("file: persisting users: %w", err)
	}
	return nil
}

// GetByEmail returns the user with exactly the given email. Comparison is
// byte-exact, so differently cased addresses are different users. The scan
// is linear; that is the store's documented contract at this scale.
func (s *Store) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].Email == email {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("User")
}

// GetByID returns the user with the given ID via a linear scan.
func (s *Store) GetByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("User")
}

// List returns all users' public views in registration order.
func (s *Store) List(ctx context.Context) ([]model.PublicUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]model.PublicUser, 0, len(s.users))
	for i := range s.users {
		users = append(users, s.users[i].Public())
	}
	return users, nil
}

// flush rewrites the whole file from the in-memory list. Callers must hold
// the write lock. The write goes to a temp file in the same directory which
// is then renamed over the target, so readers of the path never observe a
// half-written file.
func (s *Store) flush() error {
	doc := document{Users: make([]userRecord, 0, len(s.users))}
	for _, u := range s.users {
		doc.Users = append(doc.Users, userRecord{
			ID:           u.ID,
			Username:     u.Username,
			Email:        u.Email,
			PasswordHash: u.PasswordHash,
			CreatedAt:    u.CreatedAt,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding users: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing users file: %w", err)
	}
	return nil
}
