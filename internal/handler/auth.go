// Package handler contains the HTTP layer: request decoding, response
// encoding, and the translation of domain errors into status codes. No
// business rules live here; handlers parse, delegate to the service, and
// write what comes back.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/farhan/userauth/internal/apperror"
	"github.com/farhan/userauth/internal/auth"
	"github.com/farhan/userauth/internal/model"
	"github.com/farhan/userauth/internal/service"
)

// AuthHandler serves the authentication endpoints.
//
//	POST /register → HandleRegister
//	POST /login    → HandleLogin
//	GET  /users    → HandleListUsers (behind auth.RequireAuth)
//	GET  /profile  → HandleProfile   (behind auth.RequireAuth)
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates an AuthHandler. Dependencies are injected here; the
// handler has no knowledge of how they are constructed.
func NewAuthHandler(service *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string           `json:"message"`
	User    model.PublicUser `json:"user"`
}

type loginResponse struct {
	Message string           `json:"message"`
	Token   string           `json:"token"`
	User    model.PublicUser `json:"user"`
}

// HandleRegister creates a new user account.
//
// HTTP: POST /register
// Body: {"username": ..., "email": ..., "password": ...}
//
// Responses: 201 with the new user's public view; 400 for a body that is
// not JSON or is missing fields; 409 when the email is taken; 500 when
// hashing or persistence fails.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("register: invalid JSON body", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "Invalid JSON body"))
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Message: "User registered successfully",
		User:    user.Public(),
	})
}

// HandleLogin checks credentials and returns a bearer token.
//
// HTTP: POST /login
// Body: {"email": ..., "password": ...}
//
// Responses: 200 with token and public user view; 400 for a bad body; 401
// for any credential failure, always with the same message. The 401 body is
// byte-identical whether the email is unknown or the password wrong.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("login: invalid JSON body", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "Invalid JSON body"))
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   result.Token,
		User:    result.User.Public(),
	})
}

// HandleProfile returns the authenticated user's own record.
//
// HTTP: GET /profile (protected)
//
// The identity comes from the verified token, but the record is re-read
// from the store: a token can outlive its user if the store was reset since
// issuance, which surfaces here as 404.
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		// Only reachable if the route was wired without RequireAuth.
		writeError(w, apperror.Unauthorized("Access token required"))
		return
	}

	user, err := h.service.Profile(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Public())
}

// HandleListUsers returns every user's public view in registration order.
//
// HTTP: GET /users (protected)
func (h *AuthHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}
