package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/farhan/userauth/internal/apperror"
)

// ErrorResponse is the error shape every endpoint returns:
//
//	{"error": "conflict", "message": "Email already registered"}
//
// One fixed shape keeps clients' error handling independent of which
// failure occurred.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable kind, e.g. "not_found"
	Message string `json:"message"` // human-readable description
}

// writeJSON sends a JSON response with the given status code. Headers must
// be finalized before the first body byte, so encoding failures after
// WriteHeader can only be logged, not turned into a different response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP response. The service layer
// returns apperror sentinels; this is the one place they become status
// codes, so no handler hand-picks its own.
//
// Anything that is not a recognized AppError is an internal failure: the
// client gets a fixed generic message, because raw error strings can carry
// file paths, SQL, or other detail that must stay server-side. The layer
// that produced the error has already logged it.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
