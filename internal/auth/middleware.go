package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package, so only
// this package can read or write the claims value.
type contextKey string

const claimsKey contextKey = "claims"

// authError mirrors the handler package's error response shape. The
// middleware cannot import handler (handler imports auth), so it carries its
// own copy.
type authError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RequireAuth enforces bearer-token authentication on protected routes.
//
// A request with no Authorization header is rejected with 401. A request
// with a header that fails extraction or verification for any reason is
// rejected with 403, always with the same body. The response never says
// whether the token was malformed, forged, or expired.
//
// On success the verified claims are stored in the request context for
// handlers to read via ClaimsFromContext.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "Access token required")
				return
			}

			tokenStr, err := extractBearerToken(header)
			if err != nil {
				writeAuthError(w, http.StatusForbidden, "forbidden", "Invalid or expired token")
				return
			}

			claims, err := tokens.Verify(tokenStr)
			if err != nil {
				writeAuthError(w, http.StatusForbidden, "forbidden", "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext retrieves the verified token claims from the request
// context. Returns (nil, false) if the request did not pass RequireAuth.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok && c != nil
}

// extractBearerToken pulls the token out of an Authorization header value.
// The scheme must be "Bearer" (case-insensitive) and the token non-empty.
func extractBearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("auth: authorization header is not a bearer token")
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("auth: empty bearer token")
	}

	return token, nil
}

func writeAuthError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(authError{Error: errType, Message: message})
}
