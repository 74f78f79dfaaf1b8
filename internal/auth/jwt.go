package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// issuer ties tokens to this service; verification rejects tokens
	// minted by anything else.
	issuer = "userauth"

	// tokenTTL is the fixed token lifetime. Not configurable: a token
	// issued at T stops verifying at T+24h, and the only recourse is
	// logging in again.
	tokenTTL = 24 * time.Hour
)

// Claims is the identity payload embedded in every issued token. A verified
// token's claims are trusted as-is for the request; the user store is not
// re-queried on each call.
type Claims struct {
	UserID   int64  `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies bearer tokens with a process-wide HMAC
// secret. The same secret must be used for both operations: tokens signed
// under a randomly generated secret stop verifying after a restart.
type TokenService struct {
	secret []byte

	// now is the clock used for issuance and expiry checks. Tests swap it
	// to exercise the 24-hour boundary without sleeping.
	now func() time.Time
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// Issue creates and signs a token carrying the given user's identity.
//
// Signing algorithm: HS256. Each token gets a unique jti so two logins in
// the same second still produce distinct tokens.
func (s *TokenService) Issue(userID int64, email, username string) (string, error) {
	now := s.now()

	c := Claims{
		UserID:   userID,
		Email:    email,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			Issuer:    issuer,
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and verifies a token string, returning its claims.
//
// Checks performed: signature validity, expiry (required), issuer match, and
// that the algorithm is HS256. Passing jwt.WithValidMethods closes the
// algorithm-confusion hole where a token declaring alg=none would otherwise
// parse.
//
// The returned error wraps the library's sentinels, so callers can
// distinguish jwt.ErrTokenExpired, jwt.ErrTokenMalformed, and
// jwt.ErrTokenSignatureInvalid in logs and tests. The HTTP layer deliberately
// collapses all of them into one outward response.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: verifying token: %w", err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("auth: invalid token claims")
	}
	if c.UserID <= 0 {
		return nil, errors.New("auth: token has no user id")
	}

	return c, nil
}
