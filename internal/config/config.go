// Package config loads process configuration from environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// Storage backend selectors for StoreBackend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds everything the server needs at startup. Values are read once
// from the environment; nothing re-reads them at runtime.
type Config struct {
	Port int `env:"PORT" envDefault:"8080"`

	// JWTSecret signs bearer tokens. When unset or empty a random secret
	// is generated for this process's lifetime, which invalidates all
	// outstanding tokens on restart.
	JWTSecret string `env:"JWT_SECRET"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	// StoreBackend selects the user store: BackendFile keeps users in
	// memory mirrored to a JSON file, BackendSQLite uses an embedded
	// database.
	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"`
	UsersFile    string `env:"USERS_FILE" envDefault:"data/users.json"`
	DBPath       string `env:"DB_PATH" envDefault:"data/users.db"`

	CORSOrigins []string   `env:"CORS_ORIGINS" envDefault:"*"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	// SecretGenerated reports that JWTSecret was randomly generated at
	// load time rather than supplied. main logs a warning off it.
	SecretGenerated bool `env:"-"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("config: PORT out of range: %d", cfg.Port)
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("config: BCRYPT_COST must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, cfg.BcryptCost)
	}
	if cfg.StoreBackend != BackendFile && cfg.StoreBackend != BackendSQLite {
		return Config{}, fmt.Errorf("config: unknown STORE_BACKEND %q (want %q or %q)",
			cfg.StoreBackend, BackendFile, BackendSQLite)
	}

	if cfg.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return Config{}, fmt.Errorf("config: generating JWT secret: %w", err)
		}
		cfg.JWTSecret = secret
		cfg.SecretGenerated = true
	}

	return cfg, nil
}

// randomSecret returns 32 random bytes hex-encoded, matching what
// `openssl rand -hex 32` would produce for JWT_SECRET.
func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
