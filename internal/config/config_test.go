package config

import (
	"log/slog"
	"os"
	"testing"
)

// clearEnv unsets every variable Load reads. t.Setenv registers the restore
// for when the test ends; os.Unsetenv then actually clears the value.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "JWT_SECRET", "BCRYPT_COST", "STORE_BACKEND",
		"USERS_FILE", "DB_PATH", "CORS_ORIGINS", "LOG_LEVEL",
	}
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.StoreBackend != BackendFile {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, BackendFile)
	}
	if cfg.UsersFile != "data/users.json" {
		t.Errorf("UsersFile = %q, want %q", cfg.UsersFile, "data/users.json")
	}
	if cfg.DBPath != "data/users.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "data/users.db")
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.CORSOrigins)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, slog.LevelInfo)
	}
}

func TestLoad_GeneratesSecretWhenUnset(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.SecretGenerated {
		t.Error("SecretGenerated = false, want true")
	}
	// 32 random bytes hex-encoded.
	if len(cfg.JWTSecret) != 64 {
		t.Errorf("len(JWTSecret) = %d, want 64", len(cfg.JWTSecret))
	}

	other, err := Load()
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if other.JWTSecret == cfg.JWTSecret {
		t.Error("two generated secrets are identical")
	}
}

func TestLoad_KeepsSuppliedSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "configured-secret-value-32-chars")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.JWTSecret != "configured-secret-value-32-chars" {
		t.Errorf("JWTSecret = %q, want the configured value", cfg.JWTSecret)
	}
	if cfg.SecretGenerated {
		t.Error("SecretGenerated = true for a supplied secret")
	}
}

func TestLoad_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port not a number", "PORT", "eighty"},
		{"port out of range", "PORT", "70000"},
		{"port zero", "PORT", "0"},
		{"bcrypt cost too low", "BCRYPT_COST", "3"},
		{"bcrypt cost too high", "BCRYPT_COST", "32"},
		{"unknown store backend", "STORE_BACKEND", "mongo"},
		{"unknown log level", "LOG_LEVEL", "chatty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() with %s=%s should fail", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_OverridesApply(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("DB_PATH", "/tmp/test-users.db")
	t.Setenv("CORS_ORIGINS", "https://app.example.com,https://admin.example.com")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.BcryptCost != 4 {
		t.Errorf("BcryptCost = %d, want 4", cfg.BcryptCost)
	}
	if cfg.StoreBackend != BackendSQLite {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, BackendSQLite)
	}
	if cfg.DBPath != "/tmp/test-users.db" {
		t.Errorf("DBPath = %q, want /tmp/test-users.db", cfg.DBPath)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("CORSOrigins = %v, want 2 entries", cfg.CORSOrigins)
	}
	if cfg.CORSOrigins[0] != "https://app.example.com" {
		t.Errorf("CORSOrigins[0] = %q", cfg.CORSOrigins[0])
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, slog.LevelDebug)
	}
}
