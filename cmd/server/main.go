// Package main is the entry point for the userauth server. It loads
// configuration from the environment, builds the logger, and hands both to
// internal/server, which owns all further wiring. Keeping main this small
// means every component below it can be constructed and tested without a
// process boundary.
package main

import (
	"log/slog"
	"os"

	"github.com/farhan/userauth/internal/config"
	"github.com/farhan/userauth/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The configured logger does not exist yet, so build a bare one
		// for this single line.
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("invalid configuration",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	if cfg.SecretGenerated {
		logger.Warn("JWT_SECRET not set, using a random per-process signing key; " +
			"outstanding tokens will not verify after a restart")
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down via SIGINT or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
