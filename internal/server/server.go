// Package server wires the application together: it selects the storage
// backend, builds the auth services, mounts every route with its middleware,
// and runs the HTTP server until a shutdown signal arrives.
//
// All dependency construction happens here, in one place. main.go only loads
// configuration and calls New/Start; handlers receive services, services
// receive the repository interface, and nothing below this package knows
// which concrete store is in use.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/farhan/userauth/internal/auth"
	"github.com/farhan/userauth/internal/config"
	"github.com/farhan/userauth/internal/handler"
	"github.com/farhan/userauth/internal/middleware"
	"github.com/farhan/userauth/internal/repository"
	fileRepo "github.com/farhan/userauth/internal/repository/file"
	sqliteRepo "github.com/farhan/userauth/internal/repository/sqlite"
	"github.com/farhan/userauth/internal/service"
)

// Server holds the router and the resources it owns. The store's closer is
// kept so shutdown can release it after in-flight requests drain.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger

	// closer is non-nil when the selected store holds resources that need
	// releasing on shutdown (the sqlite connection pool). The file store
	// has nothing to close.
	closer io.Closer
}

// New builds a fully wired Server from the given configuration.
//
// The dependency chain assembled here:
//
//	store (file or sqlite, per config)
//	  → service.AuthService (with TokenService and PasswordService)
//	    → handler.AuthHandler
//	      → routes
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	store, closer, err := openStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("opening user store: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(cfg.BcryptCost)

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		closer: closer,
	}

	authService := service.NewAuthService(store, tokens, passwords, logger)
	authHandler := handler.NewAuthHandler(authService, logger)
	s.setupRoutes(authHandler, tokens)

	return s, nil
}

// openStore creates the storage adapter the configuration selects and makes
// sure its data directory exists. Config validation already rejected unknown
// backends, so the default branch only guards against a missed call site.
func openStore(cfg config.Config, logger *slog.Logger) (repository.UserRepository, io.Closer, error) {
	switch cfg.StoreBackend {
	case config.BackendFile:
		if err := ensureDir(cfg.UsersFile); err != nil {
			return nil, nil, err
		}
		return fileRepo.New(cfg.UsersFile, logger), nil, nil

	case config.BackendSQLite:
		if err := ensureDir(cfg.DBPath); err != nil {
			return nil, nil, err
		}
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// ensureDir creates the parent directory of path if it does not exist yet.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", dir, err)
	}
	return nil
}

// setupRoutes mounts the middleware chain and every route.
//
// Middleware order: request IDs are assigned first so everything after can
// log them, Recoverer turns panics anywhere below into 500s instead of
// killing the process, and CORS runs before the routes so preflight requests
// are answered without touching handlers.
func (s *Server) setupRoutes(authHandler *handler.AuthHandler, tokens *auth.TokenService) {
	s.router.Use(middleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	// Public routes.
	s.router.Get("/", handler.HandleStatus)
	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Post("/login", authHandler.HandleLogin)

	// Protected routes: the bearer gate rejects the request before the
	// handler runs unless a verifiable token is presented.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/users", authHandler.HandleListUsers)
		r.Get("/profile", authHandler.HandleProfile)
	})
}

// Handler returns the fully wired router. Tests drive it through httptest
// without binding a socket.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the store without going through Start. Start performs the
// same release itself after the listener drains.
func (s *Server) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// Start runs the HTTP server until it fails or a SIGINT/SIGTERM arrives.
//
// On a signal, new connections stop being accepted, in-flight requests get
// 30 seconds to finish, and then the store is closed so a sqlite backend
// flushes its WAL and releases its file lock.
func (s *Server) Start() error {
	if s.closer != nil {
		defer s.closer.Close()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("store", s.config.StoreBackend),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
