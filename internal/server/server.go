// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the composition root: it opens the store, builds the
// services and handlers on top of it, and maps URLs to handlers.
//
// DEPENDENCY CHAIN:
//
//	config.Config → repository.Store (sqlite or postgres)
//	             → service.ItemService / service.UserService
//	             → handler.ItemHandler / handler.PageHandler
//	             → chi router
package server

import (
	"context"
	"errors"
	"fmt"
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

	"github.com/sakif/shopping-list/internal/config"
	"github.com/sakif/shopping-list/internal/handler"
	"github.com/sakif/shopping-list/internal/middleware"
	"github.com/sakif/shopping-list/internal/repository"
	"github.com/sakif/shopping-list/internal/repository/postgres"
	sqliteRepo "github.com/sakif/shopping-list/internal/repository/sqlite"
	"github.com/sakif/shopping-list/internal/service"
)

// Server owns the router and the store. The store is closed when Start
// returns.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	store  repository.Store
}

// New opens the configured store, seeds the default user and builds the
// router.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// The demo user stands in for authentication; every request without a
	// userId acts as this account.
	users := service.NewUserService(store, logger)
	if _, err := users.EnsureUser(ctx, cfg.DefaultUserID); err != nil {
		store.Close()
		return nil, fmt.Errorf("seeding default user: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(); err != nil {
		store.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// openStore picks the backend from DB_DRIVER.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DatabaseURL)
	default:
		if cfg.DBPath != ":memory:" {
			// Like `mkdir -p`; the sqlite driver will not create directories.
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		return sqliteRepo.New(cfg.DBPath)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /                                 → shopping-list page (HTML)
// GET    /static/*                         → stylesheet and client script
// GET    /healthz                          → {"ok": true}
// GET    /api/shopping-items               → list
// POST   /api/shopping-items               → create
// PATCH  /api/shopping-items/reset         → reset all
// PATCH  /api/shopping-items/{id}/toggle   → toggle
// PATCH  /api/shopping-items/{id}          → partial update
// DELETE /api/shopping-items/{id}          → delete
//
// MIDDLEWARE ORDER:
// RequestID first so the logger can read the id, Recoverer inside the
// logger so a recovered panic is logged as a 500, CORS last so preflight
// requests are answered before routing.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	// GET /static/style.css → {StaticDir}/style.css
	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	itemService := service.NewItemService(s.store, s.logger)
	itemHandler := handler.NewItemHandler(itemService, s.config.DefaultUserID, s.logger)

	pageHandler, err := handler.NewPageHandler(itemService, s.config.DefaultUserID, s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}
	s.router.Get("/", pageHandler.HandleList)
	s.router.Get("/healthz", itemHandler.HandleHealth)

	s.router.Route("/api", itemHandler.Routes)

	return nil
}

// Start runs the HTTP server until SIGINT or SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests up to 30
// seconds, close the store.
func (s *Server) Start() error {
	defer s.store.Close()

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
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("driver", s.config.DBDriver),
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

// Close releases the store without starting the server.
func (s *Server) Close() error {
	return s.store.Close()
}
