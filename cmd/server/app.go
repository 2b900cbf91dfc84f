package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gmubooktrading/api/internal/config"
	"github.com/gmubooktrading/api/internal/platform/metrics"
	"github.com/gmubooktrading/api/internal/platform/postgres"
	"github.com/gmubooktrading/api/internal/platform/supabase"
	"github.com/gmubooktrading/api/internal/service"
	"github.com/gmubooktrading/api/internal/service/auth"
	"github.com/gmubooktrading/api/internal/service/identity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	registry *prometheus.Registry
	metrics  *metrics.Collector

	identity identity.Service
	books    service.BookService
	listings service.ListingService
	requests service.RequestService
}

// newApplication wires the provider clients, stores and services. The
// database pool must already be open.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: prometheus.NewRegistry(),
	}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.NewCollector(app.registry)

	// Both provider clients share one transport; the key decides privileges.
	httpClient := &http.Client{Timeout: cfg.Auth.RequestTimeout}
	users := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, httpClient, logger).
		WithObserver(app.metrics)
	admin := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey, httpClient, logger).
		WithObserver(app.metrics)

	verifier, err := newTokenVerifier(cfg.Supabase, users)
	if err != nil {
		return nil, err
	}

	bookStore := postgres.NewPostgresBookStore(db, logger)
	listingStore := postgres.NewPostgresListingStore(db, logger)
	imageStore := postgres.NewPostgresListingImageStore(db, logger)
	requestStore := postgres.NewPostgresRequestStore(db, logger)
	profileStore := postgres.NewPostgresProfileStore(db, logger)

	app.identity = identity.NewService(identity.Config{
		EmailDomain:    cfg.Auth.EmailDomain,
		RedirectURL:    cfg.Auth.EmailRedirectURL,
		SignupTimeout:  cfg.Auth.SignupTimeout,
		RequestTimeout: cfg.Auth.RequestTimeout,
	}, users, admin, verifier, profileStore, logger)

	app.books, err = service.NewBookService(bookStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create book service: %w", err)
	}

	app.listings, err = service.NewListingService(db, listingStore, imageStore, bookStore, profileStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing service: %w", err)
	}

	app.requests, err = service.NewRequestService(db, requestStore, profileStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create request service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// newTokenVerifier verifies access tokens locally when the project's JWT
// secret is configured and asks the provider otherwise.
func newTokenVerifier(cfg config.SupabaseConfig, users auth.UserLookup) (auth.TokenVerifier, error) {
	if cfg.JWTSecret == "" {
		return auth.NewProviderVerifier(users), nil
	}
	verifier, err := auth.NewJWTService(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT verifier: %w", err)
	}
	return verifier, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("Application shutdown completed")
}
