// Package main implements the entry point for the GMU Book Trading API
// server, which serves the campus textbook marketplace and can run the
// database migrations.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/gmubooktrading/api/internal/config"
	"github.com/gmubooktrading/api/internal/platform/logger"
	"github.com/gmubooktrading/api/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run database migrations and exit (up, down, status, version)")
	flag.Parse()

	if err := run(context.Background(), *migrateCmd); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// run loads configuration, sets up logging and the database, then either
// runs the requested migration command or serves HTTP until shutdown.
func run(ctx context.Context, migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("Server configuration loaded",
		slog.String("address", cfg.Server.Address()),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("local_jwt_verification", cfg.Supabase.JWTSecret != ""))

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return postgres.Migrate(ctx, db, migrateCmd, l)
	}
	l.Info("Database connection established")

	app, err := newApplication(cfg, l, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
