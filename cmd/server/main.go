// Package main implements the entry point for the task API server,
// a JSON CRUD service for tasks backed by Postgres or SQLite.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/phrazzld/task-api/internal/config"
	"github.com/phrazzld/task-api/internal/platform/logger"
)

// Version is reported by GET /docs. Overridden at build time with -ldflags.
var Version = "1.0.0"

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply database migrations and exit")
	flag.Parse()

	cfg, err := loadAppConfig()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	os.Exit(run(context.Background(), cfg, l, *migrateOnly))
}

// run wires the application and serves until shutdown, returning the
// process exit code.
func run(ctx context.Context, cfg *config.Config, l *slog.Logger, migrateOnly bool) int {
	if migrateOnly {
		// Migrations are the whole point of this invocation.
		cfg.Database.AutoMigrate = true
	}

	db, err := setupAppDatabase(ctx, cfg.Database, l)
	if err != nil {
		l.Error("failed to set up database", slog.String("error", err.Error()))
		return 1
	}

	if migrateOnly {
		l.Info("migrations applied, exiting")
		if err := db.close(); err != nil {
			l.Error("failed to close database", slog.String("error", err.Error()))
			return 1
		}
		return 0
	}

	app, err := newApplication(cfg, l, db)
	if err != nil {
		l.Error("failed to initialize application", slog.String("error", err.Error()))
		_ = db.close()
		return 1
	}

	return app.Run(ctx)
}

// loadAppConfig loads the configuration and logs its non-secret parts.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database", cfg.Database.String())

	return cfg, nil
}
