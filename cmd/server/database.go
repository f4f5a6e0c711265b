package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver for database/sql
	"github.com/phrazzld/task-api/internal/config"
	"github.com/phrazzld/task-api/internal/platform/postgres"
	"github.com/phrazzld/task-api/internal/platform/sqlite"
	"github.com/phrazzld/task-api/internal/store"
)

// pingTimeout bounds the startup connectivity check.
const pingTimeout = 5 * time.Second

// database bundles the pool with the task store built on it.
type database struct {
	pool      *sql.DB
	taskStore store.TaskStore
}

func (d *database) close() error {
	if d == nil || d.pool == nil {
		return nil
	}
	return d.pool.Close()
}

// setupAppDatabase opens the configured backend, verifies connectivity and,
// when enabled, brings the schema up to date.
func setupAppDatabase(ctx context.Context, cfg config.DatabaseConfig, l *slog.Logger) (*database, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return setupPostgres(ctx, cfg, l)
	case config.DriverSQLite:
		return setupSQLite(cfg, l)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func setupPostgres(ctx context.Context, cfg config.DatabaseConfig, l *slog.Logger) (*database, error) {
	pool, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	l.Info("Database connection established", slog.String("dsn", cfg.SafeDSN()))

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, l); err != nil {
			_ = pool.Close()
			return nil, err
		}
	}

	return &database{
		pool:      pool,
		taskStore: postgres.NewPostgresTaskStore(pool, l),
	}, nil
}

// setupSQLite opens the file database. Its schema is created on open,
// so AutoMigrate has nothing further to do.
func setupSQLite(cfg config.DatabaseConfig, l *slog.Logger) (*database, error) {
	gormDB, err := sqlite.Open(cfg.SQLitePath, l)
	if err != nil {
		return nil, err
	}

	pool, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite connection pool: %w", err)
	}

	return &database{
		pool:      pool,
		taskStore: sqlite.NewTaskStore(gormDB, l),
	}, nil
}
