package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-api/internal/config"
	"github.com/phrazzld/task-api/internal/service"
)

// application holds the shared dependencies of the server and releases
// them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *database

	taskService service.TaskService
}

// newApplication builds the service layer on top of an already opened database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *database) (*application, error) {
	if db == nil || db.taskStore == nil {
		return nil, fmt.Errorf("database is not initialized")
	}

	taskService, err := service.NewTaskService(db.taskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	return &application{
		config:      cfg,
		logger:      logger,
		db:          db,
		taskService: taskService,
	}, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() error {
	if err := app.db.close(); err != nil {
		app.logger.Error("Error closing database connection", "error", err)
		return err
	}
	app.logger.Info("Application shutdown completed")
	return nil
}
