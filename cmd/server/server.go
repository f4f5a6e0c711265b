package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

// Server timeouts.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
)

func (app *application) newHTTPServer(handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// Run serves HTTP until SIGINT or SIGTERM, then drains in-flight requests
// and closes the database within the configured timeout. It returns the
// process exit code.
func (app *application) Run(ctx context.Context) int {
	server := app.newHTTPServer(app.setupRouter())

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, app.config.Server.ShutdownTimeout(),
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				app.logger.Info("Shutting down server...")
				return server.Shutdown(ctx)
			},
		},
	)

	var exitCode int
	select {
	case err := <-serveErr:
		app.logger.Error("Server failed", slog.String("error", err.Error()))
		exitCode = 1
	case exitCode = <-wait:
	}

	if err := app.cleanup(); err != nil && exitCode == 0 {
		exitCode = 1
	}
	app.logger.Info("Server exited", slog.Int("exit_code", exitCode))
	return exitCode
}
