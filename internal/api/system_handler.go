package api

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/phrazzld/task-api/internal/platform/logger"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "task-api"

// ReadyTimeout bounds the database ping made by the readiness probe.
const ReadyTimeout = time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SystemHandler serves the service-level endpoints: root, health, readiness
// and the route listing.
type SystemHandler struct {
	db     Pinger
	logger *slog.Logger
}

// NewSystemHandler creates a new SystemHandler. db may be nil, in which
// case the service never reports ready.
func NewSystemHandler(db Pinger, logger *slog.Logger) *SystemHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SystemHandler{
		db:     db,
		logger: logger.With(slog.String("component", "system_handler")),
	}
}

// RootResponse is returned by GET /.
type RootResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Docs    string `json:"docs"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ReadyResponse is returned by GET /ready when the database answers.
type ReadyResponse struct {
	Status string `json:"status"`
}

// RouteInfo describes one registered route.
type RouteInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// DocsResponse is returned by GET /docs.
type DocsResponse struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Routes      []RouteInfo `json:"routes"`
}

// Root handles GET /.
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, RootResponse{
		Message: "Task API - CRUD",
		Status:  "running",
		Docs:    "/docs",
	})
}

// Health handles GET /health. It never touches the database.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: ServiceName,
	})
}

// Ready handles GET /ready by pinging the database.
func (h *SystemHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ReadyTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("readiness check failed")
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReadyResponse{Status: "ready"})
}

// Docs returns a handler for GET /docs that lists the routes of routes,
// sorted by path and then method.
func (h *SystemHandler) Docs(routes chi.Routes, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var infos []RouteInfo
		walk := func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			route = strings.ReplaceAll(route, "/*/", "/")
			if len(route) > 1 {
				route = strings.TrimSuffix(route, "/")
			}
			infos = append(infos, RouteInfo{Method: method, Path: route})
			return nil
		}
		if err := chi.Walk(routes, walk); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to list routes", err)
			return
		}

		sort.Slice(infos, func(i, j int) bool {
			if infos[i].Path != infos[j].Path {
				return infos[i].Path < infos[j].Path
			}
			return infos[i].Method < infos[j].Method
		})

		shared.RespondWithJSON(w, r, http.StatusOK, DocsResponse{
			Title:       "Task API",
			Description: "A CRUD API for managing tasks",
			Version:     version,
			Routes:      infos,
		})
	}
}
