// Package devapi serves a local stand-in for the Geonosis REST API backed by
// sqlite. It exists for development and end-to-end tests of the console.
package devapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/geonosis/console/internal/config"
	"github.com/geonosis/console/internal/httplog"
	"github.com/geonosis/console/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/handlers"
)

const (
	Title   = "Geonosis API"
	Version = "0.1.0"
)

type Options struct {
	SQLitePath  string
	CORSOrigins []string
	Logger      *slog.Logger
}

type Server struct {
	store   *store.SQLiteStore
	logger  *slog.Logger
	router  *chi.Mux
	api     huma.API
	handler http.Handler
}

func New(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sqliteStore, err := store.NewSQLiteStore(opts.SQLitePath)
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:  sqliteStore,
		logger: logger,
		router: chi.NewRouter(),
	}
	s.routes()
	s.handler = httplog.Recover(logger, handlers.CORS(
		handlers.AllowedOrigins(opts.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Cache-Control"}),
		handlers.AllowCredentials(),
	)(s.router))

	s.logger.Info("dev api initialized", "sqlite_path", opts.SQLitePath, "cors_origins", opts.CORSOrigins)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.api.OpenAPI()
}

func (s *Server) Close() error {
	return s.store.Close()
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(httplog.Middleware(s.logger))

	cfg := huma.DefaultConfig(Title, Version)
	cfg.OpenAPIPath = "/openapi"
	cfg.DocsPath = ""

	s.api = humachi.New(s.router, cfg)
	s.registerOperations()
}

func (s *Server) registerOperations() {
	huma.Register(s.api, huma.Operation{
		OperationID: "root",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "API information",
	}, s.root)

	huma.Register(s.api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, s.health)

	prefix := config.APIPrefix

	huma.Register(s.api, huma.Operation{
		OperationID: "listProjects",
		Method:      http.MethodGet,
		Path:        prefix + "/projects/",
		Summary:     "List projects",
		Errors:      []int{http.StatusInternalServerError},
	}, s.listProjects)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createProject",
		Method:        http.MethodPost,
		Path:          prefix + "/projects/",
		DefaultStatus: http.StatusCreated,
		Summary:       "Create project",
		Errors:        []int{http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, s.createProject)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProject",
		Method:      http.MethodGet,
		Path:        prefix + "/projects/{id}",
		Summary:     "Get project",
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, s.getProject)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProject",
		Method:      http.MethodPatch,
		Path:        prefix + "/projects/{id}",
		Summary:     "Update project",
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, s.updateProject)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteProject",
		Method:        http.MethodDelete,
		Path:          prefix + "/projects/{id}",
		DefaultStatus: http.StatusNoContent,
		Summary:       "Delete project",
		Errors:        []int{http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, s.deleteProject)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFeatures",
		Method:      http.MethodGet,
		Path:        prefix + "/features/project/{project_id}",
		Summary:     "List features of a project",
		Errors:      []int{http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, s.listFeatures)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createFeaturesBulk",
		Method:        http.MethodPost,
		Path:          prefix + "/features/bulk",
		DefaultStatus: http.StatusCreated,
		Summary:       "Create features in bulk",
		Errors:        []int{http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, s.createFeaturesBulk)
}

type rootOutput struct {
	Body struct {
		Message string `json:"message"`
		Status  string `json:"status"`
		Version string `json:"version"`
	}
}

func (s *Server) root(_ context.Context, _ *struct{}) (*rootOutput, error) {
	out := &rootOutput{}
	out.Body.Message = Title
	out.Body.Status = "operational"
	out.Body.Version = Version
	return out, nil
}

type healthOutput struct {
	Body struct {
		Status   string `json:"status" enum:"healthy,unhealthy"`
		Database string `json:"database" enum:"connected,disconnected"`
		Version  string `json:"version"`
	}
}

func (s *Server) health(ctx context.Context, _ *struct{}) (*healthOutput, error) {
	out := &healthOutput{}
	out.Body.Version = Version
	out.Body.Status = "healthy"
	out.Body.Database = "connected"

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.store.Ping(pingCtx); err != nil {
		s.logger.Warn("database ping failed", "error", err)
		out.Body.Status = "unhealthy"
		out.Body.Database = "disconnected"
	}
	return out, nil
}
