// Package web serves the server-rendered Geonosis console.
package web

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/geonosis/console/internal/apiclient"
	"github.com/geonosis/console/internal/config"
	"github.com/geonosis/console/internal/httplog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
)

const Version = "0.1.0"

type Options struct {
	// InternalAPIURL and PublicAPIURL feed the base URL resolver.
	InternalAPIURL string
	PublicAPIURL   string
	// SessionKey signs the flash cookie. A random key is generated when
	// empty, so toasts do not survive a restart.
	SessionKey []byte
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Server struct {
	opts     Options
	logger   *slog.Logger
	flash    *sessions.CookieStore
	renderer *renderer
	router   *chi.Mux
	api      huma.API
	handler  http.Handler
}

func New(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	key := opts.SessionKey
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session key: %w", err)
		}
		logger.Warn("no session key configured, using an ephemeral one")
	}

	pages, err := newRenderer(templateFS)
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:     opts,
		logger:   logger,
		flash:    newFlashStore(key),
		renderer: pages,
		router:   chi.NewRouter(),
	}
	s.routes()
	s.handler = httplog.Recover(logger, s.router)

	s.logger.Info("web console initialized",
		"api_base_url", s.apiBaseURL(),
		"browser_api_base_url", s.browserAPIBaseURL(),
	)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.api.OpenAPI()
}

// apiBaseURL is resolved on every call so the server always reflects its
// current options.
func (s *Server) apiBaseURL() string {
	return config.ResolveBaseURL(config.ContextServer, s.opts.InternalAPIURL, s.opts.PublicAPIURL)
}

// browserAPIBaseURL is the address a browser would use to reach the API.
func (s *Server) browserAPIBaseURL() string {
	return config.ResolveBaseURL(config.ContextBrowser, s.opts.InternalAPIURL, s.opts.PublicAPIURL)
}

func (s *Server) apiClient() *apiclient.Client {
	return apiclient.New(s.apiBaseURL(),
		apiclient.WithHTTPClient(s.opts.HTTPClient),
		apiclient.WithLogger(s.logger),
	)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(httplog.Middleware(s.logger))

	cfg := huma.DefaultConfig("Geonosis Console", Version)
	cfg.OpenAPIPath = "/openapi"
	cfg.DocsPath = ""
	s.api = humachi.New(s.router, cfg)
	s.registerOperations()

	s.router.Get("/static/*", s.staticHandler())

	s.router.Get("/", s.homePage)
	s.router.Get("/projects", s.projectsPage)
	s.router.Get("/projects/new", s.newProjectPage)
	s.router.Post("/projects", s.createProject)
	s.router.Get("/projects/{id}", s.projectPage)
	s.router.Get("/projects/{id}/edit", s.editProjectPage)
	s.router.Post("/projects/{id}/edit", s.updateProject)
	s.router.Get("/projects/{id}/delete", s.deleteProjectPage)
	s.router.Post("/projects/{id}/delete", s.deleteProject)

	s.router.NotFound(s.notFoundPage)
}
