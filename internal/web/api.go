package web

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/geonosis/console/internal/config"
)

func (s *Server) registerOperations() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Console liveness",
	}, s.health)

	huma.Register(s.api, huma.Operation{
		OperationID: "clientConfig",
		Method:      http.MethodGet,
		Path:        "/client-config",
		Summary:     "API base URL for browser clients",
	}, s.clientConfig)
}

type healthOutput struct {
	Body struct {
		Ok      bool   `json:"ok"`
		Version string `json:"version"`
	}
}

func (s *Server) health(_ context.Context, _ *struct{}) (*healthOutput, error) {
	out := &healthOutput{}
	out.Body.Ok = true
	out.Body.Version = Version
	return out, nil
}

type clientConfigOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         struct {
		APIBaseURL string `json:"api_base_url"`
		APIPrefix  string `json:"api_prefix"`
	}
}

func (s *Server) clientConfig(_ context.Context, _ *struct{}) (*clientConfigOutput, error) {
	out := &clientConfigOutput{CacheControl: "no-store"}
	out.Body.APIBaseURL = s.browserAPIBaseURL()
	out.Body.APIPrefix = config.APIPrefix
	return out, nil
}
