package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/geonosis/console/internal/model"
	"github.com/oapi-codegen/runtime"
)

// ProjectsService binds the /projects endpoints.
type ProjectsService struct {
	client *Client
}

func (s *ProjectsService) List(ctx context.Context) ([]model.ProjectListItem, error) {
	return Request[[]model.ProjectListItem](ctx, s.client, "/projects/", RequestOptions{
		Cache: CacheNoStore,
	})
}

func (s *ProjectsService) Get(ctx context.Context, id string) (model.Project, error) {
	endpoint, err := projectPath(id)
	if err != nil {
		return model.Project{}, err
	}
	return Request[model.Project](ctx, s.client, endpoint, RequestOptions{
		Cache: CacheNoStore,
	})
}

func (s *ProjectsService) Create(ctx context.Context, data model.ProjectCreate) (model.Project, error) {
	return Request[model.Project](ctx, s.client, "/projects/", RequestOptions{
		Method: http.MethodPost,
		Body:   data,
	})
}

func (s *ProjectsService) Update(ctx context.Context, id string, data model.ProjectUpdate) (model.Project, error) {
	endpoint, err := projectPath(id)
	if err != nil {
		return model.Project{}, err
	}
	return Request[model.Project](ctx, s.client, endpoint, RequestOptions{
		Method: http.MethodPatch,
		Body:   data,
	})
}

// Delete removes a project. Any 2xx response counts as success.
func (s *ProjectsService) Delete(ctx context.Context, id string) error {
	endpoint, err := projectPath(id)
	if err != nil {
		return err
	}
	_, err = Request[struct{}](ctx, s.client, endpoint, RequestOptions{
		Method: http.MethodDelete,
	})
	return err
}

func projectPath(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", errors.New("project id is required")
	}
	segment, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return "", fmt.Errorf("encode project id: %w", err)
	}
	return "/projects/" + segment, nil
}
