package devapi

import (
	"context"
	"time"

	"github.com/geonosis/console/internal/store"
)

type projectResponse struct {
	ID             string    `json:"id" format:"uuid"`
	Name           string    `json:"name"`
	Epic           string    `json:"epic"`
	Type           string    `json:"type" enum:"NEW_PROJECT,EXISTING_PROJECT_BUG,EXISTING_PROJECT_FEATURE"`
	Status         string    `json:"status" enum:"DRAFT,ANALYZING,FEATURES_PENDING_REVIEW,FEATURES_REJECTED,APPROVED,REPO_CREATING,REPO_CREATED,PBIS_CREATING,IN_PROGRESS,COMPLETED,FAILED"`
	GithubRepoURL  *string   `json:"github_repo_url" nullable:"true"`
	GithubRepoName *string   `json:"github_repo_name" nullable:"true"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type projectListResponse struct {
	ID           string    `json:"id" format:"uuid"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	FeatureCount int       `json:"feature_count" minimum:"0"`
}

func toProjectResponse(p store.Project) projectResponse {
	return projectResponse{
		ID:             p.ID,
		Name:           p.Name,
		Epic:           p.Epic,
		Type:           p.Type,
		Status:         p.Status,
		GithubRepoURL:  p.GithubRepoURL,
		GithubRepoName: p.GithubRepoName,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type listProjectsOutput struct {
	Body []projectListResponse
}

func (s *Server) listProjects(ctx context.Context, _ *struct{}) (*listProjectsOutput, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, s.toHumaError(err, "Project not found")
	}
	out := &listProjectsOutput{Body: make([]projectListResponse, 0, len(projects))}
	for _, p := range projects {
		out.Body = append(out.Body, projectListResponse{
			ID:           p.ID,
			Name:         p.Name,
			Type:         p.Type,
			Status:       p.Status,
			CreatedAt:    p.CreatedAt,
			FeatureCount: p.FeatureCount,
		})
	}
	return out, nil
}

type createProjectRequest struct {
	Name string `json:"name" minLength:"1" maxLength:"255"`
	Epic string `json:"epic" minLength:"1"`
	Type string `json:"type,omitempty" enum:"NEW_PROJECT,EXISTING_PROJECT_BUG,EXISTING_PROJECT_FEATURE"`
}

type createProjectInput struct {
	Body createProjectRequest
}

type projectOutput struct {
	Body projectResponse
}

func (s *Server) createProject(ctx context.Context, input *createProjectInput) (*projectOutput, error) {
	project, err := s.store.CreateProject(ctx, store.NewProject{
		Name: input.Body.Name,
		Epic: input.Body.Epic,
		Type: input.Body.Type,
	})
	if err != nil {
		return nil, s.toHumaError(err, "Project not found")
	}
	s.logger.Info("project created", "project_id", project.ID, "type", project.Type)
	return &projectOutput{Body: toProjectResponse(project)}, nil
}

type projectPathInput struct {
	ID string `path:"id" format:"uuid"`
}

func (s *Server) getProject(ctx context.Context, input *projectPathInput) (*projectOutput, error) {
	project, err := s.store.GetProject(ctx, input.ID)
	if err != nil {
		return nil, s.toHumaError(err, "Project not found")
	}
	return &projectOutput{Body: toProjectResponse(project)}, nil
}

type updateProjectRequest struct {
	Name   *string `json:"name,omitempty" minLength:"1" maxLength:"255"`
	Epic   *string `json:"epic,omitempty"`
	Status *string `json:"status,omitempty" enum:"DRAFT,ANALYZING,FEATURES_PENDING_REVIEW,FEATURES_REJECTED,APPROVED,REPO_CREATING,REPO_CREATED,PBIS_CREATING,IN_PROGRESS,COMPLETED,FAILED"`
}

type updateProjectInput struct {
	ID   string `path:"id" format:"uuid"`
	Body updateProjectRequest
}

func (s *Server) updateProject(ctx context.Context, input *updateProjectInput) (*projectOutput, error) {
	project, err := s.store.UpdateProject(ctx, input.ID, store.ProjectChanges{
		Name:   input.Body.Name,
		Epic:   input.Body.Epic,
		Status: input.Body.Status,
	})
	if err != nil {
		return nil, s.toHumaError(err, "Project not found")
	}
	s.logger.Info("project updated", "project_id", project.ID, "status", project.Status)
	return &projectOutput{Body: toProjectResponse(project)}, nil
}

func (s *Server) deleteProject(ctx context.Context, input *projectPathInput) (*struct{}, error) {
	if err := s.store.DeleteProject(ctx, input.ID); err != nil {
		return nil, s.toHumaError(err, "Project not found")
	}
	s.logger.Info("project deleted", "project_id", input.ID)
	return &struct{}{}, nil
}
