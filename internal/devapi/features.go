package devapi

import (
	"context"
	"time"

	"github.com/geonosis/console/internal/store"
)

type featureResponse struct {
	ID          string    `json:"id" format:"uuid"`
	ProjectID   string    `json:"project_id" format:"uuid"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status" enum:"PENDING,IN_PROGRESS,PR_PENDING,COMPLETED"`
	BranchName  *string   `json:"branch_name" nullable:"true"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	PBICount    int       `json:"pbi_count"`
}

func toFeatureResponse(f store.Feature) featureResponse {
	return featureResponse{
		ID:          f.ID,
		ProjectID:   f.ProjectID,
		Name:        f.Name,
		Description: f.Description,
		Status:      f.Status,
		BranchName:  f.BranchName,
		Order:       f.Order,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

type listFeaturesInput struct {
	ProjectID string `path:"project_id" format:"uuid"`
}

type listFeaturesOutput struct {
	Body []featureResponse
}

func (s *Server) listFeatures(ctx context.Context, input *listFeaturesInput) (*listFeaturesOutput, error) {
	features, err := s.store.ListFeatures(ctx, input.ProjectID)
	if err != nil {
		return nil, s.toHumaError(err, "Project not found")
	}
	out := &listFeaturesOutput{Body: make([]featureResponse, 0, len(features))}
	for _, f := range features {
		out.Body = append(out.Body, toFeatureResponse(f))
	}
	return out, nil
}

type bulkFeatureItem struct {
	Name        string `json:"name" minLength:"1" maxLength:"255"`
	Description string `json:"description" minLength:"1"`
	Order       *int   `json:"order,omitempty" minimum:"0"`
}

type createFeaturesBulkInput struct {
	Body struct {
		ProjectID string            `json:"project_id" format:"uuid"`
		Features  []bulkFeatureItem `json:"features" minItems:"1"`
	}
}

func (s *Server) createFeaturesBulk(ctx context.Context, input *createFeaturesBulkInput) (*listFeaturesOutput, error) {
	items := make([]store.NewFeature, 0, len(input.Body.Features))
	for _, item := range input.Body.Features {
		items = append(items, store.NewFeature{
			Name:        item.Name,
			Description: item.Description,
			Order:       item.Order,
		})
	}

	features, err := s.store.AddFeatures(ctx, input.Body.ProjectID, items)
	if err != nil {
		return nil, s.toHumaError(err, "Project not found")
	}
	s.logger.Info("features created", "project_id", input.Body.ProjectID, "count", len(features))

	out := &listFeaturesOutput{Body: make([]featureResponse, 0, len(features))}
	for _, f := range features {
		out.Body = append(out.Body, toFeatureResponse(f))
	}
	return out, nil
}
