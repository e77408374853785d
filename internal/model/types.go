package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ProjectType string

const (
	ProjectTypeNewProject             ProjectType = "NEW_PROJECT"
	ProjectTypeExistingProjectBug     ProjectType = "EXISTING_PROJECT_BUG"
	ProjectTypeExistingProjectFeature ProjectType = "EXISTING_PROJECT_FEATURE"
)

func AllProjectTypes() []ProjectType {
	return []ProjectType{
		ProjectTypeNewProject,
		ProjectTypeExistingProjectBug,
		ProjectTypeExistingProjectFeature,
	}
}

func (t ProjectType) Valid() bool {
	for _, known := range AllProjectTypes() {
		if t == known {
			return true
		}
	}
	return false
}

type ProjectStatus string

const (
	ProjectStatusDraft                 ProjectStatus = "DRAFT"
	ProjectStatusAnalyzing             ProjectStatus = "ANALYZING"
	ProjectStatusFeaturesPendingReview ProjectStatus = "FEATURES_PENDING_REVIEW"
	ProjectStatusFeaturesRejected      ProjectStatus = "FEATURES_REJECTED"
	ProjectStatusApproved              ProjectStatus = "APPROVED"
	ProjectStatusRepoCreating          ProjectStatus = "REPO_CREATING"
	ProjectStatusRepoCreated           ProjectStatus = "REPO_CREATED"
	ProjectStatusPBIsCreating          ProjectStatus = "PBIS_CREATING"
	ProjectStatusInProgress            ProjectStatus = "IN_PROGRESS"
	ProjectStatusCompleted             ProjectStatus = "COMPLETED"
	ProjectStatusFailed                ProjectStatus = "FAILED"
)

// AllProjectStatuses lists statuses in lifecycle order.
func AllProjectStatuses() []ProjectStatus {
	return []ProjectStatus{
		ProjectStatusDraft,
		ProjectStatusAnalyzing,
		ProjectStatusFeaturesPendingReview,
		ProjectStatusFeaturesRejected,
		ProjectStatusApproved,
		ProjectStatusRepoCreating,
		ProjectStatusRepoCreated,
		ProjectStatusPBIsCreating,
		ProjectStatusInProgress,
		ProjectStatusCompleted,
		ProjectStatusFailed,
	}
}

func (s ProjectStatus) Valid() bool {
	for _, known := range AllProjectStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

type Project struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Epic           string        `json:"epic"`
	Type           ProjectType   `json:"type"`
	Status         ProjectStatus `json:"status"`
	GithubRepoURL  *string       `json:"github_repo_url"`
	GithubRepoName *string       `json:"github_repo_name"`
	CreatedAt      Timestamp     `json:"created_at"`
	UpdatedAt      Timestamp     `json:"updated_at"`
}

// RepoLabel is the repository name when known, else its URL.
func (p Project) RepoLabel() string {
	if p.GithubRepoName != nil && strings.TrimSpace(*p.GithubRepoName) != "" {
		return *p.GithubRepoName
	}
	if p.GithubRepoURL != nil {
		return *p.GithubRepoURL
	}
	return ""
}

// RepoURL is the repository URL, or "" when none is linked.
func (p Project) RepoURL() string {
	if p.GithubRepoURL == nil {
		return ""
	}
	return strings.TrimSpace(*p.GithubRepoURL)
}

// WasUpdated reports whether the project changed after creation.
func (p Project) WasUpdated() bool {
	return !p.UpdatedAt.Equal(p.CreatedAt.Time)
}

type ProjectListItem struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Type         ProjectType   `json:"type"`
	Status       ProjectStatus `json:"status"`
	CreatedAt    Timestamp     `json:"created_at"`
	FeatureCount int           `json:"feature_count"`
}

type ProjectCreate struct {
	Name string      `json:"name"`
	Epic string      `json:"epic"`
	Type ProjectType `json:"type,omitempty"`
}

type ProjectUpdate struct {
	Name   *string        `json:"name,omitempty"`
	Epic   *string        `json:"epic,omitempty"`
	Status *ProjectStatus `json:"status,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u ProjectUpdate) Empty() bool {
	return u.Name == nil && u.Epic == nil && u.Status == nil
}

// naiveLayout matches the offset-less ISO 8601 timestamps the Geonosis API
// serialises; those are UTC.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// Timestamp decodes both RFC 3339 and naive UTC ISO 8601 timestamps.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func ParseTimestamp(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed, nil
	}
	parsed, err := time.ParseInLocation(naiveLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
	}
	return parsed, nil
}
