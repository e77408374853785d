// Package store persists projects and features for the development API.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000Z"

const (
	DefaultProjectType   = "NEW_PROJECT"
	DefaultProjectStatus = "DRAFT"
	DefaultFeatureStatus = "PENDING"
)

type Project struct {
	ID             string
	Name           string
	Epic           string
	Type           string
	Status         string
	GithubRepoURL  *string
	GithubRepoName *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ProjectSummary struct {
	ID           string
	Name         string
	Type         string
	Status       string
	CreatedAt    time.Time
	FeatureCount int
}

type Feature struct {
	ID          string
	ProjectID   string
	Name        string
	Description string
	Status      string
	BranchName  *string
	Order       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type NewProject struct {
	Name string
	Epic string
	Type string
}

// ProjectChanges holds the fields of a partial update; nil means unchanged.
type ProjectChanges struct {
	Name           *string
	Epic           *string
	Status         *string
	GithubRepoURL  *string
	GithubRepoName *string
}

type NewFeature struct {
	Name        string
	Description string
	Order       *int
}

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := dirOf(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps writers serialised and makes ":memory:" usable.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  epic TEXT NOT NULL,
  type TEXT NOT NULL,
  status TEXT NOT NULL,
  github_repo_url TEXT,
  github_repo_name TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS features (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  description TEXT NOT NULL,
  status TEXT NOT NULL,
  branch_name TEXT,
  sort_order INTEGER NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS features_project_id ON features(project_id);
`)
	return err
}

func (s *SQLiteStore) CreateProject(ctx context.Context, in NewProject) (Project, error) {
	projectType := strings.TrimSpace(in.Type)
	if projectType == "" {
		projectType = DefaultProjectType
	}
	now := s.now()
	project := Project{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Epic:      in.Epic,
		Type:      projectType,
		Status:    DefaultProjectStatus,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO projects (id, name, epic, type, status, github_repo_url, github_repo_name, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, NULL, NULL, ?, ?)
`,
		project.ID,
		project.Name,
		project.Epic,
		project.Type,
		project.Status,
		formatTime(project.CreatedAt),
		formatTime(project.UpdatedAt),
	)
	if err != nil {
		return Project{}, fmt.Errorf("insert project: %w", err)
	}
	return project, nil
}

// ListProjects returns every project newest first with its feature count.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]ProjectSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT p.id, p.name, p.type, p.status, p.created_at,
  (SELECT COUNT(*) FROM features f WHERE f.project_id = p.id)
FROM projects p
ORDER BY p.created_at DESC, p.rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]ProjectSummary, 0)
	for rows.Next() {
		var (
			p       ProjectSummary
			created string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.Status, &created, &p.FeatureCount); err != nil {
			return nil, err
		}
		if p.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns os.ErrNotExist (wrapped) when id is unknown.
func (s *SQLiteStore) GetProject(ctx context.Context, id string) (Project, error) {
	return getProject(ctx, s.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getProject(ctx context.Context, q queryRower, id string) (Project, error) {
	row := q.QueryRowContext(ctx, `
SELECT id, name, epic, type, status, github_repo_url, github_repo_name, created_at, updated_at
FROM projects
WHERE id = ?`, id)

	var (
		p                Project
		repoURL, repoNm  sql.NullString
		created, updated string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Epic, &p.Type, &p.Status, &repoURL, &repoNm, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Project{}, fmt.Errorf("project %s: %w", id, os.ErrNotExist)
		}
		return Project{}, err
	}
	p.GithubRepoURL = stringPtr(repoURL)
	p.GithubRepoName = stringPtr(repoNm)

	var err error
	if p.CreatedAt, err = parseTime(created); err != nil {
		return Project{}, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return Project{}, err
	}
	return p, nil
}

// UpdateProject applies the non-nil changes and bumps updated_at.
func (s *SQLiteStore) UpdateProject(ctx context.Context, id string, changes ProjectChanges) (project Project, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Project{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	project, err = getProject(ctx, tx, id)
	if err != nil {
		return Project{}, err
	}
	if changes.Name != nil {
		project.Name = *changes.Name
	}
	if changes.Epic != nil {
		project.Epic = *changes.Epic
	}
	if changes.Status != nil {
		project.Status = *changes.Status
	}
	if changes.GithubRepoURL != nil {
		project.GithubRepoURL = changes.GithubRepoURL
	}
	if changes.GithubRepoName != nil {
		project.GithubRepoName = changes.GithubRepoName
	}
	if now := s.now(); now.After(project.UpdatedAt) {
		project.UpdatedAt = now
	}

	if _, err = tx.ExecContext(ctx, `
UPDATE projects
SET name = ?, epic = ?, status = ?, github_repo_url = ?, github_repo_name = ?, updated_at = ?
WHERE id = ?`,
		project.Name,
		project.Epic,
		project.Status,
		nullableString(project.GithubRepoURL),
		nullableString(project.GithubRepoName),
		formatTime(project.UpdatedAt),
		project.ID,
	); err != nil {
		return Project{}, fmt.Errorf("update project %s: %w", id, err)
	}
	if err = tx.Commit(); err != nil {
		return Project{}, err
	}
	return project, nil
}

// DeleteProject removes a project and its features.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM features WHERE project_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = fmt.Errorf("project %s: %w", id, os.ErrNotExist)
		return err
	}
	return tx.Commit()
}

// AddFeatures appends features to a project. Features without an explicit
// order continue after the current highest one.
func (s *SQLiteStore) AddFeatures(ctx context.Context, projectID string, in []NewFeature) (features []Feature, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = getProject(ctx, tx, projectID); err != nil {
		return nil, err
	}

	var next int
	if err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(sort_order) + 1, 0) FROM features WHERE project_id = ?`, projectID).Scan(&next); err != nil {
		return nil, err
	}

	now := s.now()
	features = make([]Feature, 0, len(in))
	for _, item := range in {
		order := next
		if item.Order != nil {
			order = *item.Order
		}
		if order >= next {
			next = order + 1
		}
		feature := Feature{
			ID:          uuid.NewString(),
			ProjectID:   projectID,
			Name:        item.Name,
			Description: item.Description,
			Status:      DefaultFeatureStatus,
			Order:       order,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err = tx.ExecContext(ctx, `
INSERT INTO features (id, project_id, name, description, status, branch_name, sort_order, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, NULL, ?, ?, ?)
`,
			feature.ID,
			feature.ProjectID,
			feature.Name,
			feature.Description,
			feature.Status,
			feature.Order,
			formatTime(feature.CreatedAt),
			formatTime(feature.UpdatedAt),
		); err != nil {
			return nil, fmt.Errorf("insert feature %s: %w", feature.Name, err)
		}
		features = append(features, feature)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return features, nil
}

// ListFeatures returns a project's features by order, then creation time.
func (s *SQLiteStore) ListFeatures(ctx context.Context, projectID string) ([]Feature, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, project_id, name, description, status, branch_name, sort_order, created_at, updated_at
FROM features
WHERE project_id = ?
ORDER BY sort_order ASC, created_at ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	features := make([]Feature, 0)
	for rows.Next() {
		var (
			f                Feature
			branch           sql.NullString
			created, updated string
		)
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Name, &f.Description, &f.Status, &branch, &f.Order, &created, &updated); err != nil {
			return nil, err
		}
		f.BranchName = stringPtr(branch)
		if f.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if f.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return features, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", raw, err)
	}
	return t, nil
}

func nullableString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func dirOf(path string) string {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return ""
	}
	idx := strings.LastIndexAny(path, `/\`)
	if idx <= 0 {
		return ""
	}
	return path[:idx]
}
