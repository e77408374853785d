package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/geonosis/console/internal/apiclient"
	"github.com/geonosis/console/internal/devapi"
	"github.com/geonosis/console/internal/model"
	"github.com/geonosis/console/internal/web"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type console struct {
	server *httptest.Server
	client *http.Client
	logs   *bytes.Buffer
}

func newConsole(t *testing.T, opts web.Options) *console {
	t.Helper()

	logs := &bytes.Buffer{}
	opts.Logger = slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if len(opts.SessionKey) == 0 {
		opts.SessionKey = []byte("0123456789abcdef0123456789abcdef")
	}
	app, err := web.New(opts)
	require.NoError(t, err)

	server := httptest.NewServer(app.Handler())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &console{server: server, client: client, logs: logs}
}

func (c *console) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := c.client.Get(c.server.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (c *console) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := c.client.PostForm(c.server.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func newBackend(t *testing.T) (*httptest.Server, *apiclient.Client) {
	t.Helper()
	app, err := devapi.New(devapi.Options{
		SQLitePath: filepath.Join(t.TempDir(), "console.db"),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	server := httptest.NewServer(app.Handler())
	t.Cleanup(server.Close)
	return server, apiclient.New(server.URL)
}

// failingBackend answers every request with status and a detail message
// and counts the requests it saw.
func failingBackend(t *testing.T, status int, detail string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	hits := &atomic.Int64{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
	}))
	t.Cleanup(server.Close)
	return server, hits
}

func TestProjectsPageShowsErrorWithHint(t *testing.T) {
	backend, _ := failingBackend(t, http.StatusInternalServerError, "database offline")
	c := newConsole(t, web.Options{InternalAPIURL: backend.URL, PublicAPIURL: "https://api.example.test"})

	resp, body := c.get(t, "/projects")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Error: database offline")
	require.Contains(t, body, "Make sure the API server is running at https://api.example.test")
	require.NotContains(t, body, "No projects yet")
}

func TestProjectsPageEmptyState(t *testing.T) {
	backend, _ := newBackend(t)
	c := newConsole(t, web.Options{InternalAPIURL: backend.URL})

	resp, body := c.get(t, "/projects")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	require.Contains(t, body, "No projects yet")
	require.Contains(t, body, "Get started by creating your first project")
	require.Contains(t, body, `href="/projects/new"`)
}

func TestProjectsPageListsCards(t *testing.T) {
	backend, api := newBackend(t)
	c := newConsole(t, web.Options{InternalAPIURL: backend.URL})

	ctx := context.Background()
	first, err := api.Projects.Create(ctx, model.ProjectCreate{Name: "Alpha", Epic: "first"})
	require.NoError(t, err)
	_, err = api.Projects.Create(ctx, model.ProjectCreate{Name: "Beta", Epic: "second", Type: model.ProjectTypeExistingProjectBug})
	require.NoError(t, err)

	payload, err := json.Marshal(map[string]any{
		"project_id": first.ID,
		"features": []map[string]string{
			{"name": "Login", "description": "sign in"},
			{"name": "Logout", "description": "sign out"},
		},
	})
	require.NoError(t, err)
	resp, err := http.Post(backend.URL+"/api/v1/features/bulk", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	_ = readBody(t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := c.get(t, "/projects")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `href="/projects/`+first.ID+`"`)
	require.Contains(t, body, "2 features")
	require.Contains(t, body, "0 features")
	require.Contains(t, body, "Bug Fix")
	require.Contains(t, body, "badge badge-neutral")
	require.Less(t, strings.Index(body, "Beta"), strings.Index(body, "Alpha"))
}

func TestCreateProjectValidationNeverCallsAPI(t *testing.T) {
	backend, hits := failingBackend(t, http.StatusInternalServerError, "unexpected")
	c := newConsole(t, web.Options{InternalAPIURL: backend.URL})

	resp, body := c.post(t, "/projects", url.Values{"name": {"Draft"}, "epic": {"   "}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, body, "Epic / Requirements is required")
	require.Contains(t, body, `value="Draft"`)
	require.NotContains(t, body, "toast-destructive")
	require.Zero(t, hits.Load())

	resp, body = c.post(t, "/projects", url.Values{"name": {""}, "epic": {"something"}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, body, "Project name is required")

	resp, body = c.post(t, "/projects", url.Values{"name": {strings.Repeat("n", 256)}, "epic": {"x"}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, body, "Project name must be at most 255 characters")
	require.Zero(t, hits.Load())
}

func TestCreateProjectRedirectsWithToast(t *testing.T) {
	backend, api := newBackend(t)
	c := newConsole(t, web.Options{InternalAPIURL: backend.URL})

	resp, _ := c.post(t, "/projects", url.Values{
		"name": {"Orchestrator"},
		"epic": {"# Goals\n- ship"},
		"type": {string(model.ProjectTypeExistingProjectFeature)},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	location := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(location, "/projects/"), location)

	id := strings.TrimPrefix(location, "/projects/")
	created, err := api.Projects.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "Orchestrator", created.Name)
	require.Equal(t, model.ProjectTypeExistingProjectFeature, created.Type)
	require.Equal(t, model.ProjectStatusDraft, created.Status)

	resp, body := c.get(t, location)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Project created")
	require.Contains(t, body, "Your project has been created successfully.")
	require.Contains(t, body, "Orchestrator")
	require.Contains(t, body, "# Goals")
	require.Contains(t, body, "Features will be displayed here once the project is analyzed.")
	require.NotContains(t, body, "Updated ")

	_, body = c.get(t, location)
	require.NotContains(t, body, "Project created")
}

func TestCreateProjectShowsBackendFailure(t *testing.T) {
	backend, hits := failingBackend(t, http.StatusInternalServerError, "database offline")
	c := newConsole(t, web.Options{InternalAPIURL: backend.URL})

	resp, body := c.post(t, "/projects", url.Values{"name": {"Alpha"}, "epic": {"Build it"}})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.Contains(t, body, "database offline")
	require.Contains(t, body, "toast toast-destructive")
	require.Contains(t, body, `value="Alpha"`)
	require.EqualValues(t, 1, hits.Load())
}

func TestCreateProjectPassesThroughClientErrors(t *testing.T) {
	backend, _ := failingBackend(t, http.StatusConflict, "name already taken")
	c := newConsole(t, web.Options{InternalAPIURL: backend.URL})

	resp, body := c.post(t, "/projects", url.Values{"name": {"Alpha"}, "epic": {"Build it"}})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Contains(t, body, "name already taken")
}

func TestProjectPageNotFound(t *testing.T) {
	backend, _ := newBackend(t)
	c := newConsole(t, web.Options{InternalAPIURL: backend.URL})

	resp, body := c.get(t, "/projects/"+uuid.NewString())
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, body, "Project Not Found")
	require.Contains(t, body, "Back to Projects")

	resp, _ = c.get(t, "/projects/"+uuid.NewString()+"/edit")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProjectPageNotFoundWhenBackendReturnsNothing(t *testing.T) {
	for name, payload := range map[string]string{"null": "null", "empty": ""} {
		t.Run(name, func(t *testing.T) {
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, payload)
			}))
			t.Cleanup(backend.Close)
			c := newConsole(t, web.Options{InternalAPIURL: backend.URL})

			resp, body := c.get(t, "/projects/abc")
			require.Equal(t, http.StatusNotFound, resp.StatusCode)
			require.Contains(t, body, "Project Not Found")

			resp, _ = c.get(t, "/projects/abc/edit")
			require.Equal(t, http.StatusNotFound, resp.StatusCode)
		})
	}
}

func TestProjectIDIsDecodedOnce(t *testing.T) {
	cases := map[string]string{
		"/projects/a%2541": "/api/v1/projects/a%41",
		"/projects/a%2Fb":  "/api/v1/projects/a/b",
		"/projects/plain":  "/api/v1/projects/plain",
	}
	for path, want := range cases {
		t.Run(path, func(t *testing.T) {
			seen := make(chan string, 1)
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen <- r.URL.Path
				http.NotFound(w, r)
			}))
			t.Cleanup(backend.Close)
			c := newConsole(t, web.Options{InternalAPIURL: backend.URL})

			resp, _ := c.get(t, path)
			require.Equal(t, http.StatusNotFound, resp.StatusCode)
			require.Equal(t, want, <-seen)
		})
	}
}

func TestProjectPageShowsRepository(t *testing.T) {
	repoURL := "https://github.com/geonosis/alpha"
	repoName := "geonosis/alpha"
	project := model.Project{
		ID:             "p-1",
		Name:           "Alpha",
		Epic:           "epic",
		Type:           model.ProjectTypeNewProject,
		Status:         model.ProjectStatusRepoCreated,
		GithubRepoURL:  &repoURL,
		GithubRepoName: &repoName,
	}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/projects/p-1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(project)
	}))
	t.Cleanup(backend.Close)
	c := newConsole(t, web.Options{InternalAPIURL: backend.URL})

	resp, body := c.get(t, "/projects/p-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `href="https://github.com/geonosis/alpha"`)
	require.Contains(t, body, ">geonosis/alpha</a>")
	require.Contains(t, body, "Repo Created")
}

func TestEditProject(t *testing.T) {
	backend, api := newBackend(t)
	c := newConsole(t, web.Options{InternalAPIURL: backend.URL})

	project, err := api.Projects.Create(context.Background(), model.ProjectCreate{Name: "Alpha", Epic: "first"})
	require.NoError(t, err)
	editPath := "/projects/" + project.ID + "/edit"

	resp, body := c.get(t, editPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `value="Alpha"`)
	require.Contains(t, body, `<option value="DRAFT" selected>`)

	resp, body = c.post(t, editPath, url.Values{"name": {""}, "epic": {"first"}, "status": {"DRAFT"}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, body, "Project name is required")

	resp, _ = c.post(t, editPath, url.Values{"name": {"Renamed"}, "epic": {"second"}, "status": {"APPROVED"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/projects/"+project.ID, resp.Header.Get("Location"))

	resp, body = c.get(t, "/projects/"+project.ID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Project updated")
	require.Contains(t, body, "Renamed")
	require.Contains(t, body, "Approved")

	updated, err := api.Projects.Get(context.Background(), project.ID)
	require.NoError(t, err)
	require.Equal(t, "second", updated.Epic)
	require.Equal(t, model.ProjectStatusApproved, updated.Status)
}

func TestDeleteProject(t *testing.T) {
	backend, api := newBackend(t)
	c := newConsole(t, web.Options{InternalAPIURL: backend.URL})

	project, err := api.Projects.Create(context.Background(), model.ProjectCreate{Name: "Doomed", Epic: "bye"})
	require.NoError(t, err)
	deletePath := "/projects/" + project.ID + "/delete"

	resp, body := c.get(t, deletePath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Are you sure you want to delete this project?")
	require.Contains(t, body, "This action cannot be undone.")

	resp, _ = c.post(t, deletePath, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/projects", resp.Header.Get("Location"))

	resp, body = c.get(t, "/projects")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Project deleted")
	require.Contains(t, body, "The project has been deleted successfully.")
	require.Contains(t, body, "No projects yet")

	_, err = api.Projects.Get(context.Background(), project.ID)
	require.True(t, apiclient.IsNotFound(err))
}

func TestDeleteProjectFailureKeepsDialog(t *testing.T) {
	backend, _ := failingBackend(t, http.StatusInternalServerError, "locked")
	c := newConsole(t, web.Options{InternalAPIURL: backend.URL})

	resp, body := c.post(t, "/projects/p-1/delete", nil)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.Contains(t, body, "Delete Project")
	require.Contains(t, body, "locked")
	require.Contains(t, body, "toast toast-destructive")
}

func TestHomePageReportsBackendHealth(t *testing.T) {
	backend, _ := newBackend(t)
	c := newConsole(t, web.Options{InternalAPIURL: backend.URL})

	resp, body := c.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Connected")
	require.Contains(t, body, "API v0.1.0")

	down, _ := failingBackend(t, http.StatusServiceUnavailable, "maintenance")
	c = newConsole(t, web.Options{InternalAPIURL: down.URL})
	_, body = c.get(t, "/")
	require.Contains(t, body, "API unavailable")
	require.Contains(t, body, "maintenance")
}

func TestClientConfigUsesBrowserURL(t *testing.T) {
	tests := []struct {
		name     string
		opts     web.Options
		expected string
	}{
		{
			name:     "public url wins",
			opts:     web.Options{InternalAPIURL: "http://backend:8000", PublicAPIURL: "https://api.example.test"},
			expected: "https://api.example.test",
		},
		{
			name:     "internal url never leaks",
			opts:     web.Options{InternalAPIURL: "http://backend:8000"},
			expected: "http://localhost:8000",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newConsole(t, tc.opts)
			resp, body := c.get(t, "/client-config")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

			var payload map[string]string
			require.NoError(t, json.Unmarshal([]byte(body), &payload))
			require.Equal(t, tc.expected, payload["api_base_url"])
			require.Equal(t, "/api/v1", payload["api_prefix"])
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	c := newConsole(t, web.Options{})

	resp, body := c.get(t, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	require.Equal(t, true, payload["ok"])
	require.Equal(t, web.Version, payload["version"])
}

func TestStaticAssets(t *testing.T) {
	c := newConsole(t, web.Options{})

	resp, body := c.get(t, "/static/app.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/css")
	require.Contains(t, body, ".toast-destructive")

	resp, body = c.get(t, "/static/app.js")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "data-disable-on-submit")

	resp, _ = c.get(t, "/static/missing.js")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	c := newConsole(t, web.Options{})

	resp, body := c.get(t, "/nope")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, body, "Page Not Found")
}

func TestRequestsAreLogged(t *testing.T) {
	c := newConsole(t, web.Options{})

	resp, _ := c.get(t, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	logs := c.logs.String()
	require.Contains(t, logs, "http request")
	require.Contains(t, logs, "path=/health")
	require.Contains(t, logs, "status=200")
}

func TestNewWithoutSessionKeyWarns(t *testing.T) {
	logs := &bytes.Buffer{}
	_, err := web.New(web.Options{Logger: slog.New(slog.NewTextHandler(logs, nil))})
	require.NoError(t, err)
	require.Contains(t, logs.String(), "no session key configured")
}
