package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/geonosis/console/internal/apiclient"
	"github.com/geonosis/console/internal/badge"
	"github.com/geonosis/console/internal/model"
	"github.com/geonosis/console/internal/projectform"
	"github.com/go-chi/chi/v5"
)

type homeData struct {
	APIBaseURL string
	Health     *apiclient.HealthStatus
	Error      string
}

func (s *Server) homePage(w http.ResponseWriter, r *http.Request) {
	data := homeData{APIBaseURL: s.browserAPIBaseURL()}
	health, err := s.apiClient().Health(r.Context())
	if err != nil {
		data.Error = err.Error()
	} else {
		data.Health = &health
	}
	s.render(w, r, http.StatusOK, "home", view{Title: "Geonosis", Data: data})
}

type projectsData struct {
	Projects   []model.ProjectListItem
	Error      string
	APIBaseURL string
}

func (s *Server) projectsPage(w http.ResponseWriter, r *http.Request) {
	data := projectsData{APIBaseURL: s.browserAPIBaseURL()}
	projects, err := s.apiClient().Projects.List(r.Context())
	if err != nil {
		s.logger.Warn("list projects failed", "error", err)
		data.Error = err.Error()
	} else {
		data.Projects = projects
	}
	s.render(w, r, http.StatusOK, "projects", view{Title: "Projects", Active: "projects", Data: data})
}

type notFoundData struct {
	Heading string
	Message string
}

func (s *Server) notFoundPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "not_found", view{
		Title: "Not Found",
		Data: notFoundData{
			Heading: "Page Not Found",
			Message: "The page you're looking for doesn't exist.",
		},
	})
}

func (s *Server) projectNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "not_found", view{
		Title:  "Project Not Found",
		Active: "projects",
		Data: notFoundData{
			Heading: "Project Not Found",
			Message: "The project you're looking for doesn't exist or may have been deleted.",
		},
	})
}

// fetchProject renders the not-found page and reports false when the
// backend fails or answers without a project.
func (s *Server) fetchProject(w http.ResponseWriter, r *http.Request) (model.Project, bool) {
	id := projectID(r)
	project, err := s.apiClient().Projects.Get(r.Context(), id)
	if err == nil && project.ID == "" {
		err = errors.New("empty project response")
	}
	if err != nil {
		s.logger.Info("project unavailable", "project_id", id, "error", err)
		s.projectNotFound(w, r)
		return model.Project{}, false
	}
	return project, true
}

func (s *Server) projectPage(w http.ResponseWriter, r *http.Request) {
	project, ok := s.fetchProject(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "project", view{Title: project.Name, Active: "projects", Data: project})
}

type selectOption struct {
	Value string
	Label string
}

type projectFormData struct {
	ID       string
	Name     string
	Epic     string
	Type     string
	Status   string
	Error    string
	Types    []selectOption
	Statuses []selectOption
}

func typeOptions() []selectOption {
	options := []selectOption{{Value: "", Label: "Default (" + badge.ForType(model.ProjectTypeNewProject).Label + ")"}}
	for _, t := range model.AllProjectTypes() {
		options = append(options, selectOption{Value: string(t), Label: badge.ForType(t).Label})
	}
	return options
}

func statusOptions() []selectOption {
	options := make([]selectOption, 0, len(model.AllProjectStatuses()))
	for _, st := range model.AllProjectStatuses() {
		options = append(options, selectOption{Value: string(st), Label: badge.ForStatus(st).Label})
	}
	return options
}

func (s *Server) newProjectPage(w http.ResponseWriter, r *http.Request) {
	s.renderNewForm(w, r, http.StatusOK, projectFormData{}, nil)
}

func (s *Server) renderNewForm(w http.ResponseWriter, r *http.Request, status int, form projectFormData, toasts []Toast) {
	form.Types = typeOptions()
	s.render(w, r, status, "new", view{Title: "Create New Project", Active: "new", Toasts: toasts, Data: form})
}

// createProject validates locally first; invalid input never reaches the API.
func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderNewForm(w, r, http.StatusBadRequest, projectFormData{Error: "Invalid form submission"}, nil)
		return
	}
	form := projectFormData{
		Name: r.PostForm.Get("name"),
		Epic: r.PostForm.Get("epic"),
		Type: r.PostForm.Get("type"),
	}

	input, err := projectform.Create(form.Name, form.Epic, form.Type)
	if err != nil {
		form.Error = err.Error()
		s.renderNewForm(w, r, http.StatusUnprocessableEntity, form, nil)
		return
	}

	project, err := s.apiClient().Projects.Create(r.Context(), input)
	if err != nil {
		s.logger.Warn("create project failed", "error", err)
		form.Error = err.Error()
		s.renderNewForm(w, r, upstreamStatus(err), form, []Toast{errorToast(form.Error)})
		return
	}

	s.logger.Info("project created", "project_id", project.ID)
	s.addToast(w, r, Toast{Title: "Project created", Description: "Your project has been created successfully.", Variant: ToastDefault})
	http.Redirect(w, r, projectURL(project.ID), http.StatusSeeOther)
}

func (s *Server) editProjectPage(w http.ResponseWriter, r *http.Request) {
	project, ok := s.fetchProject(w, r)
	if !ok {
		return
	}
	s.renderEditForm(w, r, http.StatusOK, projectFormData{
		ID:     project.ID,
		Name:   project.Name,
		Epic:   project.Epic,
		Type:   string(project.Type),
		Status: string(project.Status),
	}, nil)
}

func (s *Server) renderEditForm(w http.ResponseWriter, r *http.Request, status int, form projectFormData, toasts []Toast) {
	form.Statuses = statusOptions()
	s.render(w, r, status, "edit", view{Title: "Edit Project", Active: "projects", Toasts: toasts, Data: form})
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	id := projectID(r)
	if err := r.ParseForm(); err != nil {
		s.renderEditForm(w, r, http.StatusBadRequest, projectFormData{ID: id, Error: "Invalid form submission"}, nil)
		return
	}
	form := projectFormData{
		ID:     id,
		Name:   r.PostForm.Get("name"),
		Epic:   r.PostForm.Get("epic"),
		Status: r.PostForm.Get("status"),
	}

	update, err := projectform.Edit(form.Name, form.Epic, form.Status)
	if err != nil {
		form.Error = err.Error()
		s.renderEditForm(w, r, http.StatusUnprocessableEntity, form, nil)
		return
	}

	project, err := s.apiClient().Projects.Update(r.Context(), id, update)
	if err != nil {
		s.logger.Warn("update project failed", "project_id", id, "error", err)
		form.Error = err.Error()
		s.renderEditForm(w, r, upstreamStatus(err), form, []Toast{errorToast(form.Error)})
		return
	}

	s.logger.Info("project updated", "project_id", project.ID)
	s.addToast(w, r, Toast{Title: "Project updated", Description: "Your changes have been saved.", Variant: ToastDefault})
	http.Redirect(w, r, projectURL(project.ID), http.StatusSeeOther)
}

type deleteData struct {
	ID    string
	Error string
}

func (s *Server) deleteProjectPage(w http.ResponseWriter, r *http.Request) {
	s.renderDeleteDialog(w, r, http.StatusOK, deleteData{ID: projectID(r)}, nil)
}

func (s *Server) renderDeleteDialog(w http.ResponseWriter, r *http.Request, status int, data deleteData, toasts []Toast) {
	s.render(w, r, status, "delete", view{Title: "Delete Project", Active: "projects", Toasts: toasts, Data: data})
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id := projectID(r)
	if err := s.apiClient().Projects.Delete(r.Context(), id); err != nil {
		s.logger.Warn("delete project failed", "project_id", id, "error", err)
		data := deleteData{ID: id, Error: err.Error()}
		s.renderDeleteDialog(w, r, upstreamStatus(err), data, []Toast{errorToast(data.Error)})
		return
	}

	s.logger.Info("project deleted", "project_id", id)
	s.addToast(w, r, Toast{Title: "Project deleted", Description: "The project has been deleted successfully.", Variant: ToastDefault})
	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}

// projectID is the decoded {id} path segment. chi matches on RawPath when
// it is set, so only then is the segment still escaped.
func projectID(r *http.Request) string {
	param := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return param
	}
	if decoded, err := url.PathUnescape(param); err == nil {
		return decoded
	}
	return param
}

func projectURL(id string) string {
	return "/projects/" + url.PathEscape(id)
}

// upstreamStatus passes client errors from the API through and reports
// everything else as a bad gateway.
func upstreamStatus(err error) int {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return apiErr.StatusCode
	}
	return http.StatusBadGateway
}
