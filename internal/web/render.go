package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/geonosis/console/internal/badge"
	"github.com/geonosis/console/internal/model"
)

var templateFuncs = template.FuncMap{
	"statusBadge":  func(status model.ProjectStatus) badge.Badge { return badge.ForStatus(status) },
	"typeBadge":    func(projectType model.ProjectType) badge.Badge { return badge.ForType(projectType) },
	"shortDate":    func(t model.Timestamp) string { return t.UTC().Format("Jan 2, 2006") },
	"longDate":     func(t model.Timestamp) string { return t.UTC().Format("January 2, 2006 at 03:04 PM") },
	"featureCount": featureCountLabel,
}

func featureCountLabel(n int) string {
	if n == 1 {
		return "1 feature"
	}
	return fmt.Sprintf("%d features", n)
}

// view is the data passed to every page template.
type view struct {
	Title  string
	Active string
	Toasts []Toast
	Data   any
}

type renderer struct {
	pages map[string]*template.Template
}

var pageNames = []string{
	"home",
	"projects",
	"project",
	"new",
	"edit",
	"delete",
	"not_found",
}

func newRenderer(root fs.FS) (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(root, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// render executes the page into a buffer first so a template error never
// leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	tmpl, ok := s.renderer.pages[page]
	if !ok {
		s.logger.Error("unknown page template", "page", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	v.Toasts = append(s.popToasts(w, r), v.Toasts...)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", v); err != nil {
		s.logger.Error("render page failed", "page", page, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
