// Package web renders server-side pages. The rest of the application treats
// it as a collaborator: handlers hand over a page name and a model, and do
// not care how the document is produced. Templates are embedded so the
// binary is self-contained.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/user/taskman-go/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page is the model handed to every template. Fields not relevant to a page
// are simply left zero.
type Page struct {
	Title string
	User  *session.Principal
	Error string
	Tasks any
	Task  any
}

// Renderer executes embedded templates by name.
type Renderer struct {
	tmpl   *template.Template
	logger *zap.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl, logger: logger}, nil
}

// Render writes the named page with the given status. The template runs into
// a buffer first so a mid-render failure produces a clean 500 instead of a
// truncated page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name+".html", page); err != nil {
		r.logger.Error("failed to render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
