package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"github.com/alexbto/stonks/internal/apperr"
	"github.com/alexbto/stonks/internal/utils"
)

// Renderer executes the page templates. Every page is parsed together with
// the shared layout so the nav and head are uniform across the site.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses all page templates from fsys.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	funcs := template.FuncMap{
		"usd": utils.FormatUSD,
	}

	names, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template)
	for _, name := range names {
		if name == "layout.html" {
			continue
		}
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(fsys, "layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

// Render writes the named page with the given status code and data.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data interface{}) {
	tmpl, ok := r.pages[page]
	if !ok {
		log.Printf("Unknown template %q", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Render to a buffer first so a template failure never produces a
	// half-written page behind a 200 header.
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Printf("Error executing template %q: %v", page, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Apology renders the uniform error page for err, with the status code and
// message determined by the error's kind.
func (r *Renderer) Apology(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		log.Printf("Internal error: %v", err)
	}

	status := kind.Status()
	r.Render(w, status, "apology.html", map[string]interface{}{
		"Status":  status,
		"Message": apperr.MessageOf(err),
	})
}
