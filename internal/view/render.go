package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Fragment names, each the id of the element it fills on the page
const (
	FragmentHeader   = "header"
	FragmentSelector = "selector"
	FragmentMain     = "main"
	FragmentExercise = "exercise"
	FragmentControls = "controls"
	FragmentOutput   = "output"
)

// Renderer executes the embedded page templates
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("codelab").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Page writes the full HTML document
func (r *Renderer) Page(w io.Writer, p Page) error {
	return r.tmpl.ExecuteTemplate(w, "page", p)
}

// Fragment renders one named part of the page
func (r *Renderer) Fragment(name string, p Page) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, p); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// Fragments renders several parts keyed by name
func (r *Renderer) Fragments(p Page, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	for _, name := range names {
		html, err := r.Fragment(name, p)
		if err != nil {
			return nil, err
		}
		out[name] = html
	}
	return out, nil
}

// Static returns the stylesheet and script served under /static/
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
