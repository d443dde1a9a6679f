package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ruangkarya/ruangkarya/internal/model"
)

//go:embed templates
var templateFS embed.FS

const baseLayout = "base.html"

// Page templates, each parsed on top of the base layout and partials.
const (
	viewHome          = "home.html"
	viewPosts         = "list-posts.html"
	viewPost          = "single-post.html"
	viewProjects      = "list-projects.html"
	viewProject       = "single-project.html"
	viewNotFound      = "not-found.html"
	displayDateLayout = "Jan 2, 2006"
)

var pageViews = []string{viewHome, viewPosts, viewPost, viewProjects, viewProject, viewNotFound}

type views struct {
	pages map[string]*template.Template
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// Casers keep state, so each call gets its own.
		"title": func(s string) string {
			return cases.Title(language.English).String(s)
		},
		"date": func(s string) string {
			t := model.ParseDate(s)
			if t.IsZero() {
				return s
			}
			return t.Format(displayDateLayout)
		},
	}
}

func loadViews() (*views, error) {
	base, err := template.New(baseLayout).Funcs(templateFuncs()).
		ParseFS(templateFS, "templates/"+baseLayout, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("server: parse base layout and partials: %w", err)
	}

	v := &views{pages: make(map[string]*template.Template, len(pageViews))}
	for _, name := range pageViews {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("server: clone base layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("server: parse %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// render executes a page into w. Output is buffered so a failing template
// never leaves a half-written response.
func (v *views) render(w io.Writer, name string, data model.PageData) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("server: unknown view %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, baseLayout, data); err != nil {
		return fmt.Errorf("server: execute %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
