package server

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ruangkarya/ruangkarya/internal/feed"
	"github.com/ruangkarya/ruangkarya/internal/mdx"
	"github.com/ruangkarya/ruangkarya/internal/model"
	"github.com/ruangkarya/ruangkarya/internal/site"
)

const (
	themeCookie   = "theme"
	themeMaxAge   = 365 * 24 * 60 * 60
	homePostCount = 5
	bodyClass     = "prose"
)

// HomeData is the data behind the home page.
type HomeData struct {
	Featured []model.Post
	Recent   []model.Post
	Projects []model.Project
}

// PostListData is the data behind the blog listing.
type PostListData struct {
	Category   string
	Categories []string
	Posts      []model.Post
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	idx := s.current()
	recent := idx.Posts()
	if len(recent) > homePostCount {
		recent = recent[:homePostCount]
	}
	s.render(w, r, http.StatusOK, viewHome, "", HomeData{
		Featured: idx.Featured(),
		Recent:   recent,
		Projects: idx.Projects(),
	})
}

func (s *Server) blog(w http.ResponseWriter, r *http.Request) {
	idx := s.current()
	data := PostListData{
		Category:   strings.TrimSpace(r.URL.Query().Get("category")),
		Categories: idx.Categories(),
	}
	if data.Category != "" {
		data.Posts = idx.Category(data.Category)
	} else {
		data.Posts = idx.Posts()
	}
	s.render(w, r, http.StatusOK, viewPosts, "Blog", data)
}

func (s *Server) post(w http.ResponseWriter, r *http.Request) {
	idx := s.current()
	slug := chi.URLParam(r, "slug")

	p, err := idx.Post(slug)
	if err != nil {
		s.notFoundOr(w, r, err)
		return
	}
	neighbors, err := idx.Neighbors(slug)
	if err != nil {
		s.notFoundOr(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, viewPost, p.Title, model.PostPage{
		Post:      p,
		Body:      s.renderBody(p.Body, themeFrom(r, s.cfg.Server.DefaultTheme)),
		Neighbors: neighbors,
	})
}

func (s *Server) projects(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, viewProjects, "Projects", s.current().Projects())
}

func (s *Server) project(w http.ResponseWriter, r *http.Request) {
	p, err := s.current().Project(chi.URLParam(r, "slug"))
	if err != nil {
		s.notFoundOr(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, viewProject, p.Title, model.ProjectPage{
		Project: p,
		Body:    s.renderBody(p.Body, themeFrom(r, s.cfg.Server.DefaultTheme)),
	})
}

// toggleTheme flips the persisted theme and sends the visitor back.
func (s *Server) toggleTheme(w http.ResponseWriter, r *http.Request) {
	theme := themeFrom(r, s.cfg.Server.DefaultTheme).Toggle()
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    string(theme),
		Path:     "/",
		MaxAge:   themeMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	next := r.URL.Query().Get("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = RouteHome
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Server) highlightCSS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write([]byte(s.css))
}

func (s *Server) rss(w http.ResponseWriter, r *http.Request) {
	doc, err := feed.RSS(s.current().Posts(), s.feedOptions(), s.now())
	s.writeXML(w, r, "application/rss+xml; charset=utf-8", doc, err)
}

func (s *Server) sitemap(w http.ResponseWriter, r *http.Request) {
	idx := s.current()
	doc, err := feed.Sitemap(idx.Posts(), idx.Projects(), s.feedOptions(), s.now())
	s.writeXML(w, r, "application/xml; charset=utf-8", doc, err)
}

func (s *Server) writeXML(w http.ResponseWriter, r *http.Request, contentType string, doc []byte, err error) {
	if err != nil {
		s.logger.Error("failed to generate feed document", "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(doc)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, viewNotFound, "Not found", nil)
}

func (s *Server) notFoundOr(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, site.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	s.logger.Error("failed to look up entry", "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// renderBody renders a compiled body for the active theme. Failures are
// contained to the body: the renderer substitutes its fallback node.
func (s *Server) renderBody(body string, theme mdx.Theme) template.HTML {
	tree := s.renderer.Render(body, theme, bodyClass)
	out, err := tree.HTML()
	if err != nil {
		s.logger.Error("failed to serialize rendered body", "error", err)
		out, _ = mdx.Fallback().HTML()
	}
	return template.HTML(out)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, view, title string, data any) {
	page := model.PageData{
		SiteTitle: s.cfg.SiteTitle,
		PageTitle: title,
		BaseURL:   s.cfg.BaseURL,
		Theme:     string(themeFrom(r, s.cfg.Server.DefaultTheme)),
		Path:      r.URL.Path,
		Data:      data,
	}

	var buf strings.Builder
	if err := s.views.render(&buf, view, page); err != nil {
		s.logger.Error("failed to render template", "view", view, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

func themeFrom(r *http.Request, fallback string) mdx.Theme {
	if c, err := r.Cookie(themeCookie); err == nil {
		return mdx.ParseTheme(c.Value)
	}
	return mdx.ParseTheme(fallback)
}
