// Package server serves the built collections as a local website.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ruangkarya/ruangkarya/internal/config"
	"github.com/ruangkarya/ruangkarya/internal/content"
	"github.com/ruangkarya/ruangkarya/internal/feed"
	"github.com/ruangkarya/ruangkarya/internal/mdx"
	"github.com/ruangkarya/ruangkarya/internal/site"
)

// Routes served by the site.
const (
	RouteHome         = "/"
	RouteBlog         = "/blog"
	RouteBlogPost     = "/blog/{slug}"
	RouteProjects     = "/projects"
	RouteProject      = "/projects/{slug}"
	RouteTheme        = "/theme"
	RouteHighlightCSS = "/assets/highlight.css"
	RouteRSS          = "/rss.xml"
	RouteSitemap      = "/sitemap.xml"
	RouteMetrics      = "/metrics"
)

const shutdownTimeout = 5 * time.Second

// Server renders pages from the most recently loaded collections.
type Server struct {
	cfg      config.Config
	renderer *mdx.Renderer
	views    *views
	logger   *slog.Logger
	css      string
	now      func() time.Time

	mu    sync.RWMutex
	index *site.Index
}

// New creates a server. Call Reload to load the collections.
func New(cfg config.Config, renderer *mdx.Renderer, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if renderer == nil {
		renderer = mdx.NewRenderer(logger)
	}

	v, err := loadViews()
	if err != nil {
		return nil, err
	}
	css, err := mdx.ThemeCSS(cfg.Highlight.Light, cfg.Highlight.Dark)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:      cfg,
		renderer: renderer,
		views:    v,
		logger:   logger,
		css:      css,
		now:      time.Now,
		index:    site.NewIndex(nil),
	}, nil
}

// Reload reads the serialized collections and swaps them in.
// Missing artifacts leave the site empty.
func (s *Server) Reload() error {
	idx, err := site.Load(s.cfg.Content.DataDir)
	if errors.Is(err, content.ErrMissingArtifact) {
		s.logger.Warn("collections not built yet, serving an empty site", "error", err)
		idx = site.NewIndex(nil)
	} else if err != nil {
		return err
	}
	s.SetIndex(idx)
	return nil
}

// SetIndex swaps the served collections. Cached components survive for
// bodies that are still served.
func (s *Server) SetIndex(idx *site.Index) {
	s.mu.Lock()
	prev := s.index
	s.index = idx
	s.mu.Unlock()

	if prev != nil {
		live := bodies(idx)
		for body := range bodies(prev) {
			if _, ok := live[body]; !ok {
				s.renderer.Invalidate(body)
			}
		}
	}
	s.logger.Info("site index loaded", "posts", len(idx.Posts()), "projects", len(idx.Projects()))
}

func bodies(idx *site.Index) map[string]struct{} {
	set := make(map[string]struct{})
	for _, p := range idx.Posts() {
		set[p.Body] = struct{}{}
	}
	for _, p := range idx.Projects() {
		set[p.Body] = struct{}{}
	}
	return set
}

func (s *Server) current() *site.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Handler returns the HTTP handler for the site.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.logRequests)
	r.Use(chimw.Recoverer)
	r.Use(chimw.GetHead)
	r.Use(chimw.StripSlashes)

	r.Get(RouteHome, s.home)
	r.Get(RouteBlog, s.blog)
	r.Get(RouteBlogPost, s.post)
	r.Get(RouteProjects, s.projects)
	r.Get(RouteProject, s.project)
	r.Get(RouteTheme, s.toggleTheme)
	r.Get(RouteHighlightCSS, s.highlightCSS)
	r.Get(RouteRSS, s.rss)
	r.Get(RouteSitemap, s.sitemap)
	r.Handle(RouteMetrics, promhttp.Handler())
	r.NotFound(s.notFound)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving site", "addr", "http://localhost"+srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen on %s: %w", srv.Addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) feedOptions() feed.Options {
	return feed.OptionsFromConfig(s.cfg)
}
