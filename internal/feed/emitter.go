package feed

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ruangkarya/ruangkarya/internal/config"
	"github.com/ruangkarya/ruangkarya/internal/content"
)

// Output file names inside the output directory.
const (
	RSSFile     = "rss.xml"
	SitemapFile = "sitemap.xml"
)

// MissingArtifactWarning reports an emitter that ran before the collections were built.
// It is logged, never returned.
type MissingArtifactWarning struct {
	Emitter string
	Err     error
}

func (w *MissingArtifactWarning) Error() string {
	return fmt.Sprintf("feed: %s: %v", w.Emitter, w.Err)
}

func (w *MissingArtifactWarning) Unwrap() error {
	return w.Err
}

// Emitter writes the feed documents from the serialized collections.
type Emitter struct {
	dataDir   string
	outputDir string
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewEmitter reads collections from dataDir and writes documents to outputDir.
func NewEmitter(dataDir, outputDir string, opts Options, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		dataDir:   dataDir,
		outputDir: outputDir,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// EmitRSS writes rss.xml. Without a posts artifact nothing is written.
func (e *Emitter) EmitRSS() error {
	posts, err := content.LoadPosts(e.dataDir)
	if errors.Is(err, content.ErrMissingArtifact) {
		e.warn(&MissingArtifactWarning{Emitter: "rss", Err: err}, "skipping RSS feed")
		return nil
	}
	if err != nil {
		return err
	}

	doc, err := RSS(posts, e.opts, e.now())
	if err != nil {
		return err
	}
	return e.write(RSSFile, doc, "items", len(Recent(posts, e.opts.limit())))
}

// EmitSitemap writes sitemap.xml. Missing artifacts leave out their entries.
func (e *Emitter) EmitSitemap() error {
	posts, err := content.LoadPosts(e.dataDir)
	if errors.Is(err, content.ErrMissingArtifact) {
		e.warn(&MissingArtifactWarning{Emitter: "sitemap", Err: err}, "emitting sitemap without posts")
		posts = nil
	} else if err != nil {
		return err
	}
	projects, err := content.LoadProjects(e.dataDir)
	if errors.Is(err, content.ErrMissingArtifact) {
		e.warn(&MissingArtifactWarning{Emitter: "sitemap", Err: err}, "emitting sitemap without projects")
		projects = nil
	} else if err != nil {
		return err
	}

	b := NewSitemapBuilder(e.opts.SiteURL, e.now())
	b.AddStatic(StaticRoutes)
	b.AddPosts(posts)
	b.AddProjects(projects)
	doc, err := b.Build()
	if err != nil {
		return err
	}
	return e.write(SitemapFile, doc, "urls", b.Len())
}

// Emit writes both documents.
func (e *Emitter) Emit() error {
	if err := e.EmitRSS(); err != nil {
		return err
	}
	return e.EmitSitemap()
}

func (e *Emitter) warn(w *MissingArtifactWarning, msg string) {
	e.logger.Warn(msg, "warning", w.Error())
}

func (e *Emitter) write(name string, doc []byte, countKey string, count int) error {
	if err := os.MkdirAll(e.outputDir, os.ModePerm); err != nil {
		return fmt.Errorf("feed: create output directory %q: %w", e.outputDir, err)
	}
	path := filepath.Join(e.outputDir, name)
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("feed: write %q: %w", path, err)
	}
	e.logger.Info("feed document written", "file", path, countKey, count)
	return nil
}

// OptionsFromConfig derives feed options from the site configuration.
func OptionsFromConfig(cfg config.Config) Options {
	title := cfg.Feed.Title
	if title == "" {
		title = cfg.SiteTitle
	}
	author := cfg.Author
	if author == "" {
		author = content.DefaultAuthor
	}
	return Options{
		SiteURL:     cfg.BaseURL,
		Title:       title,
		Description: cfg.Feed.Description,
		Language:    cfg.Feed.Language,
		Author:      author,
		Email:       cfg.Email,
		Limit:       cfg.Feed.Limit,
	}
}
