package content

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ruangkarya/ruangkarya/internal/metrics"
	"github.com/ruangkarya/ruangkarya/internal/model"
)

// Source directories under the content root.
const (
	postsDir    = "posts"
	projectsDir = "projects"
)

// Compiler turns a markdown body into a compiled render artifact.
type Compiler interface {
	Compile(src []byte) (string, error)
}

// Collections is the result of one build.
type Collections struct {
	Posts    []model.Post
	Projects []model.Project
}

// Builder validates and compiles every source file under a content root.
type Builder struct {
	root     string
	siteURL  string
	compiler Compiler
	logger   *slog.Logger
}

// NewBuilder creates a builder for the content tree at root.
func NewBuilder(root, siteURL string, compiler Compiler, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{root: root, siteURL: siteURL, compiler: compiler, logger: logger}
}

// Build reads both collections. The first invalid file aborts the whole
// build; nothing is returned for the files that did validate.
func (b *Builder) Build() (*Collections, error) {
	if _, err := os.Stat(b.root); err != nil {
		return nil, fmt.Errorf("content: source directory %q: %w", b.root, err)
	}

	posts, err := b.buildPosts()
	if err != nil {
		return nil, err
	}
	projects, err := b.buildProjects()
	if err != nil {
		return nil, err
	}

	b.logger.Info("content collections built", "posts", len(posts), "projects", len(projects))
	return &Collections{Posts: posts, Projects: projects}, nil
}

func (b *Builder) buildPosts() ([]model.Post, error) {
	posts := []model.Post{}
	err := b.walk(postsDir, isMarkdown, func(rel string, fm fields, body []byte) error {
		meta, err := decodePost(fm)
		if err != nil {
			return err
		}
		compiled, err := b.compile(rel, body)
		if err != nil {
			return err
		}

		slug := Slug(rel)
		posts = append(posts, model.Post{
			Entry: model.Entry{
				Slug:      slug,
				Path:      Path(model.CollectionPosts, slug),
				Published: meta.Published,
				Date:      meta.Date,
				Body:      compiled,
			},
			Title:           meta.Title,
			Description:     meta.Description,
			Excerpt:         meta.Excerpt,
			Author:          meta.Author,
			ReadTime:        meta.ReadTime,
			ReadTimeMinutes: ReadTimeMinutes(meta.ReadTime),
			Category:        meta.Category,
			Image:           meta.Image,
			ImageAlt:        meta.ImageAlt,
			Tags:            meta.Tags,
			Featured:        meta.Featured,
			Draft:           meta.Draft,
			Updated:         meta.Updated,
			Permalink:       Permalink(b.siteURL, model.CollectionPosts, slug),
		})
		metrics.EntriesBuilt.WithLabelValues(model.CollectionPosts).Inc()
		return nil
	})
	return posts, err
}

func (b *Builder) buildProjects() ([]model.Project, error) {
	projects := []model.Project{}
	err := b.walk(projectsDir, isMDX, func(rel string, fm fields, body []byte) error {
		meta, err := decodeProject(fm)
		if err != nil {
			return err
		}
		compiled, err := b.compile(rel, body)
		if err != nil {
			return err
		}

		slug := Slug(rel)
		projects = append(projects, model.Project{
			Entry: model.Entry{
				Slug:      slug,
				Path:      Path(model.CollectionProjects, slug),
				Published: meta.Published,
				Date:      meta.Date,
				Body:      compiled,
			},
			Title:       meta.Title,
			Description: meta.Description,
			URL:         meta.URL,
			Repository:  meta.Repository,
		})
		metrics.EntriesBuilt.WithLabelValues(model.CollectionProjects).Inc()
		return nil
	})
	return projects, err
}

func (b *Builder) compile(rel string, body []byte) (string, error) {
	compiled, err := b.compiler.Compile(body)
	if err != nil {
		return "", newValidationError(rel, "body", err.Error())
	}
	return compiled, nil
}

// walk visits every file below dir accepted by match, in lexical order. A
// missing collection directory is an empty collection.
func (b *Builder) walk(dir string, match func(name string) bool, visit func(rel string, fm fields, body []byte) error) error {
	base := filepath.Join(b.root, dir)
	if _, err := os.Stat(base); os.IsNotExist(err) {
		b.logger.Warn("collection directory not found, treating as empty", "dir", base)
		return nil
	}

	seen := map[string]string{}
	return filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("content: walk %q: %w", path, walkErr)
		}
		if d.IsDir() || !match(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(b.root, path)
		if err != nil {
			return fmt.Errorf("content: relative path for %q: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		slug := Slug(rel)
		if other, dup := seen[slug]; dup {
			return newValidationError(rel, "slug", fmt.Sprintf("%q is already used by %s", slug, other))
		}
		seen[slug] = rel

		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("content: read %q: %w", path, err)
		}
		fm, body, err := parseFrontMatter(rel, source)
		if err != nil {
			return err
		}

		b.logger.Debug("processing content file", "file", rel)
		return visit(rel, fm, body)
	})
}

// BuildAndWrite runs a build and, only if every file validated, replaces the
// serialized collections in dir.
func BuildAndWrite(b *Builder, dir string) (*Collections, error) {
	c, err := b.Build()
	metrics.RecordBuild(err)
	if err != nil {
		return nil, err
	}
	if err := WriteCollections(dir, c); err != nil {
		return nil, err
	}
	b.logger.Info("content collections written", "dir", dir)
	return c, nil
}
