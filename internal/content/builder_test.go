package content

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruangkarya/ruangkarya/internal/logger"
	"github.com/ruangkarya/ruangkarya/internal/mdx"
)

const siteURL = "https://example.com"

const helloWorld = `---
published: true
draft: false
title: "Hello World"
date: "2024-01-01"
excerpt: "A first post."
readTime: "3 min"
category: "Tech"
---

# Hello

Some **markdown**.
`

const sampleProject = `---
published: true
title: Portfolio
description: This site.
date: 2024-02-01
url: https://example.com
repository: ruangkarya/site
---

Built with Go.
`

func writeFile(t *testing.T, root, rel, data string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func newTestBuilder(root string) *Builder {
	return NewBuilder(root, siteURL, mdx.NewCompiler(), logger.Discard())
}

func TestBuildHelloWorld(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/hello-world.md", helloWorld)
	writeFile(t, root, "projects/portfolio.mdx", sampleProject)

	c, err := newTestBuilder(root).Build()
	require.NoError(t, err)
	require.Len(t, c.Posts, 1)
	require.Len(t, c.Projects, 1)

	p := c.Posts[0]
	assert.Equal(t, "hello-world", p.Slug)
	assert.Equal(t, "/blog/hello-world", p.Path)
	assert.Equal(t, "https://example.com/blog/hello-world", p.Permalink)
	assert.Equal(t, 3, p.ReadTimeMinutes)
	assert.Equal(t, "2024-01-01", p.Date)
	assert.Equal(t, DefaultAuthor, p.Author)
	assert.Equal(t, []string{}, p.Tags)
	assert.True(t, p.Visible())
	assert.False(t, p.Featured)

	_, err = mdx.DecodeArtifact(p.Body)
	require.NoError(t, err, "body is a compiled artifact")
	assert.NotContains(t, p.Body, "**markdown**")

	proj := c.Projects[0]
	assert.Equal(t, "portfolio", proj.Slug)
	assert.Equal(t, "/projects/portfolio", proj.Path)
	assert.Equal(t, "2024-02-01", proj.Date)
	assert.Equal(t, "ruangkarya/site", proj.Repository)
}

func TestBuildDefaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/minimal.mdx", "---\ntitle: Min\ndate: 2024-05-01\nexcerpt: x\ncategory: Go\ntags: [go, web]\n---\nbody\n")

	c, err := newTestBuilder(root).Build()
	require.NoError(t, err)
	require.Len(t, c.Posts, 1)

	p := c.Posts[0]
	assert.Equal(t, "minimal", p.Slug)
	assert.False(t, p.Published)
	assert.False(t, p.Draft)
	assert.Equal(t, DefaultReadTimeMinutes, p.ReadTimeMinutes)
	assert.Equal(t, []string{"go", "web"}, p.Tags)
}

func TestBuildValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		src   string
		field string
	}{
		{
			name:  "missing title",
			file:  "posts/no-title.md",
			src:   "---\ndate: 2024-01-01\nexcerpt: x\ncategory: Tech\n---\nbody",
			field: "title",
		},
		{
			name:  "title type mismatch",
			file:  "posts/numeric.md",
			src:   "---\ntitle: 42\ndate: 2024-01-01\nexcerpt: x\ncategory: Tech\n---\nbody",
			field: "title",
		},
		{
			name:  "title too long",
			file:  "posts/long.md",
			src:   "---\ntitle: " + strings.Repeat("a", 100) + "\ndate: 2024-01-01\nexcerpt: x\ncategory: Tech\n---\nbody",
			field: "title",
		},
		{
			name:  "excerpt too long",
			file:  "posts/wordy.md",
			src:   "---\ntitle: t\ndate: 2024-01-01\nexcerpt: " + strings.Repeat("b", 301) + "\ncategory: Tech\n---\nbody",
			field: "excerpt",
		},
		{
			name:  "bad date",
			file:  "posts/when.md",
			src:   "---\ntitle: t\ndate: last tuesday\nexcerpt: x\ncategory: Tech\n---\nbody",
			field: "date",
		},
		{
			name:  "published not boolean",
			file:  "posts/flag.md",
			src:   "---\npublished: sometimes\ntitle: t\ndate: 2024-01-01\nexcerpt: x\ncategory: Tech\n---\nbody",
			field: "published",
		},
		{
			name:  "tag not a string",
			file:  "posts/tags.md",
			src:   "---\ntitle: t\ndate: 2024-01-01\nexcerpt: x\ncategory: Tech\ntags: [go, [nested]]\n---\nbody",
			field: "tags[1]",
		},
		{
			name:  "missing frontmatter",
			file:  "posts/bare.md",
			src:   "# just markdown\n",
			field: "frontmatter",
		},
		{
			name:  "project missing description",
			file:  "projects/thing.mdx",
			src:   "---\ntitle: Thing\ndate: 2024-01-01\n---\nbody",
			field: "description",
		},
		{
			name:  "project repository is a url",
			file:  "projects/repo.mdx",
			src:   "---\ntitle: Thing\ndescription: d\ndate: 2024-01-01\nrepository: https://github.com/a/b\n---\nbody",
			field: "repository",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, tt.file, tt.src)

			c, err := newTestBuilder(root).Build()
			assert.Nil(t, c)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.file, ve.File)
			assert.Equal(t, tt.field, ve.Field)
			assert.Contains(t, ve.Error(), tt.file)
		})
	}
}

func TestBuildReportsAllFieldIssues(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/empty.md", "---\npublished: true\n---\nbody")

	_, err := newTestBuilder(root).Build()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	fields := make([]string, 0, len(ve.Issues))
	for _, issue := range ve.Issues {
		fields = append(fields, issue.Field)
	}
	assert.Equal(t, []string{"category", "date", "excerpt", "title"}, fields)
	assert.Equal(t, "category", ve.Field)
}

func TestBuildRejectsDuplicateSlugs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/2023/intro.md", helloWorld)
	writeFile(t, root, "posts/2024/intro.mdx", helloWorld)

	_, err := newTestBuilder(root).Build()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "slug", ve.Field)
	assert.Equal(t, "posts/2024/intro.mdx", ve.File)
}

func TestBuildIgnoresNonMarkdownAndMissingCollections(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/hello-world.md", helloWorld)
	writeFile(t, root, "posts/cover.png", "not markdown")

	c, err := newTestBuilder(root).Build()
	require.NoError(t, err)
	assert.Len(t, c.Posts, 1)
	assert.Empty(t, c.Projects)
}

func TestBuildProjectsAreMDXOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "projects/portfolio.mdx", sampleProject)
	writeFile(t, root, "projects/notes.md", sampleProject)

	c, err := newTestBuilder(root).Build()
	require.NoError(t, err)
	require.Len(t, c.Projects, 1)
	assert.Equal(t, "portfolio", c.Projects[0].Slug)
}

func TestBuildMissingRoot(t *testing.T) {
	_, err := newTestBuilder(filepath.Join(t.TempDir(), "nope")).Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestBuildAndWriteLeavesArtifactsOnValidationFailure(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), ".content")
	writeFile(t, root, "posts/hello-world.md", helloWorld)

	_, err := BuildAndWrite(newTestBuilder(root), out)
	require.NoError(t, err)
	before, err := os.ReadFile(filepath.Join(out, PostsFile))
	require.NoError(t, err)

	writeFile(t, root, "posts/zz-broken.md", "---\ntitle: broken\n---\n")
	_, err = BuildAndWrite(newTestBuilder(root), out)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "posts/zz-broken.md", ve.File)

	after, err := os.ReadFile(filepath.Join(out, PostsFile))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestBuildAndWriteIsByteIdentical(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), ".content")
	writeFile(t, root, "posts/hello-world.md", helloWorld)
	writeFile(t, root, "posts/second.md", strings.Replace(helloWorld, "2024-01-01", "2024-02-01", 1))
	writeFile(t, root, "projects/portfolio.mdx", sampleProject)

	read := func() (string, string) {
		posts, err := os.ReadFile(filepath.Join(out, PostsFile))
		require.NoError(t, err)
		projects, err := os.ReadFile(filepath.Join(out, ProjectsFile))
		require.NoError(t, err)
		return string(posts), string(projects)
	}

	_, err := BuildAndWrite(newTestBuilder(root), out)
	require.NoError(t, err)
	posts1, projects1 := read()

	_, err = BuildAndWrite(newTestBuilder(root), out)
	require.NoError(t, err)
	posts2, projects2 := read()

	assert.Equal(t, posts1, posts2)
	assert.Equal(t, projects1, projects2)
}

func TestBuildAndWriteReplacesStaleFiles(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), ".content")
	writeFile(t, root, "posts/hello-world.md", helloWorld)
	writeFile(t, out, "stale.json", "{}")

	_, err := BuildAndWrite(newTestBuilder(root), out)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(out, "stale.json"))
	assert.True(t, os.IsNotExist(err))

	c, err := Load(out)
	require.NoError(t, err)
	require.Len(t, c.Posts, 1)
	assert.Equal(t, "hello-world", c.Posts[0].Slug)
	assert.Empty(t, c.Projects)
}

func TestLoadMissingArtifact(t *testing.T) {
	_, err := LoadPosts(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingArtifact)

	_, err = LoadProjects(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingArtifact)
}
