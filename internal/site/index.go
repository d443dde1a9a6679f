// Package site answers listing and lookup queries over the loaded collections.
package site

import (
	"errors"
	"sort"

	"github.com/ruangkarya/ruangkarya/internal/content"
	"github.com/ruangkarya/ruangkarya/internal/model"
)

// ErrNotFound is returned for entries that do not exist or are not visible.
var ErrNotFound = errors.New("site: entry not found")

// Index is an immutable view of one build. Listings only ever contain
// visible entries.
type Index struct {
	posts    []model.Post
	projects []model.Project

	postsBySlug    map[string]int
	projectsBySlug map[string]int
}

// NewIndex builds an index from loaded collections.
func NewIndex(c *content.Collections) *Index {
	idx := &Index{
		postsBySlug:    map[string]int{},
		projectsBySlug: map[string]int{},
	}
	if c == nil {
		return idx
	}

	for _, p := range c.Posts {
		if p.Visible() {
			idx.posts = append(idx.posts, p)
		}
	}
	sort.SliceStable(idx.posts, func(i, j int) bool {
		return idx.posts[i].Time().After(idx.posts[j].Time())
	})
	for i, p := range idx.posts {
		idx.postsBySlug[p.Slug] = i
	}

	for _, p := range c.Projects {
		if p.Visible() {
			idx.projects = append(idx.projects, p)
		}
	}
	sort.SliceStable(idx.projects, func(i, j int) bool {
		return idx.projects[i].Time().After(idx.projects[j].Time())
	})
	for i, p := range idx.projects {
		idx.projectsBySlug[p.Slug] = i
	}
	return idx
}

// Load reads the serialized collections in dir into an index.
func Load(dir string) (*Index, error) {
	c, err := content.Load(dir)
	if err != nil {
		return nil, err
	}
	return NewIndex(c), nil
}

// Posts returns the visible posts, newest first.
func (idx *Index) Posts() []model.Post {
	return append([]model.Post(nil), idx.posts...)
}

// Projects returns the visible projects, newest first.
func (idx *Index) Projects() []model.Project {
	return append([]model.Project(nil), idx.projects...)
}

// Featured returns the visible posts marked featured, newest first.
func (idx *Index) Featured() []model.Post {
	var out []model.Post
	for _, p := range idx.posts {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// Category returns the visible posts in category, newest first.
func (idx *Index) Category(name string) []model.Post {
	var out []model.Post
	for _, p := range idx.posts {
		if p.Category == name {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the distinct categories of visible posts, sorted.
func (idx *Index) Categories() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range idx.posts {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

// Post looks up a visible post.
func (idx *Index) Post(slug string) (model.Post, error) {
	i, ok := idx.postsBySlug[slug]
	if !ok {
		return model.Post{}, ErrNotFound
	}
	return idx.posts[i], nil
}

// Project looks up a visible project.
func (idx *Index) Project(slug string) (model.Project, error) {
	i, ok := idx.projectsBySlug[slug]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	return idx.projects[i], nil
}

// Neighbors returns the chronologically adjacent visible posts. Previous is
// the next older post and Next the next newer one, the reverse of a list
// read oldest first.
func (idx *Index) Neighbors(slug string) (model.Neighbors, error) {
	i, ok := idx.postsBySlug[slug]
	if !ok {
		return model.Neighbors{}, ErrNotFound
	}

	var n model.Neighbors
	if i+1 < len(idx.posts) {
		older := idx.posts[i+1]
		n.Previous = &older
	}
	if i > 0 {
		newer := idx.posts[i-1]
		n.Next = &newer
	}
	return n, nil
}
