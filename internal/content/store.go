package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ruangkarya/ruangkarya/internal/model"
)

// Artifact file names inside the data directory.
const (
	PostsFile    = "posts.json"
	ProjectsFile = "projects.json"
)

// WriteCollections replaces dir with freshly serialized collections. Files
// are staged in a sibling directory so a failed write leaves the previous
// artifacts in place.
func WriteCollections(dir string, c *Collections) error {
	staging := filepath.Clean(dir) + ".tmp"
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("content: clean staging directory %q: %w", staging, err)
	}
	if err := os.MkdirAll(staging, os.ModePerm); err != nil {
		return fmt.Errorf("content: create staging directory %q: %w", staging, err)
	}

	if err := writeJSON(filepath.Join(staging, PostsFile), c.Posts); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(staging, ProjectsFile), c.Projects); err != nil {
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("content: remove output directory %q: %w", dir, err)
	}
	if err := os.Rename(staging, dir); err != nil {
		return fmt.Errorf("content: move %q to %q: %w", staging, dir, err)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("content: encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("content: write %q: %w", path, err)
	}
	return nil
}

// LoadPosts reads the serialized posts collection.
func LoadPosts(dir string) ([]model.Post, error) {
	var posts []model.Post
	if err := readJSON(filepath.Join(dir, PostsFile), &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// LoadProjects reads the serialized projects collection.
func LoadProjects(dir string) ([]model.Project, error) {
	var projects []model.Project
	if err := readJSON(filepath.Join(dir, ProjectsFile), &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Load reads both collections.
func Load(dir string) (*Collections, error) {
	posts, err := LoadPosts(dir)
	if err != nil {
		return nil, err
	}
	projects, err := LoadProjects(dir)
	if err != nil {
		return nil, err
	}
	return &Collections{Posts: posts, Projects: projects}, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrMissingArtifact, path)
	}
	if err != nil {
		return fmt.Errorf("content: read %q: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("content: decode %q: %w", path, err)
	}
	return nil
}
