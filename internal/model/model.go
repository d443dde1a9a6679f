package model

import "time"

// DateLayout is the ISO-8601 calendar date layout used by front-matter dates.
const DateLayout = "2006-01-02"

// Collection names, also the first path segment of an entry's URL.
const (
	CollectionPosts    = "blog"
	CollectionProjects = "projects"
)

// Entry holds the fields shared by every content collection.
type Entry struct {
	Slug      string `json:"slug"`
	Path      string `json:"path"`
	Published bool   `json:"published"`
	Date      string `json:"date"`
	// Body is the compiled render artifact, never raw markdown.
	Body string `json:"body"`
}

// Time parses Date. Entries that passed validation always parse.
func (e Entry) Time() time.Time {
	return ParseDate(e.Date)
}

// Post is a blog article.
type Post struct {
	Entry
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Excerpt         string   `json:"excerpt"`
	Author          string   `json:"author"`
	ReadTime        string   `json:"readTime,omitempty"`
	ReadTimeMinutes int      `json:"readTimeMinutes"`
	Category        string   `json:"category"`
	Image           string   `json:"image,omitempty"`
	ImageAlt        string   `json:"imageAlt,omitempty"`
	Tags            []string `json:"tags"`
	Featured        bool     `json:"featured"`
	Draft           bool     `json:"draft"`
	Updated         string   `json:"updated,omitempty"`
	Permalink       string   `json:"permalink"`
}

// Visible reports whether the post may appear in listings, feeds, sitemaps and navigation.
func (p Post) Visible() bool {
	return p.Published && !p.Draft
}

// LastModified returns Updated when present, else Date.
func (p Post) LastModified() time.Time {
	if p.Updated != "" {
		return ParseDate(p.Updated)
	}
	return p.Time()
}

// Project is a portfolio project page.
type Project struct {
	Entry
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	Repository  string `json:"repository,omitempty"`
}

// Visible reports whether the project may appear publicly.
func (p Project) Visible() bool {
	return p.Published
}

// RepositoryURL expands the owner/repo identifier to a GitHub URL.
func (p Project) RepositoryURL() string {
	if p.Repository == "" {
		return ""
	}
	return "https://github.com/" + p.Repository
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp and returns the zero time otherwise.
func ParseDate(s string) time.Time {
	for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
