package model

import "html/template"

// PageData is the template context shared by every server page.
type PageData struct {
	SiteTitle string
	PageTitle string
	BaseURL   string
	Theme     string
	Path      string
	Data      any
}

// Neighbors links a post to its chronological siblings.
type Neighbors struct {
	Previous *Post
	Next     *Post
}

// PostPage is the data behind a single blog post view.
type PostPage struct {
	Post      Post
	Body      template.HTML
	Neighbors Neighbors
}

// ProjectPage is the data behind a single project view.
type ProjectPage struct {
	Project Project
	Body    template.HTML
}
