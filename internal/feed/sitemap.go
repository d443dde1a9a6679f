package feed

import (
	"encoding/xml"
	"time"

	"github.com/ruangkarya/ruangkarya/internal/model"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq is a sitemap change-frequency hint.
type ChangeFreq string

const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// Route is a top-level page that is always present in the sitemap.
type Route struct {
	Path       string
	Priority   string
	ChangeFreq ChangeFreq
}

// StaticRoutes are the pages that exist independently of content.
var StaticRoutes = []Route{
	{Path: "", Priority: "1.0", ChangeFreq: ChangeFreqWeekly},
	{Path: "/" + model.CollectionPosts, Priority: "0.9", ChangeFreq: ChangeFreqDaily},
	{Path: "/" + model.CollectionProjects, Priority: "0.8", ChangeFreq: ChangeFreqWeekly},
}

const (
	postPriority    = "0.7"
	projectPriority = "0.6"
)

// SitemapURL is a single url entry.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod"`
	ChangeFreq ChangeFreq `xml:"changefreq"`
	Priority   string     `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapBuilder accumulates sitemap entries for one site.
type SitemapBuilder struct {
	base string
	now  time.Time
	urls []SitemapURL
}

// NewSitemapBuilder creates a builder. now is the lastmod of static routes.
func NewSitemapBuilder(siteURL string, now time.Time) *SitemapBuilder {
	return &SitemapBuilder{base: Options{SiteURL: siteURL}.base(), now: now}
}

// AddStatic adds the static routes.
func (b *SitemapBuilder) AddStatic(routes []Route) {
	for _, r := range routes {
		b.add(r.Path, b.now, r.ChangeFreq, r.Priority)
	}
}

// AddPosts adds every visible post.
func (b *SitemapBuilder) AddPosts(posts []model.Post) {
	for _, p := range posts {
		if p.Visible() {
			b.add(p.Path, p.LastModified(), ChangeFreqMonthly, postPriority)
		}
	}
}

// AddProjects adds every visible project.
func (b *SitemapBuilder) AddProjects(projects []model.Project) {
	for _, p := range projects {
		if p.Visible() {
			b.add(p.Path, p.Time(), ChangeFreqMonthly, projectPriority)
		}
	}
}

func (b *SitemapBuilder) add(path string, lastMod time.Time, freq ChangeFreq, priority string) {
	if lastMod.IsZero() {
		lastMod = b.now
	}
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.base + path,
		LastMod:    lastMod.UTC().Format(model.DateLayout),
		ChangeFreq: freq,
		Priority:   priority,
	})
}

// Len returns the number of entries added so far.
func (b *SitemapBuilder) Len() int {
	return len(b.urls)
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	return marshal(urlSet{XMLNS: XMLNamespace, URLs: b.urls})
}

// Sitemap renders the static routes followed by visible posts and projects.
func Sitemap(posts []model.Post, projects []model.Project, opts Options, now time.Time) ([]byte, error) {
	b := NewSitemapBuilder(opts.SiteURL, now)
	b.AddStatic(StaticRoutes)
	b.AddPosts(posts)
	b.AddProjects(projects)
	return b.Build()
}
