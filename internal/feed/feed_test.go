package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruangkarya/ruangkarya/internal/config"
	"github.com/ruangkarya/ruangkarya/internal/content"
	"github.com/ruangkarya/ruangkarya/internal/model"
)

var now = time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC)

var testOptions = Options{
	SiteURL:     "https://example.com/",
	Title:       "Example - Blog",
	Description: "Notes & thoughts",
	Language:    "en-US",
	Author:      "Site Owner",
	Email:       "noreply@example.com",
}

func post(slug, date string) model.Post {
	return model.Post{
		Entry: model.Entry{
			Slug:      slug,
			Path:      "/blog/" + slug,
			Published: true,
			Date:      date,
		},
		Title:    "Post " + slug,
		Excerpt:  "About " + slug,
		Author:   "Writer",
		Category: "Tech",
		Tags:     []string{},
	}
}

func project(slug, date string) model.Project {
	return model.Project{
		Entry: model.Entry{
			Slug:      slug,
			Path:      "/projects/" + slug,
			Published: true,
			Date:      date,
		},
		Title: "Project " + slug,
	}
}

type parsedRSS struct {
	Channel struct {
		Title         string `xml:"title"`
		LastBuildDate string `xml:"lastBuildDate"`
		AtomLink      struct {
			Href string `xml:"href,attr"`
			Rel  string `xml:"rel,attr"`
		} `xml:"http://www.w3.org/2005/Atom link"`
		Items []struct {
			Title      string   `xml:"title"`
			Link       string   `xml:"link"`
			GUID       string   `xml:"guid"`
			PubDate    string   `xml:"pubDate"`
			Categories []string `xml:"category"`
			Author     string   `xml:"author"`
		} `xml:"item"`
	} `xml:"channel"`
}

func parseRSS(t *testing.T, doc []byte) parsedRSS {
	t.Helper()
	var out parsedRSS
	require.NoError(t, xml.Unmarshal(doc, &out))
	return out
}

type parsedSitemap struct {
	URLs []SitemapURL `xml:"url"`
}

func parseSitemap(t *testing.T, doc []byte) parsedSitemap {
	t.Helper()
	var out parsedSitemap
	require.NoError(t, xml.Unmarshal(doc, &out))
	return out
}

func TestRSSCapsAndOrders(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := make([]model.Post, 0, 25)
	for i := 0; i < 25; i++ {
		d := start.AddDate(0, 0, i)
		posts = append(posts, post(fmt.Sprintf("p%02d", i), d.Format(model.DateLayout)))
	}

	doc, err := RSS(posts, testOptions, now)
	require.NoError(t, err)

	rss := parseRSS(t, doc)
	require.Len(t, rss.Channel.Items, DefaultLimit)
	assert.Equal(t, "https://example.com/blog/p24", rss.Channel.Items[0].Link)
	assert.Equal(t, "https://example.com/blog/p05", rss.Channel.Items[19].Link)

	var prev time.Time
	for i, item := range rss.Channel.Items {
		assert.Equal(t, item.Link, item.GUID)
		pub, err := time.Parse(time.RFC1123, item.PubDate)
		require.NoError(t, err)
		if i > 0 {
			assert.True(t, pub.Before(prev), "item %d out of order", i)
		}
		prev = pub
	}
}

func TestRSSExcludesHidden(t *testing.T) {
	draft := post("draft", "2024-03-01")
	draft.Draft = true
	unpublished := post("unpublished", "2024-03-02")
	unpublished.Published = false

	doc, err := RSS([]model.Post{post("visible", "2024-01-01"), draft, unpublished}, testOptions, now)
	require.NoError(t, err)

	rss := parseRSS(t, doc)
	require.Len(t, rss.Channel.Items, 1)
	assert.Equal(t, "https://example.com/blog/visible", rss.Channel.Items[0].Link)
}

func TestRSSItemFields(t *testing.T) {
	p := post("hello-world", "2024-01-01")
	p.Title = "Hello <World> & ]]> friends"
	p.Tags = []string{"go", "web"}
	older := post("older", "2023-12-31")
	newer := post("newer", "2024-01-02")

	doc, err := RSS([]model.Post{older, p, newer}, testOptions, now)
	require.NoError(t, err)
	assert.Contains(t, string(doc), `<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	assert.Contains(t, string(doc), `<guid isPermaLink="true">https://example.com/blog/hello-world</guid>`)

	rss := parseRSS(t, doc)
	assert.Equal(t, "Example - Blog", rss.Channel.Title)
	assert.Equal(t, "Sat, 15 Jun 2024 12:30:00 GMT", rss.Channel.LastBuildDate)
	assert.Equal(t, "https://example.com/rss.xml", rss.Channel.AtomLink.Href)
	assert.Equal(t, "self", rss.Channel.AtomLink.Rel)

	require.Len(t, rss.Channel.Items, 3)
	assert.Equal(t, "https://example.com/blog/newer", rss.Channel.Items[0].Link)
	item := rss.Channel.Items[1]
	assert.Equal(t, "Hello <World> & ]]> friends", item.Title)
	assert.Equal(t, "Mon, 01 Jan 2024 00:00:00 GMT", item.PubDate)
	assert.Equal(t, []string{"Tech", "go", "web"}, item.Categories)
	assert.Equal(t, "noreply@example.com (Writer)", item.Author)
	assert.Equal(t, "https://example.com/blog/older", rss.Channel.Items[2].Link)
}

func TestRSSIsDeterministic(t *testing.T) {
	posts := []model.Post{post("a", "2024-01-01"), post("b", "2024-01-01"), post("c", "2023-05-05")}

	first, err := RSS(posts, testOptions, now)
	require.NoError(t, err)
	second, err := RSS(posts, testOptions, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	later, err := RSS(posts, testOptions, now.Add(time.Hour))
	require.NoError(t, err)
	assert.NotEqual(t, first, later)
	assert.Equal(t, parseRSS(t, first).Channel.Items, parseRSS(t, later).Channel.Items)
}

func TestSitemapCompleteness(t *testing.T) {
	updated := post("updated", "2024-01-01")
	updated.Updated = "2024-04-02"
	draft := post("draft", "2024-01-03")
	draft.Draft = true
	hidden := project("hidden", "2024-01-01")
	hidden.Published = false

	posts := []model.Post{post("first", "2024-01-01"), updated, draft}
	projects := []model.Project{project("site", "2024-02-01"), hidden}

	doc, err := Sitemap(posts, projects, testOptions, now)
	require.NoError(t, err)
	assert.Contains(t, string(doc), `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)

	sm := parseSitemap(t, doc)
	require.Len(t, sm.URLs, len(StaticRoutes)+3)
	assert.Equal(t, []SitemapURL{
		{Loc: "https://example.com", LastMod: "2024-06-15", ChangeFreq: ChangeFreqWeekly, Priority: "1.0"},
		{Loc: "https://example.com/blog", LastMod: "2024-06-15", ChangeFreq: ChangeFreqDaily, Priority: "0.9"},
		{Loc: "https://example.com/projects", LastMod: "2024-06-15", ChangeFreq: ChangeFreqWeekly, Priority: "0.8"},
		{Loc: "https://example.com/blog/first", LastMod: "2024-01-01", ChangeFreq: ChangeFreqMonthly, Priority: "0.7"},
		{Loc: "https://example.com/blog/updated", LastMod: "2024-04-02", ChangeFreq: ChangeFreqMonthly, Priority: "0.7"},
		{Loc: "https://example.com/projects/site", LastMod: "2024-02-01", ChangeFreq: ChangeFreqMonthly, Priority: "0.6"},
	}, sm.URLs)
}

func newTestEmitter(t *testing.T, dataDir string) (*Emitter, *bytes.Buffer, string) {
	t.Helper()
	var logs bytes.Buffer
	out := filepath.Join(t.TempDir(), "build")
	e := NewEmitter(dataDir, out, testOptions, slog.New(slog.NewTextHandler(&logs, nil)))
	e.now = func() time.Time { return now }
	return e, &logs, out
}

func TestEmitterWritesDocuments(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, content.WriteCollections(dataDir, &content.Collections{
		Posts:    []model.Post{post("hello-world", "2024-01-01")},
		Projects: []model.Project{project("site", "2024-02-01")},
	}))

	e, logs, out := newTestEmitter(t, dataDir)
	require.NoError(t, e.Emit())
	assert.NotContains(t, logs.String(), "level=WARN")

	rss, err := os.ReadFile(filepath.Join(out, RSSFile))
	require.NoError(t, err)
	assert.Len(t, parseRSS(t, rss).Channel.Items, 1)

	sitemap, err := os.ReadFile(filepath.Join(out, SitemapFile))
	require.NoError(t, err)
	assert.Len(t, parseSitemap(t, sitemap).URLs, len(StaticRoutes)+2)
}

func TestEmitterDegradesWithoutArtifacts(t *testing.T) {
	e, logs, out := newTestEmitter(t, filepath.Join(t.TempDir(), "missing"))

	require.NoError(t, e.EmitRSS())
	_, err := os.Stat(filepath.Join(out, RSSFile))
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, logs.String(), "skipping RSS feed")

	require.NoError(t, e.EmitSitemap())
	doc, err := os.ReadFile(filepath.Join(out, SitemapFile))
	require.NoError(t, err)
	sm := parseSitemap(t, doc)
	require.Len(t, sm.URLs, len(StaticRoutes))
	assert.Equal(t, "https://example.com", sm.URLs[0].Loc)
}

func TestMissingArtifactWarningUnwraps(t *testing.T) {
	w := &MissingArtifactWarning{Emitter: "rss", Err: content.ErrMissingArtifact}
	assert.ErrorIs(t, w, content.ErrMissingArtifact)
	assert.Contains(t, w.Error(), "rss")
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Feed.Title = ""
	cfg.Author = ""

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, cfg.SiteTitle, opts.Title)
	assert.Equal(t, content.DefaultAuthor, opts.Author)
	assert.Equal(t, DefaultLimit, opts.limit())
	assert.Equal(t, "noreply@ruangkarya.space (Your Name)", opts.contact(""))
}
