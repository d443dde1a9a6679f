// Package feed serializes the built collections into RSS 2.0 and Sitemap 0.9 documents.
package feed

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ruangkarya/ruangkarya/internal/model"
)

// DefaultLimit is the number of items kept in the RSS feed.
const DefaultLimit = 20

// rfc822 is the RFC 822 date form used by RSS readers, always in GMT.
const rfc822 = "Mon, 02 Jan 2006 15:04:05 GMT"

const atomNamespace = "http://www.w3.org/2005/Atom"

// Options describes the site the documents are generated for.
type Options struct {
	SiteURL     string
	Title       string
	Description string
	Language    string
	Author      string
	Email       string
	Limit       int
}

func (o Options) base() string {
	return strings.TrimRight(strings.TrimSpace(o.SiteURL), "/")
}

func (o Options) limit() int {
	if o.Limit <= 0 {
		return DefaultLimit
	}
	return o.Limit
}

func (o Options) contact(name string) string {
	if name == "" {
		name = o.Author
	}
	return fmt.Sprintf("%s (%s)", o.Email, name)
}

type cdata struct {
	Text string `xml:",cdata"`
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Atom    string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title          cdata     `xml:"title"`
	Description    cdata     `xml:"description"`
	Link           string    `xml:"link"`
	Language       string    `xml:"language,omitempty"`
	ManagingEditor string    `xml:"managingEditor,omitempty"`
	WebMaster      string    `xml:"webMaster,omitempty"`
	LastBuildDate  string    `xml:"lastBuildDate"`
	AtomLink       atomLink  `xml:"atom:link"`
	Items          []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       cdata   `xml:"title"`
	Description cdata   `xml:"description"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate"`
	Categories  []cdata `xml:"category"`
	Author      string  `xml:"author,omitempty"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// Recent returns the visible posts newest first, capped at limit.
// Posts sharing a date keep their collection order.
func Recent(posts []model.Post, limit int) []model.Post {
	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if p.Visible() {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time().After(out[j].Time())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RSS renders the feed document. now only affects lastBuildDate.
func RSS(posts []model.Post, opts Options, now time.Time) ([]byte, error) {
	base := opts.base()

	items := make([]rssItem, 0, opts.limit())
	for _, p := range Recent(posts, opts.limit()) {
		link := base + p.Path
		categories := make([]cdata, 0, len(p.Tags)+1)
		categories = append(categories, cdata{p.Category})
		for _, tag := range p.Tags {
			categories = append(categories, cdata{tag})
		}
		items = append(items, rssItem{
			Title:       cdata{p.Title},
			Description: cdata{p.Excerpt},
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			PubDate:     p.Time().UTC().Format(rfc822),
			Categories:  categories,
			Author:      opts.contact(p.Author),
		})
	}

	doc := rssDocument{
		Version: "2.0",
		Atom:    atomNamespace,
		Channel: rssChannel{
			Title:          cdata{opts.Title},
			Description:    cdata{opts.Description},
			Link:           base,
			Language:       opts.Language,
			ManagingEditor: opts.contact(""),
			WebMaster:      opts.contact(""),
			LastBuildDate:  now.UTC().Format(rfc822),
			AtomLink: atomLink{
				Href: base + "/rss.xml",
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Items: items,
		},
	}
	return marshal(doc)
}

func marshal(v interface{}) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("feed: encode xml: %w", err)
	}
	out := append([]byte(xml.Header), body...)
	return append(out, '\n'), nil
}
