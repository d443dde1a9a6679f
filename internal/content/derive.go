package content

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// DefaultReadTimeMinutes is used when readTime carries no positive integer.
const DefaultReadTimeMinutes = 5

var (
	markdownExt = regexp.MustCompile(`\.(md|mdx)$`)
	firstNumber = regexp.MustCompile(`\d+`)
)

// Slug is the source file's base name without its markdown extension.
func Slug(filename string) string {
	return markdownExt.ReplaceAllString(filepath.Base(filename), "")
}

// Path is the canonical site-relative URL of an entry.
func Path(collection, slug string) string {
	return "/" + collection + "/" + slug
}

// Permalink is the absolute URL of an entry.
func Permalink(siteURL, collection, slug string) string {
	return strings.TrimRight(siteURL, "/") + Path(collection, slug)
}

// ReadTimeMinutes returns the first integer in readTime, e.g. 3 for "3 min read".
func ReadTimeMinutes(readTime string) int {
	n, err := strconv.Atoi(firstNumber.FindString(readTime))
	if err != nil || n <= 0 {
		return DefaultReadTimeMinutes
	}
	return n
}

func isMarkdown(name string) bool {
	return markdownExt.MatchString(name)
}

func isMDX(name string) bool {
	return filepath.Ext(name) == ".mdx"
}
