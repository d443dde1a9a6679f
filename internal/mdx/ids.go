package mdx

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
)

// slugger generates GitHub-style heading ids: lower-cased, punctuation
// dropped, spaces turned into hyphens, repeats suffixed with -1, -2, ...
type slugger struct {
	seen map[string]int
}

var _ parser.IDs = (*slugger)(nil)

func newSlugger() *slugger {
	return &slugger{seen: map[string]int{}}
}

func (s *slugger) Generate(value []byte, _ ast.NodeKind) []byte {
	base := headingSlug(string(value))
	if base == "" {
		base = "heading"
	}

	slug := base
	for {
		n, taken := s.seen[slug]
		if !taken {
			break
		}
		s.seen[slug] = n + 1
		slug = base + "-" + strconv.Itoa(n+1)
	}
	s.seen[slug] = 0
	return []byte(slug)
}

func (s *slugger) Put(value []byte) {
	s.seen[string(value)] = 0
}

func headingSlug(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Mn, r):
			b.WriteRune(r)
		}
	}
	return b.String()
}
