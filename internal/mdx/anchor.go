package mdx

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// headingAnchors gives every heading an id slugged from its rendered text
// and wraps its content in a self-link, so the whole heading becomes the
// anchor. Links already inside a heading are unwrapped into plain content.
type headingAnchors struct {
	class string
}

var _ parser.ASTTransformer = (*headingAnchors)(nil)

func (t *headingAnchors) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	var headings []*ast.Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			headings = append(headings, h)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	source := reader.Source()
	ids := pc.IDs()
	for _, h := range headings {
		if !h.HasChildren() {
			continue
		}
		unwrapLinks(h, source)

		var label bytes.Buffer
		inlineText(&label, h, source)
		id := ids.Generate(label.Bytes(), ast.KindHeading)
		h.SetAttributeString("id", id)

		link := ast.NewLink()
		link.Destination = append([]byte("#"), id...)
		if t.class != "" {
			link.SetAttributeString("class", []byte(t.class))
		}
		for c := h.FirstChild(); c != nil; {
			next := c.NextSibling()
			h.RemoveChild(h, c)
			link.AppendChild(link, c)
			c = next
		}
		h.AppendChild(h, link)
	}
}

// unwrapLinks replaces every link below n with its content and every
// autolink with its label.
func unwrapLinks(n ast.Node, source []byte) {
	for c := n.FirstChild(); c != nil; {
		next := c.NextSibling()
		switch l := c.(type) {
		case *ast.Link:
			unwrapLinks(l, source)
			for gc := l.FirstChild(); gc != nil; {
				gnext := gc.NextSibling()
				l.RemoveChild(l, gc)
				n.InsertBefore(n, l, gc)
				gc = gnext
			}
			n.RemoveChild(n, l)
		case *ast.AutoLink:
			n.ReplaceChild(n, l, ast.NewString(l.Label(source)))
		default:
			unwrapLinks(c, source)
		}
		c = next
	}
}

// inlineText writes the text content of n's inline children to w.
func inlineText(w *bytes.Buffer, n ast.Node, source []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			w.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				w.WriteByte(' ')
			}
		case *ast.String:
			w.Write(v.Value)
		case *ast.AutoLink:
			w.Write(v.Label(source))
		case *ast.RawHTML:
		default:
			inlineText(w, c, source)
		}
	}
}
