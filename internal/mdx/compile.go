package mdx

import (
	"bytes"
	"fmt"
	"html"
	"regexp"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// CodeTheme is stamped on every highlighted block; the active token set is
	// chosen by the theme class around the rendered tree.
	CodeTheme = "material-theme"

	defaultLanguage = "plaintext"
	anchorClass     = "anchor"
)

// Compiler turns markdown/MDX bodies into compiled artifacts. It holds no
// per-document state and may be shared.
type Compiler struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

type compilerOptions struct {
	sanitize bool
}

// CompilerOption configures a Compiler.
type CompilerOption func(*compilerOptions)

// WithSanitize toggles HTML sanitization of the rendered markdown before it
// is converted into an artifact. Enabled by default.
func WithSanitize(on bool) CompilerOption {
	return func(o *compilerOptions) { o.sanitize = on }
}

// NewCompiler builds the markdown pipeline: GFM extensions, heading ids,
// heading self-links and class-based syntax highlighting, in that order.
func NewCompiler(opts ...CompilerOption) *Compiler {
	o := compilerOptions{sanitize: true}
	for _, opt := range opts {
		opt(&o)
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.NewTable(extension.WithTableCellAlignMethod(extension.TableCellAlignAttribute)),
			extension.Strikethrough,
			extension.TaskList,
			extension.Linkify,
			highlighting.NewHighlighting(
				highlighting.WithGuessLanguage(false),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
					chromahtml.PreventSurroundingPre(true),
				),
				highlighting.WithWrapperRenderer(codeWrapper),
			),
		),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(&headingAnchors{class: anchorClass}, 100)),
		),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)

	c := &Compiler{md: md}
	if o.sanitize {
		c.policy = newPolicy()
	}
	return c
}

// Compile renders src and returns the compiled body artifact.
func (c *Compiler) Compile(src []byte) (string, error) {
	var buf bytes.Buffer
	ctx := parser.NewContext(parser.WithIDs(newSlugger()))
	if err := c.md.Convert(src, &buf, parser.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("mdx: convert markdown: %w", err)
	}

	out := buf.Bytes()
	if c.policy != nil {
		out = c.policy.SanitizeBytes(out)
	}

	nodes, err := xhtml.ParseFragment(bytes.NewReader(out), &xhtml.Node{
		Type:     xhtml.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return "", fmt.Errorf("mdx: parse rendered html: %w", err)
	}

	root := Instruction{Op: OpFragment}
	for _, n := range nodes {
		if in, ok := toInstruction(n); ok {
			root.Children = append(root.Children, in)
		}
	}
	if err := validateInstruction(root, "root"); err != nil {
		return "", err
	}
	return encodeArtifact(root)
}

func toInstruction(n *xhtml.Node) (Instruction, bool) {
	switch n.Type {
	case xhtml.TextNode:
		return Instruction{Op: OpText, Text: n.Data}, true
	case xhtml.ElementNode:
		in := Instruction{Op: OpElement, Tag: n.Data}
		if len(n.Attr) > 0 {
			in.Props = make(map[string]string, len(n.Attr))
			for _, a := range n.Attr {
				key := a.Key
				if a.Namespace != "" {
					key = a.Namespace + ":" + a.Key
				}
				in.Props[key] = a.Val
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if ci, ok := toInstruction(c); ok {
				in.Children = append(in.Children, ci)
			}
		}
		if len(in.Children) > 1 {
			in.Op = OpElements
		}
		return in, true
	default:
		return Instruction{}, false
	}
}

// codeWrapper opens and closes every fenced block, attaching the theme
// marker and language the renderer and stylesheet key off.
func codeWrapper(w util.BufWriter, c highlighting.CodeBlockContext, entering bool) {
	if !entering {
		_, _ = w.WriteString("</code></pre>\n")
		return
	}
	lang := defaultLanguage
	if l, ok := c.Language(); ok && len(l) > 0 {
		lang = string(l)
	}
	_, _ = fmt.Fprintf(w, `<pre class="chroma" data-language="%s" data-theme="%s"><code>`,
		html.EscapeString(lang), CodeTheme)
}

var (
	idPattern       = regexp.MustCompile(`^[\p{L}\p{N}_-]+$`)
	languagePattern = regexp.MustCompile(`^[a-zA-Z0-9_+#.-]+$`)
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.RequireNoFollowOnFullyQualifiedLinks(true)
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("id").Matching(idPattern).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("data-language").Matching(languagePattern).OnElements("pre")
	p.AllowAttrs("data-theme").Matching(regexp.MustCompile(`^`+regexp.QuoteMeta(CodeTheme)+`$`)).OnElements("pre")
	p.AllowAttrs("align").Matching(regexp.MustCompile(`^(left|right|center)$`)).OnElements("th", "td")
	p.AllowElements("input")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	return p
}
