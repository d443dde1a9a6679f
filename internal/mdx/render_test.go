package mdx

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruangkarya/ruangkarya/internal/logger"
	"github.com/ruangkarya/ruangkarya/internal/metrics"
)

const paragraphBody = `{"format":"mdx-tree","version":1,"root":{"op":"fragment","children":[` +
	`{"op":"jsx","tag":"p","children":[{"op":"text","text":"hi"}]}]}}`

func TestRenderWrapsTreeInThemeContainer(t *testing.T) {
	r := NewRenderer(logger.Discard())

	tree := r.Render(paragraphBody, ThemeDark, "prose")
	require.Equal(t, ElementNode, tree.Kind)
	assert.Equal(t, "div", tree.Tag)
	assert.Equal(t, "mdx-content theme-dark prose", tree.Props["class"])
	assert.Equal(t, "dark", tree.Props["data-theme"])

	out, err := tree.HTML()
	require.NoError(t, err)
	assert.Equal(t, `<div class="mdx-content theme-dark prose" data-theme="dark"><p>hi</p></div>`, out)
}

func TestRenderUnknownThemeFallsBackToLight(t *testing.T) {
	tree := NewRenderer(logger.Discard()).Render(paragraphBody, Theme("sepia"))
	assert.Equal(t, "mdx-content theme-light", tree.Props["class"])
	assert.Equal(t, "light", tree.Props["data-theme"])
}

func TestRenderFallbackOnMalformedBody(t *testing.T) {
	var logs bytes.Buffer
	r := NewRenderer(slog.New(slog.NewTextHandler(&logs, nil)))
	before := testutil.ToFloat64(metrics.RenderFailures)

	bodies := map[string]string{
		"not json":       "export default function MDXContent() {}",
		"wrong format":   `{"format":"jsx","version":1,"root":{"op":"fragment"}}`,
		"wrong version":  `{"format":"mdx-tree","version":9,"root":{"op":"fragment"}}`,
		"unknown op":     `{"format":"mdx-tree","version":1,"root":{"op":"eval","text":"1+1"}}`,
		"script tag":     `{"format":"mdx-tree","version":1,"root":{"op":"jsx","tag":"script","children":[{"op":"text","text":"alert(1)"}]}}`,
		"event handler":  `{"format":"mdx-tree","version":1,"root":{"op":"jsx","tag":"p","props":{"onclick":"x()"}}}`,
		"javascript url": `{"format":"mdx-tree","version":1,"root":{"op":"jsx","tag":"a","props":{"href":" JavaScript:alert(1)"}}}`,
		"jsx two kids":   `{"format":"mdx-tree","version":1,"root":{"op":"jsx","tag":"p","children":[{"op":"text","text":"a"},{"op":"text","text":"b"}]}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			var tree *Node
			require.NotPanics(t, func() { tree = r.Render(body, ThemeLight) })

			fallback := tree.Find("div")
			require.NotNil(t, fallback)
			require.Len(t, tree.Children, 1)
			assert.Equal(t, fallbackClass, tree.Children[0].Props["class"])
			assert.Equal(t, fallbackMessage, tree.Children[0].TextContent())
		})
	}

	assert.Equal(t, before+float64(len(bodies)), testutil.ToFloat64(metrics.RenderFailures))
	assert.Contains(t, logs.String(), "failed to render compiled body")
	assert.Contains(t, logs.String(), "preview=")
	assert.Equal(t, 0, r.Len(), "failed bodies are not cached")
}

func TestRenderLogsTruncatedPreview(t *testing.T) {
	var logs bytes.Buffer
	r := NewRenderer(slog.New(slog.NewJSONHandler(&logs, nil)))

	body := string(bytes.Repeat([]byte("x"), 500))
	r.Render(body, ThemeLight)

	assert.Contains(t, logs.String(), string(bytes.Repeat([]byte("x"), previewLength))+"...")
	assert.NotContains(t, logs.String(), string(bytes.Repeat([]byte("x"), previewLength+1)))
}

func TestRendererCachesPerBody(t *testing.T) {
	r := NewRenderer(logger.Discard())
	other := `{"format":"mdx-tree","version":1,"root":{"op":"jsx","tag":"hr"}}`

	light := r.Render(paragraphBody, ThemeLight)
	dark := r.Render(paragraphBody, ThemeDark)
	assert.Equal(t, 1, r.Len(), "theme toggles reuse the instantiated body")

	lightHTML, err := light.HTML()
	require.NoError(t, err)
	again, err := r.Render(paragraphBody, ThemeLight).HTML()
	require.NoError(t, err)
	assert.Equal(t, lightHTML, again)

	assert.Equal(t, light.Children, dark.Children)

	r.Render(other, ThemeLight)
	assert.Equal(t, 2, r.Len())

	r.Invalidate(paragraphBody)
	assert.Equal(t, 1, r.Len())

	r.Invalidate(paragraphBody)
	assert.Equal(t, 1, r.Len(), "invalidating an uncached body is a no-op")
}

func TestRendererCacheHitMetrics(t *testing.T) {
	r := NewRenderer(logger.Discard())
	hits := testutil.ToFloat64(metrics.RenderCache.WithLabelValues("hit"))

	r.Render(paragraphBody, ThemeLight)
	r.Render(paragraphBody, ThemeDark)
	r.Render(paragraphBody, ThemeLight)

	assert.Equal(t, hits+2, testutil.ToFloat64(metrics.RenderCache.WithLabelValues("hit")))
}

type panickyRuntime struct{ Runtime }

func (panickyRuntime) Element(string, Props, *Node) *Node {
	panic("element constructor exploded")
}

func TestExecuteRecoversRuntimePanics(t *testing.T) {
	r := NewRenderer(logger.Discard())
	r.runtime = panickyRuntime{Runtime: NewRuntime()}

	tree, err := r.Execute(paragraphBody)
	assert.Nil(t, tree)

	var execErr *RenderExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Error(), "element constructor exploded")
	assert.NotEmpty(t, execErr.Preview)
}

func TestRuntimePrimitives(t *testing.T) {
	rt := NewRuntime()

	single := rt.Element("em", nil, Text("x"))
	assert.Len(t, single.Children, 1)

	empty := rt.Element("br", nil, nil)
	assert.Empty(t, empty.Children)

	list := rt.Elements("ul", Props{"class": "list"}, []*Node{rt.Element("li", nil, Text("a")), rt.Element("li", nil, Text("b"))})
	frag := rt.Fragment([]*Node{list, empty})

	out, err := frag.HTML()
	require.NoError(t, err)
	assert.Equal(t, `<ul class="list"><li>a</li><li>b</li></ul><br/>`, out)
	assert.Equal(t, "ab", frag.TextContent())
}
