package mdx

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/ruangkarya/ruangkarya/internal/metrics"
)

const (
	previewLength   = 200
	fallbackMessage = "Failed to render MDX content. Check the server log for details."
	fallbackClass   = "mdx-error"
)

// RenderExecutionError reports a compiled body that could not be instantiated.
type RenderExecutionError struct {
	Preview string
	Err     error
}

func (e *RenderExecutionError) Error() string {
	return fmt.Sprintf("mdx: execute compiled body: %v", e.Err)
}

func (e *RenderExecutionError) Unwrap() error {
	return e.Err
}

type cachedComponent struct {
	body      string
	component Component
}

// Renderer instantiates compiled bodies against a fixed Runtime and caches
// the instantiated component per distinct body.
type Renderer struct {
	runtime Runtime
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[uint64]cachedComponent
}

// NewRenderer creates a renderer using the standard tree runtime.
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		runtime: NewRuntime(),
		logger:  logger,
		cache:   make(map[uint64]cachedComponent),
	}
}

// Render produces the themed display tree for body. It never fails: a body
// that cannot be instantiated yields a visible fallback node instead.
func (r *Renderer) Render(body string, theme Theme, classes ...string) *Node {
	tree, err := r.Execute(body)
	if err != nil {
		preview := truncate(body, previewLength)
		var execErr *RenderExecutionError
		if errors.As(err, &execErr) {
			preview = execErr.Preview
		}
		metrics.RenderFailures.Inc()
		r.logger.Error("failed to render compiled body", "error", err, "preview", preview)
		tree = Fallback()
	}

	theme = ParseTheme(string(theme))
	class := strings.Join(strings.Fields(strings.Join(append([]string{"mdx-content", theme.Class()}, classes...), " ")), " ")
	return r.runtime.Element("div", Props{"class": class, "data-theme": string(theme)}, tree)
}

// Execute instantiates body (or reuses the cached component) and runs it.
// Panics raised while running are returned as *RenderExecutionError.
func (r *Renderer) Execute(body string) (tree *Node, err error) {
	component, err := r.Instantiate(body)
	if err != nil {
		return nil, err
	}

	defer func() {
		if rec := recover(); rec != nil {
			tree = nil
			err = &RenderExecutionError{Preview: truncate(body, previewLength), Err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	return component(r.runtime), nil
}

// Instantiate returns the component for body, decoding it on first use.
func (r *Renderer) Instantiate(body string) (Component, error) {
	key := xxhash.Sum64String(body)

	r.mu.Lock()
	cached, ok := r.cache[key]
	r.mu.Unlock()
	if ok && cached.body == body {
		metrics.RecordCacheLookup(true)
		return cached.component, nil
	}
	metrics.RecordCacheLookup(false)

	component, err := instantiate(body)
	if err != nil {
		return nil, &RenderExecutionError{Preview: truncate(body, previewLength), Err: err}
	}

	r.mu.Lock()
	r.cache[key] = cachedComponent{body: body, component: component}
	r.mu.Unlock()
	return component, nil
}

// Invalidate drops the cached component for body.
func (r *Renderer) Invalidate(body string) {
	key := xxhash.Sum64String(body)
	r.mu.Lock()
	if c, ok := r.cache[key]; ok && c.body == body {
		delete(r.cache, key)
	}
	r.mu.Unlock()
}

// Len reports the number of cached components.
func (r *Renderer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

// Fallback is the node shown in place of a body that failed to render.
func Fallback() *Node {
	return &Node{
		Kind:     ElementNode,
		Tag:      "div",
		Props:    Props{"class": fallbackClass, "role": "alert"},
		Children: []*Node{Text(fallbackMessage)},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
