// Package metrics provides Prometheus metrics for the build and render paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ruangkarya"

var (
	EntriesBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "entries_built_total",
			Help:      "Content entries validated and compiled, by collection",
		},
		[]string{"collection"},
	)

	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "builds_total",
			Help:      "Collection builds by result",
		},
		[]string{"result"},
	)

	RenderFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mdx",
			Name:      "render_failures_total",
			Help:      "Compiled bodies that failed to instantiate and were replaced by a fallback node",
		},
	)

	RenderCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mdx",
			Name:      "render_cache_total",
			Help:      "Renderer instantiation cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordBuild records a build outcome.
func RecordBuild(err error) {
	if err != nil {
		BuildsTotal.WithLabelValues("error").Inc()
		return
	}
	BuildsTotal.WithLabelValues("ok").Inc()
}

// RecordCacheLookup records a renderer cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		RenderCache.WithLabelValues("hit").Inc()
		return
	}
	RenderCache.WithLabelValues("miss").Inc()
}
