// Package metrics exposes the Prometheus collectors used by the storefront.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "asthar"

// CacheMetrics counts cache-aside lookups per key family.
type CacheMetrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
	errors *prometheus.CounterVec
}

func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Cache lookups served from Redis.",
	}, []string{"family"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Cache lookups that fell through to the database.",
	}, []string{"family"})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_errors_total",
		Help:      "Redis errors raised while reading or writing the cache.",
	}, []string{"family"})
	reg.MustRegister(hits, misses, errs)
	return &CacheMetrics{hits: hits, misses: misses, errors: errs}
}

func (c *CacheMetrics) Hit(family string) {
	if c == nil || c.hits == nil {
		return
	}
	c.hits.WithLabelValues(normalizeLabel(family)).Inc()
}

func (c *CacheMetrics) Miss(family string) {
	if c == nil || c.misses == nil {
		return
	}
	c.misses.WithLabelValues(normalizeLabel(family)).Inc()
}

func (c *CacheMetrics) Error(family string) {
	if c == nil || c.errors == nil {
		return
	}
	c.errors.WithLabelValues(normalizeLabel(family)).Inc()
}
