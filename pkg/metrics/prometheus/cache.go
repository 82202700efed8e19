package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/files"
	"github.com/Kingslayer9988/Samsung-My-Files-Root-Extension/pkg/metrics"
)

// cacheMetrics is the Prometheus implementation of files.CacheMetrics.
type cacheMetrics struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	entries prometheus.Gauge
}

// NewCacheMetrics creates Prometheus-backed listing cache metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewCacheMetrics() files.CacheMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &cacheMetrics{
		hits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "nsmd_listing_cache_hits_total",
			Help: "Directory listings served from the cache",
		}),
		misses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "nsmd_listing_cache_misses_total",
			Help: "Directory listings read from the filesystem",
		}),
		entries: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "nsmd_listing_cache_entries",
			Help: "Number of cached directory listings",
		}),
	}
}

func (m *cacheMetrics) RecordHit() {
	if m == nil {
		return
	}
	m.hits.Inc()
}

func (m *cacheMetrics) RecordMiss() {
	if m == nil {
		return
	}
	m.misses.Inc()
}

func (m *cacheMetrics) SetEntries(n int) {
	if m == nil {
		return
	}
	m.entries.Set(float64(n))
}
