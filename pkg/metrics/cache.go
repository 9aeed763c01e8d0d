package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup outcomes.
const (
	CacheResultHit   = "hit"
	CacheResultMiss  = "miss"
	CacheResultError = "error"
)

// CacheMetrics records read-through cache outcomes per keyspace.
type CacheMetrics struct {
	lookups *prometheus.CounterVec
	writes  *prometheus.CounterVec
}

// NewCacheMetrics registers the cache metrics on the provided registerer.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "item_cache_lookups_total",
		Help: "Item cache lookups partitioned by keyspace and result.",
	}, []string{"keyspace", "result"})
	writes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "item_cache_write_failures_total",
		Help: "Item cache populate or invalidate calls that failed.",
	}, []string{"op"})
	reg.MustRegister(lookups, writes)
	return &CacheMetrics{
		lookups: lookups,
		writes:  writes,
	}
}

// ObserveLookup counts a single lookup result for the keyspace.
func (c *CacheMetrics) ObserveLookup(keyspace, result string) {
	if c == nil || c.lookups == nil {
		return
	}
	c.lookups.WithLabelValues(normalizeLabel(keyspace), normalizeLabel(result)).Inc()
}

// IncWriteFailure counts a failed cache write ("set") or invalidation ("delete").
func (c *CacheMetrics) IncWriteFailure(op string) {
	if c == nil || c.writes == nil {
		return
	}
	c.writes.WithLabelValues(normalizeLabel(op)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
