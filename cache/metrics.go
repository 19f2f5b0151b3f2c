package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes cache counters on a prometheus registry.
type Metrics struct {
	Hits        prometheus.Counter
	Misses      prometheus.Counter
	Evictions   prometheus.Counter
	StoredBytes prometheus.Gauge
}

// NewMetrics creates and registers the cache metrics. A nil registerer
// creates unregistered collectors, which suits tests and callers that do
// not scrape.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "nohrs",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Reads served from the local cache.",
		}),
		Misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "nohrs",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Reads that fell through to the backend.",
		}),
		Evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "nohrs",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Blobs evicted to stay under the size bound.",
		}),
		StoredBytes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "nohrs",
			Subsystem: "cache",
			Name:      "stored_bytes",
			Help:      "Bytes currently held in the cache.",
		}),
	}
}
