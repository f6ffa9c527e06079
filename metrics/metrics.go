package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics for the search pipeline
type Metrics struct {
	SearchesTotal   prometheus.Counter
	SearchDuration  prometheus.Histogram
	OffersReturned  prometheus.Histogram
	DeepLinkMatches prometheus.Counter
	UpstreamErrors  *prometheus.CounterVec
	CacheHits       prometheus.Counter
}

// New creates and registers the metric set
func New(namespace string) *Metrics {
	return &Metrics{
		SearchesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "The total number of flight searches served",
		}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end time for one combined flight search",
			Buckets:   prometheus.DefBuckets,
		}),
		OffersReturned: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "offers_returned",
			Help:      "Offers returned per search after merging",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
		}),
		DeepLinkMatches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deep_link_matches_total",
			Help:      "Offers that received an affiliate deep link in the merge",
		}),
		UpstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Upstream API failures by source",
		}, []string{"source"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cache_hits_total",
			Help:      "Searches answered from the response cache",
		}),
	}
}

// UpstreamError records one upstream failure; safe on a nil receiver so
// providers can run without metrics wired.
func (m *Metrics) UpstreamError(source string) {
	if m == nil {
		return
	}
	m.UpstreamErrors.WithLabelValues(source).Inc()
}
