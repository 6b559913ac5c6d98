package counters

import "github.com/prometheus/client_golang/prometheus"

// PrometheusCollector adapts Counters to prometheus.Collector so a host
// embedding the engine as a Go library (rather than purely through the
// C-ABI) can register it with its own registry and expose /metrics.
// It reads the same atomics get_performance_stats reads; it never
// resets or mutates them.
type PrometheusCollector struct {
	c *Counters

	totalRequests  *prometheus.Desc
	staticHits     *prometheus.Desc
	cachedHits     *prometheus.Desc
	dynamicHits    *prometheus.Desc
	cacheMisses    *prometheus.Desc
	notFound       *prometheus.Desc
	internalErrors *prometheus.Desc
}

// NewPrometheusCollector wraps c for registration with a
// prometheus.Registerer. The namespace prefixes every metric name, e.g.
// namespace "sufast" yields "sufast_dispatch_total_requests".
func NewPrometheusCollector(c *Counters, namespace string) *PrometheusCollector {
	if namespace == "" {
		namespace = "sufast"
	}
	mk := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(namespace+"_dispatch_"+name, help, nil, nil)
	}
	return &PrometheusCollector{
		c:              c,
		totalRequests:  mk("total_requests", "Total requests dispatched."),
		staticHits:     mk("static_hits", "Requests served from the static route table."),
		cachedHits:     mk("cached_hits", "Requests served from the response cache."),
		dynamicHits:    mk("dynamic_hits", "Requests dispatched through the handler bridge."),
		cacheMisses:    mk("cache_misses", "Dynamic-tier requests that missed the response cache."),
		notFound:       mk("not_found", "Requests that matched no route."),
		internalErrors: mk("internal_errors", "Bridge panics, handler transport errors, or malformed responses."),
	}
}

// Describe implements prometheus.Collector.
func (p *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- p.totalRequests
	ch <- p.staticHits
	ch <- p.cachedHits
	ch <- p.dynamicHits
	ch <- p.cacheMisses
	ch <- p.notFound
	ch <- p.internalErrors
}

// Collect implements prometheus.Collector, reading one consistent-enough
// snapshot per scrape (each field is its own atomic load, same as
// Counters.Snapshot; a scrape may straddle an increment but never tears
// an individual value).
func (p *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	s := p.c.Snapshot()
	ch <- prometheus.MustNewConstMetric(p.totalRequests, prometheus.CounterValue, float64(s.TotalRequests))
	ch <- prometheus.MustNewConstMetric(p.staticHits, prometheus.CounterValue, float64(s.StaticHits))
	ch <- prometheus.MustNewConstMetric(p.cachedHits, prometheus.CounterValue, float64(s.CachedHits))
	ch <- prometheus.MustNewConstMetric(p.dynamicHits, prometheus.CounterValue, float64(s.DynamicHits))
	ch <- prometheus.MustNewConstMetric(p.cacheMisses, prometheus.CounterValue, float64(s.CacheMisses))
	ch <- prometheus.MustNewConstMetric(p.notFound, prometheus.CounterValue, float64(s.NotFound))
	ch <- prometheus.MustNewConstMetric(p.internalErrors, prometheus.CounterValue, float64(s.InternalErrors))
}
