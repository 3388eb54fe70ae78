package obs

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// InvoiceGeneratedTotal counts invoice download attempts by outcome.
	InvoiceGeneratedTotal *prometheus.CounterVec
	// InvoiceRenderLatency records PDF rendering latency in milliseconds.
	InvoiceRenderLatency prometheus.Histogram
	// InvoiceDriftTotal counts invoices whose derived grand total disagrees with the order total.
	InvoiceDriftTotal prometheus.Counter
	// UpstreamRequestsTotal counts calls to the commerce backend and auth gateway.
	UpstreamRequestsTotal *prometheus.CounterVec
	// UpstreamLatency records upstream call latency in milliseconds.
	UpstreamLatency *prometheus.HistogramVec
	// CatalogCacheTotal counts catalog cache lookups by result.
	CatalogCacheTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus
// collectors. Only the first call has an effect.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		InvoiceGeneratedTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_generated_total",
			Help:      "Count of invoice generation outcomes.",
		}, []string{"scope", "result"}))
		InvoiceRenderLatency = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invoice_render_duration_ms",
			Help:      "Latency for rendering invoice documents in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}))
		InvoiceDriftTotal = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_total_drift_total",
			Help:      "Invoices whose derived grand total differs from the order total.",
		}))
		UpstreamRequestsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Count of upstream requests by target and outcome.",
		}, []string{"target", "result"}))
		UpstreamLatency = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_ms",
			Help:      "Upstream request latency in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"target"}))
		CatalogCacheTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_total",
			Help:      "Catalog cache lookups by result.",
		}, []string{"result"}))
	})
}

// ObserveInvoice records an invoice outcome. It is a no-op before registration.
func ObserveInvoice(scope, result string, elapsed time.Duration) {
	if InvoiceGeneratedTotal != nil {
		InvoiceGeneratedTotal.WithLabelValues(scope, result).Inc()
	}
	if result == "ok" && InvoiceRenderLatency != nil {
		InvoiceRenderLatency.Observe(DurationMillis(elapsed))
	}
}

// ObserveInvoiceDrift counts a grand total mismatch.
func ObserveInvoiceDrift() {
	if InvoiceDriftTotal != nil {
		InvoiceDriftTotal.Inc()
	}
}

// ObserveUpstream records the outcome and latency of an upstream call.
func ObserveUpstream(target, result string, elapsed time.Duration) {
	if UpstreamRequestsTotal != nil {
		UpstreamRequestsTotal.WithLabelValues(target, result).Inc()
	}
	if UpstreamLatency != nil {
		UpstreamLatency.WithLabelValues(target).Observe(DurationMillis(elapsed))
	}
}

// ObserveCatalogCache records a cache hit or miss.
func ObserveCatalogCache(result string) {
	if CatalogCacheTotal != nil {
		CatalogCacheTotal.WithLabelValues(result).Inc()
	}
}
