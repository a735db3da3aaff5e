// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry is the dedicated Prometheus registry for the service
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, route, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "route", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
	// SyncOutcomes counts sales-rep updates by terminal state and error kind
	SyncOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sales_rep_sync_total", Help: "Sales-rep updates by outcome."},
		[]string{"outcome", "state", "kind"},
	)
	// StorefrontCalls counts storefront GraphQL calls by operation and status
	StorefrontCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "storefront_calls_total", Help: "Storefront GraphQL calls by operation and result."},
		[]string{"operation", "result"},
	)
	// StorefrontLatency tracks storefront call latency in seconds
	StorefrontLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "storefront_call_duration_seconds", Help: "Storefront GraphQL call latency.", Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10}},
		[]string{"operation"},
	)
	// ForwardedNotifications counts ERP-side forwards by result
	ForwardedNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "erp_notifications_forwarded_total", Help: "ERP change notifications by forwarding result."},
		[]string{"result"},
	)
)

var regOnce sync.Once

// Register registers all collectors on Registry. Safe to call more than once.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(SyncOutcomes)
		Registry.MustRegister(StorefrontCalls)
		Registry.MustRegister(StorefrontLatency)
		Registry.MustRegister(ForwardedNotifications)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
