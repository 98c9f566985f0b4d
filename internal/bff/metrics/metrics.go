package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GatewayMetrics captures inbound request metrics.
type GatewayMetrics interface {
	ObserveRequest(method, route, status string, durationSeconds float64)
}

// BatchMetrics captures batch sync item outcomes.
type BatchMetrics interface {
	IncBatchItem(outcome string)
}

// Metrics is everything the gateway reports.
type Metrics interface {
	GatewayMetrics
	BatchMetrics
	Handler() http.Handler
}

// Noop implements Metrics without emitting anything.
type Noop struct{}

func (Noop) ObserveRequest(string, string, string, float64) {}
func (Noop) IncBatchItem(string)                            {}
func (Noop) Handler() http.Handler                          { return http.NotFoundHandler() }

// Prom implements Metrics on its own registry so several instances can live
// in one process.
type Prom struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	batchItems *prometheus.CounterVec
}

func NewProm(namespace string) *Prom {
	p := &Prom{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method/route/status",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method/route",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 90},
		}, []string{"method", "route"}),
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Batch sync items by outcome",
		}, []string{"outcome"}),
	}
	p.registry.MustRegister(p.requests, p.latency, p.batchItems)
	return p
}

func (p *Prom) ObserveRequest(method, route, status string, durationSeconds float64) {
	p.requests.WithLabelValues(method, route, status).Inc()
	p.latency.WithLabelValues(method, route).Observe(durationSeconds)
}

func (p *Prom) IncBatchItem(outcome string) {
	p.batchItems.WithLabelValues(outcome).Inc()
}

// Handler returns an HTTP handler for /metrics.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
